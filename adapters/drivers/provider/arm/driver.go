// Package arm is the Azure Resource Manager provider driver. It acquires
// management tokens with the client secret flow and drives resource groups
// and template deployments through armresources.
package arm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	providerdrv "github.com/kompox/tmpcluster/adapters/drivers/provider"
	"github.com/kompox/tmpcluster/domain/model"
)

// DriverName is the registered name of this driver.
const DriverName = "azure"

// OptionCloud selects the Azure cloud (AzurePublic, AzureChina, AzureGovernment).
const OptionCloud = "cloud"

// environment pairs a cloud configuration with its management token scope.
type environment struct {
	config cloud.Configuration
	scope  string
}

var environments = map[string]environment{
	"AzurePublic":     {config: cloud.AzurePublic, scope: "https://management.azure.com/.default"},
	"AzureChina":      {config: cloud.AzureChina, scope: "https://management.chinacloudapi.cn/.default"},
	"AzureGovernment": {config: cloud.AzureGovernment, scope: "https://management.usgovcloudapi.net/.default"},
}

func environmentNames() []string {
	names := make([]string, 0, len(environments))
	for k := range environments {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// driver implements providerdrv.Driver for ARM.
type driver struct {
	tokens *TokenProvider
	remote *RemotePort
}

// ID returns the provider identifier.
func (d *driver) ID() string { return DriverName }

func (d *driver) TokenPort() model.TokenPort { return d.tokens }

func (d *driver) RemotePort() model.RemotePort { return d.remote }

// New builds a driver for the named cloud. transport may be nil.
func New(cloudName string, transport policy.Transporter) (providerdrv.Driver, error) {
	if cloudName == "" {
		cloudName = "AzurePublic"
	}
	env, ok := environments[cloudName]
	if !ok {
		return nil, fmt.Errorf("unsupported %s %q (supported: %s)", OptionCloud, cloudName, strings.Join(environmentNames(), ", "))
	}
	return &driver{
		tokens: &TokenProvider{Scope: env.scope, Transport: transport},
		remote: &RemotePort{Options: clientOptions(env.config, transport)},
	}, nil
}

// clientOptions disables SDK retries; remote calls are retried by the caller's policy.
func clientOptions(cfg cloud.Configuration, transport policy.Transporter) *arm.ClientOptions {
	return &arm.ClientOptions{
		ClientOptions: policy.ClientOptions{
			Cloud:     cfg,
			Transport: transport,
			Retry:     policy.RetryOptions{MaxRetries: -1},
		},
	}
}

// init registers the ARM driver.
func init() {
	providerdrv.Register(DriverName, func(options map[string]string) (providerdrv.Driver, error) {
		return New(strings.TrimSpace(options[OptionCloud]), nil)
	})
}
