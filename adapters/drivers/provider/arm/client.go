package arm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"

	"github.com/kompox/tmpcluster/domain/model"
)

// RemotePort implements model.RemotePort over armresources clients.
type RemotePort struct {
	Options *arm.ClientOptions
}

// Open creates resource group and deployment clients bound to token.
func (p *RemotePort) Open(_ context.Context, settings *model.OperatorSettings, token *model.AccessToken) (model.RemoteSession, error) {
	if token == nil || token.Token == "" {
		return nil, model.ErrAuthFailure
	}
	cred := staticCredential{token: token}
	subscriptionID := settings.SubscriptionID.Reveal()
	groups, err := armresources.NewResourceGroupsClient(subscriptionID, cred, p.Options)
	if err != nil {
		return nil, fmt.Errorf("create resource groups client: %w", err)
	}
	deployments, err := armresources.NewDeploymentsClient(subscriptionID, cred, p.Options)
	if err != nil {
		return nil, fmt.Errorf("create deployments client: %w", err)
	}
	return &session{groups: groups, deployments: deployments}, nil
}

type session struct {
	groups      *armresources.ResourceGroupsClient
	deployments *armresources.DeploymentsClient
}

// responseError keeps the ARM response error reachable through errors.As while
// printing only its status and error code.
type responseError struct {
	short string
	err   error
}

func (e *responseError) Error() string { return e.short }

func (e *responseError) Unwrap() error { return e.err }

// azureShorterErrorString returns a short string for Azure SDK errors.
func azureShorterErrorString(err error) string {
	errstr := err.Error()
	var responseErr *azcore.ResponseError
	if errors.As(err, &responseErr) {
		errstr = fmt.Sprintf("%d %s (%s)", responseErr.StatusCode, http.StatusText(responseErr.StatusCode), responseErr.ErrorCode)
	}
	return errstr
}

// mapError turns a 404 into model.ErrResourceNotFound and shortens other ARM errors.
func mapError(err error) error {
	var responseErr *azcore.ResponseError
	if !errors.As(err, &responseErr) {
		return err
	}
	if responseErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", model.ErrResourceNotFound, azureShorterErrorString(err))
	}
	return &responseError{short: azureShorterErrorString(err), err: err}
}

func (s *session) CheckResourceGroupExistence(ctx context.Context, name string) (exists bool, err error) {
	ctx, cleanup := withMethodLogger(ctx, "CheckResourceGroupExistence", "resourceGroup", name)
	defer func() { cleanup(err) }()
	res, err := s.groups.CheckExistence(ctx, name, nil)
	if err != nil {
		return false, mapError(err)
	}
	return res.Success, nil
}

func (s *session) CreateResourceGroup(ctx context.Context, name, location string) (err error) {
	ctx, cleanup := withMethodLogger(ctx, "CreateResourceGroup", "resourceGroup", name, "location", location)
	defer func() { cleanup(err) }()
	_, err = s.groups.CreateOrUpdate(ctx, name, armresources.ResourceGroup{
		Location: to.Ptr(location),
		Tags: map[string]*string{
			"managed-by": to.Ptr("tmpcluster"),
		},
	}, nil)
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (s *session) ResourceGroupState(ctx context.Context, name string) (state string, err error) {
	ctx, cleanup := withMethodLogger(ctx, "ResourceGroupState", "resourceGroup", name)
	defer func() { cleanup(err) }()
	res, err := s.groups.Get(ctx, name, nil)
	if err != nil {
		return "", mapError(err)
	}
	if res.Properties != nil && res.Properties.ProvisioningState != nil {
		state = *res.Properties.ProvisioningState
	}
	return state, nil
}

// BeginDeleteResourceGroup returns once ARM accepts the request; the poller is dropped.
func (s *session) BeginDeleteResourceGroup(ctx context.Context, name string) (err error) {
	ctx, cleanup := withMethodLogger(ctx, "BeginDeleteResourceGroup", "resourceGroup", name)
	defer func() { cleanup(err) }()
	if _, err = s.groups.BeginDelete(ctx, name, nil); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *session) CheckDeploymentExistence(ctx context.Context, resourceGroup, name string) (exists bool, err error) {
	ctx, cleanup := withMethodLogger(ctx, "CheckDeploymentExistence", "resourceGroup", resourceGroup, "deployment", name)
	defer func() { cleanup(err) }()
	res, err := s.deployments.CheckExistence(ctx, resourceGroup, name, nil)
	if err != nil {
		return false, mapError(err)
	}
	return res.Success, nil
}

// BeginDeployment submits the deployment and returns once ARM accepts it.
func (s *session) BeginDeployment(ctx context.Context, resourceGroup, name string, spec *model.DeploymentSpec) (err error) {
	ctx, cleanup := withMethodLogger(ctx, "BeginDeployment", "resourceGroup", resourceGroup, "deployment", name)
	defer func() { cleanup(err) }()
	mode := armresources.DeploymentModeIncremental
	if spec.Mode == model.DeploymentModeComplete {
		mode = armresources.DeploymentModeComplete
	}
	deployment := armresources.Deployment{
		Properties: &armresources.DeploymentProperties{
			Template:   spec.Template,
			Parameters: spec.Parameters,
			Mode:       to.Ptr(mode),
		},
		Tags: map[string]*string{
			"managed-by": to.Ptr("tmpcluster"),
		},
	}
	if _, err = s.deployments.BeginCreateOrUpdate(ctx, resourceGroup, name, deployment, nil); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *session) DeploymentState(ctx context.Context, resourceGroup, name string) (state string, err error) {
	ctx, cleanup := withMethodLogger(ctx, "DeploymentState", "resourceGroup", resourceGroup, "deployment", name)
	defer func() { cleanup(err) }()
	res, err := s.deployments.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		return "", mapError(err)
	}
	if res.Properties != nil && res.Properties.ProvisioningState != nil {
		state = string(*res.Properties.ProvisioningState)
	}
	return state, nil
}
