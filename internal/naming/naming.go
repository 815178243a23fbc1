// Package naming derives the cloud resource names of a cluster from its name.
// A cluster name is used verbatim as the resource group name and as the public
// DNS label, so every derived name is deterministic and needs no lookup.
package naming

import "fmt"

// deploymentSuffix is appended to the cluster name to form the deployment name.
const deploymentSuffix = "dp"

// fqdnZone is the Azure public IP DNS zone under a region.
const fqdnZone = "cloudapp.azure.com"

// Names groups the remote names belonging to one cluster.
type Names struct {
	ResourceGroup string
	Deployment    string
}

// ForCluster returns the remote names for the given cluster name.
func ForCluster(cluster string) Names {
	return Names{
		ResourceGroup: cluster,
		Deployment:    DeploymentName(cluster),
	}
}

// DeploymentName returns the deterministic deployment name "<cluster>dp".
func DeploymentName(cluster string) string {
	return cluster + deploymentSuffix
}

// FQDN returns the predicted public domain name "<cluster>.<region>.cloudapp.azure.com".
func FQDN(cluster, region string) string {
	return fmt.Sprintf("%s.%s.%s", cluster, region, fqdnZone)
}
