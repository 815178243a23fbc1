package model

import (
	"fmt"
	"strings"
)

// ClusterRequest is the transient input of a create call.
type ClusterRequest struct {
	Name  string
	Ports []int
}

// ClusterOperationStatus is the externally visible lifecycle summary of a cluster.
type ClusterOperationStatus int

const (
	ClusterNotFound ClusterOperationStatus = iota
	ClusterCreating
	ClusterReady
	ClusterCreateFailed
	ClusterDeleting
	ClusterDeleteFailed
	ClusterUnknown
)

var clusterStatusNames = [...]string{
	ClusterNotFound:     "ClusterNotFound",
	ClusterCreating:     "Creating",
	ClusterReady:        "Ready",
	ClusterCreateFailed: "CreateFailed",
	ClusterDeleting:     "Deleting",
	ClusterDeleteFailed: "DeleteFailed",
	ClusterUnknown:      "Unknown",
}

func (s ClusterOperationStatus) String() string {
	if s < 0 || int(s) >= len(clusterStatusNames) {
		return fmt.Sprintf("ClusterOperationStatus(%d)", int(s))
	}
	return clusterStatusNames[s]
}

// Terminal reports whether no further transition is expected without a new operation.
func (s ClusterOperationStatus) Terminal() bool {
	switch s {
	case ClusterNotFound, ClusterReady, ClusterCreateFailed, ClusterDeleteFailed:
		return true
	}
	return false
}

// MarshalText encodes the status by name.
func (s ClusterOperationStatus) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(clusterStatusNames) {
		return nil, fmt.Errorf("invalid cluster status %d", int(s))
	}
	return []byte(clusterStatusNames[s]), nil
}

// UnmarshalText decodes a status name (case-insensitive).
func (s *ClusterOperationStatus) UnmarshalText(b []byte) error {
	for i, n := range clusterStatusNames {
		if strings.EqualFold(n, string(b)) {
			*s = ClusterOperationStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown cluster status %q", string(b))
}

// ARM provisioning state fragments matched by ReduceClusterStatus.
const (
	stateFailed    = "Failed"
	stateDeleting  = "Deleting"
	stateAccepted  = "Accepted"
	stateRunning   = "Running"
	stateSucceeded = "Succeeded"
)

// ReduceClusterStatus merges the resource group and deployment provisioning states.
//
// Rules are evaluated in order and the first match wins; resource group
// failure/deletion dominates any deployment state. Matching is by substring so
// that newer platform states embedding a known word still classify.
func ReduceClusterStatus(groupState, deploymentState string) ClusterOperationStatus {
	switch {
	case strings.Contains(groupState, stateFailed):
		return ClusterDeleteFailed
	case strings.Contains(groupState, stateDeleting):
		return ClusterDeleting
	case strings.Contains(deploymentState, stateAccepted), strings.Contains(deploymentState, stateRunning):
		return ClusterCreating
	case strings.Contains(deploymentState, stateFailed):
		return ClusterCreateFailed
	case strings.Contains(deploymentState, stateSucceeded):
		return ClusterReady
	}
	return ClusterUnknown
}

// knownProvisioningStates is the ARM vocabulary for resource groups and deployments.
var knownProvisioningStates = map[string]struct{}{
	"NotSpecified": {},
	"Accepted":     {},
	"Running":      {},
	"Ready":        {},
	"Creating":     {},
	"Created":      {},
	"Deleting":     {},
	"Deleted":      {},
	"Canceled":     {},
	"Failed":       {},
	"Succeeded":    {},
	"Updating":     {},
	"Moving":       {},
}

// IsKnownProvisioningState reports whether s is a documented ARM provisioning state.
func IsKnownProvisioningState(s string) bool {
	_, ok := knownProvisioningStates[s]
	return ok
}
