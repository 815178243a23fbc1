package model

import (
	"context"
	"time"
)

// AccessToken is a bearer token for the cloud management API.
type AccessToken struct {
	Token     string
	ExpiresOn time.Time
}

// TokenPort exchanges operator credentials for a management-plane token.
type TokenPort interface {
	AcquireToken(ctx context.Context, settings *OperatorSettings) (*AccessToken, error)
}

// DeploymentMode is the ARM deployment mode.
type DeploymentMode string

const (
	DeploymentModeIncremental DeploymentMode = "Incremental"
	DeploymentModeComplete    DeploymentMode = "Complete"
)

// DeploymentSpec is the bound template submitted to a resource group.
type DeploymentSpec struct {
	Template   map[string]any
	Parameters map[string]any
	Mode       DeploymentMode
}

// ResourceGroupClient covers resource group calls used by the orchestrator.
// Getters return ErrResourceNotFound when the group does not exist.
type ResourceGroupClient interface {
	CheckResourceGroupExistence(ctx context.Context, name string) (bool, error)
	CreateResourceGroup(ctx context.Context, name, location string) error
	ResourceGroupState(ctx context.Context, name string) (string, error)
	BeginDeleteResourceGroup(ctx context.Context, name string) error
}

// DeploymentClient covers deployment calls used by the orchestrator.
// Getters return ErrResourceNotFound when the deployment does not exist.
type DeploymentClient interface {
	CheckDeploymentExistence(ctx context.Context, resourceGroup, name string) (bool, error)
	BeginDeployment(ctx context.Context, resourceGroup, name string, spec *DeploymentSpec) error
	DeploymentState(ctx context.Context, resourceGroup, name string) (string, error)
}

// RemoteSession is the set of remote calls available to one operation.
type RemoteSession interface {
	ResourceGroupClient
	DeploymentClient
}

// RemotePort opens a session bound to one subscription and one token.
type RemotePort interface {
	Open(ctx context.Context, settings *OperatorSettings, token *AccessToken) (RemoteSession, error)
}
