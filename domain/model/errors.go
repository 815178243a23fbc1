package model

import (
	"errors"
	"fmt"
)

var (
	ErrClusterInvalid    = errors.New("cluster invalid")
	ErrNotConfigured     = errors.New("operator settings or templates not loaded")
	ErrAuthFailure       = errors.New("authentication failed")
	ErrNameConflict      = errors.New("resource group already exists; choose a different cluster name or delete the existing cluster first")
	ErrTemplateParameter = errors.New("template parameter binding failed")
	ErrDeploymentSubmit  = errors.New("deployment submission failed")
	ErrRemoteUnavailable = errors.New("remote service unavailable")
	ErrResourceNotFound  = errors.New("remote resource not found")
	ErrSettingsInvalid   = errors.New("operator settings invalid")
	ErrTemplatesInvalid  = errors.New("template bundle invalid")
)

// DeploymentSubmitError carries the context of a rejected deployment submission.
type DeploymentSubmitError struct {
	ResourceGroup string
	Deployment    string
	Message       string
	Err           error
}

func (e *DeploymentSubmitError) Error() string {
	return fmt.Sprintf("submit deployment %s to resource group %s: %s", e.Deployment, e.ResourceGroup, e.Message)
}

func (e *DeploymentSubmitError) Unwrap() error { return e.Err }

// Is makes every DeploymentSubmitError match ErrDeploymentSubmit.
func (e *DeploymentSubmitError) Is(target error) bool { return target == ErrDeploymentSubmit }
