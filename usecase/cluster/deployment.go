package cluster

import (
	"context"
	"fmt"

	"github.com/kompox/tmpcluster/domain/model"
	"github.com/kompox/tmpcluster/internal/logging"
	"github.com/kompox/tmpcluster/internal/naming"
	"github.com/kompox/tmpcluster/internal/params"
)

// bindDeployment renders the parameter document of snap for the request and
// decodes both documents into a deployment spec. Nothing remote is touched.
func bindDeployment(snap *model.Snapshot, req *model.ClusterRequest) (*model.DeploymentSpec, error) {
	values := &params.Values{
		ClusterName: req.Name,
		Location:    snap.Settings.Region,
		User:        snap.Settings.AdminUsername.Reveal(),
		Password:    snap.Settings.AdminPassword.Reveal(),
		Ports:       req.Ports,
	}
	doc, err := params.Bind(snap.Templates.Parameters, values)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrTemplateParameter, err)
	}
	parameters, err := params.DecodeParameters(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrTemplateParameter, err)
	}
	template, err := params.DecodeTemplate(snap.Templates.Template)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrTemplatesInvalid, err)
	}
	return &model.DeploymentSpec{
		Template:   template,
		Parameters: parameters,
		Mode:       model.DeploymentModeIncremental,
	}, nil
}

// submitDeployment starts the incremental deployment without waiting for it.
// A rejected submission is logged and returned as *model.DeploymentSubmitError.
func (s *session) submitDeployment(ctx context.Context, names naming.Names, spec *model.DeploymentSpec) error {
	err := s.call(ctx, "BeginDeployment", func(ctx context.Context) error {
		return s.remote.BeginDeployment(ctx, names.ResourceGroup, names.Deployment, spec)
	})
	if err == nil {
		return nil
	}
	logging.FromContext(ctx).Error(ctx, "deployment submission failed",
		"resourceGroup", names.ResourceGroup,
		"deployment", names.Deployment,
		"err", err,
	)
	return &model.DeploymentSubmitError{
		ResourceGroup: names.ResourceGroup,
		Deployment:    names.Deployment,
		Message:       err.Error(),
		Err:           err,
	}
}
