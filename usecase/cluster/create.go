package cluster

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/kompox/tmpcluster/domain/model"
	"github.com/kompox/tmpcluster/internal/logging"
	"github.com/kompox/tmpcluster/internal/naming"
)

// CreateInput contains data to create a cluster.
type CreateInput struct {
	// Name is the cluster name, used as resource group name and DNS label.
	Name string `json:"name"`
	// Ports are bound to _PORT1_.._PORTn_ in order.
	Ports []int `json:"ports"`
}

// CreateOutput describes a submitted cluster.
type CreateOutput struct {
	Name          string `json:"name"`
	FQDN          string `json:"fqdn"`
	ResourceGroup string `json:"resourceGroup"`
	Deployment    string `json:"deployment"`
	// Generation of the settings and templates snapshot used.
	Generation uint64 `json:"generation"`
}

// Create creates the resource group and submits the cluster deployment.
// It returns the predicted FQDN without waiting for provisioning; use Status
// to observe completion. An existing resource group is refused with
// model.ErrNameConflict.
func (u *UseCase) Create(ctx context.Context, in *CreateInput) (out *CreateOutput, err error) {
	start := time.Now()
	if in == nil {
		u.observe(OperationCreate, start, model.ErrClusterInvalid)
		return nil, model.ErrClusterInvalid
	}
	rec := &model.OperationRecord{Cluster: in.Name, Operation: OperationCreate}
	defer func() {
		u.observe(OperationCreate, start, err)
		if out != nil {
			rec.Result = out.FQDN
		}
		u.journal(ctx, rec, start, err)
	}()

	if err := naming.ValidateClusterName(in.Name); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrClusterInvalid, err)
	}
	if err := naming.ValidatePorts(in.Ports); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrClusterInvalid, err)
	}
	req := &model.ClusterRequest{Name: in.Name, Ports: slices.Clone(in.Ports)}

	snap, err := u.snapshot(true)
	if err != nil {
		return nil, err
	}
	rec.Generation = snap.Generation
	// Bind before any remote mutation so a bad template leaves nothing behind.
	spec, err := bindDeployment(snap, req)
	if err != nil {
		return nil, err
	}

	s, err := u.open(ctx, snap)
	if err != nil {
		return nil, err
	}
	names := naming.ForCluster(req.Name)
	created, err := s.ensureResourceGroup(ctx, names.ResourceGroup, snap.Settings.Region)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, fmt.Errorf("cluster %s: %w", req.Name, model.ErrNameConflict)
	}
	logging.FromContext(ctx).Info(ctx, "resource group created", "resourceGroup", names.ResourceGroup, "location", snap.Settings.Region)

	if err := s.submitDeployment(ctx, names, spec); err != nil {
		return nil, err
	}
	return &CreateOutput{
		Name:          req.Name,
		FQDN:          naming.FQDN(req.Name, snap.Settings.Region),
		ResourceGroup: names.ResourceGroup,
		Deployment:    names.Deployment,
		Generation:    snap.Generation,
	}, nil
}
