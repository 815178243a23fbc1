package cluster

import (
	"context"
	"fmt"
	"time"

	"github.com/kompox/tmpcluster/domain/model"
	"github.com/kompox/tmpcluster/internal/naming"
)

// DeleteInput represents a command to delete a cluster.
type DeleteInput struct {
	// Name is the cluster name.
	Name string `json:"name"`
}

// DeleteOutput is empty; deletion completes asynchronously.
type DeleteOutput struct {
	ResourceGroup string `json:"resourceGroup"`
}

// Delete starts deletion of the cluster resource group and returns once the
// request is accepted. Completion is observed through Status.
func (u *UseCase) Delete(ctx context.Context, in *DeleteInput) (out *DeleteOutput, err error) {
	start := time.Now()
	if in == nil {
		u.observe(OperationDelete, start, model.ErrClusterInvalid)
		return nil, model.ErrClusterInvalid
	}
	rec := &model.OperationRecord{Cluster: in.Name, Operation: OperationDelete}
	defer func() {
		u.observe(OperationDelete, start, err)
		if out != nil {
			rec.Result = out.ResourceGroup
		}
		u.journal(ctx, rec, start, err)
	}()

	if err := naming.ValidateClusterName(in.Name); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrClusterInvalid, err)
	}
	snap, err := u.snapshot(false)
	if err != nil {
		return nil, err
	}
	rec.Generation = snap.Generation
	s, err := u.open(ctx, snap)
	if err != nil {
		return nil, err
	}
	names := naming.ForCluster(in.Name)
	if err := s.deleteResourceGroup(ctx, names.ResourceGroup); err != nil {
		return nil, err
	}
	return &DeleteOutput{ResourceGroup: names.ResourceGroup}, nil
}
