package cluster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kompox/tmpcluster/domain/model"
	"github.com/kompox/tmpcluster/internal/logging"
	"github.com/kompox/tmpcluster/internal/naming"
)

// StatusInput represents a command to get cluster status.
type StatusInput struct {
	// Name is the cluster name.
	Name string `json:"name"`
}

// StatusOutput represents the response of cluster status.
type StatusOutput struct {
	Name   string                       `json:"name"`
	Status model.ClusterOperationStatus `json:"status"`
	// Raw provisioning states as read for this query. Empty when not found.
	ResourceGroupState string `json:"resourceGroupState,omitempty"`
	DeploymentState    string `json:"deploymentState,omitempty"`
}

// Status returns the lifecycle status of a cluster. A missing cluster is
// reported as model.ClusterNotFound, never as an error.
func (u *UseCase) Status(ctx context.Context, in *StatusInput) (out *StatusOutput, err error) {
	start := time.Now()
	defer func() {
		u.observe(OperationStatus, start, err)
		if out != nil {
			u.Metrics.IncClusterStatus(out.Status.String())
		}
	}()

	if in == nil {
		return nil, model.ErrClusterInvalid
	}
	if err := naming.ValidateClusterName(in.Name); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrClusterInvalid, err)
	}
	snap, err := u.snapshot(false)
	if err != nil {
		return nil, err
	}
	s, err := u.open(ctx, snap)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, in.Name)
}

// reconcile checks for the deployment first and only then reads and reduces
// both provisioning states.
func (s *session) reconcile(ctx context.Context, cluster string) (*StatusOutput, error) {
	names := naming.ForCluster(cluster)
	out := &StatusOutput{Name: cluster, Status: model.ClusterNotFound}

	var exists bool
	err := s.call(ctx, "CheckDeploymentExistence", func(ctx context.Context) error {
		var err error
		exists, err = s.remote.CheckDeploymentExistence(ctx, names.ResourceGroup, names.Deployment)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !exists {
		return out, nil
	}

	var groupState, deploymentState string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.call(gctx, "DeploymentState", func(ctx context.Context) error {
			var err error
			deploymentState, err = s.remote.DeploymentState(ctx, names.ResourceGroup, names.Deployment)
			return err
		})
	})
	g.Go(func() error {
		return s.call(gctx, "ResourceGroupState", func(ctx context.Context) error {
			var err error
			groupState, err = s.remote.ResourceGroupState(ctx, names.ResourceGroup)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		// The group can disappear between the existence check and the reads.
		if errors.Is(err, model.ErrResourceNotFound) {
			return out, nil
		}
		return nil, err
	}

	s.checkVocabulary(ctx, "resourceGroup", groupState)
	s.checkVocabulary(ctx, "deployment", deploymentState)

	out.ResourceGroupState = groupState
	out.DeploymentState = deploymentState
	out.Status = model.ReduceClusterStatus(groupState, deploymentState)
	return out, nil
}

// checkVocabulary reports raw states outside the known ARM vocabulary.
// It never affects the reduced status.
func (s *session) checkVocabulary(ctx context.Context, source, state string) {
	if model.IsKnownProvisioningState(state) {
		return
	}
	logging.FromContext(ctx).Warn(ctx, "unrecognized provisioning state", "source", source, "state", state)
	s.uc.Metrics.IncUnrecognizedState(source)
}
