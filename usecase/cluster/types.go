package cluster

import (
	"github.com/juju/clock"

	"github.com/kompox/tmpcluster/domain"
	"github.com/kompox/tmpcluster/domain/model"
	"github.com/kompox/tmpcluster/internal/metrics"
	"github.com/kompox/tmpcluster/internal/retry"
)

// SnapshotSource returns the settings and templates published for new operations.
type SnapshotSource interface {
	Current() *model.Snapshot
}

// UseCase wires the snapshot source and remote ports needed for cluster use cases.
type UseCase struct {
	Snapshots  SnapshotSource
	TokenPort  model.TokenPort
	RemotePort model.RemotePort
	// Retry wraps every remote call. The zero value means retry.DefaultPolicy().
	Retry retry.Policy
	// Metrics may be nil.
	Metrics *metrics.Collector
	// Clock drives Watch polling. Defaults to the wall clock.
	Clock clock.Clock
	// Journal records create and delete operations. May be nil.
	Journal domain.OperationRepository
}

// Operation names used for metrics.
const (
	OperationCreate = "create"
	OperationDelete = "delete"
	OperationStatus = "status"
)
