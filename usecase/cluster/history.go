package cluster

import (
	"context"
	"fmt"

	"github.com/kompox/tmpcluster/domain/model"
	"github.com/kompox/tmpcluster/internal/naming"
)

// DefaultHistoryLimit caps History results when HistoryInput.Limit is zero.
const DefaultHistoryLimit = 20

// HistoryInput represents a query of the operation journal.
type HistoryInput struct {
	Name string `json:"name"`
	// Limit caps the number of records returned. Negative means no limit.
	Limit int `json:"limit"`
}

// HistoryOutput lists journal records, newest first.
type HistoryOutput struct {
	Name    string                   `json:"name"`
	Records []*model.OperationRecord `json:"records"`
}

// History returns the recorded create and delete operations of a cluster.
// It makes no remote calls.
func (u *UseCase) History(ctx context.Context, in *HistoryInput) (*HistoryOutput, error) {
	if in == nil {
		return nil, model.ErrClusterInvalid
	}
	if err := naming.ValidateClusterName(in.Name); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrClusterInvalid, err)
	}
	if u.Journal == nil {
		return nil, fmt.Errorf("%w: no operation journal", model.ErrNotConfigured)
	}
	limit := in.Limit
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	records, err := u.Journal.List(ctx, in.Name, limit)
	if err != nil {
		return nil, fmt.Errorf("list operations of %s: %w", in.Name, err)
	}
	if records == nil {
		records = []*model.OperationRecord{}
	}
	return &HistoryOutput{Name: in.Name, Records: records}, nil
}
