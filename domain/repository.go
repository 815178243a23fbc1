package domain

import (
	"context"

	"github.com/kompox/tmpcluster/domain/model"
)

// OperationRepository stores the journal of create and delete operations.
// List returns the newest records of one cluster first; limit <= 0 means no limit.
type OperationRepository interface {
	Append(ctx context.Context, rec *model.OperationRecord) error
	List(ctx context.Context, cluster string, limit int) ([]*model.OperationRecord, error)
}
