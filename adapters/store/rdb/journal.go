package rdb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kompox/tmpcluster/domain"
	"github.com/kompox/tmpcluster/domain/model"
)

type Journal struct{ db *gorm.DB }

func NewJournal(db *gorm.DB) *Journal { return &Journal{db: db} }

func operationToRow(r *model.OperationRecord) *OperationRow {
	return &OperationRow{
		ID:         r.ID,
		Cluster:    r.Cluster,
		Operation:  r.Operation,
		Status:     r.Status,
		Error:      r.Error,
		Result:     r.Result,
		Generation: r.Generation,
		StartedAt:  r.StartedAt,
		DurationMS: r.Duration.Milliseconds(),
	}
}

func operationToModel(r *OperationRow) *model.OperationRecord {
	return &model.OperationRecord{
		ID:         r.ID,
		Cluster:    r.Cluster,
		Operation:  r.Operation,
		Status:     r.Status,
		Error:      r.Error,
		Result:     r.Result,
		Generation: r.Generation,
		StartedAt:  r.StartedAt,
		Duration:   time.Duration(r.DurationMS) * time.Millisecond,
	}
}

func (j *Journal) Append(ctx context.Context, rec *model.OperationRecord) error {
	row := operationToRow(rec)
	if row.ID == "" {
		row.ID = "op-" + uuid.NewString()
		rec.ID = row.ID
	}
	return j.db.WithContext(ctx).Create(row).Error
}

func (j *Journal) List(ctx context.Context, cluster string, limit int) ([]*model.OperationRecord, error) {
	var rows []OperationRow
	q := j.db.WithContext(ctx).Where("cluster = ?", cluster).Order("started_at DESC").Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*model.OperationRecord, 0, len(rows))
	for i := range rows {
		out = append(out, operationToModel(&rows[i]))
	}
	return out, nil
}

var _ domain.OperationRepository = (*Journal)(nil)
