package rdb

import "time"

// OperationRow is the RDB persistence model for model.OperationRecord.
// Table name: operations
type OperationRow struct {
	ID         string    `gorm:"primaryKey;type:text;not null"`
	Cluster    string    `gorm:"type:text;not null;index:idx_operations_cluster_started,priority:1"`
	Operation  string    `gorm:"type:text;not null"`
	Status     string    `gorm:"type:text;not null"`
	Error      string    `gorm:"type:text"`
	Result     string    `gorm:"type:text"`
	Generation uint64    `gorm:"not null"`
	StartedAt  time.Time `gorm:"not null;index:idx_operations_cluster_started,priority:2"`
	DurationMS int64     `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (OperationRow) TableName() string { return "operations" }
