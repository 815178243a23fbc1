package model

import "time"

// OperationRecord is one journal entry for a mutating cluster operation.
type OperationRecord struct {
	ID        string `json:"id"`
	Cluster   string `json:"cluster"`
	Operation string `json:"operation"`
	Status    string `json:"status"` // "ok" or "error"
	Error     string `json:"error,omitempty"`
	Result    string `json:"result,omitempty"` // FQDN for create, resource group for delete
	// Generation of the settings and templates snapshot used (0 if none was taken).
	Generation uint64        `json:"generation"`
	StartedAt  time.Time     `json:"startedAt"`
	Duration   time.Duration `json:"duration"`
}
