// Package inmem provides a process-local operation journal.
package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kompox/tmpcluster/domain"
	"github.com/kompox/tmpcluster/domain/model"
)

// Journal is a thread-safe in-memory implementation of domain.OperationRepository.
type Journal struct {
	mu    sync.RWMutex
	items []*model.OperationRecord
	seq   int64
}

func NewJournal() *Journal {
	return &Journal{}
}

func (j *Journal) nextID() string {
	j.seq++
	return fmt.Sprintf("op-%d-%d", time.Now().UnixNano(), j.seq)
}

func (j *Journal) Append(_ context.Context, rec *model.OperationRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if rec.ID == "" {
		rec.ID = j.nextID()
	}
	cp := *rec
	j.items = append(j.items, &cp)
	return nil
}

func (j *Journal) List(_ context.Context, cluster string, limit int) ([]*model.OperationRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	var out []*model.OperationRecord
	for i := len(j.items) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if v := j.items[i]; v.Cluster == cluster {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Compile-time assertion
var _ domain.OperationRepository = (*Journal)(nil)
