package rdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kompox/tmpcluster/domain/model"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	db, err := OpenFromURL("sqlite:" + filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("OpenFromURL: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewJournal(db)
}

func TestJournal_AppendList(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t)
	base := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	recs := []*model.OperationRecord{
		{Cluster: "partyclub7", Operation: "create", Status: "ok", Result: "partyclub7.japaneast.cloudapp.azure.com", Generation: 2, StartedAt: base, Duration: 1500 * time.Millisecond},
		{Cluster: "other", Operation: "create", Status: "ok", StartedAt: base.Add(time.Minute)},
		{Cluster: "partyclub7", Operation: "delete", Status: "error", Error: "remote service unavailable", StartedAt: base.Add(2 * time.Minute)},
	}
	for _, rec := range recs {
		if err := j.Append(ctx, rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
		if rec.ID == "" {
			t.Errorf("Append did not assign an ID")
		}
	}

	got, err := j.List(ctx, "partyclub7", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Operation != "delete" || got[0].Error != "remote service unavailable" {
		t.Errorf("newest record = %+v", got[0])
	}
	create := got[1]
	if create.Result != "partyclub7.japaneast.cloudapp.azure.com" || create.Generation != 2 || create.Duration != 1500*time.Millisecond {
		t.Errorf("create record = %+v", create)
	}
	if !create.StartedAt.Equal(base) {
		t.Errorf("StartedAt = %v, want %v", create.StartedAt, base)
	}

	one, err := j.List(ctx, "partyclub7", 1)
	if err != nil || len(one) != 1 || one[0].Operation != "delete" {
		t.Errorf("List limit 1 = %+v, %v", one, err)
	}
}

func TestOpenFromURL_UnsupportedScheme(t *testing.T) {
	if _, err := OpenFromURL("postgres://localhost/db"); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}
