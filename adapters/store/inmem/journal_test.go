package inmem

import (
	"context"
	"testing"

	"github.com/kompox/tmpcluster/domain/model"
)

func TestJournal(t *testing.T) {
	ctx := context.Background()
	j := NewJournal()
	for _, rec := range []*model.OperationRecord{
		{Cluster: "partyclub7", Operation: "create", Status: "ok"},
		{Cluster: "other", Operation: "create", Status: "ok"},
		{Cluster: "partyclub7", Operation: "delete", Status: "ok"},
		{Cluster: "partyclub7", Operation: "create", Status: "error", Error: "boom"},
	} {
		if err := j.Append(ctx, rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
		if rec.ID == "" {
			t.Errorf("Append did not assign an ID")
		}
	}

	all, err := j.List(ctx, "partyclub7", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d records, want 3", len(all))
	}
	if all[0].Status != "error" || all[2].Operation != "create" {
		t.Errorf("records not newest first: %+v %+v", all[0], all[2])
	}

	two, _ := j.List(ctx, "partyclub7", 2)
	if len(two) != 2 || two[1].Operation != "delete" {
		t.Errorf("limit 2 returned %+v", two)
	}

	two[0].Error = "mutated"
	again, _ := j.List(ctx, "partyclub7", 1)
	if again[0].Error != "boom" {
		t.Errorf("List returned shared records")
	}

	none, _ := j.List(ctx, "absent", 0)
	if len(none) != 0 {
		t.Errorf("expected no records, got %d", len(none))
	}
}
