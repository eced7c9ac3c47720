package metastore

import (
	"context"
	"testing"
	"time"
)

func TestMemoryMetaStore(t *testing.T) {
	ms := NewMemoryMetaStore()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "b"} {
		err := ms.RecordRun(ctx, Run{ID: id, StartedAt: time.Now()})
		if err != nil {
			t.Fatal(err)
		}
	}

	runs, err := ms.ListRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("expected most recent first, got %+v", runs)
	}

	all, _ := ms.ListRuns(ctx, 10)
	if len(all) != 3 {
		t.Fatalf("duplicate ID should not be recorded twice, got %d runs", len(all))
	}
}
