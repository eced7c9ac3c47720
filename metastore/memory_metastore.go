package metastore

import (
	"context"
	"sync"
)

type (
	// MemoryMetaStore is used when no database is configured. Runs are lost on
	// exit.
	MemoryMetaStore struct {
		mu   sync.Mutex
		runs []Run
		ids  map[string]struct{}
	}
)

func NewMemoryMetaStore() *MemoryMetaStore {
	return &MemoryMetaStore{
		ids: make(map[string]struct{}),
	}
}

func (mms *MemoryMetaStore) RecordRun(_ context.Context, run Run) error {
	mms.mu.Lock()
	defer mms.mu.Unlock()
	if _, exists := mms.ids[run.ID]; exists {
		return nil
	}
	mms.ids[run.ID] = struct{}{}
	mms.runs = append(mms.runs, run)
	return nil
}

func (mms *MemoryMetaStore) ListRuns(_ context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		return []Run{}, nil
	}
	mms.mu.Lock()
	defer mms.mu.Unlock()
	runs := make([]Run, 0, min(limit, len(mms.runs)))
	for i := len(mms.runs) - 1; i >= 0 && len(runs) < limit; i-- {
		runs = append(runs, mms.runs[i])
	}
	return runs, nil
}

func (mms *MemoryMetaStore) Shutdown(_ context.Context) error {
	return nil
}
