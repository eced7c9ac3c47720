package metastore

import (
	"context"
	"time"
)

type (
	// MetaStore keeps a ledger of combine runs
	MetaStore interface {
		// RecordRun stores run. Recording the same ID twice is a no-op.
		RecordRun(ctx context.Context, run Run) error
		// ListRuns returns the most recent runs first
		ListRuns(ctx context.Context, limit int) ([]Run, error)

		Shutdown(ctx context.Context) error
	}

	Run struct {
		ID        string
		StartedAt time.Time

		Pattern    string
		Files      int
		RowsLoaded int64
		RowsKept   int64

		WindowLower int64
		WindowUpper int64

		// Output is the primary location the merged file was written to
		Output       string
		Format       string
		BytesWritten int64
		DurationMS   int64
	}
)
