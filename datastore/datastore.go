package datastore

import (
	"context"
	"io"
)

type (
	DataStore interface {
		// WriteFile replaces the object called name with everything read from r
		WriteFile(ctx context.Context, name string, r io.Reader) (int64, error)
		// Location returns where name lives in this store, for logging and run records
		Location(name string) string

		Shutdown(ctx context.Context) error
	}
)
