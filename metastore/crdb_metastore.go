package metastore

import (
	"context"
	"errors"
	"fmt"

	"github.com/cockroachdb/cockroach-go/v2/crdb/crdbpgx"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
)

const undefinedTableCode = "42P01"

var ErrMissingTable = errors.New("combine_runs table missing, run migrations first")

type (
	CRDBMetaStore struct {
		pool *pgxpool.Pool
	}
)

func NewCRDBMetaStore(pool *pgxpool.Pool) *CRDBMetaStore {
	return &CRDBMetaStore{pool: pool}
}

func (cms *CRDBMetaStore) RecordRun(ctx context.Context, run Run) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("runID", run.ID).Msg("recording run")

	err := crdbpgx.ExecuteTx(ctx, cms.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO combine_runs (
				id, started_at, pattern, files, rows_loaded, rows_kept,
				window_lower, window_upper, output, format, bytes_written, duration_ms
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (id) DO NOTHING`,
			run.ID, run.StartedAt, run.Pattern, run.Files, run.RowsLoaded, run.RowsKept,
			run.WindowLower, run.WindowUpper, run.Output, run.Format, run.BytesWritten, run.DurationMS,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("error inserting run: %w", translateErr(err))
	}
	return nil
}

func (cms *CRDBMetaStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := cms.pool.Query(ctx, `
		SELECT id, started_at, pattern, files, rows_loaded, rows_kept,
			window_lower, window_upper, output, format, bytes_written, duration_ms
		FROM combine_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("error in pool.Query: %w", translateErr(err))
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		err = rows.Scan(&r.ID, &r.StartedAt, &r.Pattern, &r.Files, &r.RowsLoaded, &r.RowsKept,
			&r.WindowLower, &r.WindowUpper, &r.Output, &r.Format, &r.BytesWritten, &r.DurationMS)
		if err != nil {
			return nil, fmt.Errorf("error in rows.Scan: %w", err)
		}
		runs = append(runs, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error in rows.Err: %w", err)
	}
	return runs, nil
}

func (cms *CRDBMetaStore) Shutdown(_ context.Context) error {
	cms.pool.Close()
	return nil
}

func translateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTableCode {
		return fmt.Errorf("%w: %s", ErrMissingTable, pgErr.Message)
	}
	return err
}
