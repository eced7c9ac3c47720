package crdb

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
)

var (
	StandardContextTimeout = 10 * time.Second
)

func ConnectToDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Msg("connecting to CRDB...")
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("error in pgxpool.ParseConfig: %w", err)
	}

	// runs are recorded one at a time, a small pool is plenty
	config.MaxConns = 4
	config.MinConns = 1
	config.HealthCheckPeriod = time.Second * 5
	config.MaxConnLifetime = time.Minute * 30
	config.MaxConnIdleTime = time.Minute * 30

	connectCtx, cancel := context.WithTimeout(ctx, StandardContextTimeout)
	defer cancel()
	pool, err := pgxpool.ConnectConfig(connectCtx, config)
	if err != nil {
		return nil, fmt.Errorf("error in pgxpool.ConnectConfig: %w", err)
	}
	logger.Debug().Msg("connected to CRDB")
	return pool, nil
}
