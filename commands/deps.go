package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/danthegoodman1/hitmerge/crdb"
	"github.com/danthegoodman1/hitmerge/datastore"
	"github.com/danthegoodman1/hitmerge/metastore"
	"github.com/danthegoodman1/hitmerge/migrations"
	"github.com/danthegoodman1/hitmerge/pipeline"
	"github.com/danthegoodman1/hitmerge/s3_helper"
	"github.com/danthegoodman1/hitmerge/utils"
	"github.com/spf13/cobra"
)

type deps struct {
	stores    []datastore.DataStore
	metaStore metastore.MetaStore
}

// buildDeps wires the data stores and the run ledger from the environment.
// Output paths are resolved against the working directory; S3 and CRDB are
// only used when configured.
func buildDeps(ctx context.Context) (*deps, error) {
	d := &deps{}

	dds, err := datastore.NewDiskDataStore(".")
	if err != nil {
		return nil, fmt.Errorf("error in NewDiskDataStore: %w", err)
	}
	d.stores = append(d.stores, dds)

	if utils.S3_BUCKET_NAME != "" {
		uploader, err := s3_helper.NewUploader(s3_helper.Config{
			Bucket:   utils.S3_BUCKET_NAME,
			Region:   utils.AWS_DEFAULT_REGION,
			Endpoint: utils.S3_ENDPOINT,
		})
		if err != nil {
			return nil, fmt.Errorf("error in NewUploader: %w", err)
		}
		d.stores = append(d.stores, datastore.NewS3DataStore(uploader, utils.S3_PREFIX))
	}

	if utils.CRDB_DSN != "" {
		if err = migrations.CheckMigrations(utils.CRDB_DSN); err != nil {
			return nil, fmt.Errorf("error checking migrations: %w", err)
		}
		pool, err := crdb.ConnectToDB(ctx, utils.CRDB_DSN)
		if err != nil {
			return nil, fmt.Errorf("error connecting to CRDB: %w", err)
		}
		d.metaStore = metastore.NewCRDBMetaStore(pool)
	} else {
		d.metaStore = metastore.NewMemoryMetaStore()
	}

	return d, nil
}

func (d *deps) shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	for _, s := range d.stores {
		if err := s.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("error shutting down data store")
		}
	}
	if err := d.metaStore.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("error shutting down meta store")
	}
}

func bindConfigFlags(command *cobra.Command, cfg *pipeline.Config) {
	command.Flags().StringVar(&cfg.InputDir, "input-dir", utils.INPUT_DIR, "Directory searched for input files, defaults to $INPUT_DIR.")
	command.Flags().StringVar(&cfg.Pattern, "pattern", utils.INPUT_PATTERN, "Glob, relative to the input directory, matching one file per link, defaults to $INPUT_PATTERN.")
	command.Flags().StringVar(&cfg.OutputPath, "output", utils.OUTPUT_FILE, "Output file, overwritten if it exists, defaults to $OUTPUT_FILE.")
	command.Flags().IntVar(&cfg.MaxRows, "max-rows", int(utils.MAX_ROWS), "Rows read from each input file, the rest are ignored, defaults to $MAX_ROWS.")
	command.Flags().StringVar(&cfg.Format, "format", utils.OUTPUT_FORMAT, "Output format, text or parquet, defaults to $OUTPUT_FORMAT.")
}
