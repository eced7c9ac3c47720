package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/danthegoodman1/hitmerge/datastore"
	"github.com/danthegoodman1/hitmerge/gologger"
	"github.com/danthegoodman1/hitmerge/hitfile"
	"github.com/danthegoodman1/hitmerge/merger"
	"github.com/danthegoodman1/hitmerge/metastore"
	"github.com/danthegoodman1/hitmerge/parquet_accumulator"
	"github.com/danthegoodman1/hitmerge/record"
	"github.com/danthegoodman1/hitmerge/source"
	"github.com/danthegoodman1/hitmerge/utils"
	"github.com/danthegoodman1/hitmerge/window"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const (
	FormatText    = "text"
	FormatParquet = "parquet"
)

var (
	validate = validator.New()

	ErrNoDataStores = errors.New("no data stores configured")
)

type (
	Config struct {
		InputDir string `validate:"required"`
		// Pattern is a glob relative to InputDir
		Pattern string `validate:"required"`
		// OutputPath is resolved by the primary data store
		OutputPath string `validate:"required"`
		MaxRows    int    `validate:"gt=0"`
		Format     string `validate:"oneof=text parquet"`
	}

	Stats struct {
		RunID      string
		Files      int
		RowsLoaded int64
		RowsKept   int64
		Window     window.Window
		// WindowEmpty is set when no timestamp can fall inside the window
		WindowEmpty  bool
		Outputs      []string
		BytesWritten int64
		TimeMS       int64
	}

	// Runner executes the combine pipeline. Each call to Run is one blocking
	// pass: load, resolve, filter, merge, sort, write.
	Runner struct {
		// Stores receive the encoded output in order, the first is primary
		Stores    []datastore.DataStore
		MetaStore metastore.MetaStore
	}
)

func DefaultConfig() Config {
	return Config{
		InputDir:   utils.INPUT_DIR,
		Pattern:    utils.INPUT_PATTERN,
		OutputPath: utils.OUTPUT_FILE,
		MaxRows:    int(utils.MAX_ROWS),
		Format:     utils.OUTPUT_FORMAT,
	}
}

func (c Config) Validate() error {
	return validate.Struct(c)
}

func NewRunner(ms metastore.MetaStore, stores ...datastore.DataStore) *Runner {
	return &Runner{
		Stores:    stores,
		MetaStore: ms,
	}
}

// Combine runs the in-memory stages and returns the ordered sequence.
func Combine(ctx context.Context, cfg Config) ([]record.Record, Stats, error) {
	logger := zerolog.Ctx(ctx)
	var stats Stats

	st := time.Now()
	sources, err := source.Load(ctx, filepath.Join(cfg.InputDir, cfg.Pattern), cfg.MaxRows)
	if err != nil {
		return nil, stats, fmt.Errorf("error in source.Load: %w", err)
	}
	stats.Files = len(sources)
	for _, s := range sources {
		stats.RowsLoaded += int64(len(s.Records))
	}
	logger.Debug().Int("files", stats.Files).Int64("rows", stats.RowsLoaded).Msgf("loaded sources in %s", time.Since(st))

	w, err := window.Resolve(sources)
	if err != nil {
		return nil, stats, fmt.Errorf("error in window.Resolve: %w", err)
	}
	stats.Window = w
	stats.WindowEmpty = w.Empty()
	if stats.WindowEmpty {
		logger.Warn().Int64("lower", w.Lower).Int64("upper", w.Upper).Msg("sources do not overlap, output will be empty")
	} else {
		logger.Debug().Int64("lower", w.Lower).Int64("upper", w.Upper).Msg("resolved window")
	}

	st = time.Now()
	merged := merger.Merge(window.FilterAll(sources, w))
	ordered := merger.Sort(merged)
	stats.RowsKept = int64(len(ordered))
	logger.Debug().Int64("rows", stats.RowsKept).Msgf("filtered, merged and sorted in %s", time.Since(st))

	return ordered, stats, nil
}

// Encode renders ordered in the configured output format.
func Encode(format string, ordered []record.Record) (*bytes.Buffer, error) {
	var b bytes.Buffer
	switch format {
	case FormatParquet:
		if _, err := parquet_accumulator.WriteRecords(&b, ordered); err != nil {
			return nil, fmt.Errorf("error in parquet_accumulator.WriteRecords: %w", err)
		}
	default:
		if _, err := hitfile.WritePairs(&b, ordered); err != nil {
			return nil, fmt.Errorf("error in hitfile.WritePairs: %w", err)
		}
	}
	return &b, nil
}

// Run combines the inputs named by cfg and writes the result to every store.
// Any error aborts the run and is returned; nothing is retried at this level.
func (r *Runner) Run(ctx context.Context, cfg Config) (Stats, error) {
	start := time.Now()
	runID := utils.GenKSortedID("run_")
	ctx = gologger.WithRunID(ctx, *zerolog.Ctx(ctx), runID)
	logger := zerolog.Ctx(ctx)

	if err := cfg.Validate(); err != nil {
		return Stats{RunID: runID}, fmt.Errorf("invalid config: %w", err)
	}
	if len(r.Stores) == 0 {
		return Stats{RunID: runID}, ErrNoDataStores
	}

	ordered, stats, err := Combine(ctx, cfg)
	stats.RunID = runID
	if err != nil {
		return stats, err
	}

	b, err := Encode(cfg.Format, ordered)
	if err != nil {
		return stats, err
	}
	encoded := b.Bytes()

	for _, store := range r.Stores {
		n, err := store.WriteFile(ctx, cfg.OutputPath, bytes.NewReader(encoded))
		if err != nil {
			return stats, fmt.Errorf("error writing to %s: %w", store.Location(cfg.OutputPath), err)
		}
		stats.Outputs = append(stats.Outputs, store.Location(cfg.OutputPath))
		stats.BytesWritten += n
	}
	stats.TimeMS = time.Since(start).Milliseconds()

	if r.MetaStore != nil {
		err = r.MetaStore.RecordRun(ctx, metastore.Run{
			ID:           runID,
			StartedAt:    start,
			Pattern:      filepath.Join(cfg.InputDir, cfg.Pattern),
			Files:        stats.Files,
			RowsLoaded:   stats.RowsLoaded,
			RowsKept:     stats.RowsKept,
			WindowLower:  stats.Window.Lower,
			WindowUpper:  stats.Window.Upper,
			Output:       stats.Outputs[0],
			Format:       cfg.Format,
			BytesWritten: int64(len(encoded)),
			DurationMS:   stats.TimeMS,
		})
		if err != nil {
			// output is already persisted, ledger failures are only logged
			logger.Error().Err(err).Msg("error recording run")
		}
	}

	logger.Info().Interface("stats", stats).Msg("combined sources")
	return stats, nil
}
