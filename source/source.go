package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/danthegoodman1/hitmerge/hitfile"
	"github.com/danthegoodman1/hitmerge/record"
	"github.com/danthegoodman1/hitmerge/utils"
	"github.com/rs/zerolog"
)

type (
	// Source is the records of one input file, in file order, along with the
	// extent of its timestamps.
	Source struct {
		Path    string
		Records []record.Record

		LocalStart int64
		LocalEnd   int64
	}

	// NoInputError means the discovery pattern matched nothing.
	NoInputError struct {
		Pattern string
		Err     error
	}
)

func (e *NoInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no input files matched %q: %s", e.Pattern, e.Err)
	}
	return fmt.Sprintf("no input files matched %q", e.Pattern)
}

func (e *NoInputError) Unwrap() error {
	return e.Err
}

// New builds a Source from already parsed records. records must not be empty.
func New(path string, records []record.Record) Source {
	s := Source{
		Path:       path,
		Records:    records,
		LocalStart: records[0].Timestamp,
		LocalEnd:   records[0].Timestamp,
	}
	// timestamps are not assumed sorted within a file
	for _, rec := range records[1:] {
		s.LocalStart = min(s.LocalStart, rec.Timestamp)
		s.LocalEnd = max(s.LocalEnd, rec.Timestamp)
	}
	return s
}

// Discover returns the files matching pattern in lexical order. Callers must
// not depend on that order beyond reproducibility.
func Discover(pattern string) ([]string, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, &NoInputError{Pattern: pattern, Err: err}
	}
	if len(paths) == 0 {
		return nil, &NoInputError{Pattern: pattern}
	}
	sort.Strings(paths)
	return paths, nil
}

// Load discovers and parses every file matching pattern. Any file failing to
// parse fails the whole load.
func Load(ctx context.Context, pattern string, maxRows int) ([]Source, error) {
	logger := zerolog.Ctx(ctx)

	paths, err := Discover(pattern)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("pattern", pattern).Int("files", len(paths)).Msg("discovered input files")

	sources := make([]Source, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := LoadFile(ctx, path, maxRows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}

	return sources, nil
}

func LoadFile(ctx context.Context, path string, maxRows int) (Source, error) {
	logger := zerolog.Ctx(ctx).With().Str("file", path).Logger()
	st := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return Source{}, &utils.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	// ParseError and IOError pass through untouched
	records, err := hitfile.ParseRecords(f, path, maxRows)
	if err != nil {
		return Source{}, err
	}

	s := New(path, records)
	logger.Debug().Int("rows", len(records)).Int64("localStart", s.LocalStart).Int64("localEnd", s.LocalEnd).Msgf("loaded source in %s", time.Since(st))
	return s, nil
}
