package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/danthegoodman1/hitmerge/datastore"
	"github.com/danthegoodman1/hitmerge/hitfile"
	"github.com/danthegoodman1/hitmerge/metastore"
	"github.com/danthegoodman1/hitmerge/source"
)

type fixture struct {
	inDir  string
	outDir string
	runner *Runner
	ms     *metastore.MemoryMetaStore
}

func newFixture(t *testing.T, files map[string]string) fixture {
	t.Helper()
	f := fixture{
		inDir:  t.TempDir(),
		outDir: t.TempDir(),
		ms:     metastore.NewMemoryMetaStore(),
	}
	for name, contents := range files {
		if err := os.WriteFile(filepath.Join(f.inDir, name), []byte(contents), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	dds, err := datastore.NewDiskDataStore(f.outDir)
	if err != nil {
		t.Fatal(err)
	}
	f.runner = NewRunner(f.ms, dds)
	return f
}

func (f fixture) config() Config {
	return Config{
		InputDir:   f.inDir,
		Pattern:    "felix5*_off.txt",
		OutputPath: "full-apa.txt",
		MaxRows:    500_000,
		Format:     FormatText,
	}
}

func (f fixture) output(t *testing.T) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(f.outDir, "full-apa.txt"))
	if err != nil {
		t.Fatal(err)
	}
	return b
}

var overlapping = map[string]string{
	"felix501_off.txt": "a 1 100 0\nb 2 120 0\nc 3 140 0\nd 4 300 0\n",
	"felix502_off.txt": "1a 10 90\n1b 11 130\n1c 12 120\n1d 13 250\n",
	"felix503_off.txt": "2a 20 110\n2b 21 125\n2c 22 260\n",
}

func TestRunMerges(t *testing.T) {
	f := newFixture(t, overlapping)
	stats, err := f.runner.Run(context.Background(), f.config())
	if err != nil {
		t.Fatal(err)
	}

	// window is (max(100, 90, 110), min(300, 250, 260)) = (110, 250)
	if stats.Window.Lower != 110 || stats.Window.Upper != 250 {
		t.Fatalf("unexpected window %s", stats.Window)
	}
	if stats.Files != 3 || stats.RowsLoaded != 11 {
		t.Fatalf("unexpected load stats %+v", stats)
	}

	pairs, err := hitfile.ReadPairs(bytes.NewReader(f.output(t)), "full-apa.txt")
	if err != nil {
		t.Fatal(err)
	}
	expected := []hitfile.Pair{
		{Value: 2, Timestamp: 120},
		{Value: 12, Timestamp: 120},
		{Value: 21, Timestamp: 125},
		{Value: 11, Timestamp: 130},
		{Value: 3, Timestamp: 140},
	}
	if int64(len(pairs)) != stats.RowsKept || len(pairs) != len(expected) {
		t.Fatalf("expected %d rows, got %d (stats say %d)", len(expected), len(pairs), stats.RowsKept)
	}
	for i := range pairs {
		// the two records at 120 come from different sources, so their order is not checked
		if pairs[i].Timestamp != expected[i].Timestamp {
			t.Fatalf("row %d: got %+v, want %+v", i, pairs[i], expected[i])
		}
		if expected[i].Timestamp != 120 && pairs[i].Value != expected[i].Value {
			t.Fatalf("row %d: got %+v, want %+v", i, pairs[i], expected[i])
		}
	}

	runs, _ := f.ms.ListRuns(context.Background(), 10)
	if len(runs) != 1 || runs[0].ID != stats.RunID || runs[0].RowsKept != 5 {
		t.Fatalf("run not recorded: %+v", runs)
	}
}

func TestRunIdempotent(t *testing.T) {
	f := newFixture(t, overlapping)
	if _, err := f.runner.Run(context.Background(), f.config()); err != nil {
		t.Fatal(err)
	}
	first := f.output(t)
	if _, err := f.runner.Run(context.Background(), f.config()); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, f.output(t)) {
		t.Fatal("second run produced different bytes")
	}
}

func TestRunEdgesProduceEmptyOutput(t *testing.T) {
	cases := map[string]map[string]string{
		"A": {
			"felix501_off.txt": "1 10 5\n2 20 15\n",
			"felix502_off.txt": "3 30 10\n4 40 20\n",
		},
		"B": {
			"felix501_off.txt": "1 1 100\n2 2 200\n",
			"felix502_off.txt": "3 3 150\n4 4 250\n",
		},
		"disjoint": {
			"felix501_off.txt": "1 1 1\n2 2 2\n",
			"felix502_off.txt": "3 3 10\n4 4 20\n",
		},
	}
	for name, files := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, files)
			stats, err := f.runner.Run(context.Background(), f.config())
			if err != nil {
				t.Fatal(err)
			}
			if stats.RowsKept != 0 {
				t.Fatalf("expected no rows, got %d", stats.RowsKept)
			}
			if len(f.output(t)) != 0 {
				t.Fatal("expected an empty output file")
			}
		})
	}
}

func TestRunParseErrorWritesNothing(t *testing.T) {
	f := newFixture(t, map[string]string{
		"felix501_off.txt": "1 1 100\n2 2 200\n",
		"felix502_off.txt": "zz 1 2\n",
	})
	_, err := f.runner.Run(context.Background(), f.config())
	var pe *hitfile.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if _, err = os.Stat(filepath.Join(f.outDir, "full-apa.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("expected no output file")
	}
	runs, _ := f.ms.ListRuns(context.Background(), 10)
	if len(runs) != 0 {
		t.Fatal("failed run should not be recorded")
	}
}

func TestRunNoInput(t *testing.T) {
	f := newFixture(t, map[string]string{"unrelated.txt": "1 1 1\n"})
	_, err := f.runner.Run(context.Background(), f.config())
	var nie *source.NoInputError
	if !errors.As(err, &nie) {
		t.Fatalf("expected NoInputError, got %v", err)
	}
	entries, _ := os.ReadDir(f.outDir)
	if len(entries) != 0 {
		t.Fatal("expected nothing written")
	}
}

func TestRunParquet(t *testing.T) {
	f := newFixture(t, overlapping)
	cfg := f.config()
	cfg.Format = FormatParquet
	cfg.OutputPath = "full-apa.parquet"

	stats, err := f.runner.Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(f.outDir, "full-apa.parquet"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("PAR1")) || int64(len(b)) != stats.BytesWritten {
		t.Fatal("expected a parquet file")
	}
}

func TestRunMultipleStores(t *testing.T) {
	f := newFixture(t, overlapping)
	mirrorDir := t.TempDir()
	mirror, _ := datastore.NewDiskDataStore(mirrorDir)
	f.runner.Stores = append(f.runner.Stores, mirror)

	stats, err := f.runner.Run(context.Background(), f.config())
	if err != nil {
		t.Fatal(err)
	}
	if len(stats.Outputs) != 2 {
		t.Fatalf("expected 2 outputs, got %+v", stats.Outputs)
	}
	b, err := os.ReadFile(filepath.Join(mirrorDir, "full-apa.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, f.output(t)) {
		t.Fatal("mirror differs from primary")
	}
}

func TestRunInvalidConfig(t *testing.T) {
	f := newFixture(t, overlapping)
	cfg := f.config()
	cfg.Format = "csv"
	if _, err := f.runner.Run(context.Background(), cfg); err == nil {
		t.Fatal("expected a validation error")
	}

	cfg = f.config()
	cfg.MaxRows = 0
	if _, err := f.runner.Run(context.Background(), cfg); err == nil {
		t.Fatal("expected a validation error")
	}
}

func TestRunNoStores(t *testing.T) {
	f := newFixture(t, overlapping)
	r := NewRunner(nil)
	if _, err := r.Run(context.Background(), f.config()); !errors.Is(err, ErrNoDataStores) {
		t.Fatalf("expected ErrNoDataStores, got %v", err)
	}
}
