package datastore

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/danthegoodman1/hitmerge/utils"
	"github.com/rs/zerolog"
)

type (
	// DiskDataStore writes files under rootPath. Writes go to a temp file in
	// the destination directory which is renamed over the target, so a failed
	// write never leaves a truncated output behind.
	DiskDataStore struct {
		rootPath string
		perm     os.FileMode
	}
)

func NewDiskDataStore(rootPath string) (*DiskDataStore, error) {
	dds := &DiskDataStore{
		rootPath: rootPath,
		perm:     0o644,
	}

	return dds, nil
}

func (dds *DiskDataStore) Location(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dds.rootPath, name)
}

func (dds *DiskDataStore) WriteFile(ctx context.Context, name string, r io.Reader) (int64, error) {
	logger := zerolog.Ctx(ctx)
	dest := dds.Location(name)
	dir := filepath.Dir(dest)

	tmpPath := filepath.Join(dir, "."+filepath.Base(dest)+".tmp-"+utils.GenRandomShortID())
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, dds.perm)
	if err != nil {
		return 0, &utils.IOError{Op: "create", Path: tmpPath, Err: err}
	}

	fail := func(op string, err error) (int64, error) {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return 0, &utils.IOError{Op: op, Path: dest, Err: err}
	}

	bw := bufio.NewWriterSize(f, 64*1024)
	n, err := io.Copy(bw, r)
	if err != nil {
		return fail("write", err)
	}
	if err = bw.Flush(); err != nil {
		return fail("flush", err)
	}
	if err = f.Sync(); err != nil {
		return fail("sync", err)
	}
	if err = f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return 0, &utils.IOError{Op: "close", Path: dest, Err: err}
	}
	if err = os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return 0, &utils.IOError{Op: "rename", Path: dest, Err: err}
	}

	logger.Debug().Str("path", dest).Int64("bytes", n).Msg("wrote file to disk")
	return n, nil
}

func (dds *DiskDataStore) Shutdown(_ context.Context) error {
	return nil
}
