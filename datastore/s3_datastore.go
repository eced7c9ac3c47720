package datastore

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"

	"github.com/danthegoodman1/hitmerge/s3_helper"
)

type (
	// S3DataStore mirrors files to a bucket under prefix, keyed by base name.
	S3DataStore struct {
		uploader *s3_helper.Uploader
		prefix   string
	}
)

func NewS3DataStore(uploader *s3_helper.Uploader, prefix string) *S3DataStore {
	return &S3DataStore{
		uploader: uploader,
		prefix:   prefix,
	}
}

func (sds *S3DataStore) key(name string) string {
	return path.Join(sds.prefix, filepath.Base(name))
}

func (sds *S3DataStore) Location(name string) string {
	return fmt.Sprintf("s3://%s/%s", sds.uploader.Bucket(), sds.key(name))
}

func (sds *S3DataStore) WriteFile(ctx context.Context, name string, r io.Reader) (int64, error) {
	// uploads may be retried, so the body must be re-readable
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("error in io.ReadAll: %w", err)
	}
	err = sds.uploader.WriteBytesToS3(ctx, sds.key(name), b, contentType(name))
	if err != nil {
		return 0, fmt.Errorf("error in WriteBytesToS3: %w", err)
	}
	return int64(len(b)), nil
}

func (sds *S3DataStore) Shutdown(_ context.Context) error {
	return nil
}

func contentType(name string) *string {
	ct := "text/plain"
	if filepath.Ext(name) == ".parquet" {
		ct = "application/vnd.apache.parquet"
	}
	return &ct
}
