package s3_helper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/UltimateTournament/backoff/v4"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/rs/zerolog"
)

type (
	Config struct {
		Bucket   string
		Region   string
		Endpoint string
		// MaxElapsed bounds the total time spent retrying one upload
		MaxElapsed time.Duration
	}

	Uploader struct {
		sess       *session.Session
		bucket     string
		maxElapsed time.Duration
	}
)

func NewUploader(cfg Config) (*Uploader, error) {
	s3Config := &aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewEnvCredentials(),
	}
	if cfg.Endpoint != "" {
		s3Config.Endpoint = aws.String(cfg.Endpoint)
		s3Config.S3ForcePathStyle = aws.Bool(true)
	}

	s3Session, err := session.NewSession(s3Config)
	if err != nil {
		return nil, fmt.Errorf("error making new session: %w", err)
	}

	maxElapsed := cfg.MaxElapsed
	if maxElapsed == 0 {
		maxElapsed = time.Minute
	}
	return &Uploader{
		sess:       s3Session,
		bucket:     cfg.Bucket,
		maxElapsed: maxElapsed,
	}, nil
}

func (u *Uploader) Bucket() string {
	return u.bucket
}

// WriteBytesToS3 uploads b to key, retrying transient failures with
// exponential backoff. Client errors (4xx) are not retried.
func (u *Uploader) WriteBytesToS3(ctx context.Context, key string, b []byte, contentType *string) error {
	logger := zerolog.Ctx(ctx)
	uploader := s3manager.NewUploader(u.sess)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = u.maxElapsed

	s := time.Now()
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		_, err := uploader.UploadWithContext(ctx, &s3manager.UploadInput{
			Bucket:      aws.String(u.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(b),
			ContentType: contentType,
		})
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return backoff.Permanent(err)
		}
		logger.Warn().Err(err).Int("attempt", attempt).Str("key", key).Msg("s3 upload failed, retrying")
		return err
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return fmt.Errorf("error uploading to s3: %w", err)
	}

	d := time.Since(s)
	logger.Debug().Str("fileName", key).Int64("durationNS", d.Nanoseconds()).Str("durationHuman", d.String()).Msg("uploaded file to s3")

	return nil
}

// ReadBytesFromS3 downloads the whole object at key.
func (u *Uploader) ReadBytesFromS3(ctx context.Context, key string) ([]byte, error) {
	logger := zerolog.Ctx(ctx)
	downloader := s3manager.NewDownloader(u.sess)

	buf := &aws.WriteAtBuffer{}

	s := time.Now()
	_, err := downloader.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("error downloading from s3: %w", err)
	}

	d := time.Since(s)
	logger.Debug().Str("fileName", key).Int64("durationNS", d.Nanoseconds()).Str("durationHuman", d.String()).Msg("downloaded file from s3")

	return buf.Bytes(), nil
}

func isPermanent(err error) bool {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) {
		code := reqErr.StatusCode()
		return code >= 400 && code < 500 && code != http.StatusTooManyRequests && code != http.StatusRequestTimeout
	}
	var perm interface{ IsPermanent() bool }
	if errors.As(err, &perm) {
		return perm.IsPermanent()
	}
	return false
}
