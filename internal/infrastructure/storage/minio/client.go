// Package minio stores rendered layer snapshots in S3-compatible object
// storage and hands out presigned links to them.
package minio

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TrajMap/pkg/errors"
)

// MinIOAPI is the subset of *minio.Client used here.
type MinIOAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

// MinIOConfig mirrors the minio section of the configuration file.
type MinIOConfig struct {
	Endpoint        string        `mapstructure:"endpoint"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	Region          string        `mapstructure:"region"`
	Bucket          string        `mapstructure:"bucket"`
	PresignExpiry   time.Duration `mapstructure:"presign_expiry"`
	RetentionDays   int           `mapstructure:"retention_days"`
}

// MinIOClient owns the connection and the snapshot bucket.
type MinIOClient struct {
	client MinIOAPI
	config *MinIOConfig
	logger logging.Logger
}

// NewMinIOClient connects, creates the snapshot bucket if missing and installs
// its expiry rule.
func NewMinIOClient(ctx context.Context, cfg *MinIOConfig, log logging.Logger) (*MinIOClient, error) {
	applyDefaults(cfg)

	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to create minio client")
	}

	c := newMinIOClient(api, cfg, log)
	if err := c.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info("minio client connected", logging.String("endpoint", cfg.Endpoint), logging.String("bucket", cfg.Bucket))
	return c, nil
}

func newMinIOClient(api MinIOAPI, cfg *MinIOConfig, log logging.Logger) *MinIOClient {
	applyDefaults(cfg)
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &MinIOClient{client: api, config: cfg, logger: log}
}

func applyDefaults(cfg *MinIOConfig) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "trajmap-snapshots"
	}
	if cfg.PresignExpiry == 0 {
		cfg.PresignExpiry = time.Hour
	}
	if cfg.RetentionDays == 0 {
		cfg.RetentionDays = 30
	}
}

// EnsureBucket creates the snapshot bucket and sets its expiry rule.  A
// lifecycle failure is logged, not returned; some S3 implementations lack it.
func (c *MinIOClient) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to check bucket").WithDetail(c.config.Bucket)
	}
	if !exists {
		if err := c.client.MakeBucket(ctx, c.config.Bucket, minio.MakeBucketOptions{Region: c.config.Region}); err != nil {
			return errors.Wrap(err, errors.ErrCodeStorageError, "failed to create bucket").WithDetail(c.config.Bucket)
		}
		c.logger.Info("created bucket", logging.String("bucket", c.config.Bucket))
	}

	rules := lifecycle.NewConfiguration()
	rules.Rules = []lifecycle.Rule{{
		ID:         "snapshot-expiry",
		Status:     "Enabled",
		Expiration: lifecycle.Expiration{Days: lifecycle.ExpirationDays(c.config.RetentionDays)},
	}}
	if err := c.client.SetBucketLifecycle(ctx, c.config.Bucket, rules); err != nil {
		c.logger.Warn("failed to set bucket lifecycle", logging.String("bucket", c.config.Bucket), logging.Err(err))
	}
	return nil
}

// HealthCheck verifies the bucket is reachable.
func (c *MinIOClient) HealthCheck(ctx context.Context) error {
	ok, err := c.client.BucketExists(ctx, c.config.Bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "minio unreachable")
	}
	if !ok {
		return errors.New(errors.ErrCodeStorageError, "snapshot bucket missing").WithDetail(c.config.Bucket)
	}
	return nil
}

// Bucket returns the snapshot bucket name.
func (c *MinIOClient) Bucket() string { return c.config.Bucket }

//Personal.AI order the ending
