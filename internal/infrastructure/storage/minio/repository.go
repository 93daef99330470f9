package minio

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TrajMap/pkg/errors"
)

var (
	ErrSnapshotNotFound = errors.New(errors.ErrCodeNotFound, "snapshot not found")
)

// Snapshot is one encoded layer ready for upload.
type Snapshot struct {
	Kind        string
	Format      string
	ContentType string
	Data        []byte
	RequestID   string
}

// SnapshotRef points at a stored snapshot.
type SnapshotRef struct {
	Bucket    string    `json:"bucket"`
	Key       string    `json:"key"`
	Size      int64     `json:"size"`
	ETag      string    `json:"etag,omitempty"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SnapshotRepository stores rendered layers.
type SnapshotRepository interface {
	Save(ctx context.Context, s Snapshot) (*SnapshotRef, error)
	PresignedURL(ctx context.Context, key string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

type snapshotRepository struct {
	client *MinIOClient
	logger logging.Logger
	now    func() time.Time
}

// NewSnapshotRepository returns a SnapshotRepository on client's bucket.
func NewSnapshotRepository(client *MinIOClient, log logging.Logger) SnapshotRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &snapshotRepository{client: client, logger: log, now: time.Now}
}

// SnapshotKey builds "<kind>/<UTC timestamp>-<id>.<format>".
func SnapshotKey(kind, format string, at time.Time, id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return path.Join(kind, fmt.Sprintf("%s-%s.%s", at.UTC().Format("20060102T150405Z"), id, format))
}

func (r *snapshotRepository) Save(ctx context.Context, s Snapshot) (*SnapshotRef, error) {
	if s.Kind == "" || s.Format == "" || len(s.Data) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "snapshot requires kind, format and data")
	}
	at := r.now()
	key := SnapshotKey(s.Kind, s.Format, at, uuid.NewString())

	meta := map[string]string{"layer-kind": s.Kind, "format": s.Format}
	if s.RequestID != "" {
		meta["request-id"] = s.RequestID
	}
	info, err := r.client.client.PutObject(ctx, r.client.Bucket(), key, bytes.NewReader(s.Data), int64(len(s.Data)), minio.PutObjectOptions{
		ContentType:  s.ContentType,
		UserMetadata: meta,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSnapshotExportFailed, "failed to upload snapshot").WithDetail(key)
	}

	ref := &SnapshotRef{Bucket: r.client.Bucket(), Key: key, Size: info.Size, ETag: info.ETag, CreatedAt: at.UTC()}
	if url, err := r.PresignedURL(ctx, key); err == nil {
		ref.URL = url
	} else {
		r.logger.Warn("snapshot stored without presigned url", logging.String("key", key), logging.Err(err))
	}

	r.logger.Info("snapshot stored", logging.LayerKind(s.Kind), logging.Format(s.Format), logging.String("key", key), logging.Int64("size", info.Size))
	return ref, nil
}

func (r *snapshotRepository) PresignedURL(ctx context.Context, key string) (string, error) {
	u, err := r.client.client.PresignedGetObject(ctx, r.client.Bucket(), key, r.client.config.PresignExpiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "failed to presign snapshot").WithDetail(key)
	}
	return u.String(), nil
}

func (r *snapshotRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, err := r.client.client.StatObject(ctx, r.client.Bucket(), key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNoSuchKey(err) {
		return false, nil
	}
	return false, errors.Wrap(err, errors.ErrCodeStorageError, "failed to stat snapshot").WithDetail(key)
}

func (r *snapshotRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.client.RemoveObject(ctx, r.client.Bucket(), key, minio.RemoveObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return ErrSnapshotNotFound
		}
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to delete snapshot").WithDetail(key)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || strings.EqualFold(code, "NotFound")
}

//Personal.AI order the ending
