package minio

import (
	"context"
	"errors"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/TrajMap/pkg/errors"
)

type mockMinIOAPI struct {
	mock.Mock
}

func (m *mockMinIOAPI) BucketExists(ctx context.Context, bucket string) (bool, error) {
	args := m.Called(ctx, bucket)
	return args.Bool(0), args.Error(1)
}

func (m *mockMinIOAPI) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	return m.Called(ctx, bucket, opts).Error(0)
}

func (m *mockMinIOAPI) SetBucketLifecycle(ctx context.Context, bucket string, cfg *lifecycle.Configuration) error {
	return m.Called(ctx, bucket, cfg).Error(0)
}

func (m *mockMinIOAPI) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucket, key, r, size, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *mockMinIOAPI) StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucket, key, opts)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *mockMinIOAPI) RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error {
	return m.Called(ctx, bucket, key, opts).Error(0)
}

func (m *mockMinIOAPI) PresignedGetObject(ctx context.Context, bucket, key string, expiry time.Duration, params url.Values) (*url.URL, error) {
	args := m.Called(ctx, bucket, key, expiry, params)
	if u := args.Get(0); u != nil {
		return u.(*url.URL), args.Error(1)
	}
	return nil, args.Error(1)
}

type ClientTestSuite struct {
	suite.Suite
	api    *mockMinIOAPI
	client *MinIOClient
	ctx    context.Context
}

func (s *ClientTestSuite) SetupTest() {
	s.api = new(mockMinIOAPI)
	s.client = newMinIOClient(s.api, &MinIOConfig{Endpoint: "localhost:9000"}, logging.NewNopLogger())
	s.ctx = context.Background()
}

func (s *ClientTestSuite) TestApplyDefaults() {
	cfg := &MinIOConfig{}
	applyDefaults(cfg)

	s.Equal("us-east-1", cfg.Region)
	s.Equal("trajmap-snapshots", cfg.Bucket)
	s.Equal(time.Hour, cfg.PresignExpiry)
	s.Equal(30, cfg.RetentionDays)
}

func (s *ClientTestSuite) TestApplyDefaults_KeepsExplicitValues() {
	cfg := &MinIOConfig{Bucket: "maps", RetentionDays: 7}
	applyDefaults(cfg)

	s.Equal("maps", cfg.Bucket)
	s.Equal(7, cfg.RetentionDays)
}

func (s *ClientTestSuite) TestEnsureBucket_CreatesMissing() {
	s.api.On("BucketExists", s.ctx, "trajmap-snapshots").Return(false, nil)
	s.api.On("MakeBucket", s.ctx, "trajmap-snapshots", minio.MakeBucketOptions{Region: "us-east-1"}).Return(nil)
	s.api.On("SetBucketLifecycle", s.ctx, "trajmap-snapshots", mock.MatchedBy(func(c *lifecycle.Configuration) bool {
		return len(c.Rules) == 1 && c.Rules[0].Expiration.Days == 30
	})).Return(nil)

	s.Require().NoError(s.client.EnsureBucket(s.ctx))
	s.api.AssertExpectations(s.T())
}

func (s *ClientTestSuite) TestEnsureBucket_ExistingSkipsCreate() {
	s.api.On("BucketExists", s.ctx, "trajmap-snapshots").Return(true, nil)
	s.api.On("SetBucketLifecycle", s.ctx, "trajmap-snapshots", mock.Anything).Return(nil)

	s.Require().NoError(s.client.EnsureBucket(s.ctx))
	s.api.AssertNotCalled(s.T(), "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ClientTestSuite) TestEnsureBucket_LifecycleFailureIsTolerated() {
	s.api.On("BucketExists", s.ctx, "trajmap-snapshots").Return(true, nil)
	s.api.On("SetBucketLifecycle", s.ctx, "trajmap-snapshots", mock.Anything).Return(errors.New("not implemented"))

	s.NoError(s.client.EnsureBucket(s.ctx))
}

func (s *ClientTestSuite) TestEnsureBucket_MakeBucketFails() {
	s.api.On("BucketExists", s.ctx, "trajmap-snapshots").Return(false, nil)
	s.api.On("MakeBucket", s.ctx, "trajmap-snapshots", mock.Anything).Return(errors.New("denied"))

	err := s.client.EnsureBucket(s.ctx)
	s.Require().Error(err)
	s.True(apperrors.IsCode(err, apperrors.ErrCodeStorageError))
}

func (s *ClientTestSuite) TestHealthCheck() {
	s.api.On("BucketExists", s.ctx, "trajmap-snapshots").Return(true, nil).Once()
	s.NoError(s.client.HealthCheck(s.ctx))

	s.api.On("BucketExists", s.ctx, "trajmap-snapshots").Return(false, nil).Once()
	s.Error(s.client.HealthCheck(s.ctx))

	s.api.On("BucketExists", s.ctx, "trajmap-snapshots").Return(false, errors.New("dial tcp")).Once()
	err := s.client.HealthCheck(s.ctx)
	s.True(apperrors.IsCode(err, apperrors.ErrCodeStorageError))
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func TestNewMinIOClient_NilLogger(t *testing.T) {
	c := newMinIOClient(new(mockMinIOAPI), &MinIOConfig{}, nil)
	require.NotNil(t, c.logger)
	assert.Equal(t, "trajmap-snapshots", c.Bucket())
}

//Personal.AI order the ending
