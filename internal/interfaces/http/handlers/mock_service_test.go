package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/TrajMap/internal/application/mapview"
	"github.com/turtacn/TrajMap/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/TrajMap/internal/infrastructure/storage/minio"
	"github.com/turtacn/TrajMap/internal/render"
	"github.com/turtacn/TrajMap/pkg/types/trajectory"
)

type mockService struct {
	mock.Mock
}

var _ mapview.Service = (*mockService)(nil)

func (m *mockService) Layer(ctx context.Context, kind render.Kind) (*render.Layer, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*render.Layer), args.Error(1)
}

func (m *mockService) Render(ctx context.Context, kind render.Kind, format render.Format) (*mapview.Rendered, error) {
	args := m.Called(ctx, kind, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mapview.Rendered), args.Error(1)
}

func (m *mockService) Locations(ctx context.Context) (*render.Layer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*render.Layer), args.Error(1)
}

func (m *mockService) Advanced(ctx context.Context, path string) (*render.Layer, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*render.Layer), args.Error(1)
}

func (m *mockService) RunTraclus(ctx context.Context, p trajectory.TraclusParams) (*trajectory.TraclusResult, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trajectory.TraclusResult), args.Error(1)
}

func (m *mockService) RunAnnealing(ctx context.Context, p trajectory.AnnealingParams) (*trajectory.AnnealingResult, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trajectory.AnnealingResult), args.Error(1)
}

func (m *mockService) Export(ctx context.Context, kind render.Kind, format render.Format) (*minio.SnapshotRef, error) {
	args := m.Called(ctx, kind, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*minio.SnapshotRef), args.Error(1)
}

func (m *mockService) HandleRefresh(ctx context.Context, msg *kafka.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockService) Palette(n int) ([]string, error) {
	args := m.Called(n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

//Personal.AI order the ending
