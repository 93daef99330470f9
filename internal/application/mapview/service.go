// Package mapview is the application service behind the map: it fetches
// backend payloads (through the cache when one is configured), colours them
// into layers, encodes them, and keeps cached layers and exported snapshots
// fresh after analysis runs.
package mapview

import (
	"bytes"
	"context"
	"time"

	"github.com/turtacn/TrajMap/internal/infrastructure/database/redis"
	"github.com/turtacn/TrajMap/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TrajMap/internal/infrastructure/storage/minio"
	"github.com/turtacn/TrajMap/internal/render"
	"github.com/turtacn/TrajMap/pkg/colorseq"
	"github.com/turtacn/TrajMap/pkg/errors"
	"github.com/turtacn/TrajMap/pkg/types/trajectory"
)

// MaxPaletteSize bounds Palette.
const MaxPaletteSize = 1000

// Backend is the clustering service.  *backend.Client satisfies it.
type Backend interface {
	Locations(ctx context.Context) (trajectory.LocationUpdates, error)
	Filtered(ctx context.Context) (trajectory.Trajectories, error)
	Partitioned(ctx context.Context) (trajectory.Trajectories, error)
	Clusters(ctx context.Context) (trajectory.Clusters, error)
	RunTraclus(ctx context.Context, p trajectory.TraclusParams) (*trajectory.TraclusResult, error)
	RunSimulatedAnnealing(ctx context.Context, p trajectory.AnnealingParams) (*trajectory.AnnealingResult, error)
	Advanced(ctx context.Context, path string) (trajectory.LocationUpdates, error)
}

// Cache is the subset of redis.Cache the service uses.
type Cache interface {
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader redis.Loader) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// RefreshPublisher announces that a layer is stale.  *kafka.RefreshPublisher
// satisfies it.
type RefreshPublisher interface {
	PublishRefresh(ctx context.Context, kind, reason, requestID string) error
}

// SnapshotStore keeps exported layers.  minio.SnapshotRepository satisfies it.
type SnapshotStore interface {
	Save(ctx context.Context, s minio.Snapshot) (*minio.SnapshotRef, error)
}

// Metrics is the subset of AppMetrics the service records into.
type Metrics interface {
	RecordRender(kind, format string, colours int, d time.Duration)
	RecordCacheAccess(kind string, hit bool)
	RecordSnapshot(kind, format string)
	RecordRefreshPublished(kind string)
	RecordRefreshProcessed(kind string, err error)
}

// Service is the map application service.
type Service interface {
	// Layer returns the coloured layer of kind.
	Layer(ctx context.Context, kind render.Kind) (*render.Layer, error)
	// Render returns the layer of kind encoded as format.
	Render(ctx context.Context, kind render.Kind, format render.Format) (*Rendered, error)
	// Locations returns the raw layer straight from the backend and asks for
	// the filtered layer to be rebuilt.
	Locations(ctx context.Context) (*render.Layer, error)
	// Advanced draws location updates from a user-supplied backend path.
	Advanced(ctx context.Context, path string) (*render.Layer, error)
	RunTraclus(ctx context.Context, p trajectory.TraclusParams) (*trajectory.TraclusResult, error)
	RunAnnealing(ctx context.Context, p trajectory.AnnealingParams) (*trajectory.AnnealingResult, error)
	// Export renders and uploads a snapshot.
	Export(ctx context.Context, kind render.Kind, format render.Format) (*minio.SnapshotRef, error)
	// HandleRefresh consumes one layer.refresh event.
	HandleRefresh(ctx context.Context, msg *kafka.Message) error
	// Palette returns the first n sequencer colours.
	Palette(n int) ([]string, error)
}

// Rendered is an encoded layer.
type Rendered struct {
	Kind        render.Kind
	Format      render.Format
	ContentType string
	Data        []byte
	Polylines   int
	Colours     int
}

type serviceImpl struct {
	backend        Backend
	cache          Cache
	publisher      RefreshPublisher
	snapshots      SnapshotStore
	metrics        Metrics
	logger         logging.Logger
	renderOpts     render.Options
	rawColor       string
	cacheTTL       time.Duration
	snapshotFormat render.Format
}

// Option configures NewService.
type Option func(*serviceImpl)

// WithCache caches backend payloads.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *serviceImpl) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithRefreshPublisher emits layer.refresh events after analysis runs.
func WithRefreshPublisher(p RefreshPublisher) Option {
	return func(s *serviceImpl) { s.publisher = p }
}

// WithSnapshotStore enables Export and snapshotting on refresh.
func WithSnapshotStore(st SnapshotStore) Option {
	return func(s *serviceImpl) { s.snapshots = st }
}

// WithMetrics records render, cache and refresh metrics.
func WithMetrics(m Metrics) Option {
	return func(s *serviceImpl) { s.metrics = m }
}

// WithRenderOptions sets image size, title and empty-layer viewport.
func WithRenderOptions(o render.Options) Option {
	return func(s *serviceImpl) { s.renderOpts = o }
}

// WithRawColor sets the fixed stroke for raw location layers.  "" colours
// each raw line from the sequencer.
func WithRawColor(hex string) Option {
	return func(s *serviceImpl) { s.rawColor = hex }
}

// WithSnapshotFormat sets the format written by HandleRefresh.
func WithSnapshotFormat(f render.Format) Option {
	return func(s *serviceImpl) { s.snapshotFormat = f }
}

// NewService creates the map service.  Every collaborator but the backend is
// optional.
func NewService(b Backend, logger logging.Logger, opts ...Option) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &serviceImpl{
		backend:        b,
		logger:         logger.Named("mapview"),
		renderOpts:     render.DefaultOptions(),
		rawColor:       "#000000",
		snapshotFormat: render.FormatGeoJSON,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ─────────────────────────────────────────────────────────────────────────────
// Layers
// ─────────────────────────────────────────────────────────────────────────────

func cacheKey(kind render.Kind) string { return "layer:" + string(kind) }

// fetch loads one backend payload, through the cache when there is one.
func fetch[T any](ctx context.Context, s *serviceImpl, kind render.Kind, load func(ctx context.Context) (T, error)) (T, error) {
	if s.cache == nil {
		return load(ctx)
	}

	var out T
	hit, err := s.cache.GetOrSet(ctx, cacheKey(kind), &out, s.cacheTTL, func(ctx context.Context) (interface{}, error) {
		return load(ctx)
	})
	if err != nil && !errors.Is(err, redis.ErrCacheMiss) {
		return out, err
	}
	// A miss here means the backend answered null; draw nothing.
	if s.metrics != nil {
		s.metrics.RecordCacheAccess(string(kind), hit)
	}
	return out, nil
}

func (s *serviceImpl) Layer(ctx context.Context, kind render.Kind) (*render.Layer, error) {
	var l render.Layer
	switch kind {
	case render.KindRaw:
		updates, err := fetch(ctx, s, kind, s.backend.Locations)
		if err != nil {
			return nil, err
		}
		l = render.FromLocations(updates, s.rawColor)

	case render.KindFiltered:
		trajs, err := fetch(ctx, s, kind, s.backend.Filtered)
		if err != nil {
			return nil, err
		}
		l = render.FromTrajectories(kind, trajs)

	case render.KindPartitioned:
		trajs, err := fetch(ctx, s, kind, s.backend.Partitioned)
		if err != nil {
			return nil, err
		}
		l = render.FromTrajectories(kind, trajs)

	case render.KindClusters:
		clusters, err := fetch(ctx, s, kind, s.backend.Clusters)
		if err != nil {
			return nil, err
		}
		l = render.FromClusters(clusters)

	default:
		return nil, errors.New(errors.ErrCodeLayerKindUnknown, "unknown layer kind").WithDetail(string(kind))
	}
	return &l, nil
}

func (s *serviceImpl) Render(ctx context.Context, kind render.Kind, format render.Format) (*Rendered, error) {
	if _, err := render.ParseFormat(string(format)); err != nil {
		return nil, err
	}
	l, err := s.Layer(ctx, kind)
	if err != nil {
		return nil, err
	}
	return s.encode(ctx, l, format)
}

func (s *serviceImpl) encode(ctx context.Context, l *render.Layer, format render.Format) (*Rendered, error) {
	start := time.Now()
	var buf bytes.Buffer
	if err := render.Encode(&buf, *l, format, s.renderOpts); err != nil {
		s.logger.Error("render failed", logging.LayerKind(string(l.Kind)), logging.Format(string(format)),
			logging.RequestID(RequestIDFromContext(ctx)), logging.Err(err))
		return nil, err
	}
	d := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordRender(string(l.Kind), string(format), l.Colours, d)
	}
	s.logger.Debug("layer rendered",
		logging.LayerKind(string(l.Kind)),
		logging.Format(string(format)),
		logging.Int("polylines", len(l.Polylines)),
		logging.Int("bytes", buf.Len()),
		logging.Duration("elapsed", d))

	return &Rendered{
		Kind:        l.Kind,
		Format:      format,
		ContentType: format.ContentType(),
		Data:        buf.Bytes(),
		Polylines:   len(l.Polylines),
		Colours:     l.Colours,
	}, nil
}

func (s *serviceImpl) Locations(ctx context.Context) (*render.Layer, error) {
	updates, err := s.backend.Locations(ctx)
	if err != nil {
		return nil, err
	}
	l := render.FromLocations(updates, s.rawColor)
	s.invalidate(ctx, render.KindFiltered)
	s.publishRefresh(ctx, render.KindFiltered, "locations fetched")
	return &l, nil
}

func (s *serviceImpl) Advanced(ctx context.Context, path string) (*render.Layer, error) {
	updates, err := s.backend.Advanced(ctx, path)
	if err != nil {
		return nil, err
	}
	l := render.FromLocations(updates, s.rawColor)
	return &l, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Analysis runs
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) RunTraclus(ctx context.Context, p trajectory.TraclusParams) (*trajectory.TraclusResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	res, err := s.backend.RunTraclus(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logger.Info("traclus run completed",
		logging.Float64("epsilon", p.Epsilon),
		logging.Int("min_neighbors", p.MinNeighbors),
		logging.RequestID(RequestIDFromContext(ctx)))

	s.invalidate(ctx, render.KindPartitioned, render.KindClusters)
	for _, kind := range []render.Kind{render.KindPartitioned, render.KindClusters} {
		s.publishRefresh(ctx, kind, "traclus run")
	}
	return res, nil
}

func (s *serviceImpl) RunAnnealing(ctx context.Context, p trajectory.AnnealingParams) (*trajectory.AnnealingResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	res, err := s.backend.RunSimulatedAnnealing(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logger.Info("simulated annealing completed",
		logging.Float64("start_epsilon", p.Epsilon),
		logging.Float64("best_epsilon", res.BestEpsilon),
		logging.RequestID(RequestIDFromContext(ctx)))
	return res, nil
}

// invalidate drops cached payloads.  Failures are logged; the entries expire
// on their own.
func (s *serviceImpl) invalidate(ctx context.Context, kinds ...render.Kind) {
	if s.cache == nil {
		return
	}
	keys := make([]string, len(kinds))
	for i, k := range kinds {
		keys[i] = cacheKey(k)
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("failed to invalidate cached layers", logging.Any("keys", keys), logging.Err(err))
	}
}

// publishRefresh is best effort: a lost event only delays a snapshot.
func (s *serviceImpl) publishRefresh(ctx context.Context, kind render.Kind, reason string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRefresh(ctx, string(kind), reason, RequestIDFromContext(ctx)); err != nil {
		s.logger.Warn("failed to publish layer refresh", logging.LayerKind(string(kind)), logging.Err(err))
		return
	}
	if s.metrics != nil {
		s.metrics.RecordRefreshPublished(string(kind))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Snapshots and refresh events
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) Export(ctx context.Context, kind render.Kind, format render.Format) (*minio.SnapshotRef, error) {
	if s.snapshots == nil {
		return nil, errors.New(errors.ErrCodeFeatureDisabled, "snapshot export is not configured")
	}
	out, err := s.Render(ctx, kind, format)
	if err != nil {
		return nil, err
	}
	ref, err := s.snapshots.Save(ctx, minio.Snapshot{
		Kind:        string(kind),
		Format:      format.Extension(),
		ContentType: out.ContentType,
		Data:        out.Data,
		RequestID:   RequestIDFromContext(ctx),
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordSnapshot(string(kind), string(format))
	}
	return ref, nil
}

func (s *serviceImpl) HandleRefresh(ctx context.Context, msg *kafka.Message) error {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		return err
	}
	if env.EventType != kafka.EventTypeLayerRefresh {
		s.logger.Debug("ignoring event", logging.String("event_type", env.EventType))
		return nil
	}
	var payload kafka.LayerRefreshPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}
	if env.RequestID != "" {
		ctx = ContextWithRequestID(ctx, env.RequestID)
	}

	err = s.refresh(ctx, payload)
	if s.metrics != nil {
		s.metrics.RecordRefreshProcessed(payload.Kind, err)
	}
	return err
}

func (s *serviceImpl) refresh(ctx context.Context, p kafka.LayerRefreshPayload) error {
	kind, err := render.ParseKind(p.Kind)
	if err != nil {
		return err
	}
	s.invalidate(ctx, kind)

	log := s.logger.With(logging.LayerKind(string(kind)), logging.String("reason", p.Reason), logging.RequestID(RequestIDFromContext(ctx)))
	if s.snapshots == nil {
		// Warm the cache so the next map request is served from Redis.
		if _, err := s.Layer(ctx, kind); err != nil {
			return err
		}
		log.Info("layer refreshed")
		return nil
	}

	ref, err := s.Export(ctx, kind, s.snapshotFormat)
	if err != nil {
		return err
	}
	log.Info("layer refreshed", logging.String("snapshot", ref.Key))
	return nil
}

// Palette returns the first n colours a fresh sequencer produces.
func (s *serviceImpl) Palette(n int) ([]string, error) {
	if n < 1 || n > MaxPaletteSize {
		return nil, errors.Newf(errors.ErrCodeValidation, "palette size must be between 1 and %d", MaxPaletteSize)
	}
	return colorseq.Take(n), nil
}

//Personal.AI order the ending
