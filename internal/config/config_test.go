package config_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/TrajMap/internal/backend"
	"github.com/turtacn/TrajMap/internal/config"
	"github.com/turtacn/TrajMap/pkg/types/trajectory"
)

// validConfig returns a Config that passes Validate().
func validConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_InvalidServerPort(t *testing.T) {
	t.Parallel()
	for _, p := range []int{0, -1, 65536} {
		cfg := validConfig()
		cfg.Server.Port = p
		err := cfg.Validate()
		require.Error(t, err, "port %d", p)
		assert.Contains(t, err.Error(), "server.port")
	}
}

func TestConfig_Validate_BackendURL(t *testing.T) {
	t.Parallel()
	for _, u := range []string{"", "localhost:5000", "ftp://host", "http://"} {
		cfg := validConfig()
		cfg.Backend.BaseURL = u
		err := cfg.Validate()
		require.Error(t, err, "url %q", u)
		assert.Contains(t, err.Error(), "backend.base_url")
	}
}

func TestConfig_Validate_PathPrefix(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Backend.PathPrefix = "books"
	assert.ErrorContains(t, cfg.Validate(), "backend.path_prefix")
}

func TestConfig_Validate_RedisOnlyWhenEnabled(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Redis.Addr = ""
	assert.NoError(t, cfg.Validate())

	cfg.Redis.Enabled = true
	assert.ErrorContains(t, cfg.Validate(), "redis.addr")

	cfg.Redis.Mode = "cluster"
	assert.ErrorContains(t, cfg.Validate(), "redis.cluster_addrs")
}

func TestConfig_Validate_KafkaOnlyWhenEnabled(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Kafka.Brokers = nil
	assert.NoError(t, cfg.Validate())

	cfg.Kafka.Enabled = true
	assert.ErrorContains(t, cfg.Validate(), "kafka.brokers")
}

func TestConfig_Validate_Render(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Render.Width = 0
	assert.ErrorContains(t, cfg.Validate(), "render.width")

	cfg = validConfig()
	cfg.Render.Zoom = 23
	assert.ErrorContains(t, cfg.Validate(), "render.zoom")

	cfg = validConfig()
	cfg.Render.CenterLat = 91
	assert.ErrorContains(t, cfg.Validate(), "centre")

	cfg = validConfig()
	cfg.Render.RawColor = "black"
	assert.ErrorContains(t, cfg.Validate(), "render.raw_color")
}

func TestConfig_Validate_Formats(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Render.DefaultFormat = "bmp"
	assert.ErrorContains(t, cfg.Validate(), "render.default_format")

	cfg = validConfig()
	cfg.Worker.SnapshotFormat = "tiff"
	assert.ErrorContains(t, cfg.Validate(), "worker.snapshot_format")

	cfg = validConfig()
	cfg.Worker.HealthPort = 70000
	assert.ErrorContains(t, cfg.Validate(), "worker.health_port")
}

func TestConfig_Validate_LogLevel(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Log.Level = "verbose"
	assert.ErrorContains(t, cfg.Validate(), "log.level")

	cfg = validConfig()
	cfg.Log.Format = "text"
	assert.ErrorContains(t, cfg.Validate(), "log.format")
}

func TestKafkaConfig_Derived(t *testing.T) {
	t.Parallel()
	cfg := validConfig()

	p := cfg.Kafka.ProducerConfig()
	assert.Equal(t, cfg.Kafka.Brokers, p.Brokers)
	assert.Equal(t, "all", p.Acks)

	c := cfg.Kafka.ConsumerConfig()
	assert.Equal(t, []string{config.DefaultRefreshTopic}, c.Topics)
	assert.Equal(t, config.DefaultDeadLetterTopic, c.Retry.DeadLetterTopic)
	assert.Equal(t, 10*cfg.Kafka.RetryBackoff, c.Retry.MaxRetryBackoff)
}

func TestServerConfig_Addr(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0.0.0.0:8080", validConfig().Server.Addr())
}

func TestRenderConfig_Options(t *testing.T) {
	t.Parallel()
	o := validConfig().Render.Options()
	assert.Equal(t, config.DefaultWidth, o.Width)
	assert.Equal(t, config.DefaultHeight, o.Height)
	assert.Equal(t, config.DefaultTitle, o.Title)
	assert.Equal(t, config.DefaultZoom, o.Zoom)
	assert.Equal(t, trajectory.LatLng{Lat: config.DefaultCenterLat, Lng: config.DefaultCenterLng}, o.Center)
}

func TestBackendConfig_ClientOptions(t *testing.T) {
	t.Parallel()
	var gotPath, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.UserAgent()
		_, _ = w.Write([]byte(`{"trajectories": []}`))
	}))
	defer srv.Close()

	cfg := validConfig()
	cfg.Backend.BaseURL = srv.URL
	cfg.Backend.UserAgent = "trajmap-test"

	c, err := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.ClientOptions(nil, nil)...)
	require.NoError(t, err)
	_, err = c.Filtered(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/books/filtered", gotPath)
	assert.Equal(t, "trajmap-test", gotUA)
}

//Personal.AI order the ending
