//go:build integration

// Package integration runs the bootstrap wiring against real Redis and MinIO
// containers.  Tests require Docker and are gated behind the "integration"
// build tag.
package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/TrajMap/internal/config"
)

const (
	minioUser     = "trajmap"
	minioPassword = "trajmap-secret"
	startupWait   = 60 * time.Second
)

const clustersBody = `{"clusters": [
	[[{"lat": 35.30, "lng": -120.66}, {"lat": 35.31, "lng": -120.65}]],
	[[{"lat": 35.32, "lng": -120.64}, {"lat": 35.33, "lng": -120.63}]]
]}`

// backend serves a fixed clusters response and counts requests.
func backend(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(clustersBody))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func startContainer(t *testing.T, req testcontainers.ContainerRequest) (testcontainers.Container, string) {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	return container, host
}

// startRedis launches Redis 7 and returns its address.
func startRedis(t *testing.T) string {
	container, host := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(startupWait),
	})
	port, err := container.MappedPort(context.Background(), "6379")
	require.NoError(t, err)
	return fmt.Sprintf("%s:%s", host, port.Port())
}

// startMinIO launches a single-node MinIO and returns its endpoint.
func startMinIO(t *testing.T) string {
	container, host := startContainer(t, testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     minioUser,
			"MINIO_ROOT_PASSWORD": minioPassword,
		},
		Cmd:        []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(startupWait),
	})
	port, err := container.MappedPort(context.Background(), "9000")
	require.NoError(t, err)
	return fmt.Sprintf("%s:%s", host, port.Port())
}

func baseConfig(backendURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Backend.BaseURL = backendURL
	config.ApplyDefaults(cfg)
	return cfg
}

//Personal.AI order the ending
