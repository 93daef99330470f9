package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/TrajMap/internal/testutil"
)

func TestNewServer(t *testing.T) {
	mux := http.NewServeMux()
	server := NewServer(ServerConfig{Addr: ":8080"}, mux, nil)

	assert.Equal(t, ":8080", server.Addr())
	assert.Equal(t, 10*time.Second, server.shutdownTimeout)
	assert.Same(t, mux, server.Handler())
}

func TestServer_ServeAndGracefulStop(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
	log := testutil.NewMockLogger()
	server := NewServer(ServerConfig{ShutdownTimeout: time.Second}, mux, log)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.True(t, log.HasMessage("info", "HTTP server stopped"))
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	server := NewServer(ServerConfig{Addr: ":0"}, http.NewServeMux(), nil)
	assert.NoError(t, server.Shutdown(context.Background()))
}

//Personal.AI order the ending
