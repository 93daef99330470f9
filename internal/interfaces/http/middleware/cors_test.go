package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func corsRequest(cfg CORSConfig, method, origin string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(method, "/api/v1/layers/clusters", nil)
	if origin != "" {
		r.Header.Set("Origin", origin)
	}
	if method == http.MethodOptions {
		r.Header.Set("Access-Control-Request-Method", http.MethodGet)
	}
	CORS(cfg)(okHandler()).ServeHTTP(w, r)
	return w
}

func TestCORS_Preflight(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://map.example.org"}

	w := corsRequest(cfg, http.MethodOptions, "https://map.example.org")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://map.example.org", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, w.Body.String())
}

func TestCORS_OriginMatching(t *testing.T) {
	tests := []struct {
		name      string
		allowed   []string
		wildcard  bool
		origin    string
		wantAllow string
	}{
		{"exact match", []string{"https://a.org", "https://b.org"}, false, "https://b.org", "https://b.org"},
		{"case insensitive", []string{"https://Map.org"}, false, "https://map.org", "https://map.org"},
		{"not listed", []string{"https://a.org"}, false, "https://evil.org", ""},
		{"any origin", []string{"*"}, false, "https://whatever.net", "*"},
		{"subdomain pattern", []string{"*.example.org"}, true, "https://tiles.example.org", "https://tiles.example.org"},
		{"pattern needs wildcard flag", []string{"*.example.org"}, false, "https://tiles.example.org", ""},
		{"no origin header", []string{"*"}, false, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCORSConfig()
			cfg.AllowedOrigins = tt.allowed
			cfg.AllowWildcard = tt.wildcard

			w := corsRequest(cfg, http.MethodGet, tt.origin)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantAllow, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORS_CredentialsEchoOrigin(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"*"}
	cfg.AllowCredentials = true

	w := corsRequest(cfg, http.MethodGet, "https://map.example.org")
	assert.Equal(t, "https://map.example.org", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_ExposedAndVaryHeaders(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://map.example.org"}

	w := corsRequest(cfg, http.MethodGet, "https://map.example.org")
	exposed := w.Header().Get("Access-Control-Expose-Headers")
	assert.Contains(t, exposed, "X-Request-ID")
	assert.Contains(t, exposed, "X-Layer-Colours")
	assert.Contains(t, w.Header().Values("Vary"), "Origin")
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Contains(t, cfg.AllowedMethods, http.MethodGet)
	assert.Contains(t, cfg.AllowedMethods, http.MethodPost)
	assert.Contains(t, cfg.AllowedHeaders, "X-Request-ID")
	assert.False(t, cfg.AllowCredentials)
	assert.False(t, cfg.AllowWildcard)
}

//Personal.AI order the ending
