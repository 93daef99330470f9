package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/TrajMap/internal/application/mapview"
	"github.com/turtacn/TrajMap/internal/infrastructure/storage/minio"
	"github.com/turtacn/TrajMap/internal/render"
	"github.com/turtacn/TrajMap/internal/testutil"
	"github.com/turtacn/TrajMap/pkg/errors"
)

func layerRouter(h *LayerHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/layers", h.List)
	r.Get("/layers/{kind}", h.Get)
	r.Post("/layers/{kind}/export", h.Export)
	r.Get("/locations", h.Locations)
	r.Get("/advanced", h.Advanced)
	r.Get("/palette", h.Palette)
	return r
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestLayerHandler_List(t *testing.T) {
	h := NewLayerHandler(new(mockService), "", nil)
	w := serve(layerRouter(h), http.MethodGet, "/layers")

	require.Equal(t, http.StatusOK, w.Code)
	var cat LayerCatalog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cat))
	assert.Equal(t, render.Kinds, cat.Kinds)
	assert.Equal(t, render.FormatGeoJSON, cat.DefaultFormat)
}

func TestLayerHandler_Get_DefaultFormat(t *testing.T) {
	svc := new(mockService)
	svc.On("Render", mock.Anything, render.KindClusters, render.FormatGeoJSON).Return(&mapview.Rendered{
		Kind:        render.KindClusters,
		Format:      render.FormatGeoJSON,
		ContentType: "application/geo+json",
		Data:        []byte(`{"type":"FeatureCollection","features":[]}`),
		Colours:     4,
	}, nil)
	h := NewLayerHandler(svc, "", nil)

	w := serve(layerRouter(h), http.MethodGet, "/layers/clusters")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/geo+json", w.Header().Get("Content-Type"))
	assert.Equal(t, "4", w.Header().Get(ColoursHeader))
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestLayerHandler_Get_ExplicitFormat(t *testing.T) {
	svc := new(mockService)
	svc.On("Render", mock.Anything, render.KindRaw, render.FormatPNG).
		Return(&mapview.Rendered{ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}, nil)
	h := NewLayerHandler(svc, render.FormatJSON, nil)

	w := serve(layerRouter(h), http.MethodGet, "/layers/RAW?format=PNG")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
}

func TestLayerHandler_Get_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
		code   errors.ErrorCode
	}{
		{"unknown kind", "/layers/heatmap", http.StatusNotFound, errors.ErrCodeLayerKindUnknown},
		{"unknown format", "/layers/raw?format=bmp", http.StatusBadRequest, errors.ErrCodeRenderFormatUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			w := serve(layerRouter(NewLayerHandler(svc, "", nil)), http.MethodGet, tt.target)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, string(tt.code), decodeError(t, w).Code)
			svc.AssertNotCalled(t, "Render", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestLayerHandler_Get_BackendDown(t *testing.T) {
	svc := new(mockService)
	svc.On("Render", mock.Anything, render.KindFiltered, render.FormatGeoJSON).
		Return(nil, errors.New(errors.ErrCodeBackendUnavailable, "trajectory backend unavailable"))
	log := testutil.NewMockLogger()
	h := NewLayerHandler(svc, "", log)

	w := serve(layerRouter(h), http.MethodGet, "/layers/filtered")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "TRJ_001", decodeError(t, w).Code)
	assert.True(t, log.HasMessage("error", "request failed"))
}

func TestLayerHandler_Get_MasksUnknownErrors(t *testing.T) {
	svc := new(mockService)
	svc.On("Render", mock.Anything, mock.Anything, mock.Anything).Return(nil, assert.AnError)
	w := serve(layerRouter(NewLayerHandler(svc, "", nil)), http.MethodGet, "/layers/raw")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "COMMON_001", resp.Code)
	assert.NotContains(t, resp.Message, assert.AnError.Error())
}

func TestLayerHandler_Export(t *testing.T) {
	svc := new(mockService)
	svc.On("Export", mock.Anything, render.KindPartitioned, render.FormatSVG).
		Return(&minio.SnapshotRef{Bucket: "trajmap-snapshots", Key: "partitioned/x.svg", URL: "http://minio/x"}, nil)
	w := serve(layerRouter(NewLayerHandler(svc, "", nil)), http.MethodPost, "/layers/partitioned/export?format=svg")

	require.Equal(t, http.StatusCreated, w.Code)
	var ref minio.SnapshotRef
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ref))
	assert.Equal(t, "partitioned/x.svg", ref.Key)
}

func TestLayerHandler_Export_Disabled(t *testing.T) {
	svc := new(mockService)
	svc.On("Export", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New(errors.ErrCodeFeatureDisabled, "snapshot export is not configured"))
	w := serve(layerRouter(NewLayerHandler(svc, "", nil)), http.MethodPost, "/layers/clusters/export")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLayerHandler_Locations(t *testing.T) {
	l := render.FromLocations(testutil.SampleLocations(), "#000000")
	svc := new(mockService)
	svc.On("Locations", mock.Anything).Return(&l, nil)
	w := serve(layerRouter(NewLayerHandler(svc, "", nil)), http.MethodGet, "/locations")

	require.Equal(t, http.StatusOK, w.Code)
	var got render.Layer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got.Polylines, 3)
	assert.Equal(t, "#000000", got.Polylines[0].StrokeColor)
}

func TestLayerHandler_Advanced(t *testing.T) {
	l := render.Layer{Kind: render.KindRaw}
	svc := new(mockService)
	svc.On("Advanced", mock.Anything, "/advanced?src=a").Return(&l, nil)
	w := serve(layerRouter(NewLayerHandler(svc, "", nil)), http.MethodGet, "/advanced?path=%2Fadvanced%3Fsrc%3Da")
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestLayerHandler_Palette(t *testing.T) {
	svc := new(mockService)
	svc.On("Palette", 12).Return([]string{"#660000"}, nil)
	svc.On("Palette", 2).Return([]string{"#660000", "#663300"}, nil)
	h := layerRouter(NewLayerHandler(svc, "", nil))

	w := serve(h, http.MethodGet, "/palette")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(h, http.MethodGet, "/palette?n=2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"colours":["#660000","#663300"]}`, w.Body.String())

	w = serve(h, http.MethodGet, "/palette?n=two")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

//Personal.AI order the ending
