package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/TrajMap/internal/application/mapview"
	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TrajMap/internal/render"
)

// ColoursHeader reports how many sequencer colours a rendered layer used.
const ColoursHeader = "X-Layer-Colours"

// LayerHandler serves coloured map layers.
type LayerHandler struct {
	svc           mapview.Service
	defaultFormat render.Format
	logger        logging.Logger
}

// NewLayerHandler creates a LayerHandler.  An empty defaultFormat means
// GeoJSON.
func NewLayerHandler(svc mapview.Service, defaultFormat render.Format, logger logging.Logger) *LayerHandler {
	if defaultFormat == "" {
		defaultFormat = render.FormatGeoJSON
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &LayerHandler{svc: svc, defaultFormat: defaultFormat, logger: logger}
}

// LayerCatalog lists what GET /layers/{kind} accepts.
type LayerCatalog struct {
	Kinds         []render.Kind   `json:"kinds"`
	Formats       []render.Format `json:"formats"`
	DefaultFormat render.Format   `json:"default_format"`
}

// List handles GET /api/v1/layers.
func (h *LayerHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LayerCatalog{
		Kinds:         render.Kinds,
		Formats:       render.Formats,
		DefaultFormat: h.defaultFormat,
	})
}

func (h *LayerHandler) format(r *http.Request) (render.Format, error) {
	f := r.URL.Query().Get("format")
	if f == "" {
		return h.defaultFormat, nil
	}
	return render.ParseFormat(f)
}

// Get handles GET /api/v1/layers/{kind}?format=.
func (h *LayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	kind, err := render.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	format, err := h.format(r)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	out, err := h.svc.Render(r.Context(), kind, format)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", out.ContentType)
	w.Header().Set(ColoursHeader, strconv.Itoa(out.Colours))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Data)
}

// Export handles POST /api/v1/layers/{kind}/export?format=.
func (h *LayerHandler) Export(w http.ResponseWriter, r *http.Request) {
	kind, err := render.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	format, err := h.format(r)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	ref, err := h.svc.Export(r.Context(), kind, format)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, ref)
}

// Locations handles GET /api/v1/locations: the raw layer fetched fresh from
// the backend.
func (h *LayerHandler) Locations(w http.ResponseWriter, r *http.Request) {
	l, err := h.svc.Locations(r.Context())
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// Advanced handles GET /api/v1/advanced?path=.  path is a backend path such
// as "/advanced?src=phone-1"; empty means "/advanced".
func (h *LayerHandler) Advanced(w http.ResponseWriter, r *http.Request) {
	l, err := h.svc.Advanced(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// PaletteResponse is the body of GET /api/v1/palette.
type PaletteResponse struct {
	Colours []string `json:"colours"`
}

// Palette handles GET /api/v1/palette?n=.  n defaults to one full cycle.
func (h *LayerHandler) Palette(w http.ResponseWriter, r *http.Request) {
	n, err := queryInt(r, "n", 12)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	colours, err := h.svc.Palette(n)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, PaletteResponse{Colours: colours})
}

//Personal.AI order the ending
