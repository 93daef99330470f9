package render

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/turtacn/TrajMap/pkg/errors"
	"github.com/turtacn/TrajMap/pkg/types/trajectory"
)

// Format is an output encoding of a Layer.
type Format string

const (
	FormatJSON    Format = "json"
	FormatGeoJSON Format = "geojson"
	FormatPNG     Format = "png"
	FormatSVG     Format = "svg"
	FormatHTML    Format = "html"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatGeoJSON, FormatPNG, FormatSVG, FormatHTML}

func (f Format) String() string { return string(f) }

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := encoders[f]; ok {
		return f, nil
	}
	return "", errors.New(errors.ErrCodeRenderFormatUnsupported, "unsupported render format").WithDetail(s)
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatGeoJSON:
		return "application/geo+json"
	case FormatPNG:
		return "image/png"
	case FormatSVG:
		return "image/svg+xml"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// Extension is the file extension used for snapshots.
func (f Format) Extension() string { return string(f) }

// Options controls image and HTML output.
type Options struct {
	Width  int
	Height int
	Title  string
	// Center and Zoom frame an empty layer.  Zoom follows web-map tiling:
	// the visible span is 360/2^Zoom degrees of longitude.
	Center trajectory.LatLng
	Zoom   int
}

// DefaultOptions frames the Cal Poly campus.
func DefaultOptions() Options {
	return Options{
		Width:  1024,
		Height: 768,
		Title:  "TrajMap",
		Center: trajectory.LatLng{Lat: 35.300868, Lng: -120.660782},
		Zoom:   17,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Title == "" {
		o.Title = d.Title
	}
	if o.Center == (trajectory.LatLng{}) {
		o.Center = d.Center
	}
	if o.Zoom <= 0 {
		o.Zoom = d.Zoom
	}
	return o
}

// Viewport returns the box to draw: the layer bounds padded by 5%, or a box
// around Center sized by Zoom when the layer is empty.
func (o Options) Viewport(l Layer) trajectory.Bounds {
	b := l.Bounds()
	if b.Empty() {
		half := 180 / math.Pow(2, float64(o.Zoom))
		c := o.Center
		return trajectory.Bounds{}.
			Extend(trajectory.LatLng{Lat: c.Lat - half, Lng: c.Lng - half}).
			Extend(trajectory.LatLng{Lat: c.Lat + half, Lng: c.Lng + half})
	}
	padLat := (b.MaxLat - b.MinLat) * 0.05
	padLng := (b.MaxLng - b.MinLng) * 0.05
	if padLat == 0 {
		padLat = 1e-4
	}
	if padLng == 0 {
		padLng = 1e-4
	}
	return b.
		Extend(trajectory.LatLng{Lat: b.MinLat - padLat, Lng: b.MinLng - padLng}).
		Extend(trajectory.LatLng{Lat: b.MaxLat + padLat, Lng: b.MaxLng + padLng})
}

type encodeFunc func(w io.Writer, l Layer, o Options) error

var encoders = map[Format]encodeFunc{
	FormatJSON:    encodeJSON,
	FormatGeoJSON: encodeGeoJSON,
	FormatPNG:     func(w io.Writer, l Layer, o Options) error { return encodeImage(w, l, o, "png") },
	FormatSVG:     func(w io.Writer, l Layer, o Options) error { return encodeImage(w, l, o, "svg") },
	FormatHTML:    encodeHTML,
}

// Encode writes l to w in format f.
func Encode(w io.Writer, l Layer, f Format, o Options) error {
	enc, ok := encoders[f]
	if !ok {
		return errors.New(errors.ErrCodeRenderFormatUnsupported, "unsupported render format").WithDetail(string(f))
	}
	if err := enc(w, l, o.withDefaults()); err != nil {
		return errors.Wrap(err, errors.ErrCodeRenderFailed, fmt.Sprintf("failed to encode %s layer", l.Kind)).WithDetail(string(f))
	}
	return nil
}

func encodeJSON(w io.Writer, l Layer, _ Options) error {
	if l.Polylines == nil {
		l.Polylines = []Polyline{}
	}
	return json.NewEncoder(w).Encode(l)
}

//Personal.AI order the ending
