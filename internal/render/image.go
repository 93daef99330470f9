package render

import (
	"fmt"
	"image/color"
	"io"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// screenDPI converts pixel sizes to vg lengths.
const screenDPI = 96

// StrokeColor parses a #rrggbb stroke into an opaque colour.
func StrokeColor(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid stroke colour %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

func pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / screenDPI
}

func layerTitle(l Layer, o Options) string {
	return fmt.Sprintf("%s: %s (%d lines)", o.Title, l.Kind, len(l.Polylines))
}

// encodeImage plots longitude on X and latitude on Y.  No projection is
// applied; at campus scale the distortion is negligible.
func encodeImage(w io.Writer, l Layer, o Options, format string) error {
	p := plot.New()
	p.Title.Text = layerTitle(l, o)
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"

	vp := o.Viewport(l)
	p.X.Min, p.X.Max = vp.MinLng, vp.MaxLng
	p.Y.Min, p.Y.Max = vp.MinLat, vp.MaxLat

	for i, pl := range l.Polylines {
		if len(pl.Path) == 0 {
			continue
		}
		c, err := StrokeColor(pl.StrokeColor)
		if err != nil {
			return fmt.Errorf("polyline %d: %w", i, err)
		}

		xys := make(plotter.XYs, len(pl.Path))
		for j, pt := range pl.Path {
			xys[j] = plotter.XY{X: pt.Lng, Y: pt.Lat}
		}

		if len(xys) == 1 {
			s, err := plotter.NewScatter(xys)
			if err != nil {
				return fmt.Errorf("polyline %d: %w", i, err)
			}
			s.GlyphStyle.Color = c
			s.GlyphStyle.Radius = vg.Points(2)
			p.Add(s)
			continue
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("polyline %d: %w", i, err)
		}
		line.Color = c
		line.Width = vg.Points(1.5)
		p.Add(line)
	}

	wt, err := p.WriterTo(pixels(o.Width), pixels(o.Height), format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

//Personal.AI order the ending
