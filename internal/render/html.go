package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// encodeHTML writes a self-contained interactive page with one series per
// polyline, zoomable with the mouse wheel.
func encodeHTML(w io.Writer, l Layer, o Options) error {
	vp := o.Viewport(l)

	chart := charts.NewLine()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: o.Title,
			Width:     fmt.Sprintf("%dpx", o.Width),
			Height:    fmt.Sprintf("%dpx", o.Height),
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    layerTitle(l, o),
			Subtitle: fmt.Sprintf("centre %.6f,%.6f zoom %d", o.Center.Lat, o.Center.Lng, o.Zoom),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Longitude", Min: vp.MinLng, Max: vp.MaxLng}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Latitude", Min: vp.MinLat, Max: vp.MaxLat}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "inside", XAxisIndex: []int{0}},
			opts.DataZoom{Type: "inside", YAxisIndex: []int{0}},
		),
	)

	for i, pl := range l.Polylines {
		if len(pl.Path) == 0 {
			continue
		}
		data := make([]opts.LineData, 0, len(pl.Path))
		for _, pt := range pl.Path {
			data = append(data, opts.LineData{Value: []interface{}{pt.Lng, pt.Lat}})
		}
		chart.AddSeries(fmt.Sprintf("%s-%d", l.Kind, i), data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(len(pl.Path) == 1)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: pl.StrokeColor, Width: 2}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: pl.StrokeColor}),
		)
	}

	return chart.Render(w)
}

//Personal.AI order the ending
