package render

import (
	"encoding/json"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ToFeatureCollection converts l to GeoJSON.  Coordinates are [lng, lat].
// Single-point paths become Points; empty paths are skipped.
func ToFeatureCollection(l Layer) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, pl := range l.Polylines {
		var geom orb.Geometry
		switch len(pl.Path) {
		case 0:
			continue
		case 1:
			geom = orb.Point{pl.Path[0].Lng, pl.Path[0].Lat}
		default:
			ls := make(orb.LineString, 0, len(pl.Path))
			for _, p := range pl.Path {
				ls = append(ls, orb.Point{p.Lng, p.Lat})
			}
			geom = ls
		}

		f := geojson.NewFeature(geom)
		f.ID = i
		f.Properties = geojson.Properties{
			"stroke": pl.StrokeColor,
			"group":  pl.Group,
			"kind":   string(l.Kind),
		}
		fc.Append(f)
	}
	return fc
}

func encodeGeoJSON(w io.Writer, l Layer, _ Options) error {
	b, err := json.Marshal(ToFeatureCollection(l))
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

//Personal.AI order the ending
