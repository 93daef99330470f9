// Package render turns backend payloads into coloured map layers and encodes
// them for the browser, GIS tools and static reports.
//
// Every builder owns a fresh colorseq.Sequencer for the duration of one call,
// so the same payload always produces the same colours.
package render

import (
	"sort"
	"strings"

	"github.com/turtacn/TrajMap/pkg/colorseq"
	"github.com/turtacn/TrajMap/pkg/errors"
	"github.com/turtacn/TrajMap/pkg/types/trajectory"
)

// Kind identifies which backend resource a layer was built from.
type Kind string

const (
	KindRaw         Kind = "raw"
	KindFiltered    Kind = "filtered"
	KindPartitioned Kind = "partitioned"
	KindClusters    Kind = "clusters"
)

// Kinds lists every layer kind in display order.
var Kinds = []Kind{KindRaw, KindFiltered, KindPartitioned, KindClusters}

func (k Kind) String() string { return string(k) }

// ParseKind accepts a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", errors.New(errors.ErrCodeLayerKindUnknown, "unknown layer kind").WithDetail(s)
}

// Polyline is one stroked path on the map.
type Polyline struct {
	Path        trajectory.Path `json:"path"`
	StrokeColor string          `json:"stroke_color"`
	// Group is the trajectory, cluster or source index the line belongs to.
	Group int `json:"group"`
}

// Layer is an ordered set of polylines of one kind.
type Layer struct {
	Kind      Kind       `json:"kind"`
	Polylines []Polyline `json:"polylines"`
	// Colours is the number of sequencer draws made while building the layer.
	Colours int `json:"colours"`
}

// Bounds returns the bounding box of every point in the layer.
func (l Layer) Bounds() trajectory.Bounds {
	var b trajectory.Bounds
	for _, pl := range l.Polylines {
		b = b.Union(pl.Path.Bounds())
	}
	return b
}

// Points returns the total number of coordinates in the layer.
func (l Layer) Points() int {
	n := 0
	for _, pl := range l.Polylines {
		n += len(pl.Path)
	}
	return n
}

// FromTrajectories gives each trajectory its own colour.
func FromTrajectories(kind Kind, trajs trajectory.Trajectories) Layer {
	seq := colorseq.New()
	l := Layer{Kind: kind, Polylines: make([]Polyline, 0, len(trajs))}
	for i, path := range trajs {
		l.Polylines = append(l.Polylines, Polyline{Path: path, StrokeColor: seq.Next(), Group: i})
		l.Colours++
	}
	return l
}

// FromClusters gives each cluster one colour shared by all of its lines.
// Empty clusters still consume a colour so cluster indices and colours stay
// aligned.
func FromClusters(clusters trajectory.Clusters) Layer {
	seq := colorseq.New()
	l := Layer{Kind: KindClusters, Polylines: make([]Polyline, 0, clusters.Len())}
	for i, cluster := range clusters {
		colour := seq.Next()
		l.Colours++
		for _, path := range cluster {
			l.Polylines = append(l.Polylines, Polyline{Path: path, StrokeColor: colour, Group: i})
		}
	}
	return l
}

// FromLocations draws raw location updates.  With a fixed colour every line
// uses it; otherwise each line takes the next sequencer colour.  Sources are
// visited in sorted order.
func FromLocations(updates trajectory.LocationUpdates, fixedColor string) Layer {
	sources := make([]string, 0, len(updates))
	for src := range updates {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	seq := colorseq.New()
	l := Layer{Kind: KindRaw, Polylines: make([]Polyline, 0, updates.Len())}
	for i, src := range sources {
		for _, path := range updates[src] {
			colour := fixedColor
			if colour == "" {
				colour = seq.Next()
				l.Colours++
			}
			l.Polylines = append(l.Polylines, Polyline{Path: path, StrokeColor: colour, Group: i})
		}
	}
	return l
}

//Personal.AI order the ending
