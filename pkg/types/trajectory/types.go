// Package trajectory holds the wire types exchanged with the clustering
// backend and the parameter sets of its two analysis runs.
package trajectory

import (
	"bytes"
	"encoding/json"
	"math"
	"net/url"
	"strconv"

	"github.com/turtacn/TrajMap/pkg/errors"
)

// LatLng is a single geographic coordinate in the map widget's literal form.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Path is an ordered list of coordinates drawn as one polyline.
type Path []LatLng

// Trajectories is the payload of the filtered and partitioned resources.
type Trajectories []Path

// Cluster is a group of line segments that belong together.
type Cluster []Path

// Clusters is the payload of the clusters resource.
type Clusters []Cluster

// LocationUpdates maps a source identifier to the paths it reported.
type LocationUpdates map[string][]Path

// TrajectoriesEnvelope is the JSON body of /filtered and /partitioned.  The
// backend answers either {"trajectories": [...]} or a bare array; both decode.
type TrajectoriesEnvelope struct {
	Trajectories Trajectories `json:"trajectories"`
}

// UnmarshalJSON accepts the keyed object or a bare array.
func (e *TrajectoriesEnvelope) UnmarshalJSON(data []byte) error {
	if isBareArray(data) {
		return json.Unmarshal(data, &e.Trajectories)
	}
	type plain TrajectoriesEnvelope
	return json.Unmarshal(data, (*plain)(e))
}

// ClustersEnvelope is the JSON body of /clusters, keyed or bare.
type ClustersEnvelope struct {
	Clusters Clusters `json:"clusters"`
}

// UnmarshalJSON accepts the keyed object or a bare array.
func (e *ClustersEnvelope) UnmarshalJSON(data []byte) error {
	if isBareArray(data) {
		return json.Unmarshal(data, &e.Clusters)
	}
	type plain ClustersEnvelope
	return json.Unmarshal(data, (*plain)(e))
}

func isBareArray(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '['
}

// Len returns the number of line segments across all clusters.
func (c Clusters) Len() int {
	n := 0
	for _, cl := range c {
		n += len(cl)
	}
	return n
}

// Len returns the number of paths across all sources.
func (l LocationUpdates) Len() int {
	n := 0
	for _, paths := range l {
		n += len(paths)
	}
	return n
}

// ─────────────────────────────────────────────────────────────────────────────
// Bounds
// ─────────────────────────────────────────────────────────────────────────────

// Bounds is an axis-aligned box in degrees.  The zero value is empty.
type Bounds struct {
	MinLat, MinLng float64
	MaxLat, MaxLng float64
	valid          bool
}

// Empty reports whether no point has been added.
func (b Bounds) Empty() bool { return !b.valid }

// Extend grows b to include p.
func (b Bounds) Extend(p LatLng) Bounds {
	if !b.valid {
		return Bounds{MinLat: p.Lat, MaxLat: p.Lat, MinLng: p.Lng, MaxLng: p.Lng, valid: true}
	}
	b.MinLat = math.Min(b.MinLat, p.Lat)
	b.MaxLat = math.Max(b.MaxLat, p.Lat)
	b.MinLng = math.Min(b.MinLng, p.Lng)
	b.MaxLng = math.Max(b.MaxLng, p.Lng)
	return b
}

// Union returns the smallest box containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	if !o.valid {
		return b
	}
	if !b.valid {
		return o
	}
	b = b.Extend(LatLng{Lat: o.MinLat, Lng: o.MinLng})
	return b.Extend(LatLng{Lat: o.MaxLat, Lng: o.MaxLng})
}

// Center returns the midpoint of the box.
func (b Bounds) Center() LatLng {
	return LatLng{Lat: (b.MinLat + b.MaxLat) / 2, Lng: (b.MinLng + b.MaxLng) / 2}
}

// Bounds returns the bounding box of the path.
func (p Path) Bounds() Bounds {
	var b Bounds
	for _, pt := range p {
		b = b.Extend(pt)
	}
	return b
}

// ─────────────────────────────────────────────────────────────────────────────
// Analysis parameters
// ─────────────────────────────────────────────────────────────────────────────

// TraclusParams are the knobs of a TRACLUS partition-and-group run.
type TraclusParams struct {
	Epsilon                     float64 `json:"epsilon"`
	MinNeighbors                int     `json:"min_neighbors"`
	MinNumTrajectoriesInCluster int     `json:"min_num_trajectories_in_cluster"`
	MinVerticalLines            int     `json:"min_vertical_lines"`
	MinPrevDist                 float64 `json:"min_prev_dist"`
}

// Validate checks the parameters before they are sent to the backend.
func (p TraclusParams) Validate() error {
	switch {
	case !(p.Epsilon > 0) || math.IsInf(p.Epsilon, 0):
		return errors.New(errors.ErrCodeInvalidTraclusParams, "epsilon must be a positive number")
	case p.MinNeighbors < 0:
		return errors.New(errors.ErrCodeInvalidTraclusParams, "min_neighbors must not be negative")
	case p.MinNumTrajectoriesInCluster < 0:
		return errors.New(errors.ErrCodeInvalidTraclusParams, "min_num_trajectories_in_cluster must not be negative")
	case p.MinVerticalLines < 0:
		return errors.New(errors.ErrCodeInvalidTraclusParams, "min_vertical_lines must not be negative")
	case !(p.MinPrevDist >= 0) || math.IsInf(p.MinPrevDist, 0):
		return errors.New(errors.ErrCodeInvalidTraclusParams, "min_prev_dist must be a finite, non-negative number")
	}
	return nil
}

// Query encodes the parameters with the backend's parameter names.
func (p TraclusParams) Query() url.Values {
	q := url.Values{}
	q.Set("epsilon", formatFloat(p.Epsilon))
	q.Set("min_neighbors", strconv.Itoa(p.MinNeighbors))
	q.Set("min_num_trajectories_in_cluster", strconv.Itoa(p.MinNumTrajectoriesInCluster))
	q.Set("min_vertical_lines", strconv.Itoa(p.MinVerticalLines))
	q.Set("min_prev_dist", formatFloat(p.MinPrevDist))
	return q
}

// AnnealingParams drive the simulated-annealing search for a good epsilon.
type AnnealingParams struct {
	Epsilon        float64 `json:"epsilon"`
	NumSteps       int     `json:"num_steps"`
	MaxEpsilonJump float64 `json:"max_epsilon_jump"`
}

// Validate checks the parameters before they are sent to the backend.
func (p AnnealingParams) Validate() error {
	switch {
	case !(p.Epsilon > 0) || math.IsInf(p.Epsilon, 0):
		return errors.New(errors.ErrCodeInvalidAnnealParams, "epsilon must be a positive number")
	case p.NumSteps <= 0:
		return errors.New(errors.ErrCodeInvalidAnnealParams, "num_steps must be positive")
	case !(p.MaxEpsilonJump > 0) || math.IsInf(p.MaxEpsilonJump, 0):
		return errors.New(errors.ErrCodeInvalidAnnealParams, "max_epsilon_jump must be a positive number")
	}
	return nil
}

// Query encodes the parameters with the backend's parameter names.
func (p AnnealingParams) Query() url.Values {
	q := url.Values{}
	q.Set("epsilon", formatFloat(p.Epsilon))
	q.Set("num_steps", strconv.Itoa(p.NumSteps))
	q.Set("max_epsilon_jump", formatFloat(p.MaxEpsilonJump))
	return q
}

// AnnealingResult is the backend's answer to a simulated-annealing run.
type AnnealingResult struct {
	BestEpsilon float64 `json:"best_epsilon"`
}

// TraclusResult is the backend's acknowledgement of a TRACLUS run.
type TraclusResult struct {
	Status string `json:"status,omitempty"`
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

//Personal.AI order the ending
