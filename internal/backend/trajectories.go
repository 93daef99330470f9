package backend

import (
	"context"
	"net/url"
	"strings"

	"github.com/turtacn/TrajMap/pkg/errors"
	"github.com/turtacn/TrajMap/pkg/types/trajectory"
)

// Resource names used in logs, metrics and cache keys.
const (
	ResourceLocations   = "locations"
	ResourceFiltered    = "filtered"
	ResourcePartitioned = "partitioned"
	ResourceClusters    = "clusters"
	ResourceTraclus     = "run_traclus"
	ResourceAnnealing   = "simulated_annealing"
	ResourceAdvanced    = "advanced"
)

// DefaultAdvancedPath is used when Advanced is called with an empty path.
const DefaultAdvancedPath = "/advanced"

// Locations returns the raw location updates keyed by source.  The service
// also enqueues a filtering pass as a side effect.
func (c *Client) Locations(ctx context.Context) (trajectory.LocationUpdates, error) {
	var out trajectory.LocationUpdates
	if err := c.get(ctx, ResourceLocations, c.resolve("/locations", nil), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Filtered returns the filtered trajectories.
func (c *Client) Filtered(ctx context.Context) (trajectory.Trajectories, error) {
	return c.trajectories(ctx, ResourceFiltered, "/filtered")
}

// Partitioned returns the TRACLUS line-segment partitions.
func (c *Client) Partitioned(ctx context.Context) (trajectory.Trajectories, error) {
	return c.trajectories(ctx, ResourcePartitioned, "/partitioned")
}

func (c *Client) trajectories(ctx context.Context, resource, path string) (trajectory.Trajectories, error) {
	var env trajectory.TrajectoriesEnvelope
	if err := c.get(ctx, resource, c.resolve(path, nil), &env); err != nil {
		return nil, err
	}
	return env.Trajectories, nil
}

// Clusters returns the TRACLUS clusters.
func (c *Client) Clusters(ctx context.Context) (trajectory.Clusters, error) {
	var env trajectory.ClustersEnvelope
	if err := c.get(ctx, ResourceClusters, c.resolve("/clusters", nil), &env); err != nil {
		return nil, err
	}
	return env.Clusters, nil
}

// RunTraclus starts a TRACLUS run with p.  The service answers with a
// free-form acknowledgement, so any 2xx is success.  Server errors are not
// retried since the run may already be under way.
func (c *Client) RunTraclus(ctx context.Context, p trajectory.TraclusParams) (*trajectory.TraclusResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := c.trigger(ctx, ResourceTraclus, c.resolve("/run_traclus", p.Query()), nil); err != nil {
		return nil, err
	}
	return &trajectory.TraclusResult{Status: "success"}, nil
}

// RunSimulatedAnnealing searches for the best epsilon starting from p.
func (c *Client) RunSimulatedAnnealing(ctx context.Context, p trajectory.AnnealingParams) (*trajectory.AnnealingResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var out trajectory.AnnealingResult
	if err := c.trigger(ctx, ResourceAnnealing, c.resolve("/simulated_annealing", p.Query()), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Advanced fetches location updates from a user-supplied path relative to
// the service root (not the API prefix).  Absolute URLs are rejected so the
// client cannot be pointed at another host.
func (c *Client) Advanced(ctx context.Context, path string) (trajectory.LocationUpdates, error) {
	if path == "" {
		path = DefaultAdvancedPath
	}
	u, err := url.Parse(path)
	if err != nil || u.IsAbs() || u.Host != "" {
		return nil, errors.New(errors.ErrCodeValidation, "advanced path must be relative").WithDetail(path)
	}
	if !strings.HasPrefix(u.Path, "/") {
		u.Path = "/" + u.Path
	}

	var out trajectory.LocationUpdates
	if err := c.get(ctx, ResourceAdvanced, c.baseURL+u.RequestURI(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

//Personal.AI order the ending
