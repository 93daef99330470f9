package render

import (
	"encoding/json"

	"github.com/turtacn/TrajMap/pkg/errors"
	"github.com/turtacn/TrajMap/pkg/types/trajectory"
)

// FromPayload builds a layer from a saved backend response body.  Filtered
// and partitioned payloads may be the {"trajectories": [...]} envelope or a
// bare array; clusters likewise accept {"clusters": [...]} or a bare array.
func FromPayload(kind Kind, data []byte, rawColor string) (Layer, error) {
	switch kind {
	case KindRaw:
		var updates trajectory.LocationUpdates
		if err := json.Unmarshal(data, &updates); err != nil {
			return Layer{}, malformed(kind, err)
		}
		return FromLocations(updates, rawColor), nil

	case KindFiltered, KindPartitioned:
		var env trajectory.TrajectoriesEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return Layer{}, malformed(kind, err)
		}
		return FromTrajectories(kind, env.Trajectories), nil

	case KindClusters:
		var env trajectory.ClustersEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return Layer{}, malformed(kind, err)
		}
		return FromClusters(env.Clusters), nil
	}
	return Layer{}, errors.New(errors.ErrCodeLayerKindUnknown, "unknown layer kind").WithDetail(string(kind))
}

func malformed(kind Kind, err error) error {
	return errors.Wrap(err, errors.ErrCodeMalformedPayload, "malformed "+string(kind)+" payload")
}

//Personal.AI order the ending
