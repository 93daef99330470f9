package testutil

import "github.com/turtacn/TrajMap/pkg/types/trajectory"

// Points near the default map centre.
var (
	PointA = trajectory.LatLng{Lat: 35.3001, Lng: -120.6610}
	PointB = trajectory.LatLng{Lat: 35.3005, Lng: -120.6604}
	PointC = trajectory.LatLng{Lat: 35.3010, Lng: -120.6598}
	PointD = trajectory.LatLng{Lat: 35.3016, Lng: -120.6590}
)

// SampleTrajectories returns three short trajectories.
func SampleTrajectories() trajectory.Trajectories {
	return trajectory.Trajectories{
		{PointA, PointB},
		{PointB, PointC, PointD},
		{PointD, PointA},
	}
}

// SampleClusters returns two clusters of two and one paths.
func SampleClusters() trajectory.Clusters {
	return trajectory.Clusters{
		{{PointA, PointB}, {PointB, PointC}},
		{{PointC, PointD}},
	}
}

// SampleLocations returns updates from two sources.
func SampleLocations() trajectory.LocationUpdates {
	return trajectory.LocationUpdates{
		"phone-2": {{PointC, PointD}},
		"phone-1": {{PointA, PointB}, {PointB, PointC}},
	}
}

//Personal.AI order the ending
