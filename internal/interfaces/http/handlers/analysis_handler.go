package handlers

import (
	"net/http"

	"github.com/turtacn/TrajMap/internal/application/mapview"
	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TrajMap/pkg/types/trajectory"
)

// AnalysisHandler triggers backend analysis runs.  Parameters come from a
// JSON body; query parameters with the backend's names override it.
type AnalysisHandler struct {
	svc         mapview.Service
	maxBodySize int64
	logger      logging.Logger
}

// NewAnalysisHandler creates an AnalysisHandler.
func NewAnalysisHandler(svc mapview.Service, maxBodySize int64, logger logging.Logger) *AnalysisHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &AnalysisHandler{svc: svc, maxBodySize: maxBodySize, logger: logger}
}

func traclusFromQuery(r *http.Request, p *trajectory.TraclusParams) error {
	if err := queryFloat(r, "epsilon", &p.Epsilon); err != nil {
		return err
	}
	if err := queryFloat(r, "min_prev_dist", &p.MinPrevDist); err != nil {
		return err
	}
	var err error
	if p.MinNeighbors, err = queryInt(r, "min_neighbors", p.MinNeighbors); err != nil {
		return err
	}
	if p.MinNumTrajectoriesInCluster, err = queryInt(r, "min_num_trajectories_in_cluster", p.MinNumTrajectoriesInCluster); err != nil {
		return err
	}
	p.MinVerticalLines, err = queryInt(r, "min_vertical_lines", p.MinVerticalLines)
	return err
}

// Traclus handles POST /api/v1/traclus.
func (h *AnalysisHandler) Traclus(w http.ResponseWriter, r *http.Request) {
	var p trajectory.TraclusParams
	if err := decodeJSON(r, w, h.maxBodySize, &p); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	if err := traclusFromQuery(r, &p); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	res, err := h.svc.RunTraclus(r.Context(), p)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Annealing handles POST /api/v1/annealing.
func (h *AnalysisHandler) Annealing(w http.ResponseWriter, r *http.Request) {
	var p trajectory.AnnealingParams
	if err := decodeJSON(r, w, h.maxBodySize, &p); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	if err := queryFloat(r, "epsilon", &p.Epsilon); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	if err := queryFloat(r, "max_epsilon_jump", &p.MaxEpsilonJump); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	var err error
	if p.NumSteps, err = queryInt(r, "num_steps", p.NumSteps); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	res, err := h.svc.RunAnnealing(r.Context(), p)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

//Personal.AI order the ending
