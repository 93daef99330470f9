// Package handlers implements the TrajMap REST endpoints on top of the map
// service.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TrajMap/pkg/errors"
)

// DefaultMaxBodySize bounds JSON request bodies when no limit is configured.
const DefaultMaxBodySize = 1 << 20

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeAppError maps err to its status and a structured body.  Errors that
// are not AppErrors are masked as internal errors.
func writeAppError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	resp := ErrorResponse{RequestID: chimw.GetReqID(r.Context())}

	var ae *errors.AppError
	if errors.As(err, &ae) {
		resp.Code = string(ae.Code)
		resp.Message = ae.Message
		resp.Detail = ae.Detail
	} else {
		resp.Code = string(errors.ErrCodeInternal)
		resp.Message = errors.DefaultMessageForCode(errors.ErrCodeInternal)
	}

	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed",
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
			logging.RequestID(resp.RequestID),
			logging.Err(err))
	}
	writeJSON(w, status, resp)
}

// decodeJSON reads a bounded JSON body into dst.  An empty body leaves dst
// untouched.
func decodeJSON(r *http.Request, w http.ResponseWriter, maxBytes int64, dst interface{}) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return nil
		}
		return errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body")
	}
	return nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Newf(errors.ErrCodeBadRequest, "%s must be an integer", name).WithDetail(v)
	}
	return n, nil
}

// queryFloat parses an optional float query parameter into dst.
func queryFloat(r *http.Request, name string, dst *float64) error {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return errors.Newf(errors.ErrCodeBadRequest, "%s must be a number", name).WithDetail(v)
	}
	*dst = f
	return nil
}

//Personal.AI order the ending
