// Package httpapi is the Gin-facing layer of cmd/server: request DTOs,
// validation, and the response envelope, grounded on the same
// data/error/pagination split noah-isme-sma-adp-api's pkg/response uses,
// trimmed to this engine's single resource (generation runs).
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusplan/timetable/pkg/xerrors"
)

// Envelope is the common response contract for every endpoint.
type Envelope struct {
	Data  interface{} `json:"data,omitempty"`
	Error *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody is the JSON shape of a failed request.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// JSON writes a success envelope.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, Envelope{Data: data})
}

// Error writes a failure envelope, mapping the error's xerrors.Kind (if any)
// to an HTTP status: 400 for config-validation kinds, 422 for
// NoFeasibleSolution, 500 otherwise.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	kind := "internal"

	var genErr *xerrors.GenerationError
	if errors.As(err, &genErr) {
		kind = string(genErr.Kind)
		status = statusForKind(genErr.Kind)
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(status, Envelope{Error: &ErrorBody{Kind: kind, Message: err.Error()}})
}

// KindOf extracts the xerrors.Kind of err as a string, or "internal" if err
// does not wrap a *xerrors.GenerationError.
func KindOf(err error) string {
	var genErr *xerrors.GenerationError
	if errors.As(err, &genErr) {
		return string(genErr.Kind)
	}
	return "internal"
}

func statusForKind(kind xerrors.Kind) int {
	switch kind {
	case xerrors.KindCapacityExceeded,
		xerrors.KindUnknownTeacher,
		xerrors.KindInfeasibleByConstruction,
		xerrors.KindOutOfRangeDimension,
		xerrors.KindEmptyInput:
		return http.StatusBadRequest
	case xerrors.KindNoFeasibleSolution:
		return http.StatusUnprocessableEntity
	case xerrors.KindInvariantViolation:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
