package http

import (
	"context"
	"errors"
	"net/http"

	"esgreporter/internal/core"
	"esgreporter/internal/log"
)

// failureMessages are the generic 500 bodies per metric kind. The cause is
// logged, never returned.
var failureMessages = map[core.MetricKind]struct{ create, fetch string }{
	core.Emissions: {"Failed to create emission", "Failed to fetch emissions"},
	core.Water:     {"Failed to create water usage", "Failed to fetch water usage"},
	core.Waste:     {"Failed to create waste entry", "Failed to fetch waste entries"},
}

const (
	msgFetchCompany   = "Failed to fetch company"
	msgCreateCompany  = "Failed to create company"
	msgGenerateReport = "Failed to generate report"
	msgFetchReports   = "Failed to fetch reports"
	msgInvalidBody    = "Invalid request body"
)

// statusFor maps a service error to its HTTP status and the message safe to
// send. Anything unclassified is a 500 carrying fallback.
func statusFor(err error, fallback string) (int, string) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Msg
	case errors.Is(err, errInvalidBody):
		return http.StatusBadRequest, msgInvalidBody
	case errors.Is(err, core.ErrCompanyNotFound):
		return http.StatusNotFound, core.ErrCompanyNotFound.Error()
	case errors.Is(err, core.ErrEntryNotFound):
		return http.StatusNotFound, core.ErrEntryNotFound.Error()
	case core.IsNotFound(err):
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusInternalServerError, fallback
	}
}

// writeError sends the mapped error response. Server errors are logged with
// their cause; client errors are left to the request log.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, fallback, component, op string) {
	status, msg := statusFor(err, fallback)
	if status >= http.StatusInternalServerError {
		fields := log.NewFields().WithErrorType(errorType(err))
		s.errLog.LogError(r.Context(), fallback, err, component, op, fields)
	}
	ErrorResponse(status, msg).Write(w)
}

func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return log.ErrorTypeTimeout
	case errors.Is(err, context.Canceled):
		return log.ErrorTypeNetwork
	default:
		return log.ErrorTypeDatabase
	}
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	NotFoundError("Not found").Write(w)
}
