package http

import (
	"net/http"
	"strconv"
	"strings"

	"esgreporter/internal/log"
	"esgreporter/internal/report"
)

// defaultHistoryLimit applies to GET /reports without a limit parameter.
const defaultHistoryLimit = 20

// handleReports serves POST (generate and download) and GET (history).
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.generateReport(w, r)
	case http.MethodGet:
		s.listReports(w, r)
	default:
		MethodNotAllowedError(http.MethodGet, http.MethodPost).Write(w)
	}
}

func (s *Server) generateReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	company, err := s.companies.Current(ctx)
	if err != nil {
		s.writeError(w, r, err, msgGenerateReport, log.ComponentCompany, log.OpRead)
		return
	}

	generated, err := s.reports.Generate(ctx, company)
	if err != nil {
		s.writeError(w, r, err, msgGenerateReport, log.ComponentReport, log.OpGenerate)
		return
	}

	NewResponse().
		Header("X-Report-ID", generated.Record.ID).
		Attachment(generated.Filename, report.ContentType, generated.Body).
		Write(w)
}

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			BadRequestError("limit must be a non-negative integer").Write(w)
			return
		}
		limit = n
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	company, err := s.companies.Current(ctx)
	if err != nil {
		s.writeError(w, r, err, msgFetchReports, log.ComponentCompany, log.OpRead)
		return
	}

	history, err := s.reports.History(ctx, company.ID, limit)
	if err != nil {
		s.writeError(w, r, err, msgFetchReports, log.ComponentReport, log.OpList)
		return
	}

	NewResponse().JSON(history).Write(w)
}

// handleCategories returns the suggested categories per kind and the
// industry list.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	NewResponse().JSON(s.catalog).Write(w)
}
