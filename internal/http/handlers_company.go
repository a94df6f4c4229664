package http

import (
	"net/http"

	"esgreporter/internal/core"
	"esgreporter/internal/log"
	"esgreporter/internal/services"
)

// companyResponse is the dashboard payload. Company is null before setup.
type companyResponse struct {
	Company *core.Company `json:"company"`
	Stats   *core.Stats   `json:"stats,omitempty"`
}

// handleCompany serves GET (company with stats) and POST (setup) /company.
func (s *Server) handleCompany(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getCompany(w, r)
	case http.MethodPost:
		s.createCompany(w, r)
	default:
		MethodNotAllowedError(http.MethodGet, http.MethodPost).Write(w)
	}
}

func (s *Server) getCompany(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	company, err := s.companies.Current(ctx)
	if core.IsNotFound(err) {
		NewResponse().JSON(companyResponse{}).Write(w)
		return
	}
	if err != nil {
		s.writeError(w, r, err, msgFetchCompany, log.ComponentCompany, log.OpRead)
		return
	}

	stats, err := s.aggregation.Summarize(ctx, company.ID)
	if err != nil {
		s.writeError(w, r, err, msgFetchCompany, log.ComponentAggregation, log.OpRead)
		return
	}

	NewResponse().JSON(companyResponse{Company: &company, Stats: &stats}).Write(w)
}

func (s *Server) createCompany(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, err, msgCreateCompany, log.ComponentCompany, log.OpParse)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	company, err := s.companies.Setup(ctx, services.CompanyInput{
		Name:     p.Get("name"),
		Industry: p.Get("industry"),
		Size:     p.Get("size"),
	})
	if err != nil {
		s.writeError(w, r, err, msgCreateCompany, log.ComponentCompany, log.OpCreate)
		return
	}

	NewResponse().JSON(company).Write(w)
}
