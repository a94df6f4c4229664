package http

import (
	"net/http"

	"esgreporter/internal/core"
	"esgreporter/internal/log"
)

// handleEntries serves GET (list, newest first) and POST (record) for one
// metric kind.
func (s *Server) handleEntries(kind core.MetricKind) http.HandlerFunc {
	msgs := failureMessages[kind]
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.listEntries(w, r, kind, msgs.fetch)
		case http.MethodPost:
			s.createEntry(w, r, kind, msgs.create)
		default:
			MethodNotAllowedError(http.MethodGet, http.MethodPost).Write(w)
		}
	}
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request, kind core.MetricKind, failure string) {
	ctx, cancel := requestContext(r)
	defer cancel()

	company, err := s.companies.Current(ctx)
	if err != nil {
		s.writeError(w, r, err, failure, log.ComponentCompany, log.OpRead)
		return
	}

	entries, err := s.entries.List(ctx, company.ID, kind)
	if err != nil {
		s.writeError(w, r, err, failure, log.ComponentEntry, log.OpList)
		return
	}

	NewResponse().JSON(entries).Write(w)
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request, kind core.MetricKind, failure string) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, err, failure, log.ComponentEntry, log.OpParse)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	company, err := s.companies.Current(ctx)
	if err != nil {
		s.writeError(w, r, err, failure, log.ComponentCompany, log.OpRead)
		return
	}

	in := core.EntryInput{
		Category:    p.Get("category"),
		Description: p.Get("description"),
		Date:        p.Get("date"),
	}
	if amount, ok := p.Lookup("amount"); ok {
		in.Amount = &amount
	}

	entry, err := s.entries.Record(ctx, company.ID, kind, in)
	if err != nil {
		s.writeError(w, r, err, failure, log.ComponentEntry, log.OpCreate)
		return
	}

	NewResponse().JSON(entry).Write(w)
}
