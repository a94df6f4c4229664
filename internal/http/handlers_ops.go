package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"esgreporter/internal/log"
)

const readyTimeout = 2 * time.Second

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().Text("ok").Write(w)
}

// handleReady reports ready only when the store answers a ping. An
// unreachable archive only degrades readiness, since reports are still
// generated without it.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			s.logger.WarnContext(ctx, "Readiness check failed",
				log.FieldComponent, log.ComponentStorage,
				log.FieldError, err.Error())
			NewResponse().Status(http.StatusServiceUnavailable).Text("not ready").Write(w)
			return
		}
	}

	if s.archive != nil {
		if err := s.archive.Ping(ctx); err != nil {
			s.logger.WarnContext(ctx, "Report archive unreachable",
				log.FieldComponent, log.ComponentArchive,
				log.FieldError, err.Error())
			NewResponse().Text("ready (archive unavailable)").Write(w)
			return
		}
	}
	NewResponse().Text("ready").Write(w)
}

// handleMetrics exposes the operational counters in the Prometheus text
// format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	req := s.tracer.GetMetrics()
	rl := s.limiter.GetMetrics()
	sec := s.detector.GetMetrics()

	var b strings.Builder
	counter := func(name, help string, v int64) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", name, help, name, name, v)
	}
	gauge := func(name, help string, v int64) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s gauge\n%s %d\n", name, help, name, name, v)
	}

	counter("esg_http_requests_total", "Requests served.", req.TotalRequests)
	counter("esg_http_client_errors_total", "Responses with a 4xx status.", req.ClientErrors)
	counter("esg_http_server_errors_total", "Responses with a 5xx status.", req.ServerErrors)
	gauge("esg_http_response_time_avg_microseconds", "Mean response time.", req.AverageResponseTime)
	counter("esg_rate_limit_rejected_total", "Requests rejected by the rate limiter.", rl.Rejected)
	gauge("esg_rate_limit_clients", "Clients tracked by the rate limiter.", rl.ClientCount)
	counter("esg_security_suspicious_requests_total", "Requests flagged as suspicious.", sec.SuspiciousRequests)
	counter("esg_security_invalid_ip_total", "Forwarded client IPs that failed to parse.", sec.InvalidIPAttempts)

	NewResponse().
		Text(b.String()).
		Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8").
		Write(w)
}
