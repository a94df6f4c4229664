package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"esgreporter/internal/archive"
	"esgreporter/internal/core"
	"esgreporter/internal/log"
	"esgreporter/internal/report"
	"esgreporter/internal/storage"
)

// GeneratedReport is a rendered report ready for download.
type GeneratedReport struct {
	Record   core.Report
	Filename string
	Body     []byte
}

// ReportService renders reports, records them and archives the text when an
// archive is configured.
type ReportService struct {
	aggregation *AggregationService
	reports     storage.ReportStore
	archive     archive.Archive
	logger      *log.StructuredLogger
	base        *log.Logger
	now         func() time.Time
}

// NewReportService wires report generation. arc may be nil.
func NewReportService(aggregation *AggregationService, reports storage.ReportStore, arc archive.Archive, logger *log.Logger) *ReportService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	base := logger.WithComponent(log.ComponentReport)
	return &ReportService{
		aggregation: aggregation,
		reports:     reports,
		archive:     arc,
		logger:      log.NewStructuredLogger(base),
		base:        base,
		now:         time.Now,
	}
}

// Generate renders the all-time summary for company and records it. An
// archive failure is logged and does not fail the report.
func (s *ReportService) Generate(ctx context.Context, company core.Company) (GeneratedReport, error) {
	stats, err := s.aggregation.Summarize(ctx, company.ID)
	if err != nil {
		return GeneratedReport{}, fmt.Errorf("aggregate stats: %w", err)
	}

	now := s.now().UTC()
	body := report.Render(report.Document{
		Company:     company,
		Stats:       stats,
		Period:      report.PeriodAllTime,
		GeneratedAt: now,
	})

	rec := core.Report{
		ID:             uuid.NewString(),
		CompanyID:      company.ID,
		Period:         report.PeriodAllTime,
		Type:           report.TypeSummary,
		TotalEmissions: stats.TotalEmissions,
		TotalWater:     stats.TotalWater,
		TotalWaste:     stats.TotalWaste,
		CreatedAt:      now,
	}

	if s.archive != nil {
		key := archive.Key(company.ID, rec.ID, now)
		if err := s.archive.Put(ctx, key, body, report.ContentType); err != nil {
			s.logger.LogError(ctx, "Failed to archive report", err, log.ComponentArchive, log.OpArchive,
				log.NewFields().WithReport(company.ID, rec.ID, key))
		} else {
			rec.ArchiveKey = key
		}
	}

	if err := s.reports.InsertReport(ctx, rec); err != nil {
		return GeneratedReport{}, fmt.Errorf("record report: %w", err)
	}

	s.logger.LogReportGenerated(ctx, company.ID, rec.ID, rec.ArchiveKey, len(body))

	return GeneratedReport{
		Record:   rec,
		Filename: report.Filename(now),
		Body:     body,
	}, nil
}

// History lists recorded reports for the company, newest first. A limit <= 0
// returns all of them.
func (s *ReportService) History(ctx context.Context, companyID string, limit int) ([]core.Report, error) {
	reports, err := s.reports.ListReports(ctx, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}
