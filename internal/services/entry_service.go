package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"esgreporter/internal/amqp"
	"esgreporter/internal/core"
	"esgreporter/internal/log"
	"esgreporter/internal/storage"
)

// EntryPublisher announces stored entries to downstream consumers.
type EntryPublisher interface {
	PublishEntryRecorded(ctx context.Context, msg *amqp.EntryRecordedMessage) error
}

// EntryStore is what ingestion needs from the metric store.
type EntryStore interface {
	storage.EntryStore
	GetCompany(ctx context.Context, id string) (core.Company, error)
}

// EntryService records metric entries of any kind and lists them back.
type EntryService struct {
	store     EntryStore
	publisher EntryPublisher
	logger    *log.StructuredLogger
	base      *log.Logger
	now       func() time.Time
}

// NewEntryService wires ingestion. publisher may be nil, in which case no
// events are emitted.
func NewEntryService(store EntryStore, publisher EntryPublisher, logger *log.Logger) *EntryService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	base := logger.WithComponent(log.ComponentEntry)
	return &EntryService{
		store:     store,
		publisher: publisher,
		logger:    log.NewStructuredLogger(base),
		base:      base,
		now:       time.Now,
	}
}

// Record validates in, checks the company exists and stores one entry of
// kind. Publishing the entry.recorded event is best effort.
func (s *EntryService) Record(ctx context.Context, companyID string, kind core.MetricKind, in core.EntryInput) (core.Entry, error) {
	if !kind.IsValid() {
		return core.Entry{}, core.NewValidationError("Unknown metric kind")
	}

	now := s.now().UTC()
	e, err := in.Build(companyID, kind, now)
	if err != nil {
		return core.Entry{}, err
	}
	e.ID = uuid.NewString()
	e.CreatedAt = now

	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}

	if _, err := s.store.GetCompany(ctx, companyID); err != nil {
		if core.IsNotFound(err) {
			return core.Entry{}, core.ErrCompanyNotFound
		}
		return core.Entry{}, fmt.Errorf("resolve company: %w", err)
	}

	stored, err := s.store.InsertEntry(ctx, e)
	if err != nil {
		return core.Entry{}, fmt.Errorf("save %s: %w", kind.Singular(), err)
	}

	s.logger.LogEntryRecorded(ctx, stored.CompanyID, stored.ID, string(stored.Kind), stored.Category, stored.Amount)
	s.publish(ctx, stored)

	return stored, nil
}

// List returns every entry of kind for the company, newest first.
func (s *EntryService) List(ctx context.Context, companyID string, kind core.MetricKind) ([]core.Entry, error) {
	if !kind.IsValid() {
		return nil, core.NewValidationError("Unknown metric kind")
	}
	entries, err := s.store.RecentEntries(ctx, companyID, kind, 0)
	if err != nil {
		return nil, fmt.Errorf("list %s entries: %w", kind, err)
	}
	return entries, nil
}

func (s *EntryService) publish(ctx context.Context, e core.Entry) {
	if s.publisher == nil {
		s.base.DebugContext(ctx, "AMQP publisher not configured, skipping entry event",
			log.FieldEntryID, e.ID)
		return
	}

	msg := amqp.NewEntryRecordedMessage(e.ID, e.CompanyID, string(e.Kind))
	if err := s.publisher.PublishEntryRecorded(ctx, msg); err != nil {
		s.logger.LogError(ctx, "Failed to publish entry event", err, log.ComponentAMQP, log.OpPublish,
			log.NewFields().WithEntry(e.CompanyID, e.ID, string(e.Kind), e.Category, e.Amount))
	}
}
