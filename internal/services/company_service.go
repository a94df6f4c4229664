package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"esgreporter/internal/core"
	"esgreporter/internal/log"
	"esgreporter/internal/storage"
)

// CompanyInput is a setup request. Empty optional fields are stored as absent.
type CompanyInput struct {
	Name     string
	Industry string
	Size     string
}

// CompanyService creates the company record and resolves which company the
// current request operates on.
type CompanyService struct {
	store        storage.CompanyStore
	configuredID string
	logger       *log.Logger
	now          func() time.Time
}

// NewCompanyService returns a service that resolves configuredID when it is
// non-empty and the first-created company otherwise.
func NewCompanyService(store storage.CompanyStore, configuredID string, logger *log.Logger) *CompanyService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &CompanyService{
		store:        store,
		configuredID: strings.TrimSpace(configuredID),
		logger:       logger.WithComponent(log.ComponentCompany),
		now:          time.Now,
	}
}

// Setup creates a company. It is not idempotent: a second call stores a
// second row, and Current keeps returning the first one.
func (s *CompanyService) Setup(ctx context.Context, in CompanyInput) (core.Company, error) {
	now := s.now().UTC()
	c := core.Company{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Industry:  optional(in.Industry),
		Size:      optional(in.Size),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.Validate(); err != nil {
		return core.Company{}, err
	}

	if existing, err := s.store.FirstCompany(ctx); err == nil {
		s.logger.WarnContext(ctx, "Company already set up, creating another record",
			log.FieldCompanyID, existing.ID,
			"existing_name", existing.Name)
	} else if !core.IsNotFound(err) {
		return core.Company{}, fmt.Errorf("check existing company: %w", err)
	}

	created, err := s.store.CreateCompany(ctx, c)
	if err != nil {
		return core.Company{}, fmt.Errorf("create company: %w", err)
	}

	s.logger.InfoContext(ctx, "Company created",
		log.FieldCompanyID, created.ID,
		"name", created.Name)
	return created, nil
}

// Current returns the company requests operate on, or an error satisfying
// core.IsNotFound when none is set up.
func (s *CompanyService) Current(ctx context.Context) (core.Company, error) {
	if s.configuredID != "" {
		return s.store.GetCompany(ctx, s.configuredID)
	}
	return s.store.FirstCompany(ctx)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
