// Package service implements master data CRUD with a read-through list cache.
package service

import (
	"context"
	"strings"
	"time"

	"freight_backoffice/internal/masterdata/domain"
	"freight_backoffice/internal/masterdata/repository"
	"freight_backoffice/platform/apperr"
	"freight_backoffice/platform/cache"
	"freight_backoffice/platform/logger"
	"freight_backoffice/platform/phone"
	"freight_backoffice/platform/sanitize"

	"github.com/google/uuid"
)

const cacheNamespacePrefix = "masterdata:"

// ListFilter narrows List results in memory.
type ListFilter struct {
	Search     string
	ActiveOnly bool
}

// Service provides master data operations.
type Service struct {
	repo  *repository.Repository
	cache *cache.Cache
	log   *logger.Logger
	now   func() time.Time
}

// New creates a service. cache may be nil.
func New(repo *repository.Repository, c *cache.Cache, log *logger.Logger) *Service {
	return &Service{repo: repo, cache: c, log: log, now: time.Now}
}

// List returns the records of c ordered by name, filtered by name/country.
func (s *Service) List(ctx context.Context, c domain.Collection, f ListFilter) ([]domain.Entity, error) {
	var all []domain.Entity
	err := s.cache.FetchJSON(ctx, cacheNamespacePrefix+string(c), []string{"all"}, &all,
		func(ctx context.Context) (any, error) {
			return s.repo.List(ctx, c)
		})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Entity, 0, len(all))
	for _, e := range all {
		if f.ActiveOnly && !e.Active {
			continue
		}
		if e.Matches(f.Search) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, c domain.Collection, id uuid.UUID) (domain.Entity, error) {
	return s.repo.Get(ctx, c, id)
}

// Create stores a new record with a generated id.
func (s *Service) Create(ctx context.Context, c domain.Collection, in domain.Entity) (domain.Entity, error) {
	e, err := s.prepare(in)
	if err != nil {
		return domain.Entity{}, err
	}
	now := s.now().UTC()
	e.ID = uuid.New()
	e.CreatedAt = now
	e.UpdatedAt = now

	if err := s.repo.Create(ctx, c, e); err != nil {
		return domain.Entity{}, err
	}
	s.invalidate(ctx, c)
	return e, nil
}

// Update replaces the editable fields of a record, keeping id and createdAt.
func (s *Service) Update(ctx context.Context, c domain.Collection, id uuid.UUID, in domain.Entity) (domain.Entity, error) {
	existing, err := s.repo.Get(ctx, c, id)
	if err != nil {
		return domain.Entity{}, err
	}
	e, err := s.prepare(in)
	if err != nil {
		return domain.Entity{}, err
	}
	e.ID = existing.ID
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = s.now().UTC()

	if err := s.repo.Replace(ctx, c, e); err != nil {
		return domain.Entity{}, err
	}
	s.invalidate(ctx, c)
	return e, nil
}

// Delete hard-deletes a record.
func (s *Service) Delete(ctx context.Context, c domain.Collection, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, c, id); err != nil {
		return err
	}
	s.invalidate(ctx, c)
	return nil
}

func (s *Service) prepare(in domain.Entity) (domain.Entity, error) {
	in.Name = sanitize.Text(in.Name)
	in.Country = strings.TrimSpace(in.Country)
	if in.Name == "" {
		return domain.Entity{}, apperr.Validation("name is required").
			WithDetails(map[string]string{"name": "required"})
	}
	if in.Attributes == nil {
		in.Attributes = map[string]any{}
	}
	region := phone.Region(in.Country)
	return in.MapPhones(func(p string) string { return phone.NormalizeE164(p, region) }), nil
}

func (s *Service) invalidate(ctx context.Context, c domain.Collection) {
	if err := s.cache.Invalidate(ctx, cacheNamespacePrefix+string(c)); err != nil && s.log != nil {
		s.log.WithContext(ctx).Warn("master data cache invalidation failed", "collection", string(c), "error", err)
	}
}
