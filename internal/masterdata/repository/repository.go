package repository

import (
	"context"
	"errors"

	"freight_backoffice/internal/masterdata/domain"
	"freight_backoffice/platform/apperr"
	"freight_backoffice/platform/docstore"

	"github.com/google/uuid"
)

// Repository reads and writes master data documents.
type Repository struct {
	store docstore.Store
}

// New creates a new master data repository.
func New(store docstore.Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) collection(c domain.Collection) docstore.Collection[domain.Entity] {
	return docstore.NewCollection[domain.Entity](r.store, string(c))
}

// List returns every record of c ordered by name.
func (r *Repository) List(ctx context.Context, c domain.Collection) ([]domain.Entity, error) {
	items, err := r.collection(c).List(ctx, docstore.Query{OrderBy: docstore.OrderByNameAsc})
	if err != nil {
		return nil, apperr.Persistence("masterdata.list", err)
	}
	return items, nil
}

// Get returns one record.
func (r *Repository) Get(ctx context.Context, c domain.Collection, id uuid.UUID) (domain.Entity, error) {
	e, err := r.collection(c).Get(ctx, id.String())
	if err != nil {
		return domain.Entity{}, mapErr("masterdata.get", c, err)
	}
	return e, nil
}

// Create inserts e under e.ID.
func (r *Repository) Create(ctx context.Context, c domain.Collection, e domain.Entity) error {
	if err := r.collection(c).Create(ctx, e.ID.String(), e); err != nil {
		if errors.Is(err, docstore.ErrAlreadyExists) {
			return apperr.Conflict("record already exists")
		}
		return apperr.Persistence("masterdata.create", err)
	}
	return nil
}

// Replace overwrites the stored record.
func (r *Repository) Replace(ctx context.Context, c domain.Collection, e domain.Entity) error {
	if err := r.collection(c).Replace(ctx, e.ID.String(), e); err != nil {
		return mapErr("masterdata.replace", c, err)
	}
	return nil
}

// Delete hard-deletes a record.
func (r *Repository) Delete(ctx context.Context, c domain.Collection, id uuid.UUID) error {
	if err := r.collection(c).Delete(ctx, id.String()); err != nil {
		return mapErr("masterdata.delete", c, err)
	}
	return nil
}

func mapErr(op string, c domain.Collection, err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return apperr.NotFound(string(c) + " record not found")
	}
	return apperr.Persistence(op, err)
}
