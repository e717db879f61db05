// Package repository persists quotes in the document store.
package repository

import (
	"context"
	"errors"

	"freight_backoffice/internal/quotes/domain"
	"freight_backoffice/platform/apperr"
	"freight_backoffice/platform/docstore"

	"github.com/google/uuid"
)

// CollectionName is the document store collection holding quotes.
const CollectionName = "quotes"

const quoteNotFoundMsg = "quote not found"

// Repository provides store operations for quotes.
type Repository struct {
	store  docstore.Store
	quotes docstore.Collection[domain.Quote]
}

// New creates a new quotes repository.
func New(store docstore.Store) *Repository {
	return &Repository{
		store:  store,
		quotes: docstore.NewCollection[domain.Quote](store, CollectionName),
	}
}

// NextReferenceNumber reserves the next sequence number for counter.
func (r *Repository) NextReferenceNumber(ctx context.Context, counter string) (int64, error) {
	n, err := r.store.NextSequence(ctx, counter)
	if err != nil {
		return 0, apperr.Persistence("quotes.next_reference", err)
	}
	return n, nil
}

// Create stores a new quote.
func (r *Repository) Create(ctx context.Context, q domain.Quote) error {
	if err := r.quotes.Create(ctx, q.ID.String(), q); err != nil {
		if errors.Is(err, docstore.ErrAlreadyExists) {
			return apperr.Conflict("quote already exists")
		}
		return apperr.Persistence("quotes.create", err)
	}
	return nil
}

// GetByID returns one quote.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Quote, error) {
	q, err := r.quotes.Get(ctx, id.String())
	if err != nil {
		return domain.Quote{}, mapErr("quotes.get", err)
	}
	return q, nil
}

// List returns every quote, newest first. Filtering is done by the caller
// because the effective status depends on the current time.
func (r *Repository) List(ctx context.Context) ([]domain.Quote, error) {
	items, err := r.quotes.List(ctx, docstore.Query{OrderBy: docstore.OrderByCreatedDesc})
	if err != nil {
		return nil, apperr.Persistence("quotes.list", err)
	}
	return items, nil
}

// Save replaces the whole quote document.
func (r *Repository) Save(ctx context.Context, q domain.Quote) error {
	if err := r.quotes.Replace(ctx, q.ID.String(), q); err != nil {
		return mapErr("quotes.save", err)
	}
	return nil
}

// Delete hard-deletes a quote.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.quotes.Delete(ctx, id.String()); err != nil {
		return mapErr("quotes.delete", err)
	}
	return nil
}

func mapErr(op string, err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return apperr.NotFound(quoteNotFoundMsg)
	}
	return apperr.Persistence(op, err)
}
