// Package repository persists shipments, one document store collection per
// shipment type.
package repository

import (
	"context"
	"errors"

	"freight_backoffice/internal/shipments/domain"
	"freight_backoffice/platform/apperr"
	"freight_backoffice/platform/docstore"

	"github.com/google/uuid"
)

const shipmentNotFoundMsg = "shipment not found"

// Repository provides store operations for shipments.
type Repository struct {
	store docstore.Store
}

// New creates a new shipments repository.
func New(store docstore.Store) *Repository {
	return &Repository{store: store}
}

func (r *Repository) collection(t domain.Type) docstore.Collection[domain.Shipment] {
	return docstore.NewCollection[domain.Shipment](r.store, t.Collection())
}

// Create stores a new shipment in the collection of its type.
func (r *Repository) Create(ctx context.Context, s domain.Shipment) error {
	if err := r.collection(s.Type).Create(ctx, s.ID.String(), s); err != nil {
		if errors.Is(err, docstore.ErrAlreadyExists) {
			return apperr.Conflict("shipment already exists")
		}
		return apperr.Persistence("shipments.create", err)
	}
	return nil
}

// Get returns one shipment.
func (r *Repository) Get(ctx context.Context, t domain.Type, id uuid.UUID) (domain.Shipment, error) {
	s, err := r.collection(t).Get(ctx, id.String())
	if err != nil {
		return domain.Shipment{}, mapErr("shipments.get", err)
	}
	return s, nil
}

// List returns the shipments of type t matching where, newest first.
func (r *Repository) List(ctx context.Context, t domain.Type, where ...docstore.Filter) ([]domain.Shipment, error) {
	items, err := r.collection(t).List(ctx, docstore.Query{Where: where, OrderBy: docstore.OrderByCreatedDesc})
	if err != nil {
		return nil, apperr.Persistence("shipments.list."+string(t), err)
	}
	return items, nil
}

// Save replaces the whole shipment document.
func (r *Repository) Save(ctx context.Context, s domain.Shipment) error {
	if err := r.collection(s.Type).Replace(ctx, s.ID.String(), s); err != nil {
		return mapErr("shipments.save", err)
	}
	return nil
}

// Delete hard-deletes a shipment.
func (r *Repository) Delete(ctx context.Context, t domain.Type, id uuid.UUID) error {
	if err := r.collection(t).Delete(ctx, id.String()); err != nil {
		return mapErr("shipments.delete", err)
	}
	return nil
}

func mapErr(op string, err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return apperr.NotFound(shipmentNotFoundMsg)
	}
	return apperr.Persistence(op, err)
}
