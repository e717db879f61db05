// Package repository stores login accounts in the users collection.
package repository

import (
	"context"
	"errors"

	"freight_backoffice/internal/auth/domain"
	"freight_backoffice/platform/apperr"
	"freight_backoffice/platform/docstore"

	"github.com/google/uuid"
)

// CollectionName is the document store collection holding users.
const CollectionName = "users"

// Repository provides store operations for users.
type Repository struct {
	users docstore.Collection[domain.User]
}

// New creates a new users repository.
func New(store docstore.Store) *Repository {
	return &Repository{users: docstore.NewCollection[domain.User](store, CollectionName)}
}

// Create stores a new user. A taken email is a conflict.
func (r *Repository) Create(ctx context.Context, u domain.User) error {
	if _, err := r.GetByEmail(ctx, u.Email); err == nil {
		return apperr.Conflict("email already registered")
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return err
	}

	if err := r.users.Create(ctx, u.ID.String(), u); err != nil {
		if errors.Is(err, docstore.ErrAlreadyExists) {
			return apperr.Conflict("user already exists")
		}
		return apperr.Persistence("users.create", err)
	}
	return nil
}

// GetByID returns one user.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	u, err := r.users.Get(ctx, id.String())
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return domain.User{}, apperr.NotFound("user not found")
		}
		return domain.User{}, apperr.Persistence("users.get", err)
	}
	return u, nil
}

// UpdateProfile merges the given top-level fields into a user document.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, patch map[string]any) error {
	if err := r.users.Merge(ctx, id.String(), patch); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Persistence("users.update_profile", err)
	}
	return nil
}

// GetByEmail looks a user up by normalised email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	items, err := r.users.List(ctx, docstore.Query{
		Where: []docstore.Filter{docstore.Eq("email", domain.NormalizeEmail(email))},
		Limit: 1,
	})
	if err != nil {
		return domain.User{}, apperr.Persistence("users.get_by_email", err)
	}
	if len(items) == 0 {
		return domain.User{}, apperr.NotFound("user not found")
	}
	return items[0], nil
}

// List returns every user, newest first.
func (r *Repository) List(ctx context.Context) ([]domain.User, error) {
	items, err := r.users.List(ctx, docstore.Query{OrderBy: docstore.OrderByCreatedDesc})
	if err != nil {
		return nil, apperr.Persistence("users.list", err)
	}
	return items, nil
}
