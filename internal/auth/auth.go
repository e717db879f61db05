// Package auth provides the authentication bounded context: staff and
// customer logins, bcrypt passwords and HS256 access tokens.
// This file defines the public API other domains may import.
package auth

import (
	"context"

	"freight_backoffice/internal/auth/domain"

	"github.com/google/uuid"
)

// UserProvider returns user information to other domains without exposing
// password material.
type UserProvider interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (domain.Profile, error)
}
