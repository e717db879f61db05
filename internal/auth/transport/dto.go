package transport

import (
	"time"

	"freight_backoffice/internal/auth/domain"
)

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"required,max=200"`
	Password string `json:"password" validate:"required,strongpassword"`
	Role     string `json:"role" validate:"required,oneof=customer manager"`
}

// UpdateProfileRequest carries the editable profile fields. Absent fields
// are left unchanged; an empty string clears company, phone or position.
type UpdateProfileRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=200"`
	Company  *string `json:"company" validate:"omitempty,max=200"`
	Phone    *string `json:"phone" validate:"omitempty,max=40"`
	Position *string `json:"position" validate:"omitempty,max=120"`
}

type AuthResponse struct {
	AccessToken string         `json:"accessToken"`
	TokenType   string         `json:"tokenType"`
	ExpiresAt   time.Time      `json:"expiresAt"`
	User        domain.Profile `json:"user"`
}

type UserListResponse struct {
	Items []domain.Profile `json:"items"`
	Total int              `json:"total"`
}
