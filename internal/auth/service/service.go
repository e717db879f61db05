package service

import (
	"context"
	"strings"
	"time"

	"freight_backoffice/internal/auth/domain"
	"freight_backoffice/internal/auth/password"
	"freight_backoffice/internal/auth/repository"
	"freight_backoffice/internal/auth/transport"
	"freight_backoffice/platform/apperr"
	"freight_backoffice/platform/config"
	"freight_backoffice/platform/logger"
	"freight_backoffice/platform/phone"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	accessTokenType = "access"
	bearerType      = "Bearer"

	msgInvalidCredentials = "invalid credentials"
)

type Service struct {
	repo *repository.Repository
	cfg  config.AuthServiceConfig
	log  *logger.Logger
	now  func() time.Time
}

func New(repo *repository.Repository, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log, now: time.Now}
}

// SignIn checks the password and issues an access token. Unknown email,
// wrong password and disabled account look the same to the caller.
func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (transport.AuthResponse, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.log.AuthEvent("sign_in", email, false, "unknown email")
			return transport.AuthResponse{}, apperr.Unauthorized(msgInvalidCredentials)
		}
		return transport.AuthResponse{}, err
	}
	if !user.Active {
		s.log.AuthEvent("sign_in", email, false, "inactive")
		return transport.AuthResponse{}, apperr.Unauthorized(msgInvalidCredentials)
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("sign_in", email, false, "bad password")
		return transport.AuthResponse{}, apperr.Unauthorized(msgInvalidCredentials)
	}

	token, expiresAt, err := s.signAccessToken(user)
	if err != nil {
		return transport.AuthResponse{}, err
	}
	s.log.AuthEvent("sign_in", user.Email, true, "")
	return transport.AuthResponse{AccessToken: token, TokenType: bearerType, ExpiresAt: expiresAt, User: user.Profile()}, nil
}

// GetMe returns the profile behind an access token subject.
func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (domain.Profile, error) {
	return s.GetProfile(ctx, userID)
}

// GetProfile implements auth.UserProvider.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (domain.Profile, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	return u.Profile(), nil
}

// UpdateProfile changes the caller's own name, company, phone and position.
// Email and roles are not editable here.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req transport.UpdateProfileRequest) (domain.Profile, error) {
	patch := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Profile{}, apperr.Validation("name is required").WithDetails(map[string]any{"name": "must not be blank"})
		}
		patch["name"] = name
	}
	if req.Company != nil {
		patch["company"] = strings.TrimSpace(*req.Company)
	}
	if req.Phone != nil {
		patch["phone"] = phone.NormalizeE164(*req.Phone, phone.DefaultRegion)
	}
	if req.Position != nil {
		patch["position"] = strings.TrimSpace(*req.Position)
	}
	if len(patch) == 0 {
		return domain.Profile{}, apperr.BadRequest("no profile fields to update")
	}
	patch["updatedAt"] = s.now().UTC()

	if err := s.repo.UpdateProfile(ctx, userID, patch); err != nil {
		return domain.Profile{}, err
	}
	s.log.WithContext(ctx).Info("profile updated", "userId", userID)
	return s.GetProfile(ctx, userID)
}

// CreateUser registers a login with a single role.
func (s *Service) CreateUser(ctx context.Context, req transport.CreateUserRequest) (domain.Profile, error) {
	u, err := s.createUser(ctx, req.Email, req.Name, req.Password, req.Role)
	if err != nil {
		return domain.Profile{}, err
	}
	s.log.WithContext(ctx).Info("user created", "userId", u.ID, "role", req.Role)
	return u.Profile(), nil
}

// ListUsers returns every login, newest first.
func (s *Service) ListUsers(ctx context.Context) (transport.UserListResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return transport.UserListResponse{}, err
	}
	out := make([]domain.Profile, 0, len(users))
	for _, u := range users {
		out = append(out, u.Profile())
	}
	return transport.UserListResponse{Items: out, Total: len(out)}, nil
}

// EnsureSeedManager creates the configured bootstrap manager once. It is a
// no-op when no seed email is configured or the email already exists.
func (s *Service) EnsureSeedManager(ctx context.Context) error {
	email := domain.NormalizeEmail(s.cfg.GetSeedManagerEmail())
	if email == "" {
		return nil
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return err
	}
	if s.cfg.GetSeedManagerPassword() == "" {
		return apperr.Validation("SEED_MANAGER_PASSWORD is required when SEED_MANAGER_EMAIL is set")
	}

	u, err := s.createUser(ctx, email, "Manager", s.cfg.GetSeedManagerPassword(), domain.RoleManager)
	if err != nil {
		return err
	}
	s.log.Info("seed manager created", "userId", u.ID, "email", email)
	return nil
}

func (s *Service) createUser(ctx context.Context, email, name, plainPassword, role string) (domain.User, error) {
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return domain.User{}, apperr.Wrap(apperr.KindInternal, "hash password", err)
	}
	now := s.now().UTC()
	u := domain.User{
		ID:           uuid.New(),
		Email:        domain.NormalizeEmail(email),
		Name:         name,
		PasswordHash: hash,
		Roles:        []string{role},
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *Service) signAccessToken(u domain.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.GetAccessTokenTTL())
	claims := jwt.MapClaims{
		"sub":   u.ID.String(),
		"email": u.Email,
		"roles": u.Roles,
		"type":  accessTokenType,
		"exp":   expiresAt.Unix(),
		"iat":   now.Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
	if err != nil {
		return "", time.Time{}, apperr.Wrap(apperr.KindInternal, "sign access token", err)
	}
	return signed, expiresAt.UTC(), nil
}
