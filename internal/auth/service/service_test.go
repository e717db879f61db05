package service

import (
	"context"
	"testing"
	"time"

	"freight_backoffice/internal/auth/domain"
	"freight_backoffice/internal/auth/repository"
	"freight_backoffice/internal/auth/transport"
	"freight_backoffice/platform/apperr"
	"freight_backoffice/platform/config"
	"freight_backoffice/platform/docstore"
	"freight_backoffice/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func newService(t *testing.T, cfg *config.Config) (*Service, *repository.Repository) {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{}
	}
	cfg.JWTAccessSecret = secret
	cfg.AccessTokenTTL = time.Hour
	repo := repository.New(docstore.NewMemoryStore())
	return New(repo, cfg, logger.Discard()), repo
}

func createCustomer(t *testing.T, svc *Service) domain.Profile {
	t.Helper()
	p, err := svc.CreateUser(context.Background(), transport.CreateUserRequest{
		Email: "Ana@Acme.example", Name: "Ana", Password: "S3cure!pass", Role: domain.RoleCustomer,
	})
	require.NoError(t, err)
	return p
}

func TestSignInIssuesAccessToken(t *testing.T) {
	svc, _ := newService(t, nil)
	created := createCustomer(t, svc)
	assert.Equal(t, "ana@acme.example", created.Email)

	res, err := svc.SignIn(context.Background(), "ana@acme.example", "S3cure!pass")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, created.ID, res.User.ID)

	parsed, err := jwt.Parse(res.AccessToken, func(*jwt.Token) (interface{}, error) { return []byte(secret), nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, created.ID.String(), claims["sub"])
	assert.Equal(t, "ana@acme.example", claims["email"])
	assert.Equal(t, "access", claims["type"])
	assert.Equal(t, []interface{}{"customer"}, claims["roles"])
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	svc, _ := newService(t, nil)
	createCustomer(t, svc)

	_, err := svc.SignIn(context.Background(), "ana@acme.example", "wrong")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	_, err = svc.SignIn(context.Background(), "nobody@acme.example", "S3cure!pass")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	assert.Equal(t, "invalid credentials", err.(*apperr.Error).Message)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newService(t, nil)
	createCustomer(t, svc)

	_, err := svc.CreateUser(context.Background(), transport.CreateUserRequest{
		Email: "ana@ACME.example", Name: "Other", Password: "S3cure!pass", Role: domain.RoleManager,
	})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestProfilesNeverCarryPasswordHash(t *testing.T) {
	svc, repo := newService(t, nil)
	p := createCustomer(t, svc)

	stored, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "S3cure!pass", stored.PasswordHash)

	me, err := svc.GetMe(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, me)

	list, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
}

func strPtr(s string) *string { return &s }

func TestUpdateProfile(t *testing.T) {
	svc, repo := newService(t, nil)
	fixed := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	p := createCustomer(t, svc)
	ctx := context.Background()

	updated, err := svc.UpdateProfile(ctx, p.ID, transport.UpdateProfileRequest{
		Name:     strPtr("  Ana Souza "),
		Company:  strPtr("Acme Ltda"),
		Phone:    strPtr("(11) 98765-4321"),
		Position: strPtr("Logistics"),
	})
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, "Ana Souza", updated.Name)
	assert.Equal(t, "Acme Ltda", updated.Company)
	assert.Equal(t, "+5511987654321", updated.Phone)
	assert.Equal(t, "Logistics", updated.Position)
	assert.Equal(t, "ana@acme.example", updated.Email)
	assert.True(t, fixed.Equal(updated.UpdatedAt))

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.Equal(t, []string{domain.RoleCustomer}, stored.Roles)

	// Only the given fields change.
	updated, err = svc.UpdateProfile(ctx, p.ID, transport.UpdateProfileRequest{Position: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", updated.Name)
	assert.Equal(t, "+5511987654321", updated.Phone)
	assert.Empty(t, updated.Position)

	_, err = svc.SignIn(ctx, "ana@acme.example", "S3cure!pass")
	assert.NoError(t, err)
}

func TestUpdateProfileRejections(t *testing.T) {
	svc, _ := newService(t, nil)
	p := createCustomer(t, svc)
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, p.ID, transport.UpdateProfileRequest{Name: strPtr("   ")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.UpdateProfile(ctx, p.ID, transport.UpdateProfileRequest{})
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))

	_, err = svc.UpdateProfile(ctx, uuid.New(), transport.UpdateProfileRequest{Company: strPtr("Ghost")})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestEnsureSeedManagerIsIdempotent(t *testing.T) {
	svc, repo := newService(t, &config.Config{SeedManagerEmail: "ops@example.com", SeedManagerPassword: "Adm1n!pass"})

	require.NoError(t, svc.EnsureSeedManager(context.Background()))
	require.NoError(t, svc.EnsureSeedManager(context.Background()))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, []string{domain.RoleManager}, users[0].Roles)

	_, err = svc.SignIn(context.Background(), "OPS@example.com", "Adm1n!pass")
	assert.NoError(t, err)
}

func TestEnsureSeedManagerSkipsWithoutEmail(t *testing.T) {
	svc, repo := newService(t, nil)
	require.NoError(t, svc.EnsureSeedManager(context.Background()))
	users, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}
