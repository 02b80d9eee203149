package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	pkgAuth "github.com/ichaoui56/e-commerce-backoffice/pkg/auth"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/auth/session"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/config"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/db/models"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/enums"
	pkgerrors "github.com/ichaoui56/e-commerce-backoffice/pkg/errors"
	"github.com/ichaoui56/e-commerce-backoffice/pkg/security"
)

var (
	testJWT = config.JWTConfig{
		Secret:                 "secret",
		Issuer:                 "backoffice",
		ExpirationMinutes:      30,
		RefreshTokenTTLMinutes: 120,
	}
	testPassword = config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
)

type stubUsers struct {
	byID      map[uuid.UUID]*models.AdminUser
	lastLogin map[uuid.UUID]time.Time
	rehashed  map[uuid.UUID]string
}

func newStubUsers(users ...*models.AdminUser) *stubUsers {
	s := &stubUsers{
		byID:      map[uuid.UUID]*models.AdminUser{},
		lastLogin: map[uuid.UUID]time.Time{},
		rehashed:  map[uuid.UUID]string{},
	}
	for _, u := range users {
		s.byID[u.ID] = u
	}
	return s
}

func (s *stubUsers) FindByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	for _, u := range s.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsers) FindByID(_ context.Context, id uuid.UUID) (*models.AdminUser, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *stubUsers) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogin[id] = at
	return nil
}

func (s *stubUsers) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	s.rehashed[id] = hash
	return nil
}

type stubSessions struct {
	sessions map[string]uuid.UUID
	tokens   map[string]string
}

func newStubSessions() *stubSessions {
	return &stubSessions{sessions: map[string]uuid.UUID{}, tokens: map[string]string{}}
}

func (s *stubSessions) Generate(_ context.Context, accessID string, userID uuid.UUID) (string, error) {
	token := "refresh-" + accessID
	s.sessions[accessID] = userID
	s.tokens[accessID] = token
	return token, nil
}

func (s *stubSessions) Rotate(ctx context.Context, oldAccessID, provided string) (session.Rotation, error) {
	userID, ok := s.sessions[oldAccessID]
	if !ok || s.tokens[oldAccessID] != provided {
		return session.Rotation{}, session.ErrInvalidRefreshToken
	}
	delete(s.sessions, oldAccessID)
	delete(s.tokens, oldAccessID)
	next := session.Rotation{AccessID: session.NewAccessID(), UserID: userID}
	next.RefreshToken, _ = s.Generate(ctx, next.AccessID, userID)
	return next, nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	delete(s.sessions, accessID)
	delete(s.tokens, accessID)
	return nil
}

func newTestAdmin(t *testing.T, password string) *models.AdminUser {
	t.Helper()
	hash, err := security.NewHasher(testPassword).Hash(password)
	require.NoError(t, err)
	return &models.AdminUser{ID: uuid.New(), Name: "Admin", Email: "admin@shop.ma", PasswordHash: hash, IsActive: true}
}

func buildService(t *testing.T, repo *stubUsers, sessions *stubSessions) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWT,
		PasswordConfig: testPassword,
	})
	require.NoError(t, err)
	return svc
}

func requireUnauthorized(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "got %v", err)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
	_, err = NewService(ServiceParams{UserRepo: newStubUsers()})
	require.Error(t, err)
}

func TestLoginIssuesTokensBoundToSession(t *testing.T) {
	admin := newTestAdmin(t, "s3cret-pass")
	repo := newStubUsers(admin)
	sessions := newStubSessions()
	svc := buildService(t, repo, sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: " ADMIN@shop.ma ", Password: "s3cret-pass"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, 1800, resp.ExpiresIn)
	require.Equal(t, "admin@shop.ma", resp.User.Email)
	require.Contains(t, repo.lastLogin, admin.ID)
	require.Empty(t, repo.rehashed)

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, admin.ID, claims.UserID)
	require.Equal(t, enums.AdminRoleAdmin, claims.Role)
	require.Equal(t, admin.ID, sessions.sessions[claims.ID])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	admin := newTestAdmin(t, "s3cret-pass")
	inactive := newTestAdmin(t, "s3cret-pass")
	inactive.Email = "old@shop.ma"
	inactive.IsActive = false
	svc := buildService(t, newStubUsers(admin, inactive), newStubSessions())
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginRequest{Email: "admin@shop.ma", Password: "wrong-pass"})
	requireUnauthorized(t, err)
	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@shop.ma", Password: "s3cret-pass"})
	requireUnauthorized(t, err)
	_, err = svc.Login(ctx, LoginRequest{Email: "old@shop.ma", Password: "s3cret-pass"})
	requireUnauthorized(t, err)
	_, err = svc.Login(ctx, LoginRequest{Email: "", Password: "s3cret-pass"})
	requireUnauthorized(t, err)
}

func TestLoginUpgradesLegacyBcryptHash(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("legacy-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	admin := &models.AdminUser{ID: uuid.New(), Name: "Admin", Email: "admin@shop.ma", PasswordHash: string(legacy), IsActive: true}
	repo := newStubUsers(admin)
	svc := buildService(t, repo, newStubSessions())

	_, err = svc.Login(context.Background(), LoginRequest{Email: "admin@shop.ma", Password: "legacy-pass"})
	require.NoError(t, err)
	require.Contains(t, repo.rehashed[admin.ID], "$argon2id$")
}

func TestRefreshRotatesSession(t *testing.T) {
	admin := newTestAdmin(t, "s3cret-pass")
	sessions := newStubSessions()
	svc := buildService(t, newStubUsers(admin), sessions)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: "admin@shop.ma", Password: "s3cret-pass"})
	require.NoError(t, err)
	oldClaims, err := pkgAuth.ParseAccessToken(testJWT, login.AccessToken)
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, RefreshRequest{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	newClaims, err := pkgAuth.ParseAccessToken(testJWT, refreshed.AccessToken)
	require.NoError(t, err)
	require.NotEqual(t, oldClaims.ID, newClaims.ID)
	require.NotContains(t, sessions.sessions, oldClaims.ID)

	_, err = svc.Refresh(ctx, RefreshRequest{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken})
	requireUnauthorized(t, err)
	_, err = svc.Refresh(ctx, RefreshRequest{AccessToken: "garbage", RefreshToken: "x"})
	requireUnauthorized(t, err)
}

func TestLogoutAndSession(t *testing.T) {
	admin := newTestAdmin(t, "s3cret-pass")
	sessions := newStubSessions()
	svc := buildService(t, newStubUsers(admin), sessions)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: "admin@shop.ma", Password: "s3cret-pass"})
	require.NoError(t, err)
	claims, err := pkgAuth.ParseAccessToken(testJWT, login.AccessToken)
	require.NoError(t, err)

	current, err := svc.Session(ctx, admin.ID)
	require.NoError(t, err)
	require.Equal(t, "Admin", current.Name)
	require.Equal(t, "admin@shop.ma", current.Email)

	require.NoError(t, svc.Logout(ctx, claims.ID))
	require.NotContains(t, sessions.sessions, claims.ID)
	requireUnauthorized(t, svc.Logout(ctx, " "))

	_, err = svc.Session(ctx, uuid.New())
	requireUnauthorized(t, err)
}
