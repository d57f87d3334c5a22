package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/davidgarza-dev/fieldmark-backend/pkg/auth"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/config"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/db/models"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/enums"
	pkgerrors "github.com/davidgarza-dev/fieldmark-backend/pkg/errors"
	"github.com/davidgarza-dev/fieldmark-backend/pkg/security"
)

type stubUserRepo struct {
	byEmail    map[string]*models.User
	byID       map[uuid.UUID]*models.User
	lastLogins map[uuid.UUID]time.Time
}

func newStubUserRepo(users ...*models.User) *stubUserRepo {
	repo := &stubUserRepo{
		byEmail:    map[string]*models.User{},
		byID:       map[uuid.UUID]*models.User{},
		lastLogins: map[uuid.UUID]time.Time{},
	}
	for _, u := range users {
		repo.byEmail[u.Email] = u
		repo.byID[u.ID] = u
	}
	return repo
}

func (r *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.lastLogins[id] = at
	return nil
}

type stubSessionManager struct {
	generated []string
	revoked   []string
	rotateErr error
}

func (m *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	m.generated = append(m.generated, accessID)
	return "refresh-" + accessID, nil
}

func (m *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if m.rotateErr != nil {
		return "", "", m.rotateErr
	}
	newID := "rotated-" + oldAccessID
	return newID, "refresh-" + newID, nil
}

func (m *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	m.revoked = append(m.revoked, accessID)
	return nil
}

func testUser(t *testing.T, email, password string, role enums.UserRole, active bool) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    "Ana",
		LastName:     "Reyes",
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
	}
}

func testJWT() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "fieldmark-test", ExpirationMinutes: 15}
}

func newTestService(t *testing.T, repo userRepository, sessions sessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWT(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestLoginSuccess(t *testing.T) {
	user := testUser(t, "ana@fieldmark.io", "s3cret-pass", enums.UserRolePromoter, true)
	repo := newStubUserRepo(user)
	sessions := &stubSessionManager{}
	svc := newTestService(t, repo, sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "Ana@fieldmark.io ", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if resp.User == nil || resp.User.ID != user.ID {
		t.Fatalf("unexpected user payload %+v", resp.User)
	}
	if _, ok := repo.lastLogins[user.ID]; !ok {
		t.Fatal("expected last login recorded")
	}
	if len(sessions.generated) != 1 {
		t.Fatalf("expected one session, got %d", len(sessions.generated))
	}

	claims, err := pkgAuth.ParseAccessToken(testJWT(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.Role != enums.UserRolePromoter {
		t.Fatalf("expected promoter claims, got %s", claims.Role)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	user := testUser(t, "ana@fieldmark.io", "s3cret-pass", enums.UserRolePromoter, true)
	svc := newTestService(t, newStubUserRepo(user), &stubSessionManager{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ana@fieldmark.io", Password: "wrong-pass"})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	user := testUser(t, "ana@fieldmark.io", "s3cret-pass", enums.UserRolePromoter, false)
	svc := newTestService(t, newStubUserRepo(user), &stubSessionManager{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ana@fieldmark.io", Password: "s3cret-pass"})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc := newTestService(t, newStubUserRepo(), &stubSessionManager{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@fieldmark.io", Password: "whatever1"})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestRefreshRotatesSession(t *testing.T) {
	user := testUser(t, "sup@fieldmark.io", "s3cret-pass", enums.UserRoleSupervisor, true)
	repo := newStubUserRepo(user)
	sessions := &stubSessionManager{}
	svc := newTestService(t, repo, sessions)

	expired, err := pkgAuth.MintAccessToken(testJWT(), time.Now().Add(-time.Hour), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    "old-session",
	})
	if err != nil {
		t.Fatalf("mint expired token: %v", err)
	}

	resp, err := svc.Refresh(context.Background(), expired, RefreshRequest{RefreshToken: "refresh-old-session"})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWT(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	if claims.ID != "rotated-old-session" {
		t.Fatalf("expected rotated session id, got %s", claims.ID)
	}
	if resp.RefreshToken != "refresh-rotated-old-session" {
		t.Fatalf("unexpected refresh token %s", resp.RefreshToken)
	}
}

func TestRefreshRejectsDeactivatedUser(t *testing.T) {
	user := testUser(t, "sup@fieldmark.io", "s3cret-pass", enums.UserRoleSupervisor, false)
	svc := newTestService(t, newStubUserRepo(user), &stubSessionManager{})

	expired, err := pkgAuth.MintAccessToken(testJWT(), time.Now().Add(-time.Hour), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    "old-session",
	})
	if err != nil {
		t.Fatalf("mint expired token: %v", err)
	}

	_, err = svc.Refresh(context.Background(), expired, RefreshRequest{RefreshToken: "anything"})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := &stubSessionManager{}
	svc := newTestService(t, newStubUserRepo(), sessions)

	if err := svc.Logout(context.Background(), "session-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "session-1" {
		t.Fatalf("expected session-1 revoked, got %v", sessions.revoked)
	}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s got %s", code, typed.Code())
	}
}
