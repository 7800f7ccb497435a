package auth_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/printdesk/printdesk/internal/auth"
	"github.com/printdesk/printdesk/internal/authz"
	"github.com/printdesk/printdesk/internal/shared"
)

type stubRepo struct {
	users    map[string]*auth.User
	nextID   int64
	sessions int
}

func newStubRepo() *stubRepo {
	return &stubRepo{users: make(map[string]*auth.User), nextID: 1}
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if user, ok := s.users[email]; ok {
		return user, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) CreateUser(ctx context.Context, email, name, passwordHash string, role authz.Role) (*auth.User, error) {
	user := &auth.User{
		ID:           s.nextID,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	s.nextID++
	s.users[email] = user
	return user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	s.sessions++
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	return nil
}

func newHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := auth.NewHandler(logger, auth.NewService(repo), manager)
	return handler, manager
}

func withSession(t *testing.T, manager *shared.SessionManager, req *http.Request) *http.Request {
	t.Helper()
	sess, err := manager.Load(context.Background(), req)
	require.NoError(t, err)
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestLoginSuccess(t *testing.T) {
	repo := newStubRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecret"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo.users["user@print.local"] = &auth.User{
		ID: 1, Email: "user@print.local", Name: "User",
		PasswordHash: string(hash), Role: authz.RoleCustomer, IsActive: true,
	}
	handler, manager := newHandler(t, repo)

	body := `{"email":"USER@print.local","password":"Sup3rSecret"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req = withSession(t, manager, req)

	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"email":"user@print.local"`)
	require.NotContains(t, res.Body.String(), "password")
	require.Equal(t, 1, repo.sessions)
}

func TestLoginInvalidCredentials(t *testing.T) {
	repo := newStubRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecret"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo.users["user@print.local"] = &auth.User{
		ID: 1, Email: "user@print.local", PasswordHash: string(hash), IsActive: true,
	}
	handler, manager := newHandler(t, repo)

	body := `{"email":"user@print.local","password":"WrongPass1"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req = withSession(t, manager, req)

	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Equal(t, 0, repo.sessions)
}

func TestRegister(t *testing.T) {
	repo := newStubRepo()
	handler, manager := newHandler(t, repo)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
		req = withSession(t, manager, req)
		res := httptest.NewRecorder()
		handler.HandleRegisterForTest(res, req)
		return res
	}

	res := post(`{"email":"New@Print.Local","name":"New User","password":"Sup3rSecret"}`)
	require.Equal(t, http.StatusCreated, res.Code)
	require.Contains(t, res.Body.String(), `"email":"new@print.local"`)
	require.NotContains(t, res.Body.String(), "password")

	// Same email with different case conflicts.
	res = post(`{"email":"new@PRINT.local","name":"Other","password":"Sup3rSecret"}`)
	require.Equal(t, http.StatusConflict, res.Code)

	// Weak password is caller-fixable.
	res = post(`{"email":"weak@print.local","name":"Weak","password":"alllowercase"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestPasswordStrength(t *testing.T) {
	require.Error(t, auth.CheckPasswordStrength("short1A"))
	require.Error(t, auth.CheckPasswordStrength("nouppercase1"))
	require.Error(t, auth.CheckPasswordStrength("NOLOWERCASE1"))
	require.Error(t, auth.CheckPasswordStrength("NoDigitsHere"))
	require.NoError(t, auth.CheckPasswordStrength("GoodPass1"))
}
