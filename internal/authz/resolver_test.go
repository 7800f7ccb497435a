package authz_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/printdesk/printdesk/internal/authz"
	"github.com/printdesk/printdesk/internal/platform/httpx"
	"github.com/printdesk/printdesk/internal/shared"
)

type stubSource struct {
	principals map[int64]authz.Principal
}

func (s *stubSource) FindPrincipal(ctx context.Context, userID int64) (authz.Principal, error) {
	p, ok := s.principals[userID]
	if !ok {
		return authz.Principal{}, shared.ErrNotFound
	}
	return p, nil
}

type stubVerifier struct {
	subjects map[string]int64
}

func (s *stubVerifier) Verify(token string) (int64, error) {
	id, ok := s.subjects[token]
	if !ok {
		return 0, errors.New("bad token")
	}
	return id, nil
}

func newResolver() *authz.Resolver {
	source := &stubSource{principals: map[int64]authz.Principal{
		42: {ID: 42, Email: "staff@print.local", Role: authz.RoleStaff},
	}}
	verifier := &stubVerifier{subjects: map[string]int64{"good-token": 42}}
	return authz.NewResolver(source, verifier)
}

func sessionRequest(t *testing.T, userID string) *http.Request {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	sess, err := manager.Load(context.Background(), req)
	require.NoError(t, err)
	if userID != "" {
		sess.SetUser(userID)
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestResolveSession(t *testing.T) {
	rv := newResolver()
	req := sessionRequest(t, "42")

	p, err := rv.Resolve(req.Context(), req)
	require.NoError(t, err)
	require.Equal(t, int64(42), p.ID)
	require.Equal(t, authz.RoleStaff, p.Role)
	require.Equal(t, "staff@print.local", p.Email)
}

func TestResolveAnonymousSession(t *testing.T) {
	rv := newResolver()
	req := sessionRequest(t, "")

	_, err := rv.Resolve(req.Context(), req)
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestResolveMalformedSession(t *testing.T) {
	rv := newResolver()
	req := sessionRequest(t, "not-a-number")

	_, err := rv.Resolve(req.Context(), req)
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestResolveBearer(t *testing.T) {
	rv := newResolver()

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	p, err := rv.Resolve(req.Context(), req)
	require.NoError(t, err)
	require.Equal(t, int64(42), p.ID)

	req.Header.Set("Authorization", "Bearer forged")
	_, err = rv.Resolve(req.Context(), req)
	require.ErrorIs(t, err, httpx.ErrUnauthorized)

	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	_, err = rv.Resolve(req.Context(), req)
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestResolveUnknownAccount(t *testing.T) {
	rv := newResolver()
	req := sessionRequest(t, strconv.FormatInt(999, 10))

	_, err := rv.Resolve(req.Context(), req)
	require.ErrorIs(t, err, httpx.ErrUnauthorized)
}

func TestResolverNeverReportsRole(t *testing.T) {
	// Insufficient role is the gate's concern; a resolvable credential always
	// yields a principal regardless of role.
	source := &stubSource{principals: map[int64]authz.Principal{
		7: {ID: 7, Email: "customer@print.local", Role: authz.RoleCustomer},
	}}
	rv := authz.NewResolver(source, nil)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
	req := httptest.NewRequest(http.MethodDelete, "/users/1", nil)
	sess, err := manager.Load(context.Background(), req)
	require.NoError(t, err)
	sess.SetUser("7")
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	p, err := rv.Resolve(req.Context(), req)
	require.NoError(t, err)
	require.Equal(t, authz.RoleCustomer, p.Role)
}
