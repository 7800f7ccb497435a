package authz

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/printdesk/printdesk/internal/platform/httpx"
	"github.com/printdesk/printdesk/internal/shared"
)

// PrincipalSource loads the current account state for a user ID. The resolver
// re-reads the row on every request so role changes take effect immediately.
type PrincipalSource interface {
	FindPrincipal(ctx context.Context, userID int64) (Principal, error)
}

// TokenVerifier validates a bearer token and returns the subject user ID.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// Resolver normalises the two supported credential schemes, cookie session
// and bearer token, into a Principal. Insufficient role is never a resolver
// concern; it only reports whether a valid credential identifies a user.
type Resolver struct {
	users  PrincipalSource
	tokens TokenVerifier
}

// NewResolver constructs a Resolver.
func NewResolver(users PrincipalSource, tokens TokenVerifier) *Resolver {
	return &Resolver{users: users, tokens: tokens}
}

// Resolve produces the Principal for the request, or ErrUnauthorized when the
// credential is missing, malformed, or expired.
func (rv *Resolver) Resolve(ctx context.Context, r *http.Request) (Principal, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		return rv.resolveBearer(ctx, header)
	}
	return rv.resolveSession(ctx)
}

func (rv *Resolver) resolveBearer(ctx context.Context, header string) (Principal, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return Principal{}, fmt.Errorf("%w: malformed authorization header", httpx.ErrUnauthorized)
	}
	if rv.tokens == nil {
		return Principal{}, fmt.Errorf("%w: bearer tokens not accepted", httpx.ErrUnauthorized)
	}
	userID, err := rv.tokens.Verify(strings.TrimPrefix(header, prefix))
	if err != nil {
		return Principal{}, fmt.Errorf("%w: invalid token", httpx.ErrUnauthorized)
	}
	return rv.lookup(ctx, userID)
}

func (rv *Resolver) resolveSession(ctx context.Context) (Principal, error) {
	sess := shared.SessionFromContext(ctx)
	if sess == nil {
		return Principal{}, fmt.Errorf("%w: no session", httpx.ErrUnauthorized)
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return Principal{}, fmt.Errorf("%w: not logged in", httpx.ErrUnauthorized)
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: malformed session", httpx.ErrUnauthorized)
	}
	return rv.lookup(ctx, userID)
}

func (rv *Resolver) lookup(ctx context.Context, userID int64) (Principal, error) {
	p, err := rv.users.FindPrincipal(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Principal{}, fmt.Errorf("%w: unknown account", httpx.ErrUnauthorized)
		}
		return Principal{}, err
	}
	return p, nil
}
