package authz

import (
	"log/slog"
	"net/http"

	"github.com/printdesk/printdesk/internal/platform/httpx"
)

// Middleware wires the resolver and gate into chi handler chains.
type Middleware struct {
	Resolver *Resolver
	Gate     *Gate
	Logger   *slog.Logger
}

// Authenticate resolves the principal once per request and rejects requests
// without a valid credential. Handlers downstream read the principal from
// context instead of re-deriving it.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := m.Resolver.Resolve(r.Context(), r)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), p)))
	})
}

// Require gates the route on a (resource, action) pair with no target
// attributes. Operations needing ownership or target checks call
// Gate.Authorize directly after loading the row.
func (m Middleware) Require(res Resource, act Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if err := m.Gate.Authorize(p, res, act, Target{}); err != nil {
				if m.Logger != nil {
					m.Logger.Warn("authorization denied",
						slog.Int64("user_id", p.ID),
						slog.String("resource", string(res)),
						slog.String("action", string(act)))
				}
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
