package bridge

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/printdesk/printdesk/internal/auth"
	"github.com/printdesk/printdesk/internal/platform/httpx"
)

// Handler exposes the WordPress credential-exchange endpoint.
type Handler struct {
	logger         *slog.Logger
	authService    *auth.Service
	codec          *TokenCodec
	allowedOrigins map[string]bool
	validator      *validator.Validate
}

// NewHandler constructs a Handler. origins is the CORS allow-list from
// configuration; only the bridge endpoint is origin-checked.
func NewHandler(logger *slog.Logger, authService *auth.Service, codec *TokenCodec, origins []string) *Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			allowed[o] = true
		}
	}
	return &Handler{
		logger:         logger,
		authService:    authService,
		codec:          codec,
		allowedOrigins: allowed,
		validator:      validator.New(),
	}
}

// MountRoutes registers the bridge routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Options("/auth", h.handlePreflight)
	r.Post("/auth", h.handleAuth)
}

type authRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handlePreflight(w http.ResponseWriter, r *http.Request) {
	if !h.applyCORS(w, r) {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "origin not allowed")
		return
	}
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAuth(w http.ResponseWriter, r *http.Request) {
	if !h.applyCORS(w, r) {
		h.logger.Warn("bridge auth from disallowed origin", slog.String("origin", r.Header.Get("Origin")))
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "origin not allowed")
		return
	}

	var req authRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	user, err := h.authService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid email or password")
		return
	}

	token, err := h.codec.Issue(user.ID, string(user.Role))
	if err != nil {
		h.logger.Error("issue bridge token", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user.Public(),
	})
}

// applyCORS validates the Origin header against the allow-list and sets the
// response headers when it matches. Requests without an Origin header (same
// origin or server-to-server) pass.
func (h *Handler) applyCORS(w http.ResponseWriter, r *http.Request) bool {
	origin := strings.TrimRight(r.Header.Get("Origin"), "/")
	if origin == "" {
		return true
	}
	if !h.allowedOrigins[origin] {
		return false
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Vary", "Origin")
	return true
}

// HandleAuthForTest exposes the POST handler for tests.
func (h *Handler) HandleAuthForTest(w http.ResponseWriter, r *http.Request) {
	h.handleAuth(w, r)
}
