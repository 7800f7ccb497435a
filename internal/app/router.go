package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/printdesk/printdesk/internal/auth"
	"github.com/printdesk/printdesk/internal/authz"
	"github.com/printdesk/printdesk/internal/bridge"
	"github.com/printdesk/printdesk/internal/inventory"
	"github.com/printdesk/printdesk/internal/messages"
	"github.com/printdesk/printdesk/internal/notifications"
	"github.com/printdesk/printdesk/internal/orders"
	"github.com/printdesk/printdesk/internal/products"
	"github.com/printdesk/printdesk/internal/shared"
	"github.com/printdesk/printdesk/internal/uploads"
	"github.com/printdesk/printdesk/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Authz          authz.Middleware

	AuthHandler          *auth.Handler
	BridgeHandler        *bridge.Handler
	OrdersHandler        *orders.Handler
	MessagesHandler      *messages.Handler
	NotificationsHandler *notifications.Handler
	ProductsHandler      *products.Handler
	InventoryHandler     *inventory.Handler
	UsersHandler         *users.Handler
	UploadsHandler       *uploads.Handler
}

// NewRouter constructs the chi.Router.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Browser clients fetch the CSRF token here before any mutating call.
	r.Get("/auth/csrf", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		token, err := params.CSRFManager.EnsureToken(r.Context(), sess)
		if err != nil {
			params.Logger.Error("issue csrf token", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"csrf_token":"` + token + `"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/wordpress", params.BridgeHandler.MountRoutes)

	// The catalogue is browsable without an account; mutations require one.
	r.Route("/products", func(r chi.Router) {
		r.Get("/", params.ProductsHandler.List)
		r.Group(func(r chi.Router) {
			r.Use(params.Authz.Authenticate)
			params.ProductsHandler.MountRoutes(r)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(params.Authz.Authenticate)

		r.Route("/orders", params.OrdersHandler.MountRoutes)
		r.Route("/messages", params.MessagesHandler.MountRoutes)
		r.Route("/notifications", params.NotificationsHandler.MountRoutes)
		r.Route("/inventory", params.InventoryHandler.MountRoutes)
		r.Route("/users", params.UsersHandler.MountRoutes)
		r.Route("/uploads", params.UploadsHandler.MountRoutes)
		r.Method(http.MethodPost, "/upload", params.UploadsHandler.Upload())
	})

	return r
}
