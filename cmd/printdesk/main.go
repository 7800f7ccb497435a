package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/printdesk/printdesk/internal/app"
	"github.com/printdesk/printdesk/internal/auth"
	"github.com/printdesk/printdesk/internal/authz"
	"github.com/printdesk/printdesk/internal/bridge"
	"github.com/printdesk/printdesk/internal/inventory"
	"github.com/printdesk/printdesk/internal/messages"
	"github.com/printdesk/printdesk/internal/notifications"
	"github.com/printdesk/printdesk/internal/orders"
	"github.com/printdesk/printdesk/internal/platform/db"
	"github.com/printdesk/printdesk/internal/products"
	"github.com/printdesk/printdesk/internal/platform/storage"
	"github.com/printdesk/printdesk/internal/shared"
	"github.com/printdesk/printdesk/internal/uploads"
	"github.com/printdesk/printdesk/internal/users"
	"github.com/printdesk/printdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "printdesk_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(dbpool)

	tokenCodec := bridge.NewTokenCodec(cfg.BridgeTokenSecret)

	usersRepo := users.NewRepository(dbpool)
	gate := authz.NewGate()
	resolver := authz.NewResolver(usersRepo, tokenCodec)
	authzMW := authz.Middleware{Resolver: resolver, Gate: gate, Logger: logger}

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	bridgeHandler := bridge.NewHandler(logger, authService, tokenCodec, cfg.CORSAllowedOrigins)

	notifyClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr}, logger)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := notifyClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	ordersRepo := orders.NewRepository(dbpool)
	ordersService := orders.NewService(ordersRepo, gate, notifyClient)
	ordersHandler := orders.NewHandler(logger, ordersService, authzMW)

	messagesRepo := messages.NewRepository(dbpool)
	messagesService := messages.NewService(messagesRepo, gate, notifyClient)
	messagesHandler := messages.NewHandler(logger, messagesService, authzMW)

	notificationsRepo := notifications.NewRepository(dbpool)
	notificationsService := notifications.NewService(notificationsRepo, gate)
	notificationsHandler := notifications.NewHandler(logger, notificationsService)

	productsRepo := products.NewRepository(dbpool)
	productsService := products.NewService(productsRepo, auditLogger)
	productsHandler := products.NewHandler(logger, productsService, authzMW)

	inventoryRepo := inventory.NewRepository(dbpool)
	inventoryService := inventory.NewService(inventoryRepo, auditLogger)
	inventoryHandler := inventory.NewHandler(logger, inventoryService, authzMW)

	usersService := users.NewService(usersRepo, gate, auditLogger)
	usersHandler := users.NewHandler(logger, usersService, authzMW)

	store := storage.NewBucketClient(cfg.StorageURL, cfg.StorageBucket, cfg.StorageAPIKey)
	uploadsRepo := uploads.NewRepository(dbpool)
	uploadsService := uploads.NewService(uploadsRepo, store, gate)
	uploadsHandler := uploads.NewHandler(logger, uploadsService, authzMW)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		SessionManager:       sessionManager,
		CSRFManager:          csrfManager,
		Authz:                authzMW,
		AuthHandler:          authHandler,
		BridgeHandler:        bridgeHandler,
		OrdersHandler:        ordersHandler,
		MessagesHandler:      messagesHandler,
		NotificationsHandler: notificationsHandler,
		ProductsHandler:      productsHandler,
		InventoryHandler:     inventoryHandler,
		UsersHandler:         usersHandler,
		UploadsHandler:       uploadsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
