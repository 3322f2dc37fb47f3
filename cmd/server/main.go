package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/lcastillo/botilleria/internal"
	"github.com/lcastillo/botilleria/internal/billing"
	"github.com/lcastillo/botilleria/internal/bootstrap"
	"github.com/lcastillo/botilleria/internal/cart"
	"github.com/lcastillo/botilleria/internal/cookie"
	"github.com/lcastillo/botilleria/internal/delivery"
	"github.com/lcastillo/botilleria/internal/email"
	adminhandler "github.com/lcastillo/botilleria/internal/handler/admin"
	"github.com/lcastillo/botilleria/internal/handler/storefront"
	"github.com/lcastillo/botilleria/internal/handler/webhook"
	"github.com/lcastillo/botilleria/internal/middleware"
	"github.com/lcastillo/botilleria/internal/postgres"
	"github.com/lcastillo/botilleria/internal/realtime"
	"github.com/lcastillo/botilleria/internal/router"
	"github.com/lcastillo/botilleria/internal/routes"
	"github.com/lcastillo/botilleria/internal/service"
	"github.com/lcastillo/botilleria/internal/storage"
	"github.com/lcastillo/botilleria/internal/telemetry"
)

// Compile-time checks that the postgres repositories satisfy the service
// layer's storage interfaces.
var (
	_ service.ProductStore  = (*postgres.ProductRepo)(nil)
	_ service.ContentStore  = (*postgres.ContentRepo)(nil)
	_ service.OrderStore    = (*postgres.OrderRepo)(nil)
	_ service.UserStore     = (*postgres.UserRepo)(nil)
	_ service.SettingsStore = (*postgres.SettingsRepo)(nil)
	_ service.MessageStore  = (*postgres.MessageRepo)(nil)
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize Sentry error tracking
	sentryCleanup, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Enabled:          cfg.Sentry.Enabled,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
		Debug:            cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer sentryCleanup()

	// Run migrations over database/sql, then hand the app to the pgx pool
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return fmt.Errorf("migration failed: %w", err)
	}
	sqlDB.Close()
	logger.Info("Database migrations completed")

	pool, err := postgres.Connect(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Repositories
	productRepo := postgres.NewProductRepo(pool)
	contentRepo := postgres.NewContentRepo(pool)
	orderRepo := postgres.NewOrderRepo(pool)
	userRepo := postgres.NewUserRepo(pool)
	settingsRepo := postgres.NewSettingsRepo(pool)
	messageRepo := postgres.NewMessageRepo(pool)

	// Cart persistence: Redis when configured, files otherwise. Memory is
	// the last resort and loses carts on restart.
	var cartStore cart.Store
	switch {
	case cfg.RedisUrl != "":
		opts, err := redis.ParseURL(cfg.RedisUrl)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
		defer client.Close()
		cartStore = cart.NewRedisStore(client, cart.DefaultCartTTL)
		logger.Info("Cart storage: redis")
	case cfg.CartDir != "":
		fileStore, err := cart.NewFileStore(cfg.CartDir)
		if err != nil {
			return fmt.Errorf("failed to open cart directory: %w", err)
		}
		cartStore = fileStore
		logger.Info("Cart storage: file", "dir", cfg.CartDir)
	default:
		cartStore = cart.NewMemoryStore()
		logger.Warn("Cart storage: memory (carts are lost on restart)")
	}

	quoter := delivery.NewPerKmQuoter(cfg.Delivery.PerKmCents)
	carts := cart.NewManager(cartStore, quoter, cfg.Delivery.FreeThresholdCents)

	// Change notifications: NATS when configured, otherwise no-op.
	var publisher realtime.Publisher = realtime.NoopPublisher{}
	var broker *realtime.NatsBroker
	if cfg.NatsUrl != "" {
		broker, err = realtime.Connect(cfg.NatsUrl, logger)
		if err != nil {
			return fmt.Errorf("nats connection failed: %w", err)
		}
		defer broker.Close()
		publisher = broker
		logger.Info("Connected to NATS", "url", cfg.NatsUrl)
	}

	// Billing
	provider, err := billing.NewStripeProvider(billing.StripeConfig{
		APIKey:        cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize billing provider: %w", err)
	}

	// Email
	sender := email.NewSMTPSender(&email.SMTPConfig{
		Host:     cfg.Email.Host,
		Port:     int(cfg.Email.Port),
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
		FromName: cfg.Email.FromName,
	}, logger)
	mailer := email.NewService(sender, cfg.Email.From, cfg.Store.Name)

	// Image uploads: local disk or Cloudflare R2.
	uploads, err := storage.New(storage.Config{
		Provider:      cfg.Storage.Provider,
		LocalPath:     cfg.Storage.LocalPath,
		LocalURL:      cfg.Storage.LocalURL,
		R2AccountID:   cfg.Storage.R2AccountID,
		R2AccessKeyID: cfg.Storage.R2AccessKeyID,
		R2SecretKey:   cfg.Storage.R2SecretKey,
		R2BucketName:  cfg.Storage.R2BucketName,
		R2PublicURL:   cfg.Storage.R2PublicURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize upload storage: %w", err)
	}

	// Services
	catalogService := service.NewCatalogService(productRepo, contentRepo, settingsRepo, logger)
	checkoutService := service.NewCheckoutService(orderRepo, provider, mailer, publisher, logger)
	orderService := service.NewOrderService(orderRepo, provider, publisher, logger)
	contactService := service.NewContactService(messageRepo, logger)
	adminCatalogService := service.NewAdminCatalogService(productRepo, contentRepo, settingsRepo, publisher, logger)
	authService := service.NewAuthService(userRepo, service.OAuthCredentials{
		ClientID:     cfg.OAuth.GoogleClientID,
		ClientSecret: cfg.OAuth.GoogleClientSecret,
		RedirectURL:  cfg.OAuth.RedirectURL,
	}, logger)

	// Seed the initial admin profile (idempotent)
	if err := bootstrap.EnsureAdmin(ctx, userRepo, &bootstrap.AdminConfig{
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
		FullName: cfg.Admin.FullName,
	}, logger); err != nil {
		return fmt.Errorf("admin bootstrap failed: %w", err)
	}

	// Subscribe storefront caches to change notifications
	if broker != nil {
		unwatch, err := catalogService.WatchChanges(broker)
		if err != nil {
			return fmt.Errorf("failed to subscribe to change notifications: %w", err)
		}
		defer unwatch()
	}

	// Periodic cleanup: expired sessions and idle in-memory cart engines.
	// Evicted carts stay in the store and rehydrate on the next request.
	pruneCtx, stopPrune := context.WithCancel(ctx)
	defer stopPrune()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-pruneCtx.Done():
				return
			case <-ticker.C:
				authService.PruneSessions(pruneCtx)
				if n := carts.PruneIdle(24 * time.Hour); n > 0 {
					logger.Debug("Evicted idle cart engines", "count", n)
				}
			}
		}
	}()

	// Telemetry
	httpMetrics := middleware.NewMetrics("botilleria")
	businessMetrics := telemetry.NewBusinessMetrics("botilleria")

	cookieConfig := cookie.NewConfig(cfg.Env == "prod")

	// CSRF protects the cookie-based API; webhooks verify their own signatures.
	csrfConfig := middleware.DefaultCSRFConfig(cookieConfig)
	csrfConfig.SkipPaths = []string{"/api/webhooks/"}

	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	defer rateLimiter.Stop()
	authRateLimiter := middleware.NewRateLimiter(middleware.StrictRateLimiterConfig())
	defer authRateLimiter.Stop()

	r := router.New(
		middleware.RequestID,
		middleware.WithClientIP(),
		middleware.WithRequestLogger(logger),
		telemetry.SentryMiddleware(),
		router.Recovery(logger),
		httpMetrics.Middleware,
		middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig()),
		middleware.MaxBodySize(),
		middleware.Timeout(),
		rateLimiter.Middleware,
		middleware.CSRF(csrfConfig),
		middleware.WithUser(authService),
	)

	// Handlers
	storefrontDeps := routes.StorefrontDeps{
		CatalogHandler:  storefront.NewCatalogHandler(catalogService),
		CartHandler:     storefront.NewCartHandler(carts, catalogService, cookieConfig, businessMetrics),
		CheckoutHandler: storefront.NewCheckoutHandler(checkoutService, carts, cookieConfig, businessMetrics),
		AuthHandler:     storefront.NewAuthHandler(authService, cookieConfig, businessMetrics),
		ContactHandler:  storefront.NewContactHandler(contactService, catalogService, businessMetrics),
		AuthRateLimit:   authRateLimiter,
	}
	adminDeps := routes.AdminDeps{
		CatalogHandler:  adminhandler.NewCatalogHandler(adminCatalogService),
		SettingsHandler: adminhandler.NewSettingsHandler(adminCatalogService),
		OrdersHandler:   adminhandler.NewOrdersHandler(orderService),
		MessagesHandler: adminhandler.NewMessagesHandler(contactService),
		ImagesHandler:   adminhandler.NewImagesHandler(uploads),
	}
	webhookDeps := routes.WebhookDeps{
		StripeHandler: webhook.NewStripeHandler(provider, cfg.Stripe.WebhookSecret, logger, businessMetrics),
	}

	routes.RegisterStorefrontRoutes(r, storefrontDeps)
	routes.RegisterAdminRoutes(r, adminDeps)
	routes.RegisterWebhookRoutes(r, webhookDeps)

	// Locally stored uploads are served as static files.
	if cfg.Storage.Provider == "local" || cfg.Storage.Provider == "" {
		prefix := cfg.Storage.LocalURL + "/"
		r.Handle(http.MethodGet, prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.Storage.LocalPath))))
	}

	r.Handle(http.MethodGet, "/metrics", httpMetrics.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// CORS wraps the whole mux so preflight requests get answered even for
	// patterns registered under a single method.
	var handler http.Handler = r
	if len(cfg.AllowedOrigins) > 0 {
		handler = router.CORS(cfg.AllowedOrigins)(handler)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		logger.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
