// Package main is the entrypoint for the Billax API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/billax/billax/internal/ai"
	"github.com/billax/billax/internal/auth"
	"github.com/billax/billax/internal/cache"
	"github.com/billax/billax/internal/config"
	"github.com/billax/billax/internal/handler"
	"github.com/billax/billax/internal/mail"
	"github.com/billax/billax/internal/metrics"
	"github.com/billax/billax/internal/middleware"
	"github.com/billax/billax/internal/plaid"
	"github.com/billax/billax/internal/repository"
	"github.com/billax/billax/internal/server"
	"github.com/billax/billax/internal/service"
)

func main() {
	ctx := context.Background()

	// Missing DATABASE_URL or JWT_SECRET_KEY aborts startup here.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// External clients
	tokens := auth.NewTokenIssuer(cfg.JWTSecretKey, cfg.JWTAccessTTL)
	plaidClient := plaid.NewClient(cfg.PlaidClientID, cfg.PlaidSecret, cfg.PlaidEnv, logger)
	aiClient := ai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIMaxTokens, cfg.OpenAITemperature, logger)
	mailer := mail.NewMailer(mail.Config{
		Server:      cfg.MailServer,
		Port:        cfg.MailPort,
		Username:    cfg.MailUsername,
		Password:    cfg.MailPassword,
		From:        cfg.MailFrom,
		FrontendURL: cfg.FrontendURL,
	}, logger)

	if !cfg.OpenAIEnabled() {
		logger.Warn("OPENAI_API_KEY not set, chat runs in fallback mode")
	}
	if !cfg.MailEnabled() {
		logger.Warn("MAIL_SERVER not set, password reset emails disabled")
	}

	// Services
	recorder := metrics.NewInMemory()
	authService := service.NewAuthService(repo, cacheClient, tokens, mailer, logger, recorder)
	plaidService := service.NewPlaidService(repo, plaidClient, logger, recorder)
	accountService := service.NewAccountService(repo, cacheClient, plaidClient, logger, recorder)
	transactionService := service.NewTransactionService(repo, cacheClient, plaidClient, logger, recorder)
	goalService := service.NewGoalService(repo, logger, recorder)
	chatService := service.NewChatService(repo, cacheClient, aiClient, logger, recorder)

	// Handlers
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	metricsHandler := handler.NewMetricsHandler(recorder)
	authHandler := handler.NewAuthHandler(authService, logger)
	plaidHandler := handler.NewPlaidHandler(plaidService, logger)
	accountHandler := handler.NewAccountHandler(accountService, logger)
	transactionHandler := handler.NewTransactionHandler(transactionService, logger)
	goalHandler := handler.NewGoalHandler(goalService, logger)
	chatHandler := handler.NewChatHandler(chatService, logger)

	r := setupRouter(routerDeps{
		cfg:         cfg,
		logger:      logger,
		tokens:      tokens,
		cache:       cacheClient,
		health:      healthHandler,
		metrics:     metricsHandler,
		auth:        authHandler,
		plaid:       plaidHandler,
		account:     accountHandler,
		transaction: transactionHandler,
		goal:        goalHandler,
		chat:        chatHandler,
	})

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	cfg    *config.Config
	logger *slog.Logger
	tokens *auth.TokenIssuer
	cache  *cache.Cache

	health      *handler.HealthHandler
	metrics     *handler.MetricsHandler
	auth        *handler.AuthHandler
	plaid       *handler.PlaidHandler
	account     *handler.AccountHandler
	transaction *handler.TransactionHandler
	goal        *handler.GoalHandler
	chat        *handler.ChatHandler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = d.cfg.CORSAllowedOrigins()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: d.cfg.IsDevelopment()}))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.MaxBodySize(d.cfg.MaxRequestBodySize))

	// Infrastructure endpoints, no auth
	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)
	r.Get("/metrics", d.metrics.Metrics)
	r.Get("/", handler.Root)

	authCfg := middleware.AuthConfig{
		Logger: d.logger,
		Tokens: d.tokens,
		Cache:  d.cache,
	}

	loginRateLimit := middleware.RateLimitLogin(middleware.RateLimitConfig{
		Logger:  d.logger,
		Cache:   d.cache,
		Enabled: d.cfg.RateLimitLoginEnabled,
		RPS:     d.cfg.RateLimitLoginRPS,
		Burst:   d.cfg.RateLimitLoginBurst,
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", d.auth.Register)
			r.With(loginRateLimit).Post("/login", d.auth.Login)
			r.Post("/forgot-password", d.auth.ForgotPassword)
			r.Post("/reset-password", d.auth.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(authCfg))
				r.Post("/logout", d.auth.Logout)
				r.Get("/me", d.auth.Me)
			})
		})

		// Everything below requires a valid access token
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))

			r.Route("/plaid", func(r chi.Router) {
				r.Post("/create-link-token", d.plaid.CreateLinkToken)
				r.Post("/create-public-token", d.plaid.CreateSandboxToken)
				r.Post("/exchange-public-token", d.plaid.ExchangeToken)
				r.Post("/disconnect", d.plaid.Disconnect)
				r.Get("/status", d.plaid.Status)
			})

			r.Route("/accounts", func(r chi.Router) {
				r.Post("/sync", d.account.Sync)
				r.Get("/", d.account.List)
				r.Get("/summary", d.account.Summary)
				r.Get("/type/{type}", d.account.ListByType)
				r.Get("/{id}", d.account.Get)
				r.Delete("/{id}", d.account.Delete)
				r.Delete("/", d.account.DeleteAll)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Post("/sync", d.transaction.Sync)
				r.Get("/", d.transaction.List)
				r.Get("/summary", d.transaction.Summary)
				r.Get("/type/{channel}", d.transaction.ListByChannel)
				r.Get("/{id}", d.transaction.Get)
				r.Delete("/{id}", d.transaction.Delete)
				r.Delete("/", d.transaction.DeleteAll)
			})

			r.Route("/goals", func(r chi.Router) {
				r.Post("/", d.goal.Create)
				r.Get("/", d.goal.List)
				r.Get("/categories", d.goal.Categories)
				r.Get("/category/{category}", d.goal.ListByCategory)
				r.Get("/overdue", d.goal.Overdue)
				r.Get("/near-deadline", d.goal.NearDeadline)
				r.Get("/search", d.goal.Search)
				r.Get("/summary", d.goal.Statistics)
				r.Get("/statistics", d.goal.Statistics)
				r.Get("/{id}", d.goal.Get)
				r.Put("/{id}", d.goal.Update)
				r.Delete("/{id}", d.goal.Delete)
				r.Get("/{id}/progress", d.goal.GetProgress)
				r.Put("/{id}/progress", d.goal.UpdateProgress)
			})

			r.Route("/chat", func(r chi.Router) {
				r.Post("/", d.chat.SendMessage)
				r.Get("/history", d.chat.History)
				r.Delete("/{id}", d.chat.Delete)
				r.Delete("/", d.chat.DeleteAll)
			})
		})
	})

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
