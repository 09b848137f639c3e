package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alextreichler/tiffin/internal/cart"
	"github.com/alextreichler/tiffin/internal/config"
	"github.com/alextreichler/tiffin/internal/feed"
	"github.com/alextreichler/tiffin/internal/handlers"
	"github.com/alextreichler/tiffin/internal/menu"
	"github.com/alextreichler/tiffin/internal/models"
	"github.com/alextreichler/tiffin/internal/payment"
	"github.com/alextreichler/tiffin/internal/sales"
	"github.com/alextreichler/tiffin/internal/store"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

func main() {
	// Configure slog to output DEBUG level messages
	handlerOpts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, handlerOpts))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Init DB (migrations run on open)
	db, err := store.NewStore(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3. Domain services
	ctx := context.Background()
	menuSvc := menu.NewService(db, logger)
	if err := menuSvc.Initialize(ctx); err != nil {
		slog.Error("Failed to initialize menu", "error", err)
		os.Exit(1)
	}
	salesLog := sales.NewLog(db, cfg.Location)
	hub := feed.NewHub(cfg.TrustedOrigins...)
	carts := cart.NewService(db, menuSvc, salesLog,
		cart.WithLogger(logger),
		cart.OnConfirm(func(o models.Order) { go hub.Broadcast(o) }), // slow dashboards must not hold up checkout
	)

	// 4. Session Setup
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	if cfg.CookieDomain != "" {
		sessionStore.Options.Domain = cfg.CookieDomain
	}

	// 5. Init Templates
	templates := handlers.NewTemplateCache()
	templates.AddDefaultFuncs(cfg.Location)
	if err := templates.Load(cfg.TemplatesDir); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	// 6. Setup Handlers
	rateLimiter := handlers.NewRateLimiter(2 * time.Second) // stops double-submitted confirmations
	defer rateLimiter.Stop()

	routes := &handlers.Routes{
		Home: &handlers.HomeHandler{
			Menu:         menuSvc,
			Carts:        carts,
			Templates:    templates,
			SessionStore: sessionStore,
		},
		Orders: &handlers.OrderHandler{
			Carts:        carts,
			Templates:    templates,
			SessionStore: sessionStore,
			Payee: payment.Payee{
				VPA:      cfg.PayeeVPA,
				Name:     cfg.PayeeName,
				Currency: cfg.Currency,
			},
			QRServiceURL: cfg.QRServiceURL,
			QRSize:       cfg.QRSize,
		},
		Admin: &handlers.AdminHandler{
			Store:        db,
			Menu:         menuSvc,
			Sales:        salesLog,
			SessionStore: sessionStore,
			Templates:    templates,
			UploadDir:    cfg.UploadDir,
			UploadURL:    cfg.UploadURL,
		},
		Feed:        hub,
		RateLimiter: rateLimiter,
		StaticDir:   cfg.StaticDir,
	}
	mux := routes.Mux()

	// 7. Middleware Setup
	trusted := append([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}, cfg.TrustedOrigins...)
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.TrustedOrigins(trusted),
	)

	// Chain: Logger -> Security Headers -> CSRF -> Mux
	handler := handlers.LoggingMiddleware(
		handlers.SecurityHeadersMiddleware(
			CSRF(mux),
		),
	)

	// 8. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "port", cfg.Port, "timezone", cfg.Location.String())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-stop

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited gracefully.")
}
