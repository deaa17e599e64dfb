// Package tahminci собирает основное HTTP-приложение: хранилище,
// миграции, кеш, файловое хранилище квитанций, сервисы и маршруты.
package tahminci

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/tahminci/tahminci-api/internal/cache"
	"github.com/tahminci/tahminci-api/internal/config"
	"github.com/tahminci/tahminci-api/internal/lib/jwt"
	"github.com/tahminci/tahminci-api/internal/lib/uploads"
	"github.com/tahminci/tahminci-api/internal/migrations"
	authservice "github.com/tahminci/tahminci-api/internal/services/auth"
	contentservice "github.com/tahminci/tahminci-api/internal/services/content"
	entitlementservice "github.com/tahminci/tahminci-api/internal/services/entitlement"
	paymentservice "github.com/tahminci/tahminci-api/internal/services/payment"
	settingsservice "github.com/tahminci/tahminci-api/internal/services/settings"
	"github.com/tahminci/tahminci-api/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	evidenceStore, err := uploads.New(cfg.UploadsDir)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.New(db, jwtMaker, logger)
	entitlementService := entitlementservice.New(db, logger)
	paymentService := paymentservice.New(db, db, evidenceStore, logger)
	contentService := contentservice.New(db, cacheRedis, logger)
	settingsService := settingsservice.New(db, logger)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, db, authService, entitlementService, paymentService, contentService, settingsService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
