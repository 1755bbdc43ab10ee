// Package dashboard собирает локальный шлюз дашборда: хранилище сессии,
// клиент бэкенда, менеджер сессии, доменные сервисы и HTTP-сервер.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/jobper/jobper-dashboard/internal/apiclient"
	"github.com/jobper/jobper-dashboard/internal/bus"
	"github.com/jobper/jobper-dashboard/internal/cache"
	"github.com/jobper/jobper-dashboard/internal/config"
	"github.com/jobper/jobper-dashboard/internal/lib/sl"
	"github.com/jobper/jobper-dashboard/internal/migrations"
	"github.com/jobper/jobper-dashboard/internal/services/account"
	authservice "github.com/jobper/jobper-dashboard/internal/services/auth"
	"github.com/jobper/jobper-dashboard/internal/services/contracts"
	"github.com/jobper/jobper-dashboard/internal/services/payments"
	"github.com/jobper/jobper-dashboard/internal/services/review"
	"github.com/jobper/jobper-dashboard/internal/services/team"
	"github.com/jobper/jobper-dashboard/internal/session"
	"github.com/jobper/jobper-dashboard/internal/storage"
)

// App локальный шлюз дашборда.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	sessions *session.Manager
	tokenBus *bus.Bus
}

// New собирает приложение из конфига. Бэкенд хранилища выбирается
// настройкой storage.backend: memory, file, redis, postgres.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("app.New: %w", err)
	}

	tokenBus := bus.New(logger)
	api := apiclient.New(cfg.Backend, store, logger)
	sessions := session.New(api, store, tokenBus, cfg.Refresh, logger)
	sessions.Restore(ctx)

	var searchCache contracts.Cache
	if cfg.StorageBackend == "redis" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			logger.Warn("search cache unavailable, falling back to direct requests", sl.Err(err))
		} else {
			searchCache = redisCache
		}
	}

	authSvc := authservice.New(api, sessions, logger)
	contractsSvc := contracts.New(api, searchCache, sessions, logger)
	paymentsSvc := payments.New(api, logger)
	reviewSvc := review.New(api, logger)
	teamSvc := team.New(api, sessions, logger)
	accountSvc := account.New(api, cfg.PushPublicKey, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:      authSvc,
		Contracts: contractsSvc,
		Payments:  paymentsSvc,
		Review:    reviewSvc,
		Team:      teamSvc,
		Account:   accountSvc,
		Session:   sessions,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		sessions: sessions,
		tokenBus: tokenBus,
	}, nil
}

func newStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	switch cfg.StorageBackend {
	case "", "memory":
		return storage.NewMemory(), nil
	case "file":
		return storage.NewFile(cfg.StatePath, logger)
	case "redis":
		return storage.NewRedis(ctx, cfg.RedisConnection, logger)
	case "postgres":
		pg, err := storage.NewPostgres(cfg.ConnectionString, logger)
		if err != nil {
			return nil, err
		}
		if err := migrations.Run(pg.DB, "./migrations"); err != nil {
			return nil, err
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}

// Run запускает фоновый цикл сессии и HTTP-сервер, блокируется до
// отмены контекста или ошибки сервера.
func (a *App) Run(ctx context.Context) error {
	go a.sessions.Run(ctx)

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
		a.tokenBus.Close()
		return err
	}
}
