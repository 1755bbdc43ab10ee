package dashboard

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/jobper/jobper-dashboard/internal/http/handlers/account/password"
	"github.com/jobper/jobper-dashboard/internal/http/handlers/admin/approve"
	"github.com/jobper/jobper-dashboard/internal/http/handlers/admin/reject"
	"github.com/jobper/jobper-dashboard/internal/http/handlers/admin/reviewlist"
	"github.com/jobper/jobper-dashboard/internal/http/handlers/auth/login"
	"github.com/jobper/jobper-dashboard/internal/http/handlers/auth/logout"
	"github.com/jobper/jobper-dashboard/internal/http/handlers/auth/sessionstate"
	"github.com/jobper/jobper-dashboard/internal/http/handlers/contracts/savedsearch"
	"github.com/jobper/jobper-dashboard/internal/http/handlers/contracts/search"
	"github.com/jobper/jobper-dashboard/internal/http/handlers/health"
	"github.com/jobper/jobper-dashboard/internal/http/handlers/payments/confirm"
	"github.com/jobper/jobper-dashboard/internal/http/middlewarectx"
	accountservice "github.com/jobper/jobper-dashboard/internal/services/account"
	authservice "github.com/jobper/jobper-dashboard/internal/services/auth"
	contractsservice "github.com/jobper/jobper-dashboard/internal/services/contracts"
	paymentsservice "github.com/jobper/jobper-dashboard/internal/services/payments"
	reviewservice "github.com/jobper/jobper-dashboard/internal/services/review"
	teamservice "github.com/jobper/jobper-dashboard/internal/services/team"
	"github.com/jobper/jobper-dashboard/internal/session"
)

// Services доменные сервисы, обслуживаемые маршрутами шлюза.
type Services struct {
	Auth      *authservice.Service
	Contracts *contractsservice.Service
	Payments  *paymentsservice.Service
	Review    *reviewservice.Service
	Team      *teamservice.Service
	Account   *accountservice.Service
	Session   *session.Manager
}

// RegisterRoutes регистрирует все маршруты шлюза.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svcs *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	limiter := rate.NewLimiter(10, 30)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/login", login.New(logger, svcs.Auth).ServeHTTP)
		r.Get("/auth/session", sessionstate.New(logger, svcs.Auth).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с установленной сессией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.SessionMiddleware(svcs.Session, logger))
			r.Use(middlewarectx.RateLimitMiddleware(limiter, logger))
			r.Post("/auth/logout", logout.New(logger, svcs.Auth).ServeHTTP)
			r.Get("/contracts/search", search.New(logger, svcs.Contracts).ServeHTTP)
			r.Get("/contracts/saved-searches", savedsearch.NewList(logger, svcs.Contracts).ServeHTTP)
			r.Post("/contracts/saved-searches", savedsearch.NewCreate(logger, svcs.Contracts).ServeHTTP)
			r.Post("/payments/{id}/confirm", confirm.New(logger, svcs.Payments).ServeHTTP)
			r.Put("/account/password", password.New(logger, svcs.Account).ServeHTTP)

			// Админский воркфлоу проверки платежей
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminMiddleware(logger))
				r.Get("/admin/payments", reviewlist.New(logger, svcs.Review).ServeHTTP)
				r.Post("/admin/payments/{id}/approve", approve.New(logger, svcs.Review).ServeHTTP)
				r.Post("/admin/payments/{id}/reject", reject.New(logger, svcs.Review).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
