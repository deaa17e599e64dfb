// Package tahminci предоставляет маршруты для основного приложения.
package tahminci

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/tahminci/tahminci-api/internal/http/handlers/auth/login"
	"github.com/tahminci/tahminci-api/internal/http/handlers/auth/me"
	"github.com/tahminci/tahminci-api/internal/http/handlers/auth/register"
	couponlist "github.com/tahminci/tahminci-api/internal/http/handlers/coupon/list"
	couponread "github.com/tahminci/tahminci-api/internal/http/handlers/coupon/read"
	"github.com/tahminci/tahminci-api/internal/http/handlers/health"
	"github.com/tahminci/tahminci-api/internal/http/handlers/payment/paymentapprove"
	"github.com/tahminci/tahminci-api/internal/http/handlers/payment/paymentcreate"
	"github.com/tahminci/tahminci-api/internal/http/handlers/payment/paymentlist"
	"github.com/tahminci/tahminci-api/internal/http/handlers/payment/paymentmy"
	"github.com/tahminci/tahminci-api/internal/http/handlers/payment/paymentreceipt"
	"github.com/tahminci/tahminci-api/internal/http/handlers/payment/paymentreject"
	"github.com/tahminci/tahminci-api/internal/http/handlers/premium/extend"
	"github.com/tahminci/tahminci-api/internal/http/handlers/premium/revoke"
	premiumstats "github.com/tahminci/tahminci-api/internal/http/handlers/premium/stats"
	premiumstatus "github.com/tahminci/tahminci-api/internal/http/handlers/premium/status"
	predictionlist "github.com/tahminci/tahminci-api/internal/http/handlers/prediction/list"
	predictionread "github.com/tahminci/tahminci-api/internal/http/handlers/prediction/read"
	"github.com/tahminci/tahminci-api/internal/http/handlers/settings/settingsget"
	"github.com/tahminci/tahminci-api/internal/http/handlers/settings/settingsupdate"
	"github.com/tahminci/tahminci-api/internal/http/middlewarectx"
	authservice "github.com/tahminci/tahminci-api/internal/services/auth"
	contentservice "github.com/tahminci/tahminci-api/internal/services/content"
	entitlementservice "github.com/tahminci/tahminci-api/internal/services/entitlement"
	paymentservice "github.com/tahminci/tahminci-api/internal/services/payment"
	settingsservice "github.com/tahminci/tahminci-api/internal/services/settings"
	"github.com/tahminci/tahminci-api/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	db *repository.Storage,
	authService *authservice.Service,
	entitlementService *entitlementservice.Service,
	paymentService *paymentservice.Service,
	contentService *contentservice.Service,
	settingsService *settingsservice.Service,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService).ServeHTTP)
		r.Get("/settings", settingsget.New(logger, settingsService).ServeHTTP)
		r.Get("/health", health.New(logger, db).ServeHTTP)

		// Контент доступен и анониму: токен проверяется, если предъявлен,
		// роль из него решает объём выдачи
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalJWTMiddleware(authService, logger))
			r.Get("/predictions", predictionlist.New(logger, contentService).ServeHTTP)
			r.Get("/predictions/{id}", predictionread.New(logger, contentService).ServeHTTP)
			r.Get("/coupons", couponlist.New(logger, contentService).ServeHTTP)
			r.Get("/coupons/{id}", couponread.New(logger, contentService).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/auth/me", me.New(logger, entitlementService).ServeHTTP)
			r.Post("/payments", paymentcreate.New(logger, paymentService).ServeHTTP)
			r.Post("/payments/{id}/receipt", paymentreceipt.New(logger, paymentService).ServeHTTP)
			r.Get("/payments/my", paymentmy.New(logger, paymentService).ServeHTTP)
		})

		// Админские конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RequireAdmin(logger))
			r.Get("/admin/payments", paymentlist.New(logger, paymentService).ServeHTTP)
			r.Post("/admin/payments/{id}/approve", paymentapprove.New(logger, paymentService).ServeHTTP)
			r.Post("/admin/payments/{id}/reject", paymentreject.New(logger, paymentService).ServeHTTP)
			r.Post("/admin/premium/{uid}/extend", extend.New(logger, entitlementService).ServeHTTP)
			r.Post("/admin/premium/{uid}/revoke", revoke.New(logger, entitlementService).ServeHTTP)
			r.Get("/admin/premium/{uid}/status", premiumstatus.New(logger, entitlementService).ServeHTTP)
			r.Get("/admin/premium/stats", premiumstats.New(logger, entitlementService).ServeHTTP)
			r.Put("/admin/settings", settingsupdate.New(logger, settingsService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
