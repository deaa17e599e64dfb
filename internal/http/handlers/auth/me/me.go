// Package me реализует HTTP-обработчик для получения статуса текущего
// пользователя: роли, срока premium и числа оставшихся дней.
package me

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tahminci/tahminci-api/internal/http/middlewarectx"
	"github.com/tahminci/tahminci-api/internal/http/response"
	"github.com/tahminci/tahminci-api/internal/lib/sl"
	"github.com/tahminci/tahminci-api/internal/services/entitlement"
)

// Handler обрабатывает запросы на получение статуса текущего пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики статуса premium.
type Service interface {
	Status(ctx context.Context, userUID string) (*entitlement.Status, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статус текущего пользователя
// @Description Возвращает актуальную роль, срок premium и число оставшихся дней. Перед ответом срок сверяется с хранилищем.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Статус пользователя"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := middlewarectx.UserUIDFromContext(r.Context())
	if !ok {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	status, err := h.service.Status(r.Context(), userUID)
	if err != nil {
		log.Error("failed to get premium status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get status"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": status,
	}))
}
