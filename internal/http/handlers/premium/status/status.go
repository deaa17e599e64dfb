// Package status реализует HTTP-обработчик для просмотра premium-статуса
// произвольного пользователя администратором. Перед ответом срок
// сверяется с хранилищем.
package status

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tahminci/tahminci-api/internal/http/response"
	"github.com/tahminci/tahminci-api/internal/lib/sl"
	"github.com/tahminci/tahminci-api/internal/models"
	"github.com/tahminci/tahminci-api/internal/services/entitlement"
)

// Handler обрабатывает запросы на просмотр premium-статуса пользователя.
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
// @Summary Premium-статус пользователя
// @Description Возвращает актуальную роль и срок premium пользователя. Только для ADMIN.
// @Tags Premium
// @Produce  json
// @Security BearerAuth
// @Param uid path string true "UID пользователя"
// @Success 200 {object} map[string]any "Статус пользователя"
// @Failure 403 {object} response.ErrorResponse "Требуется роль ADMIN"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/premium/{uid}/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.premium.status"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "uid")

	status, err := h.service.Status(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Error("user not found", slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to get premium status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get status"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": status,
	}))
}
