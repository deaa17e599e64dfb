// Package paymentapprove реализует HTTP-обработчик одобрения платёжной
// заявки администратором.
//
// Одобрение и продление premium выполняются одной транзакцией: заявка
// не может оказаться APPROVED без начисленного срока. Повторное
// одобрение той же заявки возвращает 409.
package paymentapprove

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tahminci/tahminci-api/internal/http/response"
	"github.com/tahminci/tahminci-api/internal/lib/sl"
	"github.com/tahminci/tahminci-api/internal/models"
)

// Handler управляет HTTP-запросами на одобрение заявок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики одобрения заявки.
type Service interface {
	Approve(ctx context.Context, id int, adminNote string) (*models.Payment, *models.User, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Одобрить платёжную заявку
// @Description Переводит PENDING-заявку в APPROVED и в той же транзакции продлевает premium на срок пакета. Только для ADMIN.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID заявки"
// @Param request body models.DummyResolve false "Комментарий администратора"
// @Success 200 {object} map[string]any "Заявка и обновлённый пользователь"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 403 {object} response.ErrorResponse "Требуется роль ADMIN"
// @Failure 404 {object} response.ErrorResponse "Заявка не найдена"
// @Failure 409 {object} response.ErrorResponse "Заявка уже закрыта"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/payments/{id}/approve [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentapprove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	// Комментарий администратора необязателен, пустое тело допустимо.
	var req models.DummyResolve
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	payment, user, err := h.service.Approve(r.Context(), id, req.AdminNote)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			log.Error("payment not found", slog.Int("payment_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("payment not found"))
		case errors.Is(err, models.ErrConflict):
			log.Error("payment already resolved", slog.Int("payment_id", id))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("payment already resolved"))
		default:
			log.Error("failed to approve payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not approve payment"))
		}
		return
	}

	log.Info("payment approved",
		slog.Int("payment_id", id),
		slog.String("user_uid", user.UID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"payment": payment,
		"user": map[string]any{
			"uid":           user.UID,
			"role":          user.Role,
			"premium_until": user.PremiumUntil,
		},
	}))
}
