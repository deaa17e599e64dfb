// Package read реализует HTTP-обработчик для получения купона по ID
// вместе с вложенными прогнозами.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tahminci/tahminci-api/internal/http/middlewarectx"
	"github.com/tahminci/tahminci-api/internal/http/response"
	"github.com/tahminci/tahminci-api/internal/lib/sl"
	"github.com/tahminci/tahminci-api/internal/models"
)

// Handler обрабатывает запросы на получение купона по уникальному идентификатору.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения купона.
type Service interface {
	GetCoupon(ctx context.Context, role string, id int) (*models.Coupon, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить купон
// @Description Возвращает купон с прогнозами целиком. Premium-купон доступен только premium-пользователям.
// @Tags Coupons
// @Produce  json
// @Param id path int true "ID купона"
// @Success 200 {object} map[string]any "Купон"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 403 {object} response.Response "Требуется premium"
// @Failure 404 {object} response.ErrorResponse "Купон не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /coupons/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.coupon.read"
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

	role := middlewarectx.RoleFromContext(r.Context())

	coupon, err := h.service.GetCoupon(r.Context(), role, id)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrPremiumRequired):
			log.Info("premium required", slog.Int("coupon_id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.PremiumRequiredError())
		case errors.Is(err, models.ErrNotFound):
			log.Error("coupon not found", slog.Int("coupon_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("coupon not found"))
		default:
			log.Error("failed to read coupon", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not read coupon"))
		}
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"coupon": coupon,
	}))
}
