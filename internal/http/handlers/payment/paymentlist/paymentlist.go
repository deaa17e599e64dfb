// Package paymentlist реализует HTTP-обработчик админского списка
// платёжных заявок с фильтрацией и пагинацией.
package paymentlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tahminci/tahminci-api/internal/http/response"
	"github.com/tahminci/tahminci-api/internal/lib/sl"
	"github.com/tahminci/tahminci-api/internal/models"
)

// Handler обрабатывает запросы админского списка платёжных заявок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка заявок.
type Service interface {
	List(ctx context.Context, filter models.PaymentFilter, limit, offset int) ([]*models.Payment, int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список платёжных заявок
// @Description Возвращает страницу заявок всех пользователей с фильтрацией по статусу и типу пакета. Только для ADMIN.
// @Tags Payments
// @Produce  json
// @Security BearerAuth
// @Param status query string false "Фильтр по статусу (PENDING, APPROVED, REJECTED)"
// @Param package_type query string false "Фильтр по типу пакета (MONTHLY, YEARLY)"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Список заявок"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Требуется роль ADMIN"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/payments [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentlist"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var filter models.PaymentFilter
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = &status
	}
	if packageType := r.URL.Query().Get("package_type"); packageType != "" {
		filter.PackageType = &packageType
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	payments, total, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		log.Error("failed to list payments", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list payments"))
		return
	}

	log.Info("payments listed", slog.Int("count", len(payments)), slog.Int("total", total))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"payments": payments,
		"total":    total,
	}))
}
