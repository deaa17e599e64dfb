// Package list реализует HTTP-обработчик для получения списка купонов.
//
// Premium-купоны для пользователей без действующего premium отдаются
// без описания и без анализа вложенных прогнозов.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	predlist "github.com/tahminci/tahminci-api/internal/http/handlers/prediction/list"
	"github.com/tahminci/tahminci-api/internal/http/middlewarectx"
	"github.com/tahminci/tahminci-api/internal/http/response"
	"github.com/tahminci/tahminci-api/internal/lib/sl"
	"github.com/tahminci/tahminci-api/internal/models"
)

// Handler обрабатывает запросы на получение списка купонов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка купонов.
type Service interface {
	ListCoupons(ctx context.Context, role string, filter models.ContentFilter, limit, offset int) ([]*models.Coupon, int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список купонов
// @Description Возвращает страницу купонов. Для пользователей без premium платные поля скрыты.
// @Tags Coupons
// @Produce  json
// @Param is_premium query bool false "Фильтр по premium-признаку"
// @Param result_status query string false "Фильтр по результату"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Список купонов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /coupons [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.coupon.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	role := middlewarectx.RoleFromContext(r.Context())
	filter := predlist.ParseFilter(r)
	limit, offset := predlist.ParsePage(r)

	coupons, total, err := h.service.ListCoupons(r.Context(), role, filter, limit, offset)
	if err != nil {
		log.Error("failed to list coupons", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list coupons"))
		return
	}

	log.Info("coupons listed", slog.Int("count", len(coupons)), slog.Int("total", total))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"coupons": coupons,
		"total":   total,
	}))
}
