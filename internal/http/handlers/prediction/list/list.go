// Package list реализует HTTP-обработчик для получения списка прогнозов.
//
// Handler читает параметры фильтрации и страницы из query string, роль —
// из контекста запроса (аноним получает пустую роль). Premium-прогнозы
// для пользователей без действующего premium отдаются без анализа.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tahminci/tahminci-api/internal/http/middlewarectx"
	"github.com/tahminci/tahminci-api/internal/http/response"
	"github.com/tahminci/tahminci-api/internal/lib/sl"
	"github.com/tahminci/tahminci-api/internal/models"
)

// Handler обрабатывает запросы на получение списка прогнозов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка прогнозов.
type Service interface {
	ListPredictions(ctx context.Context, role string, filter models.ContentFilter, limit, offset int) ([]*models.Prediction, int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ParseFilter читает параметры фильтрации контента из query string.
func ParseFilter(r *http.Request) models.ContentFilter {
	var filter models.ContentFilter
	if league := r.URL.Query().Get("league"); league != "" {
		filter.League = &league
	}
	if premium := r.URL.Query().Get("is_premium"); premium != "" {
		if val, err := strconv.ParseBool(premium); err == nil {
			filter.IsPremium = &val
		}
	}
	if status := r.URL.Query().Get("result_status"); status != "" {
		filter.ResultStatus = &status
	}
	return filter
}

// ParsePage читает limit и offset из query string.
func ParsePage(r *http.Request) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}

// ServeHTTP godoc
// @Summary Список прогнозов
// @Description Возвращает страницу прогнозов. Для пользователей без premium анализ в premium-прогнозах скрыт.
// @Tags Predictions
// @Produce  json
// @Param league query string false "Фильтр по лиге"
// @Param is_premium query bool false "Фильтр по premium-признаку"
// @Param result_status query string false "Фильтр по результату"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Список прогнозов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /predictions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.prediction.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	role := middlewarectx.RoleFromContext(r.Context())
	filter := ParseFilter(r)
	limit, offset := ParsePage(r)

	predictions, total, err := h.service.ListPredictions(r.Context(), role, filter, limit, offset)
	if err != nil {
		log.Error("failed to list predictions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list predictions"))
		return
	}

	log.Info("predictions listed", slog.Int("count", len(predictions)), slog.Int("total", total))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"predictions": predictions,
		"total":       total,
	}))
}
