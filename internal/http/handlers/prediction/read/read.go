// Package read реализует HTTP-обработчик для получения прогноза по ID.
//
// Premium-прогноз в детальном просмотре доступен только пользователям
// с ролью PREMIUM или ADMIN; остальным возвращается 403 с флагом
// premium_required.
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

// Handler обрабатывает запросы на получение прогноза по уникальному идентификатору.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения прогноза.
type Service interface {
	GetPrediction(ctx context.Context, role string, id int) (*models.Prediction, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить прогноз
// @Description Возвращает прогноз целиком. Premium-прогноз доступен только premium-пользователям.
// @Tags Predictions
// @Produce  json
// @Param id path int true "ID прогноза"
// @Success 200 {object} map[string]any "Прогноз"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 403 {object} response.Response "Требуется premium"
// @Failure 404 {object} response.ErrorResponse "Прогноз не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /predictions/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.prediction.read"
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

	prediction, err := h.service.GetPrediction(r.Context(), role, id)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrPremiumRequired):
			log.Info("premium required", slog.Int("prediction_id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.PremiumRequiredError())
		case errors.Is(err, models.ErrNotFound):
			log.Error("prediction not found", slog.Int("prediction_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("prediction not found"))
		default:
			log.Error("failed to read prediction", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not read prediction"))
		}
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"prediction": prediction,
	}))
}
