// Package settingsget реализует HTTP-обработчик для получения настроек
// сайта: цен пакетов и банковских реквизитов для перевода.
//
// Эндпоинт публичный: реквизиты нужны пользователю до оплаты.
package settingsget

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tahminci/tahminci-api/internal/http/response"
	"github.com/tahminci/tahminci-api/internal/lib/sl"
	"github.com/tahminci/tahminci-api/internal/models"
)

// Handler обрабатывает запросы на получение настроек сайта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики настроек.
type Service interface {
	Get(ctx context.Context) (*models.SiteSettings, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Настройки сайта
// @Description Возвращает цены пакетов, длительности и реквизиты для банковского перевода.
// @Tags Settings
// @Produce  json
// @Success 200 {object} map[string]any "Настройки сайта"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /settings [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.settings.settingsget"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	settings, err := h.service.Get(r.Context())
	if err != nil {
		log.Error("failed to get settings", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get settings"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"settings": settings,
	}))
}
