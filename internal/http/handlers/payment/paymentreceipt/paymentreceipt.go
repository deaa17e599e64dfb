// Package paymentreceipt реализует HTTP-обработчик загрузки квитанции
// о банковском переводе к платёжной заявке.
//
// Файл принимается как multipart/form-data в поле receipt. Повторная
// загрузка к той же PENDING-заявке замещает прежний файл.
package paymentreceipt

import (
	"context"
	"errors"
	"io"
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

// Максимальный размер загружаемой квитанции.
const maxReceiptSize = 10 << 20

// Handler управляет HTTP-запросами на загрузку квитанций.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики прикрепления квитанции.
type Service interface {
	AttachReceipt(ctx context.Context, id int, userUID string, file io.Reader, originalName string) (*models.Payment, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Загрузить квитанцию
// @Description Прикрепляет файл квитанции (jpg, png, pdf) к своей PENDING-заявке. Повторная загрузка замещает файл.
// @Tags Payments
// @Accept  multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID заявки"
// @Param receipt formData file true "Файл квитанции"
// @Success 200 {object} map[string]any "Обновлённая заявка"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Чужая заявка"
// @Failure 404 {object} response.ErrorResponse "Заявка не найдена или уже закрыта"
// @Failure 409 {object} response.ErrorResponse "Заявка закрыта во время загрузки"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payments/{id}/receipt [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentreceipt"
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

	userUID, ok := middlewarectx.UserUIDFromContext(r.Context())
	if !ok {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptSize)
	file, header, err := r.FormFile("receipt")
	if err != nil {
		log.Error("failed to read receipt file", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("receipt file is required"))
		return
	}
	defer file.Close()

	payment, err := h.service.AttachReceipt(r.Context(), id, userUID, file, header.Filename)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrForbidden):
			log.Error("foreign payment", slog.Int("payment_id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("payment belongs to another user"))
		case errors.Is(err, models.ErrNotFound):
			log.Error("payment not found", slog.Int("payment_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("payment not found"))
		case errors.Is(err, models.ErrConflict):
			log.Error("payment already resolved", slog.Int("payment_id", id))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("payment already resolved"))
		case errors.Is(err, models.ErrValidation):
			log.Error("unsupported receipt file", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("unsupported receipt file type"))
		default:
			log.Error("failed to attach receipt", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not attach receipt"))
		}
		return
	}

	log.Info("receipt attached", slog.Int("payment_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"payment": payment,
	}))
}
