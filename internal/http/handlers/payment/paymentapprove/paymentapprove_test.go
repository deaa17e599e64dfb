package paymentapprove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/tahminci/tahminci-api/internal/models"
)

// MockService реализует интерфейс paymentapprove.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Approve(ctx context.Context, id int, adminNote string) (*models.Payment, *models.User, error) {
	args := m.Called(ctx, id, adminNote)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Payment), args.Get(1).(*models.User), args.Error(2)
}

func TestPaymentApproveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	until := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		url            string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное одобрение",
			url:  "/admin/payments/1/approve",
			body: `{"admin_note":"перевод получен"}`,
			setupMock: func(m *MockService) {
				m.On("Approve", mock.Anything, 1, "перевод получен").
					Return(&models.Payment{ID: 1, Status: models.PaymentApproved},
						&models.User{UID: "uid-1", Role: models.RolePremium, PremiumUntil: &until}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"APPROVED"`,
		},
		{
			name: "одобрение без комментария",
			url:  "/admin/payments/1/approve",
			body: ``,
			setupMock: func(m *MockService) {
				m.On("Approve", mock.Anything, 1, "").
					Return(&models.Payment{ID: 1, Status: models.PaymentApproved},
						&models.User{UID: "uid-1", Role: models.RolePremium, PremiumUntil: &until}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"APPROVED"`,
		},
		{
			name: "повторное одобрение возвращает конфликт",
			url:  "/admin/payments/1/approve",
			body: `{}`,
			setupMock: func(m *MockService) {
				m.On("Approve", mock.Anything, 1, "").
					Return(nil, nil, models.ErrConflict)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"payment already resolved"`,
		},
		{
			name: "несуществующая заявка",
			url:  "/admin/payments/42/approve",
			body: `{}`,
			setupMock: func(m *MockService) {
				m.On("Approve", mock.Anything, 42, "").
					Return(nil, nil, models.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"payment not found"`,
		},
		{
			name:           "некорректный id в URL",
			url:            "/admin/payments/abc/approve",
			body:           `{}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"failed to decode id from url"`,
		},
		{
			name: "ошибка сервиса",
			url:  "/admin/payments/1/approve",
			body: `{}`,
			setupMock: func(m *MockService) {
				m.On("Approve", mock.Anything, 1, "").
					Return(nil, nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not approve payment"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, tt.url, strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			idPart := strings.TrimSuffix(strings.TrimPrefix(tt.url, "/admin/payments/"), "/approve")
			rctx.URLParams.Add("id", idPart)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
