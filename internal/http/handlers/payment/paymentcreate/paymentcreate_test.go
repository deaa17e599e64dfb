package paymentcreate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/tahminci/tahminci-api/internal/http/middlewarectx"
	"github.com/tahminci/tahminci-api/internal/models"
)

// MockService реализует интерфейс paymentcreate.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) CreateRequest(ctx context.Context, userUID string, req models.DummyPayment) (*models.Payment, error) {
	args := m.Called(ctx, userUID, req)
	if res := args.Get(0); res != nil {
		return res.(*models.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestPaymentCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешное создание заявки",
			body:    `{"amount":50.0,"package_type":"MONTHLY"}`,
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("CreateRequest", mock.Anything, "uid-1",
					models.DummyPayment{Amount: 50.0, PackageType: models.PackageMonthly}).
					Return(&models.Payment{ID: 1, UserUID: "uid-1", Status: models.PaymentPending}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"PENDING"`,
		},
		{
			name:           "некорректный JSON",
			body:           `not a json`,
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "отрицательная сумма не проходит валидацию",
			body:           `{"amount":-5,"package_type":"MONTHLY"}`,
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"status":"Error"`,
		},
		{
			name:           "неизвестный тип пакета не проходит валидацию",
			body:           `{"amount":50,"package_type":"WEEKLY"}`,
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"status":"Error"`,
		},
		{
			name:           "запрос без пользователя в контексте",
			body:           `{"amount":50,"package_type":"MONTHLY"}`,
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:    "вторая незакрытая заявка",
			body:    `{"amount":50,"package_type":"MONTHLY"}`,
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("CreateRequest", mock.Anything, "uid-1", mock.Anything).
					Return(nil, models.ErrConflict)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"pending payment already exists"`,
		},
		{
			name:    "ошибка сервиса",
			body:    `{"amount":50,"package_type":"MONTHLY"}`,
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("CreateRequest", mock.Anything, "uid-1", mock.Anything).
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not create payment"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(tt.body))
			if tt.userUID != "" {
				ctx := context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID)
				req = req.WithContext(ctx)
			}

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
