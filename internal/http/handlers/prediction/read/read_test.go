package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/tahminci/tahminci-api/internal/http/middlewarectx"
	"github.com/tahminci/tahminci-api/internal/models"
)

// MockService реализует интерфейс read.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) GetPrediction(ctx context.Context, role string, id int) (*models.Prediction, error) {
	args := m.Called(ctx, role, id)
	if res := args.Get(0); res != nil {
		return res.(*models.Prediction), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	analysis := "подробный разбор матча"

	tests := []struct {
		name           string
		url            string
		role           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "premium-пользователь читает premium-прогноз",
			url:  "/predictions/123",
			role: models.RolePremium,
			setupMock: func(m *MockService) {
				prediction := &models.Prediction{
					ID:        123,
					HomeTeam:  "Galatasaray",
					AwayTeam:  "Fenerbahçe",
					IsPremium: true,
					Analysis:  &analysis,
				}
				m.On("GetPrediction", mock.Anything, models.RolePremium, 123).Return(prediction, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"home_team":"Galatasaray"`,
		},
		{
			name: "NORMAL получает отказ с флагом premium_required",
			url:  "/predictions/123",
			role: models.RoleNormal,
			setupMock: func(m *MockService) {
				m.On("GetPrediction", mock.Anything, models.RoleNormal, 123).
					Return(nil, models.ErrPremiumRequired)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"premium_required":true`,
		},
		{
			name: "несуществующий прогноз",
			url:  "/predictions/42",
			role: models.RolePremium,
			setupMock: func(m *MockService) {
				m.On("GetPrediction", mock.Anything, models.RolePremium, 42).
					Return(nil, models.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"prediction not found"`,
		},
		{
			name:           "некорректный id в URL",
			url:            "/predictions/abc",
			role:           "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"failed to decode id from url"`,
		},
		{
			name: "ошибка сервиса чтения",
			url:  "/predictions/777",
			role: "",
			setupMock: func(m *MockService) {
				m.On("GetPrediction", mock.Anything, "", 777).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not read prediction"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", strings.TrimPrefix(tt.url, "/predictions/"))
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.role != "" {
				ctx = context.WithValue(ctx, middlewarectx.Role, tt.role)
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
