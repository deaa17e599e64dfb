package extend

import (
	"context"
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

// MockService реализует интерфейс extend.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Extend(ctx context.Context, userUID string, days int) (*models.User, error) {
	args := m.Called(ctx, userUID, days)
	if res := args.Get(0); res != nil {
		return res.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestExtendHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	until := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		uid            string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное продление",
			uid:  "uid-1",
			body: `{"days":30}`,
			setupMock: func(m *MockService) {
				m.On("Extend", mock.Anything, "uid-1", 30).
					Return(&models.User{UID: "uid-1", Role: models.RolePremium, PremiumUntil: &until}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"role":"PREMIUM"`,
		},
		{
			name:           "некорректный JSON",
			uid:            "uid-1",
			body:           `not a json`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "нулевое число дней не проходит валидацию",
			uid:            "uid-1",
			body:           `{"days":0}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"status":"Error"`,
		},
		{
			name: "несуществующий пользователь",
			uid:  "ghost",
			body: `{"days":30}`,
			setupMock: func(m *MockService) {
				m.On("Extend", mock.Anything, "ghost", 30).
					Return(nil, models.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"user not found"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/admin/premium/"+tt.uid+"/extend", strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("uid", tt.uid)
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
