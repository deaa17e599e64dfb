package content

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tahminci/tahminci-api/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListPredictions(ctx context.Context, filter models.ContentFilter, limit, offset int) ([]*models.Prediction, int, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Prediction), args.Int(1), args.Error(2)
}

func (m *RepoMock) GetPrediction(ctx context.Context, id int) (*models.Prediction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prediction), args.Error(1)
}

func (m *RepoMock) ListCoupons(ctx context.Context, filter models.ContentFilter, limit, offset int) ([]*models.Coupon, int, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Coupon), args.Int(1), args.Error(2)
}

func (m *RepoMock) GetCoupon(ctx context.Context, id int) (*models.Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Coupon), args.Error(1)
}

// noopCache — кеш, который ничего не хранит.
type noopCache struct{}

func (noopCache) Get(key string, result any) (bool, error)                      { return false, nil }
func (noopCache) Set(key string, value any, expiration time.Duration) error    { return nil }

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func TestService_ListPredictions(t *testing.T) {
	premium := &models.Prediction{ID: 1, IsPremium: true, Analysis: strPtr("подробный разбор")}
	free := &models.Prediction{ID: 2, IsPremium: false, Analysis: strPtr("общий разбор")}

	tests := []struct {
		name             string
		role             string
		wantPremiumBody  bool
	}{
		{name: "аноним получает premium-прогноз без анализа", role: "", wantPremiumBody: false},
		{name: "NORMAL получает premium-прогноз без анализа", role: models.RoleNormal, wantPremiumBody: false},
		{name: "PREMIUM получает прогнозы целиком", role: models.RolePremium, wantPremiumBody: true},
		{name: "ADMIN получает прогнозы целиком", role: models.RoleAdmin, wantPremiumBody: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("ListPredictions", mock.Anything, models.ContentFilter{}, 20, 0).
				Return([]*models.Prediction{
					{ID: premium.ID, IsPremium: true, Analysis: strPtr(*premium.Analysis)},
					{ID: free.ID, IsPremium: false, Analysis: strPtr(*free.Analysis)},
				}, 2, nil)
			svc := New(repo, noopCache{}, newTestLogger())

			got, total, err := svc.ListPredictions(context.Background(), tt.role, models.ContentFilter{}, 20, 0)
			require.NoError(t, err)
			assert.Equal(t, 2, total)

			if tt.wantPremiumBody {
				require.NotNil(t, got[0].Analysis)
			} else {
				assert.Nil(t, got[0].Analysis)
			}
			// Бесплатный прогноз не урезается ни для кого
			require.NotNil(t, got[1].Analysis)
		})
	}
}

func TestService_GetPrediction(t *testing.T) {
	t.Run("premium-прогноз закрыт для NORMAL", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetPrediction", mock.Anything, 1).
			Return(&models.Prediction{ID: 1, IsPremium: true, Analysis: strPtr("разбор")}, nil)
		svc := New(repo, noopCache{}, newTestLogger())

		_, err := svc.GetPrediction(context.Background(), models.RoleNormal, 1)
		require.ErrorIs(t, err, models.ErrPremiumRequired)
	})

	t.Run("premium-прогноз открыт для PREMIUM", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetPrediction", mock.Anything, 1).
			Return(&models.Prediction{ID: 1, IsPremium: true, Analysis: strPtr("разбор")}, nil)
		svc := New(repo, noopCache{}, newTestLogger())

		p, err := svc.GetPrediction(context.Background(), models.RolePremium, 1)
		require.NoError(t, err)
		require.NotNil(t, p.Analysis)
	})

	t.Run("бесплатный прогноз открыт анониму", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetPrediction", mock.Anything, 2).
			Return(&models.Prediction{ID: 2, IsPremium: false}, nil)
		svc := New(repo, noopCache{}, newTestLogger())

		_, err := svc.GetPrediction(context.Background(), "", 2)
		require.NoError(t, err)
	})

	t.Run("несуществующий прогноз", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetPrediction", mock.Anything, 42).Return(nil, models.ErrNotFound)
		svc := New(repo, noopCache{}, newTestLogger())

		_, err := svc.GetPrediction(context.Background(), models.RolePremium, 42)
		require.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestService_ListCoupons(t *testing.T) {
	t.Run("premium-купон урезается вместе с вложенными прогнозами", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ListCoupons", mock.Anything, models.ContentFilter{}, 20, 0).
			Return([]*models.Coupon{
				{
					ID: 1, IsPremium: true, Description: strPtr("описание"),
					Predictions: []*models.Prediction{
						{ID: 10, IsPremium: true, Analysis: strPtr("разбор")},
					},
				},
			}, 1, nil)
		svc := New(repo, noopCache{}, newTestLogger())

		got, _, err := svc.ListCoupons(context.Background(), models.RoleNormal, models.ContentFilter{}, 20, 0)
		require.NoError(t, err)
		assert.Nil(t, got[0].Description)
		assert.Nil(t, got[0].Predictions[0].Analysis)
	})
}

func TestService_GetCoupon(t *testing.T) {
	t.Run("premium-купон закрыт анониму", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetCoupon", mock.Anything, 1).
			Return(&models.Coupon{ID: 1, IsPremium: true}, nil)
		svc := New(repo, noopCache{}, newTestLogger())

		_, err := svc.GetCoupon(context.Background(), "", 1)
		require.ErrorIs(t, err, models.ErrPremiumRequired)
	})

	t.Run("premium-купон открыт ADMIN", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetCoupon", mock.Anything, 1).
			Return(&models.Coupon{ID: 1, IsPremium: true, Description: strPtr("описание")}, nil)
		svc := New(repo, noopCache{}, newTestLogger())

		c, err := svc.GetCoupon(context.Background(), models.RoleAdmin, 1)
		require.NoError(t, err)
		require.NotNil(t, c.Description)
	})
}
