package entitlement

import (
	"context"
	"errors"
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

func (m *RepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) ReconcileIfExpired(ctx context.Context, userUID string) (*models.ReconcileResult, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReconcileResult), args.Error(1)
}

func (m *RepoMock) ExtendPremium(ctx context.Context, userUID string, days int) (*models.User, error) {
	args := m.Called(ctx, userUID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) RevokePremium(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) SweepExpired(ctx context.Context, now time.Time) (int, []string, error) {
	args := m.Called(ctx, now)
	if args.Get(1) == nil {
		return args.Int(0), nil, args.Error(2)
	}
	return args.Int(0), args.Get(1).([]string), args.Error(2)
}

func (m *RepoMock) FindExpiringWithin(ctx context.Context, days int) ([]*models.ExpiringUser, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ExpiringUser), args.Error(1)
}

func (m *RepoMock) PremiumStats(ctx context.Context) (*models.PremiumStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PremiumStats), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_ReconcileIfExpired(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*RepoMock)
		wantDowngraded bool
		wantRole       string
		wantErr        bool
	}{
		{
			name: "истёкший premium понижается",
			setupMock: func(m *RepoMock) {
				m.On("ReconcileIfExpired", mock.Anything, "uid-1").
					Return(&models.ReconcileResult{Downgraded: true, Role: models.RoleNormal}, nil)
			},
			wantDowngraded: true,
			wantRole:       models.RoleNormal,
		},
		{
			name: "действующий premium не затрагивается",
			setupMock: func(m *RepoMock) {
				until := time.Now().AddDate(0, 0, 10)
				m.On("ReconcileIfExpired", mock.Anything, "uid-1").
					Return(&models.ReconcileResult{Downgraded: false, Role: models.RolePremium, PremiumUntil: &until}, nil)
			},
			wantDowngraded: false,
			wantRole:       models.RolePremium,
		},
		{
			name: "ошибка хранилища пробрасывается",
			setupMock: func(m *RepoMock) {
				m.On("ReconcileIfExpired", mock.Anything, "uid-1").
					Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setupMock(repo)
			svc := New(repo, newTestLogger())

			res, err := svc.ReconcileIfExpired(context.Background(), "uid-1")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDowngraded, res.Downgraded)
			assert.Equal(t, tt.wantRole, res.Role)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Extend(t *testing.T) {
	t.Run("неположительное число дней отклоняется без обращения к хранилищу", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, newTestLogger())

		_, err := svc.Extend(context.Background(), "uid-1", 0)
		require.ErrorIs(t, err, models.ErrValidation)

		_, err = svc.Extend(context.Background(), "uid-1", -5)
		require.ErrorIs(t, err, models.ErrValidation)

		repo.AssertNotCalled(t, "ExtendPremium")
	})

	t.Run("успешное продление", func(t *testing.T) {
		until := time.Now().AddDate(0, 0, 30)
		repo := new(RepoMock)
		repo.On("ExtendPremium", mock.Anything, "uid-1", 30).
			Return(&models.User{UID: "uid-1", Role: models.RolePremium, PremiumUntil: &until}, nil)
		svc := New(repo, newTestLogger())

		u, err := svc.Extend(context.Background(), "uid-1", 30)
		require.NoError(t, err)
		assert.Equal(t, models.RolePremium, u.Role)
		repo.AssertExpectations(t)
	})

	t.Run("несуществующий пользователь", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ExtendPremium", mock.Anything, "ghost", 30).
			Return(nil, models.ErrNotFound)
		svc := New(repo, newTestLogger())

		_, err := svc.Extend(context.Background(), "ghost", 30)
		require.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestService_SweepExpired(t *testing.T) {
	repo := new(RepoMock)
	repo.On("SweepExpired", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(2, []string{"uid-1", "uid-2"}, nil)
	svc := New(repo, newTestLogger())

	count, uids, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []string{"uid-1", "uid-2"}, uids)
	repo.AssertExpectations(t)
}

func TestService_ExpiringWithin(t *testing.T) {
	repo := new(RepoMock)
	svc := New(repo, newTestLogger())

	_, err := svc.ExpiringWithin(context.Background(), 0)
	require.ErrorIs(t, err, models.ErrValidation)
	repo.AssertNotCalled(t, "FindExpiringWithin")
}

func TestService_Status(t *testing.T) {
	until := time.Now().AddDate(0, 0, 7)
	repo := new(RepoMock)
	repo.On("ReconcileIfExpired", mock.Anything, "uid-1").
		Return(&models.ReconcileResult{Downgraded: false, Role: models.RolePremium, PremiumUntil: &until}, nil)
	svc := New(repo, newTestLogger())

	st, err := svc.Status(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, models.RolePremium, st.Role)
	assert.True(t, st.IsPremium)
	assert.Equal(t, 7, st.DaysLeft)
}

func TestService_Status_Downgraded(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ReconcileIfExpired", mock.Anything, "uid-2").
		Return(&models.ReconcileResult{Downgraded: true, Role: models.RoleNormal}, nil)
	svc := New(repo, newTestLogger())

	st, err := svc.Status(context.Background(), "uid-2")
	require.NoError(t, err)
	assert.Equal(t, models.RoleNormal, st.Role)
	assert.False(t, st.IsPremium)
	assert.Equal(t, 0, st.DaysLeft)
}
