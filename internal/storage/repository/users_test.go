package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahminci/tahminci-api/internal/models"
	"github.com/tahminci/tahminci-api/internal/services/entitlement"
)

func TestStorage_RegisterUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("успешная регистрация пользователя", func(t *testing.T) {
		uid, err := storage.RegisterUser(ctx, models.User{
			Email:        "new@example.com",
			PasswordHash: "hashedpassword",
			Role:         models.RoleNormal,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, uid)

		got, err := storage.GetUser(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", got.Email)
		assert.Equal(t, models.RoleNormal, got.Role)
		assert.Nil(t, got.PremiumUntil)
	})

	t.Run("повторный email возвращает конфликт", func(t *testing.T) {
		_, err := storage.RegisterUser(ctx, models.User{
			Email:        "new@example.com",
			PasswordHash: "otherhash",
			Role:         models.RoleNormal,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrConflict)
	})
}

func TestStorage_ReconcileIfExpired(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	t.Run("истекший premium понижается до NORMAL", func(t *testing.T) {
		expired := time.Now().Add(-24 * time.Hour)
		uid := factory.CreateUser(t, "expired@example.com", models.RolePremium, &expired)

		res, err := storage.ReconcileIfExpired(ctx, uid)
		require.NoError(t, err)
		assert.True(t, res.Downgraded)
		assert.Equal(t, models.RoleNormal, res.Role)
		factory.VerifyUserRole(t, uid, models.RoleNormal)
	})

	t.Run("повторная сверка не понижает второй раз", func(t *testing.T) {
		expired := time.Now().Add(-time.Hour)
		uid := factory.CreateUser(t, "twice@example.com", models.RolePremium, &expired)

		first, err := storage.ReconcileIfExpired(ctx, uid)
		require.NoError(t, err)
		assert.True(t, first.Downgraded)

		second, err := storage.ReconcileIfExpired(ctx, uid)
		require.NoError(t, err)
		assert.False(t, second.Downgraded)
		assert.Equal(t, models.RoleNormal, second.Role)
	})

	t.Run("действующий premium не затрагивается", func(t *testing.T) {
		future := time.Now().Add(72 * time.Hour)
		uid := factory.CreateUser(t, "active@example.com", models.RolePremium, &future)

		res, err := storage.ReconcileIfExpired(ctx, uid)
		require.NoError(t, err)
		assert.False(t, res.Downgraded)
		assert.Equal(t, models.RolePremium, res.Role)
		require.NotNil(t, res.PremiumUntil)
		factory.VerifyUserRole(t, uid, models.RolePremium)
	})

	t.Run("ADMIN не понижается даже без срока", func(t *testing.T) {
		uid := factory.CreateUser(t, "admin@example.com", models.RoleAdmin, nil)

		res, err := storage.ReconcileIfExpired(ctx, uid)
		require.NoError(t, err)
		assert.False(t, res.Downgraded)
		assert.Equal(t, models.RoleAdmin, res.Role)
	})
}

func TestStorage_ExtendPremium(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	t.Run("продление NORMAL-пользователя отсчитывается от текущего момента", func(t *testing.T) {
		uid := factory.CreateUser(t, "normal@example.com", models.RoleNormal, nil)

		u, err := storage.ExtendPremium(ctx, uid, 30)
		require.NoError(t, err)
		assert.Equal(t, models.RolePremium, u.Role)
		require.NotNil(t, u.PremiumUntil)
		expected := time.Now().AddDate(0, 0, 30)
		assert.WithinDuration(t, expected, *u.PremiumUntil, time.Minute)
	})

	t.Run("продление действующего premium складывает сроки", func(t *testing.T) {
		current := time.Now().Add(10 * 24 * time.Hour)
		uid := factory.CreateUser(t, "stacking@example.com", models.RolePremium, &current)

		u, err := storage.ExtendPremium(ctx, uid, 30)
		require.NoError(t, err)
		require.NotNil(t, u.PremiumUntil)
		assert.WithinDuration(t, current.AddDate(0, 0, 30), *u.PremiumUntil, time.Minute)
	})

	t.Run("продление истекшего premium отсчитывается от текущего момента", func(t *testing.T) {
		expired := time.Now().Add(-30 * 24 * time.Hour)
		uid := factory.CreateUser(t, "lapsed@example.com", models.RolePremium, &expired)

		u, err := storage.ExtendPremium(ctx, uid, 30)
		require.NoError(t, err)
		require.NotNil(t, u.PremiumUntil)
		assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), *u.PremiumUntil, time.Minute)
	})

	t.Run("несуществующий пользователь", func(t *testing.T) {
		_, err := storage.ExtendPremium(ctx, "00000000-0000-0000-0000-000000000000", 30)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("SQL-формула совпадает с расчётом entitlement.Extend", func(t *testing.T) {
		stacking := time.Now().Add(5 * 24 * time.Hour)
		lapsed := time.Now().Add(-5 * 24 * time.Hour)
		cases := []struct {
			name    string
			email   string
			role    string
			current *time.Time
		}{
			{"действующий срок", "formula1@example.com", models.RolePremium, &stacking},
			{"истекший срок", "formula2@example.com", models.RolePremium, &lapsed},
			{"без срока", "formula3@example.com", models.RoleNormal, nil},
		}
		for _, tc := range cases {
			uid := factory.CreateUser(t, tc.email, tc.role, tc.current)

			want := entitlement.Extend(tc.current, 14, time.Now())
			u, err := storage.ExtendPremium(ctx, uid, 14)
			require.NoError(t, err, tc.name)
			require.NotNil(t, u.PremiumUntil, tc.name)
			assert.WithinDuration(t, want, *u.PremiumUntil, time.Minute, tc.name)
		}
	})
}

func TestStorage_RevokePremium(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	t.Run("отзыв действующего premium", func(t *testing.T) {
		future := time.Now().Add(72 * time.Hour)
		uid := factory.CreateUser(t, "revoke@example.com", models.RolePremium, &future)

		u, err := storage.RevokePremium(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, models.RoleNormal, u.Role)
		assert.Nil(t, u.PremiumUntil)
	})

	t.Run("несуществующий пользователь", func(t *testing.T) {
		_, err := storage.RevokePremium(ctx, "00000000-0000-0000-0000-000000000000")
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestStorage_SweepExpired(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	expired1 := time.Now().Add(-48 * time.Hour)
	expired2 := time.Now().Add(-time.Minute)
	active := time.Now().Add(72 * time.Hour)

	uidExpired1 := factory.CreateUser(t, "sweep1@example.com", models.RolePremium, &expired1)
	uidExpired2 := factory.CreateUser(t, "sweep2@example.com", models.RolePremium, &expired2)
	uidActive := factory.CreateUser(t, "sweep3@example.com", models.RolePremium, &active)
	factory.CreateUser(t, "sweep4@example.com", models.RoleNormal, nil)

	t.Run("понижаются только истекшие premium", func(t *testing.T) {
		count, uids, err := storage.SweepExpired(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.ElementsMatch(t, []string{uidExpired1, uidExpired2}, uids)

		factory.VerifyUserRole(t, uidExpired1, models.RoleNormal)
		factory.VerifyUserRole(t, uidExpired2, models.RoleNormal)
		factory.VerifyUserRole(t, uidActive, models.RolePremium)
	})

	t.Run("повторный запуск идемпотентен", func(t *testing.T) {
		count, uids, err := storage.SweepExpired(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, 0, count)
		assert.Empty(t, uids)
	})
}

func TestStorage_FindExpiringWithin(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	inThreeDays := time.Now().Add(3 * 24 * time.Hour)
	inTenDays := time.Now().Add(10 * 24 * time.Hour)
	expired := time.Now().Add(-24 * time.Hour)

	uidSoon := factory.CreateUser(t, "soon@example.com", models.RolePremium, &inThreeDays)
	factory.CreateUser(t, "later@example.com", models.RolePremium, &inTenDays)
	factory.CreateUser(t, "gone@example.com", models.RolePremium, &expired)

	users, err := storage.FindExpiringWithin(ctx, 7)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, uidSoon, users[0].UID)
	assert.Equal(t, "soon@example.com", users[0].Email)
}

func TestStorage_PremiumStats(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	active := time.Now().Add(30 * 24 * time.Hour)
	soon := time.Now().Add(2 * 24 * time.Hour)
	expired := time.Now().Add(-24 * time.Hour)

	uidActive := factory.CreateUser(t, "stats1@example.com", models.RolePremium, &active)
	factory.CreateUser(t, "stats2@example.com", models.RolePremium, &soon)
	factory.CreateUser(t, "stats3@example.com", models.RolePremium, &expired)

	factory.CreatePayment(t, uidActive, 299.0, models.PackageMonthly, models.PaymentApproved)
	factory.CreatePayment(t, uidActive, 2499.0, models.PackageYearly, models.PaymentPending)

	stats, err := storage.PremiumStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ActivePremiumUsers)
	assert.Equal(t, 1, stats.ExpiredPremiumUsers)
	assert.Equal(t, 1, stats.ExpiringSoonUsers)
	assert.Equal(t, 2, stats.TotalPayments)
	assert.Equal(t, 1, stats.ApprovedPayments)
	assert.Equal(t, 1, stats.PendingPayments)
	assert.InDelta(t, 299.0, stats.TotalRevenue, 0.001)
}
