package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tahminci/tahminci-api/internal/models"
)

// userColumns список колонок пользователя в порядке, ожидаемом scanUser.
const userColumns = `uid, email, password_hash, role, premium_until, is_active, created_at, updated_at`

// extendPremiumQuery единственная точка записи формулы продления:
// новый срок = max(текущий срок, now) + дни. Истекший или отсутствующий
// срок продлевается от текущего момента, неистекший — складывается.
const extendPremiumQuery = `
	UPDATE users
	SET role = 'PREMIUM',
	    premium_until = GREATEST(COALESCE(premium_until, NOW()), NOW()) + make_interval(days => $2),
	    updated_at = NOW()
	WHERE uid = $1
	RETURNING ` + userColumns

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var premiumUntil sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &u.PasswordHash, &u.Role,
		&premiumUntil, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if premiumUntil.Valid {
		u.PremiumUntil = &premiumUntil.Time
	}
	return u, nil
}

// RegisterUser сохраняет нового пользователя и возвращает его UID.
// Повторный email приводит к models.ErrConflict.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO users (email, password_hash, role)
			  VALUES ($1, $2, $3)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.Role).Scan(&newID); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, models.ErrConflict)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1 AND is_active = true`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по его email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND is_active = true`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ReconcileIfExpired понижает PREMIUM-пользователя с истекшим (или отсутствующим)
// сроком до NORMAL. Понижение обусловлено текущим сохранённым состоянием,
// поэтому конкурентные вызовы безопасны: условию соответствует только первый,
// остальные видят уже пониженную запись и сообщают Downgraded=false.
func (s *Storage) ReconcileIfExpired(ctx context.Context, userUID string) (*models.ReconcileResult, error) {
	const op = "storage.ReconcileIfExpired"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET role = 'NORMAL', premium_until = NULL, updated_at = NOW()
			  WHERE uid = $1
			    AND role = 'PREMIUM'
			    AND (premium_until IS NULL OR premium_until < NOW())`
	res, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if affected > 0 {
		return &models.ReconcileResult{
			Downgraded: true,
			Role:       models.RoleNormal,
		}, nil
	}

	u, err := s.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.ReconcileResult{
		Downgraded:   false,
		Role:         u.Role,
		PremiumUntil: u.PremiumUntil,
	}, nil
}

// ExtendPremium продлевает premium-доступ пользователя на заданное число дней
// и устанавливает роль PREMIUM одним оператором.
func (s *Storage) ExtendPremium(ctx context.Context, userUID string, days int) (*models.User, error) {
	const op = "storage.ExtendPremium"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	u, err := scanUser(s.DB.QueryRowContext(ctx, extendPremiumQuery, userUID, days))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// RevokePremium безусловно снимает premium-доступ: роль NORMAL, срок NULL.
func (s *Storage) RevokePremium(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.RevokePremium"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET role = 'NORMAL', premium_until = NULL, updated_at = NOW()
			  WHERE uid = $1
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// SweepExpired пакетно понижает всех PREMIUM-пользователей с истекшим сроком.
// Операция идемпотентна: повторный запуск без изменений состояния
// не затрагивает ни одной строки.
func (s *Storage) SweepExpired(ctx context.Context, now time.Time) (int, []string, error) {
	const op = "storage.SweepExpired"
	select {
	case <-ctx.Done():
		return 0, nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET role = 'NORMAL', premium_until = NULL, updated_at = NOW()
			  WHERE role = 'PREMIUM'
			    AND (premium_until IS NULL OR premium_until < $1)
			  RETURNING uid`
	rows, err := s.DB.QueryContext(ctx, query, now)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var uids []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return 0, nil, fmt.Errorf("%s: %w", op, err)
		}
		uids = append(uids, uid)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("%s: %w", op, err)
	}
	return len(uids), uids, nil
}

// FindExpiringWithin возвращает premium-пользователей, чей срок истекает
// в ближайшие days дней. Запрос только читает: понижением занимается sweep.
func (s *Storage) FindExpiringWithin(ctx context.Context, days int) ([]*models.ExpiringUser, error) {
	const op = "storage.FindExpiringWithin"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, premium_until
			  FROM users
			  WHERE role = 'PREMIUM'
			    AND premium_until >= NOW()
			    AND premium_until <= NOW() + make_interval(days => $1)
			  ORDER BY premium_until`
	rows, err := s.DB.QueryContext(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ExpiringUser
	for rows.Next() {
		var eu models.ExpiringUser
		if err := rows.Scan(&eu.UID, &eu.Email, &eu.PremiumUntil); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &eu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// PremiumStats собирает сводную статистику по premium-пользователям и платежам.
func (s *Storage) PremiumStats(ctx context.Context) (*models.PremiumStats, error) {
	const op = "storage.PremiumStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	stats := &models.PremiumStats{}

	usersQuery := `SELECT
			  COUNT(*) FILTER (WHERE premium_until > NOW()),
			  COUNT(*) FILTER (WHERE premium_until IS NULL OR premium_until < NOW()),
			  COUNT(*) FILTER (WHERE premium_until >= NOW() AND premium_until <= NOW() + INTERVAL '7 days')
		  FROM users
		  WHERE role = 'PREMIUM'`
	if err := s.DB.QueryRowContext(ctx, usersQuery).Scan(
		&stats.ActivePremiumUsers, &stats.ExpiredPremiumUsers, &stats.ExpiringSoonUsers); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	paymentsQuery := `SELECT
			  COUNT(*),
			  COUNT(*) FILTER (WHERE status = 'APPROVED'),
			  COUNT(*) FILTER (WHERE status = 'PENDING'),
			  COALESCE(SUM(amount) FILTER (WHERE status = 'APPROVED'), 0)
		  FROM payments`
	if err := s.DB.QueryRowContext(ctx, paymentsQuery).Scan(
		&stats.TotalPayments, &stats.ApprovedPayments, &stats.PendingPayments,
		&stats.TotalRevenue); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}
