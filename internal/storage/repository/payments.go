package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/tahminci/tahminci-api/internal/models"
)

const paymentColumns = `id, user_uid, amount, package_type, status, receipt_path, admin_note, created_at, updated_at, resolved_at`

func scanPayment(row *sql.Row) (*models.Payment, error) {
	p := &models.Payment{}
	var receiptPath, adminNote sql.NullString
	var resolvedAt sql.NullTime
	if err := row.Scan(&p.ID, &p.UserUID, &p.Amount, &p.PackageType, &p.Status,
		&receiptPath, &adminNote, &p.CreatedAt, &p.UpdatedAt, &resolvedAt); err != nil {
		return nil, err
	}
	if receiptPath.Valid {
		p.ReceiptPath = &receiptPath.String
	}
	if adminNote.Valid {
		p.AdminNote = &adminNote.String
	}
	if resolvedAt.Valid {
		p.ResolvedAt = &resolvedAt.Time
	}
	return p, nil
}

// CreatePayment создаёт новую заявку в статусе PENDING. Частичный уникальный
// индекс по (user_uid) WHERE status='PENDING' гарантирует не более одной
// висящей заявки на пользователя: нарушение транслируется в models.ErrConflict.
func (s *Storage) CreatePayment(ctx context.Context, userUID string, amount float64, packageType string) (*models.Payment, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (user_uid, amount, package_type, status)
			  VALUES ($1, $2, $3, 'PENDING')
			  RETURNING ` + paymentColumns
	p, err := scanPayment(s.DB.QueryRowContext(ctx, query, userUID, amount, packageType))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrConflict)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// GetPayment возвращает заявку по ID.
func (s *Storage) GetPayment(ctx context.Context, id int) (*models.Payment, error) {
	const op = "storage.GetPayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpdateReceiptPath прикрепляет квитанцию к заявке. Обновление обусловлено
// владельцем и статусом PENDING: гонка с решением администратора проявляется
// как ноль затронутых строк и транслируется в models.ErrConflict.
func (s *Storage) UpdateReceiptPath(ctx context.Context, id int, userUID, path string) (*models.Payment, error) {
	const op = "storage.UpdateReceiptPath"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments
			  SET receipt_path = $3, updated_at = NOW()
			  WHERE id = $1 AND user_uid = $2 AND status = 'PENDING'
			  RETURNING ` + paymentColumns
	p, err := scanPayment(s.DB.QueryRowContext(ctx, query, id, userUID, path))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrConflict)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ApprovePayment одобряет заявку и продлевает premium-доступ её владельца
// в одной транзакции: либо фиксируются обе записи, либо ни одна.
// Перевод статуса обусловлен PENDING, поэтому из двух конкурентных
// одобрений успешно завершается ровно одно, второе получает ErrConflict,
// а срок продлевается ровно один раз.
func (s *Storage) ApprovePayment(ctx context.Context, id int, adminNote string, days int) (*models.Payment, *models.User, error) {
	const op = "storage.ApprovePayment"
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	approveQuery := `UPDATE payments
			  SET status = 'APPROVED', admin_note = $2, updated_at = NOW(), resolved_at = NOW()
			  WHERE id = $1 AND status = 'PENDING'
			  RETURNING ` + paymentColumns
	p, err := scanPayment(tx.QueryRowContext(ctx, approveQuery, id, adminNote))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("%s: %w", op, s.resolveMissingPayment(ctx, id))
		}
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	u, err := scanUser(tx.QueryRowContext(ctx, extendPremiumQuery, p.UserUID, days))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, u, nil
}

// RejectPayment отклоняет заявку. Побочных эффектов на premium-доступ нет.
func (s *Storage) RejectPayment(ctx context.Context, id int, adminNote string) (*models.Payment, error) {
	const op = "storage.RejectPayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments
			  SET status = 'REJECTED', admin_note = $2, updated_at = NOW(), resolved_at = NOW()
			  WHERE id = $1 AND status = 'PENDING'
			  RETURNING ` + paymentColumns
	p, err := scanPayment(s.DB.QueryRowContext(ctx, query, id, adminNote))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, s.resolveMissingPayment(ctx, id))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// resolveMissingPayment различает отсутствующую заявку и заявку,
// по которой решение уже принято.
func (s *Storage) resolveMissingPayment(ctx context.Context, id int) error {
	var exists bool
	if err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return models.ErrNotFound
	}
	return models.ErrConflict
}

// ListPayments возвращает страницу платёжных заявок с email владельца
// и общее число записей под фильтром. Используется в админской выборке.
func (s *Storage) ListPayments(ctx context.Context, filter models.PaymentFilter, limit, offset int) ([]*models.Payment, int, error) {
	const op = "storage.ListPayments"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	where := " WHERE 1=1"
	args := []any{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += " AND p.status = $" + strconv.Itoa(len(args))
	}
	if filter.PackageType != nil {
		args = append(args, *filter.PackageType)
		where += " AND p.package_type = $" + strconv.Itoa(len(args))
	}

	countQuery := `SELECT COUNT(*) FROM payments p` + where
	var total int
	if err := s.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	args = append(args, limit, offset)
	query := `SELECT p.id, p.user_uid, u.email, p.amount, p.package_type, p.status,
			      p.receipt_path, p.admin_note, p.created_at, p.updated_at, p.resolved_at
			  FROM payments p
			  JOIN users u ON u.uid = p.user_uid` + where + `
			  ORDER BY p.created_at DESC
			  LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		p := &models.Payment{}
		var receiptPath, adminNote sql.NullString
		var resolvedAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.UserUID, &p.UserEmail, &p.Amount, &p.PackageType,
			&p.Status, &receiptPath, &adminNote, &p.CreatedAt, &p.UpdatedAt, &resolvedAt); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		if receiptPath.Valid {
			p.ReceiptPath = &receiptPath.String
		}
		if adminNote.Valid {
			p.AdminNote = &adminNote.String
		}
		if resolvedAt.Valid {
			p.ResolvedAt = &resolvedAt.Time
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

// ListUserPayments возвращает все заявки пользователя, новые первыми.
func (s *Storage) ListUserPayments(ctx context.Context, userUID string) ([]*models.Payment, error) {
	const op = "storage.ListUserPayments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + paymentColumns + `
			  FROM payments
			  WHERE user_uid = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		p := &models.Payment{}
		var receiptPath, adminNote sql.NullString
		var resolvedAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.UserUID, &p.Amount, &p.PackageType, &p.Status,
			&receiptPath, &adminNote, &p.CreatedAt, &p.UpdatedAt, &resolvedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if receiptPath.Valid {
			p.ReceiptPath = &receiptPath.String
		}
		if adminNote.Valid {
			p.AdminNote = &adminNote.String
		}
		if resolvedAt.Valid {
			p.ResolvedAt = &resolvedAt.Time
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
