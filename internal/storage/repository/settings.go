package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tahminci/tahminci-api/internal/models"
)

const settingsColumns = `id, monthly_price, yearly_price, monthly_days, yearly_days,
	      bank_name, iban_number, account_name, branch_name, is_active, updated_at`

func scanSettings(row *sql.Row) (*models.SiteSettings, error) {
	st := &models.SiteSettings{}
	if err := row.Scan(&st.ID, &st.MonthlyPrice, &st.YearlyPrice, &st.MonthlyDays,
		&st.YearlyDays, &st.BankName, &st.IbanNumber, &st.AccountName,
		&st.BranchName, &st.IsActive, &st.UpdatedAt); err != nil {
		return nil, err
	}
	return st, nil
}

// GetActiveSettings возвращает активную запись настроек сайта.
// При отсутствии запись создаётся лениво со значениями по умолчанию.
func (s *Storage) GetActiveSettings(ctx context.Context) (*models.SiteSettings, error) {
	const op = "storage.GetActiveSettings"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + settingsColumns + ` FROM site_settings WHERE is_active = true LIMIT 1`
	st, err := scanSettings(s.DB.QueryRowContext(ctx, query))
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	insert := `INSERT INTO site_settings
			  (monthly_price, yearly_price, monthly_days, yearly_days,
			   bank_name, iban_number, account_name, branch_name)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING ` + settingsColumns
	st, err = scanSettings(s.DB.QueryRowContext(ctx, insert,
		50.0, 500.0, models.DefaultMonthlyDays, models.DefaultYearlyDays,
		"Türkiye İş Bankası", "TR64 0006 4000 0011 2345 6789 01",
		"Tahminci.info", "Merkez Şubesi"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}

// UpdateSettings обновляет активную запись настроек сайта.
func (s *Storage) UpdateSettings(ctx context.Context, req models.DummySettings) (*models.SiteSettings, error) {
	const op = "storage.UpdateSettings"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE site_settings
			  SET monthly_price = $1, yearly_price = $2, monthly_days = $3, yearly_days = $4,
			      bank_name = $5, iban_number = $6, account_name = $7, branch_name = $8,
			      updated_at = NOW()
			  WHERE is_active = true
			  RETURNING ` + settingsColumns
	st, err := scanSettings(s.DB.QueryRowContext(ctx, query,
		req.MonthlyPrice, req.YearlyPrice, req.MonthlyDays, req.YearlyDays,
		req.BankName, req.IbanNumber, req.AccountName, req.BranchName))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}
