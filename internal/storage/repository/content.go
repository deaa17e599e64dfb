package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/tahminci/tahminci-api/internal/models"
)

const predictionColumns = `id, home_team, away_team, league, match_date, prediction_type,
	      prediction_text, odds, confidence, analysis, is_premium, result_status, is_active, created_at`

func scanPredictionRows(rows *sql.Rows) (*models.Prediction, error) {
	p := &models.Prediction{}
	var analysis sql.NullString
	if err := rows.Scan(&p.ID, &p.HomeTeam, &p.AwayTeam, &p.League, &p.MatchDate,
		&p.PredictionType, &p.PredictionText, &p.Odds, &p.Confidence, &analysis,
		&p.IsPremium, &p.ResultStatus, &p.IsActive, &p.CreatedAt); err != nil {
		return nil, err
	}
	if analysis.Valid {
		p.Analysis = &analysis.String
	}
	return p, nil
}

func buildContentWhere(filter models.ContentFilter, args *[]any) string {
	where := " WHERE is_active = true"
	if filter.League != nil {
		*args = append(*args, *filter.League)
		where += " AND league = $" + strconv.Itoa(len(*args))
	}
	if filter.IsPremium != nil {
		*args = append(*args, *filter.IsPremium)
		where += " AND is_premium = $" + strconv.Itoa(len(*args))
	}
	if filter.ResultStatus != nil {
		*args = append(*args, *filter.ResultStatus)
		where += " AND result_status = $" + strconv.Itoa(len(*args))
	}
	return where
}

// ListPredictions возвращает страницу активных прогнозов под фильтром
// и общее число записей. Платные поля не обрезаются: этим занимается
// сервис контента после чтения.
func (s *Storage) ListPredictions(ctx context.Context, filter models.ContentFilter, limit, offset int) ([]*models.Prediction, int, error) {
	const op = "storage.ListPredictions"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	args := []any{}
	where := buildContentWhere(filter, &args)

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM predictions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	args = append(args, limit, offset)
	query := `SELECT ` + predictionColumns + ` FROM predictions` + where + `
			  ORDER BY created_at DESC
			  LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Prediction
	for rows.Next() {
		p, err := scanPredictionRows(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

// GetPrediction возвращает активный прогноз по ID.
func (s *Storage) GetPrediction(ctx context.Context, id int) (*models.Prediction, error) {
	const op = "storage.GetPrediction"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE id = $1 AND is_active = true`
	p := &models.Prediction{}
	var analysis sql.NullString
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.HomeTeam, &p.AwayTeam,
		&p.League, &p.MatchDate, &p.PredictionType, &p.PredictionText, &p.Odds,
		&p.Confidence, &analysis, &p.IsPremium, &p.ResultStatus, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if analysis.Valid {
		p.Analysis = &analysis.String
	}
	return p, nil
}

const couponColumns = `id, title, description, total_odds, is_premium, result_status, is_active, created_at`

func scanCouponRows(rows *sql.Rows) (*models.Coupon, error) {
	c := &models.Coupon{}
	var description sql.NullString
	if err := rows.Scan(&c.ID, &c.Title, &description, &c.TotalOdds, &c.IsPremium,
		&c.ResultStatus, &c.IsActive, &c.CreatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		c.Description = &description.String
	}
	return c, nil
}

// ListCoupons возвращает страницу активных купонов с их прогнозами.
func (s *Storage) ListCoupons(ctx context.Context, filter models.ContentFilter, limit, offset int) ([]*models.Coupon, int, error) {
	const op = "storage.ListCoupons"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	args := []any{}
	where := buildContentWhere(filter, &args)

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM coupons`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	args = append(args, limit, offset)
	query := `SELECT ` + couponColumns + ` FROM coupons` + where + `
			  ORDER BY created_at DESC
			  LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Coupon
	byID := map[int]*models.Coupon{}
	for rows.Next() {
		c, err := scanCouponRows(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(result) == 0 {
		return result, total, nil
	}

	ids := make([]int32, 0, len(result))
	for _, c := range result {
		ids = append(ids, int32(c.ID))
	}
	linkQuery := `SELECT cp.coupon_id, ` + prefixedPredictionColumns("p") + `
			  FROM coupon_predictions cp
			  JOIN predictions p ON p.id = cp.prediction_id
			  WHERE cp.coupon_id = ANY($1)
			  ORDER BY cp.coupon_id, cp.position`
	linkRows, err := s.DB.QueryContext(ctx, linkQuery, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = linkRows.Close()
	}()
	for linkRows.Next() {
		var couponID int
		p := &models.Prediction{}
		var analysis sql.NullString
		if err := linkRows.Scan(&couponID, &p.ID, &p.HomeTeam, &p.AwayTeam, &p.League,
			&p.MatchDate, &p.PredictionType, &p.PredictionText, &p.Odds, &p.Confidence,
			&analysis, &p.IsPremium, &p.ResultStatus, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		if analysis.Valid {
			p.Analysis = &analysis.String
		}
		if c, ok := byID[couponID]; ok {
			c.Predictions = append(c.Predictions, p)
		}
	}
	if err := linkRows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

// GetCoupon возвращает активный купон с прогнозами по ID.
func (s *Storage) GetCoupon(ctx context.Context, id int) (*models.Coupon, error) {
	const op = "storage.GetCoupon"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1 AND is_active = true`
	c := &models.Coupon{}
	var description sql.NullString
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Title, &description,
		&c.TotalOdds, &c.IsPremium, &c.ResultStatus, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if description.Valid {
		c.Description = &description.String
	}

	linkQuery := `SELECT ` + prefixedPredictionColumns("p") + `
			  FROM coupon_predictions cp
			  JOIN predictions p ON p.id = cp.prediction_id
			  WHERE cp.coupon_id = $1
			  ORDER BY cp.position`
	rows, err := s.DB.QueryContext(ctx, linkQuery, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		p, err := scanPredictionRows(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		c.Predictions = append(c.Predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func prefixedPredictionColumns(alias string) string {
	return alias + `.id, ` + alias + `.home_team, ` + alias + `.away_team, ` + alias + `.league, ` +
		alias + `.match_date, ` + alias + `.prediction_type, ` + alias + `.prediction_text, ` +
		alias + `.odds, ` + alias + `.confidence, ` + alias + `.analysis, ` + alias + `.is_premium, ` +
		alias + `.result_status, ` + alias + `.is_active, ` + alias + `.created_at`
}
