// Package content отдаёт прогнозы и купоны с учётом premium-доступа:
// платные поля урезаются в списках и закрываются в детальном просмотре.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tahminci/tahminci-api/internal/lib/sl"
	"github.com/tahminci/tahminci-api/internal/models"
	"github.com/tahminci/tahminci-api/internal/services/access"
)

// Детальные карточки кешируются ненадолго: контент обновляется
// редакцией в течение дня.
const cacheTTL = 5 * time.Minute

// Repository описывает операции хранилища над контентом.
type Repository interface {
	ListPredictions(ctx context.Context, filter models.ContentFilter, limit, offset int) ([]*models.Prediction, int, error)
	GetPrediction(ctx context.Context, id int) (*models.Prediction, error)
	ListCoupons(ctx context.Context, filter models.ContentFilter, limit, offset int) ([]*models.Coupon, int, error)
	GetCoupon(ctx context.Context, id int) (*models.Coupon, error)
}

// Cacher кеширует детальные карточки контента. Кеш хранит полный
// объект, урезание выполняется после чтения под роль запросившего.
type Cacher interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

type Service struct {
	repo  Repository
	cache Cacher
	log   *slog.Logger
}

func New(repo Repository, cache Cacher, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListPredictions возвращает страницу прогнозов. Premium-прогнозы
// для пользователей без действующего premium отдаются без анализа.
func (s *Service) ListPredictions(ctx context.Context, role string, filter models.ContentFilter, limit, offset int) ([]*models.Prediction, int, error) {
	const op = "services.content.ListPredictions"

	limit, offset = normalizePage(limit, offset)

	predictions, total, err := s.repo.ListPredictions(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	for _, p := range predictions {
		if access.Decide(role, p.IsPremium, access.ViewList) == access.AllowRedacted {
			p.Redact()
		}
	}

	return predictions, total, nil
}

// GetPrediction возвращает прогноз целиком. Premium-прогноз доступен
// только пользователям с ролью PREMIUM или ADMIN, остальным
// возвращается ErrPremiumRequired.
func (s *Service) GetPrediction(ctx context.Context, role string, id int) (*models.Prediction, error) {
	const op = "services.content.GetPrediction"

	key := fmt.Sprintf("prediction:%d", id)

	var p models.Prediction
	found, err := s.cache.Get(key, &p)
	if err != nil {
		s.log.Warn("cache lookup failed", sl.Err(err), slog.String("key", key))
	}
	if !found {
		fetched, err := s.repo.GetPrediction(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p = *fetched
		if err := s.cache.Set(key, p, cacheTTL); err != nil {
			s.log.Warn("cache store failed", sl.Err(err), slog.String("key", key))
		}
	}

	if access.Decide(role, p.IsPremium, access.ViewDetail) == access.Deny {
		return nil, fmt.Errorf("%s: %w", op, models.ErrPremiumRequired)
	}

	return &p, nil
}

// ListCoupons возвращает страницу купонов. Premium-купоны для
// пользователей без действующего premium отдаются без описания
// и без анализа вложенных прогнозов.
func (s *Service) ListCoupons(ctx context.Context, role string, filter models.ContentFilter, limit, offset int) ([]*models.Coupon, int, error) {
	const op = "services.content.ListCoupons"

	limit, offset = normalizePage(limit, offset)

	coupons, total, err := s.repo.ListCoupons(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	for _, c := range coupons {
		if access.Decide(role, c.IsPremium, access.ViewList) == access.AllowRedacted {
			c.Redact()
		}
	}

	return coupons, total, nil
}

// GetCoupon возвращает купон с прогнозами целиком либо ErrPremiumRequired.
func (s *Service) GetCoupon(ctx context.Context, role string, id int) (*models.Coupon, error) {
	const op = "services.content.GetCoupon"

	key := fmt.Sprintf("coupon:%d", id)

	var c models.Coupon
	found, err := s.cache.Get(key, &c)
	if err != nil {
		s.log.Warn("cache lookup failed", sl.Err(err), slog.String("key", key))
	}
	if !found {
		fetched, err := s.repo.GetCoupon(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		c = *fetched
		if err := s.cache.Set(key, c, cacheTTL); err != nil {
			s.log.Warn("cache store failed", sl.Err(err), slog.String("key", key))
		}
	}

	if access.Decide(role, c.IsPremium, access.ViewDetail) == access.Deny {
		return nil, fmt.Errorf("%s: %w", op, models.ErrPremiumRequired)
	}

	return &c, nil
}
