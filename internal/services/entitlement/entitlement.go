package entitlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tahminci/tahminci-api/internal/lib/sl"
	"github.com/tahminci/tahminci-api/internal/models"
)

// UserRepository определяет методы хранилища для работы с premium-доступом.
// Все мутации роли и срока проходят только через эти операции.
type UserRepository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// ReconcileIfExpired условно понижает истёкшего PREMIUM-пользователя.
	ReconcileIfExpired(ctx context.Context, userUID string) (*models.ReconcileResult, error)
	// ExtendPremium продлевает premium-доступ на days дней.
	ExtendPremium(ctx context.Context, userUID string, days int) (*models.User, error)
	// RevokePremium безусловно снимает premium-доступ.
	RevokePremium(ctx context.Context, userUID string) (*models.User, error)
	// SweepExpired пакетно понижает всех истёкших PREMIUM-пользователей.
	SweepExpired(ctx context.Context, now time.Time) (int, []string, error)
	// FindExpiringWithin возвращает пользователей со сроком в ближайшие days дней.
	FindExpiringWithin(ctx context.Context, days int) ([]*models.ExpiringUser, error)
	// PremiumStats собирает сводную статистику.
	PremiumStats(ctx context.Context) (*models.PremiumStats, error)
}

// Status текущее состояние premium-доступа пользователя.
type Status struct {
	Role         string     `json:"role"`
	PremiumUntil *time.Time `json:"premium_until,omitempty"`
	IsPremium    bool       `json:"is_premium"`
	DaysLeft     int        `json:"days_left"`
}

// Service реализует бизнес-логику premium-доступа.
type Service struct {
	repo UserRepository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo UserRepository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// ReconcileIfExpired сверяет роль пользователя с его сроком и при необходимости
// понижает её. Вызывается на каждом аутентифицированном запросе и из ручных
// админских операций; оба пути используют одну и ту же условную мутацию хранилища.
func (s *Service) ReconcileIfExpired(ctx context.Context, userUID string) (*models.ReconcileResult, error) {
	res, err := s.repo.ReconcileIfExpired(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if res.Downgraded {
		s.log.Info("premium expired, user downgraded", slog.String("user_uid", userUID))
	}
	return res, nil
}

// Extend продлевает premium-доступ пользователя на days дней.
// Неположительное число дней отклоняется до обращения к хранилищу.
func (s *Service) Extend(ctx context.Context, userUID string, days int) (*models.User, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be positive: %w", models.ErrValidation)
	}
	u, err := s.repo.ExtendPremium(ctx, userUID, days)
	if err != nil {
		return nil, err
	}
	s.log.Info("premium extended",
		slog.String("user_uid", userUID),
		slog.Int("days", days),
		slog.Time("premium_until", *u.PremiumUntil))
	return u, nil
}

// Revoke снимает premium-доступ пользователя.
func (s *Service) Revoke(ctx context.Context, userUID string) (*models.User, error) {
	u, err := s.repo.RevokePremium(ctx, userUID)
	if err != nil {
		return nil, err
	}
	s.log.Info("premium revoked", slog.String("user_uid", userUID))
	return u, nil
}

// SweepExpired пакетно понижает всех истёкших PREMIUM-пользователей.
func (s *Service) SweepExpired(ctx context.Context) (int, []string, error) {
	count, uids, err := s.repo.SweepExpired(ctx, time.Now())
	if err != nil {
		return 0, nil, err
	}
	if count > 0 {
		s.log.Info("expired premium users downgraded", slog.Int("count", count))
	}
	return count, uids, nil
}

// ExpiringWithin возвращает premium-пользователей, чей срок истекает в ближайшие days дней.
func (s *Service) ExpiringWithin(ctx context.Context, days int) ([]*models.ExpiringUser, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be positive: %w", models.ErrValidation)
	}
	return s.repo.FindExpiringWithin(ctx, days)
}

// Stats возвращает сводную статистику по premium-пользователям и платежам.
func (s *Service) Stats(ctx context.Context) (*models.PremiumStats, error) {
	stats, err := s.repo.PremiumStats(ctx)
	if err != nil {
		s.log.Error("failed to collect premium stats", sl.Err(err))
		return nil, err
	}
	return stats, nil
}

// Status возвращает состояние premium-доступа пользователя после сверки.
func (s *Service) Status(ctx context.Context, userUID string) (*Status, error) {
	res, err := s.ReconcileIfExpired(ctx, userUID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Status{
		Role:         res.Role,
		PremiumUntil: res.PremiumUntil,
		IsPremium:    res.Role == models.RolePremium && !IsExpired(res.PremiumUntil, now),
		DaysLeft:     DaysLeft(res.PremiumUntil, now),
	}, nil
}
