// Package settings управляет настройками сайта: ценами пакетов,
// длительностями premium-доступа и банковскими реквизитами.
package settings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tahminci/tahminci-api/internal/models"
)

// Repository описывает операции хранилища над настройками сайта.
type Repository interface {
	GetActiveSettings(ctx context.Context) (*models.SiteSettings, error)
	UpdateSettings(ctx context.Context, req models.DummySettings) (*models.SiteSettings, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Get возвращает действующие настройки, при отсутствии записи
// хранилище материализует значения по умолчанию.
func (s *Service) Get(ctx context.Context) (*models.SiteSettings, error) {
	const op = "services.settings.Get"

	settings, err := s.repo.GetActiveSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return settings, nil
}

// Update заменяет действующие настройки. Уже одобренные платежи
// сохраняют начисленные сроки, новые длительности применяются
// только к последующим одобрениям.
func (s *Service) Update(ctx context.Context, req models.DummySettings) (*models.SiteSettings, error) {
	const op = "services.settings.Update"

	settings, err := s.repo.UpdateSettings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("site settings updated",
		slog.Float64("monthly_price", settings.MonthlyPrice),
		slog.Float64("yearly_price", settings.YearlyPrice))

	return settings, nil
}
