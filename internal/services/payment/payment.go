// Package payment реализует жизненный цикл заявок на оплату premium-доступа:
// создание, прикрепление квитанции и решение администратора.
package payment

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/tahminci/tahminci-api/internal/lib/sl"
	"github.com/tahminci/tahminci-api/internal/models"
)

// Repository описывает операции хранилища над платёжными заявками.
type Repository interface {
	CreatePayment(ctx context.Context, userUID string, amount float64, packageType string) (*models.Payment, error)
	GetPayment(ctx context.Context, id int) (*models.Payment, error)
	UpdateReceiptPath(ctx context.Context, id int, userUID, path string) (*models.Payment, error)
	ApprovePayment(ctx context.Context, id int, adminNote string, days int) (*models.Payment, *models.User, error)
	RejectPayment(ctx context.Context, id int, adminNote string) (*models.Payment, error)
	ListPayments(ctx context.Context, filter models.PaymentFilter, limit, offset int) ([]*models.Payment, int, error)
	ListUserPayments(ctx context.Context, userUID string) ([]*models.Payment, error)
}

// SettingsRepository отдаёт действующие настройки сайта, в том числе
// длительности пакетов для начисления premium при одобрении.
type SettingsRepository interface {
	GetActiveSettings(ctx context.Context) (*models.SiteSettings, error)
}

// EvidenceStore хранит файлы квитанций о банковском переводе.
type EvidenceStore interface {
	Save(r io.Reader, originalName string) (string, error)
	Remove(name string) error
}

type Service struct {
	repo     Repository
	settings SettingsRepository
	evidence EvidenceStore
	log      *slog.Logger
}

func New(repo Repository, settings SettingsRepository, evidence EvidenceStore, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		settings: settings,
		evidence: evidence,
		log:      log,
	}
}

// CreateRequest создаёт новую заявку в статусе PENDING. У пользователя
// может быть не больше одной незакрытой заявки одновременно.
func (s *Service) CreateRequest(ctx context.Context, userUID string, req models.DummyPayment) (*models.Payment, error) {
	const op = "services.payment.CreateRequest"

	p, err := s.repo.CreatePayment(ctx, userUID, req.Amount, req.PackageType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("payment request created",
		slog.Int("payment_id", p.ID),
		slog.String("user_uid", userUID),
		slog.String("package_type", p.PackageType))

	return p, nil
}

// AttachReceipt сохраняет файл квитанции и привязывает его к заявке.
// Повторная загрузка к той же PENDING-заявке замещает прежний файл.
// Уже закрытая заявка для загрузки неотличима от отсутствующей: ErrNotFound.
func (s *Service) AttachReceipt(ctx context.Context, id int, userUID string, file io.Reader, originalName string) (*models.Payment, error) {
	const op = "services.payment.AttachReceipt"

	current, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if current.UserUID != userUID {
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}
	if current.Status != models.PaymentPending {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	path, err := s.evidence.Save(file, originalName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.repo.UpdateReceiptPath(ctx, id, userUID, path)
	if err != nil {
		if rmErr := s.evidence.Remove(path); rmErr != nil {
			s.log.Error("failed to remove orphaned receipt", sl.Err(rmErr), slog.String("path", path))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if current.ReceiptPath != nil && *current.ReceiptPath != path {
		if rmErr := s.evidence.Remove(*current.ReceiptPath); rmErr != nil {
			s.log.Error("failed to remove replaced receipt", sl.Err(rmErr), slog.String("path", *current.ReceiptPath))
		}
	}

	s.log.Info("receipt attached", slog.Int("payment_id", id), slog.String("path", path))

	return updated, nil
}

// Approve одобряет PENDING-заявку и в той же транзакции продлевает
// premium пользователю на срок пакета из действующих настроек.
// Параллельное одобрение той же заявки разрешается в пользу одного
// администратора, второй получает ErrConflict.
func (s *Service) Approve(ctx context.Context, id int, adminNote string) (*models.Payment, *models.User, error) {
	const op = "services.payment.Approve"

	current, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	settings, err := s.settings.GetActiveSettings(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	days := settings.DaysFor(current.PackageType)

	p, u, err := s.repo.ApprovePayment(ctx, id, adminNote, days)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("payment approved",
		slog.Int("payment_id", id),
		slog.String("user_uid", u.UID),
		slog.Int("days_granted", days))

	return p, u, nil
}

// Reject отклоняет PENDING-заявку. Premium пользователя не затрагивается.
func (s *Service) Reject(ctx context.Context, id int, adminNote string) (*models.Payment, error) {
	const op = "services.payment.Reject"

	p, err := s.repo.RejectPayment(ctx, id, adminNote)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("payment rejected", slog.Int("payment_id", id))

	return p, nil
}

// Get возвращает заявку по идентификатору. Пользователь видит только
// свои заявки, администратор — любые.
func (s *Service) Get(ctx context.Context, id int, requesterUID, requesterRole string) (*models.Payment, error) {
	const op = "services.payment.Get"

	p, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if requesterRole != models.RoleAdmin && p.UserUID != requesterUID {
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}

	return p, nil
}

// List возвращает страницу заявок для админ-панели с общим числом записей.
func (s *Service) List(ctx context.Context, filter models.PaymentFilter, limit, offset int) ([]*models.Payment, int, error) {
	const op = "services.payment.List"

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	payments, total, err := s.repo.ListPayments(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return payments, total, nil
}

// ListForUser возвращает историю заявок пользователя.
func (s *Service) ListForUser(ctx context.Context, userUID string) ([]*models.Payment, error) {
	const op = "services.payment.ListForUser"

	payments, err := s.repo.ListUserPayments(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return payments, nil
}
