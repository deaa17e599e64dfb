// Package auth реализует регистрацию, вход и проверку токенов.
// При проверке токена роль из claims не используется как источник
// истины: срок premium сверяется с хранилищем на каждом запросе.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tahminci/tahminci-api/internal/lib/jwt"
	"github.com/tahminci/tahminci-api/internal/lib/password"
	"github.com/tahminci/tahminci-api/internal/models"
)

// UserRepository описывает операции хранилища, нужные для аутентификации.
type UserRepository interface {
	RegisterUser(ctx context.Context, user models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ReconcileIfExpired(ctx context.Context, userUID string) (*models.ReconcileResult, error)
}

// Identity — личность запросившего после проверки токена и сверки срока.
type Identity struct {
	UserUID string
	Email   string
	Role    string
}

type Service struct {
	repo  UserRepository
	maker jwt.Maker
	log   *slog.Logger
}

func New(repo UserRepository, maker jwt.Maker, log *slog.Logger) *Service {
	return &Service{repo: repo, maker: maker, log: log}
}

// Register создаёт нового пользователя с ролью NORMAL.
// Повторная регистрация на занятую почту возвращает ErrConflict.
func (s *Service) Register(ctx context.Context, req models.DummyRegister) (string, error) {
	const op = "services.auth.Register"

	hash, err := password.GetHash(req.Password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	uid, err := s.repo.RegisterUser(ctx, models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleNormal,
		IsActive:     true,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.String("user_uid", uid))

	return uid, nil
}

// Login проверяет учётные данные и выдаёт JWT. Перед выдачей роль
// сверяется со сроком, чтобы токен не зафиксировал истёкший premium.
func (s *Service) Login(ctx context.Context, req models.DummyLogin) (string, error) {
	const op = "services.auth.Login"

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return "", fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}

	res, err := s.repo.ReconcileIfExpired(ctx, user.UID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.maker.GenerateToken(user.UID, user.Email, res.Role)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user logged in", slog.String("user_uid", user.UID))

	return token, nil
}

// ValidateToken разбирает токен и возвращает личность с актуальной
// ролью: если premium истёк после выдачи токена, здесь пользователь
// будет понижен и получит роль NORMAL.
func (s *Service) ValidateToken(ctx context.Context, tokenStr string) (*Identity, error) {
	const op = "services.auth.ValidateToken"

	claims, err := s.maker.ParseToken(tokenStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.repo.ReconcileIfExpired(ctx, claims.UserUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if res.Downgraded {
		s.log.Info("premium expired, role downgraded",
			slog.String("user_uid", claims.UserUID))
	}

	return &Identity{
		UserUID: claims.UserUID,
		Email:   claims.Email,
		Role:    res.Role,
	}, nil
}
