package models

import "errors"

// Ошибки бизнес-уровня. Сервисы оборачивают их через fmt.Errorf("%s: %w", op, err),
// обработчики сопоставляют через errors.Is и выбирают HTTP-статус.
var (
	// ErrNotFound запрошенная запись отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrValidation входные данные не прошли бизнес-валидацию.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden запись существует, но принадлежит другому пользователю.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict операция несовместима с текущим состоянием записи:
	// повторная заявка при уже висящей PENDING, повторное решение по заявке.
	ErrConflict = errors.New("conflict")
	// ErrPremiumRequired контент доступен только premium-пользователям.
	// Отдаётся отдельным сигналом, чтобы клиент мог предложить апгрейд.
	ErrPremiumRequired = errors.New("premium required")
	// ErrInvalidCredentials неверная пара email/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
