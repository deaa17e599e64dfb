// Package models содержит доменные структуры платформы прогнозов:
// пользователей, платежи, контент и настройки сайта,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Роли пользователей. Только PREMIUM ограничена по времени:
// ADMIN никогда не понижается автоматически, NORMAL не имеет срока.
const (
	RoleNormal  = "NORMAL"
	RolePremium = "PREMIUM"
	RoleAdmin   = "ADMIN"
)

// User представляет зарегистрированного пользователя системы.
// Инвариант: Role == PREMIUM влечёт PremiumUntil != nil; PREMIUM с nil
// сроком считается уже истёкшим, а не бессрочным.
type User struct {
	UID          string     // Уникальный идентификатор пользователя
	Email        string     // Электронная почта (уникальная)
	PasswordHash string     // Хэш пароля пользователя
	Role         string     // Роль: NORMAL, PREMIUM или ADMIN
	PremiumUntil *time.Time // Дата истечения premium-доступа, nil для NORMAL/ADMIN
	IsActive     bool       // Флаг активности учётной записи
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ReconcileResult результат сверки роли пользователя с его сроком premium.
type ReconcileResult struct {
	Downgraded   bool       // true, если роль была понижена этим вызовом
	Role         string     // Актуальная роль после сверки
	PremiumUntil *time.Time // Актуальный срок после сверки
}

// ExpiringUser данные premium-пользователя с истекающим сроком,
// передаются воркеру уведомлений через очередь.
type ExpiringUser struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	PremiumUntil time.Time `json:"premium_until"`
}

// PremiumStats сводная статистика по premium-подпискам и платежам.
type PremiumStats struct {
	ActivePremiumUsers  int     `json:"active_premium_users"`
	ExpiredPremiumUsers int     `json:"expired_premium_users"`
	ExpiringSoonUsers   int     `json:"expiring_soon_users"`
	TotalPayments       int     `json:"total_payments"`
	ApprovedPayments    int     `json:"approved_payments"`
	PendingPayments     int     `json:"pending_payments"`
	TotalRevenue        float64 `json:"total_revenue"`
}

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
type DummyRegister struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// DummyExtend запрос администратора на продление premium-доступа.
type DummyExtend struct {
	Days int `json:"days" validate:"required,gt=0"` // Количество дней (>0)
}
