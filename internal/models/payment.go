package models

import "time"

// Типы пакетов premium-доступа.
const (
	PackageMonthly = "MONTHLY"
	PackageYearly  = "YEARLY"
)

// Статусы платёжной заявки. Переходы только PENDING -> APPROVED
// и PENDING -> REJECTED, терминальные статусы не меняются.
const (
	PaymentPending  = "PENDING"
	PaymentApproved = "APPROVED"
	PaymentRejected = "REJECTED"
)

// Payment представляет заявку на оплату premium-доступа банковским переводом.
// Записи никогда не удаляются: это финансовый аудит-след.
type Payment struct {
	ID          int        `json:"id"`
	UserUID     string     `json:"user_uid"`
	UserEmail   string     `json:"user_email,omitempty"` // Заполняется в админских выборках
	Amount      float64    `json:"amount"`
	PackageType string     `json:"package_type"`
	Status      string     `json:"status"`
	ReceiptPath *string    `json:"receipt_path,omitempty"` // Путь к загруженной квитанции, nil пока не прикреплена
	AdminNote   *string    `json:"admin_note,omitempty"`   // Комментарий администратора при решении
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// DummyPayment используется для приёма данных новой заявки из JSON-запроса.
type DummyPayment struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`                   // Сумма (>0)
	PackageType string  `json:"package_type" validate:"required,oneof=MONTHLY YEARLY"` // Тип пакета
}

// DummyResolve используется для приёма решения администратора по заявке.
type DummyResolve struct {
	AdminNote string `json:"admin_note"`
}

// PaymentFilter параметры фильтрации админского списка платежей.
type PaymentFilter struct {
	Status      *string
	PackageType *string
}
