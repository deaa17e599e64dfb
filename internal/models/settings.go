package models

import "time"

// Длительности premium-доступа по умолчанию, используются
// пока настройки сайта не материализованы.
const (
	DefaultMonthlyDays = 30
	DefaultYearlyDays  = 365
)

// SiteSettings настройки сайта: цены, длительности пакетов и реквизиты
// для банковского перевода. Хранится единственная активная запись,
// при отсутствии создаётся лениво со значениями по умолчанию.
type SiteSettings struct {
	ID           int       `json:"id"`
	MonthlyPrice float64   `json:"monthly_price"`
	YearlyPrice  float64   `json:"yearly_price"`
	MonthlyDays  int       `json:"monthly_days"`
	YearlyDays   int       `json:"yearly_days"`
	BankName     string    `json:"bank_name"`
	IbanNumber   string    `json:"iban_number"`
	AccountName  string    `json:"account_name"`
	BranchName   string    `json:"branch_name"`
	IsActive     bool      `json:"-"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DaysFor возвращает длительность доступа в днях для типа пакета.
func (s *SiteSettings) DaysFor(packageType string) int {
	if packageType == PackageYearly {
		if s != nil && s.YearlyDays > 0 {
			return s.YearlyDays
		}
		return DefaultYearlyDays
	}
	if s != nil && s.MonthlyDays > 0 {
		return s.MonthlyDays
	}
	return DefaultMonthlyDays
}

// DummySettings используется для приёма обновления настроек из JSON-запроса.
type DummySettings struct {
	MonthlyPrice float64 `json:"monthly_price" validate:"required,gt=0"`
	YearlyPrice  float64 `json:"yearly_price" validate:"required,gt=0"`
	MonthlyDays  int     `json:"monthly_days" validate:"required,gt=0"`
	YearlyDays   int     `json:"yearly_days" validate:"required,gt=0"`
	BankName     string  `json:"bank_name" validate:"required"`
	IbanNumber   string  `json:"iban_number" validate:"required"`
	AccountName  string  `json:"account_name" validate:"required"`
	BranchName   string  `json:"branch_name"`
}
