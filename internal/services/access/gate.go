// Package access решает, в каком виде контент доступен пользователю
// в зависимости от его роли и premium-признака материала.
package access

import "github.com/tahminci/tahminci-api/internal/models"

// View описывает контекст запроса контента: списочный или детальный.
type View int

const (
	ViewList View = iota
	ViewDetail
)

// Decision — итог проверки доступа.
type Decision int

const (
	// Allow — материал отдаётся целиком.
	Allow Decision = iota
	// AllowRedacted — материал отдаётся без premium-полей.
	AllowRedacted
	// Deny — материал не отдаётся.
	Deny
)

// Decide возвращает решение о доступе. Бесплатный контент открыт всем.
// Premium-контент в списке показывается урезанным, в детальном
// просмотре — только пользователям с ролью PREMIUM или ADMIN.
// Роль должна быть актуальной: вызывающая сторона обязана выполнить
// сверку срока действия до проверки доступа.
func Decide(role string, itemIsPremium bool, view View) Decision {
	if !itemIsPremium {
		return Allow
	}
	if role == models.RolePremium || role == models.RoleAdmin {
		return Allow
	}
	if view == ViewList {
		return AllowRedacted
	}
	return Deny
}
