// Package entitlement содержит бизнес-логику premium-доступа:
// чистые функции расчёта срока и сервис сверки, продления,
// отзыва и пакетного понижения ролей.
package entitlement

import "time"

// IsExpired сообщает, истёк ли срок premium-доступа к моменту now.
// Nil срок у PREMIUM-пользователя считается истёкшим, а не бессрочным.
func IsExpired(premiumUntil *time.Time, now time.Time) bool {
	if premiumUntil == nil {
		return true
	}
	return premiumUntil.Before(now)
}

// Extend вычисляет новый срок premium-доступа: max(current, now) + days.
// Продление складывается с неистекшим остатком, но никогда с уже
// прошедшим временем: истекший или отсутствующий срок продлевается от now.
// Запись выполняет extendPremiumQuery хранилища той же формулой;
// интеграционный тест хранилища сверяет оба расчёта.
func Extend(current *time.Time, days int, now time.Time) time.Time {
	base := now
	if current != nil && current.After(now) {
		base = *current
	}
	return base.AddDate(0, 0, days)
}

// DaysLeft возвращает число полных дней до истечения срока, с округлением вверх.
// Для истекшего или отсутствующего срока возвращает 0.
func DaysLeft(premiumUntil *time.Time, now time.Time) int {
	if premiumUntil == nil || !premiumUntil.After(now) {
		return 0
	}
	d := premiumUntil.Sub(now)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}
