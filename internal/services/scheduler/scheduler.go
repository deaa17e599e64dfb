// Package scheduler запускает регулярные задачи обслуживания premium:
// ночную зачистку истёкших сроков, снимки статистики и рассылку
// предупреждений об истечении через очередь уведомлений.
// Все задачи привязаны к настроенному часовому поясу площадки.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/tahminci/tahminci-api/internal/lib/rabbitmq"
	"github.com/tahminci/tahminci-api/internal/lib/sl"
	"github.com/tahminci/tahminci-api/internal/models"
)

// Entitlements — операции над premium-сроками, нужные планировщику.
type Entitlements interface {
	SweepExpired(ctx context.Context) (int, []string, error)
	ExpiringWithin(ctx context.Context, days int) ([]*models.ExpiringUser, error)
	Stats(ctx context.Context) (*models.PremiumStats, error)
}

// Publisher отправляет сообщение в обменник уведомлений.
type Publisher interface {
	Publish(routingKey string, message any) error
}

type Scheduler struct {
	ent Entitlements
	pub Publisher
	loc *time.Location
	log *slog.Logger
}

func New(ent Entitlements, pub Publisher, loc *time.Location, log *slog.Logger) *Scheduler {
	return &Scheduler{ent: ent, pub: pub, loc: loc, log: log}
}

// Run запускает все задачи и блокируется до отмены контекста.
func (s *Scheduler) Run(ctx context.Context) {
	go s.runDaily(ctx, 0, 0, "sweep", s.RunSweep)
	go s.runDaily(ctx, 9, 0, "seven_day_warnings", s.PublishSevenDayWarnings)
	go s.runDaily(ctx, 10, 0, "one_day_warnings", s.PublishOneDayWarnings)
	go s.runHourly(ctx, "stats_snapshot", s.LogStats)
	go s.runWeekly(ctx, time.Sunday, 8, 0, "weekly_report", s.WeeklyReport)

	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

// RunSweep понижает всех пользователей с истёкшим premium.
// Повторный запуск без новых истечений ничего не меняет.
func (s *Scheduler) RunSweep(ctx context.Context) {
	const op = "services.scheduler.RunSweep"

	log := s.log.With(slog.String("op", op))

	count, uids, err := s.ent.SweepExpired(ctx)
	if err != nil {
		log.Error("sweep failed", sl.Err(err))
		return
	}
	if count > 0 {
		log.Info("expired premiums swept",
			slog.Int("downgraded", count),
			slog.Any("user_uids", uids))
		return
	}
	log.Debug("sweep found nothing to downgrade")
}

// PublishSevenDayWarnings публикует по одному сообщению на каждого
// пользователя, чей premium истекает в ближайшие семь дней.
func (s *Scheduler) PublishSevenDayWarnings(ctx context.Context) {
	s.publishWarnings(ctx, 7, rabbitmq.KeyExpiringSoon, "services.scheduler.PublishSevenDayWarnings")
}

// PublishOneDayWarnings публикует предупреждения об истечении завтра.
func (s *Scheduler) PublishOneDayWarnings(ctx context.Context) {
	s.publishWarnings(ctx, 1, rabbitmq.KeyExpiringTomorrow, "services.scheduler.PublishOneDayWarnings")
}

func (s *Scheduler) publishWarnings(ctx context.Context, days int, routingKey, op string) {
	log := s.log.With(slog.String("op", op))

	users, err := s.ent.ExpiringWithin(ctx, days)
	if err != nil {
		log.Error("failed to find expiring users", sl.Err(err))
		return
	}

	published := 0
	for _, u := range users {
		if err := s.pub.Publish(routingKey, u); err != nil {
			log.Error("failed to publish warning",
				sl.Err(err), slog.String("user_uid", u.UID))
			continue
		}
		published++
	}

	log.Info("expiry warnings published",
		slog.Int("days", days),
		slog.Int("candidates", len(users)),
		slog.Int("published", published))
}

// LogStats пишет в журнал текущий снимок статистики premium.
func (s *Scheduler) LogStats(ctx context.Context) {
	const op = "services.scheduler.LogStats"

	log := s.log.With(slog.String("op", op))

	stats, err := s.ent.Stats(ctx)
	if err != nil {
		log.Error("failed to collect stats", sl.Err(err))
		return
	}

	log.Info("premium stats snapshot",
		slog.Int("active_premium", stats.ActivePremiumUsers),
		slog.Int("expiring_soon", stats.ExpiringSoonUsers),
		slog.Int("pending_payments", stats.PendingPayments),
		slog.Float64("total_revenue", stats.TotalRevenue))
}

// WeeklyReport пишет в журнал недельную сводку по подпискам и платежам.
func (s *Scheduler) WeeklyReport(ctx context.Context) {
	const op = "services.scheduler.WeeklyReport"

	log := s.log.With(slog.String("op", op))

	stats, err := s.ent.Stats(ctx)
	if err != nil {
		log.Error("failed to collect weekly report", sl.Err(err))
		return
	}

	log.Info("weekly premium report",
		slog.Int("active_premium", stats.ActivePremiumUsers),
		slog.Int("expired_premium", stats.ExpiredPremiumUsers),
		slog.Int("total_payments", stats.TotalPayments),
		slog.Int("approved_payments", stats.ApprovedPayments),
		slog.Float64("total_revenue", stats.TotalRevenue))
}

func (s *Scheduler) runDaily(ctx context.Context, hour, minute int, name string, job func(context.Context)) {
	for {
		next := nextDaily(time.Now().In(s.loc), hour, minute)
		if !s.sleepUntil(ctx, next, name) {
			return
		}
		job(ctx)
	}
}

func (s *Scheduler) runHourly(ctx context.Context, name string, job func(context.Context)) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job(ctx)
		}
	}
}

func (s *Scheduler) runWeekly(ctx context.Context, weekday time.Weekday, hour, minute int, name string, job func(context.Context)) {
	for {
		next := nextWeekly(time.Now().In(s.loc), weekday, hour, minute)
		if !s.sleepUntil(ctx, next, name) {
			return
		}
		job(ctx)
	}
}

func (s *Scheduler) sleepUntil(ctx context.Context, next time.Time, name string) bool {
	s.log.Debug("job scheduled",
		slog.String("job", name),
		slog.Time("next_run", next))

	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// nextDaily возвращает ближайший будущий момент hour:minute
// в часовом поясе переданного времени.
func nextDaily(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// nextWeekly возвращает ближайший будущий момент hour:minute
// в заданный день недели.
func nextWeekly(now time.Time, weekday time.Weekday, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	days := (int(weekday) - int(now.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, days)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}
