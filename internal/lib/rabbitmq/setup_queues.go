package rabbitmq

// Очереди и ключи маршрутизации предупреждений об истечении premium-доступа.
const (
	QueueExpiringSoon     = "premium.expiring.soon"
	QueueExpiringTomorrow = "premium.expiring.tomorrow"

	KeyExpiringSoon     = "expiring.soon"
	KeyExpiringTomorrow = "expiring.tomorrow"
)

// QueueConfig описывает очередь и её ключ маршрутизации в обменнике уведомлений.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди предупреждений для воркера уведомлений.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueExpiringSoon, RoutingKey: KeyExpiringSoon},
		{QueueName: QueueExpiringTomorrow, RoutingKey: KeyExpiringTomorrow},
	}
}
