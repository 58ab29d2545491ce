package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"tripmate/storage/mq"
)

const (
	// DelayedExchange 延迟交换机，依赖 rabbitmq_delayed_message_exchange 插件
	DelayedExchange = "reminder.delayed"
	// EventsExchange 事件总线
	EventsExchange = "events.topic"

	ReminderDeliveryQueue      = "reminder.delivery"
	ReminderDeliveryRoutingKey = "reminder.delivery.send"

	// EventsQueue worker 侧的事件队列，订阅事件总线上的清理类事件
	EventsQueue             = "events.worker"
	PlanDeletedRoutingKey   = "plan.deleted"
	QuotaDepletedRoutingKey = "aiplan.quota.depleted"
)

// DeclareTopology 声明交换机、队列与绑定，scheduler 和 worker 启动时各调用一次。
// 声明是幂等的，参数一致时重复声明无副作用。
func DeclareTopology() error {
	conn := mq.Connection()
	if conn == nil {
		return fmt.Errorf("RabbitMQ connection is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open topology channel: %w", err)
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		DelayedExchange,
		"x-delayed-message",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		amqp.Table{"x-delayed-type": "topic"},
	)
	if err != nil {
		return fmt.Errorf("failed to declare delayed exchange: %w", err)
	}

	err = ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare events exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(
		ReminderDeliveryQueue,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare reminder delivery queue: %w", err)
	}

	if err := ch.QueueBind(
		ReminderDeliveryQueue,
		ReminderDeliveryRoutingKey,
		DelayedExchange,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("failed to bind reminder delivery queue: %w", err)
	}

	if _, err := ch.QueueDeclare(
		EventsQueue,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare events queue: %w", err)
	}

	for _, key := range []string{PlanDeletedRoutingKey, QuotaDepletedRoutingKey} {
		if err := ch.QueueBind(
			EventsQueue,
			key,
			EventsExchange,
			false,
			nil,
		); err != nil {
			return fmt.Errorf("failed to bind events queue for %s: %w", key, err)
		}
	}

	return nil
}
