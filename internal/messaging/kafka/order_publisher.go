package kafka

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/rahmet/internal/domain"
)

// OrderEventPublisher публикует события отправки заказов в заданный topic.
type OrderEventPublisher struct {
	producer *Producer
	topic    string
}

// NewOrderEventPublisher создаёт паблишер; пустой topic заменяется TopicOrderEvents.
func NewOrderEventPublisher(producer *Producer, topic string) *OrderEventPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &OrderEventPublisher{
		producer: producer,
		topic:    topic,
	}
}

// Publish отправляет событие, ключом служит ID сессии, чтобы события одной
// корзины попадали в одну партицию.
func (p *OrderEventPublisher) Publish(ctx context.Context, event domain.OrderEvent) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka order publisher is not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	key := event.SessionID
	if key == "" {
		key = event.ReceiptID
	}

	return p.producer.PublishEvent(p.topic, key, string(event.Type), NewOrderEvent(event))
}

var _ domain.EventPublisher = (*OrderEventPublisher)(nil)
