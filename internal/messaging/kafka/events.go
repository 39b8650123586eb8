package kafka

import (
	"time"

	"github.com/vladislavdragonenkov/rahmet/internal/domain"
)

// TopicOrderEvents — topic по умолчанию для событий отправки заказов.
const TopicOrderEvents = "rahmet.order.events"

// OrderEventProduct — позиция заказа в событии.
type OrderEventProduct struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

// OrderEvent — JSON-представление domain.OrderEvent в Kafka.
type OrderEvent struct {
	EventType    string              `json:"event_type"`
	SessionID    string              `json:"session_id"`
	ReceiptID    string              `json:"receipt_id,omitempty"`
	RestaurantID *int64              `json:"restaurant_id,omitempty"`
	Products     []OrderEventProduct `json:"products"`
	TotalAmount  int64               `json:"total_amount"`
	Message      string              `json:"message,omitempty"`
	Timestamp    time.Time           `json:"timestamp"`
}

// NewOrderEvent конвертирует доменное событие в сообщение для Kafka.
func NewOrderEvent(event domain.OrderEvent) *OrderEvent {
	products := make([]OrderEventProduct, 0, len(event.Products))
	for _, p := range event.Products {
		products = append(products, OrderEventProduct{ID: p.ID, Quantity: p.Quantity})
	}

	ts := event.OccurredAt
	if ts.IsZero() {
		ts = time.Now()
	}

	return &OrderEvent{
		EventType:    string(event.Type),
		SessionID:    event.SessionID,
		ReceiptID:    event.ReceiptID,
		RestaurantID: event.RestaurantID,
		Products:     products,
		TotalAmount:  event.TotalAmount,
		Message:      event.Message,
		Timestamp:    ts.UTC(),
	}
}
