package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/rahmet/internal/domain"
)

func TestOrderEventPublisher_Publish(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var payload OrderEvent
		if err := json.Unmarshal(val, &payload); err != nil {
			return err
		}
		if payload.EventType != string(domain.OrderEventSubmitted) {
			return fmt.Errorf("unexpected event type %q", payload.EventType)
		}
		if payload.TotalAmount != 1300 {
			return fmt.Errorf("unexpected total %d", payload.TotalAmount)
		}
		return nil
	})

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-order-publisher-test"),
	}
	publisher := NewOrderEventPublisher(producer, "")

	err := publisher.Publish(context.Background(), domain.OrderEvent{
		Type:        domain.OrderEventSubmitted,
		SessionID:   "session-1",
		ReceiptID:   "receipt-1",
		Products:    []domain.OrderProduct{{ID: 1, Quantity: 2}, {ID: 2, Quantity: 1}},
		TotalAmount: 1300,
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOrderEventPublisher_PublishProducerError(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewOrderEventPublisher(newProducer(mockProducer), TopicOrderEvents)

	err := publisher.Publish(context.Background(), domain.OrderEvent{
		Type:      domain.OrderEventSubmitFailed,
		SessionID: "session-2",
	})
	if err == nil {
		t.Fatal("expected publish error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOrderEventPublisher_CanceledContext(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	publisher := NewOrderEventPublisher(newProducer(mockProducer), TopicOrderEvents)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := publisher.Publish(ctx, domain.OrderEvent{SessionID: "session-3"}); err == nil {
		t.Fatal("expected context error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOrderEventPublisher_PublishNilProducer(t *testing.T) {
	t.Parallel()

	publisher := NewOrderEventPublisher(nil, TopicOrderEvents)
	if err := publisher.Publish(context.Background(), domain.OrderEvent{SessionID: "session-4"}); err == nil {
		t.Fatal("expected error for nil producer")
	}
}

func TestNewOrderEventPublisher_DefaultTopic(t *testing.T) {
	t.Parallel()

	publisher := NewOrderEventPublisher(nil, "")
	if publisher.topic != TopicOrderEvents {
		t.Fatalf("expected default topic %s, got %s", TopicOrderEvents, publisher.topic)
	}
}
