package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/rahmet/internal/version"
)

// Заголовки сообщений, по которым потребители фильтруют события без разбора тела.
const (
	HeaderEventType   = "event_type"
	HeaderContentType = "content_type"
	HeaderProducer    = "producer"
)

// ProducerOptions настраивает Producer.
type ProducerOptions struct {
	ClientID string
	Logger   *log.Entry
}

// ProducerOption изменяет ProducerOptions.
type ProducerOption func(*ProducerOptions)

// WithClientID задаёт client.id, видимый брокеру.
func WithClientID(id string) ProducerOption {
	return func(o *ProducerOptions) {
		o.ClientID = id
	}
}

// WithProducerLogger задаёт logger producer'а.
func WithProducerLogger(logger *log.Entry) ProducerOption {
	return func(o *ProducerOptions) {
		o.Logger = logger
	}
}

// Producer отправляет JSON-события заказов в Kafka.
type Producer struct {
	producer sarama.SyncProducer
	logger   *log.Entry
}

// NewProducer подключается к брокерам. Сообщения подтверждаются всеми
// репликами, producer идемпотентный.
func NewProducer(brokers []string, opts ...ProducerOption) (*Producer, error) {
	options := ProducerOptions{ClientID: "rahmet"}
	for _, opt := range opts {
		opt(&options)
	}

	config := sarama.NewConfig()
	config.ClientID = options.ClientID
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1 // обязательное условие идемпотентности

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	p := newProducer(producer)
	if options.Logger != nil {
		p.logger = options.Logger
	}
	return p, nil
}

func newProducer(producer sarama.SyncProducer) *Producer {
	return &Producer{
		producer: producer,
		logger:   log.WithField("component", "kafka-producer"),
	}
}

// PublishEvent сериализует событие в JSON и отправляет его в topic.
// eventType попадает в заголовок HeaderEventType.
func (p *Producer) PublishEvent(topic, key, eventType string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte(HeaderEventType), Value: []byte(eventType)},
			{Key: []byte(HeaderContentType), Value: []byte("application/json")},
			{Key: []byte(HeaderProducer), Value: []byte(version.UserAgent())},
		},
		Timestamp: time.Now(),
	}

	fields := log.Fields{
		"topic":      topic,
		"key":        key,
		"event_type": eventType,
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithFields(fields).Error("failed to send event to kafka")
		return fmt.Errorf("failed to send %s event: %w", eventType, err)
	}

	fields["partition"] = partition
	fields["offset"] = offset
	p.logger.WithFields(fields).Debug("event sent to kafka")
	return nil
}

// Close закрывает producer. Безопасен для nil.
func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}
