package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/rahmet/internal/domain"
	"github.com/vladislavdragonenkov/rahmet/internal/messaging/kafka"
)

// initKafkaPublisher создаёт publisher событий заказа, если заданы brokers.
// Без brokers или при ошибке подключения возвращается domain.NopPublisher:
// отсутствие брокера не мешает оформлять заказы.
func initKafkaPublisher(brokers []string, topic string, logger *log.Entry) (domain.EventPublisher, *kafka.Producer, error) {
	if len(brokers) == 0 {
		return domain.NopPublisher{}, nil, nil
	}

	producer, err := kafka.NewProducer(brokers, kafka.WithProducerLogger(logger.WithField("component", "kafka-producer")))
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return domain.NopPublisher{}, nil, err
	}

	logger.WithFields(log.Fields{
		"brokers": brokers,
		"topic":   topic,
	}).Info("kafka producer initialized")
	return kafka.NewOrderEventPublisher(producer, topic), producer, nil
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
