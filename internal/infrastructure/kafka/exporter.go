package kafka

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/http_traffic_log_service/internal/domain/entity"
)

// KafkaExporter mirrors captured entries to a topic so the dashboard pipeline
// can tail live traffic without polling the store.
type KafkaExporter struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaExporter(topic string) *KafkaExporter {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BOOTSTRAP_SERVER"),
	})
	if err != nil {
		log.Fatalf("error creating producer: %v", err)
	}

	return &KafkaExporter{
		producer: producer,
		topic:    topic,
	}
}

const deliveryTimeout = 3 * time.Second

func (e *KafkaExporter) Export(entry entity.HTTPLogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding log entry %s: %w", entry.ID, err)
	}

	// Buffered and never closed: a report arriving after the timeout lands in
	// the buffer instead of panicking the producer's delivery goroutine.
	deliveryChan := make(chan kafka.Event, 1)

	err = e.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &e.topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(entry.SessionID),
		Value: data,
	}, deliveryChan)

	if err != nil {
		return err
	}

	return awaitDelivery(deliveryChan, deliveryTimeout)
}

func awaitDelivery(deliveryChan chan kafka.Event, timeout time.Duration) error {
	select {
	case ev := <-deliveryChan:
		m := ev.(*kafka.Message)
		if m.TopicPartition.Error != nil {
			return m.TopicPartition.Error
		}
		return nil
	case <-time.After(timeout):
		return kafka.NewError(kafka.ErrTimedOut, "delivery timeout", false)
	}
}

func (e *KafkaExporter) Close() {
	e.producer.Flush(15 * 1000)
	e.producer.Close()
}
