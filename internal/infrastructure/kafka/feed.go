package kafka

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/http_traffic_log_service/internal/domain/entity"
)

// KafkaFeed tails the mirror topic and emits decoded entries. The dashboard
// uses it to push live traffic to connected clients.
type KafkaFeed struct {
	consumer            *kafka.Consumer
	entries             chan entity.HTTPLogEntry
	done                chan struct{}
	pausedPartitions    map[int32]bool
	pauseMutex          sync.Mutex
	bufferHighWaterMark int
	bufferLowWaterMark  int
	commitChan          chan kafka.TopicPartition
}

func NewKafkaFeed(topic, groupID string) *KafkaFeed {
	config := &kafka.ConfigMap{
		"bootstrap.servers":      os.Getenv("KAFKA_BOOTSTRAP_SERVER"),
		"group.id":               groupID,
		"auto.offset.reset":      "latest",
		"enable.auto.commit":     "false",
		"session.timeout.ms":     10000,
		"heartbeat.interval.ms":  3000,
		"go.events.channel.size": 10000,
	}

	consumer, err := kafka.NewConsumer(config)
	if err != nil {
		log.Fatalf("error creating consumer: %v", err)
	}

	if err := consumer.Subscribe(topic, nil); err != nil {
		log.Fatalf("error subscribing to topic: %v", err)
	}

	f := &KafkaFeed{
		consumer:            consumer,
		entries:             make(chan entity.HTTPLogEntry, 10000),
		done:                make(chan struct{}),
		pausedPartitions:    make(map[int32]bool),
		bufferHighWaterMark: 8000,
		bufferLowWaterMark:  2000,
		commitChan:          make(chan kafka.TopicPartition, 10000),
	}

	go f.manageBackpressure()
	go f.consume()
	go f.commitWorker()
	return f
}

func (f *KafkaFeed) consume() {
	defer close(f.entries)

	for {
		select {
		case <-f.done:
			return
		default:
			ev := f.consumer.Poll(100)
			if ev == nil {
				continue
			}

			switch e := ev.(type) {
			case *kafka.Message:
				var entry entity.HTTPLogEntry
				if err := json.Unmarshal(e.Value, &entry); err != nil {
					log.Printf("skipping undecodable feed message: %v", err)
					f.commitChan <- e.TopicPartition
					continue
				}
				f.entries <- entry
				f.commitChan <- e.TopicPartition
			case kafka.Error:
				log.Printf("consumer error: %v", e)
			}
		}
	}
}

func (f *KafkaFeed) manageBackpressure() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			bufferLevel := len(f.entries)
			if bufferLevel >= f.bufferHighWaterMark {
				f.pauseConsumption()
			} else if bufferLevel <= f.bufferLowWaterMark {
				f.resumeConsumption()
			}

		case <-f.done:
			return
		}
	}
}

func (f *KafkaFeed) pauseConsumption() {
	f.pauseMutex.Lock()
	defer f.pauseMutex.Unlock()

	assigned, err := f.consumer.Assignment()
	if err != nil {
		log.Printf("error getting partitions: %v", err)
		return
	}

	if toPause := partitionsToPause(assigned, f.pausedPartitions); len(toPause) > 0 {
		f.consumer.Pause(toPause)
	}
}

func (f *KafkaFeed) resumeConsumption() {
	f.pauseMutex.Lock()
	defer f.pauseMutex.Unlock()

	assigned, err := f.consumer.Assignment()
	if err != nil {
		log.Printf("error getting partitions: %v", err)
		return
	}

	if toResume := partitionsToResume(assigned, f.pausedPartitions); len(toResume) > 0 {
		f.consumer.Resume(toResume)
	}
}

// partitionsToPause marks every assigned partition not yet paused and returns
// them. The map is keyed by partition number so partitions of one topic pause
// and resume independently.
func partitionsToPause(assigned []kafka.TopicPartition, paused map[int32]bool) []kafka.TopicPartition {
	var out []kafka.TopicPartition
	for _, tp := range assigned {
		if paused[tp.Partition] {
			continue
		}
		paused[tp.Partition] = true
		out = append(out, tp)
	}
	return out
}

func partitionsToResume(assigned []kafka.TopicPartition, paused map[int32]bool) []kafka.TopicPartition {
	var out []kafka.TopicPartition
	for _, tp := range assigned {
		if !paused[tp.Partition] {
			continue
		}
		paused[tp.Partition] = false
		out = append(out, tp)
	}
	return out
}

func (f *KafkaFeed) commitWorker() {
	var batch []kafka.TopicPartition
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case tp := <-f.commitChan:
			batch = append(batch, tp)
			if len(batch) >= 1000 {
				f.commitBatch(batch)
				batch = nil
			}

		case <-ticker.C:
			if len(batch) > 0 {
				f.commitBatch(batch)
				batch = nil
			}

		case <-f.done:
			f.commitBatch(batch)
			return
		}
	}
}

func (f *KafkaFeed) commitBatch(batch []kafka.TopicPartition) {
	if len(batch) == 0 {
		return
	}

	offsets := make([]kafka.TopicPartition, 0, len(batch))
	for _, tp := range batch {
		offsets = append(offsets, kafka.TopicPartition{
			Topic:     tp.Topic,
			Partition: tp.Partition,
			Offset:    tp.Offset + 1,
		})
	}

	if _, err := f.consumer.CommitOffsets(offsets); err != nil {
		log.Printf("commit error: %v", err)
	}
}

func (f *KafkaFeed) Entries() <-chan entity.HTTPLogEntry {
	return f.entries
}

func (f *KafkaFeed) Close() {
	close(f.done)
	f.consumer.Close()
}
