// Package kafka carries document ingestion tasks between the upload
// surface and the processing pipeline.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"corpus-qa-go/internal/config"
	"corpus-qa-go/pkg/database"
	"corpus-qa-go/pkg/log"
	"corpus-qa-go/pkg/tasks"

	"github.com/segmentio/kafka-go"
)

// TaskProcessor is any service able to process one ingestion task. It
// decouples the consumer from the concrete pipeline implementation.
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.DocumentProcessingTask) error
}

var producer *kafka.Writer

// InitProducer initializes the ingestion task producer.
func InitProducer(cfg config.KafkaConfig) {
	producer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka producer initialized")
}

// ProduceDocumentTask enqueues one document processing task.
func ProduceDocumentTask(task tasks.DocumentProcessingTask) error {
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}

	return producer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(task.DocHash),
			Value: taskBytes,
		},
	)
}

// StartConsumer consumes ingestion tasks until the process exits.
// Failures are document-scoped: a task is retried up to three times
// (tracked in Redis) and then committed away so one broken document
// never blocks the rest of the queue.
func StartConsumer(cfg config.KafkaConfig, processor TaskProcessor) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Brokers},
		Topic:    cfg.Topic,
		GroupID:  "corpus-qa-ingest",
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})

	log.Infof("Kafka consumer started on topic '%s'", cfg.Topic)

	for {
		m, err := r.FetchMessage(context.Background())
		if err != nil {
			log.Error("failed to read message from Kafka", err)
			break
		}

		var task tasks.DocumentProcessingTask
		if err := json.Unmarshal(m.Value, &task); err != nil {
			log.Errorf("malformed queue message: %v, value: %s", err, string(m.Value))
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("failed to commit malformed message: %v", err)
			}
			continue
		}

		log.Infof("processing document task: hash=%s, file=%s", task.DocHash, task.Filename)
		if err := processor.Process(context.Background(), task); err != nil {
			log.Errorf("document task failed: hash=%s, error: %v", task.DocHash, err)

			attemptsKey := fmt.Sprintf("ingest:attempts:%s", task.DocHash)
			attempts, incErr := database.RDB.Incr(context.Background(), attemptsKey).Result()
			if incErr != nil {
				// Redis unavailable; leave the offset uncommitted and
				// let Kafka redeliver.
				continue
			}
			_ = database.RDB.Expire(context.Background(), attemptsKey, 24*time.Hour).Err()

			if attempts >= 3 {
				log.Errorf("document task failed %d times, giving up: hash=%s", attempts, task.DocHash)
				if err := r.CommitMessages(context.Background(), m); err != nil {
					log.Errorf("failed to commit offset: %v", err)
				}
			}
		} else {
			log.Infof("document task completed: hash=%s", task.DocHash)
			_ = database.RDB.Del(context.Background(), fmt.Sprintf("ingest:attempts:%s", task.DocHash)).Err()
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("failed to commit offset: %v", err)
			}
		}
	}
}
