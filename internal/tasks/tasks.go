// Package tasks carries named job requests over the Kafka task topic.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-crm-service/internal/jobs"
	"github.com/fekuna/omnipos-crm-service/pkg/logger"
)

// Message is the task envelope, e.g. {"task":"generate_crm_report"}.
type Message struct {
	Task       string    `json:"task"`
	EnqueuedAt time.Time `json:"enqueued_at,omitempty"`
}

type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Enqueue publishes a request to run the named job on a worker.
func Enqueue(ctx context.Context, pub Publisher, task string) error {
	msg := Message{Task: task, EnqueuedAt: time.Now().UTC()}
	if err := pub.PublishJSON(ctx, task, msg); err != nil {
		return fmt.Errorf("enqueue %s: %w", task, err)
	}
	return nil
}

// MessageReader is satisfied by *broker.KafkaConsumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type TaskListener struct {
	reader     MessageReader
	jobs       *jobs.Registry
	logger     logger.ZapLogger
	retryDelay time.Duration
}

func NewTaskListener(reader MessageReader, registry *jobs.Registry, logger logger.ZapLogger) *TaskListener {
	return &TaskListener{
		reader:     reader,
		jobs:       registry,
		logger:     logger,
		retryDelay: time.Second,
	}
}

// Start consumes until ctx is cancelled. Jobs run one at a time in arrival order.
func (l *TaskListener) Start(ctx context.Context) {
	l.logger.Info("Starting Task Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Task Kafka Listener")
			return
		default:
			msg, err := l.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(l.retryDelay):
				}
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *TaskListener) processMessage(ctx context.Context, value []byte) {
	var msg Message
	if err := json.Unmarshal(value, &msg); err != nil {
		l.logger.Error("Failed to unmarshal task", zap.Error(err))
		return
	}

	job, ok := l.jobs.Get(msg.Task)
	if !ok {
		l.logger.Warn("Skipping unknown task", zap.String("task", msg.Task))
		return
	}

	l.logger.Info("Running task", zap.String("task", msg.Task))
	job.Run(ctx)
}
