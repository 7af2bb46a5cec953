package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/project-tktt/go-techwatch/internal/domain"
)

// Publisher pushes raw postings to the Redis queue
type Publisher struct {
	client    *redis.Client
	queueName string
}

// NewPublisher creates a new queue publisher
func NewPublisher(client *redis.Client, queueName string) *Publisher {
	if queueName == "" {
		queueName = "postings:raw"
	}
	return &Publisher{
		client:    client,
		queueName: queueName,
	}
}

// Publish pushes a single raw posting to the queue
func (p *Publisher) Publish(ctx context.Context, posting *domain.RawPosting) error {
	data, err := json.Marshal(posting)
	if err != nil {
		return fmt.Errorf("marshal posting: %w", err)
	}

	if err := p.client.LPush(ctx, p.queueName, data).Err(); err != nil {
		return fmt.Errorf("lpush: %w", err)
	}

	return nil
}

// PublishBatch pushes multiple postings to the queue in one roundtrip
func (p *Publisher) PublishBatch(ctx context.Context, postings []*domain.RawPosting) error {
	if len(postings) == 0 {
		return nil
	}

	pipe := p.client.Pipeline()
	for _, posting := range postings {
		data, err := json.Marshal(posting)
		if err != nil {
			return fmt.Errorf("marshal posting: %w", err)
		}
		pipe.LPush(ctx, p.queueName, data)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("pipeline exec: %w", err)
	}

	return nil
}

// QueueLength returns the current queue length
func (p *Publisher) QueueLength(ctx context.Context) (int64, error) {
	return p.client.LLen(ctx, p.queueName).Result()
}
