package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/project-tktt/go-techwatch/internal/domain"
)

// Consumer consumes raw postings from the Redis queue
type Consumer struct {
	client    *redis.Client
	queueName string
	timeout   time.Duration
}

// NewConsumer creates a new queue consumer
func NewConsumer(client *redis.Client, queueName string, timeout time.Duration) *Consumer {
	if queueName == "" {
		queueName = "postings:raw"
	}
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Consumer{
		client:    client,
		queueName: queueName,
		timeout:   timeout,
	}
}

// Consume blocks and waits for a posting from the queue.
// Returns nil, nil if timeout occurs with nothing queued.
func (c *Consumer) Consume(ctx context.Context) (*domain.RawPosting, error) {
	result, err := c.client.BRPop(ctx, c.timeout, c.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Timeout, nothing available
		}
		return nil, fmt.Errorf("brpop: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var posting domain.RawPosting
	if err := json.Unmarshal([]byte(result[1]), &posting); err != nil {
		return nil, fmt.Errorf("unmarshal posting: %w", err)
	}

	return &posting, nil
}

// ConsumeBatch consumes up to maxBatch postings from the queue.
// Uses BRPOP to block-wait for the first item (prevents CPU spinning),
// then non-blocking RPOP to fill the rest of the batch.
func (c *Consumer) ConsumeBatch(ctx context.Context, maxBatch int) ([]*domain.RawPosting, error) {
	postings := make([]*domain.RawPosting, 0, maxBatch)

	result, err := c.client.BRPop(ctx, c.timeout, c.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return postings, nil // Timeout, nothing queued
		}
		return nil, fmt.Errorf("brpop: %w", err)
	}

	if len(result) >= 2 {
		var posting domain.RawPosting
		if err := json.Unmarshal([]byte(result[1]), &posting); err == nil {
			postings = append(postings, &posting)
		}
	}

	for i := 1; i < maxBatch; i++ {
		result, err := c.client.RPop(ctx, c.queueName).Result()
		if err != nil {
			if err == redis.Nil {
				break // Queue drained
			}
			return postings, fmt.Errorf("rpop: %w", err)
		}

		var posting domain.RawPosting
		if err := json.Unmarshal([]byte(result), &posting); err != nil {
			continue // Skip malformed payloads
		}

		postings = append(postings, &posting)
	}

	return postings, nil
}
