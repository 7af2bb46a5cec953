package dedup

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the seen-set in a Redis set keyed per source
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a Redis-backed seen-set store
func NewRedisStore(client *redis.Client, source string) *RedisStore {
	if source == "" {
		source = "default"
	}
	return &RedisStore{
		client: client,
		key:    fmt.Sprintf("postings:seen:%s", source),
	}
}

// LoadSeen reads the full seen-set in one SMEMBERS call
func (s *RedisStore) LoadSeen(ctx context.Context) (map[string]struct{}, error) {
	ids, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", s.key, err)
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return seen, nil
}

// MarkSeen adds an identifier to the set
func (s *RedisStore) MarkSeen(ctx context.Context, id string) error {
	if err := s.client.SAdd(ctx, s.key, id).Err(); err != nil {
		return fmt.Errorf("sadd %s: %w", s.key, err)
	}
	return nil
}
