package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"predtrack-go/internal/sample"
)

// RedisStore keeps each instrument's history as a JSON array under the
// "history:{topicId}" key.
type RedisStore struct {
	client  *redis.Client
	limit   int
	timeout time.Duration
	log     zerolog.Logger
}

// NewRedisStore connects to redis and verifies the connection with a ping.
func NewRedisStore(addr, password string, db, limit int, log zerolog.Logger) (*RedisStore, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	if limit <= 0 {
		limit = sample.DefaultLimit
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{client: client, limit: limit, timeout: 5 * time.Second, log: log}, nil
}

// Load reads the stored history, filtering malformed entries. Connection
// problems yield an empty sequence.
func (s *RedisStore) Load(topicID int64) []sample.Sample {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	data, err := s.client.Get(ctx, Key(topicID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Int64("topic", topicID).Msg("history read failed")
		}
		return nil
	}
	return decodeSamples(data, s.limit)
}

// Append adds one sample and persists the truncated sequence. Write failures
// are logged and swallowed.
func (s *RedisStore) Append(topicID int64, smp sample.Sample) []sample.Sample {
	samples := truncate(append(s.Load(topicID), smp), s.limit)
	data, err := json.Marshal(samples)
	if err != nil {
		s.log.Warn().Err(err).Int64("topic", topicID).Msg("history encode failed")
		return samples
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.client.Set(ctx, Key(topicID), data, 0).Err(); err != nil {
		s.log.Warn().Err(err).Int64("topic", topicID).Msg("history write failed")
	}
	return samples
}

// Clear deletes the instrument's key. Deleting a missing key is fine.
func (s *RedisStore) Clear(topicID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.client.Del(ctx, Key(topicID)).Err(); err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	return nil
}

// Close releases the redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
