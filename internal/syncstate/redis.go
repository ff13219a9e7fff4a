package syncstate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"tcg-collection-api/internal/model"
)

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// RedisStore keeps reports as JSON fields of one Redis hash.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     5,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}

	log.Printf("[RedisStore] Connected to %s (key=%s)", cfg.Addr, latestKey(cfg.KeyPrefix))
	return &RedisStore{
		client: client,
		key:    latestKey(cfg.KeyPrefix),
		ttl:    cfg.TTL,
	}, nil
}

func latestKey(prefix string) string {
	if prefix == "" {
		prefix = "tcg:sync"
	}
	return prefix + ":latest"
}

// Record saves a report and refreshes the hash TTL.
func (s *RedisStore) Record(ctx context.Context, report model.SyncReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode sync report: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key, report.Key(), data)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record sync report: %w", err)
	}
	return nil
}

// Latest returns the stored reports, most recently started first.
// Fields that fail to decode are logged and skipped.
func (s *RedisStore) Latest(ctx context.Context) ([]model.SyncReport, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load sync reports: %w", err)
	}

	reports := make([]model.SyncReport, 0, len(fields))
	for field, raw := range fields {
		var r model.SyncReport
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			log.Printf("[RedisStore] Skipping undecodable report %s: %v", field, err)
			continue
		}
		reports = append(reports, r)
	}

	sortReports(reports)
	return reports, nil
}

// Backend returns "redis".
func (s *RedisStore) Backend() string { return "redis" }

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
