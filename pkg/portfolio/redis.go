package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps records as JSON values in a Redis list, newest at the head.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a store on the list at key (DefaultKey if empty).
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{client: client, key: key}
}

// ConnectRedis creates a Redis client and verifies the connection with a ping.
func ConnectRedis(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	slog.Info("redis connected", "addr", addr, "db", db)
	return client, nil
}

func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal poster: %w", err)
	}
	if err := s.client.LPush(ctx, s.key, data).Err(); err != nil {
		return fmt.Errorf("save poster: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]Record, error) {
	records, _, err := s.scan(ctx)
	return records, err
}

func (s *RedisStore) Get(ctx context.Context, id int64) (Record, error) {
	records, _, err := s.scan(ctx)
	if err != nil {
		return Record{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}

// Delete removes the stored value of the record with id. The exact encoded
// value is passed to LREM, so records are never re-encoded.
func (s *RedisStore) Delete(ctx context.Context, id int64) error {
	records, raw, err := s.scan(ctx)
	if err != nil {
		return err
	}
	for i, r := range records {
		if r.ID != id {
			continue
		}
		if err := s.client.LRem(ctx, s.key, 1, raw[i]).Err(); err != nil {
			return fmt.Errorf("delete poster: %w", err)
		}
		return nil
	}
	return ErrNotFound
}

// scan reads the whole list. Values that fail to decode are logged and
// skipped; raw is index-aligned with records.
func (s *RedisStore) scan(ctx context.Context) (records []Record, raw []string, err error) {
	vals, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("list posters: %w", err)
	}
	records = make([]Record, 0, len(vals))
	raw = make([]string, 0, len(vals))
	for _, v := range vals {
		var rec Record
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			slog.Warn("skipping corrupt portfolio entry", "key", s.key, "error", err)
			continue
		}
		records = append(records, rec)
		raw = append(raw, v)
	}
	return records, raw, nil
}
