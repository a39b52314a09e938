package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/depotkit/depot/pkg/xmlutil"
)

const keyPrefix = "depot:proj:"

// RedisStore keeps projections as Redis hashes, one per document id.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int, logger *slog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	logger.Info("connected to redis", "addr", addr, "db", db)
	return &RedisStore{client: client, logger: logger}, nil
}

func (s *RedisStore) Create(ctx context.Context, p Projection) error {
	return s.write(ctx, p)
}

// Update replaces the stored hash. Stale fields from the previous
// projection are removed by deleting the key first.
func (s *RedisStore) Update(ctx context.Context, p Projection) error {
	if err := s.client.Del(ctx, keyPrefix+p.ID).Err(); err != nil {
		return fmt.Errorf("clearing projection %s: %w", p.ID, err)
	}
	return s.write(ctx, p)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("deleting projection %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) write(ctx context.Context, p Projection) error {
	values := map[string]string{
		"id":       p.ID,
		"type":     p.Type,
		"project":  p.Project,
		"label":    p.Label,
		"created":  xmlutil.FormatTime(p.CreatedAt),
		"modified": xmlutil.FormatTime(p.ModifiedAt),
	}
	for name, value := range p.Fields {
		values["meta:"+name] = value
	}
	if err := s.client.HSet(ctx, keyPrefix+p.ID, values).Err(); err != nil {
		return fmt.Errorf("writing projection %s: %w", p.ID, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
