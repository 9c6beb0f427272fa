package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iwvelando/str-forecast/pkg/snapshot"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis keeps every snapshot as a JSON field of one hash.
type Redis struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedis connects to the redis server at addr. Snapshots live in the hash
// "<prefix>properties".
func NewRedis(ctx context.Context, addr, prefix string, logger *zap.Logger) (*Redis, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedisFromClient(client, prefix, logger), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client, prefix string, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, key: prefix + "properties", logger: logger}
}

// Save implements Store.
func (r *Redis) Save(ctx context.Context, name string, s snapshot.Snapshot) error {
	name, err := checkName(name)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(prepare(name, s))
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", name, err)
	}
	if err := r.client.HSet(ctx, r.key, name, payload).Err(); err != nil {
		return fmt.Errorf("save snapshot %s: %w", name, err)
	}
	r.logger.Debug("saved property",
		zap.String("op", "store.Redis.Save"),
		zap.String("property", name),
	)
	return nil
}

// LoadAll implements Store.
func (r *Redis) LoadAll(ctx context.Context) ([]snapshot.Snapshot, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}
	out := make([]snapshot.Snapshot, 0, len(fields))
	for name, payload := range fields {
		var s snapshot.Snapshot
		if err := json.Unmarshal([]byte(payload), &s); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", name, err)
		}
		out = append(out, prepare(name, s))
	}
	sortByName(out)
	return out, nil
}

// Delete implements Store.
func (r *Redis) Delete(ctx context.Context, name string) error {
	name, err := checkName(name)
	if err != nil {
		return err
	}
	if err := r.client.HDel(ctx, r.key, name).Err(); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", name, err)
	}
	return nil
}

// Close implements Store.
func (r *Redis) Close(_ context.Context) error {
	return r.client.Close()
}
