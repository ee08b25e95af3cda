// Package cache provides a Redis read-through cache that wraps any
// storage.Storage. Single records are cached under "student:<id>" as JSON;
// the list operation always goes to the wrapped backend.
//
// A delete leaves a tombstone under the key for one TTL instead of removing
// it. Cache fills after a miss use SET NX, so a fill racing with a delete
// can never bring the deleted record back. Save always overwrites.
//
// Redis is an optimisation only. If it cannot be reached, the failure is
// logged and the call is served by the backend.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aanand-mishra/student-management/internal/config"
	"github.com/aanand-mishra/student-management/internal/storage"
	"github.com/aanand-mishra/student-management/internal/types"
)

// PrefixStudent namespaces student keys.
const PrefixStudent = "student:"

// Tombstone is the value stored under a deleted student's key. It is not
// valid JSON, so it can never be mistaken for a cached record.
const Tombstone = "\x00deleted"

// StudentKey returns the cache key for a student id.
func StudentKey(id int64) string {
	return PrefixStudent + strconv.FormatInt(id, 10)
}

// Cache implements storage.Storage.
type Cache struct {
	next   storage.Storage
	client *redis.Client
	ttl    time.Duration
}

// New wraps next with a read-through cache on client. Entries and
// tombstones expire after ttl.
func New(next storage.Storage, client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{next: next, client: client, ttl: ttl}
}

// NewClient builds a redis client from config and checks it responds.
func NewClient(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache.NewClient: ping: %w", err)
	}

	return client, nil
}

// FindAll is not cached; it always reads the backend.
func (c *Cache) FindAll(ctx context.Context) ([]types.Student, error) {
	return c.next.FindAll(ctx)
}

// FindByID answers from Redis when it holds the record or a tombstone,
// otherwise reads the backend and fills the key if it is still empty.
func (c *Cache) FindByID(ctx context.Context, id int64) (types.Student, error) {
	key := StudentKey(id)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == Tombstone {
			return types.Student{}, storage.ErrNotFound
		}

		var student types.Student
		if err := json.Unmarshal(data, &student); err == nil {
			return student, nil
		}

		slog.Warn("discarding corrupt cache entry", slog.String("key", key))
		if err := c.client.Del(ctx, key).Err(); err != nil {
			slog.Warn("cache delete failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	case errors.Is(err, redis.Nil):
	default:
		slog.Warn("cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}

	student, err := c.next.FindByID(ctx, id)
	if err != nil {
		return types.Student{}, err
	}

	c.fill(ctx, student)
	return student, nil
}

// Save writes to the backend and then overwrites the cached copy,
// replacing any tombstone.
func (c *Cache) Save(ctx context.Context, student types.Student) (types.Student, error) {
	saved, err := c.next.Save(ctx, student)
	if err != nil {
		return types.Student{}, err
	}

	data, ok := encode(saved)
	if !ok {
		return saved, nil
	}

	key := StudentKey(saved.ID)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Warn("cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return saved, nil
}

// DeleteByID deletes from the backend and then tombstones the key.
func (c *Cache) DeleteByID(ctx context.Context, id int64) error {
	if err := c.next.DeleteByID(ctx, id); err != nil {
		return err
	}

	key := StudentKey(id)
	if err := c.client.Set(ctx, key, Tombstone, c.ttl).Err(); err != nil {
		// A stale entry would keep serving a deleted record until the TTL
		// expires.
		slog.Error("cache eviction failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
	return nil
}

// fill stores student only if the key is empty, so it never overwrites a
// newer Save or a tombstone written while the backend was being read.
func (c *Cache) fill(ctx context.Context, student types.Student) {
	data, ok := encode(student)
	if !ok {
		return
	}

	key := StudentKey(student.ID)
	if err := c.client.SetNX(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Warn("cache fill failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func encode(student types.Student) ([]byte, bool) {
	data, err := json.Marshal(student)
	if err != nil {
		slog.Warn("cache encode failed",
			slog.Int64("id", student.ID),
			slog.String("error", err.Error()))
		return nil, false
	}
	return data, true
}
