package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/adaptutor/internal/learner"
)

const redisKeyPrefix = "adaptutor:student:"

// Redis stores encoded students under one key each. Put uses WATCH and a
// MULTI pipeline so the version check and write are atomic.
type Redis struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects using a redis:// URL and verifies the connection.
func OpenRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedis(client, redisKeyPrefix), nil
}

// NewRedis wraps an existing client. prefix namespaces the keys.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(id string) string {
	return r.prefix + id
}

func (r *Redis) Get(ctx context.Context, id string) (*learner.Student, error) {
	b, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get student %s: %w", id, err)
	}
	return learner.Decode(b)
}

func (r *Redis) Put(ctx context.Context, st *learner.Student) error {
	key := r.key(st.ID)
	next := *st
	next.Version = st.Version + 1
	data, err := next.Encode()
	if err != nil {
		return err
	}

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		var current int64
		b, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("read version for %s: %w", st.ID, err)
		default:
			stored, err := learner.Decode(b)
			if err != nil {
				return err
			}
			current = stored.Version
		}
		if current != st.Version {
			return conflict(st.ID)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return conflict(st.ID)
	}
	if err != nil {
		return err
	}
	st.Version = next.Version
	st.TakePending()
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
