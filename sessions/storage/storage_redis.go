package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const authChangedChannel = "auth-changed"

// RedisStorage keeps the entries in Redis under a key prefix so that several
// processes (the terminal equivalent of browser tabs) share one session. It
// also implements Notifier over Redis pub/sub.
type RedisStorage struct {
	client     *redis.Client
	prefix     string
	instanceID string
}

var (
	_ Storage  = (*RedisStorage)(nil)
	_ Notifier = (*RedisStorage)(nil)
)

// NewRedisStorageFromURL connects to redisURL ("redis://host:6379/0").
func NewRedisStorageFromURL(ctx context.Context, redisURL, prefix string) (*RedisStorage, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("[storage.NewRedisStorageFromURL] redis url is required")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("[storage.NewRedisStorageFromURL] parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[storage.NewRedisStorageFromURL] redis ping failed: %w", err)
	}
	return NewRedisStorage(client, prefix), nil
}

func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	return &RedisStorage{
		client:     client,
		prefix:     prefix,
		instanceID: uuid.NewString(),
	}
}

func (s *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("[RedisStorage.Get] %w", err)
	}
	return value, nil
}

func (s *RedisStorage) SetAll(ctx context.Context, entries map[string]string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(ctx, s.key(k), v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("[RedisStorage.SetAll] %w", err)
	}
	return nil
}

func (s *RedisStorage) DeleteAll(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, 0, len(keys))
	for _, k := range keys {
		prefixed = append(prefixed, s.key(k))
	}
	if err := s.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("[RedisStorage.DeleteAll] %w", err)
	}
	return nil
}

func (s *RedisStorage) Close() error {
	return s.client.Close()
}

// Publish announces a session change to every other instance.
func (s *RedisStorage) Publish(ctx context.Context) error {
	if err := s.client.Publish(ctx, s.key(authChangedChannel), s.instanceID).Err(); err != nil {
		return fmt.Errorf("[RedisStorage.Publish] %w", err)
	}
	return nil
}

func (s *RedisStorage) Listen(ctx context.Context, fn func()) error {
	sub := s.client.Subscribe(ctx, s.key(authChangedChannel))
	defer sub.Close()

	// wait for the subscription to be confirmed before reporting readiness
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("[RedisStorage.Listen] subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if msg.Payload == s.instanceID {
				continue
			}
			log.Debug().Str("channel", msg.Channel).Msg("auth changed in another instance")
			fn()
		}
	}
}

func (s *RedisStorage) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}
