/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package questions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/Seednode/quizroyale/royale"
)

const (
	keyPrefix = "quizroyale:set:"
	keySets   = "quizroyale:sets"
)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps each bank as one JSON value, with the set names indexed
// in a Redis set.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, set string) ([]royale.Question, error) {
	data, err := s.client.Get(ctx, keyPrefix+set).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, fmt.Errorf("%w: %s", ErrSetNotFound, set)
	case err != nil:
		return nil, fmt.Errorf("reading question set %s: %w", set, err)
	}

	var bank []royale.Question
	if err := json.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("decoding question set %s: %w", set, err)
	}

	return bank, nil
}

func (s *RedisStore) Put(ctx context.Context, set string, bank []royale.Question) error {
	if err := royale.ValidateBank(bank); err != nil {
		return err
	}

	data, err := json.Marshal(bank)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, keyPrefix+set, data, 0)
		pipe.SAdd(ctx, keySets, set)
		return nil
	})
	if err != nil {
		return fmt.Errorf("storing question set %s: %w", set, err)
	}

	return nil
}

func (s *RedisStore) Sets(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, keySets).Result()
	if err != nil {
		return nil, fmt.Errorf("listing question sets: %w", err)
	}
	sort.Strings(names)

	return names, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
