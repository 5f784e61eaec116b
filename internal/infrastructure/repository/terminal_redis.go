package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sangkips/trademate-console/internal/domain/entity"
	domainRepo "github.com/sangkips/trademate-console/internal/domain/repository"
)

// maxTxRetries bounds optimistic retries when two requests race on one terminal.
const maxTxRetries = 5

type redisTerminalRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisTerminalRepository stores terminals as JSON strings, letting several console
// instances share sessions. Updates use WATCH/MULTI so concurrent writers retry.
func NewRedisTerminalRepository(client *redis.Client, prefix string, ttl time.Duration) domainRepo.TerminalRepository {
	return &redisTerminalRepository{client: client, prefix: prefix, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and checks the connection
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (r *redisTerminalRepository) key(sessionID string) string {
	return r.prefix + sessionID
}

func decodeTerminal(sessionID string, data []byte, err error) (*entity.Terminal, error) {
	if errors.Is(err, redis.Nil) {
		return entity.NewTerminal(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get terminal: %w", err)
	}
	var t entity.Terminal
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode terminal: %w", err)
	}
	return &t, nil
}

func (r *redisTerminalRepository) Get(ctx context.Context, sessionID string) (*entity.Terminal, error) {
	data, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	return decodeTerminal(sessionID, data, err)
}

func (r *redisTerminalRepository) Update(ctx context.Context, sessionID string, fn func(*entity.Terminal) error) (*entity.Terminal, error) {
	key := r.key(sessionID)
	var (
		result *entity.Terminal
		fnErr  error
	)

	txf := func(tx *redis.Tx) error {
		data, getErr := tx.Get(ctx, key).Bytes()
		t, err := decodeTerminal(sessionID, data, getErr)
		if err != nil {
			return err
		}
		if fnErr = fn(t); fnErr != nil {
			// hand back the stored state untouched
			result, err = decodeTerminal(sessionID, data, getErr)
			return err
		}
		t.UpdatedAt = time.Now()
		encoded, err := json.Marshal(t)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, r.ttl)
			return nil
		})
		result = t
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return result, fnErr
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("terminal %s: too many concurrent updates", sessionID)
}

func (r *redisTerminalRepository) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.key(sessionID)).Err()
}
