// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package flash stores one-shot user notifications between a redirect and the
page that follows it.

A handler that redirects after a successful form submission pushes a
[Message]; the next rendered page pops every pending message for the same
user and shows it once. Messages live in Redis with a TTL so an abandoned
notification never resurfaces days later.
*/
package flash

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/lexica/internal/platform/constants"
)

// # Messages

// Category drives how a message is styled.
type Category string

const (
	CategorySuccess Category = "success"
	CategoryError   Category = "error"
	CategoryInfo    Category = "info"
)

// Message is a single notification.
type Message struct {
	Category Category `json:"category"`
	Text     string   `json:"text"`
}

// Success builds a success message.
func Success(text string) Message { return Message{Category: CategorySuccess, Text: text} }

// Error builds an error message.
func Error(text string) Message { return Message{Category: CategoryError, Text: text} }

// Errors builds one error message per text.
func Errors(texts ...string) []Message {
	messages := make([]Message, 0, len(texts))
	for _, text := range texts {
		messages = append(messages, Error(text))
	}
	return messages
}

// Store persists pending messages per key (a user id).
type Store interface {
	Push(ctx context.Context, key string, messages ...Message) error
	Pop(ctx context.Context, key string) ([]Message, error)
}

// # Redis Store

// RedisStore keeps messages in a Redis list per key.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed [Store].
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Push appends messages and refreshes the list TTL.
func (store *RedisStore) Push(ctx context.Context, key string, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}

	values := make([]any, 0, len(messages))
	for _, message := range messages {
		encoded, err := json.Marshal(message)
		if err != nil {
			return fmt.Errorf("flash: failed to encode message: %w", err)
		}
		values = append(values, encoded)
	}

	redisKey := constants.RedisPrefixFlash + key
	_, err := store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, redisKey, values...)
		pipe.Expire(ctx, redisKey, store.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("flash: push failed: %w", err)
	}

	return nil
}

// Pop returns and deletes every pending message in one MULTI block, so two
// concurrent page loads never show the same message twice.
func (store *RedisStore) Pop(ctx context.Context, key string) ([]Message, error) {
	redisKey := constants.RedisPrefixFlash + key

	var values *redis.StringSliceCmd
	_, err := store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		values = pipe.LRange(ctx, redisKey, 0, -1)
		pipe.Del(ctx, redisKey)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("flash: pop failed: %w", err)
	}

	raw := values.Val()
	messages := make([]Message, 0, len(raw))
	for _, item := range raw {
		var message Message
		if err := json.Unmarshal([]byte(item), &message); err != nil {
			continue
		}
		messages = append(messages, message)
	}

	return messages, nil
}

// # Memory Store

// MemoryStore is an in-process [Store], used by tests and single-node
// development setups.
type MemoryStore struct {
	mu       sync.Mutex
	messages map[string][]Message
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{messages: make(map[string][]Message)}
}

func (store *MemoryStore) Push(_ context.Context, key string, messages ...Message) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.messages[key] = append(store.messages[key], messages...)
	return nil
}

func (store *MemoryStore) Pop(_ context.Context, key string) ([]Message, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	messages := store.messages[key]
	delete(store.messages, key)
	return messages, nil
}
