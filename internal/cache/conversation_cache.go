package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"teambot/internal/model"
)

// ConversationCache keeps recently fetched message lists in redis. A
// short-lived dirty marker set on every write suppresses caching while
// a turn is in flight, so readers fall through to the database.
type ConversationCache struct {
	client         *redisv9.Client
	messagesTTL    time.Duration
	dirtyMarkerTTL time.Duration
}

func NewConversationCache(client *redisv9.Client, messagesTTL, dirtyMarkerTTL time.Duration) *ConversationCache {
	if messagesTTL <= 0 {
		messagesTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &ConversationCache{
		client:         client,
		messagesTTL:    messagesTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

func (c *ConversationCache) GetMessages(ctx context.Context, conversationID string) ([]model.Message, bool, error) {
	raw, err := c.client.Get(ctx, c.messagesKey(conversationID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get messages failed: %w", err)
	}

	var messages []model.Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached messages failed: %w", err)
	}
	return messages, true, nil
}

func (c *ConversationCache) SetMessages(ctx context.Context, conversationID string, messages []model.Message) error {
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal messages cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.messagesKey(conversationID), payload, c.messagesTTL).Err(); err != nil {
		return fmt.Errorf("redis set messages failed: %w", err)
	}
	return nil
}

func (c *ConversationCache) Invalidate(ctx context.Context, conversationID string) error {
	if err := c.client.Del(ctx, c.messagesKey(conversationID)).Err(); err != nil {
		return fmt.Errorf("redis delete messages failed: %w", err)
	}
	return nil
}

func (c *ConversationCache) MarkDirty(ctx context.Context, conversationID string) error {
	if err := c.client.Set(ctx, c.dirtyKey(conversationID), "1", c.dirtyMarkerTTL).Err(); err != nil {
		return fmt.Errorf("redis set dirty marker failed: %w", err)
	}
	return nil
}

func (c *ConversationCache) IsDirty(ctx context.Context, conversationID string) (bool, error) {
	exists, err := c.client.Exists(ctx, c.dirtyKey(conversationID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}

func (c *ConversationCache) messagesKey(conversationID string) string {
	return "conversation:messages:" + conversationID
}

func (c *ConversationCache) dirtyKey(conversationID string) string {
	return "conversation:messages:dirty:" + conversationID
}
