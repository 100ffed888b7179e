package app

import (
	"context"
	"time"

	"teambot/internal/ai"
	"teambot/internal/model"
	"teambot/internal/platform/rabbitmq"
	"teambot/internal/repository"
)

// Store interfaces are declared on the consumer side so services can be
// exercised against fakes; the gorm repositories satisfy them.

type BotStore interface {
	Create(bot *model.Bot) error
	GetByID(id string) (*model.Bot, error)
	Save(bot *model.Bot) error
	Delete(id string) error
	List(filter repository.BotListFilter) ([]model.Bot, int64, error)
	RecordUsage(id string, usedAt time.Time) error
}

type DocumentStore interface {
	Create(doc *model.Document) error
	GetByID(id string) (*model.Document, error)
	ListByBotID(botID string) ([]model.Document, error)
	ListCompletedByBotID(botID string, limit int) ([]model.Document, error)
	CountByBotID(botID string) (int64, error)
	ListIDsByBotID(botID string) ([]string, error)
	UpdateStatus(id, status string) error
	MarkCompleted(id, content string, metadata model.JSONMap, processedAt time.Time) error
	MarkFailed(id, reason string) error
	IncrementAttempts(id string) error
	SetVectorIndexID(id, vectorIndexID string) error
	Delete(id string) error
	DeleteByBotID(botID string) error
}

type ChunkStore interface {
	CreateBatch(chunks []model.DocumentChunk) error
	ListByDocumentID(documentID string) ([]model.DocumentChunk, error)
	FirstByDocumentID(documentID string) (*model.DocumentChunk, error)
	DeleteByDocumentID(documentID string) error
}

type ConversationStore interface {
	Create(conversation *model.Conversation) error
	GetByID(id string) (*model.Conversation, error)
	Save(conversation *model.Conversation) error
	ListByUser(userID, botID string, limit int) ([]model.Conversation, error)
	SoftDelete(id string) error
}

type MessageStore interface {
	Create(message *model.Message) error
	ListByConversationID(conversationID string) ([]model.Message, error)
}

type SquadStore interface {
	Create(squad *model.Squad) error
	GetByID(id string) (*model.Squad, error)
	ListByMember(userID string) ([]model.Squad, error)
	SquadIDsForUser(userID string) ([]string, error)
}

// LLMClient is the chat-completion surface of the model provider.
type LLMClient interface {
	Complete(ctx context.Context, messages []ai.ChatMessage, opts ai.ChatOptions) (*ai.CompletionResult, error)
}

// Embedder generates chunk embeddings at ingest time.
type Embedder interface {
	EmbedBatch(ctx context.Context, model string, texts []string) ([][]float32, error)
}

// IngestQueue hands document ingestion jobs to the background worker.
type IngestQueue interface {
	Publish(ctx context.Context, job rabbitmq.IngestJob) error
}

// MessageCache fronts the conversation message list in redis.
type MessageCache interface {
	GetMessages(ctx context.Context, conversationID string) ([]model.Message, bool, error)
	SetMessages(ctx context.Context, conversationID string, messages []model.Message) error
	Invalidate(ctx context.Context, conversationID string) error
	MarkDirty(ctx context.Context, conversationID string) error
	IsDirty(ctx context.Context, conversationID string) (bool, error)
}
