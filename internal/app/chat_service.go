package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"teambot/internal/ai"
	"teambot/internal/model"
)

const (
	conversationTitleLength = 50
	fallbackSystemPrompt    = "You are a helpful assistant."
)

// ChatService drives one chat turn end to end: conversation resolution,
// message persistence, retrieval, the model call, and bot usage stats.
type ChatService struct {
	botSvc        *BotService
	retrieval     *RetrievalService
	bots          BotStore
	docs          DocumentStore
	conversations ConversationStore
	messages      MessageStore
	llm           LLMClient
	cache         MessageCache
	logger        *zap.Logger
}

func NewChatService(
	botSvc *BotService,
	retrieval *RetrievalService,
	bots BotStore,
	docs DocumentStore,
	conversations ConversationStore,
	messages MessageStore,
	llm LLMClient,
	cache MessageCache,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		botSvc:        botSvc,
		retrieval:     retrieval,
		bots:          bots,
		docs:          docs,
		conversations: conversations,
		messages:      messages,
		llm:           llm,
		cache:         cache,
		logger:        logger,
	}
}

type SendMessageInput struct {
	UserID         string
	BotID          string
	ConversationID string
	Content        string
}

type SendMessageResult struct {
	Conversation     *model.Conversation `json:"conversation"`
	UserMessage      *model.Message      `json:"userMessage"`
	AssistantMessage *model.Message      `json:"assistantMessage"`
}

type ConversationDetail struct {
	Conversation *model.Conversation `json:"conversation"`
	Messages     []model.Message     `json:"messages"`
}

func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error) {
	if input.UserID == "" || input.BotID == "" {
		return nil, ErrInvalidInput
	}
	content := strings.TrimSpace(input.Content)
	if content == "" || len(content) > 4000 {
		return nil, ErrInvalidInput
	}

	bot, err := s.botSvc.GetBot(input.BotID, input.UserID)
	if err != nil {
		return nil, err
	}

	conversation, err := s.resolveConversation(input, content)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.MarkDirty(ctx, conversation.ID)
		_ = s.cache.Invalidate(ctx, conversation.ID)
	}

	userMessage := &model.Message{
		ConversationID: conversation.ID,
		Role:           model.RoleUser,
		Content:        content,
		UserID:         input.UserID,
	}
	if err := s.messages.Create(userMessage); err != nil {
		return nil, err
	}
	conversation.MessageCount++
	if err := s.conversations.Save(conversation); err != nil {
		return nil, err
	}

	sources := s.gatherContext(ctx, bot, content)

	completion, err := s.llm.Complete(ctx, buildPrompt(bot, sources, content), ai.ChatOptions{
		Model:       bot.Config.Model,
		Temperature: bot.Config.Temperature,
		MaxTokens:   bot.Config.MaxTokens,
	})
	if err != nil {
		// The user message stays persisted: the turn fails from the
		// caller's perspective but the transcript keeps what was said.
		s.logger.Error("llm completion failed",
			zap.String("bot_id", bot.ID),
			zap.String("conversation_id", conversation.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrAIService, err)
	}

	assistantMessage := &model.Message{
		ConversationID: conversation.ID,
		Role:           model.RoleAssistant,
		Content:        completion.Content,
		Metadata: model.MessageMetadata{
			Sources: sources,
			Tokens:  completion.Usage.TotalTokens,
			Model:   completion.Model,
		},
	}
	if err := s.messages.Create(assistantMessage); err != nil {
		return nil, err
	}
	conversation.MessageCount++
	if err := s.conversations.Save(conversation); err != nil {
		return nil, err
	}

	// Best effort, not transactional with the writes above.
	if err := s.bots.RecordUsage(bot.ID, time.Now()); err != nil {
		s.logger.Warn("record bot usage failed", zap.String("bot_id", bot.ID), zap.Error(err))
	}

	return &SendMessageResult{
		Conversation:     conversation,
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
	}, nil
}

func (s *ChatService) resolveConversation(input SendMessageInput, content string) (*model.Conversation, error) {
	if input.ConversationID != "" {
		conversation, err := s.conversations.GetByID(input.ConversationID)
		if err != nil {
			return nil, err
		}
		if conversation == nil {
			return nil, ErrConversationNotFound
		}
		if conversation.UserID != input.UserID {
			return nil, ErrForbidden
		}
		return conversation, nil
	}

	conversation := &model.Conversation{
		BotID:    input.BotID,
		UserID:   input.UserID,
		Title:    truncateRunes(content, conversationTitleLength),
		IsActive: true,
	}
	if err := s.conversations.Create(conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

func (s *ChatService) gatherContext(ctx context.Context, bot *model.Bot, query string) []model.DocumentSource {
	if !bot.Config.EnableRAG {
		return nil
	}
	count, err := s.docs.CountByBotID(bot.ID)
	if err != nil {
		s.logger.Warn("count bot documents failed", zap.String("bot_id", bot.ID), zap.Error(err))
		return nil
	}
	if count == 0 {
		return nil
	}
	topK := bot.Config.RAGTopK
	if topK <= 0 {
		topK = defaultTopK
	}
	return s.retrieval.SearchDocuments(ctx, bot.ID, query, topK)
}

// buildPrompt assembles system instructions, the optional retrieved
// context block, and the user turn.
func buildPrompt(bot *model.Bot, sources []model.DocumentSource, content string) []ai.ChatMessage {
	systemPrompt := bot.Config.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = bot.Instructions
	}
	if systemPrompt == "" {
		systemPrompt = fallbackSystemPrompt
	}

	messages := make([]ai.ChatMessage, 0, 3)
	messages = append(messages, ai.ChatMessage{Role: model.RoleSystem, Content: systemPrompt})

	if len(sources) > 0 {
		var b strings.Builder
		b.WriteString("Here is relevant context from the knowledge base:\n\n")
		for i, src := range sources {
			if i > 0 {
				b.WriteString("\n\n")
			}
			fmt.Fprintf(&b, "[Document %d: %s]\n%s\n(Relevance: %.1f%%)",
				i+1, src.DocumentName, src.Snippet, src.Score*100)
		}
		messages = append(messages, ai.ChatMessage{Role: model.RoleSystem, Content: b.String()})
	}

	messages = append(messages, ai.ChatMessage{Role: model.RoleUser, Content: content})
	return messages
}

// GetConversation returns the conversation and its ordered messages.
// Soft-deleted conversations remain retrievable by id.
func (s *ChatService) GetConversation(ctx context.Context, userID, conversationID string) (*ConversationDetail, error) {
	if userID == "" || conversationID == "" {
		return nil, ErrInvalidInput
	}
	conversation, err := s.conversations.GetByID(conversationID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}
	if conversation.UserID != userID {
		return nil, ErrForbidden
	}

	if s.cache != nil {
		dirty, err := s.cache.IsDirty(ctx, conversationID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.cache.GetMessages(ctx, conversationID); cacheErr == nil && hit {
				return &ConversationDetail{Conversation: conversation, Messages: cached}, nil
			}
		}
	}

	messages, err := s.messages.ListByConversationID(conversationID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if dirty, dirtyErr := s.cache.IsDirty(ctx, conversationID); dirtyErr == nil && !dirty {
			_ = s.cache.SetMessages(ctx, conversationID, messages)
		}
	}
	return &ConversationDetail{Conversation: conversation, Messages: messages}, nil
}

func (s *ChatService) ListConversations(userID, botID string) ([]model.Conversation, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.conversations.ListByUser(userID, botID, 50)
}

// DeleteConversation is soft: the row stays but drops out of listings.
func (s *ChatService) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	if userID == "" || conversationID == "" {
		return ErrInvalidInput
	}
	conversation, err := s.conversations.GetByID(conversationID)
	if err != nil {
		return err
	}
	if conversation == nil {
		return ErrConversationNotFound
	}
	if conversation.UserID != userID {
		return ErrForbidden
	}
	if err := s.conversations.SoftDelete(conversationID); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, conversationID)
	}
	return nil
}
