package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"teambot/internal/ai"
	"teambot/internal/model"
	"teambot/internal/platform/rabbitmq"
	"teambot/internal/repository"
)

// In-memory store implementations backing the service tests.

type fakeBotStore struct {
	bots    map[string]*model.Bot
	nextID  int
	listErr error
}

func newFakeBotStore() *fakeBotStore {
	return &fakeBotStore{bots: map[string]*model.Bot{}}
}

func (f *fakeBotStore) Create(bot *model.Bot) error {
	if bot.ID == "" {
		f.nextID++
		bot.ID = fmt.Sprintf("bot-%d", f.nextID)
	}
	bot.CreatedAt = time.Now()
	copied := *bot
	f.bots[bot.ID] = &copied
	return nil
}

func (f *fakeBotStore) GetByID(id string) (*model.Bot, error) {
	bot, ok := f.bots[id]
	if !ok {
		return nil, nil
	}
	copied := *bot
	return &copied, nil
}

func (f *fakeBotStore) Save(bot *model.Bot) error {
	copied := *bot
	f.bots[bot.ID] = &copied
	return nil
}

func (f *fakeBotStore) Delete(id string) error {
	delete(f.bots, id)
	return nil
}

func (f *fakeBotStore) List(filter repository.BotListFilter) ([]model.Bot, int64, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	ids := make([]string, 0, len(f.bots))
	for id := range f.bots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	items := make([]model.Bot, 0, len(ids))
	for _, id := range ids {
		items = append(items, *f.bots[id])
	}
	return items, int64(len(items)), nil
}

func (f *fakeBotStore) RecordUsage(id string, usedAt time.Time) error {
	bot, ok := f.bots[id]
	if !ok {
		return errors.New("bot not found")
	}
	bot.ConversationCount++
	bot.LastUsedAt = &usedAt
	return nil
}

type fakeDocumentStore struct {
	docs     map[string]*model.Document
	nextID   int
	listErr  error
	countErr error
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{docs: map[string]*model.Document{}}
}

func (f *fakeDocumentStore) Create(doc *model.Document) error {
	if doc.ID == "" {
		f.nextID++
		doc.ID = fmt.Sprintf("doc-%d", f.nextID)
	}
	doc.CreatedAt = time.Now()
	copied := *doc
	f.docs[doc.ID] = &copied
	return nil
}

func (f *fakeDocumentStore) GetByID(id string) (*model.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, nil
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeDocumentStore) ListByBotID(botID string) ([]model.Document, error) {
	var out []model.Document
	for _, id := range f.sortedIDs() {
		if f.docs[id].BotID == botID {
			out = append(out, *f.docs[id])
		}
	}
	return out, nil
}

func (f *fakeDocumentStore) ListCompletedByBotID(botID string, limit int) ([]model.Document, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Document
	for _, id := range f.sortedIDs() {
		doc := f.docs[id]
		if doc.BotID == botID && doc.Status == model.DocumentStatusCompleted {
			out = append(out, *doc)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeDocumentStore) CountByBotID(botID string) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	var n int64
	for _, doc := range f.docs {
		if doc.BotID == botID {
			n++
		}
	}
	return n, nil
}

func (f *fakeDocumentStore) ListIDsByBotID(botID string) ([]string, error) {
	var out []string
	for _, id := range f.sortedIDs() {
		if f.docs[id].BotID == botID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeDocumentStore) UpdateStatus(id, status string) error {
	doc, ok := f.docs[id]
	if !ok {
		return errors.New("document not found")
	}
	doc.Status = status
	return nil
}

func (f *fakeDocumentStore) MarkCompleted(id, content string, metadata model.JSONMap, processedAt time.Time) error {
	doc, ok := f.docs[id]
	if !ok {
		return errors.New("document not found")
	}
	doc.Status = model.DocumentStatusCompleted
	doc.Content = content
	doc.Metadata = metadata
	doc.ProcessedAt = &processedAt
	return nil
}

func (f *fakeDocumentStore) MarkFailed(id, reason string) error {
	doc, ok := f.docs[id]
	if !ok {
		return errors.New("document not found")
	}
	doc.Status = model.DocumentStatusFailed
	if doc.Metadata == nil {
		doc.Metadata = model.JSONMap{}
	}
	doc.Metadata["error"] = reason
	return nil
}

func (f *fakeDocumentStore) IncrementAttempts(id string) error {
	doc, ok := f.docs[id]
	if !ok {
		return errors.New("document not found")
	}
	doc.Attempts++
	return nil
}

func (f *fakeDocumentStore) SetVectorIndexID(id, vectorIndexID string) error {
	doc, ok := f.docs[id]
	if !ok {
		return errors.New("document not found")
	}
	doc.VectorIndexID = vectorIndexID
	return nil
}

func (f *fakeDocumentStore) Delete(id string) error {
	delete(f.docs, id)
	return nil
}

func (f *fakeDocumentStore) DeleteByBotID(botID string) error {
	for id, doc := range f.docs {
		if doc.BotID == botID {
			delete(f.docs, id)
		}
	}
	return nil
}

func (f *fakeDocumentStore) sortedIDs() []string {
	ids := make([]string, 0, len(f.docs))
	for id := range f.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type fakeChunkStore struct {
	chunks map[string][]model.DocumentChunk
}

func newFakeChunkStore() *fakeChunkStore {
	return &fakeChunkStore{chunks: map[string][]model.DocumentChunk{}}
}

func (f *fakeChunkStore) CreateBatch(chunks []model.DocumentChunk) error {
	for _, chunk := range chunks {
		f.chunks[chunk.DocumentID] = append(f.chunks[chunk.DocumentID], chunk)
	}
	return nil
}

func (f *fakeChunkStore) ListByDocumentID(documentID string) ([]model.DocumentChunk, error) {
	out := append([]model.DocumentChunk(nil), f.chunks[documentID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (f *fakeChunkStore) FirstByDocumentID(documentID string) (*model.DocumentChunk, error) {
	chunks, _ := f.ListByDocumentID(documentID)
	if len(chunks) == 0 {
		return nil, nil
	}
	first := chunks[0]
	return &first, nil
}

func (f *fakeChunkStore) DeleteByDocumentID(documentID string) error {
	delete(f.chunks, documentID)
	return nil
}

type fakeConversationStore struct {
	conversations map[string]*model.Conversation
	nextID        int
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{conversations: map[string]*model.Conversation{}}
}

func (f *fakeConversationStore) Create(conversation *model.Conversation) error {
	if conversation.ID == "" {
		f.nextID++
		conversation.ID = fmt.Sprintf("conv-%d", f.nextID)
	}
	conversation.CreatedAt = time.Now()
	copied := *conversation
	f.conversations[conversation.ID] = &copied
	return nil
}

func (f *fakeConversationStore) GetByID(id string) (*model.Conversation, error) {
	conversation, ok := f.conversations[id]
	if !ok {
		return nil, nil
	}
	copied := *conversation
	return &copied, nil
}

func (f *fakeConversationStore) Save(conversation *model.Conversation) error {
	copied := *conversation
	f.conversations[conversation.ID] = &copied
	return nil
}

func (f *fakeConversationStore) ListByUser(userID, botID string, limit int) ([]model.Conversation, error) {
	ids := make([]string, 0, len(f.conversations))
	for id := range f.conversations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []model.Conversation
	for _, id := range ids {
		conv := f.conversations[id]
		if conv.UserID != userID || !conv.IsActive {
			continue
		}
		if botID != "" && conv.BotID != botID {
			continue
		}
		out = append(out, *conv)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *fakeConversationStore) SoftDelete(id string) error {
	conversation, ok := f.conversations[id]
	if !ok {
		return errors.New("conversation not found")
	}
	conversation.IsActive = false
	return nil
}

type fakeMessageStore struct {
	messages []model.Message
	nextID   int
}

func (f *fakeMessageStore) Create(message *model.Message) error {
	if message.ID == "" {
		f.nextID++
		message.ID = fmt.Sprintf("msg-%d", f.nextID)
	}
	message.CreatedAt = time.Now()
	f.messages = append(f.messages, *message)
	return nil
}

func (f *fakeMessageStore) ListByConversationID(conversationID string) ([]model.Message, error) {
	var out []model.Message
	for _, msg := range f.messages {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	return out, nil
}

type fakeSquadStore struct {
	squads map[string]*model.Squad
	nextID int
}

func newFakeSquadStore() *fakeSquadStore {
	return &fakeSquadStore{squads: map[string]*model.Squad{}}
}

func (f *fakeSquadStore) Create(squad *model.Squad) error {
	if squad.ID == "" {
		f.nextID++
		squad.ID = fmt.Sprintf("squad-%d", f.nextID)
	}
	copied := *squad
	f.squads[squad.ID] = &copied
	return nil
}

func (f *fakeSquadStore) GetByID(id string) (*model.Squad, error) {
	squad, ok := f.squads[id]
	if !ok {
		return nil, nil
	}
	copied := *squad
	return &copied, nil
}

func (f *fakeSquadStore) ListByMember(userID string) ([]model.Squad, error) {
	ids := make([]string, 0, len(f.squads))
	for id := range f.squads {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []model.Squad
	for _, id := range ids {
		if f.squads[id].HasMember(userID) {
			out = append(out, *f.squads[id])
		}
	}
	return out, nil
}

func (f *fakeSquadStore) SquadIDsForUser(userID string) ([]string, error) {
	squads, _ := f.ListByMember(userID)
	ids := make([]string, len(squads))
	for i, s := range squads {
		ids[i] = s.ID
	}
	return ids, nil
}

type fakeLLMClient struct {
	err     error
	content string
	model   string
	tokens  int

	lastMessages []ai.ChatMessage
	lastOptions  ai.ChatOptions
}

func (f *fakeLLMClient) Complete(ctx context.Context, messages []ai.ChatMessage, opts ai.ChatOptions) (*ai.CompletionResult, error) {
	f.lastMessages = messages
	f.lastOptions = opts
	if f.err != nil {
		return nil, f.err
	}
	content := f.content
	if content == "" {
		content = "fake response"
	}
	modelName := f.model
	if modelName == "" {
		modelName = opts.Model
	}
	return &ai.CompletionResult{
		Content: content,
		Usage:   ai.Usage{TotalTokens: f.tokens},
		Model:   modelName,
	}, nil
}

type fakeIngestQueue struct {
	err  error
	jobs []rabbitmq.IngestJob
}

func (f *fakeIngestQueue) Publish(ctx context.Context, job rabbitmq.IngestJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

type fakeEmbedder struct {
	err   error
	calls [][]string
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, model string, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1.0}
	}
	return out, nil
}

type fakeMessageCache struct {
	stored map[string][]model.Message
	dirty  map[string]bool
}

func newFakeMessageCache() *fakeMessageCache {
	return &fakeMessageCache{
		stored: map[string][]model.Message{},
		dirty:  map[string]bool{},
	}
}

func (f *fakeMessageCache) GetMessages(ctx context.Context, conversationID string) ([]model.Message, bool, error) {
	msgs, ok := f.stored[conversationID]
	return msgs, ok, nil
}

func (f *fakeMessageCache) SetMessages(ctx context.Context, conversationID string, messages []model.Message) error {
	f.stored[conversationID] = messages
	return nil
}

func (f *fakeMessageCache) Invalidate(ctx context.Context, conversationID string) error {
	delete(f.stored, conversationID)
	return nil
}

func (f *fakeMessageCache) MarkDirty(ctx context.Context, conversationID string) error {
	f.dirty[conversationID] = true
	return nil
}

func (f *fakeMessageCache) IsDirty(ctx context.Context, conversationID string) (bool, error) {
	return f.dirty[conversationID], nil
}
