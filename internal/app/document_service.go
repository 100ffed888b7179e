package app

import (
	"context"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"teambot/internal/model"
	"teambot/internal/platform/rabbitmq"
)

var allowedUploadExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".md":   true,
	".doc":  true,
	".docx": true,
}

// DocumentService accepts uploads and hands processing to the ingest
// worker over the queue. Uploads return immediately with status pending.
type DocumentService struct {
	bots     BotStore
	docs     DocumentStore
	chunks   ChunkStore
	queue    IngestQueue
	maxBytes int64
	logger   *zap.Logger
}

func NewDocumentService(bots BotStore, docs DocumentStore, chunks ChunkStore, queue IngestQueue, maxBytes int64, logger *zap.Logger) *DocumentService {
	return &DocumentService{
		bots:     bots,
		docs:     docs,
		chunks:   chunks,
		queue:    queue,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

type UploadDocumentInput struct {
	UserID   string
	BotID    string
	Name     string
	Filename string
	MimeType string
	Payload  []byte
}

func (s *DocumentService) Upload(ctx context.Context, input UploadDocumentInput) (*model.Document, error) {
	if input.UserID == "" || input.BotID == "" {
		return nil, ErrInvalidInput
	}
	if len(input.Payload) == 0 {
		return nil, ErrInvalidInput
	}
	if s.maxBytes > 0 && int64(len(input.Payload)) > s.maxBytes {
		return nil, ErrInvalidInput
	}

	ext := strings.ToLower(filepath.Ext(input.Filename))
	if !allowedUploadExtensions[ext] {
		return nil, ErrInvalidInput
	}

	bot, err := s.bots.GetByID(input.BotID)
	if err != nil {
		return nil, err
	}
	if bot == nil {
		return nil, ErrBotNotFound
	}
	// Only the owner manages a bot's knowledge base, except for
	// organization bots which any member may extend.
	if bot.CreatedBy != input.UserID && bot.Scope != model.ScopeOrganization {
		return nil, ErrForbidden
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = input.Filename
	}

	doc := &model.Document{
		BotID:      input.BotID,
		Name:       name,
		Filename:   input.Filename,
		MimeType:   input.MimeType,
		Size:       int64(len(input.Payload)),
		Status:     model.DocumentStatusPending,
		UploadedBy: input.UserID,
	}
	if err := s.docs.Create(doc); err != nil {
		return nil, err
	}

	job := rabbitmq.IngestJob{
		DocumentID: doc.ID,
		BotID:      doc.BotID,
		Filename:   doc.Filename,
		MimeType:   doc.MimeType,
		Payload:    input.Payload,
	}
	if err := s.queue.Publish(ctx, job); err != nil {
		s.logger.Error("publish ingest job failed",
			zap.String("document_id", doc.ID), zap.Error(err))
		if markErr := s.docs.MarkFailed(doc.ID, "queueing failed: "+err.Error()); markErr != nil {
			s.logger.Warn("mark document failed errored",
				zap.String("document_id", doc.ID), zap.Error(markErr))
		}
		return nil, err
	}

	s.logger.Info("document queued for ingestion",
		zap.String("document_id", doc.ID),
		zap.String("bot_id", doc.BotID),
		zap.Int64("size", doc.Size),
	)
	redacted := doc.Redacted()
	return &redacted, nil
}

// ListDocuments returns the bot's documents without their extracted
// content, newest first. Personal bots expose documents to their
// creator only.
func (s *DocumentService) ListDocuments(botID, userID string) ([]model.Document, error) {
	if botID == "" {
		return nil, ErrInvalidInput
	}
	bot, err := s.bots.GetByID(botID)
	if err != nil {
		return nil, err
	}
	if bot == nil {
		return nil, ErrBotNotFound
	}
	if bot.CreatedBy != userID && bot.Scope == model.ScopePersonal {
		return nil, ErrForbidden
	}

	docs, err := s.docs.ListByBotID(botID)
	if err != nil {
		return nil, err
	}
	redacted := make([]model.Document, len(docs))
	for i := range docs {
		redacted[i] = docs[i].Redacted()
	}
	return redacted, nil
}

func (s *DocumentService) GetDocument(documentID, userID string) (*model.Document, error) {
	if documentID == "" {
		return nil, ErrInvalidInput
	}
	doc, err := s.docs.GetByID(documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	bot, err := s.bots.GetByID(doc.BotID)
	if err != nil {
		return nil, err
	}
	// An orphaned document has no scope to check against; treat it
	// like a personal one.
	if bot == nil || (bot.CreatedBy != userID && bot.Scope == model.ScopePersonal) {
		return nil, ErrForbidden
	}
	redacted := doc.Redacted()
	return &redacted, nil
}

// DeleteDocument removes the document and its chunks. Bot owner only.
func (s *DocumentService) DeleteDocument(documentID, userID string) error {
	if documentID == "" || userID == "" {
		return ErrInvalidInput
	}
	doc, err := s.docs.GetByID(documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}
	bot, err := s.bots.GetByID(doc.BotID)
	if err != nil {
		return err
	}
	if bot == nil || bot.CreatedBy != userID {
		return ErrForbidden
	}

	if err := s.chunks.DeleteByDocumentID(documentID); err != nil {
		return err
	}
	if err := s.docs.Delete(documentID); err != nil {
		return err
	}

	s.logger.Info("document deleted",
		zap.String("document_id", documentID), zap.String("user_id", userID))
	return nil
}
