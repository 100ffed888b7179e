package app

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"teambot/internal/model"
	"teambot/internal/rag"
)

const (
	// candidateLimit bounds how many completed documents one search
	// considers. Not configurable.
	candidateLimit = 50

	defaultTopK        = 5
	snippetLength      = 160
	embeddingBatchSize = 10
)

// RetrievalService turns stored documents into ranked context for
// prompt injection, and drives chunk persistence at ingest time.
type RetrievalService struct {
	docs           DocumentStore
	chunks         ChunkStore
	embedder       Embedder
	embeddingModel string
	logger         *zap.Logger
}

func NewRetrievalService(docs DocumentStore, chunks ChunkStore, embedder Embedder, embeddingModel string, logger *zap.Logger) *RetrievalService {
	return &RetrievalService{
		docs:           docs,
		chunks:         chunks,
		embedder:       embedder,
		embeddingModel: embeddingModel,
		logger:         logger,
	}
}

// SearchDocuments returns up to topK ranked sources for the query.
// Retrieval is best effort: any internal failure yields an empty slice
// so the conversation proceeds without context.
func (s *RetrievalService) SearchDocuments(ctx context.Context, botID, query string, topK int) []model.DocumentSource {
	if topK <= 0 {
		topK = defaultTopK
	}

	documents, err := s.docs.ListCompletedByBotID(botID, candidateLimit)
	if err != nil {
		s.logger.Warn("document search failed, continuing without context",
			zap.String("bot_id", botID), zap.Error(err))
		return nil
	}
	if len(documents) == 0 {
		return nil
	}

	var results []model.DocumentSource
	for _, doc := range documents {
		nameMatch := rag.NameMatches(query, doc.Name)
		// Keep candidates even without a keyword hit until topK is
		// reached, so low-document-count bots still return context.
		if !nameMatch && len(results) >= topK {
			continue
		}
		results = append(results, model.DocumentSource{
			DocumentID:   doc.ID,
			DocumentName: doc.Name,
			Snippet:      s.snippetFor(doc),
			Score:        rag.Score(query, doc.Name),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

func (s *RetrievalService) snippetFor(doc model.Document) string {
	chunk, err := s.chunks.FirstByDocumentID(doc.ID)
	if err != nil || chunk == nil || strings.TrimSpace(chunk.Content) == "" {
		return "Content from " + doc.Name
	}
	return truncateRunes(chunk.Content, snippetLength)
}

// ProcessDocument chunks the extracted text, optionally embeds each
// chunk, and marks the document completed. Errors propagate: ingestion
// failures must be visible, unlike search failures.
func (s *RetrievalService) ProcessDocument(ctx context.Context, botID, documentID, content string) error {
	chunks := rag.Chunk(content, rag.DefaultChunkSize)

	rows := make([]model.DocumentChunk, len(chunks))
	for i, text := range chunks {
		rows[i] = model.DocumentChunk{
			DocumentID: documentID,
			Seq:        i,
			Content:    text,
		}
	}

	if s.embedder != nil && s.embeddingModel != "" && len(chunks) > 0 {
		if err := s.embedChunks(ctx, chunks, rows); err != nil {
			// Embeddings are forward-compatibility data, not part of the
			// retrieval contract; ingest continues without them.
			s.logger.Warn("chunk embedding failed",
				zap.String("document_id", documentID), zap.Error(err))
		}
	}

	if err := s.chunks.DeleteByDocumentID(documentID); err != nil {
		return err
	}
	if err := s.chunks.CreateBatch(rows); err != nil {
		return err
	}

	metadata := model.JSONMap{
		"wordCount":  len(strings.Fields(content)),
		"charCount":  utf8.RuneCountInString(content),
		"chunkCount": len(chunks),
	}
	if err := s.docs.MarkCompleted(documentID, content, metadata, time.Now()); err != nil {
		return err
	}

	s.logger.Info("document processed",
		zap.String("document_id", documentID),
		zap.String("bot_id", botID),
		zap.Int("chunks", len(chunks)),
	)
	return nil
}

func (s *RetrievalService) embedChunks(ctx context.Context, chunks []string, rows []model.DocumentChunk) error {
	for i := 0; i < len(chunks); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		vectors, err := s.embedder.EmbedBatch(ctx, s.embeddingModel, chunks[i:end])
		if err != nil {
			return err
		}
		for j, vec := range vectors {
			if i+j < len(rows) {
				rows[i+j].SetEmbedding(vec)
			}
		}
	}
	return nil
}

// IndexDocument is a lifecycle hook for a future external vector index;
// today it records an opaque handle. Failure marks the document failed
// and propagates.
func (s *RetrievalService) IndexDocument(ctx context.Context, documentID string) error {
	doc, err := s.docs.GetByID(documentID)
	if err == nil && doc == nil {
		err = ErrDocumentNotFound
	}
	if err == nil {
		err = s.docs.SetVectorIndexID(documentID, "index-"+documentID)
	}
	if err != nil {
		if markErr := s.docs.MarkFailed(documentID, err.Error()); markErr != nil {
			s.logger.Warn("mark document failed errored",
				zap.String("document_id", documentID), zap.Error(markErr))
		}
		return err
	}
	return nil
}

// DeleteDocumentIndex clears the index handle. A document without one
// is a no-op, not an error.
func (s *RetrievalService) DeleteDocumentIndex(ctx context.Context, documentID string) error {
	doc, err := s.docs.GetByID(documentID)
	if err != nil {
		return err
	}
	if doc == nil || doc.VectorIndexID == "" {
		return nil
	}
	return s.docs.SetVectorIndexID(documentID, "")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
