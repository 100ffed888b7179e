package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"teambot/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *model.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(id string) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) ListByBotID(botID string) ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Where("bot_id = ?", botID).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return docs, nil
}

// ListCompletedByBotID returns at most limit completed documents for
// retrieval candidates. The cap bounds latency; it is not configurable.
func (r *DocumentRepository) ListCompletedByBotID(botID string, limit int) ([]model.Document, error) {
	if limit <= 0 {
		limit = 50
	}
	var docs []model.Document
	if err := r.db.Where("bot_id = ? AND status = ?", botID, model.DocumentStatusCompleted).
		Order("created_at ASC").
		Limit(limit).
		Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list completed documents failed: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) CountByBotID(botID string) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Document{}).Where("bot_id = ?", botID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count documents failed: %w", err)
	}
	return count, nil
}

func (r *DocumentRepository) Save(doc *model.Document) error {
	if err := r.db.Save(doc).Error; err != nil {
		return fmt.Errorf("save document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) UpdateStatus(id, status string) error {
	if err := r.db.Model(&model.Document{}).Where("id = ?", id).
		Update("status", status).Error; err != nil {
		return fmt.Errorf("update document status failed: %w", err)
	}
	return nil
}

// MarkFailed records the failure reason in metadata so the uploader can
// observe it by polling; the original 201 response has long been sent.
func (r *DocumentRepository) MarkFailed(id string, reason string) error {
	if err := r.db.Model(&model.Document{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":   model.DocumentStatusFailed,
			"metadata": model.JSONMap{"error": reason},
		}).Error; err != nil {
		return fmt.Errorf("mark document failed failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) IncrementAttempts(id string) error {
	if err := r.db.Model(&model.Document{}).Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error; err != nil {
		return fmt.Errorf("increment document attempts failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Delete(id string) error {
	if err := r.db.Where("id = ?", id).Delete(&model.Document{}).Error; err != nil {
		return fmt.Errorf("delete document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) DeleteByBotID(botID string) error {
	if err := r.db.Where("bot_id = ?", botID).Delete(&model.Document{}).Error; err != nil {
		return fmt.Errorf("delete documents by bot failed: %w", err)
	}
	return nil
}

// ListIDsByBotID returns document ids for cascade deletes.
func (r *DocumentRepository) ListIDsByBotID(botID string) ([]string, error) {
	var ids []string
	if err := r.db.Model(&model.Document{}).Where("bot_id = ?", botID).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list document ids by bot failed: %w", err)
	}
	return ids, nil
}

// MarkCompleted stores content, processing metadata and the completion
// timestamp in one update.
func (r *DocumentRepository) MarkCompleted(id, content string, metadata model.JSONMap, processedAt time.Time) error {
	if err := r.db.Model(&model.Document{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       model.DocumentStatusCompleted,
			"content":      content,
			"metadata":     metadata,
			"processed_at": processedAt,
		}).Error; err != nil {
		return fmt.Errorf("mark document completed failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) SetVectorIndexID(id, vectorIndexID string) error {
	if err := r.db.Model(&model.Document{}).Where("id = ?", id).
		Update("vector_index_id", vectorIndexID).Error; err != nil {
		return fmt.Errorf("set document vector index failed: %w", err)
	}
	return nil
}
