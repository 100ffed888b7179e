package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"teambot/internal/model"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(conversation *model.Conversation) error {
	if err := r.db.Create(conversation).Error; err != nil {
		return fmt.Errorf("create conversation failed: %w", err)
	}
	return nil
}

func (r *ConversationRepository) GetByID(id string) (*model.Conversation, error) {
	var conversation model.Conversation
	if err := r.db.Where("id = ?", id).First(&conversation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation failed: %w", err)
	}
	return &conversation, nil
}

func (r *ConversationRepository) Save(conversation *model.Conversation) error {
	if err := r.db.Save(conversation).Error; err != nil {
		return fmt.Errorf("save conversation failed: %w", err)
	}
	return nil
}

// ListByUser returns active conversations, newest first, capped at limit
// (50 by default). Soft-deleted conversations are excluded here but stay
// retrievable by id.
func (r *ConversationRepository) ListByUser(userID, botID string, limit int) ([]model.Conversation, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	q := r.db.Where("user_id = ? AND is_active = ?", userID, true)
	if botID != "" {
		q = q.Where("bot_id = ?", botID)
	}
	var conversations []model.Conversation
	if err := q.Order("created_at DESC").Limit(limit).Find(&conversations).Error; err != nil {
		return nil, fmt.Errorf("list conversations failed: %w", err)
	}
	return conversations, nil
}

// SoftDelete flips the active flag; the row remains.
func (r *ConversationRepository) SoftDelete(id string) error {
	if err := r.db.Model(&model.Conversation{}).Where("id = ?", id).
		Update("is_active", false).Error; err != nil {
		return fmt.Errorf("soft delete conversation failed: %w", err)
	}
	return nil
}
