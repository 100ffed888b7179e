package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bot visibility scopes.
const (
	ScopePersonal     = "personal"
	ScopeSquad        = "squad"
	ScopeOrganization = "organization"
)

// Bot lifecycle statuses.
const (
	BotStatusActive   = "active"
	BotStatusInactive = "inactive"
	BotStatusTraining = "training"
	BotStatusError    = "error"
)

// BotConfig holds the model parameters a bot uses for generation.
// Embedded into Bot so one row carries the full definition.
type BotConfig struct {
	Model        string  `gorm:"size:64;not null;default:gpt-4-turbo" json:"model"`
	Temperature  float64 `gorm:"not null;default:0.7" json:"temperature"`
	MaxTokens    int     `gorm:"not null;default:2000" json:"maxTokens"`
	SystemPrompt string  `gorm:"type:text" json:"systemPrompt,omitempty"`
	EnableRAG    bool    `gorm:"not null;default:true" json:"enableRAG"`
	RAGTopK      int     `gorm:"not null;default:5" json:"ragTopK"`
	RAGThreshold float64 `gorm:"not null;default:0" json:"ragThreshold"`
}

type Bot struct {
	ID                string     `gorm:"primaryKey;size:36" json:"id"`
	Name              string     `gorm:"size:100;not null;index" json:"name"`
	Description       string     `gorm:"size:500;not null" json:"description"`
	Instructions      string     `gorm:"type:text;not null" json:"instructions"`
	Scope             string     `gorm:"size:16;not null;index" json:"scope"`
	Status            string     `gorm:"size:16;not null;index" json:"status"`
	Config            BotConfig  `gorm:"embedded;embeddedPrefix:config_" json:"config"`
	CreatedBy         string     `gorm:"size:64;not null;index" json:"createdBy"`
	SquadID           string     `gorm:"size:36;index" json:"squadId,omitempty"`
	Tags              StringList `gorm:"type:text" json:"tags"`
	ConversationCount int        `gorm:"not null;default:0" json:"conversationCount"`
	LastUsedAt        *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func (b *Bot) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

func ValidScope(scope string) bool {
	switch scope {
	case ScopePersonal, ScopeSquad, ScopeOrganization:
		return true
	}
	return false
}

func ValidBotStatus(status string) bool {
	switch status {
	case BotStatusActive, BotStatusInactive, BotStatusTraining, BotStatusError:
		return true
	}
	return false
}
