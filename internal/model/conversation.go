package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Conversation struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	BotID        string    `gorm:"size:36;not null;index" json:"botId"`
	UserID       string    `gorm:"size:64;not null;index" json:"userId"`
	Title        string    `gorm:"size:64;not null" json:"title"`
	IsActive     bool      `gorm:"not null;default:true;index" json:"isActive"`
	MessageCount int       `gorm:"not null;default:0" json:"messageCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
