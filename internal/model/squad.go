package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Squad groups users; squad-scope bots are visible to members only.
type Squad struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	Name        string     `gorm:"size:100;not null" json:"name"`
	Description string     `gorm:"size:500" json:"description,omitempty"`
	OwnerID     string     `gorm:"size:64;not null;index" json:"ownerId"`
	Members     StringList `gorm:"type:text" json:"members"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (s *Squad) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (s *Squad) HasMember(userID string) bool {
	if s.OwnerID == userID {
		return true
	}
	for _, m := range s.Members {
		if m == userID {
			return true
		}
	}
	return false
}
