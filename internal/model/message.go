package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// MessageMetadata carries citation and usage details on assistant turns.
type MessageMetadata struct {
	Sources []DocumentSource `json:"sources,omitempty"`
	Tokens  int              `json:"tokens,omitempty"`
	Model   string           `json:"model,omitempty"`
}

func (m MessageMetadata) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal message metadata failed: %w", err)
	}
	return string(b), nil
}

func (m *MessageMetadata) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = MessageMetadata{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return fmt.Errorf("unsupported message metadata source type %T", src)
}

// Message is immutable once created. Ordering within a conversation is
// by CreatedAt ascending, id as tiebreak.
type Message struct {
	ID             string          `gorm:"primaryKey;size:36" json:"id"`
	ConversationID string          `gorm:"size:36;not null;index" json:"conversationId"`
	Role           string          `gorm:"size:16;not null" json:"role"`
	Content        string          `gorm:"type:text;not null" json:"content"`
	UserID         string          `gorm:"size:64" json:"userId,omitempty"`
	Metadata       MessageMetadata `gorm:"type:text" json:"metadata"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
