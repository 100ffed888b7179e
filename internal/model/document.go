package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document processing statuses.
const (
	DocumentStatusPending    = "pending"
	DocumentStatusProcessing = "processing"
	DocumentStatusCompleted  = "completed"
	DocumentStatusFailed     = "failed"
)

type Document struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	BotID         string     `gorm:"size:36;not null;index" json:"botId"`
	Name          string     `gorm:"size:256;not null" json:"name"`
	Filename      string     `gorm:"size:256;not null" json:"filename"`
	MimeType      string     `gorm:"size:128" json:"mimeType"`
	Size          int64      `gorm:"not null" json:"size"`
	Content       string     `gorm:"type:longtext" json:"content,omitempty"`
	Status        string     `gorm:"size:16;not null;index" json:"status"`
	UploadedBy    string     `gorm:"size:64;not null" json:"uploadedBy"`
	VectorIndexID string     `gorm:"size:64" json:"vectorIndexId,omitempty"`
	Metadata      JSONMap    `gorm:"type:text" json:"metadata,omitempty"`
	Attempts      int        `gorm:"not null;default:0" json:"-"`
	ProcessedAt   *time.Time `json:"processedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// Redacted returns a copy safe for listing responses: raw content and
// chunk payloads are stripped, only descriptive fields remain.
func (d Document) Redacted() Document {
	d.Content = ""
	return d
}

// DocumentChunk is one bounded span of a document's text, the unit of
// retrieval. Embedding is stored as a JSON array of float32 so a future
// vector index can consume it without re-ingesting.
type DocumentChunk struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	DocumentID string    `gorm:"size:36;not null;index" json:"documentId"`
	Seq        int       `gorm:"not null" json:"seq"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Embedding  string    `gorm:"type:text" json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (c *DocumentChunk) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// EmbeddingVector returns the parsed embedding slice; empty on parse error.
func (c *DocumentChunk) EmbeddingVector() []float32 {
	if c.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(c.Embedding), &v)
	return v
}

// SetEmbedding stores the embedding as JSON.
func (c *DocumentChunk) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		c.Embedding = ""
		return
	}
	b, _ := json.Marshal(vec)
	c.Embedding = string(b)
}

// DocumentSource is the retrieval projection embedded into assistant
// message metadata for citation display. Never persisted on its own.
type DocumentSource struct {
	DocumentID   string  `json:"documentId"`
	DocumentName string  `json:"documentName"`
	Snippet      string  `json:"snippet"`
	Score        float64 `json:"score"`
	Page         int     `json:"page,omitempty"`
}
