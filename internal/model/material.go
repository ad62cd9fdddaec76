package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Material is a learning resource: an uploaded file, an external URL, or
// both.
type Material struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	FilePath    string    `json:"file_path,omitempty"`
	ExternalURL string    `json:"external_url,omitempty"`
	AuthorID    uuid.UUID `gorm:"type:uuid;index;not null" json:"author_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Material) TableName() string { return "materials" }

func (m *Material) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// UpdateMaterialRequest is the payload for updating material metadata.
type UpdateMaterialRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=200"`
	Description string `json:"description"`
	ExternalURL string `json:"external_url,omitempty" binding:"omitempty,url"`
}
