package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attachment is a file stored inline (data URL or base64) on a task or a comment.
type Attachment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TaskID    *uint     `gorm:"index" json:"taskId,omitempty"`
	CommentID *uint     `gorm:"index" json:"commentId,omitempty"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Size      int64     `json:"size"`
	Type      string    `gorm:"size:100" json:"type"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Attachment) TableName() string { return "attachments" }

func (a *Attachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
