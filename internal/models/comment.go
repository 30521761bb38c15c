package models

import "time"

// Comment is a note left on a task. Only its author may change it.
type Comment struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	TaskID      uint         `gorm:"not null;index" json:"taskId"`
	UserID      uint         `gorm:"not null;index" json:"userId"`
	Text        string       `gorm:"type:text;not null" json:"text"`
	Attachments []Attachment `gorm:"foreignKey:CommentID" json:"attachments"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func (Comment) TableName() string { return "comments" }
