package models

import "time"

// ProjectMember links a user into a project's team.
type ProjectMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"uniqueIndex:idx_project_user;not null" json:"projectId"`
	UserID    uint      `gorm:"uniqueIndex:idx_project_user;index;not null" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (ProjectMember) TableName() string { return "project_members" }
