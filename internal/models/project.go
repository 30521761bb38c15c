package models

import (
	"sort"
	"time"
)

const (
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusArchived  = "archived"
)

// ProjectStatuses lists the accepted values of Project.Status.
var ProjectStatuses = []string{ProjectStatusActive, ProjectStatusCompleted, ProjectStatusArchived}

// Project groups tasks and the team working on them.
type Project struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:200;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Status      string          `gorm:"size:20;not null;default:active;index" json:"status"`
	TeamMembers []uint          `gorm:"-" json:"teamMembers"`
	Members     []ProjectMember `gorm:"foreignKey:ProjectID" json:"-"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (Project) TableName() string { return "projects" }

// FillTeamMembers derives TeamMembers from the preloaded membership rows.
func (p *Project) FillTeamMembers() {
	ids := make([]uint, 0, len(p.Members))
	for _, m := range p.Members {
		ids = append(ids, m.UserID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	p.TeamMembers = ids
}
