package services

import (
	"sort"
	"strings"
	"time"

	"github.com/konstanta-tech/tracker/internal/models"
	"github.com/konstanta-tech/tracker/pkg/response"
	"gorm.io/gorm"
)

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"omitempty,projectstatus"`
	TeamMembers []uint `json:"teamMembers"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	Description *string `json:"description"`
	Status      *string `json:"status" binding:"omitempty,projectstatus"`
	TeamMembers *[]uint `json:"teamMembers"`
}

// List returns all projects, newest first, with their team member ids.
func (s *ProjectService) List() ([]models.Project, error) {
	projects := []models.Project{}
	if err := s.db.Preload("Members").Order("created_at DESC, id DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	for i := range projects {
		projects[i].FillTeamMembers()
	}
	return projects, nil
}

// GetByID returns a project by ID
func (s *ProjectService) GetByID(id uint) (*models.Project, error) {
	return loadProject(s.db, id)
}

func loadProject(db *gorm.DB, id uint) (*models.Project, error) {
	var project models.Project
	if err := db.Preload("Members").First(&project, id).Error; err != nil {
		return nil, notFoundOr(err, "project not found")
	}
	project.FillTeamMembers()
	return &project, nil
}

// Create creates a new project with the given team.
func (s *ProjectService) Create(req *CreateProjectRequest) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, response.NewBadRequest("name is required")
	}
	status := req.Status
	if status == "" {
		status = models.ProjectStatusActive
	}

	var id uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		project := models.Project{
			Name:        name,
			Description: req.Description,
			Status:      status,
		}
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		id = project.ID
		return replaceMembers(tx, project.ID, req.TeamMembers)
	})
	if err != nil {
		return nil, err
	}
	return loadProject(s.db, id)
}

// Update merges the supplied fields. A supplied teamMembers list replaces
// the whole team.
func (s *ProjectService) Update(id uint, req *UpdateProjectRequest) (*models.Project, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, id).Error; err != nil {
			return notFoundOr(err, "project not found")
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return response.NewBadRequest("name cannot be empty")
			}
			project.Name = name
		}
		if req.Description != nil {
			project.Description = *req.Description
		}
		if req.Status != nil {
			project.Status = *req.Status
		}

		if err := tx.Omit("Members").Save(&project).Error; err != nil {
			return err
		}
		if req.TeamMembers != nil {
			return replaceMembers(tx, project.ID, *req.TeamMembers)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loadProject(s.db, id)
}

// Delete removes a project together with its tasks, their comments and all
// attachments.
func (s *ProjectService) Delete(actor Actor, id uint) error {
	if !actor.IsAdmin() {
		return response.NewForbidden("only administrators can delete projects")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, id).Error; err != nil {
			return notFoundOr(err, "project not found")
		}

		var tasks []models.Task
		if err := tx.Select("id", "status").Where("project_id = ?", id).Find(&tasks).Error; err != nil {
			return err
		}
		taskIDs := make([]uint, len(tasks))
		touched := map[string]bool{}
		for i, t := range tasks {
			taskIDs[i] = t.ID
			touched[t.Status] = true
		}
		if err := deleteTasks(tx, taskIDs); err != nil {
			return err
		}

		// Columns span projects, so the remaining tasks close the gaps.
		statuses := make([]string, 0, len(touched))
		for status := range touched {
			statuses = append(statuses, status)
		}
		sort.Strings(statuses)
		now := time.Now()
		for _, status := range statuses {
			if err := compactColumn(tx, status, now); err != nil {
				return err
			}
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&project).Error
	})
}

func replaceMembers(tx *gorm.DB, projectID uint, userIDs []uint) error {
	if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectMember{}).Error; err != nil {
		return err
	}

	ids := uniqueIDs(userIDs)
	if len(ids) == 0 {
		return nil
	}

	var found int64
	if err := tx.Model(&models.User{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
		return err
	}
	if int(found) != len(ids) {
		return response.NewBadRequest("team members must be existing users")
	}

	members := make([]models.ProjectMember, 0, len(ids))
	for _, uid := range ids {
		members = append(members, models.ProjectMember{ProjectID: projectID, UserID: uid})
	}
	return tx.Create(&members).Error
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
