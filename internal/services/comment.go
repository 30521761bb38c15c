package services

import (
	"strings"
	"time"

	"github.com/konstanta-tech/tracker/internal/models"
	"github.com/konstanta-tech/tracker/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

type CreateCommentRequest struct {
	TaskID      uint              `json:"taskId" binding:"required"`
	Text        string            `json:"text" binding:"required"`
	Attachments []AttachmentInput `json:"attachments" binding:"dive"`
}

type UpdateCommentRequest struct {
	Text        *string            `json:"text"`
	Attachments *[]AttachmentInput `json:"attachments" binding:"omitempty,dive"`
}

// ListByTask returns the comments of a task in creation order. A zero taskID
// returns every comment.
// ProjectOf returns the project of the task a comment belongs to, or 0.
func (s *CommentService) ProjectOf(commentID uint) uint {
	var ids []uint
	s.db.Model(&models.Task{}).
		Joins("JOIN comments ON comments.task_id = tasks.id").
		Where("comments.id = ?", commentID).
		Limit(1).
		Pluck("tasks.project_id", &ids)
	if len(ids) == 0 {
		return 0
	}
	return ids[0]
}

func (s *CommentService) ListByTask(taskID uint) ([]models.Comment, error) {
	query := s.db.Preload("Attachments").Order("created_at ASC, id ASC")
	if taskID != 0 {
		query = query.Where("task_id = ?", taskID)
	}
	comments := []models.Comment{}
	if err := query.Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func loadComment(db *gorm.DB, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := db.Preload("Attachments").First(&comment, id).Error; err != nil {
		return nil, notFoundOr(err, "comment not found")
	}
	return &comment, nil
}

// Create posts a comment authored by the actor.
func (s *CommentService) Create(actor Actor, req *CreateCommentRequest) (*models.Comment, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, response.NewBadRequest("text is required")
	}

	comment := models.Comment{
		TaskID: req.TaskID,
		UserID: actor.ID,
		Text:   text,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Task{}).Where("id = ?", req.TaskID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return response.NewBadRequest("task does not exist")
		}
		if err := tx.Omit(clause.Associations).Create(&comment).Error; err != nil {
			return err
		}
		return createAttachments(tx, req.Attachments, nil, &comment.ID)
	})
	if err != nil {
		return nil, err
	}
	return loadComment(s.db, comment.ID)
}

// Update edits the text or replaces the attachments. Author only.
func (s *CommentService) Update(actor Actor, id uint, req *UpdateCommentRequest) (*models.Comment, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		comment, err := ownComment(tx, actor, id, "edit")
		if err != nil {
			return err
		}

		if req.Text != nil {
			text := strings.TrimSpace(*req.Text)
			if text == "" {
				return response.NewBadRequest("text cannot be empty")
			}
			comment.Text = text
		}
		if err := tx.Omit(clause.Associations).Save(comment).Error; err != nil {
			return err
		}

		if req.Attachments != nil {
			if err := tx.Where("comment_id = ?", comment.ID).Delete(&models.Attachment{}).Error; err != nil {
				return err
			}
			return createAttachments(tx, *req.Attachments, nil, &comment.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loadComment(s.db, id)
}

// Delete removes a comment and its attachments. Author only.
func (s *CommentService) Delete(actor Actor, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := ownComment(tx, actor, id, "delete"); err != nil {
			return err
		}
		return deleteComments(tx, []uint{id})
	})
}

// DeleteAttachment removes one attachment from a comment. Author only.
func (s *CommentService) DeleteAttachment(actor Actor, commentID uint, attachmentID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := ownComment(tx, actor, commentID, "edit"); err != nil {
			return err
		}
		result := tx.Where("id = ? AND comment_id = ?", attachmentID, commentID).Delete(&models.Attachment{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return response.NewNotFound("attachment not found")
		}
		return tx.Model(&models.Comment{}).Where("id = ?", commentID).Update("updated_at", time.Now()).Error
	})
}

func ownComment(tx *gorm.DB, actor Actor, id uint, verb string) (*models.Comment, error) {
	var comment models.Comment
	if err := tx.First(&comment, id).Error; err != nil {
		return nil, notFoundOr(err, "comment not found")
	}
	if comment.UserID != actor.ID {
		return nil, response.NewForbidden("only the author can " + verb + " this comment")
	}
	return &comment, nil
}
