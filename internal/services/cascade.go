package services

import (
	"github.com/konstanta-tech/tracker/internal/models"
	"gorm.io/gorm"
)

// deleteComments removes the comments and their attachments.
func deleteComments(tx *gorm.DB, commentIDs []uint) error {
	if len(commentIDs) == 0 {
		return nil
	}
	if err := tx.Where("comment_id IN ?", commentIDs).Delete(&models.Attachment{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", commentIDs).Delete(&models.Comment{}).Error
}

// deleteTasks removes the tasks together with their comments and every
// attachment hanging off either.
func deleteTasks(tx *gorm.DB, taskIDs []uint) error {
	if len(taskIDs) == 0 {
		return nil
	}

	var commentIDs []uint
	if err := tx.Model(&models.Comment{}).Where("task_id IN ?", taskIDs).Pluck("id", &commentIDs).Error; err != nil {
		return err
	}
	if err := deleteComments(tx, commentIDs); err != nil {
		return err
	}
	if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.Attachment{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", taskIDs).Delete(&models.Task{}).Error
}

// AttachmentInput is an attachment as supplied by a client.
type AttachmentInput struct {
	ID      string `json:"id"`
	Name    string `json:"name" binding:"required,max=255"`
	Size    int64  `json:"size" binding:"min=0"`
	Type    string `json:"type" binding:"max=100"`
	Content string `json:"content"`
}

func buildAttachments(inputs []AttachmentInput, taskID, commentID *uint) []models.Attachment {
	out := make([]models.Attachment, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, models.Attachment{
			ID:        in.ID,
			TaskID:    taskID,
			CommentID: commentID,
			Name:      in.Name,
			Size:      in.Size,
			Type:      in.Type,
			Content:   in.Content,
		})
	}
	return out
}
