package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/konstanta-tech/tracker/internal/models"
	"github.com/konstanta-tech/tracker/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotService converts between the database and the single JSON document
// layout {users, projects, tasks, comments}.
type SnapshotService struct {
	db            *gorm.DB
	cronScheduler *cron.Cron
}

func NewSnapshotService(db *gorm.DB) *SnapshotService {
	return &SnapshotService{db: db}
}

// Export reads every record into a Document.
func (s *SnapshotService) Export() (*models.Document, error) {
	doc := &models.Document{
		Users:    []models.UserRecord{},
		Projects: []models.Project{},
		Tasks:    []models.Task{},
		Comments: []models.Comment{},
	}

	var users []models.User
	if err := s.db.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		doc.Users = append(doc.Users, models.UserRecord{User: u, Password: u.Password})
	}

	if err := s.db.Preload("Members").Order("id ASC").Find(&doc.Projects).Error; err != nil {
		return nil, err
	}
	for i := range doc.Projects {
		doc.Projects[i].FillTeamMembers()
	}
	if err := s.db.Preload("Attachments").Order("id ASC").Find(&doc.Tasks).Error; err != nil {
		return nil, err
	}
	if err := s.db.Preload("Attachments").Order("id ASC").Find(&doc.Comments).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

// WriteFile exports the document to path, replacing it atomically.
func (s *SnapshotService) WriteFile(path string) error {
	doc, err := s.Export()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ErrNotEmpty is returned by Import when the database already holds users.
var ErrNotEmpty = errors.New("database is not empty")

// ImportFile loads a document from path into an empty database, keeping the
// record ids of the document.
func (s *SnapshotService) ImportFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return s.Import(&doc)
}

// Import writes doc into an empty database in one transaction.
func (s *SnapshotService) Import(doc *models.Document) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrNotEmpty
		}

		for _, rec := range doc.Users {
			user := rec.User
			user.Password = rec.Password
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("user %d: %w", rec.ID, err)
			}
		}
		for _, p := range doc.Projects {
			project := p
			project.Members = nil
			if err := tx.Omit(clause.Associations).Create(&project).Error; err != nil {
				return fmt.Errorf("project %d: %w", p.ID, err)
			}
			if err := replaceMembers(tx, project.ID, p.TeamMembers); err != nil {
				return fmt.Errorf("project %d team: %w", p.ID, err)
			}
		}
		for _, t := range doc.Tasks {
			task := t
			task.Attachments = nil
			if err := tx.Omit(clause.Associations).Create(&task).Error; err != nil {
				return fmt.Errorf("task %d: %w", t.ID, err)
			}
			if err := insertAttachments(tx, t.Attachments, &task.ID, nil); err != nil {
				return err
			}
		}
		for _, c := range doc.Comments {
			comment := c
			comment.Attachments = nil
			if err := tx.Omit(clause.Associations).Create(&comment).Error; err != nil {
				return fmt.Errorf("comment %d: %w", c.ID, err)
			}
			if err := insertAttachments(tx, c.Attachments, nil, &comment.ID); err != nil {
				return err
			}
		}
		return syncSequences(tx)
	})
}

// importedTables carry explicit ids after Import.
var importedTables = []string{"users", "projects", "tasks", "comments", "attachments"}

// syncSequences moves postgres id sequences past the imported ids. Explicit
// inserts do not advance them, so the next plain insert would collide.
// sqlite and mysql derive the next id from the table and need nothing.
func syncSequences(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	for _, table := range importedTables {
		stmt := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)",
			table,
		)
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("sync %s id sequence: %w", table, err)
		}
	}
	return nil
}

func insertAttachments(tx *gorm.DB, attachments []models.Attachment, taskID, commentID *uint) error {
	if len(attachments) == 0 {
		return nil
	}
	rows := make([]models.Attachment, len(attachments))
	for i, a := range attachments {
		a.TaskID = taskID
		a.CommentID = commentID
		rows[i] = a
	}
	return tx.Create(&rows).Error
}

// StartScheduler exports the document to path on the given cron schedule.
func (s *SnapshotService) StartScheduler(schedule, path string) error {
	s.cronScheduler = cron.New()
	if _, err := s.cronScheduler.AddFunc(schedule, func() {
		if err := s.WriteFile(path); err != nil {
			logger.Error().Err(err).Str("path", path).Msg("[Snapshot] export failed")
			return
		}
		logger.Debug().Str("path", path).Msg("[Snapshot] exported")
	}); err != nil {
		return fmt.Errorf("invalid snapshot schedule %q: %w", schedule, err)
	}
	s.cronScheduler.Start()
	logger.Infof("[Snapshot] Scheduler started (%s -> %s)", schedule, path)
	return nil
}

// StopScheduler stops the export job and waits for a running export.
func (s *SnapshotService) StopScheduler() {
	if s.cronScheduler != nil {
		<-s.cronScheduler.Stop().Done()
	}
}
