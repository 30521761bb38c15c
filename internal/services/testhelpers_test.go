package services

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/konstanta-tech/tracker/internal/config"
	"github.com/konstanta-tech/tracker/internal/models"
	"github.com/konstanta-tech/tracker/internal/utils"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := models.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "tracker.db"),
	}, gormlogger.Silent)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	utils.SetJWTSecret("test-secret")
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, role string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword("secret1")
	if err != nil {
		t.Fatal(err)
	}
	u := &models.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Role:     role,
		Password: hash,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return u
}

func seedProject(t *testing.T, db *gorm.DB, name string, members ...uint) *models.Project {
	t.Helper()
	p, err := NewProjectService(db).Create(&CreateProjectRequest{Name: name, TeamMembers: members})
	if err != nil {
		t.Fatalf("seed project %s: %v", name, err)
	}
	return p
}

func seedTask(t *testing.T, db *gorm.DB, projectID uint, title, status string) *models.Task {
	t.Helper()
	task, err := NewTaskService(db).Create(&CreateTaskRequest{
		Title:     title,
		ProjectID: projectID,
		Status:    status,
	})
	if err != nil {
		t.Fatalf("seed task %s: %v", title, err)
	}
	return task
}

func actorOf(u *models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}
