package services

import (
	"encoding/json"
	"time"

	"github.com/konstanta-tech/tracker/internal/models"
	"github.com/konstanta-tech/tracker/pkg/logger"
	"gorm.io/gorm"
)

// ActivityEntry describes one audited request.
type ActivityEntry struct {
	UserID *uint
	Method string
	Path   string
	Module string
	Action string
	Status int
	IP     string
	Extra  map[string]interface{}
}

type ActivityService struct {
	db *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

// Record stores an entry. Failures are logged and swallowed so auditing never
// breaks the request being audited.
func (s *ActivityService) Record(entry ActivityEntry) {
	var extra string
	if entry.Extra != nil {
		if b, err := json.Marshal(entry.Extra); err == nil {
			extra = string(b)
		}
	}

	row := &models.ActivityLog{
		UserID:    entry.UserID,
		Method:    entry.Method,
		Path:      entry.Path,
		Module:    entry.Module,
		Action:    entry.Action,
		Status:    entry.Status,
		IP:        entry.IP,
		Extra:     extra,
		CreatedAt: time.Now(),
	}
	if err := s.db.Create(row).Error; err != nil {
		logger.Warn().Err(err).Str("path", entry.Path).Msg("failed to record activity")
	}
}

// Recent returns up to limit entries, newest first.
func (s *ActivityService) Recent(limit int, module string) ([]models.ActivityLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := s.db.Order("created_at DESC, id DESC").Limit(limit)
	if module != "" {
		query = query.Where("module = ?", module)
	}
	logs := []models.ActivityLog{}
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
