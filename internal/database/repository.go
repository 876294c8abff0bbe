package database

import (
	"time"

	"github.com/kicadtime/kicadtime/internal/models"

	"github.com/pkg/errors"

	"gorm.io/gorm"
)

// Repository handles all database operations for the heartbeat journal
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a journaled heartbeat into the database
func (r *Repository) Create(hb *models.Heartbeat) error {
	result := r.db.Create(hb)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert heartbeat")
	}
	return nil
}

// GetHeartbeatsSince retrieves all heartbeats since a given time in
// chronological order. Raw rows only - the reporter does the duration
// math at runtime.
func (r *Repository) GetHeartbeatsSince(since time.Time) ([]*models.Heartbeat, error) {
	var heartbeats []*models.Heartbeat
	result := r.db.Where("timestamp >= ?", since).Order("timestamp ASC").Find(&heartbeats)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query heartbeats")
	}

	return heartbeats, nil
}

// GetLatest retrieves the most recent journaled heartbeat
func (r *Repository) GetLatest() (*models.Heartbeat, error) {
	var hb models.Heartbeat
	result := r.db.Order("timestamp DESC").First(&hb)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest heartbeat")
	}
	return &hb, nil
}

// CountForSession returns how many heartbeats a daemon session produced
func (r *Repository) CountForSession(sessionID string) (int64, error) {
	var count int64
	result := r.db.Model(&models.Heartbeat{}).Where("session_id = ?", sessionID).Count(&count)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to count session heartbeats")
	}
	return count, nil
}

// DeleteOldHeartbeats deletes heartbeats older than a specified date (soft delete)
func (r *Repository) DeleteOldHeartbeats(before time.Time) (int64, error) {
	result := r.db.Where("timestamp < ?", before).Delete(&models.Heartbeat{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old heartbeats")
	}
	return result.RowsAffected, nil
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// Clear removes all journaled heartbeats from the database
func (r *Repository) Clear() error {
	result := r.db.Exec("DELETE FROM heartbeats")
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear heartbeats")
	}
	return nil
}
