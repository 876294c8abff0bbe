package models

import (
	"time"

	"gorm.io/gorm"
)

// Heartbeat is one journaled dispatch to the time-tracking backend.
type Heartbeat struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	SessionID string         `gorm:"not null;index" json:"session_id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	Entity    string         `gorm:"not null" json:"entity"`
	Project   string         `gorm:"not null;index" json:"project"`
	Sent      bool           `gorm:"not null;default:false" json:"sent"`
	DryRun    bool           `gorm:"not null;default:false" json:"dry_run"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type ProjectSummary struct {
	Project        string  `json:"project"`
	TotalSeconds   int64   `json:"total_seconds"`
	TotalMinutes   float64 `json:"total_minutes"`
	TotalHours     float64 `json:"total_hours"`
	HeartbeatCount int     `json:"heartbeat_count"`
	Percentage     float64 `json:"percentage,omitempty"`
}

type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"` // "day", "week", "month"
}

type Report struct {
	Period       ReportPeriod     `json:"period"`
	Projects     []ProjectSummary `json:"projects"`
	TotalSeconds int64            `json:"total_seconds"`
	TotalMinutes float64          `json:"total_minutes"`
	TotalHours   float64          `json:"total_hours"`
	GeneratedAt  time.Time        `json:"generated_at"`
}
