package model

import "time"

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
	SessionVacation  SessionStatus = "vacation"
)

// IsActive reports whether the session participates in conflict checks and
// load-counting rules. Cancelled and vacation sessions are excluded.
func (s SessionStatus) IsActive() bool {
	return s == SessionScheduled || s == SessionCompleted
}

// Session is one lesson on the roster. StartTime and DurationMinutes are
// optional: a zero value falls back to the student default, then to the
// global scheduling default.
// swagger:model Session
type Session struct {
	BaseModel
	StudentID       uint          `gorm:"index;not null" json:"studentId"`
	Date            time.Time     `gorm:"type:date;index;not null" json:"date"`
	StartTime       string        `gorm:"size:5" json:"startTime"` // "HH:MM"
	DurationMinutes int           `gorm:"default:0" json:"durationMinutes"`
	Status          SessionStatus `gorm:"type:varchar(20);default:'scheduled';index" json:"status"`
	Topic           string        `gorm:"size:255" json:"topic"`
	Notes           string        `gorm:"type:text" json:"notes"`
	CancelledAt     *time.Time    `json:"cancelledAt"`
}

func (Session) TableName() string {
	return "sessions"
}

// SessionCandidate is the shape validated against the roster before a
// session is inserted or a cancelled one is restored.
// swagger:model SessionCandidate
type SessionCandidate struct {
	Date            time.Time `json:"date" binding:"required"`
	StartTime       string    `json:"startTime" binding:"required"`
	DurationMinutes int       `json:"durationMinutes"`
	// ExcludeSessionID skips one roster session during the check, so a
	// restore does not conflict with itself.
	ExcludeSessionID uint `json:"excludeSessionId"`
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
