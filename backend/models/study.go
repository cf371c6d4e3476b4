package models

import "time"

type FocusLevel string

const (
	FocusLow    FocusLevel = "low"
	FocusMedium FocusLevel = "medium"
	FocusHigh   FocusLevel = "high"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// StudySession is one logged block of study. Sessions are never updated.
type StudySession struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	Topic      string     `gorm:"index;size:100;not null" json:"topic"`
	Hours      float64    `gorm:"not null;check:hours > 0 AND hours <= 24" json:"hours"`
	StudyDate  time.Time  `gorm:"type:date;index;not null" json:"study_date"`
	FocusLevel FocusLevel `gorm:"size:10;not null" json:"focus_level"`
	Notes      string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (StudySession) TableName() string {
	return "study_logs"
}
