package models

import (
	"math"
	"time"
)

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	HashedPassword string    `gorm:"not null" json:"-"`
	TotalXP        int64     `gorm:"not null;default:0" json:"total_xp"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"-"`

	StudySessions []StudySession `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Conversations []Conversation `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

// XP awards. XP only ever grows.
const (
	XPPerStudyHour  = 10
	XPTutorQuestion = 5
	XPAssessment    = 15
)

// SessionXP is the XP granted for logging a session of the given length, at least 1.
func SessionXP(hours float64) int64 {
	xp := int64(math.Round(hours * XPPerStudyHour))
	if xp < 1 {
		return 1
	}
	return xp
}
