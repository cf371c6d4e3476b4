package models

import "time"

// Conversation is one tutor exchange. Append-only.
type Conversation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Topic     string    `gorm:"index;size:100" json:"topic"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
