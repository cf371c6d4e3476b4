package models

import "time"

type StudyGroup struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"index;size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatorID   uint      `gorm:"index;not null" json:"creator_id"`
	IsPublic    bool      `gorm:"not null" json:"is_public"` // no default tag: gorm would replace an explicit false
	CreatedAt   time.Time `json:"created_at"`

	Creator User   `gorm:"foreignKey:CreatorID" json:"-"`
	Members []User `gorm:"many2many:study_group_members;" json:"-"`
}

// GroupMemberTable is the join table behind StudyGroup.Members.
const GroupMemberTable = "study_group_members"

// All returns every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&StudySession{},
		&Conversation{},
		&StudyGroup{},
	}
}
