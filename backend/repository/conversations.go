package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"lumina/backend/models"
)

// CreateConversation appends a tutor exchange and awards xp in one transaction.
func (r *Repository) CreateConversation(ctx context.Context, conv *models.Conversation, xp int64) error {
	return r.db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return fmt.Errorf("create conversation: %w", err)
		}
		return addXP(tx, conv.UserID, xp)
	})
}

// ConversationHistory returns the user's conversations, newest first.
func (r *Repository) ConversationHistory(ctx context.Context, userID uint, limit int) ([]models.Conversation, error) {
	q := r.db(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var conversations []models.Conversation
	if err := q.Find(&conversations).Error; err != nil {
		return nil, fmt.Errorf("conversation history: %w", err)
	}
	return conversations, nil
}
