package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"lumina/backend/leaderboard"
	"lumina/backend/models"
)

// CreateSession stores the session and awards xp in one transaction.
func (r *Repository) CreateSession(ctx context.Context, session *models.StudySession, xp int64) error {
	return r.db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return addXP(tx, session.UserID, xp)
	})
}

// SessionFilter narrows ListSessions. Zero values mean no restriction.
type SessionFilter struct {
	Topic string
	From  time.Time
	Limit int
}

// ListSessions returns a user's sessions, newest study date first.
func (r *Repository) ListSessions(ctx context.Context, userID uint, filter SessionFilter) ([]models.StudySession, error) {
	q := r.db(ctx).Where("user_id = ?", userID)
	if filter.Topic != "" {
		q = q.Where("topic = ?", filter.Topic)
	}
	if !filter.From.IsZero() {
		q = q.Where("study_date >= ?", filter.From)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var sessions []models.StudySession
	if err := q.Order("study_date DESC").Order("id DESC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// LatestSessionForTopic returns the most recently logged session on topic.
func (r *Repository) LatestSessionForTopic(ctx context.Context, userID uint, topic string) (*models.StudySession, error) {
	var session models.StudySession
	err := r.db(ctx).
		Where("user_id = ? AND topic = ?", userID, topic).
		Order("id DESC").
		First(&session).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &session, nil
}

// TotalHours sums every session of the user; zero when there are none.
func (r *Repository) TotalHours(ctx context.Context, userID uint) (float64, error) {
	var total float64
	err := r.db(ctx).Model(&models.StudySession{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(hours), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum hours: %w", err)
	}
	return total, nil
}

// StudyDates returns the distinct days on which the user logged a session.
func (r *Repository) StudyDates(ctx context.Context, userID uint) ([]time.Time, error) {
	var dates []time.Time
	err := r.db(ctx).Model(&models.StudySession{}).
		Where("user_id = ?", userID).
		Distinct().
		Order("study_date DESC").
		Pluck("study_date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("study dates: %w", err)
	}
	return dates, nil
}

// Activity bundles the hour total and study dates the leaderboard needs for one user.
func (r *Repository) Activity(ctx context.Context, userID uint) (leaderboard.Activity, error) {
	hours, err := r.TotalHours(ctx, userID)
	if err != nil {
		return leaderboard.Activity{}, err
	}
	dates, err := r.StudyDates(ctx, userID)
	if err != nil {
		return leaderboard.Activity{}, err
	}
	return leaderboard.Activity{Hours: hours, StudyDates: dates}, nil
}

// ActivityFunc binds Activity to ctx for the leaderboard engine.
func (r *Repository) ActivityFunc(ctx context.Context) leaderboard.ActivityFunc {
	return func(userID uint) (leaderboard.Activity, error) {
		return r.Activity(ctx, userID)
	}
}
