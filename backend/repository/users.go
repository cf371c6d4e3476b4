package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"lumina/backend/leaderboard"
	"lumina/backend/models"
)

// CreateUser inserts a new user. A duplicate email yields ErrEmailTaken.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	var existing int64
	if err := r.db(ctx).Model(&models.User{}).Where("email = ?", user.Email).Count(&existing).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if existing > 0 {
		return ErrEmailTaken
	}

	if err := r.db(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repository) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *Repository) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// addXP increments total_xp in the database itself so concurrent awards never
// overwrite each other.
func addXP(tx *gorm.DB, userID uint, amount int64) error {
	if amount <= 0 {
		return nil
	}
	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("total_xp", gorm.Expr("total_xp + ?", amount))
	if res.Error != nil {
		return fmt.Errorf("add xp: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddXP awards XP outside of any other write.
func (r *Repository) AddXP(ctx context.Context, userID uint, amount int64) error {
	return addXP(r.db(ctx), userID, amount)
}

// TopMembers returns at most limit users in leaderboard order.
func (r *Repository) TopMembers(ctx context.Context, limit int) ([]leaderboard.Member, error) {
	return r.rankedMembers(r.db(ctx).Model(&models.User{}).Limit(limit))
}

// AllMembers returns every user in leaderboard order.
func (r *Repository) AllMembers(ctx context.Context) ([]leaderboard.Member, error) {
	return r.rankedMembers(r.db(ctx).Model(&models.User{}))
}

// CountUsers returns the number of registered users.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

func (r *Repository) rankedMembers(q *gorm.DB) ([]leaderboard.Member, error) {
	var rows []struct {
		ID      uint
		Email   string
		TotalXP int64
	}
	err := q.Select("users.id, users.email, users.total_xp").
		Order("users.total_xp DESC").
		Order("users.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("rank users: %w", err)
	}

	members := make([]leaderboard.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, leaderboard.Member{UserID: row.ID, Email: row.Email, TotalXP: row.TotalXP})
	}
	return members, nil
}

// UpdateCredentials stores a new email and password hash for the user.
// An email owned by another user yields ErrEmailTaken.
func (r *Repository) UpdateCredentials(ctx context.Context, user *models.User) error {
	var taken int64
	err := r.db(ctx).Model(&models.User{}).
		Where("email = ? AND id <> ?", user.Email, user.ID).
		Count(&taken).Error
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken > 0 {
		return ErrEmailTaken
	}

	res := r.db(ctx).Model(user).Updates(map[string]interface{}{
		"email":           user.Email,
		"hashed_password": user.HashedPassword,
	})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
