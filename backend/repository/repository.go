// Package repository is the GORM-backed store for users, sessions,
// conversations and study groups.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrAlreadyMember = errors.New("already a member of this group")
	ErrNotMember     = errors.New("not a member of this group")
)

type Repository struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) db(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
