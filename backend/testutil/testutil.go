// Package testutil provides shared test helpers: an in-memory SQLite store and fixtures.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lumina/backend/models"
)

// NewDB opens a private, migrated in-memory SQLite database that lives for the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// CreateUser inserts a user with a throwaway password hash.
func CreateUser(t *testing.T, db *gorm.DB, email string, xp int64) *models.User {
	t.Helper()

	user := &models.User{Email: email, HashedPassword: "x", TotalXP: xp}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateSession inserts a study session without touching XP.
func CreateSession(t *testing.T, db *gorm.DB, userID uint, topic string, hours float64, date time.Time, focus models.FocusLevel) *models.StudySession {
	t.Helper()

	session := &models.StudySession{
		UserID:     userID,
		Topic:      topic,
		Hours:      hours,
		StudyDate:  date,
		FocusLevel: focus,
	}
	require.NoError(t, db.Create(session).Error)
	return session
}

// Date builds a calendar date at midnight UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
