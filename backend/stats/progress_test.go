package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumina/backend/models"
)

func TestMonthStart(t *testing.T) {
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), MonthStart(today, 0))
	assert.Equal(t, time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), MonthStart(today, 3))
}

func TestMonthly(t *testing.T) {
	sessions := []models.StudySession{
		session("go", 2, today, models.FocusHigh),
		session("go", 1.5, today, models.FocusLow),
		session("sql", 1, daysAgo(20), models.FocusLow), // February
		session("sql", 3, time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC), models.FocusLow),
		session("old", 9, time.Date(2023, time.November, 30, 0, 0, 0, 0, time.UTC), models.FocusLow),
		session("future", 5, today.AddDate(0, 0, 1), models.FocusLow),
	}

	months := Monthly(sessions, today, ProgressMonths)
	require.Len(t, months, ProgressMonths)

	assert.Equal(t, MonthProgress{Month: time.March, Year: 2024, Hours: 3.5, Sessions: 2, ActiveDays: 1}, months[0])
	assert.Equal(t, MonthProgress{Month: time.February, Year: 2024, Hours: 1, Sessions: 1, ActiveDays: 1}, months[1])
	assert.Equal(t, MonthProgress{Month: time.January, Year: 2024}, months[2])
	assert.Equal(t, MonthProgress{Month: time.December, Year: 2023, Hours: 3, Sessions: 1, ActiveDays: 1}, months[3])
}

func TestByTopic(t *testing.T) {
	assert.Empty(t, ByTopic(nil))

	got := ByTopic([]models.StudySession{
		session("sql", 1, daysAgo(3), models.FocusLow),
		session("go", 2, daysAgo(5), models.FocusHigh),
		session("sql", 1, daysAgo(1), models.FocusLow),
		session("art", 2, daysAgo(2), models.FocusLow),
	})
	assert.Equal(t, []TopicProgress{
		{Topic: "art", Hours: 2, Sessions: 1, LastStudied: "2024-03-12"},
		{Topic: "go", Hours: 2, Sessions: 1, LastStudied: "2024-03-09"},
		{Topic: "sql", Hours: 2, Sessions: 2, LastStudied: "2024-03-13"},
	}, got)
}
