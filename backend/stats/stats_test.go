package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lumina/backend/models"
)

var today = time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC) // a Thursday

func daysAgo(n int) time.Time {
	return today.AddDate(0, 0, -n)
}

func session(topic string, hours float64, date time.Time, focus models.FocusLevel) models.StudySession {
	return models.StudySession{Topic: topic, Hours: hours, StudyDate: date, FocusLevel: focus}
}

func TestTotalHours(t *testing.T) {
	assert.Equal(t, 0.0, TotalHours(nil))
	assert.InDelta(t, 6.75, TotalHours([]models.StudySession{
		session("go", 2.5, today, models.FocusHigh),
		session("go", 4.25, daysAgo(30), models.FocusLow),
	}), 1e-9)
}

func TestStreak(t *testing.T) {
	tests := []struct {
		name  string
		dates []time.Time
		want  int
	}{
		{name: "no sessions", dates: nil, want: 0},
		{name: "today only", dates: []time.Time{today}, want: 1},
		{name: "yesterday only", dates: []time.Time{daysAgo(1)}, want: 1},
		{name: "two days ago only", dates: []time.Time{daysAgo(2)}, want: 0},
		{name: "three consecutive days ending today", dates: []time.Time{daysAgo(2), today, daysAgo(1)}, want: 3},
		{name: "consecutive days ending yesterday", dates: []time.Time{daysAgo(1), daysAgo(2), daysAgo(3)}, want: 3},
		{name: "gap breaks the streak", dates: []time.Time{today, daysAgo(1), daysAgo(3), daysAgo(4)}, want: 2},
		{name: "same day counted once", dates: []time.Time{today, today, today, daysAgo(1)}, want: 2},
		{name: "future dates ignored", dates: []time.Time{today.AddDate(0, 0, 2), today}, want: 1},
		{
			name:  "time of day does not matter",
			dates: []time.Time{today.Add(23 * time.Hour), daysAgo(1).Add(time.Hour)},
			want:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Streak(tt.dates, today))
		})
	}
}

func TestStreak_KConsecutiveDays(t *testing.T) {
	for k := 1; k <= 30; k++ {
		dates := make([]time.Time, 0, k)
		for i := 0; i < k; i++ {
			dates = append(dates, daysAgo(i))
		}
		assert.Equal(t, k, Streak(dates, today), "k=%d", k)
	}
}

func TestFocusScore(t *testing.T) {
	tests := []struct {
		name     string
		sessions []models.StudySession
		want     int
	}{
		{name: "empty week", want: 0},
		{
			name: "all high",
			sessions: []models.StudySession{
				session("a", 1, today, models.FocusHigh),
				session("a", 1, daysAgo(3), models.FocusHigh),
			},
			want: 100,
		},
		{
			name: "all low",
			sessions: []models.StudySession{
				session("a", 1, today, models.FocusLow),
				session("a", 1, daysAgo(6), models.FocusLow),
			},
			want: 30,
		},
		{
			name: "mixed rounds half up",
			sessions: []models.StudySession{
				session("a", 2.5, today, models.FocusHigh),
				session("a", 1, today, models.FocusLow),
			},
			want: 65,
		},
		{
			name: "each occurrence counts",
			sessions: []models.StudySession{
				session("a", 1, today, models.FocusHigh),
				session("a", 1, today, models.FocusHigh),
				session("a", 1, daysAgo(1), models.FocusMedium),
			},
			want: 87, // (100+100+60)/3 = 86.67
		},
		{
			name: "outside the window ignored",
			sessions: []models.StudySession{
				session("a", 1, daysAgo(7), models.FocusLow),
				session("a", 1, daysAgo(2), models.FocusMedium),
			},
			want: 60,
		},
		{
			name: "only old sessions",
			sessions: []models.StudySession{
				session("a", 1, daysAgo(10), models.FocusHigh),
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FocusScore(tt.sessions, today)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestWeeklyChart(t *testing.T) {
	sessions := []models.StudySession{
		session("go", 2.5, today, models.FocusHigh),
		session("go", 1.0, today, models.FocusLow),
		session("sql", 0.5, daysAgo(6), models.FocusMedium),
		session("sql", 9, daysAgo(7), models.FocusMedium),
	}

	chart := WeeklyChart(sessions, today)

	assert.Equal(t, []ChartPoint{
		{Date: "2024-03-08", Day: "F", Hours: 0.5},
		{Date: "2024-03-09", Day: "S", Hours: 0},
		{Date: "2024-03-10", Day: "S", Hours: 0},
		{Date: "2024-03-11", Day: "M", Hours: 0},
		{Date: "2024-03-12", Day: "T", Hours: 0},
		{Date: "2024-03-13", Day: "W", Hours: 0},
		{Date: "2024-03-14", Day: "T", Hours: 3.5},
	}, chart)
}

func TestTopicCount(t *testing.T) {
	assert.Equal(t, 0, TopicCount(nil))
	assert.Equal(t, 3, TopicCount([]models.StudySession{
		session("Go", 1, today, models.FocusHigh),
		session("go", 1, today, models.FocusHigh),
		session("Go", 1, daysAgo(2), models.FocusHigh),
		session("SQL", 1, daysAgo(2), models.FocusHigh),
	}))
}

func TestCompute_SameDayScenario(t *testing.T) {
	sessions := []models.StudySession{
		session("Calculus", 2.5, today, models.FocusHigh),
		session("Calculus", 1.0, today, models.FocusLow),
	}

	summary := Compute(sessions, today.Add(15*time.Hour))

	assert.Equal(t, 3.5, summary.TotalHours)
	assert.Equal(t, 1, summary.Streak)
	assert.Equal(t, 65, summary.FocusScore)
	assert.Equal(t, 1, summary.TopicsCount)
	assert.Equal(t, 2, summary.SessionsCount)
	assert.Len(t, summary.WeeklyChart, WindowDays)
	assert.Equal(t, 3.5, summary.WeeklyChart[WindowDays-1].Hours)
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("UTC+6", 6*3600)
	// 01:00 local on the 15th is still the 14th in UTC; the local date wins.
	local := time.Date(2024, time.March, 15, 1, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), Day(local))
}
