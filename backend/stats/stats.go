// Package stats derives dashboard statistics from a user's study sessions.
// Every function is pure: callers pass the sessions and the current day.
package stats

import (
	"math"
	"sort"
	"time"

	"lumina/backend/models"
)

// WindowDays is the length of the trailing window used by the focus score and the chart.
const WindowDays = 7

var focusWeights = map[models.FocusLevel]float64{
	models.FocusHigh:   100,
	models.FocusMedium: 60,
	models.FocusLow:    30,
}

// ChartPoint is one day of the weekly chart.
type ChartPoint struct {
	Date  string  `json:"date"`
	Day   string  `json:"day"`
	Hours float64 `json:"hours"`
}

// Summary bundles every derived dashboard value.
type Summary struct {
	TotalHours    float64      `json:"total_hours"`
	Streak        int          `json:"streak"`
	FocusScore    int          `json:"focus_score"`
	TopicsCount   int          `json:"topics_count"`
	SessionsCount int          `json:"sessions_count"`
	WeeklyChart   []ChartPoint `json:"weekly_chart"`
}

// Day truncates t to its calendar date, expressed as midnight UTC.
// The date is read in t's own location, so pass "now" already converted to the app timezone.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Compute(sessions []models.StudySession, today time.Time) Summary {
	dates := make([]time.Time, 0, len(sessions))
	for _, s := range sessions {
		dates = append(dates, s.StudyDate)
	}
	return Summary{
		TotalHours:    roundHours(TotalHours(sessions)),
		Streak:        Streak(dates, today),
		FocusScore:    FocusScore(sessions, today),
		TopicsCount:   TopicCount(sessions),
		SessionsCount: len(sessions),
		WeeklyChart:   WeeklyChart(sessions, today),
	}
}

func TotalHours(sessions []models.StudySession) float64 {
	var total float64
	for _, s := range sessions {
		total += s.Hours
	}
	return total
}

// Streak counts consecutive study days ending today or yesterday.
// Several sessions on one day count once; days after today are ignored.
func Streak(dates []time.Time, today time.Time) int {
	today = Day(today)

	seen := make(map[time.Time]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		d = Day(d)
		if d.After(today) {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	if len(days) == 0 {
		return 0
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	expected := today
	if yesterday := today.AddDate(0, 0, -1); days[0].Equal(yesterday) {
		expected = yesterday
	}

	streak := 0
	for _, d := range days {
		if !d.Equal(expected) {
			break
		}
		streak++
		expected = d.AddDate(0, 0, -1)
	}
	return streak
}

// FocusScore is the rounded weighted mean focus over the last WindowDays days, today included.
func FocusScore(sessions []models.StudySession, today time.Time) int {
	today = Day(today)
	start := today.AddDate(0, 0, -(WindowDays - 1))

	var sum float64
	var count int
	for _, s := range sessions {
		d := Day(s.StudyDate)
		if d.Before(start) || d.After(today) {
			continue
		}
		weight, ok := focusWeights[s.FocusLevel]
		if !ok {
			continue
		}
		sum += weight
		count++
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(sum / float64(count)))
}

// WeeklyChart returns WindowDays buckets ending today, oldest first.
func WeeklyChart(sessions []models.StudySession, today time.Time) []ChartPoint {
	today = Day(today)
	start := today.AddDate(0, 0, -(WindowDays - 1))

	perDay := make(map[time.Time]float64, WindowDays)
	for _, s := range sessions {
		d := Day(s.StudyDate)
		if d.Before(start) || d.After(today) {
			continue
		}
		perDay[d] += s.Hours
	}

	points := make([]ChartPoint, 0, WindowDays)
	for i := 0; i < WindowDays; i++ {
		d := start.AddDate(0, 0, i)
		points = append(points, ChartPoint{
			Date:  d.Format(models.DateLayout),
			Day:   d.Weekday().String()[:1],
			Hours: roundHours(perDay[d]),
		})
	}
	return points
}

// TopicCount counts distinct topics, case-sensitive.
func TopicCount(sessions []models.StudySession) int {
	topics := make(map[string]struct{}, len(sessions))
	for _, s := range sessions {
		topics[s.Topic] = struct{}{}
	}
	return len(topics)
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
