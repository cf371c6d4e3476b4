package stats

import (
	"sort"
	"time"

	"lumina/backend/models"
)

// ProgressMonths is how many calendar months the progress history covers.
const ProgressMonths = 4

// MonthProgress aggregates one calendar month.
type MonthProgress struct {
	Month      time.Month `json:"month"`
	Year       int        `json:"year"`
	Hours      float64    `json:"hours"`
	Sessions   int        `json:"sessions"`
	ActiveDays int        `json:"active_days"`
}

// TopicProgress aggregates every session of one topic.
type TopicProgress struct {
	Topic       string  `json:"topic"`
	Hours       float64 `json:"hours"`
	Sessions    int     `json:"sessions"`
	LastStudied string  `json:"last_studied"`
}

// MonthStart returns the first day of the month that lies n months before today's month.
func MonthStart(today time.Time, n int) time.Time {
	today = Day(today)
	return time.Date(today.Year(), today.Month()-time.Month(n), 1, 0, 0, 0, 0, time.UTC)
}

// Monthly returns the last months calendar months, newest first, including the current one.
// Sessions dated after today are ignored.
func Monthly(sessions []models.StudySession, today time.Time, months int) []MonthProgress {
	today = Day(today)
	out := make([]MonthProgress, months)
	index := make(map[time.Time]int, months)
	for i := 0; i < months; i++ {
		start := MonthStart(today, i)
		out[i] = MonthProgress{Month: start.Month(), Year: start.Year()}
		index[start] = i
	}

	days := make([]map[time.Time]struct{}, months)
	for _, s := range sessions {
		d := Day(s.StudyDate)
		if d.After(today) {
			continue
		}
		i, ok := index[time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)]
		if !ok {
			continue
		}
		out[i].Hours += s.Hours
		out[i].Sessions++
		if days[i] == nil {
			days[i] = make(map[time.Time]struct{})
		}
		days[i][d] = struct{}{}
	}
	for i := range out {
		out[i].Hours = roundHours(out[i].Hours)
		out[i].ActiveDays = len(days[i])
	}
	return out
}

// ByTopic groups sessions per topic, most studied first and ties by name.
func ByTopic(sessions []models.StudySession) []TopicProgress {
	byTopic := make(map[string]*TopicProgress)
	last := make(map[string]time.Time)
	for _, s := range sessions {
		p, ok := byTopic[s.Topic]
		if !ok {
			p = &TopicProgress{Topic: s.Topic}
			byTopic[s.Topic] = p
		}
		p.Hours += s.Hours
		p.Sessions++
		if d := Day(s.StudyDate); d.After(last[s.Topic]) {
			last[s.Topic] = d
		}
	}

	out := make([]TopicProgress, 0, len(byTopic))
	for topic, p := range byTopic {
		p.Hours = roundHours(p.Hours)
		p.LastStudied = last[topic].Format(models.DateLayout)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hours != out[j].Hours {
			return out[i].Hours > out[j].Hours
		}
		return out[i].Topic < out[j].Topic
	})
	return out
}
