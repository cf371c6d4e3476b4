// Package leaderboard ranks users by XP and resolves a requester's position.
package leaderboard

import (
	"errors"
	"math"
	"sort"
	"time"

	"lumina/backend/stats"
)

// DefaultLimit is the size of the global window when none is configured.
const DefaultLimit = 50

// ErrNotRanked is returned when the requester is absent from the full ranking.
var ErrNotRanked = errors.New("leaderboard: user not ranked")

// Member is the ranking input for one user.
type Member struct {
	UserID  uint
	Email   string
	TotalXP int64
}

// Activity is what the store knows about a user's study history.
type Activity struct {
	Hours      float64
	StudyDates []time.Time
}

// ActivityFunc loads the activity of a single user.
type ActivityFunc func(userID uint) (Activity, error)

// Entry is a derived leaderboard row; never persisted.
type Entry struct {
	Rank       int     `json:"rank"`
	UserID     uint    `json:"user_id"`
	UserEmail  string  `json:"user_email"`
	TotalXP    int64   `json:"total_xp"`
	StudyHours float64 `json:"study_hours"`
	Streak     int     `json:"streak"`
}

type Board struct {
	Entries  []Entry `json:"entries"`
	UserRank *Entry  `json:"user_rank"`
}

// Engine holds the ranking parameters for one request.
//
// UniformStreak switches the rank fallback and group paths from a hardcoded
// zero streak to the real streak computation used by the global window.
type Engine struct {
	Limit         int
	Today         time.Time
	UniformStreak bool
}

// Rank orders members by XP descending, ties by user id ascending.
// The input slice is not modified.
func Rank(members []Member) []Member {
	ranked := make([]Member, len(members))
	copy(ranked, members)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TotalXP != ranked[j].TotalXP {
			return ranked[i].TotalXP > ranked[j].TotalXP
		}
		return ranked[i].UserID < ranked[j].UserID
	})
	return ranked
}

func (e Engine) limit() int {
	if e.Limit <= 0 {
		return DefaultLimit
	}
	return e.Limit
}

// Window ranks members and returns the top Limit entries with hours and streak.
func (e Engine) Window(members []Member, activity ActivityFunc) ([]Entry, error) {
	ranked := Rank(members)
	if len(ranked) > e.limit() {
		ranked = ranked[:e.limit()]
	}

	entries := make([]Entry, 0, len(ranked))
	for i, m := range ranked {
		entry, err := e.entry(i+1, m, activity, true)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ResolveUserRank returns the requester's entry. A window hit is reused as is;
// otherwise the full ranking is loaded and an entry is synthesised from it.
func (e Engine) ResolveUserRank(window []Entry, userID uint, loadAll func() ([]Member, error), activity ActivityFunc) (*Entry, error) {
	for i := range window {
		if window[i].UserID == userID {
			entry := window[i]
			return &entry, nil
		}
	}

	all, err := loadAll()
	if err != nil {
		return nil, err
	}
	for i, m := range Rank(all) {
		if m.UserID != userID {
			continue
		}
		entry, err := e.entry(i+1, m, activity, e.UniformStreak)
		if err != nil {
			return nil, err
		}
		return &entry, nil
	}
	return nil, ErrNotRanked
}

// Global builds the global board: the top window plus the requester's rank.
func (e Engine) Global(top []Member, userID uint, loadAll func() ([]Member, error), activity ActivityFunc) (Board, error) {
	window, err := e.Window(top, activity)
	if err != nil {
		return Board{}, err
	}
	userRank, err := e.ResolveUserRank(window, userID, loadAll, activity)
	if err != nil {
		return Board{}, err
	}
	return Board{Entries: window, UserRank: userRank}, nil
}

// Group ranks every member of a group. UserRank is nil when userID is not a member.
func (e Engine) Group(members []Member, userID uint, activity ActivityFunc) (Board, error) {
	ranked := Rank(members)
	board := Board{Entries: make([]Entry, 0, len(ranked))}
	for i, m := range ranked {
		entry, err := e.entry(i+1, m, activity, e.UniformStreak)
		if err != nil {
			return Board{}, err
		}
		board.Entries = append(board.Entries, entry)
	}
	for i := range board.Entries {
		if board.Entries[i].UserID == userID {
			entry := board.Entries[i]
			board.UserRank = &entry
			break
		}
	}
	return board, nil
}

func (e Engine) entry(rank int, m Member, activity ActivityFunc, withStreak bool) (Entry, error) {
	a, err := activity(m.UserID)
	if err != nil {
		return Entry{}, err
	}
	entry := Entry{
		Rank:       rank,
		UserID:     m.UserID,
		UserEmail:  m.Email,
		TotalXP:    m.TotalXP,
		StudyHours: roundHours(a.Hours),
	}
	if withStreak {
		entry.Streak = stats.Streak(a.StudyDates, e.Today)
	}
	return entry, nil
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
