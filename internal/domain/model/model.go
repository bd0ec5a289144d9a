// Package model contains domain models passed between layers.
package model

import "time"

// Session represents one contestant's timed participation in one game.
// EndTime is nil while the contestant is still playing. Score defaults to
// zero until the out-of-scope CRUD layer assigns one.
type Session struct {
	ID           int64
	ContestantID int64
	GameID       int64
	StartTime    time.Time
	EndTime      *time.Time
	Score        int64
}

// Active reports whether the session is still running (no end time yet).
func (s Session) Active() bool {
	return s.EndTime == nil
}

// Duration returns the finished session length. Zero for active sessions.
func (s Session) Duration() time.Duration {
	if s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// Game is the read-only view of a game the engine consumes.
// Upvotes never decreases within engine scope.
type Game struct {
	ID      int64
	Name    string
	Upvotes int64
}

// Contestant is used only for display-name resolution in leaderboards.
type Contestant struct {
	ID   int64
	Name string
}

// DateOf truncates t to its UTC calendar date (midnight UTC). All
// date-scoped aggregation goes through this so filtering never depends on
// string formatting or the local timezone.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether a and b fall on the same UTC calendar day.
func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// Yesterday returns the UTC calendar day immediately preceding now.
func Yesterday(now time.Time) time.Time {
	return DateOf(now).AddDate(0, 0, -1)
}
