// Package repository defines the activity store read interface consumed by
// the ranking and popularity engine, plus its concrete backends.
package repository

import (
	"context"
	"time"

	"github.com/petfolk/podium/internal/domain/model"
)

// SessionFilter narrows a Sessions query. Zero value selects everything.
// Predicates are pushed down into SQL by backends that can.
type SessionFilter struct {
	// GameID restricts to sessions of one game.
	GameID *int64

	// StartedOn keeps only sessions whose start_time falls on this UTC
	// calendar date. Sessions are attributed to the day they started,
	// regardless of when they ended.
	StartedOn *time.Time

	// ActiveOnly keeps only sessions with no end_time.
	ActiveOnly bool
}

// Reader is the narrow read-only view of session/game/contestant data the
// engine consumes. The CRUD layer owning these records lives elsewhere; the
// engine never mutates them.
type Reader interface {
	// Sessions returns sessions matching filter.
	Sessions(ctx context.Context, filter SessionFilter) ([]model.Session, error)

	// Games returns all known games.
	Games(ctx context.Context) ([]model.Game, error)

	// ContestantNames resolves contestant ids to display names. Every id
	// must resolve; an id with no contestant row yields ErrUnknownContestant.
	ContestantNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

// matches reports whether s satisfies filter. Shared by in-memory backends.
func (f SessionFilter) matches(s model.Session) bool {
	if f.GameID != nil && s.GameID != *f.GameID {
		return false
	}
	if f.ActiveOnly && !s.Active() {
		return false
	}
	if f.StartedOn != nil && !model.SameDate(s.StartTime, *f.StartedOn) {
		return false
	}
	return true
}
