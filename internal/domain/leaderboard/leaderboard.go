// Package leaderboard aggregates session scores into ranked contestant
// standings, globally or scoped to one game.
package leaderboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/petfolk/podium/internal/adapters/repository"
)

// Row is one ranked leaderboard entry.
type Row struct {
	ContestantID   int64
	ContestantName string
	TotalScore     int64
}

// Aggregator computes leaderboards from the activity store. It holds no
// mutable state and always recomputes from source data, so standings
// reflect the latest score assignment instantly.
type Aggregator struct {
	store repository.Reader
}

// New creates an Aggregator over store.
func New(store repository.Reader) *Aggregator {
	return &Aggregator{store: store}
}

// Global returns contestants ranked by total score across all games.
// filterDate, when non-nil, keeps only sessions that started on that UTC
// calendar day; a session is attributed to the day it started regardless
// of when it ended.
func (a *Aggregator) Global(ctx context.Context, filterDate *time.Time) ([]Row, error) {
	return a.compute(ctx, repository.SessionFilter{StartedOn: filterDate})
}

// Game returns contestants ranked by total score within one game. An
// unknown game or a day with no sessions yields an empty leaderboard, not
// an error.
func (a *Aggregator) Game(ctx context.Context, gameID int64, filterDate *time.Time) ([]Row, error) {
	return a.compute(ctx, repository.SessionFilter{GameID: &gameID, StartedOn: filterDate})
}

func (a *Aggregator) compute(ctx context.Context, filter repository.SessionFilter) ([]Row, error) {
	sessions, err := a.store.Sessions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	totals := make(map[int64]int64)
	for _, s := range sessions {
		totals[s.ContestantID] += s.Score
	}
	if len(totals) == 0 {
		return []Row{}, nil
	}

	ids := make([]int64, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}

	// A session referencing a contestant with no record is a
	// data-integrity violation; it surfaces here rather than being
	// papered over with a placeholder name.
	names, err := a.store.ContestantNames(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve contestant names: %w", err)
	}

	rows := make([]Row, 0, len(totals))
	for id, total := range totals {
		rows = append(rows, Row{
			ContestantID:   id,
			ContestantName: names[id],
			TotalScore:     total,
		})
	}

	// Score descending; equal scores ordered by ascending contestant id
	// so ranking is deterministic regardless of input order.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalScore != rows[j].TotalScore {
			return rows[i].TotalScore > rows[j].TotalScore
		}
		return rows[i].ContestantID < rows[j].ContestantID
	})

	return rows, nil
}
