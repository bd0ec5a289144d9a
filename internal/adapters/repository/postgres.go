package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq" // also registers the postgres driver

	"github.com/petfolk/podium/internal/domain/model"
)

// Default per-query timeout; the engine never holds the popularity cache
// lock across a store query, but a hung query must still be bounded.
const defaultQueryTimeout = 5 * time.Second

// PostgresStore reads sessions, games, and contestants from a relational
// store. It is strictly read-only: schema management and writes belong to
// the CRUD layer.
type PostgresStore struct {
	db           *sqlx.DB
	queryTimeout time.Duration
}

// PostgresOption applies a configuration option to the PostgresStore.
type PostgresOption func(*PostgresStore)

// WithQueryTimeout bounds each store query.
func WithQueryTimeout(d time.Duration) PostgresOption {
	return func(p *PostgresStore) {
		if d > 0 {
			p.queryTimeout = d
		}
	}
}

// NewPostgresStore opens a connection pool for dsn and verifies it.
func NewPostgresStore(ctx context.Context, dsn string, opts ...PostgresOption) (*PostgresStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	p := &PostgresStore{
		db:           db,
		queryTimeout: defaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Close releases the underlying connection pool.
func (p *PostgresStore) Close() error {
	if err := p.db.Close(); err != nil {
		return fmt.Errorf("close postgres: %w", err)
	}
	return nil
}

type sessionRow struct {
	ID           int64      `db:"id"`
	ContestantID int64      `db:"contestant_id"`
	GameID       int64      `db:"game_id"`
	StartTime    time.Time  `db:"start_time"`
	EndTime      *time.Time `db:"end_time"`
	Score        int64      `db:"score"`
}

type gameRow struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	Upvotes int64  `db:"upvotes"`
}

// Sessions returns sessions matching filter. Filter predicates are pushed
// into the WHERE clause; the date predicate compares the UTC calendar date
// of start_time, matching the engine's day-attribution rule.
func (p *PostgresStore) Sessions(ctx context.Context, filter SessionFilter) ([]model.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, p.queryTimeout)
	defer cancel()

	var (
		where []string
		args  []interface{}
	)
	if filter.GameID != nil {
		args = append(args, *filter.GameID)
		where = append(where, fmt.Sprintf("game_id = $%d", len(args)))
	}
	if filter.StartedOn != nil {
		args = append(args, model.DateOf(*filter.StartedOn))
		where = append(where, fmt.Sprintf("date(start_time AT TIME ZONE 'UTC') = $%d", len(args)))
	}
	if filter.ActiveOnly {
		where = append(where, "end_time IS NULL")
	}

	query := "SELECT id, contestant_id, game_id, start_time, end_time, score FROM sessions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	var rows []sessionRow
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}

	out := make([]model.Session, len(rows))
	for i, r := range rows {
		out[i] = model.Session{
			ID:           r.ID,
			ContestantID: r.ContestantID,
			GameID:       r.GameID,
			StartTime:    r.StartTime.UTC(),
			EndTime:      r.EndTime,
			Score:        r.Score,
		}
	}
	return out, nil
}

// Games returns all known games.
func (p *PostgresStore) Games(ctx context.Context) ([]model.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, p.queryTimeout)
	defer cancel()

	const query = "SELECT id, name, upvotes FROM games"

	var rows []gameRow
	if err := p.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}

	out := make([]model.Game, len(rows))
	for i, r := range rows {
		out[i] = model.Game{ID: r.ID, Name: r.Name, Upvotes: r.Upvotes}
	}
	return out, nil
}

// ContestantNames resolves contestant ids to display names. A referenced
// contestant with no row is a data-integrity violation and surfaces as
// ErrUnknownContestant rather than being silently dropped.
func (p *PostgresStore) ContestantNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	if len(ids) == 0 {
		return map[int64]string{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.queryTimeout)
	defer cancel()

	const query = "SELECT id, name FROM contestants WHERE id = ANY($1)"

	var rows []struct {
		ID   int64  `db:"id"`
		Name string `db:"name"`
	}
	if err := p.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("query contestants: %w", err)
	}

	names := make(map[int64]string, len(rows))
	for _, r := range rows {
		names[r.ID] = r.Name
	}
	for _, id := range ids {
		if _, ok := names[id]; !ok {
			return nil, fmt.Errorf("contestant %d: %w", id, ErrUnknownContestant)
		}
	}
	return names, nil
}
