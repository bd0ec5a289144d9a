package repository

import (
	"context"
	"sync"
	"time"

	"github.com/petfolk/podium/internal/domain/model"
)

// MemoryStore is a mutex-guarded in-process activity store. It backs local
// runs and tests, and carries the mutator surface the CRUD layer would own
// in production so demo data can be seeded through the same paths.
type MemoryStore struct {
	mu          sync.RWMutex
	sessions    map[int64]model.Session
	games       map[int64]model.Game
	contestants map[int64]model.Contestant

	nextSessionID    int64
	nextGameID       int64
	nextContestantID int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[int64]model.Session),
		games:       make(map[int64]model.Game),
		contestants: make(map[int64]model.Contestant),
	}
}

// Sessions returns sessions matching filter.
func (m *MemoryStore) Sessions(_ context.Context, filter SessionFilter) ([]model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if filter.matches(s) {
			out = append(out, s)
		}
	}
	return out, nil
}

// Games returns all known games.
func (m *MemoryStore) Games(_ context.Context) ([]model.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Game, 0, len(m.games))
	for _, g := range m.games {
		out = append(out, g)
	}
	return out, nil
}

// ContestantNames resolves contestant ids to display names.
func (m *MemoryStore) ContestantNames(_ context.Context, ids []int64) (map[int64]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make(map[int64]string, len(ids))
	for _, id := range ids {
		c, ok := m.contestants[id]
		if !ok {
			return nil, ErrUnknownContestant
		}
		names[id] = c.Name
	}
	return names, nil
}

// AddContestant registers a contestant and returns it with its assigned id.
func (m *MemoryStore) AddContestant(_ context.Context, name string) model.Contestant {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextContestantID++
	c := model.Contestant{ID: m.nextContestantID, Name: name}
	m.contestants[c.ID] = c
	return c
}

// AddGame registers a game and returns it with its assigned id.
func (m *MemoryStore) AddGame(_ context.Context, name string) model.Game {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextGameID++
	g := model.Game{ID: m.nextGameID, Name: name}
	m.games[g.ID] = g
	return g
}

// UpvoteGame increments a game's upvote counter.
func (m *MemoryStore) UpvoteGame(_ context.Context, gameID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.games[gameID]
	if !ok {
		return ErrUnknownGame
	}
	g.Upvotes++
	m.games[gameID] = g
	return nil
}

// StartSession opens a session for contestant in game at start.
func (m *MemoryStore) StartSession(_ context.Context, contestantID, gameID int64, start time.Time) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.contestants[contestantID]; !ok {
		return model.Session{}, ErrUnknownContestant
	}
	if _, ok := m.games[gameID]; !ok {
		return model.Session{}, ErrUnknownGame
	}

	m.nextSessionID++
	s := model.Session{
		ID:           m.nextSessionID,
		ContestantID: contestantID,
		GameID:       gameID,
		StartTime:    start,
	}
	m.sessions[s.ID] = s
	return s, nil
}

// EndSession closes an active session at end.
func (m *MemoryStore) EndSession(_ context.Context, sessionID int64, end time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return ErrUnknownSession
	}
	if s.EndTime != nil {
		return ErrSessionEnded
	}
	s.EndTime = &end
	m.sessions[sessionID] = s
	return nil
}

// AssignScore sets the score of an existing session.
func (m *MemoryStore) AssignScore(_ context.Context, sessionID, score int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return ErrUnknownSession
	}
	s.Score = score
	m.sessions[sessionID] = s
	return nil
}
