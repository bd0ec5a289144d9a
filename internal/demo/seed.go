// Package demo seeds the in-memory activity store with generated
// contestants, games, and play sessions so the read endpoints serve
// data out of the box.
package demo

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/petfolk/podium/internal/adapters/repository"
	"github.com/petfolk/podium/internal/domain/model"
)

var contestantNames = []string{
	"Biscuit", "Waffles", "Mochi", "Pickles", "Noodle",
	"Pepper", "Clover", "Tater", "Maple", "Ziggy",
	"Olive", "Rusty", "Pudding", "Sprout", "Banjo",
	"Churro", "Dumpling", "Fig", "Gumbo", "Hazel",
}

var gameNames = []string{
	"Fetch Frenzy", "Tunnel Dash", "Treat Stack",
	"Agility Gauntlet", "Hide and Sniff", "Splash Sprint",
}

// deterministic seed keeps demo output stable across restarts
const randSeed = 42

// Seed populates the store with a day and a half of activity relative to
// now: ended sessions from yesterday, ended sessions from today, and a
// handful of sessions still running.
func Seed(ctx context.Context, store *repository.MemoryStore, now time.Time) error {
	rng := rand.New(rand.NewSource(randSeed))
	now = now.UTC()
	yesterday := model.Yesterday(now)

	contestants := make([]model.Contestant, 0, len(contestantNames))
	for _, name := range contestantNames {
		contestants = append(contestants, store.AddContestant(ctx, name))
	}

	games := make([]model.Game, 0, len(gameNames))
	for _, name := range gameNames {
		games = append(games, store.AddGame(ctx, name))
	}

	for _, g := range games {
		for i := 0; i < rng.Intn(40); i++ {
			if err := store.UpvoteGame(ctx, g.ID); err != nil {
				return fmt.Errorf("upvote game %d: %w", g.ID, err)
			}
		}
	}

	// Yesterday's sessions all finished with a score. These feed both the
	// leaderboard date filter and the popularity signals.
	for i := 0; i < 60; i++ {
		c := contestants[rng.Intn(len(contestants))]
		g := games[rng.Intn(len(games))]
		start := yesterday.Add(time.Duration(rng.Intn(20)) * time.Hour)
		if err := playSession(ctx, store, rng, c.ID, g.ID, start, true); err != nil {
			return err
		}
	}

	// Today's activity: most sessions ended, a few still running.
	today := model.DateOf(now)
	for i := 0; i < 30; i++ {
		c := contestants[rng.Intn(len(contestants))]
		g := games[rng.Intn(len(games))]
		start := today.Add(time.Duration(rng.Intn(8)) * time.Hour)
		if start.After(now) {
			start = now.Add(-time.Duration(rng.Intn(60)+1) * time.Minute)
		}
		ended := i%5 != 0
		if err := playSession(ctx, store, rng, c.ID, g.ID, start, ended); err != nil {
			return err
		}
	}

	return nil
}

func playSession(ctx context.Context, store *repository.MemoryStore, rng *rand.Rand, contestantID, gameID int64, start time.Time, ended bool) error {
	sess, err := store.StartSession(ctx, contestantID, gameID, start)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	if !ended {
		return nil
	}
	end := start.Add(time.Duration(rng.Intn(90)+5) * time.Minute)
	if err := store.EndSession(ctx, sess.ID, end); err != nil {
		return fmt.Errorf("end session %d: %w", sess.ID, err)
	}
	if err := store.AssignScore(ctx, sess.ID, int64(rng.Intn(1000))); err != nil {
		return fmt.Errorf("assign score to session %d: %w", sess.ID, err)
	}
	return nil
}
