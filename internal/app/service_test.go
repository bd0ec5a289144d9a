package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	service "github.com/petfolk/podium/internal/app"
	"github.com/petfolk/podium/internal/config"
	"github.com/petfolk/podium/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func TestService_Lifecycle(t *testing.T) {
	convey.Convey("Given a service on the memory backend", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithStoreBackend(config.StoreMemory),
			service.WithPopularityTTL(time.Minute),
		)

		convey.Convey("When started", func() {
			err := svc.Start(ctx)
			defer svc.Stop()

			convey.Convey("Then it reports itself as running", func() {
				convey.So(err, convey.ShouldBeNil)
				stats := svc.GetStats()
				convey.So(stats["started"], convey.ShouldBeTrue)
				convey.So(stats["store_backend"], convey.ShouldEqual, config.StoreMemory)
			})

			convey.Convey("And starting again is a no-op", func() {
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
			})

			convey.Convey("And stopping twice is safe", func() {
				svc.Stop()
				svc.Stop()
			})
		})
	})
}

func TestService_Queries(t *testing.T) {
	convey.Convey("Given a started service with recorded activity", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithStoreBackend(config.StoreMemory))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		store := svc.MemoryStore()
		convey.So(store, convey.ShouldNotBeNil)

		alice := store.AddContestant(ctx, "alice")
		bob := store.AddContestant(ctx, "bob")
		game := store.AddGame(ctx, "fetch")

		start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
		for i, c := range []struct {
			id    int64
			score int64
		}{{alice.ID, 300}, {bob.ID, 500}} {
			sess, err := store.StartSession(ctx, c.id, game.ID, start.Add(time.Duration(i)*time.Hour))
			convey.So(err, convey.ShouldBeNil)
			convey.So(store.EndSession(ctx, sess.ID, sess.StartTime.Add(30*time.Minute)), convey.ShouldBeNil)
			convey.So(store.AssignScore(ctx, sess.ID, c.score), convey.ShouldBeNil)
		}

		convey.Convey("When the global leaderboard is queried", func() {
			rows, err := svc.GlobalLeaderboard(ctx, nil)

			convey.Convey("Then contestants are ranked by total score", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rows, convey.ShouldHaveLength, 2)
				convey.So(rows[0].ContestantName, convey.ShouldEqual, "bob")
				convey.So(rows[0].TotalScore, convey.ShouldEqual, 500)
				convey.So(rows[1].ContestantName, convey.ShouldEqual, "alice")
			})
		})

		convey.Convey("When the per-game leaderboard is queried", func() {
			rows, err := svc.GameLeaderboard(ctx, game.ID, nil)

			convey.Convey("Then only that game's scores count", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rows, convey.ShouldHaveLength, 2)
			})
		})

		convey.Convey("When popularity is queried twice within the TTL", func() {
			first, err := svc.Popularity(ctx)
			convey.So(err, convey.ShouldBeNil)

			// Data changes should not show up until the snapshot expires
			// or is invalidated.
			extra := store.AddGame(ctx, "tunnel dash")
			second, err := svc.Popularity(ctx)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the cached snapshot is reused", func() {
				convey.So(second, convey.ShouldResemble, first)
			})

			convey.Convey("And invalidating forces a recompute", func() {
				svc.InvalidatePopularity()
				third, err := svc.Popularity(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(third), convey.ShouldEqual, len(first)+1)

				found := false
				for _, r := range third {
					if r.GameID == extra.ID {
						found = true
					}
				}
				convey.So(found, convey.ShouldBeTrue)
			})
		})
	})
}

func TestService_DemoSeed(t *testing.T) {
	convey.Convey("Given a service started with demo seeding", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithStoreBackend(config.StoreMemory),
			service.WithDemoSeed(true),
		)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		convey.Convey("Then the endpoints serve data immediately", func() {
			rows, err := svc.GlobalLeaderboard(ctx, nil)
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(rows), convey.ShouldBeGreaterThan, 0)

			results, err := svc.Popularity(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(results), convey.ShouldBeGreaterThan, 0)

			for _, r := range results {
				convey.So(r.Score, convey.ShouldBeBetweenOrEqual, 0, 1)
			}
		})
	})
}
