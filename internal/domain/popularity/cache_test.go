package popularity_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/petfolk/podium/internal/domain/popularity"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeComputer returns canned results and counts invocations.
type fakeComputer struct {
	mu      sync.Mutex
	calls   int32
	results []popularity.Result
	err     error
	delay   time.Duration
	started chan struct{} // closed once the first compute begins, if set
}

func (f *fakeComputer) ComputeAll(ctx context.Context) ([]popularity.Result, error) {
	if atomic.AddInt32(&f.calls, 1) == 1 && f.started != nil {
		close(f.started)
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results, f.err
}

func (f *fakeComputer) set(results []popularity.Result, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = results
	f.err = err
}

func (f *fakeComputer) callCount() int32 {
	return atomic.LoadInt32(&f.calls)
}

// tickClock is a manually advanced clock.
type tickClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *tickClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func results(gameID int64, score float64) []popularity.Result {
	return []popularity.Result{{GameID: gameID, Score: score}}
}

func TestCacheFreshness(t *testing.T) {
	ctx := context.Background()

	Convey("Given a cache with a controllable clock", t, func() {
		clock := &tickClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)}
		computer := &fakeComputer{results: results(1, 0.5)}
		cache := popularity.NewCache(computer, popularity.WithClock(clock.Now))

		Convey("When called twice inside the freshness window", func() {
			first, err1 := cache.Get(ctx)
			computer.set(results(1, 0.9), nil) // underlying data changes
			clock.Advance(299 * time.Second)
			second, err2 := cache.Get(ctx)

			Convey("Then both calls return the identical snapshot", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(second, ShouldResemble, first)
				So(second[0].Score, ShouldEqual, 0.5)
				So(computer.callCount(), ShouldEqual, 1)
			})
		})

		Convey("When the freshness window has elapsed", func() {
			_, err := cache.Get(ctx)
			So(err, ShouldBeNil)
			computer.set(results(1, 0.9), nil)
			clock.Advance(300 * time.Second)
			refreshed, err := cache.Get(ctx)

			Convey("Then the result reflects the new data", func() {
				So(err, ShouldBeNil)
				So(refreshed[0].Score, ShouldEqual, 0.9)
				So(computer.callCount(), ShouldEqual, 2)
			})
		})

		Convey("When the cache is invalidated", func() {
			_, err := cache.Get(ctx)
			So(err, ShouldBeNil)
			computer.set(results(1, 0.7), nil)
			cache.Invalidate()
			refreshed, err := cache.Get(ctx)

			Convey("Then the next read recomputes immediately", func() {
				So(err, ShouldBeNil)
				So(refreshed[0].Score, ShouldEqual, 0.7)
				So(computer.callCount(), ShouldEqual, 2)
			})
		})
	})
}

func TestCacheSingleFlight(t *testing.T) {
	ctx := context.Background()

	Convey("Given a stale cache and a slow recomputation", t, func() {
		computer := &fakeComputer{results: results(1, 0.5), delay: 50 * time.Millisecond}
		cache := popularity.NewCache(computer)

		Convey("When many callers hit the cold cache concurrently", func() {
			const callers = 32
			var wg sync.WaitGroup
			errs := make([]error, callers)
			outs := make([][]popularity.Result, callers)

			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					outs[i], errs[i] = cache.Get(ctx)
				}(i)
			}
			wg.Wait()

			Convey("Then exactly one recomputation ran", func() {
				So(computer.callCount(), ShouldEqual, 1)
			})

			Convey("And every caller received the computed snapshot", func() {
				for i := 0; i < callers; i++ {
					So(errs[i], ShouldBeNil)
					So(outs[i][0].Score, ShouldEqual, 0.5)
				}
			})
		})

		Convey("When callers arrive while a refresh of an existing snapshot is in flight", func() {
			clock := &tickClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)}
			started := make(chan struct{})
			slow := &fakeComputer{results: results(1, 0.5)}
			staleCache := popularity.NewCache(slow, popularity.WithClock(clock.Now))

			_, err := staleCache.Get(ctx)
			So(err, ShouldBeNil)

			slow.set(results(1, 0.9), nil)
			slow.mu.Lock()
			slow.delay = 100 * time.Millisecond
			slow.started = started
			slow.mu.Unlock()
			atomic.StoreInt32(&slow.calls, 0)
			clock.Advance(301 * time.Second)

			var (
				leaderOut  []popularity.Result
				leaderErr  error
				leaderDone = make(chan struct{})
			)
			go func() {
				defer close(leaderDone)
				leaderOut, leaderErr = staleCache.Get(ctx)
			}()
			<-started

			stale, err := staleCache.Get(ctx)
			<-leaderDone

			Convey("Then they are served the previous snapshot without a second recompute", func() {
				So(err, ShouldBeNil)
				So(stale[0].Score, ShouldEqual, 0.5)
				So(slow.callCount(), ShouldEqual, 1)
			})

			Convey("And the leader received the fresh snapshot", func() {
				So(leaderErr, ShouldBeNil)
				So(leaderOut[0].Score, ShouldEqual, 0.9)
			})
		})
	})
}

func TestCacheDegradation(t *testing.T) {
	ctx := context.Background()

	Convey("Given a cache whose store starts failing after a good snapshot", t, func() {
		clock := &tickClock{t: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)}
		computer := &fakeComputer{results: results(1, 0.5)}
		cache := popularity.NewCache(computer, popularity.WithClock(clock.Now))

		snapshot, err := cache.Get(ctx)
		So(err, ShouldBeNil)

		computer.set(nil, errors.New("store down"))
		clock.Advance(301 * time.Second)

		Convey("When the recomputation fails", func() {
			served, err := cache.Get(ctx)

			Convey("Then the previous snapshot is served instead of an error", func() {
				So(err, ShouldBeNil)
				So(served, ShouldResemble, snapshot)
			})
		})
	})

	Convey("Given a cache that has never computed successfully", t, func() {
		computer := &fakeComputer{err: errors.New("store down")}
		cache := popularity.NewCache(computer)

		Convey("When the first computation fails", func() {
			out, err := cache.Get(ctx)

			Convey("Then the failure propagates", func() {
				So(out, ShouldBeNil)
				So(err, ShouldNotBeNil)
			})
		})
	})
}
