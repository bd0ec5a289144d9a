package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a metrics manager", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})

			Convey("And its collectors should be gatherable", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(families, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("testns"),
				WithSubsystem("testsub"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then options are applied", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "testns")
				So(manager.subsystem, ShouldEqual, "testsub")
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 10, 100})
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording through the package helpers", func() {
			RecordPopularityCacheHit()
			RecordPopularityCacheMiss()
			RecordPopularityServedStale()
			RecordPopularityRecomputeDuration(12.5)
			UpdatePopularitySnapshotAge(42)
			UpdatePopularityGamesScored(3)
			RecordLeaderboardQuery()
			RecordLeaderboardError()
			RecordStoreQueryLatency(3.1)
			RecordStoreError()
			RecordHTTPRequest("leaderboard", "GET", "200")
			RecordHTTPRequestDuration("leaderboard", "GET", "200", 1.2)
			UpdateSystemMemoryUsage(1 << 20)
			UpdateSystemGoroutineCount(8)

			Convey("Then the custom registry gathers them without error", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
