package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/smartystreets/goconvey/convey"

	"github.com/petfolk/podium/internal/adapters/http/api"
	service "github.com/petfolk/podium/internal/app"
	"github.com/petfolk/podium/internal/config"
	"github.com/petfolk/podium/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("PODIUM_ADDR", ":8080")
			_ = os.Setenv("PODIUM_POPULARITY_TTL_SECONDS", "120")
			defer func() {
				_ = os.Unsetenv("PODIUM_ADDR")
				_ = os.Unsetenv("PODIUM_POPULARITY_TTL_SECONDS")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.PopularityTTLSeconds, convey.ShouldEqual, 120)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := service.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := service.New(
					service.WithStoreBackend(config.StoreMemory),
					service.WithPopularityTTL(2*time.Minute),
					service.WithDemoSeed(true),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When wiring the HTTP server against a seeded service", func() {
			ctx := context.Background()
			svc := service.New(
				service.WithStoreBackend(config.StoreMemory),
				service.WithDemoSeed(true),
			)
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			r := chi.NewRouter()
			api.NewServer(svc, svc).Register(ctx, r)

			convey.Convey("Then the read endpoints respond", func() {
				for _, path := range []string{"/leaderboard", "/popularity", "/healthz", "/stats"} {
					req := httptest.NewRequest(http.MethodGet, path, nil)
					rec := httptest.NewRecorder()
					r.ServeHTTP(rec, req)
					convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				}
			})
		})
	})
}
