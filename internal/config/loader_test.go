package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/petfolk/podium/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"PODIUM_CONFIG",
		"PODIUM_ADDR",
		"PODIUM_LOG_LEVEL",
		"PODIUM_STORE_BACKEND",
		"PODIUM_POSTGRES_DSN",
		"PODIUM_STORE_QUERY_TIMEOUT_MS",
		"PODIUM_POPULARITY_TTL_SECONDS",
		"PODIUM_RATE_LIMIT_RPS",
		"PODIUM_RATE_LIMIT_BURST",
		"PODIUM_DEMO_SEED",
	} {
		_ = os.Unsetenv(key)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.StoreBackend, convey.ShouldEqual, config.StoreMemory)
				convey.So(cfg.PopularityTTLSeconds, convey.ShouldEqual, 300)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			clearConfigEnvVars()
			_ = os.Setenv("PODIUM_ADDR", ":8080")
			_ = os.Setenv("PODIUM_POPULARITY_TTL_SECONDS", "60")
			_ = os.Setenv("PODIUM_DEMO_SEED", "true")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.PopularityTTLSeconds, convey.ShouldEqual, 60)
				convey.So(cfg.DemoSeed, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config from a YAML file", func() {
			clearConfigEnvVars()
			dir := t.TempDir()
			path := filepath.Join(dir, "podium.yaml")
			yaml := "addr: \":7070\"\nstore_backend: memory\nrate_limit_rps: 10\n"
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("PODIUM_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.RateLimitRPS, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When the postgres backend is selected without a DSN", func() {
			clearConfigEnvVars()
			_ = os.Setenv("PODIUM_STORE_BACKEND", "postgres")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails with an invalid-config error", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When an unknown store backend is selected", func() {
			clearConfigEnvVars()
			_ = os.Setenv("PODIUM_STORE_BACKEND", "cassandra")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
