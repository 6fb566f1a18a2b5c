package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/okian/ghostrace/internal/adapters/repository"
	"github.com/okian/ghostrace/internal/config"
	"github.com/okian/ghostrace/internal/domain/model"
	"github.com/okian/ghostrace/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.New(context.Background())
	cfg.Storage = config.StorageMemory
	cfg.Timezone = "UTC"
	cfg.InitialLevel = 12
	cfg.BotPoolPath = filepath.Join(t.TempDir(), "missing.yaml")
	cfg.BotPoolOverridePath = ""
	return cfg
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			_ = os.Setenv("GHOSTRACE_ADDR", ":8080")
			_ = os.Setenv("GHOSTRACE_STORAGE", "memory")
			_ = os.Setenv("GHOSTRACE_TICK_INTERVAL_MS", "250")
			defer func() {
				_ = os.Unsetenv("GHOSTRACE_ADDR")
				_ = os.Unsetenv("GHOSTRACE_STORAGE")
				_ = os.Unsetenv("GHOSTRACE_TICK_INTERVAL_MS")
			}()

			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.Storage, convey.ShouldEqual, config.StorageMemory)
			convey.So(cfg.TickIntervalMS, convey.ShouldEqual, 250)
		})

		convey.Convey("When a service is built from defaults", func() {
			cfg := testConfig(t)
			store, closeStore, err := newStore(context.Background(), cfg)
			convey.So(err, convey.ShouldBeNil)
			defer closeStore()

			svc, notes, err := newService(context.Background(), cfg, store, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			defer svc.Close()

			convey.Convey("Then the player starts eligible on the first config", func() {
				hud := svc.HUD()
				convey.So(hud.State, convey.ShouldEqual, "eligible")
				convey.So(hud.ConfigID, convey.ShouldEqual, "sprint")
			})

			convey.Convey("And notifications reach the queue", func() {
				convey.So(svc.Join(context.Background()), convey.ShouldBeNil)
				convey.So(notes.Len(), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When the events file is broken", func() {
			cfg := testConfig(t)
			cfg.EventsPath = filepath.Join(t.TempDir(), "events.yaml")
			convey.So(os.WriteFile(cfg.EventsPath, []byte("events: []\n"), 0o600), convey.ShouldBeNil)

			_, _, err := newService(context.Background(), cfg, repository.NewMemoryStore(), logger.Nop())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestNewStore(t *testing.T) {
	convey.Convey("Given each storage backend", t, func() {
		ctx := context.Background()
		cfg := testConfig(t)

		convey.Convey("File storage writes to the save path", func() {
			cfg.Storage = config.StorageFile
			cfg.SavePath = filepath.Join(t.TempDir(), "save.json")
			store, closeStore, err := newStore(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer closeStore()

			convey.So(store.Save(ctx, model.NewSave()), convey.ShouldBeNil)
			_, err = os.Stat(cfg.SavePath)
			convey.So(err, convey.ShouldBeNil)
		})

		convey.Convey("Redis storage talks to the server", func() {
			mr := miniredis.RunT(t)
			cfg.Storage = config.StorageRedis
			cfg.RedisAddr = mr.Addr()
			store, closeStore, err := newStore(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer closeStore()

			convey.So(store.Save(ctx, model.NewSave()), convey.ShouldBeNil)
			convey.So(mr.Exists(cfg.RedisKey), convey.ShouldBeTrue)
		})

		convey.Convey("An unreachable redis fails fast", func() {
			cfg.Storage = config.StorageRedis
			cfg.RedisAddr = "127.0.0.1:1"
			_, _, err := newStore(ctx, cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a cancelled context", t, func() {
		cfg := testConfig(t)
		cfg.Addr = "127.0.0.1:0"
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		convey.Convey("run shuts down cleanly", func() {
			convey.So(run(ctx, cfg, logger.Nop()), convey.ShouldBeNil)
		})
	})
}

func TestHeadlessHost(t *testing.T) {
	convey.Convey("Given the headless host", t, func() {
		h := &headlessHost{log: logger.Nop()}
		ctx := context.Background()

		convey.So(h.GrantReward(ctx, model.Reward{Coins: 10}), convey.ShouldBeTrue)
		convey.So(h.WatchAd(ctx), convey.ShouldBeTrue)
		convey.So(h.Spend(ctx, 100), convey.ShouldBeTrue)
	})
}
