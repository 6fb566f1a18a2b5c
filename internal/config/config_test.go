package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/ghostrace/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Storage, convey.ShouldEqual, config.StorageFile)
			convey.So(cfg.TickIntervalMS, convey.ShouldEqual, 1000)
			convey.So(cfg.NotificationQueueSize, convey.ShouldEqual, 256)
			convey.So(cfg.TickInterval().Seconds(), convey.ShouldEqual, 1)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given invalid configs", t, func() {
		cases := map[string]func(c *config.Config){
			"empty addr":      func(c *config.Config) { c.Addr = "" },
			"unknown storage": func(c *config.Config) { c.Storage = "s3" },
			"no save path":    func(c *config.Config) { c.SavePath = "" },
			"redis no addr":   func(c *config.Config) { c.Storage = config.StorageRedis; c.RedisAddr = "" },
			"zero tick":       func(c *config.Config) { c.TickIntervalMS = 0 },
			"zero queue":      func(c *config.Config) { c.NotificationQueueSize = 0 },
			"bad timezone":    func(c *config.Config) { c.Timezone = "Mars/Olympus" },
		}
		for name, mutate := range cases {
			convey.Convey("When "+name, func() {
				cfg := config.New(context.Background())
				mutate(cfg)
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
