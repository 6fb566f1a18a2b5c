package pool_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/ghostrace/internal/adapters/pool"
	"github.com/okian/ghostrace/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const shipped = `
bots:
  - id: ada
    display_name: Ada
    personality: boss
    min_seconds_per_level: 60
    max_seconds_per_level: 90
    min_player_level: 1
    max_player_level: 40
    jitter_pct: 0.2
    stuck_chance_per_hour: 0.1
    stuck_min_minutes: 5
    stuck_max_minutes: 20
    timezone_offset_hours: -5
    sleep_start_hour: 23
    sleep_duration_hours: 7
  - id: bo
    personality: noob
  - id: ""
    personality: normal
  - id: ghost
    personality: wizard
`

const override = `
bots:
  - id: local
    personality: normal
`

func write(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParse(t *testing.T) {
	Convey("Given a shipped pool file", t, func() {
		path := write(t, t.TempDir(), "bots.yaml", shipped)
		p, err := pool.Parse(path)

		Convey("Then valid profiles are decoded and invalid ones dropped", func() {
			So(err, ShouldBeNil)
			So(len(p.Bots), ShouldEqual, 2)
			ada := p.Bots[0]
			So(ada.Personality, ShouldEqual, model.PersonalityBoss)
			So(ada.MaxSecondsPerLevel, ShouldEqual, 90)
			So(ada.TimezoneOffsetHours, ShouldEqual, -5)
			So(ada.SleepDurationHours, ShouldEqual, 7)
			So(p.Bots[1].DisplayName, ShouldEqual, "bo")
		})
	})

	Convey("Given a pool with no usable bots", t, func() {
		path := write(t, t.TempDir(), "bots.yaml", "bots: []\n")
		_, err := pool.Parse(path)
		So(errors.Is(err, pool.ErrEmptyPool), ShouldBeTrue)
	})
}

func TestLoader(t *testing.T) {
	ctx := context.Background()

	Convey("Given shipped content and a local override", t, func() {
		dir := t.TempDir()
		shippedPath := write(t, dir, "bots.yaml", shipped)
		overridePath := write(t, dir, "override.yaml", override)

		Convey("When both exist the override wins", func() {
			p := pool.NewLoader(shippedPath, pool.WithOverridePath(overridePath)).Load(ctx)
			So(len(p.Bots), ShouldEqual, 1)
			So(p.Bots[0].ID, ShouldEqual, "local")
		})

		Convey("When the override is malformed the shipped pool is used", func() {
			bad := write(t, dir, "bad.yaml", "bots: [")
			p := pool.NewLoader(shippedPath, pool.WithOverridePath(bad)).Load(ctx)
			So(len(p.Bots), ShouldEqual, 2)
		})

		Convey("When the override is missing the shipped pool is used", func() {
			p := pool.NewLoader(shippedPath, pool.WithOverridePath(filepath.Join(dir, "none.yaml"))).Load(ctx)
			So(len(p.Bots), ShouldEqual, 2)
		})
	})

	Convey("Given no content at all", t, func() {
		p := pool.NewLoader(filepath.Join(t.TempDir(), "missing.yaml")).Load(ctx)

		Convey("Then the pool is empty rather than an error", func() {
			So(p.Bots, ShouldBeEmpty)
		})
	})
}
