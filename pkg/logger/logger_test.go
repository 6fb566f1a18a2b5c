package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		So(Init(), ShouldBeNil)
		defer func() { So(Sync(), ShouldBeNil) }()

		Convey("Then Get and Named return usable loggers", func() {
			So(Get(), ShouldNotBeNil)
			named := Named("race")
			So(named, ShouldNotBeNil)
			named.Info(context.Background(), "test message", String("k", "v"))
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		So(SetLevelString("info"), ShouldBeNil)
		var buf bytes.Buffer
		l := New(&buf).Named("ghost")

		Convey("When logging with typed fields", func() {
			l.Warn(context.Background(), "roster short",
				Int("need", 4), Int64("now", 42), Bool("exact", false),
				Float64("pace", 1.5), Error(errors.New("boom")))

			Convey("Then every field and the source are written", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "roster short")
				So(out, ShouldContainSubstring, "logger=ghost")
				So(out, ShouldContainSubstring, "need=4")
				So(out, ShouldContainSubstring, "now=42")
				So(out, ShouldContainSubstring, "exact=false")
				So(out, ShouldContainSubstring, "error=boom")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the level filters the record", func() {
			So(SetLevelString("error"), ShouldBeNil)
			l.Debug(context.Background(), "hidden")
			l.Info(context.Background(), "hidden")
			So(buf.Len(), ShouldEqual, 0)
			So(SetLevelString("info"), ShouldBeNil)
		})
	})

	Convey("Given an unknown level", t, func() {
		So(SetLevelString("loud"), ShouldNotBeNil)
	})

	Convey("Given a nop logger", t, func() {
		So(func() { Nop().Info(context.Background(), "dropped") }, ShouldNotPanic)
	})
}
