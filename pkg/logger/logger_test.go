package logger_test

import (
	"context"
	"testing"

	"github.com/yoshikawa-river/keiba-features/pkg/logger"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(logger.Init(), ShouldBeNil)
		log := logger.Get()

		Convey("When logging with fields", func() {
			Convey("Then it should not panic", func() {
				So(func() {
					log.Info(context.Background(), "pipeline started",
						logger.String("run", "r1"),
						logger.Int("rows", 12),
						logger.Float64("elapsed", 1.5),
					)
				}, ShouldNotPanic)
			})
		})

		Convey("When deriving a named logger", func() {
			named := log.Named("extractor")

			Convey("Then it should be usable independently", func() {
				So(named, ShouldNotBeNil)
				So(func() {
					named.Warn(context.Background(), "degraded", logger.String("name", "relative"))
				}, ShouldNotPanic)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given the global logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("When setting known levels", func() {
			for _, lvl := range []string{"debug", "info", "warn", "warning", "error", ""} {
				So(logger.SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("When setting an unknown level", func() {
			Convey("Then it should return an error", func() {
				So(logger.SetLevelString("verbose"), ShouldNotBeNil)
			})
		})
	})
}
