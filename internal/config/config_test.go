package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/yoshikawa-river/keiba-features/internal/config"
)

func TestLoad(t *testing.T) {
	Convey("Given no file and no environment overrides", t, func() {
		t.Setenv(config.EnvConfigPath, "")

		Convey("When the config is loaded", func() {
			cfg, err := config.Load()
			So(err, ShouldBeNil)

			Convey("Then the defaults stand", func() {
				So(cfg.LogLevel, ShouldEqual, "info")
				So(cfg.Windows, ShouldResemble, []int{3, 5, 10})
				So(cfg.ShardCount, ShouldEqual, 16)
				So(cfg.Output.MatrixPath, ShouldEqual, "out/features.csv")
				So(cfg.Postgres.DSN, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a YAML file and an environment override", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "keiba.yaml")
		So(os.WriteFile(path, []byte("log_level: debug\nshard_count: 4\npostgres:\n  dsn: postgres://file\n"), 0o644), ShouldBeNil)
		t.Setenv(config.EnvConfigPath, path)
		t.Setenv("KEIBA_POSTGRES__DSN", "postgres://env")

		Convey("When the config is loaded", func() {
			cfg, err := config.Load()
			So(err, ShouldBeNil)

			Convey("Then the file overrides defaults and env overrides the file", func() {
				So(cfg.LogLevel, ShouldEqual, "debug")
				So(cfg.ShardCount, ShouldEqual, 4)
				So(cfg.Postgres.DSN, ShouldEqual, "postgres://env")
			})
		})
	})

	Convey("Given a missing config file", t, func() {
		t.Setenv(config.EnvConfigPath, "/nonexistent/keiba.yaml")

		Convey("Then loading fails", func() {
			_, err := config.Load()
			So(err, ShouldNotBeNil)
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given a default config", t, func() {
		So(config.New().Validate(), ShouldBeNil)
	})

	Convey("Given broken configurations", t, func() {
		cases := map[string]func(*config.Config){
			"zero workers":         func(c *config.Config) { c.WorkerCount = 0 },
			"no windows":           func(c *config.Config) { c.Windows = nil },
			"negative window":      func(c *config.Config) { c.Windows = []int{-1, 5} },
			"missing five window":  func(c *config.Config) { c.Windows = []int{3, 10} },
			"empty matrix path":    func(c *config.Config) { c.Output.MatrixPath = "" },
			"brokers but no topic": func(c *config.Config) { c.Kafka.Brokers = []string{"b:9092"}; c.Kafka.Topic = "" },
		}
		for name, mutate := range cases {
			Convey("Then "+name+" is rejected", func() {
				cfg := config.New()
				mutate(cfg)
				So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), ShouldBeTrue)
			})
		}
	})
}
