package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/certrep/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "certrep.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 1000)
			convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, int64(1<<20))
			convey.So(cfg.SnippetLength, convey.ShouldEqual, 500)
			convey.So(cfg.ReferenceDataPath, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Load(t *testing.T) {
	convey.Convey("Given a YAML config file", t, func() {
		path := writeConfig(t, `
addr: ":7070"
queue_size: 64
worker_count: 3
log_format: json
reference_data_path: /etc/certrep/ref.yaml
`)

		convey.Convey("When it is loaded", func() {
			cfg, err := config.LoadFrom(context.Background(), path)

			convey.Convey("Then file values should override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.ReferenceDataPath, convey.ShouldEqual, "/etc/certrep/ref.yaml")
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			})
		})

		convey.Convey("When environment variables are also set", func() {
			t.Setenv("CERTREP_QUEUE_SIZE", "128")
			t.Setenv("CERTREP_LOG_LEVEL", "debug")
			t.Setenv("CERTREP_MAX_BODY_BYTES", "2048")
			cfg, err := config.LoadFrom(context.Background(), path)

			convey.Convey("Then the environment should win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 128)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, int64(2048))
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			})
		})

		convey.Convey("When the path comes from CERTREP_CONFIG", func() {
			t.Setenv(config.EnvConfigPath, path)
			cfg, err := config.Load(context.Background())

			convey.Convey("Then the file should be used", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			})
		})
	})

	convey.Convey("Given no config file", t, func() {
		t.Setenv(config.EnvConfigPath, "")
		cfg, err := config.Load(context.Background())

		convey.Convey("Then defaults should be returned", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
		})
	})

	convey.Convey("Given a missing config file", t, func() {
		_, err := config.LoadFrom(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))

		convey.Convey("Then ErrLoadConfig should be returned", func() {
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given invalid values", t, func() {
		cases := map[string]string{
			"zero queue":       "queue_size: 0\n",
			"negative workers": "worker_count: -1\n",
			"bad format":       "log_format: xml\n",
			"empty addr":       "addr: \"\"\n",
			"negative snippet": "snippet_length: -5\n",
		}

		convey.Convey("Then each should fail validation", func() {
			for name, body := range cases {
				_, err := config.LoadFrom(context.Background(), writeConfig(t, body))
				convey.So(name+": "+errString(err), convey.ShouldContainSubstring, "invalid config")
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			}
		})
	})
}

func errString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}
