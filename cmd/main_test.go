package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/studybuddy/internal/config"
	"github.com/okian/studybuddy/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init(logger.WithWriter(io.Discard))
}

const registration = `{
	"name": "Ada Lovelace",
	"gpa": 3.9,
	"study_style": "Visual",
	"timezone": "UTC+1",
	"study_times": "Afternoons",
	"days": ["Mon", "Wed"],
	"subjects": ["Math"]
}`

func TestMainConfiguration(t *testing.T) {
	convey.Convey("Given environment overrides", t, func() {
		_ = os.Setenv("STUDYBUDDY_ADDR", ":8181")
		_ = os.Setenv("STUDYBUDDY_MATCH_LIMIT", "5")
		defer func() {
			_ = os.Unsetenv("STUDYBUDDY_ADDR")
			_ = os.Unsetenv("STUDYBUDDY_MATCH_LIMIT")
		}()

		convey.Convey("Then configuration should be loadable", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8181")
			convey.So(cfg.MatchLimit, convey.ShouldEqual, 5)
			convey.So(cfg.DBDriver, convey.ShouldEqual, config.DriverMemory)
		})
	})
}

func TestNewService(t *testing.T) {
	convey.Convey("Given a memory configuration", t, func() {
		cfg := config.New()

		convey.Convey("Then the service starts over an empty pool", func() {
			svc, err := newService(context.Background(), cfg)
			convey.So(err, convey.ShouldBeNil)
			defer svc.Stop()
			stats := svc.GetStats()
			convey.So(stats["started"], convey.ShouldBeTrue)
			convey.So(stats["totalStudents"], convey.ShouldEqual, 0)
		})
	})

	convey.Convey("Given a sqlite configuration", t, func() {
		cfg := config.New()
		cfg.DBDriver = config.DriverSQLite
		cfg.DBDSN = filepath.Join(t.TempDir(), "main.db")

		convey.Convey("Then the service starts with a migrated database", func() {
			svc, err := newService(context.Background(), cfg)
			convey.So(err, convey.ShouldBeNil)
			defer svc.Stop()
			convey.So(svc.GetStats()["error"], convey.ShouldBeNil)
		})
	})

	convey.Convey("Given an unknown driver", t, func() {
		cfg := config.New()
		cfg.DBDriver = "mongo"

		convey.Convey("Then opening the store fails", func() {
			svc, err := newService(context.Background(), cfg)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(svc, convey.ShouldBeNil)
		})
	})
}

func TestMux(t *testing.T) {
	convey.Convey("Given the wired mux", t, func() {
		ctx := context.Background()
		svc, err := newService(ctx, config.New())
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		srv := httptest.NewServer(newMux(ctx, svc))
		defer srv.Close()

		convey.Convey("When a student registers and fetches the account", func() {
			resp, err := http.Post(srv.URL+"/students", "application/json", strings.NewReader(registration))
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusCreated)

			var created struct {
				ID string `json:"id"`
			}
			convey.So(json.NewDecoder(resp.Body).Decode(&created), convey.ShouldBeNil)
			convey.So(created.ID, convey.ShouldNotBeEmpty)

			get, err := http.Get(srv.URL + "/students/" + created.ID)
			convey.So(err, convey.ShouldBeNil)
			defer get.Body.Close()

			convey.Convey("Then the account shows UTC hours", func() {
				convey.So(get.StatusCode, convey.ShouldEqual, http.StatusOK)
				var account map[string]any
				convey.So(json.NewDecoder(get.Body).Decode(&account), convey.ShouldBeNil)
				convey.So(account["role"], convey.ShouldEqual, "tutor")
				convey.So(account["utc_start"], convey.ShouldEqual, "12:00")
			})
		})

		convey.Convey("When the docs and health routes are requested", func() {
			for _, path := range []string{"/healthz", "/stats", "/openapi.yaml", "/api-docs"} {
				resp, err := http.Get(srv.URL + path)
				convey.So(err, convey.ShouldBeNil)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			}
		})
	})
}

func TestPoolMetricsUpdater(t *testing.T) {
	convey.Convey("Given a running service", t, func() {
		svc, err := newService(context.Background(), config.New())
		convey.So(err, convey.ShouldBeNil)
		defer svc.Stop()

		convey.Convey("Then the updater returns when the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			done := make(chan struct{})
			go func() {
				startPoolMetricsUpdater(ctx, svc)
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("updater did not stop")
			}
		})
	})
}
