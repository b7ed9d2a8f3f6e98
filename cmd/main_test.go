package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smartystreets/goconvey/convey"

	app "github.com/osvo/club-world-cup-tracker/internal/app"
	"github.com/osvo/club-world-cup-tracker/internal/config"
	"github.com/osvo/club-world-cup-tracker/pkg/logger"
	"github.com/osvo/club-world-cup-tracker/pkg/metrics"
)

const leagueCSV = `date,local,visitor,score,Alice,Bob
2024-01-01,Chelsea,Flamengo,2-1,2-1,1-0
2024-01-01,Boca Juniors,Benfica,0-0,1-1,0-0
2024-01-08,Porto,Al Ahly,3-0,2-0,0-3
`

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMux(t *testing.T) {
	convey.Convey("Given a service over a CSV file", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.SourcePath = writeFile(t, "data.csv", leagueCSV)
		cfg.AbbreviateTeams = true

		svc, err := app.NewFromConfig(cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		mux := newMux(ctx, svc, cfg)

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		convey.Convey("Then the standings are served", func() {
			w := get("/standings")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			var rows []map[string]any
			convey.So(json.NewDecoder(w.Body).Decode(&rows), convey.ShouldBeNil)
			convey.So(rows[0]["participant"], convey.ShouldEqual, "Alice")
			convey.So(rows[0]["total"], convey.ShouldEqual, 10)
			convey.So(rows[1]["participant"], convey.ShouldEqual, "Bob")
			convey.So(rows[1]["total"], convey.ShouldEqual, 8)
		})

		convey.Convey("Then team names are abbreviated", func() {
			w := get("/matches?date=2024-01-01")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"home":"CHE"`)
		})

		convey.Convey("Then docs, metrics and the league page are routed", func() {
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/dashboard").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/nope").Code, convey.ShouldEqual, http.StatusNotFound)
		})

		convey.Convey("When system metrics are updated", func() {
			updateSystemMetrics(ctx, svc)

			convey.Convey("Then the registry carries the runtime gauges", func() {
				n, err := testutil.GatherAndCount(metrics.GetRegistry(), "tracker_league_system_goroutines")
				convey.So(err, convey.ShouldBeNil)
				convey.So(n, convey.ShouldEqual, 1)
			})
		})
	})
}
