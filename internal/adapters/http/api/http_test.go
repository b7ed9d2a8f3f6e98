package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/osvo/club-world-cup-tracker/internal/adapters/http/api"
	service "github.com/osvo/club-world-cup-tracker/internal/app"
	"github.com/osvo/club-world-cup-tracker/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDependencies serves canned reads.
type mockDependencies struct {
	standings []types.StandingEntry
	detail    types.ParticipantDetail
	view      types.SeriesView
	matches   []types.MatchEntry
	err       error

	accept    bool
	reasons   []string
	lastDate  string
	lastQuery string
}

func (m *mockDependencies) Standings(context.Context) ([]types.StandingEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.standings, nil
}

func (m *mockDependencies) Rank(_ context.Context, participant string) (types.ParticipantDetail, error) {
	m.lastQuery = participant
	if m.err != nil {
		return types.ParticipantDetail{}, m.err
	}
	if participant != m.detail.Participant {
		return types.ParticipantDetail{}, fmt.Errorf("%q: %w", participant, service.ErrNotFound)
	}
	return m.detail, nil
}

func (m *mockDependencies) Series(context.Context) (types.SeriesView, error) {
	if m.err != nil {
		return types.SeriesView{}, m.err
	}
	return m.view, nil
}

func (m *mockDependencies) Matches(_ context.Context, date string) ([]types.MatchEntry, error) {
	m.lastDate = date
	if m.err != nil {
		return nil, m.err
	}
	return m.matches, nil
}

func (m *mockDependencies) RequestRefresh(_ context.Context, reason string) (string, bool) {
	if !m.accept {
		return "", false
	}
	m.reasons = append(m.reasons, reason)
	return "req-1", true
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newDeps() *mockDependencies {
	return &mockDependencies{
		standings: []types.StandingEntry{
			{Rank: 1, Participant: "Alice", Total: 10},
			{Rank: 2, Participant: "Bob", Total: 8},
			{Rank: 3, Participant: "Carol", Total: 4},
		},
		detail: types.ParticipantDetail{
			StandingEntry: types.StandingEntry{Rank: 1, Participant: "Alice", Total: 10},
			Points:        []types.SeriesPoint{{Date: "2024-01-01", Day: 8, Total: 8}, {Date: "2024-01-08", Day: 2, Total: 10}},
		},
		view: types.SeriesView{
			Dates: []string{"2024-01-01"},
			Series: []types.SeriesEntry{
				{Participant: "Alice", Points: []types.SeriesPoint{{Date: "2024-01-01", Day: 8, Total: 8}}},
				{Participant: "Bob", Points: []types.SeriesPoint{{Date: "2024-01-01", Day: 8, Total: 8}}},
			},
		},
		matches: []types.MatchEntry{{Index: 0, Date: "2024-01-01", Home: "CHE", Away: "FLA", Score: "2-1"}},
		accept:  true,
	}
}

func serve(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var out map[string]string
	_ = json.NewDecoder(w.Body).Decode(&out)
	return out
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := newDeps()
		stats := &mockStatsProvider{stats: map[string]interface{}{"ready": true}}
		server := api.NewServer(deps, stats, 2)
		mux := http.NewServeMux()
		server.Register(context.Background(), mux)

		Convey("Then the health endpoint serves Prometheus metrics", func() {
			w := serve(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/plain")
		})

		Convey("Then the stats endpoint returns the provider's stats", func() {
			w := serve(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body map[string]interface{}
			So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
			So(body["ready"], ShouldEqual, true)
		})

		Convey("Then the dashboard serves HTML with refresh controls", func() {
			w := serve(mux, http.MethodGet, "/dashboard", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			So(w.Body.String(), ShouldContainSubstring, `id="refresh-interval"`)
			So(w.Body.String(), ShouldContainSubstring, `id="refresh-control"`)
		})

		Convey("Then unknown paths are not found", func() {
			w := serve(mux, http.MethodGet, "/unknown", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestStandingsHandler(t *testing.T) {
	Convey("Given the standings route with a limit cap of 2", t, func() {
		deps := newDeps()
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}, 2).Register(context.Background(), mux)

		Convey("When no limit is given", func() {
			w := serve(mux, http.MethodGet, "/standings", "")

			Convey("Then the table is cut at the cap", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var entries []api.StandingEntry
				So(json.NewDecoder(w.Body).Decode(&entries), ShouldBeNil)
				So(len(entries), ShouldEqual, 2)
				So(entries[0].Participant, ShouldEqual, "Alice")
			})
		})

		Convey("When a limit is given", func() {
			w := serve(mux, http.MethodGet, "/standings?limit=1", "")

			Convey("Then rows are shaded against the whole table", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var entries []api.StandingEntry
				So(json.NewDecoder(w.Body).Decode(&entries), ShouldBeNil)
				So(len(entries), ShouldEqual, 1)
				So(entries[0].Color, ShouldEqual, "hsl(120, 70%, 45%)")
			})
		})

		Convey("When the limit is invalid", func() {
			for _, q := range []string{"0", "-1", "abc"} {
				w := serve(mux, http.MethodGet, "/standings?limit="+q, "")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			}
		})

		Convey("When the limit exceeds the cap", func() {
			w := serve(mux, http.MethodGet, "/standings?limit=3", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "limit_exceeded")
		})

		Convey("When nothing has been computed yet", func() {
			deps.err = fmt.Errorf("%w: no snapshot", service.ErrNotReady)
			w := serve(mux, http.MethodGet, "/standings", "")

			Convey("Then the service is unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(w.Header().Get("Retry-After"), ShouldNotBeEmpty)
				So(decodeError(w)["code"], ShouldEqual, "not_ready")
			})
		})

		Convey("When the method is not GET", func() {
			w := serve(mux, http.MethodPost, "/standings", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestRankHandler(t *testing.T) {
	Convey("Given a rank handler", t, func() {
		deps := newDeps()
		handler := api.NewRankHandler(deps)

		Convey("When the participant exists", func() {
			req := httptest.NewRequest(http.MethodGet, "/rank/Alice", http.NoBody)
			w := httptest.NewRecorder()
			handler.HandleGetRank(w, req)

			Convey("Then the standing and series are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var detail types.ParticipantDetail
				So(json.NewDecoder(w.Body).Decode(&detail), ShouldBeNil)
				So(detail.Rank, ShouldEqual, 1)
				So(detail.Total, ShouldEqual, 10)
				So(len(detail.Points), ShouldEqual, 2)
			})
		})

		Convey("When the name is percent-encoded", func() {
			deps.detail.Participant = "José M"
			req := httptest.NewRequest(http.MethodGet, "/rank/Jos%C3%A9%20M", http.NoBody)
			w := httptest.NewRecorder()
			handler.HandleGetRank(w, req)

			Convey("Then it is decoded before the lookup", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastQuery, ShouldEqual, "José M")
			})
		})

		Convey("When the participant is unknown", func() {
			req := httptest.NewRequest(http.MethodGet, "/rank/Mallory", http.NoBody)
			w := httptest.NewRecorder()
			handler.HandleGetRank(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the name is missing or nested", func() {
			for _, path := range []string{"/rank/", "/rank/a/b"} {
				req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
				w := httptest.NewRecorder()
				handler.HandleGetRank(w, req)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the lookup fails unexpectedly", func() {
			deps.err = fmt.Errorf("boom")
			req := httptest.NewRequest(http.MethodGet, "/rank/Alice", http.NoBody)
			w := httptest.NewRecorder()
			handler.HandleGetRank(w, req)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestSeriesHandler(t *testing.T) {
	Convey("Given a series handler", t, func() {
		handler := api.NewSeriesHandler(newDeps())

		Convey("When reading the series", func() {
			req := httptest.NewRequest(http.MethodGet, "/series", http.NoBody)
			w := httptest.NewRecorder()
			handler.HandleGetSeries(w, req)

			Convey("Then every participant gets a colour by column position", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var view types.SeriesView
				So(json.NewDecoder(w.Body).Decode(&view), ShouldBeNil)
				So(view.Dates, ShouldResemble, []string{"2024-01-01"})
				So(view.Series[0].Color, ShouldEqual, "hsl(0, 70%, 50%)")
				So(view.Series[1].Color, ShouldEqual, "hsl(57, 70%, 50%)")
			})
		})
	})
}

func TestMatchesHandler(t *testing.T) {
	Convey("Given a matches handler", t, func() {
		deps := newDeps()
		handler := api.NewMatchesHandler(deps)

		Convey("When filtering by date", func() {
			req := httptest.NewRequest(http.MethodGet, "/matches?date=2024-01-01", http.NoBody)
			w := httptest.NewRecorder()
			handler.HandleGetMatches(w, req)

			Convey("Then the date is passed through", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastDate, ShouldEqual, "2024-01-01")
			})
		})

		Convey("When no match was played on the date", func() {
			deps.matches = nil
			req := httptest.NewRequest(http.MethodGet, "/matches?date=1999-01-01", http.NoBody)
			w := httptest.NewRecorder()
			handler.HandleGetMatches(w, req)

			Convey("Then an empty array is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
			})
		})
	})
}

func TestRefreshHandler(t *testing.T) {
	Convey("Given a refresh handler", t, func() {
		deps := newDeps()
		handler := api.NewRefreshHandler(deps)

		Convey("When posting without a body", func() {
			req := httptest.NewRequest(http.MethodPost, "/refresh", http.NoBody)
			w := httptest.NewRecorder()
			handler.HandlePostRefresh(w, req)

			Convey("Then the refresh is accepted with a default reason", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(deps.reasons, ShouldResemble, []string{"api"})
				So(w.Body.String(), ShouldContainSubstring, `"request_id":"req-1"`)
			})
		})

		Convey("When posting a reason", func() {
			req := httptest.NewRequest(http.MethodPost, "/refresh", strings.NewReader(`{"reason":"sheet updated"}`))
			w := httptest.NewRecorder()
			handler.HandlePostRefresh(w, req)
			So(w.Code, ShouldEqual, http.StatusAccepted)
			So(deps.reasons, ShouldResemble, []string{"sheet updated"})
		})

		Convey("When the body is not JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/refresh", strings.NewReader(`{nope`))
			w := httptest.NewRecorder()
			handler.HandlePostRefresh(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the queue is full", func() {
			deps.accept = false
			req := httptest.NewRequest(http.MethodPost, "/refresh", http.NoBody)
			w := httptest.NewRecorder()
			handler.HandlePostRefresh(w, req)

			Convey("Then it reports backpressure", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decodeError(w)["code"], ShouldEqual, "backpressure")
			})
		})

		Convey("When the method is GET", func() {
			req := httptest.NewRequest(http.MethodGet, "/refresh", http.NoBody)
			w := httptest.NewRecorder()
			handler.HandlePostRefresh(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}
