package source_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/osvo/club-world-cup-tracker/internal/adapters/source"
	. "github.com/smartystreets/goconvey/convey"
)

const sheet = "date,local,visitor,score,Alice,Bob\n" +
	"2024-01-01, A1 ,A2,2-1,2-1,1-0\n" +
	"\n" +
	"2024-01-08,C1,C2,3-0,2-0\n"

func TestDecode(t *testing.T) {
	Convey("Given a CSV document", t, func() {
		Convey("When it is well formed", func() {
			table, err := source.Decode(strings.NewReader(sheet))

			Convey("Then the header becomes the columns", func() {
				So(err, ShouldBeNil)
				So(table.Columns, ShouldResemble, []string{"date", "local", "visitor", "score", "Alice", "Bob"})
			})

			Convey("Then blank lines are skipped and cells trimmed", func() {
				So(len(table.Rows), ShouldEqual, 2)
				So(table.Rows[0]["local"], ShouldEqual, "A1")
			})

			Convey("Then short rows are padded", func() {
				v, ok := table.Rows[1]["Bob"]
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, "")
			})
		})

		Convey("When it starts with a byte order mark", func() {
			table, err := source.Decode(strings.NewReader("\ufeff" + sheet))
			So(err, ShouldBeNil)
			So(table.Columns[0], ShouldEqual, "date")
		})

		Convey("When a row has more cells than the header", func() {
			_, err := source.Decode(strings.NewReader("a,b\n1,2,3\n"))
			So(errors.Is(err, source.ErrDecode), ShouldBeTrue)
		})

		Convey("When the document is empty", func() {
			_, err := source.Decode(strings.NewReader(""))
			So(errors.Is(err, source.ErrDecode), ShouldBeTrue)
		})

		Convey("When quoting is broken", func() {
			_, err := source.Decode(strings.NewReader("a,b\n\"1,2\n"))
			So(errors.Is(err, source.ErrDecode), ShouldBeTrue)
		})
	})
}

func TestEncode(t *testing.T) {
	Convey("Given a decoded table", t, func() {
		table, err := source.Decode(strings.NewReader(sheet))
		So(err, ShouldBeNil)

		Convey("When encoding and decoding it again", func() {
			var buf bytes.Buffer
			So(source.Encode(&buf, table), ShouldBeNil)
			again, err := source.Decode(&buf)

			Convey("Then the table is unchanged", func() {
				So(err, ShouldBeNil)
				So(again, ShouldResemble, table)
			})
		})
	})
}

func TestFileSource(t *testing.T) {
	Convey("Given a sheet on disk", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "data.csv")
		So(os.WriteFile(path, []byte(sheet), 0o600), ShouldBeNil)

		Convey("Then Load decodes it", func() {
			table, err := source.NewFileSource(path).Load(context.Background())
			So(err, ShouldBeNil)
			So(len(table.Rows), ShouldEqual, 2)
		})

		Convey("Then a missing file is a fetch error", func() {
			_, err := source.NewFileSource(filepath.Join(dir, "missing.csv")).Load(context.Background())
			So(errors.Is(err, source.ErrFetch), ShouldBeTrue)
		})

		Convey("Then a cancelled context is a fetch error", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := source.NewFileSource(path).Load(ctx)
			So(errors.Is(err, source.ErrFetch), ShouldBeTrue)
		})
	})
}

func TestHTTPSource(t *testing.T) {
	Convey("Given an HTTP server serving the sheet", t, func() {
		var lastQuery atomic.Value
		lastQuery.Store("")
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lastQuery.Store(r.URL.RawQuery)
			switch r.URL.Path {
			case "/data.csv":
				w.Header().Set("Content-Type", "text/csv")
				_, _ = w.Write([]byte(sheet))
			case "/big.csv":
				// Whole rows well past the default cap, so a cut would land on a row boundary.
				w.Header().Set("Content-Type", "text/csv")
				_, _ = w.Write([]byte("date,local,visitor,score,Alice,Bob\n"))
				row := []byte("2024-01-01,A1,A2,1-0,1-0,0-1\n")
				for written := 0; written <= source.DefaultMaxBodyBytes; written += len(row) {
					_, _ = w.Write(row)
				}
				_, _ = w.Write([]byte("2024-02-01,B1,B2,3-0,0-3,3-0\n"))
			case "/slow.csv":
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			default:
				http.NotFound(w, r)
			}
		}))
		defer srv.Close()

		Convey("When cache busting is on", func() {
			at := time.UnixMilli(1718000000123)
			s := source.NewHTTPSource(srv.URL+"/data.csv",
				source.WithHTTPClient(srv.Client()),
				source.WithCacheBust(true),
				source.WithClock(func() time.Time { return at }))
			table, err := s.Load(context.Background())

			Convey("Then the request carries the nocache parameter", func() {
				So(err, ShouldBeNil)
				So(len(table.Rows), ShouldEqual, 2)
				So(lastQuery.Load(), ShouldEqual, "nocache=1718000000123")
			})
		})

		Convey("When cache busting is off", func() {
			_, err := source.NewHTTPSource(srv.URL+"/data.csv", source.WithHTTPClient(srv.Client())).Load(context.Background())
			So(err, ShouldBeNil)
			So(lastQuery.Load(), ShouldEqual, "")
		})

		Convey("When the server answers 404", func() {
			_, err := source.NewHTTPSource(srv.URL+"/nope.csv", source.WithHTTPClient(srv.Client())).Load(context.Background())
			So(errors.Is(err, source.ErrFetch), ShouldBeTrue)
		})

		Convey("When the document is larger than the default cap", func() {
			table, err := source.NewHTTPSource(srv.URL+"/big.csv", source.WithHTTPClient(srv.Client())).Load(context.Background())

			Convey("Then it fails instead of returning the truncated rows", func() {
				So(errors.Is(err, source.ErrDecode), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "exceeds")
				So(table.Rows, ShouldBeEmpty)
			})
		})

		Convey("When the cap is set just below and exactly at the document size", func() {
			size := int64(len(sheet))
			_, err := source.NewHTTPSource(srv.URL+"/data.csv",
				source.WithHTTPClient(srv.Client()),
				source.WithMaxBodyBytes(size-1)).Load(context.Background())
			So(errors.Is(err, source.ErrDecode), ShouldBeTrue)

			table, err := source.NewHTTPSource(srv.URL+"/data.csv",
				source.WithHTTPClient(srv.Client()),
				source.WithMaxBodyBytes(size)).Load(context.Background())
			So(err, ShouldBeNil)
			So(len(table.Rows), ShouldEqual, 2)
		})

		Convey("When the server is slower than the timeout", func() {
			s := source.NewHTTPSource(srv.URL+"/slow.csv",
				source.WithHTTPClient(srv.Client()),
				source.WithTimeout(50*time.Millisecond))
			_, err := s.Load(context.Background())
			So(errors.Is(err, source.ErrFetch), ShouldBeTrue)
		})
	})
}

var _ source.Source = (*source.FileSource)(nil)
var _ source.Source = (*source.HTTPSource)(nil)
