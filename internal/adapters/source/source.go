// Package source loads the prediction sheet as a table.
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/osvo/club-world-cup-tracker/internal/domain/model"
)

// Default HTTP settings.
const (
	DefaultTimeout      = 10 * time.Second
	DefaultMaxBodyBytes = 8 << 20
	cacheBustParam      = "nocache"
	acceptCSVHeader     = "text/csv, text/plain;q=0.9, */*;q=0.1"
)

// Source yields the current table.
type Source interface {
	Load(ctx context.Context) (model.Table, error)
}

// FileSource reads a CSV file from disk on every Load.
type FileSource struct {
	path string
}

// NewFileSource returns a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load opens and decodes the file.
func (s *FileSource) Load(ctx context.Context) (model.Table, error) {
	if err := ctx.Err(); err != nil {
		return model.Table{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	f, err := os.Open(s.path)
	if err != nil {
		return model.Table{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer f.Close()
	return Decode(f)
}

// String describes the source for logs.
func (s *FileSource) String() string { return "file:" + s.path }

// HTTPSource fetches a CSV document over HTTP on every Load.
type HTTPSource struct {
	url       string
	client    *http.Client
	timeout   time.Duration
	cacheBust bool
	maxBytes  int64
	now       func() time.Time
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithHTTPClient sets the client used for requests.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		if c != nil {
			s.client = c
		}
	}
}

// WithTimeout bounds a single Load.
func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithCacheBust appends nocache=<unix ms> to every request so intermediate
// caches never serve a stale sheet.
func WithCacheBust(enabled bool) HTTPOption {
	return func(s *HTTPSource) { s.cacheBust = enabled }
}

// WithMaxBodyBytes caps the document size. A larger document fails to load
// with ErrDecode rather than being truncated.
func WithMaxBodyBytes(n int64) HTTPOption {
	return func(s *HTTPSource) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithClock sets the time source for the cache-bust parameter.
func WithClock(now func() time.Time) HTTPOption {
	return func(s *HTTPSource) {
		if now != nil {
			s.now = now
		}
	}
}

// NewHTTPSource returns a source fetching rawURL.
func NewHTTPSource(rawURL string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		url:      rawURL,
		client:   http.DefaultClient,
		timeout:  DefaultTimeout,
		maxBytes: DefaultMaxBodyBytes,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches and decodes the document.
func (s *HTTPSource) Load(ctx context.Context) (model.Table, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	target, err := s.requestURL()
	if err != nil {
		return model.Table{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return model.Table{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", acceptCSVHeader)

	resp, err := s.client.Do(req)
	if err != nil {
		return model.Table{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, s.maxBytes))
		return model.Table{}, fmt.Errorf("%w: unexpected status %d", ErrFetch, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return model.Table{}, fmt.Errorf("%w: reading body: %v", ErrFetch, err)
	}
	if int64(len(data)) > s.maxBytes {
		return model.Table{}, fmt.Errorf("%w: document exceeds %d bytes", ErrDecode, s.maxBytes)
	}
	return Decode(bytes.NewReader(data))
}

func (s *HTTPSource) requestURL() (string, error) {
	if !s.cacheBust {
		return s.url, nil
	}
	u, err := url.Parse(s.url)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(cacheBustParam, strconv.FormatInt(s.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// String describes the source for logs.
func (s *HTTPSource) String() string { return "http:" + s.url }
