package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"journeygrid/adapters/excel"
	"journeygrid/internal"
	"journeygrid/internal/config"
	"journeygrid/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newSource(t *testing.T, handler http.HandlerFunc, maxBytes int64) *HTTPSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s := NewHTTPSource(Config{URL: srv.URL + "/pub?output=csv", GID: "7", Timeout: 5 * time.Second, MaxBytes: maxBytes}, internal.Discard())
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	t.Cleanup(s.httpClient.CloseIdleConnections)
	return s
}

func TestHTTPSourceRead(t *testing.T) {
	var gotQuery url.Values
	s := newSource(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		assert.Equal(t, "text/csv,*/*", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("\uFEFFStage,Stakeholder\nAware,Buyer\n"))
	}, 1024)

	table, err := s.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Stage", "Stakeholder"}, {"Aware", "Buyer"}}, table.Rows)
	assert.Equal(t, "Stage,Stakeholder\nAware,Buyer", table.Preview)
	assert.NotContains(t, table.Origin, "?")

	assert.Equal(t, "csv", gotQuery.Get("output"))
	assert.Equal(t, "true", gotQuery.Get("single"))
	assert.Equal(t, "7", gotQuery.Get("gid"))
	assert.Equal(t, "1700000000000", gotQuery.Get("t"))
}

func TestHTTPSourceRejectsHTML(t *testing.T) {
	s := newSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<!DOCTYPE html><html><body>Sign in</body></html>"))
	}, 1024)

	_, err := s.Read(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeHTMLResponse, errors.GetCode(err))
	assert.Contains(t, err.Error(), "single=true&gid=<tab_gid>")
}

func TestHTTPSourceUpstreamError(t *testing.T) {
	s := newSource(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}, 1024)

	_, err := s.Read(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeExternalService, errors.GetCode(err))
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestHTTPSourceSizeLimit(t *testing.T) {
	s := newSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a,b\n", 100)))
	}, 16)

	_, err := s.Read(context.Background())
	assert.Equal(t, errors.CodeSourceTooLarge, errors.GetCode(err))
}

func TestHTTPSourceCoalescesConcurrentReads(t *testing.T) {
	var hits int32
	release := make(chan struct{})
	s := newSource(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		_, _ = w.Write([]byte("Stage,Stakeholder\nA,X\n"))
	}, 1024)

	const callers = 5
	var wg sync.WaitGroup
	var started sync.WaitGroup
	started.Add(callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			table, err := s.Read(context.Background())
			assert.NoError(t, err)
			assert.Len(t, table.Rows, 2)
		}()
	}
	started.Wait()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&hits), int32(callers))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&hits), int32(1))
}

func TestBuildURL(t *testing.T) {
	now := time.UnixMilli(42)

	got := BuildURL("https://docs.google.com/spreadsheets/d/e/X/pub?output=csv", "", now)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/e/X/pub?output=csv&t=42", got)

	got = BuildURL("https://contoso.sharepoint.com/:x:/g/abc?e=xyz", "", now)
	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "1", u.Query().Get("download"))
	assert.Equal(t, "xyz", u.Query().Get("e"))
	assert.Equal(t, "42", u.Query().Get("t"))
}

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, LooksLikeHTML([]byte("\n  <HTML lang=en>")))
	assert.False(t, LooksLikeHTML([]byte("Stage,Stakeholder\nA,B")))
	assert.False(t, LooksLikeHTML([]byte(strings.Repeat("x", 250)+"<html>")))
}

func TestNewPicksSourceKind(t *testing.T) {
	_, isHTTP := New(config.SourceConfig{URL: "https://example.com/x.csv", Timeout: time.Second}, internal.Discard()).(*HTTPSource)
	assert.True(t, isHTTP)
	_, isFile := New(config.SourceConfig{File: "journey.xlsx"}, internal.Discard()).(*excel.DataReader)
	assert.True(t, isFile)
}
