package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	domain "journeygrid/domain/journey"
	"journeygrid/internal"
	"journeygrid/internal/csvparse"
	"journeygrid/internal/errors"

	"golang.org/x/sync/singleflight"
)

// Config holds the settings for fetching a published journey sheet
type Config struct {
	URL      string
	GID      string
	Timeout  time.Duration
	MaxBytes int64
}

// HTTPSource fetches a published CSV export. Concurrent reads share one request.
type HTTPSource struct {
	config     Config
	httpClient *http.Client
	group      singleflight.Group
	now        func() time.Time
	logger     *internal.Logger
}

// NewHTTPSource creates a fetcher for cfg
func NewHTTPSource(cfg Config, logger *internal.Logger) *HTTPSource {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &HTTPSource{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		now:        time.Now,
		logger:     logger.With("HTTPSource"),
	}
}

// Read implements ports.SourcePort
func (s *HTTPSource) Read(ctx context.Context) (domain.RawTable, error) {
	v, err, shared := s.group.Do("read", func() (interface{}, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		return domain.RawTable{}, err
	}
	if shared {
		s.logger.Debug("joined in-flight fetch")
	}
	return v.(domain.RawTable), nil
}

// FetchText retrieves the body of the published sheet, rejecting HTML pages and
// bodies larger than the configured limit
func (s *HTTPSource) FetchText(ctx context.Context) (string, string, error) {
	startTime := time.Now()
	target := BuildURL(s.config.URL, s.config.GID, s.now())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", target, errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, "failed to build request"))
	}
	req.Header.Set("Accept", "text/csv,*/*")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", target, errors.ExternalServiceError("sheet", err)
	}
	defer resp.Body.Close()

	limit := s.config.MaxBytes
	reader := io.Reader(resp.Body)
	if limit > 0 {
		reader = io.LimitReader(resp.Body, limit+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", target, errors.ExternalServiceError("sheet", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", target, errors.ExternalServiceError("sheet",
			fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet(body)))
	}
	if limit > 0 && int64(len(body)) > limit {
		return "", target, errors.SourceTooLarge(limit)
	}
	if LooksLikeHTML(body) {
		return "", target, errors.HTMLResponse(redact(target))
	}

	s.logger.Info("fetched %d bytes in %.2fms", len(body), float64(time.Since(startTime).Nanoseconds())/1e6)
	return string(body), target, nil
}

func (s *HTTPSource) fetch(ctx context.Context) (domain.RawTable, error) {
	text, target, err := s.FetchText(ctx)
	if err != nil {
		s.logger.Error("fetch failed: %v", err)
		return domain.RawTable{}, err
	}
	return domain.RawTable{
		Rows:    csvparse.Tokenize(text),
		Origin:  redact(target),
		Preview: csvparse.Preview(text),
	}, nil
}

var htmlMarker = regexp.MustCompile(`(?i)<!doctype html|<html`)

// LooksLikeHTML reports whether the first 200 bytes of body look like an HTML page,
// which is what sheet providers return for unpublished or login-gated links
func LooksLikeHTML(body []byte) bool {
	head := body
	if len(head) > 200 {
		head = head[:200]
	}
	return htmlMarker.Match(head)
}

var sharePointHost = regexp.MustCompile(`(?i)(sharepoint\.com|1drv\.ms|onedrive\.live\.com)$`)

// BuildURL adds the tab selector, the SharePoint download flag and a cache-buster
// to a published sheet link
func BuildURL(base, gid string, now time.Time) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	if gid != "" {
		q.Set("single", "true")
		q.Set("gid", gid)
	}
	if sharePointHost.MatchString(u.Hostname()) && q.Get("download") != "1" {
		q.Set("download", "1")
	}
	q.Set("t", strconv.FormatInt(now.UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String()
}

// redact drops the query string so share tokens do not end up in logs or responses
func redact(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	u.RawQuery = ""
	return u.String()
}

func snippet(body []byte) string {
	const max = 200
	body = bytes.TrimSpace(body)
	if len(body) > max {
		return strings.ToValidUTF8(string(body[:max]), "") + "…"
	}
	return string(body)
}
