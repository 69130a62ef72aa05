package ingest

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/cvpa-audit/internal/model"
)

// SnapshotOptions configures the website snapshotter.
type SnapshotOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	// RequestsPerSecond throttles page fetches per snapshotter, not per host:
	// a collection run pulls several pages from one company's site.
	RequestsPerSecond float64
}

// Snapshotter fetches company-controlled pages and reduces them to readable
// text for promise extraction.
type Snapshotter struct {
	client  *http.Client
	opts    SnapshotOptions
	limiter *rate.Limiter
}

// NewSnapshotter creates a Snapshotter with the given options.
func NewSnapshotter(opts SnapshotOptions) *Snapshotter {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "cvpa-audit/1.0"
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = 2
	}
	return &Snapshotter{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
	}
}

// Snapshot fetches one page and returns it as a pending raw page. The page
// body is reduced to readable text; pages where extraction finds nothing
// fall back to the raw body.
func (s *Snapshotter) Snapshot(ctx context.Context, companyID, rawURL string) (model.RawPage, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return model.RawPage{}, eris.Wrapf(err, "ingest: parse url %s", rawURL)
	}

	body, err := s.fetch(ctx, rawURL)
	if err != nil {
		return model.RawPage{}, err
	}

	content := readableText(body, pageURL)
	if strings.TrimSpace(content) == "" {
		return model.RawPage{}, eris.Errorf("ingest: no text content at %s", rawURL)
	}

	return model.RawPage{
		CompanyID:   companyID,
		SourceType:  model.SourceWebsite,
		SourceURL:   rawURL,
		Content:     content,
		CollectedAt: time.Now().UTC(),
		Status:      model.RawPagePending,
	}, nil
}

func (s *Snapshotter) fetch(ctx context.Context, rawURL string) (string, error) {
	var lastErr error
	for attempt := range s.opts.MaxRetries {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", eris.Wrap(err, "ingest: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return "", eris.Wrap(err, "ingest: create request")
		}
		req.Header.Set("User-Agent", s.opts.UserAgent)

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			zap.L().Warn("snapshot fetch failed, retrying",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			s.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("ingest: http %d from %s", resp.StatusCode, rawURL)
			s.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return "", eris.Errorf("ingest: unexpected status %d from %s", resp.StatusCode, rawURL)
		}

		raw, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			s.backoff(ctx, attempt)
			continue
		}
		return string(raw), nil
	}
	return "", eris.Wrap(lastErr, "ingest: all retries exhausted")
}

func (s *Snapshotter) backoff(ctx context.Context, attempt int) {
	base := time.Second
	maxBackoff := 30 * time.Second
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	d += time.Duration(rand.Int64N(int64(d) / 2))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// readableText runs readability extraction over the page body, falling back
// to the raw body when the page has no article-like structure.
func readableText(body string, pageURL *url.URL) string {
	article, err := readability.FromReader(strings.NewReader(body), pageURL)
	if err != nil || strings.TrimSpace(article.TextContent) == "" {
		return body
	}
	return article.TextContent
}
