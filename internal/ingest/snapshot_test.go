package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/cvpa-audit/internal/model"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Shipfast - Never lose a package</title></head>
<body>
<nav><a href="/">Home</a><a href="/pricing">Pricing</a></nav>
<article>
<h1>Delivery tracking that just works</h1>
<p>We help you track every order in real time, so you always know where your
packages are. No more lost shipments, no more support tickets asking where
an order went. Every scan, every handoff, and every delivery attempt shows
up on one timeline that you and your customers can both see.</p>
<p>Our customers save hours every week, which means faster deliveries and
happier buyers for your store. Teams that used to spend entire mornings
chasing carriers now spend that time growing their business instead, and
their support inboxes have gone quiet for the first time in years.</p>
<p>Setup takes minutes, not weeks. Connect your store, import your open
orders, and watch the tracking board fill itself in. There is nothing to
install and nothing to maintain, because we handle the carrier integrations
for you and keep them working as carriers change their systems.</p>
</article>
</body>
</html>`

func newSnapshotterForTest() *Snapshotter {
	return NewSnapshotter(SnapshotOptions{RequestsPerSecond: 1000, MaxRetries: 2})
}

func TestSnapshot(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cvpa-audit/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer ts.Close()

	s := newSnapshotterForTest()
	page, err := s.Snapshot(context.Background(), "company-1", ts.URL)
	require.NoError(t, err)

	assert.Equal(t, "company-1", page.CompanyID)
	assert.Equal(t, model.SourceWebsite, page.SourceType)
	assert.Equal(t, ts.URL, page.SourceURL)
	assert.Equal(t, model.RawPagePending, page.Status)
	assert.False(t, page.CollectedAt.IsZero())

	// Readable text keeps the copy and drops the markup.
	assert.Contains(t, page.Content, "track every order in real time")
	assert.NotContains(t, page.Content, "<article>")
}

func TestSnapshot_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(samplePage))
	}))
	defer ts.Close()

	s := newSnapshotterForTest()
	page, err := s.Snapshot(context.Background(), "company-1", ts.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Contains(t, page.Content, "track every order")
}

func TestSnapshot_GivesUpAfterRetries(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	s := newSnapshotterForTest()
	_, err := s.Snapshot(context.Background(), "company-1", ts.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all retries exhausted")
}

func TestSnapshot_NotFoundIsPermanent(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer ts.Close()

	s := newSnapshotterForTest()
	_, err := s.Snapshot(context.Background(), "company-1", ts.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestSnapshot_BadURL(t *testing.T) {
	s := newSnapshotterForTest()
	_, err := s.Snapshot(context.Background(), "company-1", "://not-a-url")
	require.Error(t, err)
}
