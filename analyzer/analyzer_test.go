package analyzer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seo-optimizer/auditor/cache"
	"github.com/seo-optimizer/auditor/fetch"
	"github.com/seo-optimizer/auditor/metrics"
	"github.com/seo-optimizer/auditor/scorer"
	"github.com/seo-optimizer/auditor/stats"
)

const page = `<!DOCTYPE html>
<html>
<head>
  <title>Fresh Roasted Coffee Beans Delivered Weekly</title>
  <meta name="description" content="Small batch coffee roasted to order.">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <link rel="stylesheet" href="/wp-content/themes/roast/style.css">
</head>
<body>
  <h1>Coffee subscriptions</h1>
  <h2>How it works</h2>
  <p>We offer weekly coffee subscriptions for small business offices. Our software picks beans.</p>
  <a href="/services/subscriptions">Subscriptions</a>
</body>
</html>`

type fixture struct {
	server   *httptest.Server
	hits     *atomic.Int32
	dir      string
	analyzer *Analyzer
	stats    *stats.Storage
	cache    *cache.Cache[*Result]
}

func newFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()

	hits := &atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	st, err := stats.NewStorage(filepath.Join(dir, "stats"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Shutdown() })

	c := cache.New[*Result](filepath.Join(dir, "cache"), time.Hour)
	a := New(Dependencies{
		Fetcher: fetch.New(fetch.Options{}, zap.NewNop()),
		Cache:   c,
		Stats:   st,
		Metrics: metrics.NewCollector(),
		Logger:  zap.NewNop(),
	}, DefaultConfig())

	return &fixture{server: server, hits: hits, dir: filepath.Join(dir, "cache"), analyzer: a, stats: st, cache: c}
}

func serve(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Server", "nginx/1.25")
		_, _ = w.Write([]byte(body))
	}
}

func cacheFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	return matches
}

func TestAnalyzeFullAudit(t *testing.T) {
	f := newFixture(t, serve(page))

	res := f.analyzer.Analyze(context.Background(), f.server.URL, f.analyzer.DefaultOptions())

	require.NotNil(t, res)
	require.Empty(t, res.Error)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, ModeFull, res.Mode)
	assert.False(t, res.FromCache)

	for _, key := range scorer.Keys {
		v, ok := res.ComponentScores[key]
		require.True(t, ok, key)
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 100)
	}
	assert.Equal(t, 100, res.ComponentScores[scorer.Title])
	assert.Equal(t, scorer.Overall(res.ComponentScores), res.OverallScore)

	require.NotNil(t, res.Platform)
	assert.Equal(t, "WordPress", res.Platform.CMS)
	require.NotNil(t, res.Content)
	assert.Contains(t, res.Content.Audience, "small_business")
	assert.NotEmpty(t, res.Document.ServicePages)

	assert.Len(t, cacheFiles(t, f.dir), 1)
	assert.Same(t, f.stats, f.analyzer.Stats())
	assert.Equal(t, 1, f.analyzer.Stats().GetCurrentStats().Audits)
	assert.Equal(t, 1, f.analyzer.Stats().GetCurrentStats().CacheMisses)
}

func TestAnalyzeServesFromCache(t *testing.T) {
	f := newFixture(t, serve(page))
	opts := Options{CacheTTL: time.Minute}

	first := f.analyzer.Analyze(context.Background(), f.server.URL, opts)
	second := f.analyzer.Analyze(context.Background(), f.server.URL, opts)

	assert.False(t, first.FromCache)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.OverallScore, second.OverallScore)
	assert.Equal(t, first.ComponentScores, second.ComponentScores)
	assert.EqualValues(t, 1, f.hits.Load())
	assert.Equal(t, 1, f.stats.GetCurrentStats().CacheHits)
}

func TestAnalyzeExpiredEntryRefetches(t *testing.T) {
	f := newFixture(t, serve(page))
	opts := Options{CacheTTL: time.Minute}

	first := f.analyzer.Analyze(context.Background(), f.server.URL, opts)
	f.cache.SetClock(func() time.Time { return time.Now().Add(2 * time.Minute) })
	second := f.analyzer.Analyze(context.Background(), f.server.URL, opts)

	assert.False(t, second.FromCache)
	assert.NotEqual(t, first.ID, second.ID)
	assert.EqualValues(t, 2, f.hits.Load())
}

func TestAnalyzeFastModeSkipsCache(t *testing.T) {
	f := newFixture(t, serve(page))
	opts := Options{Fast: true, CacheTTL: time.Hour}

	first := f.analyzer.Analyze(context.Background(), f.server.URL, opts)
	second := f.analyzer.Analyze(context.Background(), f.server.URL, opts)

	assert.Equal(t, ModeFast, first.Mode)
	assert.False(t, second.FromCache)
	assert.EqualValues(t, 2, f.hits.Load())
	assert.Empty(t, cacheFiles(t, f.dir))
	assert.Empty(t, first.Document.ServicePages)
}

func TestAnalyzeZeroTTLSkipsCache(t *testing.T) {
	f := newFixture(t, serve(page))

	f.analyzer.Analyze(context.Background(), f.server.URL, Options{})
	res := f.analyzer.Analyze(context.Background(), f.server.URL, Options{})

	assert.False(t, res.FromCache)
	assert.EqualValues(t, 2, f.hits.Load())
	assert.Empty(t, cacheFiles(t, f.dir))
}

func TestAnalyzeFetchFailure(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	res := f.analyzer.Analyze(context.Background(), f.server.URL, Options{CacheTTL: time.Hour})

	require.NotNil(t, res)
	assert.True(t, res.Failed())
	assert.Contains(t, res.Error, "404")
	assert.Empty(t, res.ComponentScores)
	assert.Empty(t, res.Recommendations)
	assert.Nil(t, res.Document)
	assert.Empty(t, cacheFiles(t, f.dir))
	assert.Equal(t, 1, f.stats.GetCurrentStats().FetchFailures)
}

func TestAnalyzeCorruptEntryIsMiss(t *testing.T) {
	f := newFixture(t, serve(page))
	require.NoError(t, os.MkdirAll(f.dir, 0o755))
	path := filepath.Join(f.dir, cache.Key(f.server.URL)+".json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	res := f.analyzer.Analyze(context.Background(), f.server.URL, Options{CacheTTL: time.Hour})

	assert.Empty(t, res.Error)
	assert.False(t, res.FromCache)
	assert.EqualValues(t, 1, f.hits.Load())
	assert.Equal(t, 1, f.stats.GetCurrentStats().CacheErrors)

	again := f.analyzer.Analyze(context.Background(), f.server.URL, Options{CacheTTL: time.Hour})
	assert.True(t, again.FromCache)
}

type stubFetcher struct {
	resp     *fetch.Response
	err      error
	timeouts []time.Duration
}

func (s *stubFetcher) Fetch(_ context.Context, _ string, timeout time.Duration) (*fetch.Response, error) {
	s.timeouts = append(s.timeouts, timeout)
	return s.resp, s.err
}

func TestAnalyzeUsesModeTimeouts(t *testing.T) {
	stub := &stubFetcher{resp: &fetch.Response{Markup: page, StatusCode: 200}}
	a := New(Dependencies{Fetcher: stub}, DefaultConfig())

	a.Analyze(context.Background(), "https://example.com", Options{})
	a.Analyze(context.Background(), "https://example.com", Options{Fast: true})

	assert.Equal(t, []time.Duration{15 * time.Second, 5 * time.Second}, stub.timeouts)
}

func TestAnalyzeWithoutOptionalDependencies(t *testing.T) {
	stub := &stubFetcher{err: errors.New("dial tcp: connection refused")}
	a := New(Dependencies{Fetcher: stub}, Config{})

	res := a.Analyze(context.Background(), "https://example.com", a.DefaultOptions())

	assert.Equal(t, "dial tcp: connection refused", res.Error)
	assert.NoError(t, a.Shutdown())
}
