// Package analyzer runs a complete audit of one URL: cache lookup, fetch,
// parse, platform and content classification, scoring and cache write.
package analyzer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seo-optimizer/auditor/cache"
	"github.com/seo-optimizer/auditor/content"
	"github.com/seo-optimizer/auditor/document"
	"github.com/seo-optimizer/auditor/fetch"
	"github.com/seo-optimizer/auditor/metrics"
	"github.com/seo-optimizer/auditor/platform"
	"github.com/seo-optimizer/auditor/scorer"
	"github.com/seo-optimizer/auditor/stats"
)

// Fetcher retrieves a page within a timeout.
type Fetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) (*fetch.Response, error)
}

// Dependencies are the collaborators of an Analyzer. Cache, Stats, Metrics
// and Logger may be nil; the classifiers and scorer default to their stock
// tables.
type Dependencies struct {
	Fetcher  Fetcher
	Cache    *cache.Cache[*Result]
	Platform *platform.Classifier
	Content  *content.Classifier
	Scorer   *scorer.Scorer
	Stats    *stats.Storage
	Metrics  *metrics.Collector
	Logger   *zap.Logger
}

// Analyzer performs SEO audits. It holds no per-audit state and is safe for
// concurrent use.
type Analyzer struct {
	fetcher  Fetcher
	cache    *cache.Cache[*Result]
	platform *platform.Classifier
	content  *content.Classifier
	scorer   *scorer.Scorer
	stats    *stats.Storage
	metrics  *metrics.Collector
	log      *zap.Logger
	cfg      Config
	now      func() time.Time
}

// New creates an Analyzer.
func New(deps Dependencies, cfg Config) *Analyzer {
	a := &Analyzer{
		fetcher:  deps.Fetcher,
		cache:    deps.Cache,
		platform: deps.Platform,
		content:  deps.Content,
		scorer:   deps.Scorer,
		stats:    deps.Stats,
		metrics:  deps.Metrics,
		log:      deps.Logger,
		cfg:      cfg,
		now:      time.Now,
	}
	if a.fetcher == nil {
		a.fetcher = fetch.New(fetch.Options{}, deps.Logger)
	}
	if a.platform == nil {
		a.platform = platform.NewDefault()
	}
	if a.content == nil {
		a.content = content.NewDefault()
	}
	if a.scorer == nil {
		a.scorer = scorer.NewDefault()
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	if a.cfg.FullTimeout <= 0 {
		a.cfg.FullTimeout = DefaultConfig().FullTimeout
	}
	if a.cfg.FastTimeout <= 0 {
		a.cfg.FastTimeout = DefaultConfig().FastTimeout
	}
	return a
}

// DefaultOptions returns full-mode options with the configured TTL.
func (a *Analyzer) DefaultOptions() Options {
	return Options{CacheTTL: a.cfg.CacheTTL}
}

// Analyze audits url. It never returns nil: a fetch failure yields a result
// whose Error is set and whose scores are empty.
func (a *Analyzer) Analyze(ctx context.Context, url string, opts Options) *Result {
	start := a.now()
	mode := ModeFull
	if opts.Fast {
		mode = ModeFast
	}
	log := a.log.With(zap.String("url", url), zap.String("mode", mode))

	var store *cache.Cache[*Result]
	if !opts.Fast && opts.CacheTTL > 0 && a.cache != nil {
		store = a.cache.WithTTL(opts.CacheTTL)
		if cached, ok := a.lookup(store, url, log); ok {
			cached.FromCache = true
			a.metrics.RecordAudit(mode, metrics.OutcomeCached, a.now().Sub(start))
			log.Debug("served from cache", zap.String("id", cached.ID))
			return cached
		}
	} else {
		a.metrics.RecordCacheLookup(metrics.CacheBypassed)
	}

	result := &Result{
		ID:              uuid.NewString(),
		URL:             url,
		AuditedAt:       start.UTC(),
		Mode:            mode,
		Recommendations: []scorer.Recommendation{},
	}

	timeout := a.cfg.FullTimeout
	parseOpts := a.cfg.Full
	if opts.Fast {
		timeout = a.cfg.FastTimeout
		parseOpts = a.cfg.Fast
	}

	resp, err := a.fetcher.Fetch(ctx, url, timeout)
	if err != nil {
		return a.fail(result, err, start, log)
	}
	a.metrics.RecordFetch(resp.LoadTime)

	doc, err := document.Parse(document.Source{
		URL:        url,
		FinalURL:   resp.FinalURL,
		Markup:     resp.Markup,
		Headers:    resp.Headers,
		StatusCode: resp.StatusCode,
		LoadTime:   resp.LoadTime,
	}, parseOpts)
	if err != nil {
		return a.fail(result, err, start, log)
	}

	fingerprint := a.platform.Classify(doc)
	classification := a.content.Classify(doc.Text, doc.Title, doc.MetaDescription)
	scores := a.scorer.Score(doc)

	result.Document = doc
	result.Platform = &fingerprint
	result.Content = &classification
	result.ComponentScores = scores.Components
	result.OverallScore = scores.Overall
	result.Recommendations = scores.Recommendations

	delta := stats.Delta{Audits: 1}
	if store != nil {
		err := store.Put(url, result)
		a.metrics.RecordCacheWrite(err)
		if err != nil {
			log.Warn("cache write failed", zap.Error(err))
			delta.CacheErrors++
		}
	}
	a.stats.Add(delta)

	a.metrics.RecordScore(result.OverallScore)
	a.metrics.RecordAudit(mode, metrics.OutcomeOK, a.now().Sub(start))
	log.Info("audit complete",
		zap.String("id", result.ID),
		zap.Int("overall_score", result.OverallScore),
		zap.Int("recommendations", len(result.Recommendations)),
		zap.Duration("load_time", resp.LoadTime),
	)
	return result
}

// lookup treats every cache error as a miss. Only unexpected errors are logged.
func (a *Analyzer) lookup(store *cache.Cache[*Result], url string, log *zap.Logger) (*Result, bool) {
	cached, err := store.Get(url)
	switch {
	case err == nil && cached != nil:
		a.stats.Add(stats.Delta{CacheHits: 1})
		a.metrics.RecordCacheLookup(metrics.CacheHit)
		return cached, true
	case err == nil, errors.Is(err, cache.ErrMiss), errors.Is(err, cache.ErrDisabled):
		a.stats.Add(stats.Delta{CacheMisses: 1})
		a.metrics.RecordCacheLookup(metrics.CacheMiss)
	default:
		log.Warn("cache read failed", zap.Error(err))
		a.stats.Add(stats.Delta{CacheMisses: 1, CacheErrors: 1})
		a.metrics.RecordCacheLookup(metrics.CacheError)
	}
	return nil, false
}

func (a *Analyzer) fail(result *Result, err error, start time.Time, log *zap.Logger) *Result {
	result.Error = err.Error()
	a.stats.Add(stats.Delta{Audits: 1, FetchFailures: 1})
	a.metrics.RecordAudit(result.Mode, metrics.OutcomeFetchFailure, a.now().Sub(start))
	log.Warn("audit failed", zap.Error(err))
	return result
}

// Shutdown flushes the statistics storage.
func (a *Analyzer) Shutdown() error {
	if a == nil {
		return nil
	}
	return a.stats.Shutdown()
}

// Stats returns the statistics storage, which may be nil.
func (a *Analyzer) Stats() *stats.Storage {
	return a.stats
}
