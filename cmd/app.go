package cmd

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/seo-optimizer/auditor/analyzer"
	"github.com/seo-optimizer/auditor/cache"
	"github.com/seo-optimizer/auditor/config"
	"github.com/seo-optimizer/auditor/content"
	"github.com/seo-optimizer/auditor/fetch"
	"github.com/seo-optimizer/auditor/logging"
	"github.com/seo-optimizer/auditor/metrics"
	"github.com/seo-optimizer/auditor/platform"
	"github.com/seo-optimizer/auditor/scorer"
	"github.com/seo-optimizer/auditor/stats"
)

// app is the wiring shared by serve and audit.
type app struct {
	log      *zap.Logger
	analyzer *analyzer.Analyzer
	metrics  *metrics.Collector
}

func newApp(cfg *config.Config, logMode string) (*app, error) {
	logger, err := logging.New(logMode, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	rules := platform.DefaultRules()
	if cfg.Platform.RulesFile != "" {
		rules, err = platform.LoadRules(cfg.Platform.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("loading platform rules: %w", err)
		}
		logger.Info("platform rules loaded", zap.String("path", cfg.Platform.RulesFile))
	}

	storage, err := stats.NewStorage(cfg.Stats.Dir, logger.Named("stats"))
	if err != nil {
		return nil, err
	}
	storage.Cleanup()

	collector := metrics.NewCollector()
	a := analyzer.New(analyzer.Dependencies{
		Fetcher: fetch.New(fetch.Options{
			UserAgent:    cfg.Fetch.UserAgent,
			MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
		}, logger.Named("fetch")),
		Cache:    cache.New[*analyzer.Result](filepath.Clean(cfg.Cache.Dir), cfg.Cache.TTL),
		Platform: platform.New(rules),
		Content:  content.NewDefault(),
		Scorer:   scorer.New(cfg.Scoring),
		Stats:    storage,
		Metrics:  collector,
		Logger:   logger.Named("analyzer"),
	}, cfg.Analyzer())

	return &app{log: logger, analyzer: a, metrics: collector}, nil
}

func (a *app) close() {
	if err := a.analyzer.Shutdown(); err != nil {
		a.log.Warn("failed to flush stats", zap.Error(err))
	}
	_ = a.log.Sync()
}
