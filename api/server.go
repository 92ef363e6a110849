// Package api serves audits over HTTP with gin.
package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seo-optimizer/auditor/analyzer"
	"github.com/seo-optimizer/auditor/logging"
	"github.com/seo-optimizer/auditor/metrics"
	"github.com/seo-optimizer/auditor/middleware"
	"github.com/seo-optimizer/auditor/stats"
)

// Auditor runs audits. *analyzer.Analyzer implements it.
type Auditor interface {
	Analyze(ctx context.Context, url string, opts analyzer.Options) *analyzer.Result
	DefaultOptions() analyzer.Options
}

// Options configure a Server.
type Options struct {
	Auditor    Auditor
	Statistics *logging.Statistics
	Monthly    *stats.Storage
	Metrics    *metrics.Collector
	Logger     *zap.Logger

	// GinMode is debug, release or test.
	GinMode string
	// DevMode exposes popular domains on /api/statistics.
	DevMode bool

	RequestsPerSecond float64
	Burst             int
}

type Server struct {
	Router *gin.Engine

	auditor    Auditor
	statistics *logging.Statistics
	monthly    *stats.Storage
	metrics    *metrics.Collector
	log        *zap.Logger
	devMode    bool
}

// NewServer builds the router with logging, recovery, rate limiting, CORS and
// request statistics.
func NewServer(opts Options) *Server {
	if opts.GinMode != "" {
		gin.SetMode(opts.GinMode)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Statistics == nil {
		opts.Statistics = logging.NewStatistics("statistics.json", opts.Logger)
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 2
	}
	if opts.Burst <= 0 {
		opts.Burst = 5
	}

	router := gin.New()
	router.Use(middleware.Logger(opts.Logger))
	router.Use(middleware.ErrorHandler(opts.Logger))
	router.Use(middleware.CORS())
	router.Use(middleware.NewRateLimiter(opts.RequestsPerSecond, opts.Burst).RateLimit())
	router.Use(middleware.Stats(opts.Statistics, opts.Logger))

	s := &Server{
		Router:     router,
		auditor:    opts.Auditor,
		statistics: opts.Statistics,
		monthly:    opts.Monthly,
		metrics:    opts.Metrics,
		log:        opts.Logger,
		devMode:    opts.DevMode,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.Router.Group("/api")
	{
		api.GET("/health", s.health)
		api.POST("/analyze", s.analyze)
		api.POST("/download", s.download)
		api.GET("/statistics", s.statisticsSnapshot)
	}

	if s.metrics != nil {
		s.Router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}

// Statistics returns the request statistics the router records into.
func (s *Server) Statistics() *logging.Statistics {
	return s.statistics
}
