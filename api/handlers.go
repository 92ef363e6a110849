package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seo-optimizer/auditor/analyzer"
	"github.com/seo-optimizer/auditor/report"
)

type analyzeRequest struct {
	URL  string `json:"url" binding:"required"`
	Fast bool   `json:"fast"`
	// CacheTTLSeconds overrides the configured TTL; 0 disables the cache.
	CacheTTLSeconds *int `json:"cache_ttl_seconds"`
}

type downloadRequest struct {
	Audit *analyzer.Result `json:"audit"`
}

// ValidURL reports whether raw is an absolute http or https URL.
func ValidURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: a url is required"})
		return
	}

	url := strings.TrimSpace(req.URL)
	if !ValidURL(url) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL must start with http:// or https://"})
		return
	}

	opts := s.auditor.DefaultOptions()
	opts.Fast = req.Fast
	if req.CacheTTLSeconds != nil {
		if *req.CacheTTLSeconds < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cache_ttl_seconds must not be negative"})
			return
		}
		opts.CacheTTL = time.Duration(*req.CacheTTLSeconds) * time.Second
	}

	s.log.Debug("analyze request", zap.String("url", url), zap.Bool("fast", opts.Fast), zap.String("client_ip", c.ClientIP()))
	res := s.auditor.Analyze(c.Request.Context(), url, opts)
	if res.Failed() {
		c.JSON(http.StatusBadGateway, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) download(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Audit == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing audit data."})
		return
	}

	pdf, err := report.RenderPDF(req.Audit)
	if err != nil {
		s.log.Error("pdf generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "PDF generation failed: " + err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+report.Filename)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (s *Server) statisticsSnapshot(c *gin.Context) {
	out := s.statistics.Snapshot(s.devMode)
	if s.monthly != nil {
		out["currentMonth"] = s.monthly.GetCurrentStats()
	}
	c.JSON(http.StatusOK, out)
}
