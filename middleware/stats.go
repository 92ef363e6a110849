package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seo-optimizer/auditor/logging"
)

// AnalyzePath is the endpoint whose requests count as audits.
const AnalyzePath = "/api/analyze"

const saveEvery = 100

// Stats tracks visitors and audit requests, saving every 100 audits.
func Stats(stats *logging.Statistics, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		stats.TrackVisitor(c.ClientIP())

		isAudit := c.Request.URL.Path == AnalyzePath && c.Request.Method == http.MethodPost
		target := ""
		if isAudit {
			target = peekURL(c.Request)
		}

		c.Next()

		if !isAudit {
			return
		}
		total := stats.TrackAudit(target, time.Since(start), c.Writer.Status() >= http.StatusBadRequest)
		if total%saveEvery == 0 {
			go func() {
				if err := stats.Save(); err != nil {
					logger.Warn("statistics save failed", zap.Error(err))
				}
			}()
		}
	}
}

// peekURL reads the "url" field of a JSON body and restores the body for the
// handler.
func peekURL(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(data))
	if err != nil {
		return ""
	}

	var body struct {
		URL string `json:"url"`
	}
	if json.Unmarshal(data, &body) != nil {
		return ""
	}
	return body.URL
}
