package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()

	c.RecordAudit("full", OutcomeOK, 2*time.Second)
	c.RecordAudit("full", OutcomeOK, time.Second)
	c.RecordAudit("fast", OutcomeFetchFailure, time.Second)
	c.RecordCacheLookup(CacheHit)
	c.RecordCacheLookup(CacheMiss)
	c.RecordCacheLookup(CacheMiss)
	c.RecordCacheWrite(nil)
	c.RecordCacheWrite(errors.New("disk full"))
	c.RecordFetch(300 * time.Millisecond)
	c.RecordScore(72)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.auditsTotal.WithLabelValues("full", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.auditsTotal.WithLabelValues("fast", OutcomeFetchFailure)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.cacheLookups.WithLabelValues(CacheMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheWrites.WithLabelValues("error")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector()
	c.RecordAudit("full", OutcomeOK, time.Second)
	c.RecordScore(90)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `seo_audits_total{mode="full",outcome="ok"} 1`)
	assert.Contains(t, body, "seo_overall_score_bucket")
	assert.Contains(t, body, "go_goroutines")
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordAudit("full", OutcomeOK, time.Second)
		c.RecordCacheLookup(CacheHit)
		c.RecordCacheWrite(nil)
		c.RecordFetch(time.Second)
		c.RecordScore(50)
	})
}
