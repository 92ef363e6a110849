package analyzer

import (
	"time"

	"github.com/seo-optimizer/auditor/content"
	"github.com/seo-optimizer/auditor/document"
	"github.com/seo-optimizer/auditor/platform"
	"github.com/seo-optimizer/auditor/scorer"
)

// Audit modes.
const (
	ModeFull = "full"
	ModeFast = "fast"
)

// Result is the complete audit of one URL. It is what the cache stores and
// what the report stage consumes.
type Result struct {
	ID              string                  `json:"id"`
	URL             string                  `json:"url"`
	AuditedAt       time.Time               `json:"audited_at"`
	Mode            string                  `json:"mode"`
	Document        *document.Document      `json:"document,omitempty"`
	Platform        *platform.Fingerprint   `json:"platform,omitempty"`
	Content         *content.Classification `json:"content,omitempty"`
	ComponentScores scorer.Scores           `json:"component_scores,omitempty"`
	OverallScore    int                     `json:"overall_score"`
	Recommendations []scorer.Recommendation `json:"recommendations"`
	FromCache       bool                    `json:"from_cache"`
	// Error is set only when the page could not be fetched.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the audit stopped at the fetch.
func (r *Result) Failed() bool {
	return r.Error != ""
}

// Options select the mode and caching behaviour of a single audit.
type Options struct {
	Fast bool
	// CacheTTL is the freshness window for both lookup and write. Zero
	// disables the cache for this audit.
	CacheTTL time.Duration
}

// Config holds the defaults an Analyzer applies to every audit.
type Config struct {
	FullTimeout time.Duration
	FastTimeout time.Duration
	CacheTTL    time.Duration
	Full        document.ParseOptions
	Fast        document.ParseOptions
}

// DefaultConfig returns the stock timeouts, a one hour TTL and the document
// package's parse presets.
func DefaultConfig() Config {
	return Config{
		FullTimeout: 15 * time.Second,
		FastTimeout: 5 * time.Second,
		CacheTTL:    time.Hour,
		Full:        document.FullOptions(),
		Fast:        document.FastOptions(),
	}
}
