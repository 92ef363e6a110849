package logging

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const visitorWindow = 24 * time.Hour

// Statistics collects request statistics for the API. It is safe for
// concurrent use.
type Statistics struct {
	UniqueVisitors map[string]time.Time `json:"uniqueVisitors"` // IP -> last visit
	AuditRequests  int                  `json:"auditRequests"`
	ErrorCount     int                  `json:"errorCount"`
	PopularDomains map[string]int       `json:"popularDomains"`
	TotalLatencyMs float64              `json:"totalLatencyMs"`
	LastPersisted  time.Time            `json:"lastPersisted"`

	mutex  sync.RWMutex
	saveMu sync.Mutex
	path   string
	now    func() time.Time
	log    *zap.Logger
}

// DomainCount is one entry of the popular domains ranking.
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// NewStatistics creates statistics persisted at path, loading any previous
// snapshot. An unreadable snapshot is logged and ignored.
func NewStatistics(path string, log *zap.Logger) *Statistics {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Statistics{
		UniqueVisitors: make(map[string]time.Time),
		PopularDomains: make(map[string]int),
		path:           path,
		now:            time.Now,
		log:            log,
	}
	if err := s.Load(); err != nil {
		log.Warn("could not load existing statistics", zap.String("path", path), zap.Error(err))
	}
	return s
}

// TrackVisitor records a visit from ip.
func (s *Statistics) TrackVisitor(ip string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.UniqueVisitors[ip] = s.now()
}

// domainOf reduces an audited URL to its host. Local and API URLs are not
// tracked.
func domainOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "localhost" || host == "127.0.0.1" || strings.Contains(strings.ToLower(u.Path), "/api/") {
		return ""
	}
	return strings.TrimPrefix(host, "www.")
}

// TrackAudit records one audit request and returns the running total.
func (s *Statistics) TrackAudit(target string, latency time.Duration, failed bool) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.AuditRequests++
	if domain := domainOf(target); domain != "" {
		s.PopularDomains[domain]++
	}
	if failed {
		s.ErrorCount++
	}
	s.TotalLatencyMs += float64(latency.Microseconds()) / 1000
	return s.AuditRequests
}

// UniqueVisitorsCount returns the number of visitors seen in the last 24 hours.
func (s *Statistics) UniqueVisitorsCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.uniqueVisitors()
}

func (s *Statistics) uniqueVisitors() int {
	cutoff := s.now().Add(-visitorWindow)
	count := 0
	for _, lastVisit := range s.UniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}
	return count
}

// TopDomains returns the n most audited domains, most frequent first.
func (s *Statistics) TopDomains(n int) []DomainCount {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.topDomains(n)
}

func (s *Statistics) topDomains(n int) []DomainCount {
	out := make([]DomainCount, 0, len(s.PopularDomains))
	for d, c := range s.PopularDomains {
		out = append(out, DomainCount{Domain: d, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Domain < out[j].Domain
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// ErrorRate returns the share of failed audit requests as a percentage.
func (s *Statistics) ErrorRate() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.errorRate()
}

func (s *Statistics) errorRate() float64 {
	if s.AuditRequests == 0 {
		return 0
	}
	return float64(s.ErrorCount) / float64(s.AuditRequests) * 100
}

func (s *Statistics) averageLatency() float64 {
	if s.AuditRequests == 0 {
		return 0
	}
	return s.TotalLatencyMs / float64(s.AuditRequests)
}

// Snapshot returns the public view of the statistics. Popular domains are
// only included when detailed is set.
func (s *Statistics) Snapshot(detailed bool) map[string]any {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := map[string]any{
		"uniqueVisitors24h": s.uniqueVisitors(),
		"totalRequests":     s.AuditRequests,
		"errorRate":         s.errorRate(),
		"averageLatencyMs":  s.averageLatency(),
	}
	if detailed {
		out["popularDomains"] = s.topDomains(5)
	}
	return out
}

// pruneVisitors drops visitors outside the unique-visitor window. Callers
// hold the write lock.
func (s *Statistics) pruneVisitors() {
	cutoff := s.now().Add(-visitorWindow)
	for ip, lastVisit := range s.UniqueVisitors {
		if !lastVisit.After(cutoff) {
			delete(s.UniqueVisitors, ip)
		}
	}
}

// Save prunes stale visitors and writes the statistics to disk through a
// temporary file. Concurrent saves are serialized.
func (s *Statistics) Save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mutex.Lock()
	s.pruneVisitors()
	s.LastPersisted = s.now()
	data, err := json.Marshal(s)
	s.mutex.Unlock()
	if err != nil {
		return fmt.Errorf("could not encode statistics: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create statistics directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temporary statistics file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("could not write statistics file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("could not close statistics file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("could not replace statistics file: %w", err)
	}
	return nil
}

// Load reads the statistics from disk. A missing file is not an error.
func (s *Statistics) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("could not open statistics file: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("could not decode statistics: %w", err)
	}
	if s.UniqueVisitors == nil {
		s.UniqueVisitors = make(map[string]time.Time)
	}
	if s.PopularDomains == nil {
		s.PopularDomains = make(map[string]int)
	}
	return nil
}
