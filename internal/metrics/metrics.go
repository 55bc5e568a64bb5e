package metrics

import (
	"sync"
	"time"
)

// Metrics collects in-process counters for one or more pipeline runs,
// exposed through the optional monitoring endpoints.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	TopicsProcessed    int64
	TopicsFailed       int64
	SearchQueriesRun   int64
	CandidatesFetched  int64
	ArticlesDelivered  int64
	DigestEmailsSent   int64
	QuotaCooldownsHit  int64
	GenerationFailures int64

	// Timings
	LastRunDuration  time.Duration
	TotalRunDuration time.Duration
	RunCount         int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementTopicsProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TopicsProcessed++
}

func (m *Metrics) IncrementTopicsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TopicsFailed++
}

func (m *Metrics) AddSearchQueries(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchQueriesRun += int64(n)
}

func (m *Metrics) AddCandidates(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CandidatesFetched += int64(n)
}

func (m *Metrics) AddArticlesDelivered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesDelivered += int64(n)
}

func (m *Metrics) IncrementDigestEmailsSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DigestEmailsSent++
}

func (m *Metrics) IncrementQuotaCooldowns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QuotaCooldownsHit++
}

func (m *Metrics) IncrementGenerationFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerationFailures++
}

func (m *Metrics) RecordRun(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRunDuration = duration
	m.TotalRunDuration += duration
	m.RunCount++
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"topics_processed":     m.TopicsProcessed,
		"topics_failed":        m.TopicsFailed,
		"search_queries_run":   m.SearchQueriesRun,
		"candidates_fetched":   m.CandidatesFetched,
		"articles_delivered":   m.ArticlesDelivered,
		"digest_emails_sent":   m.DigestEmailsSent,
		"quota_cooldowns_hit":  m.QuotaCooldownsHit,
		"generation_failures":  m.GenerationFailures,
		"last_run_duration_ms": m.LastRunDuration.Milliseconds(),
		"last_run_time":        m.LastRunTime.Format(time.RFC3339),
		"last_error_time":      m.LastErrorTime.Format(time.RFC3339),
		"last_error":           m.LastError,
		"is_healthy":           m.IsHealthy,
	}
}
