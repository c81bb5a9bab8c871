package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ItemsPublished       int64
	DuplicatesSkipped    int64
	UnidentifiedDropped  int64
	PlaceholderFallbacks int64
	TextOnlyFallbacks    int64
	DeliveryFailures     int64
	CTAPosted            int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsPublished++
}

func (m *Metrics) IncrementDuplicates() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesSkipped++
}

func (m *Metrics) IncrementUnidentified() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UnidentifiedDropped++
}

func (m *Metrics) IncrementPlaceholderFallbacks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlaceholderFallbacks++
}

func (m *Metrics) IncrementTextOnlyFallbacks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TextOnlyFallbacks++
}

func (m *Metrics) IncrementDeliveryFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeliveryFailures++
}

func (m *Metrics) IncrementCTAPosted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CTAPosted++
}

// SetLastRun stamps the cycle and records its outcome. A cycle that saw any
// feed fail must not reset the unhealthy flag raised by SetError.
func (m *Metrics) SetLastRun(healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = healthy
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
		"items_published":       m.ItemsPublished,
		"duplicates_skipped":    m.DuplicatesSkipped,
		"unidentified_dropped":  m.UnidentifiedDropped,
		"placeholder_fallbacks": m.PlaceholderFallbacks,
		"text_only_fallbacks":   m.TextOnlyFallbacks,
		"delivery_failures":     m.DeliveryFailures,
		"cta_posted":            m.CTAPosted,
		"last_run_time":         m.LastRunTime.Format(time.RFC3339),
		"last_error_time":       m.LastErrorTime.Format(time.RFC3339),
		"last_error":            m.LastError,
		"is_healthy":            m.IsHealthy,
	}
}
