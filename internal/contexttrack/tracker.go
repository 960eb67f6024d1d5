// Package contexttrack bounds the cumulative size of content returned to the
// caller and deterministically compresses oversized payloads once the budget
// threshold is crossed.
package contexttrack

import (
	"fmt"
	"sync"
	"time"
)

// SummaryRecord is one summarization event kept for diagnostics.
type SummaryRecord struct {
	Timestamp        time.Time `json:"ts"`
	OriginalChars    int       `json:"original_chars"`
	SummaryChars     int       `json:"summary_chars"`
	CompressionRatio float64   `json:"compression_ratio"`
}

// Usage is the tracker snapshot returned by diagnostics.
type Usage struct {
	MaxChars         int             `json:"max_chars"`
	CurrentChars     int             `json:"current_chars"`
	UsagePct         float64         `json:"usage_pct"`
	SummaryThreshold float64         `json:"summary_threshold"`
	SummaryEnabled   bool            `json:"summarization_enabled"`
	RecentSummaries  []SummaryRecord `json:"recent_summaries"`
}

// Tracker owns the process-wide context budget. Safe for concurrent use.
type Tracker struct {
	mu         sync.Mutex
	maxChars   int
	threshold  float64
	enabled    bool
	current    int
	summaries  []SummaryRecord
	historyCap int
}

// NewTracker creates a tracker with the given budget. historyCap bounds the
// retained summarization events.
func NewTracker(maxChars int, threshold float64, enabled bool, historyCap int) *Tracker {
	return &Tracker{
		maxChars:   maxChars,
		threshold:  threshold,
		enabled:    enabled,
		historyCap: historyCap,
	}
}

// Add counts content against the budget and returns the running total.
func (t *Tracker) Add(content string) int {
	return t.AddN(len(content))
}

// AddN counts n characters against the budget and returns the running total.
func (t *Tracker) AddN(n int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current += n
	return t.current
}

// ShouldSummarize reports whether usage has crossed the threshold fraction.
func (t *Tracker) ShouldSummarize() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shouldSummarizeLocked()
}

func (t *Tracker) shouldSummarizeLocked() bool {
	if !t.enabled || t.maxChars <= 0 {
		return false
	}
	return float64(t.current)/float64(t.maxChars) >= t.threshold
}

// Reset clears the counter. The summary history is kept.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = 0
}

// CurrentChars returns the running total.
func (t *Tracker) CurrentChars() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// UsagePct returns usage as a percentage of the budget.
func (t *Tracker) UsagePct() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.usagePctLocked()
}

func (t *Tracker) usagePctLocked() float64 {
	if t.maxChars <= 0 {
		return 0
	}
	return float64(t.current) / float64(t.maxChars) * 100
}

// Snapshot returns the diagnostics view.
func (t *Tracker) Snapshot() Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	recent := make([]SummaryRecord, len(t.summaries))
	copy(recent, t.summaries)
	return Usage{
		MaxChars:         t.maxChars,
		CurrentChars:     t.current,
		UsagePct:         t.usagePctLocked(),
		SummaryThreshold: t.threshold,
		SummaryEnabled:   t.enabled,
		RecentSummaries:  recent,
	}
}

// Process accounts content against the budget and, once the threshold is
// crossed, replaces it with a deterministic summary wrapped in a header
// stating original size, summary size, and ratio. After summarizing, the
// counter resets and re-accounts the summary itself so the same payload does
// not immediately re-trigger. targetChars sizes the summary.
func (t *Tracker) Process(content, label string, targetChars int) string {
	t.mu.Lock()
	if !t.enabled {
		t.mu.Unlock()
		return content
	}
	t.current += len(content)
	if !t.shouldSummarizeLocked() {
		t.mu.Unlock()
		return content
	}
	t.mu.Unlock()

	summary := Summarize(content, targetChars)
	t.mu.Lock()
	t.recordLocked(len(content), len(summary))
	t.current = len(summary)
	pct := t.usagePctLocked()
	t.mu.Unlock()

	header := fmt.Sprintf("[AUTO-SUMMARIZED at %.1f%% context usage: %s]\n", pct, label)
	header += fmt.Sprintf("[Original: %d chars -> Summary: %d chars (%.1f%%)]\n\n",
		len(content), len(summary), float64(len(summary))/float64(len(content))*100)
	return header + summary
}

// RecordSummary notes a summarization event performed by a caller that did
// its own compression (grouped listings, search hits).
func (t *Tracker) RecordSummary(originalChars, summaryChars int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recordLocked(originalChars, summaryChars)
}

func (t *Tracker) recordLocked(originalChars, summaryChars int) {
	ratio := 0.0
	if originalChars > 0 {
		ratio = float64(summaryChars) / float64(originalChars)
	}
	t.summaries = append(t.summaries, SummaryRecord{
		Timestamp:        time.Now(),
		OriginalChars:    originalChars,
		SummaryChars:     summaryChars,
		CompressionRatio: ratio,
	})
	if len(t.summaries) > t.historyCap {
		t.summaries = t.summaries[len(t.summaries)-t.historyCap:]
	}
}

// Enabled reports whether summarization is on.
func (t *Tracker) Enabled() bool { return t.enabled }

// MaxChars returns the configured budget.
func (t *Tracker) MaxChars() int { return t.maxChars }
