package llm

import (
	"slices"
	"sync"
	"time"
)

// StatsSnapshot aggregates the completions inside the stats window. Latency
// figures cover successful calls only.
type StatsSnapshot struct {
	Count    int     `json:"count"`
	Failures int     `json:"failures"`
	MinMs    int64   `json:"min_ms"`
	MaxMs    int64   `json:"max_ms"`
	AvgMs    float64 `json:"avg_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
	P99Ms    float64 `json:"p99_ms"`
}

type outcome struct {
	at        time.Time
	latencyMs int64
	failed    bool
}

// LLMStats keeps completion outcomes for a rolling window.
type LLMStats struct {
	mu       sync.Mutex
	window   time.Duration
	now      func() time.Time
	outcomes []outcome
}

func NewLLMStats(window time.Duration) *LLMStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LLMStats{window: window, now: time.Now}
}

// Record adds a successful completion. Negative latencies count as zero.
func (s *LLMStats) Record(latencyMs int64) {
	s.add(outcome{latencyMs: max(latencyMs, 0)})
}

// RecordFailure adds a completion that returned an error.
func (s *LLMStats) RecordFailure() {
	s.add(outcome{failed: true})
}

func (s *LLMStats) add(o outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.at = s.now()
	s.expire(o.at)
	s.outcomes = append(s.outcomes, o)
}

func (s *LLMStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	s.expire(s.now())
	var snap StatsSnapshot
	latencies := make([]int64, 0, len(s.outcomes))
	for _, o := range s.outcomes {
		if o.failed {
			snap.Failures++
			continue
		}
		latencies = append(latencies, o.latencyMs)
	}
	s.mu.Unlock()

	if len(latencies) == 0 {
		return snap
	}
	slices.Sort(latencies)
	var total int64
	for _, v := range latencies {
		total += v
	}
	snap.Count = len(latencies)
	snap.MinMs = latencies[0]
	snap.MaxMs = latencies[len(latencies)-1]
	snap.AvgMs = float64(total) / float64(len(latencies))
	snap.P50Ms = quantile(latencies, 0.50)
	snap.P95Ms = quantile(latencies, 0.95)
	snap.P99Ms = quantile(latencies, 0.99)
	return snap
}

func (s *LLMStats) expire(now time.Time) {
	cutoff := now.Add(-s.window)
	s.outcomes = slices.DeleteFunc(s.outcomes, func(o outcome) bool {
		return o.at.Before(cutoff)
	})
}

// quantile interpolates linearly between the closest ranks of sorted.
func quantile(sorted []int64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	i := int(pos)
	if i+1 >= len(sorted) {
		return float64(sorted[len(sorted)-1])
	}
	lo, hi := float64(sorted[i]), float64(sorted[i+1])
	return lo + (hi-lo)*(pos-float64(i))
}
