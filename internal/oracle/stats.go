package oracle

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
}

// OpSnapshot is a point-in-time latency aggregate for one oracle operation.
type OpSnapshot struct {
	Count    int     `json:"count"`
	Failures int     `json:"failures"`
	MinMs    int64   `json:"min_ms"`
	MaxMs    int64   `json:"max_ms"`
	AvgMs    float64 `json:"avg_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
	P99Ms    float64 `json:"p99_ms"`
}

// CallStats tracks recent oracle call latencies per operation within a
// rolling window.
type CallStats struct {
	mu       sync.Mutex
	samples  map[string][]sample
	failures map[string]int
	maxAge   time.Duration
}

func NewCallStats(maxAge time.Duration) *CallStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &CallStats{
		samples:  make(map[string][]sample),
		failures: make(map[string]int),
		maxAge:   maxAge,
	}
}

func (s *CallStats) Record(op string, durationMs int64) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(op, now)
	s.samples[op] = append(s.samples[op], sample{
		timestamp:  now,
		durationMs: durationMs,
	})
}

func (s *CallStats) RecordFailure(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op]++
}

// Snapshot aggregates the rolling window per operation.
func (s *CallStats) Snapshot() map[string]OpSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Operations that have only ever failed carry no samples; union the
	// failure keys in so their counts still surface.
	ops := make(map[string]struct{}, len(s.samples)+len(s.failures))
	for op := range s.samples {
		ops[op] = struct{}{}
	}
	for op := range s.failures {
		ops[op] = struct{}{}
	}

	out := make(map[string]OpSnapshot, len(ops))
	for op := range ops {
		s.pruneLocked(op, now)
		snap := OpSnapshot{Failures: s.failures[op]}
		if len(s.samples[op]) == 0 {
			out[op] = snap
			continue
		}

		values := make([]int64, 0, len(s.samples[op]))
		var sum int64
		for _, sm := range s.samples[op] {
			values = append(values, sm.durationMs)
			sum += sm.durationMs
		}
		sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

		snap.Count = len(values)
		snap.MinMs = values[0]
		snap.MaxMs = values[len(values)-1]
		snap.AvgMs = float64(sum) / float64(len(values))
		snap.P50Ms = percentile(values, 50)
		snap.P95Ms = percentile(values, 95)
		snap.P99Ms = percentile(values, 99)
		out[op] = snap
	}
	return out
}

func (s *CallStats) pruneLocked(op string, now time.Time) {
	cutoff := now.Add(-s.maxAge)
	kept := s.samples[op]
	writeIdx := 0
	for _, sm := range kept {
		if !sm.timestamp.Before(cutoff) {
			kept[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples[op] = kept[:writeIdx]
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
