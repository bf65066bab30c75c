package metrics

import (
	"log/slog"
	"slices"
	"sync"
	"time"
)

// DefaultWindow is the number of samples kept per operation.
const DefaultWindow = 256

// DefaultAlertCooldown limits budget warnings to one per operation per period.
const DefaultAlertCooldown = 5 * time.Second

// DefaultBudgets are soft per-operation budgets. Exceeding one is a quality
// regression, never a correctness failure.
func DefaultBudgets() map[string]time.Duration {
	return map[string]time.Duration{
		OpFindTarget:        500 * time.Microsecond,
		OpRangeFilter:       200 * time.Microsecond,
		OpThreatCalculation: 200 * time.Microsecond,
		OpUpdateTarget:      time.Millisecond,
	}
}

// Stats summarises the retained window of one operation.
type Stats struct {
	Operation  string
	Count      uint64 // samples seen since creation, not just retained
	Average    time.Duration
	Min        time.Duration
	Max        time.Duration
	P50        time.Duration
	P95        time.Duration
	P99        time.Duration
	OverBudget uint64
}

type series struct {
	ring       []time.Duration
	next       int
	full       bool
	count      uint64
	overBudget uint64
	lastAlert  time.Time
}

func (s *series) add(d time.Duration) {
	s.ring[s.next] = d
	s.next++
	if s.next == len(s.ring) {
		s.next = 0
		s.full = true
	}
	s.count++
}

func (s *series) window() []time.Duration {
	if s.full {
		return slices.Clone(s.ring)
	}
	return slices.Clone(s.ring[:s.next])
}

// Recorder keeps a bounded ring buffer of durations per operation and logs a
// warning when a sample exceeds its budget. Safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	window   int
	cooldown time.Duration
	budgets  map[string]time.Duration
	series   map[string]*series
}

// NewRecorder creates a recorder keeping window samples per operation.
// Non-positive window uses DefaultWindow. Nil budgets use DefaultBudgets.
func NewRecorder(window int, budgets map[string]time.Duration) *Recorder {
	if window <= 0 {
		window = DefaultWindow
	}
	if budgets == nil {
		budgets = DefaultBudgets()
	}
	return &Recorder{
		window:   window,
		cooldown: DefaultAlertCooldown,
		budgets:  budgets,
		series:   make(map[string]*series),
	}
}

// SetAlertCooldown changes the minimum gap between budget warnings.
func (r *Recorder) SetAlertCooldown(d time.Duration) {
	r.mu.Lock()
	r.cooldown = d
	r.mu.Unlock()
}

// Record implements Sink.
func (r *Recorder) Record(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ser, ok := r.series[s.Operation]
	if !ok {
		ser = &series{ring: make([]time.Duration, r.window)}
		r.series[s.Operation] = ser
	}
	ser.add(s.Duration)

	budget, ok := r.budgets[s.Operation]
	if !ok || budget <= 0 || s.Duration <= budget {
		return
	}
	ser.overBudget++

	now := s.End
	if now.IsZero() {
		now = time.Now()
	}
	if !ser.lastAlert.IsZero() && now.Sub(ser.lastAlert) < r.cooldown {
		return
	}
	ser.lastAlert = now
	slog.Warn("targeting operation over budget",
		"operation", s.Operation,
		"duration", s.Duration,
		"budget", budget,
		"overBudget", ser.overBudget)
}

// Stats returns the summary for op. ok is false if op was never recorded.
func (r *Recorder) Stats(op string) (Stats, bool) {
	r.mu.Lock()
	ser, ok := r.series[op]
	if !ok {
		r.mu.Unlock()
		return Stats{Operation: op}, false
	}
	window := ser.window()
	st := Stats{Operation: op, Count: ser.count, OverBudget: ser.overBudget}
	r.mu.Unlock()

	summarize(&st, window)
	return st, true
}

// All returns summaries for every recorded operation, sorted by name.
func (r *Recorder) All() []Stats {
	r.mu.Lock()
	ops := make([]string, 0, len(r.series))
	for op := range r.series {
		ops = append(ops, op)
	}
	r.mu.Unlock()

	slices.Sort(ops)
	out := make([]Stats, 0, len(ops))
	for _, op := range ops {
		if st, ok := r.Stats(op); ok {
			out = append(out, st)
		}
	}
	return out
}

// Reset drops every retained sample.
func (r *Recorder) Reset() {
	r.mu.Lock()
	clear(r.series)
	r.mu.Unlock()
}

func summarize(st *Stats, window []time.Duration) {
	if len(window) == 0 {
		return
	}
	slices.Sort(window)

	var total time.Duration
	for _, d := range window {
		total += d
	}
	st.Average = total / time.Duration(len(window))
	st.Min = window[0]
	st.Max = window[len(window)-1]
	st.P50 = percentile(window, 50)
	st.P95 = percentile(window, 95)
	st.P99 = percentile(window, 99)
}

// percentile uses nearest-rank on a sorted slice.
func percentile(sorted []time.Duration, p int) time.Duration {
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}
