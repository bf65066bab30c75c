// Package metrics collects timing samples emitted by targeting engines.
// Sinks are purely observational: nothing they return feeds back into a
// targeting decision.
package metrics

import (
	"log/slog"
	"time"
)

// Operation names emitted by the targeting engine.
const (
	OpFindTarget        = "find_target"
	OpRangeFilter       = "range_filter"
	OpThreatCalculation = "threat_calculation"
	OpUpdateTarget      = "update_target"
)

// Sample is one timed operation.
type Sample struct {
	Operation string
	Start     time.Time
	End       time.Time
	Duration  time.Duration
}

// Sink receives timing samples. Record must not block.
type Sink interface {
	Record(s Sample)
}

// Measure builds a sample for an operation that started at start and ends now.
func Measure(op string, start time.Time) Sample {
	end := time.Now()
	return Sample{Operation: op, Start: start, End: end, Duration: end.Sub(start)}
}

type discard struct{}

func (discard) Record(Sample) {}

// Discard drops every sample.
var Discard Sink = discard{}

// LogSink writes every sample as a debug log line.
type LogSink struct {
	Logger *slog.Logger
}

// Record implements Sink.
func (l LogSink) Record(s Sample) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("targeting timing",
		"operation", s.Operation,
		"duration", s.Duration)
}

// Tee fans samples out to several sinks.
type Tee []Sink

// Record implements Sink.
func (t Tee) Record(s Sample) {
	for _, sink := range t {
		if sink != nil {
			sink.Record(s)
		}
	}
}
