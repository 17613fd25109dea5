// Package trace is the run's timer registry and step log. A *RunTrace is
// created by the run driver and passed explicitly to the components it
// times; there is no package-level timer state.
// This package has no dependencies on the rest of the core; it stores pure data.
package trace

import (
	"time"
)

// TraceLevel controls the verbosity of step recording.
type TraceLevel string

const (
	// TraceLevelNone keeps timers only.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelSteps also records one StepRecord per time step.
	TraceLevelSteps TraceLevel = "steps"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelSteps: true,
	"":              true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// RunTrace collects timers, step records and statistics reports.
// All methods are safe on a nil receiver and do nothing.
//
// Thread-safety: NOT thread-safe. Each rank owns its own RunTrace.
type RunTrace struct {
	Config TraceConfig
	Steps  []StepRecord
	Stats  []StatsRecord

	timers map[string]*Timer
	order  []string
	now    func() time.Time
}

// NewRunTrace creates a RunTrace ready for recording.
func NewRunTrace(config TraceConfig) *RunTrace {
	return &RunTrace{
		Config: config,
		Steps:  make([]StepRecord, 0),
		Stats:  make([]StatsRecord, 0),
		timers: make(map[string]*Timer),
		now:    time.Now,
	}
}

// Start begins timing name and returns the function that stops it.
func (rt *RunTrace) Start(name string) (stop func()) {
	if rt == nil {
		return func() {}
	}
	begin := rt.now()
	return func() {
		rt.add(name, rt.now().Sub(begin))
	}
}

func (rt *RunTrace) add(name string, d time.Duration) {
	t, ok := rt.timers[name]
	if !ok {
		t = &Timer{Name: name}
		rt.timers[name] = t
		rt.order = append(rt.order, name)
	}
	t.Calls++
	t.Total += d
	if d > t.Max {
		t.Max = d
	}
}

// Timer returns a copy of the named timer.
func (rt *RunTrace) Timer(name string) (Timer, bool) {
	if rt == nil {
		return Timer{}, false
	}
	t, ok := rt.timers[name]
	if !ok {
		return Timer{}, false
	}
	return *t, true
}

// Timers returns copies of every timer in first-use order.
func (rt *RunTrace) Timers() []Timer {
	if rt == nil {
		return nil
	}
	out := make([]Timer, 0, len(rt.order))
	for _, name := range rt.order {
		out = append(out, *rt.timers[name])
	}
	return out
}

// RecordStep appends a step record when the level asks for them.
func (rt *RunTrace) RecordStep(record StepRecord) {
	if rt == nil || rt.Config.Level != TraceLevelSteps {
		return
	}
	rt.Steps = append(rt.Steps, record)
}

// RecordStats appends a global statistics report.
func (rt *RunTrace) RecordStats(record StatsRecord) {
	if rt == nil {
		return
	}
	rt.Stats = append(rt.Stats, record)
}
