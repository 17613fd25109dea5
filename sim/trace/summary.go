package trace

import (
	"sort"
	"time"
)

// TraceSummary aggregates statistics from a RunTrace.
type TraceSummary struct {
	TotalSteps   int            `yaml:"total_steps"`
	StatsReports int            `yaml:"stats_reports"`
	MeanStepWall time.Duration  `yaml:"mean_step_wall"`
	MaxStepWall  time.Duration  `yaml:"max_step_wall"`
	AlarmCounts  map[string]int `yaml:"alarm_counts"` // alarm id → number of steps it rang
	Timers       []Timer        `yaml:"timers"`       // sorted by total time, descending
}

// Summarize computes aggregate statistics from a RunTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(rt *RunTrace) *TraceSummary {
	summary := &TraceSummary{
		AlarmCounts: make(map[string]int),
	}
	if rt == nil {
		return summary
	}

	summary.TotalSteps = len(rt.Steps)
	summary.StatsReports = len(rt.Stats)

	if len(rt.Steps) > 0 {
		var total time.Duration
		for _, s := range rt.Steps {
			total += s.Wall
			if s.Wall > summary.MaxStepWall {
				summary.MaxStepWall = s.Wall
			}
			for _, a := range s.Alarms {
				summary.AlarmCounts[a]++
			}
		}
		summary.MeanStepWall = total / time.Duration(len(rt.Steps))
	}

	summary.Timers = rt.Timers()
	sort.SliceStable(summary.Timers, func(i, j int) bool {
		return summary.Timers[i].Total > summary.Timers[j].Total
	})

	return summary
}
