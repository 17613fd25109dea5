package trace

import "time"

// Timer accumulates wall-clock time spent in one named phase.
type Timer struct {
	Name  string        `yaml:"name"`
	Calls int           `yaml:"calls"`
	Total time.Duration `yaml:"total"`
	Max   time.Duration `yaml:"max"`
}

// StepRecord captures one completed time step.
type StepRecord struct {
	Step    int
	SimTime string
	Alarms  []string // alarms that rang during the step
	Wall    time.Duration
}

// StatsRecord captures one global statistics report.
type StatsRecord struct {
	Step    int
	SimTime string
	Values  map[string]float64
}
