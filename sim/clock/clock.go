// Package clock owns simulated time: the model clock, its stop condition and
// the named alarms every other component consults before acting.
package clock

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ocean-sim/ocean-sim/sim"
)

// Alarm ids consulted by the core.
const (
	AlarmStats   = "stats"
	AlarmInput   = "input"
	AlarmOutput  = "output"
	AlarmRestart = "restart"
)

// Settings are the raw clock strings read from configuration.
// RunDuration takes precedence over Stop when both are set.
type Settings struct {
	Start       string
	Stop        string
	RunDuration string
	TimeStep    string
}

// Alarm is a periodic trigger tied to the clock.
type Alarm struct {
	ID       string
	Period   time.Duration
	NextFire time.Time
}

// ringing is true once simulated time has reached the next fire time.
func (a *Alarm) ringing(now time.Time) bool {
	return !now.Before(a.NextFire)
}

// Clock is the simulation clock. It is created once by the run driver and
// passed explicitly to every component that needs "now".
//
// Thread-safety: NOT thread-safe. Each rank owns its own Clock.
type Clock struct {
	start  time.Time
	now    time.Time
	stop   time.Time
	dt     time.Duration
	steps  int
	alarms map[string]*Alarm
}

// New builds a clock from configuration strings.
func New(s Settings) (*Clock, error) {
	if s.Stop == "" && s.RunDuration == "" {
		return nil, fmt.Errorf("%w: neither stop time nor run duration given", sim.ErrConfig)
	}
	start, err := ParseTime(s.Start)
	if err != nil {
		return nil, fmt.Errorf("start time: %w", err)
	}
	dt, err := ParseDuration(s.TimeStep)
	if err != nil {
		return nil, fmt.Errorf("time step: %w", err)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("%w: time step %q must be positive", sim.ErrConfig, s.TimeStep)
	}

	var stop time.Time
	if s.Stop != "" {
		stop, err = ParseTime(s.Stop)
		if err != nil {
			return nil, fmt.Errorf("stop time: %w", err)
		}
	}
	if s.RunDuration != "" {
		d, err := ParseDuration(s.RunDuration)
		if err != nil {
			return nil, fmt.Errorf("run duration: %w", err)
		}
		byDuration := start.Add(d)
		if s.Stop != "" && !byDuration.Equal(stop) {
			logrus.Warnf("run duration %s and stop time %s disagree; using run duration (stop at %s)",
				s.RunDuration, s.Stop, Format(byDuration))
		}
		stop = byDuration
	}
	if stop.Before(start) {
		return nil, fmt.Errorf("%w: stop time %s precedes start time %s", sim.ErrConfig, Format(stop), Format(start))
	}

	return &Clock{
		start:  start,
		now:    start,
		stop:   stop,
		dt:     dt,
		alarms: make(map[string]*Alarm),
	}, nil
}

// AddAlarm registers an alarm that first rings at firstFire and then every period.
func (c *Clock) AddAlarm(id string, firstFire time.Time, period time.Duration) error {
	if period <= 0 {
		return fmt.Errorf("%w: alarm %q period must be positive", sim.ErrConfig, id)
	}
	if _, exists := c.alarms[id]; exists {
		return fmt.Errorf("%w: alarm %q already exists", sim.ErrConfig, id)
	}
	c.alarms[id] = &Alarm{ID: id, Period: period, NextFire: firstFire}
	return nil
}

// HasAlarm reports whether an alarm with the given id is registered.
func (c *Clock) HasAlarm(id string) bool {
	_, ok := c.alarms[id]
	return ok
}

// IsRinging reports whether the alarm has reached its next fire time.
// Unknown alarms never ring.
func (c *Clock) IsRinging(id string) bool {
	a, ok := c.alarms[id]
	return ok && a.ringing(c.now)
}

// Reset advances a ringing alarm's next fire time by exactly one period.
// It is a no-op for alarms that are not ringing.
func (c *Clock) Reset(id string) {
	a, ok := c.alarms[id]
	if !ok || !a.ringing(c.now) {
		return
	}
	a.NextFire = a.NextFire.Add(a.Period)
}

// NextFire returns the alarm's next fire time.
func (c *Clock) NextFire(id string) (time.Time, bool) {
	a, ok := c.alarms[id]
	if !ok {
		return time.Time{}, false
	}
	return a.NextFire, true
}

// Ringing returns the ids of all ringing alarms in sorted order.
func (c *Clock) Ringing() []string {
	ids := make([]string, 0, len(c.alarms))
	for id, a := range c.alarms {
		if a.ringing(c.now) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// IsStopTime reports whether one more step would carry the clock past the
// stop time.
func (c *Clock) IsStopTime() bool {
	return c.now.Add(c.dt).After(c.stop)
}

// Advance moves the clock forward by one time step. It is the only place
// simulated time moves.
func (c *Clock) Advance() error {
	if c.IsStopTime() {
		return fmt.Errorf("%w: now=%s dt=%s stop=%s", sim.ErrClockExhausted, Format(c.now), c.dt, Format(c.stop))
	}
	c.now = c.now.Add(c.dt)
	c.steps++
	return nil
}

func (c *Clock) Now() time.Time          { return c.now }
func (c *Clock) Start() time.Time        { return c.start }
func (c *Clock) Stop() time.Time         { return c.stop }
func (c *Clock) TimeStep() time.Duration { return c.dt }

// StepCount is the number of successful Advance calls.
func (c *Clock) StepCount() int { return c.steps }

// Elapsed is the simulated time since start.
func (c *Clock) Elapsed() time.Duration { return c.now.Sub(c.start) }
