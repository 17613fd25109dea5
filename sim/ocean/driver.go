package ocean

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ocean-sim/ocean-sim/sim"
	"github.com/ocean-sim/ocean-sim/sim/block"
	"github.com/ocean-sim/ocean-sim/sim/clock"
	"github.com/ocean-sim/ocean-sim/sim/comm"
	"github.com/ocean-sim/ocean-sim/sim/config"
	"github.com/ocean-sim/ocean-sim/sim/trace"
)

// Phase is the driver's position in the step cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseReadingInput
	PhaseStepping
	PhaseWritingOutput
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseReadingInput:
		return "ReadingInput"
	case PhaseStepping:
		return "Stepping"
	case PhaseWritingOutput:
		return "WritingOutput"
	case PhaseStopped:
		return "Stopped"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// RestartMarker persists the time of the last restart write so a later run
// can resume from it.
type RestartMarker interface {
	Write(t time.Time) error
	Read() (time.Time, error)
}

// Options are the driver's collaborators. Comm defaults to a single serial
// rank and Streams to NopStreams. Marker is required when restarting or
// when the restart alarm is enabled.
type Options struct {
	Comm          comm.Communicator
	Collaborators Collaborators
	Streams       Streams
	Marker        RestartMarker
	Trace         *trace.RunTrace
}

// Driver runs one rank's blocks from start-up to the stop time.
type Driver struct {
	cfg     *config.Config
	blocks  []*block.Block
	comm    comm.Communicator
	collab  Collaborators
	streams Streams
	marker  RestartMarker
	trace   *trace.RunTrace

	clock   *clock.Clock
	phase   Phase
	code    sim.Code
	started bool

	// LastStats is the most recent global statistics report.
	LastStats *GlobalStats
}

// NewDriver validates cfg and the collaborators. It touches no block.
func NewDriver(cfg *config.Config, blocks []*block.Block, opts Options) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := opts.Collaborators.validate(); err != nil {
		return nil, err
	}
	if cfg.DoRestart && opts.Marker == nil {
		return nil, fmt.Errorf("%w: do_restart needs a restart marker", sim.ErrConfig)
	}
	if cfg.WritesRestarts() && opts.Marker == nil {
		return nil, fmt.Errorf("%w: restart_interval %s needs a restart marker", sim.ErrConfig, cfg.RestartInterval)
	}
	d := &Driver{
		cfg:     cfg,
		blocks:  blocks,
		comm:    opts.Comm,
		collab:  opts.Collaborators,
		streams: opts.Streams,
		marker:  opts.Marker,
		trace:   opts.Trace,
	}
	if d.comm == nil {
		d.comm = comm.Serial{}
	}
	if d.streams == nil {
		d.streams = NopStreams{}
	}
	return d, nil
}

func (d *Driver) Phase() Phase           { return d.phase }
func (d *Driver) Code() sim.Code         { return d.code }
func (d *Driver) Clock() *clock.Clock    { return d.clock }
func (d *Driver) Blocks() []*block.Block { return d.blocks }
func (d *Driver) Trace() *trace.RunTrace { return d.trace }

// Startup builds the clock and its alarms, restores or initializes every
// block, and performs the configured start-up output and statistics.
func (d *Driver) Startup(ctx context.Context) error {
	defer d.trace.Start("startup")()
	cfg := d.cfg

	var start string
	if cfg.DoRestart {
		t, err := d.marker.Read()
		if err != nil {
			return fmt.Errorf("reading restart marker: %w", err)
		}
		start = clock.Format(t)
		logrus.Infof("Restarting from %s", start)
	}
	clk, err := clock.New(cfg.ClockSettings(start))
	if err != nil {
		return err
	}
	d.clock = clk
	if err := d.addAlarms(); err != nil {
		return err
	}

	if cfg.DoRestart {
		stop := d.trace.Start("read restart")
		err := d.streams.ReadRestart(ctx, clk.Start(), d.blocks)
		stop()
		if err != nil {
			return err
		}
	}
	for _, blk := range d.blocks {
		blk.State.Current().SimTime = clk.Now()
	}

	stop := d.trace.Start("initialize blocks")
	env := &InitEnv{Config: cfg, Comm: d.comm, Collaborators: d.collab}
	err = InitializeBlocks(ctx, d.blocks, clk.TimeStep(), env)
	stop()
	if err != nil {
		return err
	}
	if !cfg.DoRestart {
		for _, blk := range d.blocks {
			SplitInitialVelocity(blk, cfg)
		}
	}

	if cfg.WriteOutputOnStartup {
		if err := d.writeOutput(ctx); err != nil {
			return err
		}
	}
	if cfg.InitialStats {
		stats, err := RunGlobalDiagnostics(ctx, d.blocks, clk.StepCount(), clk.Now(), clk.TimeStep(), d.comm, d.trace)
		if err != nil {
			return err
		}
		d.LastStats = stats
	}
	d.started = true
	d.phase = PhaseIdle
	if d.comm.Rank() == 0 {
		logrus.Infof("Start-up complete: %d block(s) on rank 0 of %d, running %s to %s with dt=%s",
			len(d.blocks), d.comm.Size(), clock.Format(clk.Start()), clock.Format(clk.Stop()), clk.TimeStep())
	}
	return nil
}

// addAlarms registers the configured alarms. Input fires at the start time;
// every other alarm first fires one period in.
func (d *Driver) addAlarms() error {
	start := d.clock.Start()
	for _, a := range []struct {
		id       string
		interval string
		atStart  bool
	}{
		{clock.AlarmStats, d.cfg.StatsInterval, false},
		{clock.AlarmInput, d.cfg.InputInterval, true},
		{clock.AlarmOutput, d.cfg.OutputInterval, false},
		{clock.AlarmRestart, d.cfg.RestartInterval, false},
	} {
		period, ok, err := clock.ParsePeriod(a.interval)
		if err != nil {
			return fmt.Errorf("%s alarm: %w", a.id, err)
		}
		if !ok {
			continue
		}
		first := start.Add(period)
		if a.atStart {
			first = start
		}
		if err := d.clock.AddAlarm(a.id, first, period); err != nil {
			return err
		}
	}
	return nil
}

// Run starts the driver if needed and steps until the stop time. The
// returned code OR-combines the codes of every error raised; a non-zero code
// always comes with a non-nil error.
func (d *Driver) Run(ctx context.Context) (sim.Code, error) {
	if !d.started {
		if err := d.Startup(ctx); err != nil {
			return d.fail(err)
		}
	}
	for !d.clock.IsStopTime() {
		if err := ctx.Err(); err != nil {
			return d.fail(fmt.Errorf("run cancelled at step %d: %w", d.clock.StepCount(), err))
		}
		if err := d.step(ctx); err != nil {
			return d.fail(err)
		}
	}
	d.phase = PhaseStopped
	if d.comm.Rank() == 0 {
		logrus.Infof("Reached stop time %s after %d steps", clock.Format(d.clock.Now()), d.clock.StepCount())
	}
	return d.code, nil
}

func (d *Driver) fail(err error) (sim.Code, error) {
	d.code |= sim.CodeOf(err)
	d.phase = PhaseStopped
	logrus.Errorf("Rank %d stopped: %v", d.comm.Rank(), err)
	return d.code, err
}

func (d *Driver) step(ctx context.Context) error {
	begin := time.Now()
	defer d.trace.Start("time integration")()
	clk := d.clock
	rang := clk.Ringing()

	d.phase = PhaseReadingInput
	if clk.IsRinging(clock.AlarmInput) {
		stop := d.trace.Start("read input")
		err := d.streams.ReadInput(ctx, clk, d.blocks)
		stop()
		if err != nil {
			return err
		}
		clk.Reset(clock.AlarmInput)
	}

	d.phase = PhaseStepping
	if err := clk.Advance(); err != nil {
		return fmt.Errorf("step loop entered at stop time: %w", err)
	}
	now := clk.Now()
	for _, id := range clk.Ringing() {
		if !slices.Contains(rang, id) {
			rang = append(rang, id)
		}
	}

	stop := d.trace.Start("build forcing")
	var errs []error
	for _, blk := range d.blocks {
		if err := d.collab.Forcing.Build(blk, now); err != nil {
			errs = append(errs, fmt.Errorf("block %d: %w", blk.ID, err))
		}
	}
	stop()
	if err := errors.Join(errs...); err != nil {
		return err
	}

	stop = d.trace.Start("integrate")
	err := d.collab.Integrator.Step(ctx, d.blocks, clk.TimeStep(), now)
	stop()
	if err != nil {
		return err
	}
	for _, blk := range d.blocks {
		blk.State.Next().SimTime = now
	}
	block.Rotate(d.blocks)

	d.phase = PhaseWritingOutput
	stats, err := MaybeRunDiagnostics(ctx, clk, d.blocks, d.comm, d.trace)
	if err != nil {
		return err
	}
	if stats != nil {
		d.LastStats = stats
	}
	if clk.IsRinging(clock.AlarmOutput) {
		if err := d.writeOutput(ctx); err != nil {
			return err
		}
		clk.Reset(clock.AlarmOutput)
	}
	if clk.IsRinging(clock.AlarmRestart) {
		if err := d.writeRestart(ctx); err != nil {
			return err
		}
		clk.Reset(clock.AlarmRestart)
	}

	d.trace.RecordStep(trace.StepRecord{
		Step:    clk.StepCount(),
		SimTime: clock.Format(now),
		Alarms:  rang,
		Wall:    time.Since(begin),
	})
	d.phase = PhaseIdle
	return nil
}

func (d *Driver) writeOutput(ctx context.Context) error {
	defer d.trace.Start("write output")()
	return d.streams.WriteOutput(ctx, d.clock, d.blocks)
}

// writeRestart persists the marker before the restart data, so a marker
// never names a restart that was not begun.
func (d *Driver) writeRestart(ctx context.Context) error {
	defer d.trace.Start("write restart")()
	if d.comm.Rank() == 0 {
		if err := d.marker.Write(d.clock.Now()); err != nil {
			return err
		}
	}
	return d.streams.WriteRestart(ctx, d.clock, d.blocks)
}
