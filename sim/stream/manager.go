package stream

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ocean-sim/ocean-sim/sim"
	"github.com/ocean-sim/ocean-sim/sim/block"
	"github.com/ocean-sim/ocean-sim/sim/clock"
	"github.com/ocean-sim/ocean-sim/sim/config"
)

// Frame kinds.
const (
	KindOutput  = "output"
	KindRestart = "restart"
)

// Manager writes one rank's output and restart frames under a directory and
// applies forcing input records.
type Manager struct {
	dir     string
	rank    int
	runID   string
	output  []Entry
	restart []Entry
	input   *Input
}

// NewManager resolves the configured output fields. runID tags every frame
// written by the run; uuid.Nil asks for a fresh one.
func NewManager(cfg *config.Config, rank int, runID uuid.UUID) (*Manager, error) {
	names := cfg.OutputFields
	if len(names) == 0 {
		names = DefaultOutputFields
	}
	output, err := lookupAll(names)
	if err != nil {
		return nil, fmt.Errorf("output_fields: %w", err)
	}
	restart, err := lookupAll(restartFields)
	if err != nil {
		return nil, err
	}
	if runID == uuid.Nil {
		runID = uuid.New()
	}
	m := &Manager{
		dir:     cfg.OutputDir,
		rank:    rank,
		runID:   runID.String(),
		output:  output,
		restart: restart,
	}
	if cfg.InputPath != "" {
		in, err := LoadInput(cfg.InputPath)
		if err != nil {
			return nil, err
		}
		m.input = in
	}
	return m, nil
}

// RunID returns the id stamped into every frame.
func (m *Manager) RunID() string { return m.runID }

// FileName is the frame file of a kind, time and rank.
func FileName(kind string, t time.Time, rank int) string {
	stamp := strings.ReplaceAll(clock.Format(t), ":", ".")
	return fmt.Sprintf("%s.%s.rank%d.yaml", kind, stamp, rank)
}

func (m *Manager) write(kind string, clk *clock.Clock, blocks []*block.Block, entries []Entry) error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", sim.ErrIO, err)
	}
	fr := &Frame{
		RunID:  m.runID,
		Kind:   kind,
		Time:   clock.Format(clk.Now()),
		Step:   clk.StepCount(),
		Rank:   m.rank,
		Fields: collect(blocks, entries),
	}
	if len(blocks) > 0 {
		fr.WindStress = [2]float64{blocks[0].Forcing.WindStressX, blocks[0].Forcing.WindStressY}
	}
	path := filepath.Join(m.dir, FileName(kind, clk.Now(), m.rank))
	if err := writeFrame(path, fr); err != nil {
		return err
	}
	logrus.Debugf("Rank %d wrote %s", m.rank, path)
	return nil
}

func (m *Manager) WriteOutput(_ context.Context, clk *clock.Clock, blocks []*block.Block) error {
	return m.write(KindOutput, clk, blocks, m.output)
}

func (m *Manager) WriteRestart(_ context.Context, clk *clock.Clock, blocks []*block.Block) error {
	return m.write(KindRestart, clk, blocks, m.restart)
}

// ReadRestart loads the restart frames of every rank written at time at
// and restores the current time level of blocks, halos included. The
// writing run may have used a different decomposition.
func (m *Manager) ReadRestart(_ context.Context, at time.Time, blocks []*block.Block) error {
	pattern := filepath.Join(m.dir, strings.Replace(FileName(KindRestart, at, 0), "rank0", "rank*", 1))
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("%w: %v", sim.ErrIO, err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w: no restart data matching %s", sim.ErrIO, pattern)
	}
	sort.Strings(paths)
	frames := make([]*Frame, 0, len(paths))
	for _, p := range paths {
		fr, err := ReadFrame(p)
		if err != nil {
			return err
		}
		if fr.Kind != KindRestart {
			return fmt.Errorf("%w: %s holds a %q frame", sim.ErrIO, p, fr.Kind)
		}
		frames = append(frames, fr)
	}
	if err := apply(blocks, frames, m.restart); err != nil {
		return err
	}
	for _, b := range blocks {
		b.Forcing.WindStressX, b.Forcing.WindStressY = frames[0].WindStress[0], frames[0].WindStress[1]
	}
	logrus.Infof("Rank %d restored %d block(s) from %d restart file(s) at %s",
		m.rank, len(blocks), len(paths), clock.Format(at))
	return nil
}

// ReadInput applies the latest input record at or before the current time.
func (m *Manager) ReadInput(_ context.Context, clk *clock.Clock, blocks []*block.Block) error {
	if m.input == nil {
		return nil
	}
	rec, ok := m.input.At(clk.Now())
	if !ok {
		return nil
	}
	for _, b := range blocks {
		b.Forcing.WindStressX = rec.WindStressX
		b.Forcing.WindStressY = rec.WindStressY
	}
	logrus.Debugf("Rank %d applied input record %s", m.rank, rec.Time)
	return nil
}
