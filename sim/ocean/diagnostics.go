package ocean

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ocean-sim/ocean-sim/sim/block"
	"github.com/ocean-sim/ocean-sim/sim/clock"
	"github.com/ocean-sim/ocean-sim/sim/comm"
	"github.com/ocean-sim/ocean-sim/sim/trace"
)

// GlobalStats are domain-wide statistics over owned, active entities.
type GlobalStats struct {
	Step int
	Time time.Time

	Area   float64 // surface area of ocean columns, m^2
	Volume float64 // m^3

	MinThickness, MaxThickness float64
	MinSSH, MaxSSH             float64

	TracerMean [block.NumTracers]float64 // volume-weighted
	TracerMin  [block.NumTracers]float64
	TracerMax  [block.NumTracers]float64

	// KineticEnergy is the volume integral of u^2/2 over edge volumes, m^5/s^2.
	KineticEnergy float64
	MaxSpeed      float64 // max |normal velocity|, m/s
	CFL           float64 // max |u| dt / dc
}

// Values flattens the statistics into named values for logs and trace records.
func (g *GlobalStats) Values() map[string]float64 {
	v := map[string]float64{
		"area":           g.Area,
		"volume":         g.Volume,
		"min_thickness":  g.MinThickness,
		"max_thickness":  g.MaxThickness,
		"min_ssh":        g.MinSSH,
		"max_ssh":        g.MaxSSH,
		"kinetic_energy": g.KineticEnergy,
		"max_speed":      g.MaxSpeed,
		"cfl":            g.CFL,
	}
	for i, name := range block.TracerNames {
		v["mean_"+name] = g.TracerMean[i]
		v["min_"+name] = g.TracerMin[i]
		v["max_"+name] = g.TracerMax[i]
	}
	return v
}

// Reduction vector layouts.
const (
	cellArea = iota
	cellVolume
	cellTracer // first of NumTracers tracer*volume integrals
	cellWidth  = cellTracer + block.NumTracers
)

const (
	extThickness = iota
	extSSH
	extTracer // first of NumTracers
	extSpeed  = extTracer + block.NumTracers
	extCFL    = extSpeed + 1
	extWidth  = extCFL + 1
)

// MaybeRunDiagnostics computes global statistics when the stats alarm is
// ringing, resetting it first. It returns nil stats when the alarm is silent.
// Every rank must call it at the same step.
func MaybeRunDiagnostics(ctx context.Context, clk *clock.Clock, blocks []*block.Block,
	c comm.Communicator, rt *trace.RunTrace) (*GlobalStats, error) {
	if !clk.IsRinging(clock.AlarmStats) {
		return nil, nil
	}
	clk.Reset(clock.AlarmStats)
	return RunGlobalDiagnostics(ctx, blocks, clk.StepCount(), clk.Now(), clk.TimeStep(), c, rt)
}

// RunGlobalDiagnostics reduces statistics of the current time level over
// every rank. Sums are taken in global-id order so the result is identical
// for any decomposition of the same field. The report is logged on rank 0
// and recorded in rt.
func RunGlobalDiagnostics(ctx context.Context, blocks []*block.Block, step int, now time.Time,
	dt time.Duration, c comm.Communicator, rt *trace.RunTrace) (*GlobalStats, error) {
	defer rt.Start("global diagnostics")()

	var cells, edges []comm.Keyed
	mins := make([]float64, extWidth)
	maxs := make([]float64, extWidth)
	for i := range mins {
		mins[i] = math.Inf(1)
		maxs[i] = math.Inf(-1)
	}
	for _, blk := range blocks {
		cells = append(cells, cellContributions(blk, mins, maxs)...)
		edges = append(edges, edgeContributions(blk, dt, maxs)...)
	}

	cellSums, err := c.SumOrdered(ctx, cellWidth, cells)
	if err != nil {
		return nil, fmt.Errorf("global cell sums: %w", err)
	}
	edgeSums, err := c.SumOrdered(ctx, 1, edges)
	if err != nil {
		return nil, fmt.Errorf("global edge sums: %w", err)
	}
	gmin, err := c.Min(ctx, mins)
	if err != nil {
		return nil, fmt.Errorf("global minima: %w", err)
	}
	gmax, err := c.Max(ctx, maxs)
	if err != nil {
		return nil, fmt.Errorf("global maxima: %w", err)
	}

	g := &GlobalStats{
		Step:          step,
		Time:          now,
		Area:          cellSums[cellArea],
		Volume:        cellSums[cellVolume],
		MinThickness:  gmin[extThickness],
		MaxThickness:  gmax[extThickness],
		MinSSH:        gmin[extSSH],
		MaxSSH:        gmax[extSSH],
		KineticEnergy: edgeSums[0],
		MaxSpeed:      gmax[extSpeed],
		CFL:           gmax[extCFL],
	}
	for i := 0; i < block.NumTracers; i++ {
		if g.Volume > 0 {
			g.TracerMean[i] = cellSums[cellTracer+i] / g.Volume
		}
		g.TracerMin[i] = gmin[extTracer+i]
		g.TracerMax[i] = gmax[extTracer+i]
	}

	rt.RecordStats(trace.StatsRecord{Step: step, SimTime: clock.Format(now), Values: g.Values()})
	if c.Rank() == 0 {
		logrus.WithFields(logrus.Fields{
			"step":   step,
			"volume": g.Volume,
			"ke":     g.KineticEnergy,
			"cfl":    g.CFL,
		}).Infof("Global stats at %s: T [%.4g, %.4g] mean %.6g, S mean %.6g, SSH [%.4g, %.4g], max |u| %.4g",
			clock.Format(now), g.TracerMin[block.Temperature], g.TracerMax[block.Temperature],
			g.TracerMean[block.Temperature], g.TracerMean[block.Salinity], g.MinSSH, g.MaxSSH, g.MaxSpeed)
	}
	return g, nil
}

// cellContributions returns one keyed row per owned ocean column and folds
// column extremes into mins and maxs.
func cellContributions(blk *block.Block, mins, maxs []float64) []comm.Keyed {
	m := blk.Mesh
	tl := blk.State.Current()
	out := make([]comm.Keyed, 0, m.OwnedCells)
	for c := 0; c < m.OwnedCells; c++ {
		nk := m.MaxLevelCell[c]
		if nk == 0 {
			continue
		}
		row := make([]float64, cellWidth)
		row[cellArea] = m.AreaCell[c]
		for k := 0; k < nk; k++ {
			h := tl.LayerThickness.At(c, k)
			vol := h * m.AreaCell[c]
			row[cellVolume] += vol
			mins[extThickness] = math.Min(mins[extThickness], h)
			maxs[extThickness] = math.Max(maxs[extThickness], h)
			for i := 0; i < block.NumTracers; i++ {
				v := tl.Tracers[i].At(c, k)
				row[cellTracer+i] += v * vol
				mins[extTracer+i] = math.Min(mins[extTracer+i], v)
				maxs[extTracer+i] = math.Max(maxs[extTracer+i], v)
			}
		}
		mins[extSSH] = math.Min(mins[extSSH], tl.SSH[c])
		maxs[extSSH] = math.Max(maxs[extSSH], tl.SSH[c])
		out = append(out, comm.Keyed{ID: m.CellID[c], Values: row})
	}
	return out
}

// edgeContributions returns the kinetic energy of each owned wet edge and
// folds speed and CFL maxima into maxs. The edge volume is dc*dv/2 times the
// edge thickness (the two half-diamonds on either side).
func edgeContributions(blk *block.Block, dt time.Duration, maxs []float64) []comm.Keyed {
	m := blk.Mesh
	tl := blk.State.Current()
	out := make([]comm.Keyed, 0, m.OwnedEdges)
	for e := 0; e < m.OwnedEdges; e++ {
		nk := m.MaxLevelEdgeTop[e]
		if nk == 0 {
			continue
		}
		c1, c2 := m.CellsOnEdge[e][0], m.CellsOnEdge[e][1]
		area := 0.5 * m.DcEdge[e] * m.DvEdge[e]
		var ke float64
		for k := 0; k < nk; k++ {
			u := tl.NormalVelocity.At(e, k)
			h := 0.5 * (tl.LayerThickness.At(c1, k) + tl.LayerThickness.At(c2, k))
			ke += 0.5 * u * u * h * area
			speed := math.Abs(u)
			maxs[extSpeed] = math.Max(maxs[extSpeed], speed)
			if m.DcEdge[e] > 0 {
				maxs[extCFL] = math.Max(maxs[extCFL], speed*dt.Seconds()/m.DcEdge[e])
			}
		}
		out = append(out, comm.Keyed{ID: m.EdgeID[e], Values: []float64{ke}})
	}
	return out
}
