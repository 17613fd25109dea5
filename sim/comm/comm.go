// Package comm is the core's view of the distributed-communication layer:
// the collective reductions it issues and nothing else. Halo exchange is
// assumed correct and never called from here.
//
// Every reduction is deterministic. Max and Min are exact under any
// decomposition; Sum combines per-rank partials in rank order; SumOrdered
// gathers keyed contributions and accumulates them in key order, so its
// result does not depend on how entities were partitioned.
package comm

import (
	"context"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/ocean-sim/ocean-sim/sim"
)

// Keyed is one entity's contribution to an ordered sum, keyed by global id.
type Keyed struct {
	ID     int
	Values []float64
}

// Communicator performs synchronous collectives across all ranks. Every
// rank must issue the same sequence of calls with the same vector widths.
type Communicator interface {
	Rank() int
	Size() int
	// Max, Min and Sum reduce element-wise across ranks.
	Max(ctx context.Context, vals []float64) ([]float64, error)
	Min(ctx context.Context, vals []float64) ([]float64, error)
	Sum(ctx context.Context, vals []float64) ([]float64, error)
	// SumOrdered returns, for each of width components, the sum over all
	// ranks' items taken in ascending ID order.
	SumOrdered(ctx context.Context, width int, items []Keyed) ([]float64, error)
}

// MaxScalar reduces a single value with Max.
func MaxScalar(ctx context.Context, c Communicator, v float64) (float64, error) {
	out, err := c.Max(ctx, []float64{v})
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// reduce applies op element-wise over per-rank vectors listed in rank order.
func reduce(parts [][]float64, op func([]float64) float64) ([]float64, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: empty reduction", sim.ErrComm)
	}
	width := len(parts[0])
	column := make([]float64, len(parts))
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		for r, p := range parts {
			if len(p) != width {
				return nil, fmt.Errorf("%w: rank %d sent %d values, rank 0 sent %d", sim.ErrComm, r, len(p), width)
			}
			column[r] = p[i]
		}
		out[i] = op(column)
	}
	return out, nil
}

// sumOrdered accumulates gathered items in ID order.
func sumOrdered(width int, items []Keyed) ([]float64, error) {
	sorted := append([]Keyed(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	out := make([]float64, width)
	if len(sorted) == 0 {
		return out, nil
	}
	column := make([]float64, len(sorted))
	for i := 0; i < width; i++ {
		for j, it := range sorted {
			if len(it.Values) != width {
				return nil, fmt.Errorf("%w: item %d has %d values, want %d", sim.ErrComm, it.ID, len(it.Values), width)
			}
			column[j] = it.Values[i]
		}
		out[i] = floats.Sum(column)
	}
	return out, nil
}

// Serial is the single-rank communicator.
type Serial struct{}

func (Serial) Rank() int { return 0 }
func (Serial) Size() int { return 1 }

func (Serial) Max(_ context.Context, vals []float64) ([]float64, error) {
	return reduce([][]float64{vals}, floats.Max)
}

func (Serial) Min(_ context.Context, vals []float64) ([]float64, error) {
	return reduce([][]float64{vals}, floats.Min)
}

func (Serial) Sum(_ context.Context, vals []float64) ([]float64, error) {
	return reduce([][]float64{vals}, floats.Sum)
}

func (Serial) SumOrdered(_ context.Context, width int, items []Keyed) ([]float64, error) {
	return sumOrdered(width, items)
}
