// Package testutil provides shared test fixtures for the ocean core: a
// small channel configuration, decomposed blocks, and float assertions.
// It is imported by the test packages of sim/ocean, sim/process,
// sim/stream and cmd.
package testutil

import (
	"math"
	"testing"

	"github.com/ocean-sim/ocean-sim/sim/block"
	"github.com/ocean-sim/ocean-sim/sim/config"
	"github.com/ocean-sim/ocean-sim/sim/mesh"
)

// SmallConfig is a one-hour run on an 8x6 channel with three layers; the
// rows along the walls have two active levels. Output goes to dir.
func SmallConfig(dir string) *config.Config {
	cfg := config.Default()
	cfg.RunDuration = "01:00:00"
	cfg.TimeStep = "00:10:00"
	cfg.StatsInterval = "00:30:00"
	cfg.OutputInterval = "none"
	cfg.RestartInterval = "none"
	cfg.OutputDir = dir
	cfg.Mesh = config.MeshConfig{
		NX: 8, NY: 6, Dc: 10000,
		LayerThickness: []float64{20, 40, 80},
		ShelfDepth:     10, BasinDepth: 200,
		DensityBump: 1,
	}
	cfg.InitialState.Perturbation = 0.1
	return cfg
}

// Meshes builds the channel mesh of cfg split into n partitions.
func Meshes(t *testing.T, cfg *config.Config, n int) []*mesh.Mesh {
	t.Helper()
	global, err := mesh.NewPlanar(mesh.PlanarSpec{
		NX: cfg.Mesh.NX, NY: cfg.Mesh.NY, Dc: cfg.Mesh.Dc,
		LayerThickness: cfg.Mesh.LayerThickness,
		ShelfDepth:     cfg.Mesh.ShelfDepth, BasinDepth: cfg.Mesh.BasinDepth,
		DensityBump: cfg.Mesh.DensityBump,
	})
	if err != nil {
		t.Fatalf("NewPlanar: %v", err)
	}
	parts, err := mesh.Decompose(global, n, cfg.HaloLayers)
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	return parts
}

// Blocks allocates one zeroed block per partition of the channel.
func Blocks(t *testing.T, cfg *config.Config, n int) []*block.Block {
	t.Helper()
	parts := Meshes(t, cfg, n)
	blocks := make([]*block.Block, len(parts))
	for i, m := range parts {
		blocks[i] = block.New(i, m)
	}
	return blocks
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
