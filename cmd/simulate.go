package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ocean-sim/ocean-sim/sim"
	"github.com/ocean-sim/ocean-sim/sim/block"
	"github.com/ocean-sim/ocean-sim/sim/comm"
	"github.com/ocean-sim/ocean-sim/sim/config"
	"github.com/ocean-sim/ocean-sim/sim/mesh"
	"github.com/ocean-sim/ocean-sim/sim/ocean"
	"github.com/ocean-sim/ocean-sim/sim/process"
	"github.com/ocean-sim/ocean-sim/sim/stream"
	"github.com/ocean-sim/ocean-sim/sim/trace"
)

// RunResult is what a finished run reports. Stats and Summary come from
// rank 0.
type RunResult struct {
	Code    sim.Code            `yaml:"code"`
	RunID   string              `yaml:"run_id"`
	Stats   map[string]float64  `yaml:"final_stats,omitempty"`
	Summary *trace.TraceSummary `yaml:"trace_summary,omitempty"`
}

// buildMeshes builds the channel mesh and splits it into one partition per
// block of every rank.
func buildMeshes(cfg *config.Config) ([]*mesh.Mesh, error) {
	global, err := mesh.NewPlanar(mesh.PlanarSpec{
		NX:             cfg.Mesh.NX,
		NY:             cfg.Mesh.NY,
		Dc:             cfg.Mesh.Dc,
		LayerThickness: cfg.Mesh.LayerThickness,
		ShelfDepth:     cfg.Mesh.ShelfDepth,
		BasinDepth:     cfg.Mesh.BasinDepth,
		DensityBump:    cfg.Mesh.DensityBump,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: mesh: %v", sim.ErrConfig, err)
	}
	parts, err := mesh.Decompose(global, cfg.Ranks*cfg.BlocksPerRank, cfg.HaloLayers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sim.ErrConfig, err)
	}
	return parts, nil
}

// Simulate runs cfg on cfg.Ranks in-process ranks. Rank r owns blocks
// r*BlocksPerRank through (r+1)*BlocksPerRank-1. The configuration is
// validated before any block is built.
func Simulate(ctx context.Context, cfg *config.Config, level trace.TraceLevel) (*RunResult, error) {
	if err := cfg.Validate(); err != nil {
		return &RunResult{Code: sim.CodeOf(err)}, err
	}
	meshes, err := buildMeshes(cfg)
	if err != nil {
		return &RunResult{Code: sim.CodeOf(err)}, err
	}
	group, err := comm.NewGroup(cfg.Ranks)
	if err != nil {
		return &RunResult{Code: sim.CodeOf(err)}, err
	}

	runID := uuid.New()
	res := &RunResult{RunID: runID.String()}
	var mu sync.Mutex
	err = group.Run(ctx, func(ctx context.Context, c comm.Communicator) error {
		blocks := make([]*block.Block, 0, cfg.BlocksPerRank)
		for i := 0; i < cfg.BlocksPerRank; i++ {
			id := c.Rank()*cfg.BlocksPerRank + i
			blocks = append(blocks, block.New(id, meshes[id]))
		}
		if !cfg.DoRestart {
			process.ColdStart(blocks, cfg)
		}
		process.SeedForcing(blocks, cfg)

		collab, err := ocean.NewCollaborators(cfg)
		if err != nil {
			return err
		}
		streams, err := stream.NewManager(cfg, c.Rank(), runID)
		if err != nil {
			return err
		}
		rt := trace.NewRunTrace(trace.TraceConfig{Level: level})
		d, err := ocean.NewDriver(cfg, blocks, ocean.Options{
			Comm:          c,
			Collaborators: collab,
			Streams:       streams,
			Marker:        stream.MarkerFile{Path: cfg.RestartTimestampPath},
			Trace:         rt,
		})
		if err != nil {
			return err
		}
		code, err := d.Run(ctx)

		mu.Lock()
		defer mu.Unlock()
		res.Code |= code
		if c.Rank() == 0 {
			if d.LastStats != nil {
				res.Stats = d.LastStats.Values()
			}
			res.Summary = trace.Summarize(rt)
		}
		return err
	})
	if err != nil {
		res.Code |= sim.CodeOf(err)
	}
	return res, err
}

// PrintResult writes res as YAML.
func PrintResult(w io.Writer, res *RunResult) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		return err
	}
	return enc.Close()
}
