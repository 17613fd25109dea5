package stream

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ocean-sim/ocean-sim/sim"
	"github.com/ocean-sim/ocean-sim/sim/block"
)

// Frame is one rank's contribution to an output or restart record. Values
// are listed per owned entity, keyed by global id, so the frames of every
// rank together describe the whole domain whatever the decomposition.
type Frame struct {
	RunID      string       `yaml:"run_id"`
	Kind       string       `yaml:"kind"`
	Time       string       `yaml:"time"`
	Step       int          `yaml:"step"`
	Rank       int          `yaml:"rank"`
	WindStress [2]float64   `yaml:"wind_stress,flow"`
	Fields     []FrameField `yaml:"fields"`
}

// FrameField holds one field over the owned entities of a rank. Values is
// entity-major: Levels values per id.
type FrameField struct {
	Name     string    `yaml:"name"`
	Location Location  `yaml:"location"`
	Levels   int       `yaml:"levels"`
	IDs      []int     `yaml:"ids,flow"`
	Values   []float64 `yaml:"values,flow"`
}

// collect gathers entries over the owned entities of blocks.
func collect(blocks []*block.Block, entries []Entry) []FrameField {
	out := make([]FrameField, 0, len(entries))
	for _, entry := range entries {
		ff := FrameField{Name: entry.Name, Location: entry.Location}
		for _, b := range blocks {
			f := entry.Get(b)
			ff.Levels = f.NLevels
			owned, ids := b.Mesh.OwnedCells, b.Mesh.CellID
			if entry.Location == OnEdges {
				owned, ids = b.Mesh.OwnedEdges, b.Mesh.EdgeID
			}
			for i := 0; i < owned; i++ {
				ff.IDs = append(ff.IDs, ids[i])
				ff.Values = append(ff.Values, f.Row(i)...)
			}
		}
		out = append(out, ff)
	}
	return out
}

// apply writes fields into every local entity (owned and halo) of blocks.
// Every local entity must be present in the frames.
func apply(blocks []*block.Block, frames []*Frame, entries []Entry) error {
	for _, entry := range entries {
		index := make(map[int][]float64)
		levels := -1
		for _, fr := range frames {
			for _, ff := range fr.Fields {
				if ff.Name != entry.Name {
					continue
				}
				if ff.Levels <= 0 || len(ff.Values) != len(ff.IDs)*ff.Levels {
					return fmt.Errorf("%w: field %s of rank %d has %d values for %d ids at %d levels",
						sim.ErrIO, ff.Name, fr.Rank, len(ff.Values), len(ff.IDs), ff.Levels)
				}
				levels = ff.Levels
				for i, id := range ff.IDs {
					index[id] = ff.Values[i*ff.Levels : (i+1)*ff.Levels]
				}
			}
		}
		for _, b := range blocks {
			f := entry.Get(b)
			if levels >= 0 && levels != f.NLevels {
				return fmt.Errorf("%w: field %s has %d levels, block %d expects %d",
					sim.ErrIO, entry.Name, levels, b.ID, f.NLevels)
			}
			n, ids := b.Mesh.NCells, b.Mesh.CellID
			if entry.Location == OnEdges {
				n, ids = b.Mesh.NEdges, b.Mesh.EdgeID
			}
			for i := 0; i < n; i++ {
				v, ok := index[ids[i]]
				if !ok {
					return fmt.Errorf("%w: field %s has no value for %s %d", sim.ErrIO, entry.Name, entry.Location, ids[i])
				}
				copy(f.Row(i), v)
			}
		}
	}
	return nil
}

func writeFrame(path string, fr *Frame) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fr); err != nil {
		return fmt.Errorf("%w: encoding %s: %v", sim.ErrIO, path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w: encoding %s: %v", sim.ErrIO, path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: %v", sim.ErrIO, err)
	}
	return nil
}

// ReadFrame decodes one frame file.
func ReadFrame(path string) (*Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sim.ErrIO, err)
	}
	var fr Frame
	if err := yaml.Unmarshal(data, &fr); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", sim.ErrIO, path, err)
	}
	return &fr, nil
}
