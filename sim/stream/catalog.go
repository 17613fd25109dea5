// Package stream is the reference stream-management collaborator: it writes
// output frames and restart data as YAML, reads time-stamped forcing input,
// and keeps the restart marker file.
//
// Field lookup by name happens only here, through the catalog; the core
// addresses every array as a typed struct field.
package stream

import (
	"fmt"
	"sort"

	"github.com/ocean-sim/ocean-sim/sim"
	"github.com/ocean-sim/ocean-sim/sim/block"
)

// Location is where a field lives on the mesh.
type Location string

const (
	OnCells Location = "cells"
	OnEdges Location = "edges"
)

// Entry describes one named field. Get returns the live field of a block;
// scalar-per-entity arrays are returned with NLevels 1.
type Entry struct {
	Name     string
	Location Location
	Get      func(b *block.Block) block.Field
}

func scalar(v []float64) block.Field { return block.Field{NLevels: 1, Data: v} }

func current(b *block.Block) *block.TimeLevel { return b.State.Current() }

var catalog = map[string]Entry{}

func register(name string, loc Location, get func(b *block.Block) block.Field) {
	catalog[name] = Entry{Name: name, Location: loc, Get: get}
}

func init() {
	register("layer_thickness", OnCells, func(b *block.Block) block.Field { return current(b).LayerThickness })
	register("normal_velocity", OnEdges, func(b *block.Block) block.Field { return current(b).NormalVelocity })
	register("ssh", OnCells, func(b *block.Block) block.Field { return scalar(current(b).SSH) })
	register("normal_barotropic_velocity", OnEdges, func(b *block.Block) block.Field {
		return scalar(current(b).NormalBarotropicVelocity)
	})
	register("normal_baroclinic_velocity", OnEdges, func(b *block.Block) block.Field {
		return current(b).NormalBaroclinicVelocity
	})
	for i, name := range block.TracerNames {
		i := i // per-iteration copy; go.mod targets go 1.21 (pre-1.22 loop semantics)
		register(name, OnCells, func(b *block.Block) block.Field { return current(b).Tracers[i] })
	}

	register("density", OnCells, func(b *block.Block) block.Field { return b.Diag.Density })
	register("pressure", OnCells, func(b *block.Block) block.Field { return b.Diag.Pressure })
	register("montgomery_potential", OnCells, func(b *block.Block) block.Field { return b.Diag.MontgomeryPotential })
	register("zmid", OnCells, func(b *block.Block) block.Field { return b.Diag.ZMid })
	register("kinetic_energy_cell", OnCells, func(b *block.Block) block.Field { return b.Diag.KineticEnergyCell })
	register("vert_transport_velocity_top", OnCells, func(b *block.Block) block.Field {
		return b.Diag.VertTransportVelocityTop
	})
	register("layer_thickness_edge", OnEdges, func(b *block.Block) block.Field { return b.Diag.LayerThicknessEdge })
	register("transport_velocity", OnEdges, func(b *block.Block) block.Field { return b.Diag.TransportVelocity })
	register("bolus_velocity", OnEdges, func(b *block.Block) block.Field { return b.Diag.BolusVelocity })
	register("boundary_layer_depth", OnCells, func(b *block.Block) block.Field {
		return scalar(b.Diag.BoundaryLayerDepth)
	})
	register("velocity_x", OnCells, func(b *block.Block) block.Field { return b.Diag.VelocityX })
	register("velocity_y", OnCells, func(b *block.Block) block.Field { return b.Diag.VelocityY })
	register("velocity_z", OnCells, func(b *block.Block) block.Field { return b.Diag.VelocityZ })
	register("velocity_zonal", OnCells, func(b *block.Block) block.Field { return b.Diag.VelocityZonal })
	register("velocity_meridional", OnCells, func(b *block.Block) block.Field { return b.Diag.VelocityMeridional })

	register("surface_wind_stress", OnEdges, func(b *block.Block) block.Field {
		return scalar(b.Forcing.SurfaceWindStress)
	})
	register("transmission_coefficients", OnCells, func(b *block.Block) block.Field {
		return b.Forcing.TransmissionCoefficients
	})
}

// DefaultOutputFields are written when the configuration names none.
var DefaultOutputFields = []string{
	"layer_thickness", "normal_velocity", "temperature", "salinity", "ssh",
	"velocity_zonal", "velocity_meridional", "density",
}

// restartFields restore a run exactly; they are read back into the current
// time level before block initialization.
var restartFields = []string{
	"layer_thickness", "normal_velocity", "temperature", "salinity", "ssh",
	"normal_barotropic_velocity", "normal_baroclinic_velocity", "boundary_layer_depth",
}

// Lookup returns the catalog entry for name.
func Lookup(name string) (Entry, error) {
	e, ok := catalog[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: unknown field %q", sim.ErrConfig, name)
	}
	return e, nil
}

// FieldNames lists every catalog name in sorted order.
func FieldNames() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupAll(names []string) ([]Entry, error) {
	out := make([]Entry, 0, len(names))
	for _, name := range names {
		e, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
