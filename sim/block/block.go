// Package block defines the unit of data-parallel decomposition: one
// partition of the mesh together with the state, forcing, diagnostic and
// scratch buffers the owning rank integrates.
//
// Every buffer is a typed field. Lookup by name happens only at the stream
// boundary (see sim/stream).
package block

import (
	"github.com/sirupsen/logrus"

	"github.com/ocean-sim/ocean-sim/sim/mesh"
)

// Sentinel marks levels below a column's deepest active level. It is finite
// but large enough that any accidental use in an average is obvious.
const Sentinel = -1e34

// IsSentinel reports whether v carries the inactive-level marker.
func IsSentinel(v float64) bool { return v <= Sentinel/2 }

// Diagnostics are derived from State every step and never rotated.
type Diagnostics struct {
	Density                  Field // cells
	Pressure                 Field // cells, at layer mid-depth
	MontgomeryPotential      Field // cells
	ZMid                     Field // cells
	KineticEnergyCell        Field // cells
	VertTransportVelocityTop Field // cells, NLevels+1 interfaces
	LayerThicknessEdge       Field // edges
	TransportVelocity        Field // edges, normal + Bolus velocity
	BolusVelocity            Field // edges
	BoundaryLayerDepth       []float64

	VelocityX          Field // cells, reconstructed
	VelocityY          Field
	VelocityZ          Field
	VelocityZonal      Field
	VelocityMeridional Field
}

func newDiagnostics(nCells, nEdges, nLevels int) *Diagnostics {
	return &Diagnostics{
		Density:                  NewField(nCells, nLevels),
		Pressure:                 NewField(nCells, nLevels),
		MontgomeryPotential:      NewField(nCells, nLevels),
		ZMid:                     NewField(nCells, nLevels),
		KineticEnergyCell:        NewField(nCells, nLevels),
		VertTransportVelocityTop: NewField(nCells, nLevels+1),
		LayerThicknessEdge:       NewField(nEdges, nLevels),
		TransportVelocity:        NewField(nEdges, nLevels),
		BolusVelocity:            NewField(nEdges, nLevels),
		BoundaryLayerDepth:       make([]float64, nCells),
		VelocityX:                NewField(nCells, nLevels),
		VelocityY:                NewField(nCells, nLevels),
		VelocityZ:                NewField(nCells, nLevels),
		VelocityZonal:            NewField(nCells, nLevels),
		VelocityMeridional:       NewField(nCells, nLevels),
	}
}

// Forcing holds the surface forcing built before every step.
type Forcing struct {
	// Uniform wind stress components (N/m^2); seeded from configuration and
	// updated by the input stream.
	WindStressX, WindStressY float64

	SurfaceWindStress        []float64 // edges, along the edge normal
	SurfaceTracerFlux        [NumTracers][]float64
	TransmissionCoefficients Field // cells, NLevels+1 interfaces
}

func newForcing(nCells, nEdges, nLevels int) *Forcing {
	f := &Forcing{
		SurfaceWindStress:        make([]float64, nEdges),
		TransmissionCoefficients: NewField(nCells, nLevels+1),
	}
	for i := range f.SurfaceTracerFlux {
		f.SurfaceTracerFlux[i] = make([]float64, nCells)
	}
	return f
}

// Operators are mesh-derived operators built once during block initialization.
type Operators struct {
	AdvOrder int
	// Per edge: stencil cells and the weights aligned with them.
	AdvCells    [][]int
	AdvCoefs    [][]float64
	AdvCoefs3rd [][]float64
	Deriv2      [][2][]float64 // second derivative at each adjoining cell along the edge normal
	// HighOrderMask is 1 where every stencil cell is active at that level.
	HighOrderMask Field

	MeshScalingDel2 []float64 // edges
	MeshScalingDel4 []float64 // edges

	// ReconstructCoeffs maps each edge of a cell to its (x, y) weight.
	ReconstructCoeffs [][][2]float64
	ReconstructValid  []bool
}

// Scratch is reusable per-block work space.
type Scratch struct {
	EdgeSum    []float64
	EdgeWeight []float64
	Cell       []float64
}

// Block is one local partition.
type Block struct {
	ID      int
	Mesh    *mesh.Mesh
	State   *State
	Diag    *Diagnostics
	Forcing *Forcing
	Ops     *Operators
	Scratch *Scratch
}

// New allocates every buffer of a block over m.
func New(id int, m *mesh.Mesh) *Block {
	nc, ne, nk := m.NCells, m.NEdges, m.NVertLevels
	return &Block{
		ID:      id,
		Mesh:    m,
		State:   NewState(nc, ne, nk),
		Diag:    newDiagnostics(nc, ne, nk),
		Forcing: newForcing(nc, ne, nk),
		Ops:     &Operators{},
		Scratch: &Scratch{
			EdgeSum:    make([]float64, ne),
			EdgeWeight: make([]float64, ne),
			Cell:       make([]float64, nc),
		},
	}
}

// Log returns a logger tagged with the block id.
func (b *Block) Log() *logrus.Entry {
	return logrus.WithField("block", b.ID)
}

// FillInactive writes Sentinel into every level below a column's deepest
// active level: thickness and tracers per cell, velocities and edge
// thickness per edge.
func (b *Block) FillInactive(tl *TimeLevel) {
	m := b.Mesh
	for c := 0; c < m.NCells; c++ {
		for k := m.MaxLevelCell[c]; k < m.NVertLevels; k++ {
			tl.LayerThickness.Set(c, k, Sentinel)
			for i := range tl.Tracers {
				tl.Tracers[i].Set(c, k, Sentinel)
			}
		}
	}
	for e := 0; e < m.NEdges; e++ {
		for k := m.MaxLevelEdgeTop[e]; k < m.NVertLevels; k++ {
			tl.NormalVelocity.Set(e, k, Sentinel)
			tl.NormalBaroclinicVelocity.Set(e, k, Sentinel)
			b.Diag.LayerThicknessEdge.Set(e, k, Sentinel)
		}
	}
}

// Rotate advances every block by one time level. All blocks are rotated
// before any of them is read again.
func Rotate(blocks []*Block) {
	for _, b := range blocks {
		b.State.Rotate()
	}
}
