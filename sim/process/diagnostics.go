package process

import (
	"fmt"

	"github.com/ocean-sim/ocean-sim/sim/block"
	"github.com/ocean-sim/ocean-sim/sim/config"
)

// Gravity is the gravitational acceleration, m/s^2.
const Gravity = 9.80616

// DiagnosticSolver derives edge thickness, kinetic energy, mid-layer depth,
// density from a linear equation of state, hydrostatic pressure, Montgomery
// potential and vertical transport through layer tops.
type DiagnosticSolver struct {
	eos                config.EOSConfig
	vertMovement       string
	montgomeryPressure bool
}

func NewDiagnosticSolver(cfg *config.Config) *DiagnosticSolver {
	return &DiagnosticSolver{
		eos:                cfg.EOS,
		vertMovement:       cfg.VertCoordMovement,
		montgomeryPressure: cfg.PressureGradientType == config.PGMontgomeryPotential,
	}
}

// Density evaluates the linear equation of state.
func (s *DiagnosticSolver) Density(t, sal float64) float64 {
	return s.eos.Rho0 - s.eos.Alpha*(t-s.eos.T0) + s.eos.Beta*(sal-s.eos.S0)
}

// Solve recomputes every diagnostic of blk from tl. Levels below a column
// are left untouched.
func (s *DiagnosticSolver) Solve(blk *block.Block, tl *block.TimeLevel) error {
	m := blk.Mesh
	d := blk.Diag
	for c := 0; c < m.NCells; c++ {
		for k := 0; k < m.MaxLevelCell[c]; k++ {
			if h := tl.LayerThickness.At(c, k); h < 0 || block.IsSentinel(h) {
				return fmt.Errorf("cell %d level %d has thickness %v", m.CellID[c], k, h)
			}
		}
	}

	h, u := tl.LayerThickness, tl.NormalVelocity
	for e := 0; e < m.NEdges; e++ {
		c1, c2 := m.CellsOnEdge[e][0], m.CellsOnEdge[e][1]
		for k := 0; k < m.MaxLevelEdgeTop[e]; k++ {
			d.LayerThicknessEdge.Set(e, k, 0.5*(h.At(c1, k)+h.At(c2, k)))
		}
	}

	s.kineticEnergy(blk, u)
	s.columns(blk, tl)
	s.vertTransport(blk, tl)
	return nil
}

// kineticEnergy averages u^2/2 over the edges of each cell, weighted by the
// half-diamond area dc*dv/4.
func (s *DiagnosticSolver) kineticEnergy(blk *block.Block, u block.Field) {
	m := blk.Mesh
	ke := blk.Diag.KineticEnergyCell
	for c := 0; c < m.NCells; c++ {
		for k := 0; k < m.MaxLevelCell[c]; k++ {
			var sum float64
			for j := 0; j < m.NEdgesOnCell[c]; j++ {
				e := m.EdgesOnCell[c][j]
				if e < 0 || k >= m.MaxLevelEdgeTop[e] {
					continue
				}
				v := u.At(e, k)
				sum += 0.25 * m.DcEdge[e] * m.DvEdge[e] * v * v
			}
			ke.Set(c, k, 0.5*sum/m.AreaCell[c])
		}
	}
}

// columns integrates each column downward from the sea surface: mid-layer
// depth, density, hydrostatic pressure at mid-layer and Montgomery potential.
func (s *DiagnosticSolver) columns(blk *block.Block, tl *block.TimeLevel) {
	m := blk.Mesh
	d := blk.Diag
	h := tl.LayerThickness
	temp, sal := tl.Tracers[block.Temperature], tl.Tracers[block.Salinity]
	for c := 0; c < m.NCells; c++ {
		nk := m.MaxLevelCell[c]
		zTop := tl.SSH[c]
		var pTop float64
		for k := 0; k < nk; k++ {
			hk := h.At(c, k)
			rho := s.Density(temp.At(c, k), sal.At(c, k))
			d.Density.Set(c, k, rho)
			d.ZMid.Set(c, k, zTop-0.5*hk)
			d.Pressure.Set(c, k, pTop+0.5*Gravity*rho*hk)

			switch {
			case !s.montgomeryPressure:
				d.MontgomeryPotential.Set(c, k, 0)
			case k == 0:
				d.MontgomeryPotential.Set(c, k, Gravity*tl.SSH[c])
			default:
				jump := Gravity * zTop * (rho - d.Density.At(c, k-1)) / s.eos.Rho0
				d.MontgomeryPotential.Set(c, k, d.MontgomeryPotential.At(c, k-1)+jump)
			}

			pTop += Gravity * rho * hk
			zTop -= hk
		}
	}
}

// vertTransport diagnoses the velocity through each layer top from
// continuity. With a fixed coordinate every layer but the first keeps its
// thickness, so the transport is accumulated from the bottom up; with
// impermeable interfaces it is zero. Interface 0 is the sea surface.
func (s *DiagnosticSolver) vertTransport(blk *block.Block, tl *block.TimeLevel) {
	m := blk.Mesh
	d := blk.Diag
	w := d.VertTransportVelocityTop
	w.Fill(0)
	if s.vertMovement == config.VertImpermeableInterfaces {
		return
	}
	for c := 0; c < m.NCells; c++ {
		nk := m.MaxLevelCell[c]
		for k := nk - 1; k >= 1; k-- {
			var div float64
			for j := 0; j < m.NEdgesOnCell[c]; j++ {
				e := m.EdgesOnCell[c][j]
				if e < 0 || k >= m.MaxLevelEdgeTop[e] {
					continue
				}
				flux := tl.NormalVelocity.At(e, k) * d.LayerThicknessEdge.At(e, k) * m.DvEdge[e]
				div += m.EdgeSign(c, e) * flux
			}
			w.Set(c, k, w.At(c, k+1)-div/m.AreaCell[c])
		}
	}
}
