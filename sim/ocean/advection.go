package ocean

import (
	"fmt"
	"math"

	"github.com/ocean-sim/ocean-sim/sim/block"
	"github.com/ocean-sim/ocean-sim/sim/mesh"
)

// ComputeAdvectionCoefficients builds the tracer-advection stencils of every
// edge for the given order (2, 3 or 4) and stores them in ops.
//
// For an edge between cells c1 and c2 the stencil is c1, c2 and their
// neighbours. The flux of a tracer phi across the edge is
//
//	u * sum(AdvCoefs * phi) + |u| * sum(AdvCoefs3rd * phi)
//
// where the 3rd-order term supplies the upwind bias. Deriv2 holds the second
// derivative of phi along the edge normal at c1 and c2, expressed as weights
// over the stencil. Wall edges get empty stencils (no flux). Owned edges must
// produce a stencil; halo edges whose neighbourhood is cut by the halo are
// left empty.
func ComputeAdvectionCoefficients(m *mesh.Mesh, order int, ops *block.Operators) error {
	if order < 2 || order > 4 {
		return fmt.Errorf("advection order %d is not 2, 3 or 4", order)
	}
	ops.AdvOrder = order
	ops.AdvCells = make([][]int, m.NEdges)
	ops.AdvCoefs = make([][]float64, m.NEdges)
	ops.AdvCoefs3rd = make([][]float64, m.NEdges)
	ops.Deriv2 = make([][2][]float64, m.NEdges)
	ops.HighOrderMask = block.NewField(m.NEdges, m.NVertLevels)

	for e := 0; e < m.NEdges; e++ {
		if m.IsBoundaryEdge(e) {
			continue
		}
		err := edgeStencil(m, e, order, ops)
		if err != nil && e < m.OwnedEdges {
			return fmt.Errorf("edge %d (global %d): %w", e, m.EdgeID[e], err)
		}
		if err != nil {
			ops.AdvCells[e], ops.AdvCoefs[e], ops.AdvCoefs3rd[e] = nil, nil, nil
			ops.Deriv2[e] = [2][]float64{}
			continue
		}
		setHighOrderMask(m, e, ops)
	}
	return nil
}

func edgeStencil(m *mesh.Mesh, e, order int, ops *block.Operators) error {
	c1, c2 := m.CellsOnEdge[e][0], m.CellsOnEdge[e][1]
	dc, dv := m.DcEdge[e], m.DvEdge[e]
	if dc <= 0 || dv <= 0 {
		return fmt.Errorf("degenerate edge geometry dc=%v dv=%v", dc, dv)
	}

	cells := []int{c1, c2}
	pos := map[int]int{c1: 0, c2: 1}
	if order > 2 {
		for _, c := range []int{c1, c2} {
			for j := 0; j < m.NEdgesOnCell[c]; j++ {
				n := m.CellsOnCell[c][j]
				if n < 0 {
					continue
				}
				if _, ok := pos[n]; !ok {
					pos[n] = len(cells)
					cells = append(cells, n)
				}
			}
		}
	}
	for _, c := range cells {
		if m.AreaCell[c] <= 0 {
			return fmt.Errorf("stencil cell %d has area %v", c, m.AreaCell[c])
		}
	}

	coefs := make([]float64, len(cells))
	coefs3rd := make([]float64, len(cells))
	if order > 2 {
		var deriv [2][]float64
		for side, c := range []int{c1, c2} {
			w, err := secondDerivative(m, e, c, pos, len(cells))
			if err != nil {
				return err
			}
			deriv[side] = w
		}
		scale := dc * dc / 12
		for i := range cells {
			coefs[i] -= scale * (deriv[0][i] + deriv[1][i])
			if order == 3 {
				coefs3rd[i] += scale * (deriv[0][i] - deriv[1][i])
			}
		}
		ops.Deriv2[e] = deriv
	}
	coefs[0] += 0.5
	coefs[1] += 0.5
	for i := range cells {
		coefs[i] *= dv
		coefs3rd[i] *= dv
	}

	ops.AdvCells[e] = cells
	ops.AdvCoefs[e] = coefs
	ops.AdvCoefs3rd[e] = coefs3rd
	return nil
}

// secondDerivative returns the weights, over a stencil of width n, of the
// second derivative at cell c in the direction of the normal of edge e.
// Each neighbour across edge f contributes along the projection
// cos(angle(f) - angle(e)); the weights are normalized so a quadratic along
// the normal is differentiated exactly on a regular mesh.
func secondDerivative(m *mesh.Mesh, e, c int, pos map[int]int, n int) ([]float64, error) {
	w := make([]float64, n)
	var sumCos2 float64
	for j := 0; j < m.NEdgesOnCell[c]; j++ {
		f := m.EdgesOnCell[c][j]
		nb := m.CellsOnCell[c][j]
		if f < 0 {
			return nil, fmt.Errorf("cell %d: neighbourhood extends past the halo", c)
		}
		if nb < 0 {
			continue // wall
		}
		cos := math.Cos(m.AngleEdge[f] - m.AngleEdge[e])
		cos2 := cos * cos
		sumCos2 += cos2
		w[pos[nb]] += cos2 / (m.DcEdge[f] * m.DcEdge[f])
	}
	if sumCos2 < 1e-12 {
		return nil, fmt.Errorf("cell %d has no neighbour along the normal of edge %d", c, e)
	}
	var centre float64
	for i := range w {
		w[i] *= 2 / sumCos2
		centre -= w[i]
	}
	w[pos[c]] += centre
	return w, nil
}

// setHighOrderMask marks the levels where every stencil cell is active.
func setHighOrderMask(m *mesh.Mesh, e int, ops *block.Operators) {
	for k := 0; k < m.MaxLevelEdgeTop[e]; k++ {
		v := 1.0
		for _, c := range ops.AdvCells[e] {
			if k >= m.MaxLevelCell[c] {
				v = 0
				break
			}
		}
		ops.HighOrderMask.Set(e, k, v)
	}
}

// ComputeMeshScaling fills the Del2/Del4 viscosity scaling factors. When
// scaling is off every factor is 1; otherwise factors grow where the mesh
// is coarser than at maxDensity.
func ComputeMeshScaling(m *mesh.Mesh, ops *block.Operators, scale bool, maxDensity float64) error {
	ops.MeshScalingDel2 = make([]float64, m.NEdges)
	ops.MeshScalingDel4 = make([]float64, m.NEdges)
	if !scale {
		for e := range ops.MeshScalingDel2 {
			ops.MeshScalingDel2[e] = 1
			ops.MeshScalingDel4[e] = 1
		}
		return nil
	}
	if !(maxDensity > 0) || math.IsInf(maxDensity, 0) {
		return fmt.Errorf("maximum mesh density must be positive and finite, got %v", maxDensity)
	}
	for e := 0; e < m.NEdges; e++ {
		var sum float64
		var n int
		for _, c := range m.CellsOnEdge[e] {
			if c >= 0 {
				sum += m.MeshDensity[c]
				n++
			}
		}
		ratio := sum / float64(n) / maxDensity
		if !(ratio > 0) {
			return fmt.Errorf("edge %d has non-positive mesh density", e)
		}
		ops.MeshScalingDel2[e] = 1 / math.Pow(ratio, 0.25)
		ops.MeshScalingDel4[e] = 1 / math.Pow(ratio, 0.75)
	}
	return nil
}

// localMaxDensity is the largest mesh density over the owned cells of blocks.
func localMaxDensity(blocks []*block.Block) float64 {
	v := math.Inf(-1)
	for _, b := range blocks {
		for c := 0; c < b.Mesh.OwnedCells; c++ {
			v = math.Max(v, b.Mesh.MeshDensity[c])
		}
	}
	return v
}
