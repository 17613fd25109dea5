package process

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ocean-sim/ocean-sim/sim/block"
)

// Reconstructor recovers cell-centred velocity vectors from edge normal
// velocities by least squares: for the unit normals N of a cell's edges,
// U = (N^T N)^-1 N^T u. The planar mesh has no vertical or spherical
// component, so zonal/meridional equal x/y and z is zero.
type Reconstructor struct{}

// Init builds the per-cell least-squares weights. Cells with fewer than two
// independent edge normals inside the block get no reconstruction.
func (r *Reconstructor) Init(blk *block.Block) error {
	m := blk.Mesh
	ops := blk.Ops
	ops.ReconstructCoeffs = make([][][2]float64, m.NCells)
	ops.ReconstructValid = make([]bool, m.NCells)
	for c := 0; c < m.NCells; c++ {
		ops.ReconstructCoeffs[c] = make([][2]float64, m.NEdgesOnCell[c])
		var rows []int
		for j := 0; j < m.NEdgesOnCell[c]; j++ {
			if m.EdgesOnCell[c][j] >= 0 {
				rows = append(rows, j)
			}
		}
		if len(rows) < 2 {
			continue
		}
		n := mat.NewDense(len(rows), 2, nil)
		for i, j := range rows {
			angle := m.AngleEdge[m.EdgesOnCell[c][j]]
			n.Set(i, 0, math.Cos(angle))
			n.Set(i, 1, math.Sin(angle))
		}
		var ntn, inv, pinv mat.Dense
		ntn.Mul(n.T(), n)
		if err := inv.Inverse(&ntn); err != nil {
			blk.Log().Debugf("Cell %d: singular reconstruction (%v)", m.CellID[c], err)
			continue
		}
		pinv.Mul(&inv, n.T())
		for i, j := range rows {
			ops.ReconstructCoeffs[c][j] = [2]float64{pinv.At(0, i), pinv.At(1, i)}
		}
		ops.ReconstructValid[c] = true
	}
	return nil
}

// Reconstruct fills the velocity vector diagnostics from tl. Edges with no
// active level at k contribute zero flow.
func (r *Reconstructor) Reconstruct(blk *block.Block, tl *block.TimeLevel) error {
	m := blk.Mesh
	d := blk.Diag
	ops := blk.Ops
	for c := 0; c < m.NCells; c++ {
		for k := 0; k < m.NVertLevels; k++ {
			var ux, uy float64
			if ops.ReconstructValid[c] && k < m.MaxLevelCell[c] {
				for j := 0; j < m.NEdgesOnCell[c]; j++ {
					e := m.EdgesOnCell[c][j]
					if e < 0 || k >= m.MaxLevelEdgeTop[e] {
						continue
					}
					u := tl.NormalVelocity.At(e, k)
					ux += ops.ReconstructCoeffs[c][j][0] * u
					uy += ops.ReconstructCoeffs[c][j][1] * u
				}
			}
			d.VelocityX.Set(c, k, ux)
			d.VelocityY.Set(c, k, uy)
			d.VelocityZ.Set(c, k, 0)
			d.VelocityZonal.Set(c, k, ux)
			d.VelocityMeridional.Set(c, k, uy)
		}
	}
	return nil
}
