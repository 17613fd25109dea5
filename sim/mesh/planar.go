package mesh

import (
	"fmt"
	"math"
)

// PlanarSpec describes a doubly-structured planar channel: periodic in x,
// closed by walls at y = 0 and y = NY*Dc. Bottom depth rises from BasinDepth
// mid-channel to ShelfDepth at the walls; a non-positive depth makes a land
// column with no active levels.
type PlanarSpec struct {
	NX, NY         int
	Dc             float64
	LayerThickness []float64
	ShelfDepth     float64
	BasinDepth     float64
	// DensityBump is the amplitude of a Gaussian mesh-density maximum at the
	// channel centre; zero gives a uniform density of 1.
	DensityBump float64
}

// NewPlanar builds the whole-domain mesh described by s. Every entity is owned.
func NewPlanar(s PlanarSpec) (*Mesh, error) {
	if s.NX < 3 || s.NY < 1 {
		return nil, fmt.Errorf("planar mesh needs nx >= 3 and ny >= 1, got %dx%d", s.NX, s.NY)
	}
	if s.Dc <= 0 {
		return nil, fmt.Errorf("planar mesh spacing must be positive, got %v", s.Dc)
	}
	if len(s.LayerThickness) == 0 {
		return nil, fmt.Errorf("planar mesh needs at least one layer")
	}

	nx, ny := s.NX, s.NY
	nCells := nx * ny
	nEdges := nx*ny + nx*(ny+1)
	m := &Mesh{
		NCells:       nCells,
		NEdges:       nEdges,
		NVertLevels:  len(s.LayerThickness),
		MaxEdges:     4,
		OwnedCells:   nCells,
		OwnedEdges:   nEdges,
		CellID:       make([]int, nCells),
		EdgeID:       make([]int, nEdges),
		NEdgesOnCell: make([]int, nCells),
		EdgesOnCell:  make([][]int, nCells),
		CellsOnCell:  make([][]int, nCells),
		CellsOnEdge:  make([][2]int, nEdges),
		AreaCell:     make([]float64, nCells),
		DcEdge:       make([]float64, nEdges),
		DvEdge:       make([]float64, nEdges),
		AngleEdge:    make([]float64, nEdges),
		XCell:        make([]float64, nCells),
		YCell:        make([]float64, nCells),
		MeshDensity:  make([]float64, nCells),
		BottomDepth:  make([]float64, nCells),
		MaxLevelCell: make([]int, nCells),
	}

	m.RefLayerThickness = make([]float64, m.NVertLevels)
	m.RefBottomDepth = make([]float64, m.NVertLevels)
	depth := 0.0
	for k, h := range s.LayerThickness {
		if h <= 0 {
			return nil, fmt.Errorf("layer %d thickness must be positive, got %v", k, h)
		}
		depth += h
		m.RefLayerThickness[k] = h
		m.RefBottomDepth[k] = depth
	}

	cell := func(i, j int) int {
		if j < 0 || j >= ny {
			return -1
		}
		return j*nx + (i+nx)%nx
	}
	uEdge := func(i, j int) int { return j*nx + (i+nx)%nx }
	vEdge := func(i, j int) int { return nx*ny + j*nx + (i+nx)%nx }

	lx, ly := float64(nx)*s.Dc, float64(ny)*s.Dc
	sigma := 0.15 * math.Min(lx, ly)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			c := cell(i, j)
			m.CellID[c] = c
			m.NEdgesOnCell[c] = 4
			m.EdgesOnCell[c] = []int{uEdge(i+1, j), vEdge(i, j+1), uEdge(i, j), vEdge(i, j)}
			m.CellsOnCell[c] = []int{cell(i+1, j), cell(i, j+1), cell(i-1, j), cell(i, j-1)}
			m.AreaCell[c] = s.Dc * s.Dc
			m.XCell[c] = (float64(i) + 0.5) * s.Dc
			m.YCell[c] = (float64(j) + 0.5) * s.Dc

			dx, dy := m.XCell[c]-lx/2, m.YCell[c]-ly/2
			m.MeshDensity[c] = 1 + s.DensityBump*math.Exp(-(dx*dx+dy*dy)/(2*sigma*sigma))

			m.BottomDepth[c] = s.ShelfDepth + (s.BasinDepth-s.ShelfDepth)*math.Sin(math.Pi*m.YCell[c]/ly)
			m.MaxLevelCell[c] = activeLevels(m.RefBottomDepth, m.BottomDepth[c])
		}
	}

	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			e := uEdge(i, j)
			m.CellsOnEdge[e] = [2]int{cell(i-1, j), cell(i, j)}
			m.AngleEdge[e] = 0
		}
	}
	for j := 0; j <= ny; j++ {
		for i := 0; i < nx; i++ {
			e := vEdge(i, j)
			m.CellsOnEdge[e] = [2]int{cell(i, j-1), cell(i, j)}
			m.AngleEdge[e] = math.Pi / 2
		}
	}
	for e := range m.EdgeID {
		m.EdgeID[e] = e
		m.DcEdge[e] = s.Dc
		m.DvEdge[e] = s.Dc
	}
	m.setEdgeLevels()

	return m, m.Validate()
}
