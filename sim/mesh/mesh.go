// Package mesh holds the horizontal topology and vertical geometry of one
// partition of the ocean mesh.
//
// Entities are stored owned-first: indices [0, OwnedCells) are cells this
// block integrates; [OwnedCells, NCells) are read-only halo copies of cells
// owned by neighbouring blocks. Edges follow the same convention.
// Missing neighbours (domain boundary, or beyond the halo) are -1.
package mesh

import "fmt"

// Mesh is the topology and geometry of one block (or of the whole domain).
type Mesh struct {
	NCells      int
	NEdges      int
	NVertLevels int
	MaxEdges    int

	OwnedCells int
	OwnedEdges int

	// Global ids, indexed by local index.
	CellID []int
	EdgeID []int

	NEdgesOnCell []int
	EdgesOnCell  [][]int
	CellsOnCell  [][]int
	CellsOnEdge  [][2]int

	AreaCell    []float64
	DcEdge      []float64 // distance between the two cell centres
	DvEdge      []float64 // edge length
	AngleEdge   []float64 // angle of the edge normal from +x, radians
	XCell       []float64
	YCell       []float64
	MeshDensity []float64

	BottomDepth     []float64
	MaxLevelCell    []int // number of active levels in the column
	MaxLevelEdgeTop []int // min over the adjoining cells; 0 on boundary edges
	MaxLevelEdgeBot []int // max over the adjoining cells

	RefLayerThickness []float64
	RefBottomDepth    []float64 // depth of the bottom of each reference layer
}

// IsBoundaryEdge reports whether e has fewer than two adjoining cells in the domain.
func (m *Mesh) IsBoundaryEdge(e int) bool {
	return m.CellsOnEdge[e][0] < 0 || m.CellsOnEdge[e][1] < 0
}

// Halo reports the number of halo cells and edges.
func (m *Mesh) Halo() (cells, edges int) {
	return m.NCells - m.OwnedCells, m.NEdges - m.OwnedEdges
}

// EdgeSign returns +1 when the normal of edge e points out of cell c and -1
// when it points in. The normal points from CellsOnEdge[e][0] to [1].
func (m *Mesh) EdgeSign(c, e int) float64 {
	if m.CellsOnEdge[e][0] == c {
		return 1
	}
	return -1
}

// Validate checks array lengths and index ranges.
func (m *Mesh) Validate() error {
	if m.NCells <= 0 || m.NEdges <= 0 || m.NVertLevels <= 0 {
		return fmt.Errorf("mesh has %d cells, %d edges, %d levels", m.NCells, m.NEdges, m.NVertLevels)
	}
	if m.OwnedCells > m.NCells || m.OwnedEdges > m.NEdges {
		return fmt.Errorf("owned counts exceed totals (%d/%d cells, %d/%d edges)",
			m.OwnedCells, m.NCells, m.OwnedEdges, m.NEdges)
	}
	cellArrays := map[string]int{
		"CellID": len(m.CellID), "NEdgesOnCell": len(m.NEdgesOnCell), "EdgesOnCell": len(m.EdgesOnCell),
		"CellsOnCell": len(m.CellsOnCell), "AreaCell": len(m.AreaCell), "XCell": len(m.XCell),
		"YCell": len(m.YCell), "MeshDensity": len(m.MeshDensity), "BottomDepth": len(m.BottomDepth),
		"MaxLevelCell": len(m.MaxLevelCell),
	}
	for name, n := range cellArrays {
		if n != m.NCells {
			return fmt.Errorf("%s has length %d, want %d", name, n, m.NCells)
		}
	}
	edgeArrays := map[string]int{
		"EdgeID": len(m.EdgeID), "CellsOnEdge": len(m.CellsOnEdge), "DcEdge": len(m.DcEdge),
		"DvEdge": len(m.DvEdge), "AngleEdge": len(m.AngleEdge), "MaxLevelEdgeTop": len(m.MaxLevelEdgeTop),
		"MaxLevelEdgeBot": len(m.MaxLevelEdgeBot),
	}
	for name, n := range edgeArrays {
		if n != m.NEdges {
			return fmt.Errorf("%s has length %d, want %d", name, n, m.NEdges)
		}
	}
	if len(m.RefLayerThickness) != m.NVertLevels || len(m.RefBottomDepth) != m.NVertLevels {
		return fmt.Errorf("reference profile has %d/%d levels, want %d",
			len(m.RefLayerThickness), len(m.RefBottomDepth), m.NVertLevels)
	}
	for e, cells := range m.CellsOnEdge {
		for _, c := range cells {
			if c >= m.NCells {
				return fmt.Errorf("edge %d references cell %d of %d", e, c, m.NCells)
			}
		}
	}
	for c := 0; c < m.NCells; c++ {
		if m.NEdgesOnCell[c] > m.MaxEdges {
			return fmt.Errorf("cell %d has %d edges, MaxEdges is %d", c, m.NEdgesOnCell[c], m.MaxEdges)
		}
		for _, e := range m.EdgesOnCell[c][:m.NEdgesOnCell[c]] {
			if e >= m.NEdges {
				return fmt.Errorf("cell %d references edge %d of %d", c, e, m.NEdges)
			}
		}
		if m.MaxLevelCell[c] < 0 || m.MaxLevelCell[c] > m.NVertLevels {
			return fmt.Errorf("cell %d has %d active levels of %d", c, m.MaxLevelCell[c], m.NVertLevels)
		}
	}
	return nil
}

// setEdgeLevels derives MaxLevelEdgeTop/Bot from MaxLevelCell.
func (m *Mesh) setEdgeLevels() {
	m.MaxLevelEdgeTop = make([]int, m.NEdges)
	m.MaxLevelEdgeBot = make([]int, m.NEdges)
	for e, cells := range m.CellsOnEdge {
		c1, c2 := cells[0], cells[1]
		switch {
		case c1 >= 0 && c2 >= 0:
			m.MaxLevelEdgeTop[e] = min(m.MaxLevelCell[c1], m.MaxLevelCell[c2])
			m.MaxLevelEdgeBot[e] = max(m.MaxLevelCell[c1], m.MaxLevelCell[c2])
		case c1 >= 0:
			m.MaxLevelEdgeBot[e] = m.MaxLevelCell[c1]
		case c2 >= 0:
			m.MaxLevelEdgeBot[e] = m.MaxLevelCell[c2]
		}
	}
}

// activeLevels counts the reference layers whose top lies above depth.
func activeLevels(refBottom []float64, depth float64) int {
	n := 0
	top := 0.0
	for _, bot := range refBottom {
		if top >= depth {
			break
		}
		n++
		top = bot
	}
	return n
}
