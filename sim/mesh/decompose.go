package mesh

import (
	"fmt"
	"sort"
)

// Decompose splits a whole-domain mesh into nBlocks partitions of contiguous
// global cell ranges. Each partition carries haloLayers rings of neighbouring
// cells, and every edge whose adjoining cells are all local.
//
// An edge is owned by the owner of its first cell (its second cell on the
// southern/western domain boundary), so owned interiors are disjoint and
// together cover the domain.
func Decompose(global *Mesh, nBlocks, haloLayers int) ([]*Mesh, error) {
	if global.OwnedCells != global.NCells {
		return nil, fmt.Errorf("decompose: input mesh is already a partition (%d of %d cells owned)",
			global.OwnedCells, global.NCells)
	}
	if nBlocks < 1 || nBlocks > global.NCells {
		return nil, fmt.Errorf("decompose: %d blocks for %d cells", nBlocks, global.NCells)
	}
	if haloLayers < 1 {
		return nil, fmt.Errorf("decompose: need at least one halo layer, got %d", haloLayers)
	}

	cellOwner := make([]int, global.NCells)
	for c := range cellOwner {
		cellOwner[c] = c * nBlocks / global.NCells
	}
	edgeOwner := make([]int, global.NEdges)
	for e, cells := range global.CellsOnEdge {
		if cells[0] >= 0 {
			edgeOwner[e] = cellOwner[cells[0]]
		} else {
			edgeOwner[e] = cellOwner[cells[1]]
		}
	}

	blocks := make([]*Mesh, nBlocks)
	for b := range blocks {
		blocks[b] = extract(global, b, cellOwner, edgeOwner, haloLayers)
		if err := blocks[b].Validate(); err != nil {
			return nil, fmt.Errorf("decompose: block %d: %w", b, err)
		}
	}
	return blocks, nil
}

func extract(g *Mesh, b int, cellOwner, edgeOwner []int, haloLayers int) *Mesh {
	var owned []int
	local := make(map[int]bool)
	for c, o := range cellOwner {
		if o == b {
			owned = append(owned, c)
			local[c] = true
		}
	}

	var halo []int
	frontier := owned
	for layer := 0; layer < haloLayers; layer++ {
		var next []int
		for _, c := range frontier {
			for _, n := range g.CellsOnCell[c][:g.NEdgesOnCell[c]] {
				if n >= 0 && !local[n] {
					local[n] = true
					next = append(next, n)
				}
			}
		}
		halo = append(halo, next...)
		frontier = next
	}
	sort.Ints(halo)
	cells := append(append([]int{}, owned...), halo...)

	var ownedEdges, haloEdges []int
	for e, pair := range g.CellsOnEdge {
		touches, complete := false, true
		for _, c := range pair {
			if c < 0 {
				continue
			}
			if local[c] {
				touches = true
			} else {
				complete = false
			}
		}
		if !touches || !complete {
			continue
		}
		if edgeOwner[e] == b {
			ownedEdges = append(ownedEdges, e)
		} else {
			haloEdges = append(haloEdges, e)
		}
	}
	edges := append(ownedEdges, haloEdges...)

	cellIndex := make(map[int]int, len(cells))
	for i, c := range cells {
		cellIndex[c] = i
	}
	edgeIndex := make(map[int]int, len(edges))
	for i, e := range edges {
		edgeIndex[e] = i
	}
	remap := func(idx map[int]int, g int) int {
		if l, ok := idx[g]; ok {
			return l
		}
		return -1
	}

	m := &Mesh{
		NCells:            len(cells),
		NEdges:            len(edges),
		NVertLevels:       g.NVertLevels,
		MaxEdges:          g.MaxEdges,
		OwnedCells:        len(owned),
		OwnedEdges:        len(ownedEdges),
		CellID:            make([]int, len(cells)),
		EdgeID:            make([]int, len(edges)),
		NEdgesOnCell:      make([]int, len(cells)),
		EdgesOnCell:       make([][]int, len(cells)),
		CellsOnCell:       make([][]int, len(cells)),
		CellsOnEdge:       make([][2]int, len(edges)),
		AreaCell:          make([]float64, len(cells)),
		DcEdge:            make([]float64, len(edges)),
		DvEdge:            make([]float64, len(edges)),
		AngleEdge:         make([]float64, len(edges)),
		XCell:             make([]float64, len(cells)),
		YCell:             make([]float64, len(cells)),
		MeshDensity:       make([]float64, len(cells)),
		BottomDepth:       make([]float64, len(cells)),
		MaxLevelCell:      make([]int, len(cells)),
		MaxLevelEdgeTop:   make([]int, len(edges)),
		MaxLevelEdgeBot:   make([]int, len(edges)),
		RefLayerThickness: append([]float64{}, g.RefLayerThickness...),
		RefBottomDepth:    append([]float64{}, g.RefBottomDepth...),
	}
	for i, c := range cells {
		m.CellID[i] = g.CellID[c]
		m.NEdgesOnCell[i] = g.NEdgesOnCell[c]
		m.EdgesOnCell[i] = make([]int, len(g.EdgesOnCell[c]))
		for j, e := range g.EdgesOnCell[c] {
			m.EdgesOnCell[i][j] = remap(edgeIndex, e)
		}
		m.CellsOnCell[i] = make([]int, len(g.CellsOnCell[c]))
		for j, n := range g.CellsOnCell[c] {
			m.CellsOnCell[i][j] = remap(cellIndex, n)
		}
		m.AreaCell[i] = g.AreaCell[c]
		m.XCell[i] = g.XCell[c]
		m.YCell[i] = g.YCell[c]
		m.MeshDensity[i] = g.MeshDensity[c]
		m.BottomDepth[i] = g.BottomDepth[c]
		m.MaxLevelCell[i] = g.MaxLevelCell[c]
	}
	for i, e := range edges {
		m.EdgeID[i] = g.EdgeID[e]
		for j, c := range g.CellsOnEdge[e] {
			m.CellsOnEdge[i][j] = remap(cellIndex, c)
		}
		m.DcEdge[i] = g.DcEdge[e]
		m.DvEdge[i] = g.DvEdge[e]
		m.AngleEdge[i] = g.AngleEdge[e]
		m.MaxLevelEdgeTop[i] = g.MaxLevelEdgeTop[e]
		m.MaxLevelEdgeBot[i] = g.MaxLevelEdgeBot[e]
	}
	return m
}
