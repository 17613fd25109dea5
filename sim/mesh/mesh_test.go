package mesh

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func channelSpec() PlanarSpec {
	return PlanarSpec{
		NX: 6, NY: 4, Dc: 1000,
		LayerThickness: []float64{10, 20, 30},
		ShelfDepth:     15, BasinDepth: 60,
		DensityBump: 3,
	}
}

func TestNewPlanar_Counts(t *testing.T) {
	m, err := NewPlanar(channelSpec())
	require.NoError(t, err)

	assert.Equal(t, 24, m.NCells)
	assert.Equal(t, 6*4+6*5, m.NEdges)
	assert.Equal(t, m.NCells, m.OwnedCells)
	assert.Equal(t, []float64{10, 30, 60}, m.RefBottomDepth)

	// wall edges have a single cell and no active levels
	boundary := 0
	for e := 0; e < m.NEdges; e++ {
		if m.IsBoundaryEdge(e) {
			boundary++
			assert.Equal(t, 0, m.MaxLevelEdgeTop[e])
		}
	}
	assert.Equal(t, 2*6, boundary)
}

func TestNewPlanar_EdgeLevelsFollowCells(t *testing.T) {
	m, err := NewPlanar(channelSpec())
	require.NoError(t, err)
	for e, cells := range m.CellsOnEdge {
		if m.IsBoundaryEdge(e) {
			continue
		}
		a, b := m.MaxLevelCell[cells[0]], m.MaxLevelCell[cells[1]]
		assert.Equal(t, min(a, b), m.MaxLevelEdgeTop[e])
		assert.Equal(t, max(a, b), m.MaxLevelEdgeBot[e])
	}
}

func TestNewPlanar_PeriodicNeighbours(t *testing.T) {
	m, err := NewPlanar(channelSpec())
	require.NoError(t, err)
	// cell (0,0) wraps west to (5,0)
	assert.Equal(t, 5, m.CellsOnCell[0][2])
	// its west edge joins (5,0) to (0,0)
	west := m.EdgesOnCell[0][2]
	assert.Equal(t, [2]int{5, 0}, m.CellsOnEdge[west])
	assert.Equal(t, 1.0, m.EdgeSign(5, west))
	assert.Equal(t, -1.0, m.EdgeSign(0, west))
}

func TestNewPlanar_LandColumnsHaveNoLevels(t *testing.T) {
	s := channelSpec()
	s.ShelfDepth = -40
	m, err := NewPlanar(s)
	require.NoError(t, err)

	land := 0
	for c := 0; c < m.NCells; c++ {
		if m.BottomDepth[c] <= 0 {
			land++
			assert.Equal(t, 0, m.MaxLevelCell[c])
		}
	}
	assert.Positive(t, land, "negative shelf depth should produce land columns")
}

func TestActiveLevels(t *testing.T) {
	ref := []float64{10, 30, 60}
	assert.Equal(t, 0, activeLevels(ref, 0))
	assert.Equal(t, 1, activeLevels(ref, 10))
	assert.Equal(t, 2, activeLevels(ref, 10.5))
	assert.Equal(t, 3, activeLevels(ref, 1e4))
}

func TestNewPlanar_RejectsBadSpecs(t *testing.T) {
	for name, s := range map[string]PlanarSpec{
		"narrow":    {NX: 2, NY: 2, Dc: 1, LayerThickness: []float64{1}},
		"spacing":   {NX: 3, NY: 2, Dc: 0, LayerThickness: []float64{1}},
		"no layers": {NX: 3, NY: 2, Dc: 1},
		"bad layer": {NX: 3, NY: 2, Dc: 1, LayerThickness: []float64{1, -1}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewPlanar(s)
			assert.Error(t, err)
		})
	}
}

// TestDecompose_OwnedInteriorsPartitionDomain checks that owned cells and
// owned edges are disjoint across blocks and cover the global mesh.
func TestDecompose_OwnedInteriorsPartitionDomain(t *testing.T) {
	g, err := NewPlanar(channelSpec())
	require.NoError(t, err)

	for _, n := range []int{1, 2, 3, 4} {
		blocks, err := Decompose(g, n, 2)
		require.NoError(t, err)
		require.Len(t, blocks, n)

		seenCells := make(map[int]int)
		seenEdges := make(map[int]int)
		for _, b := range blocks {
			for c := 0; c < b.OwnedCells; c++ {
				seenCells[b.CellID[c]]++
			}
			for e := 0; e < b.OwnedEdges; e++ {
				seenEdges[b.EdgeID[e]]++
			}
		}
		assert.Len(t, seenCells, g.NCells, "n=%d", n)
		assert.Len(t, seenEdges, g.NEdges, "n=%d", n)
		for id, count := range seenCells {
			assert.Equal(t, 1, count, "cell %d owned %d times", id, count)
		}
		for id, count := range seenEdges {
			assert.Equal(t, 1, count, "edge %d owned %d times", id, count)
		}
	}
}

func TestDecompose_LocalGeometryMatchesGlobal(t *testing.T) {
	g, err := NewPlanar(channelSpec())
	require.NoError(t, err)
	blocks, err := Decompose(g, 3, 1)
	require.NoError(t, err)

	for bi, b := range blocks {
		for c := 0; c < b.NCells; c++ {
			gc := b.CellID[c]
			got := []float64{b.AreaCell[c], b.XCell[c], b.YCell[c], b.BottomDepth[c], b.MeshDensity[c]}
			want := []float64{g.AreaCell[gc], g.XCell[gc], g.YCell[gc], g.BottomDepth[gc], g.MeshDensity[gc]}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("block %d cell %d geometry (-want +got):\n%s", bi, gc, diff)
			}
		}
		// every owned edge sees both of its cells locally, with the same global ids
		for e := 0; e < b.OwnedEdges; e++ {
			ge := b.EdgeID[e]
			for j, c := range b.CellsOnEdge[e] {
				if g.CellsOnEdge[ge][j] < 0 {
					assert.Equal(t, -1, c)
					continue
				}
				require.GreaterOrEqual(t, c, 0, "block %d edge %d lost cell %d", bi, ge, j)
				assert.Equal(t, g.CellsOnEdge[ge][j], b.CellID[c])
			}
		}
		// owned cells see all their edges
		for c := 0; c < b.OwnedCells; c++ {
			for _, e := range b.EdgesOnCell[c][:b.NEdgesOnCell[c]] {
				assert.GreaterOrEqual(t, e, 0)
			}
		}
	}
}

func TestDecompose_Rejects(t *testing.T) {
	g, err := NewPlanar(channelSpec())
	require.NoError(t, err)
	_, err = Decompose(g, 0, 1)
	assert.Error(t, err)
	_, err = Decompose(g, g.NCells+1, 1)
	assert.Error(t, err)
	_, err = Decompose(g, 2, 0)
	assert.Error(t, err)

	blocks, err := Decompose(g, 2, 1)
	require.NoError(t, err)
	_, err = Decompose(blocks[0], 2, 1)
	assert.Error(t, err)
}

func TestMeshDensity_PeaksAtCentre(t *testing.T) {
	g, err := NewPlanar(channelSpec())
	require.NoError(t, err)
	maxD := 0.0
	for _, d := range g.MeshDensity {
		maxD = math.Max(maxD, d)
		assert.GreaterOrEqual(t, d, 1.0)
	}
	assert.Greater(t, maxD, 1.0)
}
