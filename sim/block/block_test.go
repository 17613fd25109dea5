package block

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocean-sim/ocean-sim/sim/mesh"
)

func testBlock(t *testing.T) *Block {
	t.Helper()
	m, err := mesh.NewPlanar(mesh.PlanarSpec{
		NX: 4, NY: 3, Dc: 100,
		LayerThickness: []float64{10, 10, 10},
		ShelfDepth:     12, BasinDepth: 30,
	})
	require.NoError(t, err)
	return New(0, m)
}

func TestField_Indexing(t *testing.T) {
	f := NewField(3, 2)
	f.Set(2, 1, 7)
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, 7.0, f.At(2, 1))
	assert.Equal(t, []float64{0, 7}, f.Row(2))

	c := f.Clone()
	c.Set(0, 0, 1)
	assert.Equal(t, 0.0, f.At(0, 0), "clone must not alias")
	assert.Equal(t, 0, Field{}.Len())
}

func TestState_RotateSwapsLevels(t *testing.T) {
	s := NewState(2, 3, 2)
	cur, next := s.Current(), s.Next()
	next.SSH[0] = 4

	s.Rotate()

	assert.Same(t, next, s.Current())
	assert.Same(t, cur, s.Next())
	assert.Same(t, s.Current(), s.Level(1))
	assert.Same(t, s.Next(), s.Level(2))
	assert.Equal(t, 4.0, s.Current().SSH[0])
}

// TestState_RotationIdempotentUnderNoOpStep: when the integrator writes a
// level 2 identical to level 1, rotation leaves the state unchanged.
func TestState_RotationIdempotentUnderNoOpStep(t *testing.T) {
	s := NewState(2, 3, 2)
	s.Current().NormalVelocity.Set(1, 1, 0.25)
	s.Current().Tracers[Temperature].Set(0, 0, 12)
	s.Current().NormalBarotropicVelocity[2] = -0.1
	before := cloneLevel(s.Current())

	s.Next().CopyFrom(s.Current()) // no-op step
	s.Rotate()

	if diff := cmp.Diff(before, s.Current()); diff != "" {
		t.Errorf("state changed under no-op step (-before +after):\n%s", diff)
	}
}

func TestState_SnapshotToAll(t *testing.T) {
	s := NewState(2, 2, 1)
	s.Current().LayerThickness.Fill(3)
	s.SnapshotToAll()
	assert.Equal(t, s.Current().LayerThickness.Data, s.Next().LayerThickness.Data)
	assert.NotSame(t, s.Current(), s.Next())
}

func TestFillInactive_WritesSentinelBelowActiveLevels(t *testing.T) {
	b := testBlock(t)
	tl := b.State.Current()
	tl.LayerThickness.Fill(1)
	tl.NormalVelocity.Fill(0.5)
	b.FillInactive(tl)

	m := b.Mesh
	for c := 0; c < m.NCells; c++ {
		for k := 0; k < m.NVertLevels; k++ {
			if k < m.MaxLevelCell[c] {
				assert.Equal(t, 1.0, tl.LayerThickness.At(c, k))
			} else {
				assert.True(t, IsSentinel(tl.LayerThickness.At(c, k)))
				assert.True(t, IsSentinel(tl.Tracers[Salinity].At(c, k)))
			}
		}
	}
	for e := 0; e < m.NEdges; e++ {
		for k := m.MaxLevelEdgeTop[e]; k < m.NVertLevels; k++ {
			assert.Equal(t, Sentinel, tl.NormalVelocity.At(e, k))
			assert.Equal(t, Sentinel, b.Diag.LayerThicknessEdge.At(e, k))
		}
	}
	assert.False(t, IsSentinel(0))
	assert.False(t, IsSentinel(-1e6))
}

func TestRotate_AllBlocks(t *testing.T) {
	blocks := []*Block{testBlock(t), testBlock(t)}
	nexts := []*TimeLevel{blocks[0].State.Next(), blocks[1].State.Next()}
	Rotate(blocks)
	for i, b := range blocks {
		assert.Same(t, nexts[i], b.State.Current())
	}
}

func cloneLevel(tl *TimeLevel) *TimeLevel {
	c := NewTimeLevel(len(tl.SSH), len(tl.NormalBarotropicVelocity), tl.LayerThickness.NLevels)
	c.CopyFrom(tl)
	return c
}
