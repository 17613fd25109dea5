package block

import "time"

// Tracer indices into TimeLevel.Tracers and Forcing.SurfaceTracerFlux.
const (
	Temperature = iota
	Salinity
	NumTracers
)

// TracerNames maps tracer indices to their stream names.
var TracerNames = [NumTracers]string{"temperature", "salinity"}

// TimeLevel holds the prognostic fields at one time level.
type TimeLevel struct {
	NormalVelocity           Field // edges
	LayerThickness           Field // cells
	Tracers                  [NumTracers]Field
	SSH                      []float64 // cells
	NormalBarotropicVelocity []float64 // edges
	NormalBaroclinicVelocity Field     // edges

	SimTime time.Time
}

// NewTimeLevel allocates a zeroed time level.
func NewTimeLevel(nCells, nEdges, nLevels int) *TimeLevel {
	tl := &TimeLevel{
		NormalVelocity:           NewField(nEdges, nLevels),
		LayerThickness:           NewField(nCells, nLevels),
		SSH:                      make([]float64, nCells),
		NormalBarotropicVelocity: make([]float64, nEdges),
		NormalBaroclinicVelocity: NewField(nEdges, nLevels),
	}
	for i := range tl.Tracers {
		tl.Tracers[i] = NewField(nCells, nLevels)
	}
	return tl
}

// CopyFrom deep-copies src into tl.
func (tl *TimeLevel) CopyFrom(src *TimeLevel) {
	tl.NormalVelocity.CopyFrom(src.NormalVelocity)
	tl.LayerThickness.CopyFrom(src.LayerThickness)
	for i := range tl.Tracers {
		tl.Tracers[i].CopyFrom(src.Tracers[i])
	}
	copy(tl.SSH, src.SSH)
	copy(tl.NormalBarotropicVelocity, src.NormalBarotropicVelocity)
	tl.NormalBaroclinicVelocity.CopyFrom(src.NormalBaroclinicVelocity)
	tl.SimTime = src.SimTime
}

// State holds exactly two time levels as an index-based double buffer.
// Current is time level 1, the state at the start of the step; Next is time
// level 2, written by the time integrator. Rotate swaps the roles, so an
// integrator must overwrite every field of Next.
type State struct {
	levels [2]*TimeLevel
	cur    int
}

// NewState allocates both time levels.
func NewState(nCells, nEdges, nLevels int) *State {
	return &State{levels: [2]*TimeLevel{
		NewTimeLevel(nCells, nEdges, nLevels),
		NewTimeLevel(nCells, nEdges, nLevels),
	}}
}

// Current returns time level 1.
func (s *State) Current() *TimeLevel { return s.levels[s.cur] }

// Next returns time level 2.
func (s *State) Next() *TimeLevel { return s.levels[1-s.cur] }

// Level returns time level 1 or 2.
func (s *State) Level(n int) *TimeLevel {
	if n == 1 {
		return s.Current()
	}
	return s.Next()
}

// Rotate makes the advanced state current.
func (s *State) Rotate() { s.cur = 1 - s.cur }

// SnapshotToAll copies the current level into every other level.
func (s *State) SnapshotToAll() {
	s.Next().CopyFrom(s.Current())
}
