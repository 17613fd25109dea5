package block

// Field is a per-entity, per-level array stored entity-major in one slice.
type Field struct {
	NLevels int
	Data    []float64
}

// NewField allocates a zeroed field for n entities with nLevels levels each.
func NewField(n, nLevels int) Field {
	return Field{NLevels: nLevels, Data: make([]float64, n*nLevels)}
}

// Len is the number of entities.
func (f Field) Len() int {
	if f.NLevels == 0 {
		return 0
	}
	return len(f.Data) / f.NLevels
}

func (f Field) At(i, k int) float64     { return f.Data[i*f.NLevels+k] }
func (f Field) Set(i, k int, v float64) { f.Data[i*f.NLevels+k] = v }

// Row returns the column of entity i. The slice aliases the field.
func (f Field) Row(i int) []float64 {
	return f.Data[i*f.NLevels : (i+1)*f.NLevels]
}

// Fill sets every value to v.
func (f Field) Fill(v float64) {
	for i := range f.Data {
		f.Data[i] = v
	}
}

// CopyFrom copies src into f. Shapes must match.
func (f Field) CopyFrom(src Field) {
	copy(f.Data, src.Data)
}

// Clone returns a deep copy.
func (f Field) Clone() Field {
	return Field{NLevels: f.NLevels, Data: append([]float64(nil), f.Data...)}
}
