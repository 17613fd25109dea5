package stream

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ocean-sim/ocean-sim/sim"
	"github.com/ocean-sim/ocean-sim/sim/clock"
)

// InputRecord is one time-stamped forcing update.
type InputRecord struct {
	Time        string  `yaml:"time"`
	WindStressX float64 `yaml:"wind_stress_x"`
	WindStressY float64 `yaml:"wind_stress_y"`

	at time.Time
}

// Input is a time-ordered forcing series.
type Input struct {
	Records []InputRecord `yaml:"records"`
}

// LoadInput reads an input file with strict field checking.
func LoadInput(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sim.ErrIO, err)
	}
	return ParseInput(data)
}

// ParseInput decodes and time-orders input records.
func ParseInput(data []byte) (*Input, error) {
	var in Input
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("%w: decoding input: %v", sim.ErrIO, err)
	}
	for i := range in.Records {
		t, err := clock.ParseTime(in.Records[i].Time)
		if err != nil {
			return nil, fmt.Errorf("input record %d: %w", i, err)
		}
		in.Records[i].at = t
	}
	sort.SliceStable(in.Records, func(i, j int) bool { return in.Records[i].at.Before(in.Records[j].at) })
	return &in, nil
}

// At returns the latest record not after t.
func (in *Input) At(t time.Time) (InputRecord, bool) {
	i := sort.Search(len(in.Records), func(i int) bool { return in.Records[i].at.After(t) })
	if i == 0 {
		return InputRecord{}, false
	}
	return in.Records[i-1], true
}
