package stream

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ocean-sim/ocean-sim/sim"
	"github.com/ocean-sim/ocean-sim/sim/clock"
)

// MarkerFile is the restart marker: a single line holding the time of the
// most recent restart write.
type MarkerFile struct {
	Path string
}

// Write replaces the marker atomically.
func (mf MarkerFile) Write(t time.Time) error {
	if dir := filepath.Dir(mf.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", sim.ErrIO, err)
		}
	}
	tmp := mf.Path + ".tmp"
	if err := os.WriteFile(tmp, []byte(clock.Format(t)+"\n"), 0o644); err != nil {
		return fmt.Errorf("%w: writing restart marker: %v", sim.ErrIO, err)
	}
	if err := os.Rename(tmp, mf.Path); err != nil {
		return fmt.Errorf("%w: writing restart marker: %v", sim.ErrIO, err)
	}
	return nil
}

// Read parses the marker. A malformed timestamp is a time parse error.
func (mf MarkerFile) Read() (time.Time, error) {
	data, err := os.ReadFile(mf.Path)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: reading restart marker: %v", sim.ErrIO, err)
	}
	t, err := clock.ParseTime(strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}, fmt.Errorf("restart marker %s: %w", mf.Path, err)
	}
	return t, nil
}
