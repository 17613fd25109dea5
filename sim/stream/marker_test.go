package stream

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocean-sim/ocean-sim/sim"
)

func TestMarkerFile_RoundTrip(t *testing.T) {
	mf := MarkerFile{Path: filepath.Join(t.TempDir(), "restarts", "restart_timestamp")}
	at := time.Date(1, 1, 3, 12, 0, 0, 0, time.UTC)

	require.NoError(t, mf.Write(at))
	data, err := os.ReadFile(mf.Path)
	require.NoError(t, err)
	assert.Equal(t, "0001-01-03_12:00:00\n", string(data))

	got, err := mf.Read()
	require.NoError(t, err)
	assert.True(t, got.Equal(at))

	// a later write replaces the marker and leaves no temporary file
	require.NoError(t, mf.Write(at.Add(time.Hour)))
	got, err = mf.Read()
	require.NoError(t, err)
	assert.True(t, got.Equal(at.Add(time.Hour)))
	_, err = os.Stat(mf.Path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestMarkerFile_ReadFailures(t *testing.T) {
	dir := t.TempDir()

	_, err := MarkerFile{Path: filepath.Join(dir, "absent")}.Read()
	assert.True(t, errors.Is(err, sim.ErrIO))

	bad := filepath.Join(dir, "bad")
	require.NoError(t, os.WriteFile(bad, []byte("noon on tuesday\n"), 0o644))
	_, err = MarkerFile{Path: bad}.Read()
	assert.True(t, errors.Is(err, sim.ErrTimeParse), "got %v", err)
}
