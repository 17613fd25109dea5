package clock

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocean-sim/ocean-sim/sim"
)

func TestParseDuration_AcceptedForms(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"00:10:00", 10 * time.Minute},
		{"2_00:00:00", 48 * time.Hour},
		{"1_06:30:15", 30*time.Hour + 30*time.Minute + 15*time.Second},
		{"05:30", 5*time.Minute + 30*time.Second},
		{"1800", 30 * time.Minute},
		{"0.5", 500 * time.Millisecond},
		{"90m", 90 * time.Minute},
		{"00:00:01.25", 1250 * time.Millisecond},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDuration(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseDuration_Rejects(t *testing.T) {
	for _, in := range []string{
		"", "abc", "1:2:3:4", "-10", "3_1200", "x_00:00:00",
		"NaN", "Inf", "-Inf", "1e30", "9300000000", "00:00:NaN", "00:00:1e30",
		"200000_00:00:00", "00:00:Inf",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseDuration(in)
			assert.True(t, errors.Is(err, sim.ErrTimeParse), "got %v", err)
		})
	}
}

func TestParseTime_LayoutsAndRoundTrip(t *testing.T) {
	for _, in := range []string{"0001-01-01_00:00:00", "0001-01-01 00:00:00", "0001-01-01T00:00:00", "0001-01-01"} {
		got, err := ParseTime(in)
		require.NoError(t, err, in)
		assert.Equal(t, "0001-01-01_00:00:00", Format(got))
	}
	_, err := ParseTime("2020/01/01")
	assert.True(t, errors.Is(err, sim.ErrTimeParse))
}

func TestParsePeriod_None(t *testing.T) {
	for _, in := range []string{"", "none", "NONE"} {
		_, ok, err := ParsePeriod(in)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	d, ok, err := ParsePeriod("1_00:00:00")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 24*time.Hour, d)

	_, _, err = ParsePeriod("0")
	assert.True(t, errors.Is(err, sim.ErrConfig))
}
