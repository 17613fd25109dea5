package sim

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf_MapsWrappedSentinels(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, CodeOK},
		{"config", fmt.Errorf("%w: bad dt", ErrConfig), CodeConfig},
		{"time parse", fmt.Errorf("clock: %w", ErrTimeParse), CodeTimeParse},
		{"init", fmt.Errorf("%w: block 3", ErrInit), CodeInit},
		{"clock", ErrClockExhausted, CodeClockExhausted},
		{"comm", fmt.Errorf("max: %w", ErrComm), CodeComm},
		{"io", fmt.Errorf("%w: disk full", ErrIO), CodeIO},
		{"foreign", errors.New("boom"), CodeOther},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CodeOf(tc.err))
		})
	}
}

func TestCodeOf_JoinedErrorsCombineBits(t *testing.T) {
	// GIVEN an error chain carrying two taxonomy members
	err := errors.Join(fmt.Errorf("%w: a", ErrInit), fmt.Errorf("%w: b", ErrComm))

	// THEN both bits are present and the code is fatal
	c := CodeOf(err)
	assert.Equal(t, CodeInit|CodeComm, c)
	assert.True(t, c.Failed())
	assert.False(t, CodeOK.Failed())
}
