package ocean_test

import (
	"testing"

	"go.uber.org/goleak"

	// Registers the reference collaborators with ocean.New*Func.
	_ "github.com/ocean-sim/ocean-sim/sim/process"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
