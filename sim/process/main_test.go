package process

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ocean-sim/ocean-sim/internal/testutil"
	"github.com/ocean-sim/ocean-sim/sim/block"
	"github.com/ocean-sim/ocean-sim/sim/comm"
	"github.com/ocean-sim/ocean-sim/sim/config"
	"github.com/ocean-sim/ocean-sim/sim/ocean"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// Channel indices for the 8x6 test mesh (see testutil.SmallConfig).
const (
	nx        = 8
	westCell  = 3*nx + 3 // (3, 3), three levels
	eastCell  = 3*nx + 4 // (4, 3)
	interiorU = 3*nx + 4 // normal points from westCell to eastCell
	interiorV = 48 + 3*nx + 4
	wallV     = 48 + 4
	wallCell  = 4 // (4, 0), two levels
	shelfU    = 4 // west of wallCell
)

// initialized returns n cold-started, initialized blocks and their collaborators.
func initialized(t *testing.T, cfg *config.Config, n int) ([]*block.Block, ocean.Collaborators) {
	t.Helper()
	blocks := testutil.Blocks(t, cfg, n)
	ColdStart(blocks, cfg)
	SeedForcing(blocks, cfg)
	collab, err := ocean.NewCollaborators(cfg)
	require.NoError(t, err)
	env := &ocean.InitEnv{Config: cfg, Comm: comm.Serial{}, Collaborators: collab}
	require.NoError(t, ocean.InitializeBlocks(context.Background(), blocks, 0, env))
	return blocks, collab
}
