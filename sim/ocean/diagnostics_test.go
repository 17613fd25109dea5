package ocean_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocean-sim/ocean-sim/internal/testutil"
	"github.com/ocean-sim/ocean-sim/sim/block"
	"github.com/ocean-sim/ocean-sim/sim/clock"
	"github.com/ocean-sim/ocean-sim/sim/comm"
	"github.com/ocean-sim/ocean-sim/sim/ocean"
	"github.com/ocean-sim/ocean-sim/sim/trace"
)

var statsTime = time.Date(1, 1, 1, 6, 0, 0, 0, time.UTC)

// statsOver computes the cold-start statistics of a four-block channel
// spread over the given number of ranks.
func statsOver(t *testing.T, ranks int) *ocean.GlobalStats {
	t.Helper()
	cfg := testutil.SmallConfig(t.TempDir())
	blocks := coldBlocks(t, cfg, 4)

	g, err := comm.NewGroup(ranks)
	require.NoError(t, err)
	var mu sync.Mutex
	var got *ocean.GlobalStats
	err = g.Run(context.Background(), func(ctx context.Context, c comm.Communicator) error {
		mine := blocks[c.Rank()*len(blocks)/ranks : (c.Rank()+1)*len(blocks)/ranks]
		stats, err := ocean.RunGlobalDiagnostics(ctx, mine, 36, statsTime, 10*time.Minute, c, nil)
		if err != nil {
			return err
		}
		if c.Rank() == 0 {
			mu.Lock()
			got = stats
			mu.Unlock()
		}
		return nil
	})
	require.NoError(t, err)
	return got
}

func TestRunGlobalDiagnostics_ColdStartChannel(t *testing.T) {
	stats := statsOver(t, 1)

	// 8 columns of 60 m along each wall, 32 of 140 m inside; 1e8 m^2 each.
	assert.Equal(t, 48*1e8, stats.Area)
	testutil.AssertFloat64Equal(t, "volume", 5.44e11, stats.Volume, 1e-12)
	assert.Equal(t, 20.0, stats.MinThickness)
	assert.Equal(t, 80.0, stats.MaxThickness)
	assert.Equal(t, 0.0, stats.MinSSH)
	assert.Equal(t, 0.0, stats.MaxSSH)
	assert.InDelta(t, 35, stats.TracerMean[block.Salinity], 1e-9)
	assert.Less(t, stats.TracerMin[block.Temperature], stats.TracerMax[block.Temperature])

	cfg := testutil.SmallConfig(t.TempDir())
	assert.Greater(t, stats.KineticEnergy, 0.0)
	assert.Greater(t, stats.MaxSpeed, 0.0)
	assert.LessOrEqual(t, stats.MaxSpeed, cfg.InitialState.JetSpeed)
	assert.InDelta(t, stats.MaxSpeed*600/cfg.Mesh.Dc, stats.CFL, 1e-15)
	assert.Equal(t, 36, stats.Step)
	assert.True(t, stats.Time.Equal(statsTime))

	values := stats.Values()
	assert.Equal(t, stats.Volume, values["volume"])
	assert.Equal(t, stats.TracerMean[block.Temperature], values["mean_temperature"])
	assert.Equal(t, stats.TracerMax[block.Salinity], values["max_salinity"])
}

// TestRunGlobalDiagnostics_IndependentOfRankCount verifies that ordered
// reductions make the statistics bit-identical however blocks are spread
// over ranks.
func TestRunGlobalDiagnostics_IndependentOfRankCount(t *testing.T) {
	want := statsOver(t, 1)
	for _, ranks := range []int{2, 4} {
		assert.Equal(t, want, statsOver(t, ranks), "%d ranks", ranks)
	}

	// AND a serial communicator holding all four blocks agrees
	cfg := testutil.SmallConfig(t.TempDir())
	serial, err := ocean.RunGlobalDiagnostics(context.Background(), coldBlocks(t, cfg, 4), 36, statsTime,
		10*time.Minute, comm.Serial{}, nil)
	require.NoError(t, err)
	assert.Equal(t, want, serial)
}

func TestMaybeRunDiagnostics_FollowsStatsAlarm(t *testing.T) {
	// GIVEN a clock with a 30 minute stats alarm
	cfg := testutil.SmallConfig(t.TempDir())
	blocks := coldBlocks(t, cfg, 1)
	clk, err := clock.New(cfg.ClockSettings(""))
	require.NoError(t, err)
	require.NoError(t, clk.AddAlarm(clock.AlarmStats, clk.Start().Add(30*time.Minute), 30*time.Minute))
	rt := trace.NewRunTrace(trace.TraceConfig{})
	ctx := context.Background()

	var reports []int
	for step := 0; step < 6; step++ {
		stats, err := ocean.MaybeRunDiagnostics(ctx, clk, blocks, comm.Serial{}, rt)
		require.NoError(t, err)
		if stats != nil {
			reports = append(reports, stats.Step)
		}
		require.NoError(t, clk.Advance())
	}

	// THEN the alarm rings again once the clock reaches its next fire time
	assert.True(t, clk.IsRinging(clock.AlarmStats))

	// WHEN the final step is checked
	stats, err := ocean.MaybeRunDiagnostics(ctx, clk, blocks, comm.Serial{}, rt)
	require.NoError(t, err)
	require.NotNil(t, stats)
	reports = append(reports, stats.Step)

	// THEN statistics are computed only on ringing steps, and each resets the alarm
	assert.Equal(t, []int{3, 6}, reports)
	assert.False(t, clk.IsRinging(clock.AlarmStats))
	next, ok := clk.NextFire(clock.AlarmStats)
	require.True(t, ok)
	assert.Equal(t, clk.Start().Add(90*time.Minute), next)

	require.Len(t, rt.Stats, 2)
	assert.Equal(t, "0001-01-01_00:30:00", rt.Stats[0].SimTime)
	assert.Equal(t, "0001-01-01_01:00:00", rt.Stats[1].SimTime)
	timer, ok := rt.Timer("global diagnostics")
	require.True(t, ok)
	assert.Equal(t, 2, timer.Calls)
}
