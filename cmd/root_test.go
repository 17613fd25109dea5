package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flagCommand mirrors the run flags on a fresh command so tests do not share
// parsed state with runCmd.
func flagCommand() *cobra.Command {
	c := &cobra.Command{}
	c.Flags().StringVar(&configPath, "config", "", "")
	c.Flags().IntVar(&ranks, "ranks", 1, "")
	c.Flags().IntVar(&blocksPerRank, "blocks-per-rank", 1, "")
	c.Flags().StringVar(&outputDir, "output-dir", "output", "")
	c.Flags().StringVar(&runDuration, "run-duration", "", "")
	c.Flags().BoolVar(&doRestart, "restart", false, "")
	return c
}

func TestLoadConfig_FileValuesSurviveUnsetFlags(t *testing.T) {
	// GIVEN a config file naming two ranks and its own output directory
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ranks: 2\noutput_dir: from-file\nrun_duration: \"02:00:00\"\n"), 0o644))
	c := flagCommand()

	// WHEN only the config flag is given
	require.NoError(t, c.Flags().Parse([]string{"--config", path}))
	cfg := loadConfig(c)

	// THEN flag defaults do not override the file
	assert.Equal(t, 2, cfg.Ranks)
	assert.Equal(t, "from-file", cfg.OutputDir)
	assert.Equal(t, "02:00:00", cfg.RunDuration)
	assert.False(t, cfg.DoRestart)
}

func TestLoadConfig_ExplicitFlagsOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ranks: 2\nrun_duration: \"02:00:00\"\n"), 0o644))
	c := flagCommand()

	require.NoError(t, c.Flags().Parse([]string{
		"--config", path, "--ranks", "4", "--blocks-per-rank", "2",
		"--output-dir", "elsewhere", "--run-duration", "00:30:00", "--restart",
	}))
	cfg := loadConfig(c)

	assert.Equal(t, 4, cfg.Ranks)
	assert.Equal(t, 2, cfg.BlocksPerRank)
	assert.Equal(t, "elsewhere", cfg.OutputDir)
	assert.Equal(t, "00:30:00", cfg.RunDuration)
	assert.True(t, cfg.DoRestart)
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	c := flagCommand()
	require.NoError(t, c.Flags().Parse(nil))
	cfg := loadConfig(c)
	assert.Equal(t, "1_00:00:00", cfg.RunDuration)
	assert.Equal(t, 1, cfg.Ranks)
}
