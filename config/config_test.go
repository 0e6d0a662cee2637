package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Swind/go-stealpool/core"
)

// TestLoad_Defaults verifies defaults when neither file nor env is set
// Given: No config file and no STEALPOOL_* variables
// When: Load is called with an empty path
// Then: Every option carries its default
func TestLoad_Defaults(t *testing.T) {
	// Act
	opts, err := Load("")

	// Assert
	require.NoError(t, err)
	require.Equal(t, runtime.GOMAXPROCS(0), opts.Workers)
	require.Equal(t, 4, opts.StealProbeLimit)
	require.Equal(t, 100, opts.HistoryCapacity)
	require.Contains(t, opts.Name, "pool-")
	require.NotNil(t, opts.Logger)
	require.NotNil(t, opts.Metrics)
}

// TestLoad_File verifies options are read from a YAML file
// Given: A YAML file setting all keys
// When: Load is called with its path
// Then: The file values are used
func TestLoad_File(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "stealpool.yaml")
	content := "name: fanout\nworkers: 8\nsteal_probe_limit: 2\nhistory_capacity: 10\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// Act
	opts, err := Load(path)

	// Assert
	require.NoError(t, err)
	require.Equal(t, "fanout", opts.Name)
	require.Equal(t, 8, opts.Workers)
	require.Equal(t, 2, opts.StealProbeLimit)
	require.Equal(t, 10, opts.HistoryCapacity)
}

// TestLoad_EnvOverridesFile verifies environment precedence
// Given: A file with workers=8 and STEALPOOL_WORKERS=3
// When: Load is called
// Then: The environment value wins, other file values stay
func TestLoad_EnvOverridesFile(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "stealpool.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"from-file","workers":8}`), 0o600))
	t.Setenv("STEALPOOL_WORKERS", "3")
	t.Setenv("STEALPOOL_STEAL_PROBE_LIMIT", "-1")

	// Act
	opts, err := Load(path)

	// Assert
	require.NoError(t, err)
	require.Equal(t, "from-file", opts.Name)
	require.Equal(t, 3, opts.Workers)
	require.Equal(t, -1, opts.StealProbeLimit)
}

// TestLoad_Errors verifies invalid input is reported
// Main test items:
// 1. A missing file fails
// 2. A negative worker count fails with ErrInvalidWorkerCount
func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("negative workers", func(t *testing.T) {
		t.Setenv("STEALPOOL_WORKERS", "-2")
		_, err := Load("")
		require.ErrorIs(t, err, core.ErrInvalidWorkerCount)
	})
}
