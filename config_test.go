package qb

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, ".qpack", cfg.QPack)
	require.Equal(t, ".qubits", cfg.QubitsFile)
	require.Equal(t, ".qspace", cfg.QSpace)
	require.Equal(t, 2*time.Second, cfg.Interval)
	require.Equal(t, 100, cfg.Stalled)
	require.Equal(t, "/mnt", cfg.JobRoot)
	require.Equal(t, "qjob-", cfg.JobPrefix)
	require.Equal(t, []NodeSpec{{Address: "localhost", MaxConcurrency: 2}}, cfg.Nodes)
	require.NotEmpty(t, cfg.Worker)
	require.Equal(t, 16, cfg.FanOut)
	require.Equal(t, "ssh", cfg.Shell)
	require.Equal(t, "rsync -az", cfg.Copy)
	require.Equal(t, DefaultSyncCommand, cfg.SyncCmd)
}

func TestConfigJobspaceFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QSpace = "/var/qspace"
	require.Equal(t, "/var/qspace", cfg.Jobspace())

	cfg.JobspaceURL = "s3://bucket/prefix"
	require.Equal(t, "s3://bucket/prefix", cfg.Jobspace())
}

func TestConfigJobDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JobRoot = "/mnt"
	cfg.JobPrefix = "qjob-"
	require.Equal(t, "/mnt/qjob-abc123", cfg.JobDir("abc123"))
}

func TestLoadConfigMissingFileIsNotError(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), "dist")
	require.NoError(t, err)
	require.Equal(t, "dist", cfg.Profile)
	require.Equal(t, DefaultConfig().FanOut, cfg.FanOut)
}

func TestLoadConfigUnknownProfileErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".qbconfig.yaml")
	writeFile(t, path, "profiles:\n  dist:\n    fanout: 8\n")

	_, err := LoadConfig(path, "staging")
	require.Error(t, err)
}

func TestLoadConfigOverlayAppliesOnlySetKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".qbconfig.yaml")
	writeFile(t, path, `
profiles:
  dist:
    fanout: 32
    nodes:
      - address: node1.internal
        maxConcurrency: 4
      - address: node2.internal
        maxConcurrency: 4
`)

	cfg, err := LoadConfig(path, "dist")
	require.NoError(t, err)
	require.Equal(t, 32, cfg.FanOut)
	require.Equal(t, []NodeSpec{
		{Address: "node1.internal", MaxConcurrency: 4},
		{Address: "node2.internal", MaxConcurrency: 4},
	}, cfg.Nodes)
	// untouched keys retain their defaults
	require.Equal(t, ".qpack", cfg.QPack)
	require.Equal(t, "ssh", cfg.Shell)
}

func TestLoadConfigEmptyProfileSkipsOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".qbconfig.yaml")
	writeFile(t, path, "profiles:\n  dist:\n    fanout: 32\n")

	cfg, err := LoadConfig(path, "")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig().FanOut, cfg.FanOut)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
