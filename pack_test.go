package qb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func packTestTable(t *testing.T) *RuleTable {
	t.Helper()
	table := NewRuleTable()
	require.NoError(t, table.Add(`^default$`, Fixed("a.txt"), "default", noopRecipe))
	require.NoError(t, table.Add(`^a\.txt$`, Fixed(), "leaf", noopRecipe))
	return table
}

func TestPackCopiesTreeAndWritesManifest(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "b.txt"), []byte("world"), 0o644))

	cfg := DefaultConfig()
	qp, err := Pack(packTestTable(t), cfg, src, false)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(src, cfg.QPack), qp)

	data, err := os.ReadFile(filepath.Join(qp, "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))

	data, err = os.ReadFile(filepath.Join(qp, "sub", "b.txt"))
	require.NoError(t, err)
	require.Equal(t, "world", string(data))

	manifest, err := os.ReadFile(filepath.Join(qp, cfg.QubitsFile))
	require.NoError(t, err)
	require.Contains(t, string(manifest), "default")
}

func TestPackExcludesDotfilesAndIgnoreGlobs(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, ".secret"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "build.o"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "keep.txt"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(src, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, ".git", "HEAD"), []byte("x"), 0o644))

	cfg := DefaultConfig()
	qp, err := Pack(packTestTable(t), cfg, src, false, "a.txt")
	require.NoError(t, err)

	require.NoFileExists(t, filepath.Join(qp, ".secret"))
	require.NoFileExists(t, filepath.Join(qp, "build.o"))
	require.NoDirExists(t, filepath.Join(qp, ".git"))
	require.FileExists(t, filepath.Join(qp, "keep.txt"))
}

func TestPackRemovesPriorQpack(t *testing.T) {
	src := t.TempDir()
	cfg := DefaultConfig()
	qp := filepath.Join(src, cfg.QPack)
	require.NoError(t, os.MkdirAll(qp, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(qp, "stale.txt"), []byte("old"), 0o644))

	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("x"), 0o644))
	_, err := Pack(packTestTable(t), cfg, src, false)
	require.NoError(t, err)

	require.NoFileExists(t, filepath.Join(qp, "stale.txt"))
}

func TestPackCustomIgnorePatterns(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.log"), []byte("x"), 0o644))

	cfg := DefaultConfig()
	cfg.Ignore = []string{"*.log"}
	qp, err := Pack(packTestTable(t), cfg, src, false)
	require.NoError(t, err)

	require.NoFileExists(t, filepath.Join(qp, "notes.log"))
	require.FileExists(t, filepath.Join(qp, "a.txt"))
}
