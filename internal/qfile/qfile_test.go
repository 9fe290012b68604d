package qfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeQfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Qfile")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFixedDeps(t *testing.T) {
	path := writeQfile(t, `
rules:
  - id: default
    pattern: "^default$"
    deps: ["build/foo.o"]
  - id: compile
    pattern: "^build/foo\\.o$"
    deps: []
`)
	table, err := Load(path)
	require.NoError(t, err)

	_, deps, err := table.Match("default")
	require.NoError(t, err)
	require.Equal(t, []string{"build/foo.o"}, deps)
}

func TestLoadDepsTemplateUsesCaptureGroups(t *testing.T) {
	path := writeQfile(t, `
rules:
  - id: compile
    pattern: "^build/(\\w+)\\.o$"
    depsTemplate: "src/{{index . 0}}.c"
`)
	table, err := Load(path)
	require.NoError(t, err)

	_, deps, err := table.Match("build/foo.o")
	require.NoError(t, err)
	require.Equal(t, []string{"src/foo.c"}, deps)
}

func TestLoadDefaultsIDToPattern(t *testing.T) {
	path := writeQfile(t, `
rules:
  - pattern: "^all$"
    deps: []
`)
	table, err := Load(path)
	require.NoError(t, err)

	rule, _, err := table.Match("all")
	require.NoError(t, err)
	require.Equal(t, "^all$", rule.RecipeID)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestLoadInvalidPattern(t *testing.T) {
	path := writeQfile(t, `
rules:
  - id: bad
    pattern: "("
`)
	_, err := Load(path)
	require.Error(t, err)
}
