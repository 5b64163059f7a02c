package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const hclManifest = `
module "math" {
  flavor = "elixir"
  source = <<-ZIG
    /// Adds two integers.
    export fn add(a: i64, b: i64) i64 {
        return a + b;
    }
  ZIG
  exports = ["add"]
}
`

func TestRunDryRun(t *testing.T) {
	dir := t.TempDir()
	manifest := writeFile(t, dir, "modules.hcl", hclManifest)
	outDir := filepath.Join(dir, "out")

	var buf bytes.Buffer
	a := NewApp(&buf, &Config{
		ManifestPath: manifest,
		OutDir:       outDir,
		EnvID:        "test",
		DryRun:       true,
		LogLevel:     "error",
	})
	require.NoError(t, a.Run(context.Background()))

	rendered, err := os.ReadFile(filepath.Join(outDir, "math.ex"))
	require.NoError(t, err)
	assert.Contains(t, string(rendered), "defmodule Math do")
	assert.Contains(t, string(rendered), "def add(_arg1, _arg2)")
}

func TestRunYAMLManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := writeFile(t, dir, "modules.yaml", `
modules:
  - name: echo
    flavor: erlang
    source: |
      export fn echo(x: i64) i64 {
          return x;
      }
    exports:
      - echo
`)

	var buf bytes.Buffer
	a := NewApp(&buf, &Config{
		ManifestPath: manifest,
		OutDir:       filepath.Join(dir, "out"),
		EnvID:        "test",
		DryRun:       true,
		LogLevel:     "error",
	})
	require.NoError(t, a.Run(context.Background()))

	rendered, err := os.ReadFile(filepath.Join(dir, "out", "echo.erl"))
	require.NoError(t, err)
	assert.Contains(t, string(rendered), "-module(echo).")
}

func TestRunScansDirectories(t *testing.T) {
	dir := t.TempDir()
	manifests := filepath.Join(dir, "manifests")
	require.NoError(t, os.MkdirAll(manifests, 0o755))
	writeFile(t, manifests, "math.hcl", hclManifest)
	writeFile(t, manifests, "notes.txt", "not a manifest")

	var buf bytes.Buffer
	a := NewApp(&buf, &Config{
		ManifestPath: manifests,
		OutDir:       filepath.Join(dir, "out"),
		EnvID:        "test",
		DryRun:       true,
		LogLevel:     "error",
	})
	require.NoError(t, a.Run(context.Background()))

	_, err := os.Stat(filepath.Join(dir, "out", "math.ex"))
	assert.NoError(t, err)
}

func TestRunDuplicateModuleAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	manifests := filepath.Join(dir, "manifests")
	require.NoError(t, os.MkdirAll(manifests, 0o755))
	writeFile(t, manifests, "a.hcl", hclManifest)
	writeFile(t, manifests, "b.hcl", hclManifest)

	var buf bytes.Buffer
	a := NewApp(&buf, &Config{
		ManifestPath: manifests,
		EnvID:        "test",
		DryRun:       true,
		LogLevel:     "error",
	})
	err := a.Run(context.Background())
	assert.ErrorContains(t, err, "already defined")
}

func TestRunMissingManifestPath(t *testing.T) {
	var buf bytes.Buffer
	a := NewApp(&buf, &Config{
		ManifestPath: filepath.Join(t.TempDir(), "nope.hcl"),
		DryRun:       true,
		LogLevel:     "error",
	})
	assert.Error(t, a.Run(context.Background()))
}
