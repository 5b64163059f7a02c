package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/zigbind/internal/model"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modules.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `
module "math" {
  flavor      = "elixir"
  source_file = "native/math.zig"
  working_dir = "zig_cache"
  exports     = ["add", "sub", "..."]

  export "mul" {
    alias     = "multiply"
    signature = "fn (i64, i64) i64"
  }

  attributes = {
    otp_app = "demo"
  }
}
`)

	configs, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, configs, 1)

	cfg := configs[0]
	assert.Equal(t, "math", cfg.Name)
	assert.Equal(t, model.FlavorElixir, cfg.Flavor)
	assert.Equal(t, "native/math.zig", cfg.SourceFile)
	assert.Equal(t, "zig_cache", cfg.WorkingDir)
	assert.Equal(t, path, cfg.DefRange.File)
	assert.Equal(t, 3, cfg.DefRange.Line)

	require.Len(t, cfg.Declarations, 4)
	assert.Equal(t, model.Name("add"), cfg.Declarations[0])
	assert.Equal(t, model.Name("sub"), cfg.Declarations[1])
	assert.Equal(t, model.Wildcard{}, cfg.Declarations[2])
	mul, ok := cfg.Declarations[3].(model.NameWithOptions)
	require.True(t, ok)
	assert.Equal(t, "mul", mul.Name)
	assert.Equal(t, "multiply", mul.Options.Alias)
	assert.Equal(t, "fn (i64, i64) i64", mul.Options.SignatureHint)

	require.Contains(t, cfg.Attributes, "otp_app")
	assert.Equal(t, cty.StringVal("demo"), cfg.Attributes["otp_app"])
}

func TestLoadLiteralSource(t *testing.T) {
	path := writeManifest(t, `
module "inline" {
  flavor = "erlang"
  source = <<-ZIG
    export fn add(a: i64, b: i64) i64 {
        return a + b;
    }
  ZIG
  exports = ["add"]
}
`)

	configs, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, model.FlavorErlang, configs[0].Flavor)
	assert.Contains(t, configs[0].Source, "export fn add")
	// The heredoc opens at line 4; its content starts at line 5.
	assert.Equal(t, 5, configs[0].SourceLine)
}

func TestLoadMultipleModules(t *testing.T) {
	path := writeManifest(t, `
module "a" {
  flavor  = "elixir"
  source  = "export fn f() void {}"
  exports = ["f"]
}

module "b" {
  flavor  = "elixir"
  source  = "export fn g() void {}"
  exports = ["g"]
}
`)

	configs, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, "a", configs[0].Name)
	assert.Equal(t, "b", configs[1].Name)
	// A quoted source keeps its own line.
	assert.Equal(t, 4, configs[0].SourceLine)
	assert.Equal(t, 10, configs[1].SourceLine)
}

func TestLoadErrors(t *testing.T) {
	t.Run("duplicate module name", func(t *testing.T) {
		path := writeManifest(t, `
module "twice" {
  flavor = "elixir"
  source = "x"
}

module "twice" {
  flavor = "elixir"
  source = "y"
}
`)
		_, err := NewLoader().Load(context.Background(), path)
		assert.ErrorContains(t, err, "Duplicate module definition")
	})

	t.Run("missing flavor", func(t *testing.T) {
		path := writeManifest(t, `
module "m" {
  source = "x"
}
`)
		_, err := NewLoader().Load(context.Background(), path)
		assert.Error(t, err)
	})

	t.Run("non-string export entry", func(t *testing.T) {
		path := writeManifest(t, `
module "m" {
  flavor  = "elixir"
  source  = "x"
  exports = [42]
}
`)
		_, err := NewLoader().Load(context.Background(), path)
		assert.ErrorContains(t, err, "Invalid export name")
	})

	t.Run("unparseable file", func(t *testing.T) {
		path := writeManifest(t, `module "m" {`)
		_, err := NewLoader().Load(context.Background(), path)
		assert.ErrorContains(t, err, "failed to parse manifest")
	})
}
