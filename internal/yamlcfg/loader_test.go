package yamlcfg

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	zbhcl "github.com/vk/zigbind/internal/hcl"
	"github.com/vk/zigbind/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeFile(t, "modules.yaml", `
modules:
  - name: math
    flavor: elixir
    source_file: native/math.zig
    exports:
      - add
      - "..."
      - name: mul
        alias: multiply
    attributes:
      otp_app: demo
      pool_size: 4
`)

	configs, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, configs, 1)

	cfg := configs[0]
	assert.Equal(t, "math", cfg.Name)
	assert.Equal(t, model.FlavorElixir, cfg.Flavor)
	assert.Equal(t, "native/math.zig", cfg.SourceFile)
	assert.Equal(t, path, cfg.DefRange.File)
	assert.Equal(t, 3, cfg.DefRange.Line)

	require.Len(t, cfg.Declarations, 3)
	assert.Equal(t, model.Name("add"), cfg.Declarations[0])
	assert.Equal(t, model.Wildcard{}, cfg.Declarations[1])
	mul, ok := cfg.Declarations[2].(model.NameWithOptions)
	require.True(t, ok)
	assert.Equal(t, "multiply", mul.Options.Alias)

	assert.Equal(t, cty.StringVal("demo"), cfg.Attributes["otp_app"])
	assert.Equal(t, cty.NumberIntVal(4), cfg.Attributes["pool_size"])
}

func TestLoadLiteralBlockSource(t *testing.T) {
	path := writeFile(t, "inline.yaml", `
modules:
  - name: inline
    flavor: erlang
    source: |
      export fn add(a: i64, b: i64) i64 {
          return a + b;
      }
    exports:
      - add
`)

	configs, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Contains(t, configs[0].Source, "export fn add")
	// The block scalar's content starts the line after the indicator.
	assert.Equal(t, 6, configs[0].SourceLine)
}

func TestLoadExportAttributes(t *testing.T) {
	path := writeFile(t, "attrs.yaml", `
modules:
  - name: math
    flavor: elixir
    source: x
    exports:
      - name: mul
        alias: multiply
        attributes:
          nif_style: classic
`)

	configs, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, configs, 1)

	require.Len(t, configs[0].Declarations, 1)
	mul, ok := configs[0].Declarations[0].(model.NameWithOptions)
	require.True(t, ok)
	assert.Equal(t, cty.StringVal("classic"), mul.Options.Attrs["nif_style"])
}

func TestLoadErrors(t *testing.T) {
	t.Run("duplicate module name", func(t *testing.T) {
		path := writeFile(t, "dup.yaml", `
modules:
  - name: twice
    flavor: elixir
    source: x
  - name: twice
    flavor: elixir
    source: y
`)
		_, err := NewLoader().Load(context.Background(), path)
		assert.ErrorContains(t, err, "duplicate module definition")
	})

	t.Run("export entry without name", func(t *testing.T) {
		path := writeFile(t, "bad.yaml", `
modules:
  - name: m
    flavor: elixir
    source: x
    exports:
      - alias: only
`)
		_, err := NewLoader().Load(context.Background(), path)
		assert.ErrorContains(t, err, "missing a name")
	})

	t.Run("unparseable file", func(t *testing.T) {
		path := writeFile(t, "broken.yaml", "modules: [\n")
		_, err := NewLoader().Load(context.Background(), path)
		assert.ErrorContains(t, err, "failed to parse manifest")
	})
}

// The two manifest front-ends must produce the same config model for the
// same module.
func TestYAMLMatchesHCL(t *testing.T) {
	yamlPath := writeFile(t, "m.yaml", `
modules:
  - name: math
    flavor: erlang
    source_file: native/math.zig
    working_dir: cache
    exports:
      - add
      - name: mul
        alias: multiply
        attributes:
          pool: dirty
`)
	hclPath := writeFile(t, "m.hcl", `
module "math" {
  flavor      = "erlang"
  source_file = "native/math.zig"
  working_dir = "cache"
  exports     = ["add"]

  export "mul" {
    alias = "multiply"
    attributes = {
      pool = "dirty"
    }
  }
}
`)

	fromYAML, err := NewLoader().Load(context.Background(), yamlPath)
	require.NoError(t, err)
	fromHCL, err := zbhcl.NewLoader().Load(context.Background(), hclPath)
	require.NoError(t, err)

	require.Len(t, fromYAML, 1)
	require.Len(t, fromHCL, 1)

	// Source locations differ between the files; blank them before comparing.
	y, h := *fromYAML[0], *fromHCL[0]
	y.DefRange, h.DefRange = model.SourceRef{}, model.SourceRef{}
	assert.Equal(t, h, y)
}
