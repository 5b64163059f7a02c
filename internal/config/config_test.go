package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/zigbind/internal/model"
)

func validConfig() *model.Config {
	return &model.Config{
		Name:     "math",
		Flavor:   model.FlavorElixir,
		Source:   "export fn add() void {}\n",
		DefRange: model.SourceRef{File: "grid.hcl", Line: 3},
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, Validate(validConfig()))
	})

	t.Run("both source modes is fatal with location", func(t *testing.T) {
		cfg := validConfig()
		cfg.SourceFile = "native/math.zig"
		err := Validate(cfg)
		require.Error(t, err)

		var cfgErr *model.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "grid.hcl", cfgErr.Ref.File)
		assert.Equal(t, 3, cfgErr.Ref.Line)
		assert.ErrorContains(t, err, "mutually exclusive")
	})

	t.Run("neither source mode is fatal", func(t *testing.T) {
		cfg := validConfig()
		cfg.Source = ""
		assert.ErrorContains(t, Validate(cfg), "one of 'source' or 'source_file' is required")
	})

	t.Run("unknown flavor is fatal", func(t *testing.T) {
		cfg := validConfig()
		cfg.Flavor = "haskell"
		assert.ErrorContains(t, Validate(cfg), "unknown flavor")
	})

	t.Run("empty name is fatal", func(t *testing.T) {
		cfg := validConfig()
		cfg.Name = ""
		assert.ErrorContains(t, Validate(cfg), "name must not be empty")
	})
}
