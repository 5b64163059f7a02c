// Package config defines the format-agnostic configuration contract between
// manifest front-ends and the rest of the pipeline. Concrete loaders live in
// the hcl and yamlcfg packages; everything downstream consumes only
// model.Config values and never sees a parser type.
package config

import (
	"context"
	"fmt"

	"github.com/vk/zigbind/internal/model"
)

// Loader translates manifest files into the format-agnostic module configs.
type Loader interface {
	// Load parses every manifest at the given paths and returns one Config
	// per module block found, in file order.
	Load(ctx context.Context, paths ...string) ([]*model.Config, error)
}

// Validate performs the pre-staging checks on one module config. Every
// violation is a configuration error carrying the module block's location.
func Validate(cfg *model.Config) error {
	fail := func(detail string) error {
		return &model.ConfigError{Module: cfg.Name, Ref: cfg.DefRange, Detail: detail}
	}

	if cfg.Name == "" {
		return fail("module name must not be empty")
	}
	if cfg.Source != "" && cfg.SourceFile != "" {
		return fail("'source' and 'source_file' are mutually exclusive")
	}
	if cfg.Source == "" && cfg.SourceFile == "" {
		return fail("one of 'source' or 'source_file' is required")
	}
	if !model.KnownFlavor(cfg.Flavor) {
		return fail(fmt.Sprintf("unknown flavor %q: must be %q or %q",
			cfg.Flavor, model.FlavorElixir, model.FlavorErlang))
	}
	return nil
}
