// Package app wires the CLI configuration, the manifest loaders, and the
// build pipeline into one application instance with its own isolated logger.
package app

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/vk/zigbind/internal/config"
	"github.com/vk/zigbind/internal/hcl"
	"github.com/vk/zigbind/internal/yamlcfg"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ManifestPath is a single manifest file or a directory to scan.
	ManifestPath string

	// OutDir is where rendered host glue is written.
	OutDir string

	// EnvID keys the staging location. Empty means a random identifier.
	EnvID string

	// ZigPath is the zig executable.
	ZigPath string

	// DryRun stops before the external compiler invocation.
	DryRun bool

	LogFormat string
	LogLevel  string
}

// App encapsulates the application's dependencies and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	cfg     *Config
	loaders map[string]config.Loader
}

// NewApp is the constructor for the main application. The loader for each
// manifest format is selected by file extension.
func NewApp(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)

	return &App{
		outW:   outW,
		logger: logger,
		cfg:    cfg,
		loaders: map[string]config.Loader{
			".hcl":  hcl.NewLoader(),
			".yaml": yamlcfg.NewLoader(),
			".yml":  yamlcfg.NewLoader(),
		},
	}
}

// loaderFor returns the manifest loader for a file path, or nil when the
// extension is not a recognized manifest format.
func (a *App) loaderFor(path string) config.Loader {
	return a.loaders[strings.ToLower(filepath.Ext(path))]
}
