package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/vk/zigbind/internal/ctxlog"
	"github.com/vk/zigbind/internal/fsutil"
	"github.com/vk/zigbind/internal/model"
	"github.com/vk/zigbind/internal/pipeline"
	"github.com/vk/zigbind/internal/sema"
	"github.com/vk/zigbind/internal/staging"
	"github.com/vk/zigbind/internal/zigc"
)

// Run discovers the manifests, loads every module config, and builds each
// module through the pipeline. Independent modules build concurrently; any
// single failure cancels the remaining builds and fails the run.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	configs, err := a.loadConfigs(ctx)
	if err != nil {
		return err
	}
	if len(configs) == 0 {
		a.logger.Warn("No module definitions found.", "path", a.cfg.ManifestPath)
		return nil
	}

	svc, err := a.services(ctx)
	if err != nil {
		return err
	}

	if a.cfg.OutDir != "" {
		if err := os.MkdirAll(a.cfg.OutDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	a.logger.Info("Starting module builds.",
		"modules", len(configs), "env", svc.Staging.EnvID(), "dry_run", a.cfg.DryRun)

	g, gctx := errgroup.WithContext(ctx)
	for _, cfg := range configs {
		cfg := cfg
		g.Go(func() error {
			result, err := pipeline.Build(gctx, cfg, svc)
			if err != nil {
				return fmt.Errorf("module %q: %w", cfg.Name, err)
			}
			return a.writeResult(result)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	a.logger.Info("All module builds finished.", "modules", len(configs))
	return nil
}

// loadConfigs finds every manifest under the configured path and translates
// it through the loader matching its extension.
func (a *App) loadConfigs(ctx context.Context) ([]*model.Config, error) {
	info, err := os.Stat(a.cfg.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("manifest path: %w", err)
	}

	var files []string
	if info.IsDir() {
		files, err = fsutil.FindFilesByExtensions(a.cfg.ManifestPath, ".hcl", ".yaml", ".yml")
		if err != nil {
			return nil, fmt.Errorf("scanning manifest directory: %w", err)
		}
	} else {
		files = []string{a.cfg.ManifestPath}
	}

	var configs []*model.Config
	seen := make(map[string]string)
	for _, file := range files {
		loader := a.loaderFor(file)
		if loader == nil {
			return nil, fmt.Errorf("unsupported manifest format: %s", file)
		}
		fileConfigs, err := loader.Load(ctx, file)
		if err != nil {
			return nil, err
		}
		for _, cfg := range fileConfigs {
			if prev, dup := seen[cfg.Name]; dup {
				return nil, &model.ConfigError{
					Module: cfg.Name,
					Ref:    cfg.DefRange,
					Detail: fmt.Sprintf("module already defined in %s", prev),
				}
			}
			seen[cfg.Name] = file
		}
		configs = append(configs, fileConfigs...)
	}
	return configs, nil
}

// services assembles the pipeline's external collaborators from the app
// config. In dry-run mode the toolchain is never touched.
func (a *App) services(ctx context.Context) (pipeline.Services, error) {
	svc := pipeline.Services{
		Staging:  staging.New("", a.cfg.EnvID),
		SourceFS: osFS{},
	}

	if a.cfg.DryRun {
		svc.Sema = &sema.SourceAnalyzer{}
		return svc, nil
	}

	toolchain := zigc.New(a.cfg.ZigPath)
	svc.Sema = &sema.SourceAnalyzer{Check: toolchain.AstCheck}
	svc.Format = toolchain.Fmt
	svc.Compiler = toolchain
	return svc, nil
}

// writeResult writes the rendered host glue next to the other outputs.
func (a *App) writeResult(result pipeline.Result) error {
	outDir := a.cfg.OutDir
	if outDir == "" {
		outDir = "."
	}
	path := filepath.Join(outDir, result.HostFile)
	if err := os.WriteFile(path, []byte(result.HostSource), 0o644); err != nil {
		return fmt.Errorf("writing host glue for module %q: %w", result.Descriptor.Config.Name, err)
	}
	a.logger.Info("Rendered host module.",
		"module", result.Descriptor.Config.Name,
		"file", path,
		"exports", len(result.Descriptor.Exports),
		"dependencies", len(result.Descriptor.DepSet))
	return nil
}
