// Package pipeline sequences one module build from raw manifest config to
// rendered host glue.
//
// The orchestrator is a strictly ordered list of stages. Every stage
// consumes the whole Descriptor and returns a new one; the first failing
// stage aborts the build and no partial module is ever handed to rendering.
// There is no retry; a failed build is re-triggered from scratch by the
// invoking host compile cycle.
package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/vk/zigbind/internal/config"
	"github.com/vk/zigbind/internal/ctxlog"
	"github.com/vk/zigbind/internal/declare"
	"github.com/vk/zigbind/internal/deps"
	"github.com/vk/zigbind/internal/docbind"
	"github.com/vk/zigbind/internal/manifest"
	"github.com/vk/zigbind/internal/model"
	"github.com/vk/zigbind/internal/render"
	"github.com/vk/zigbind/internal/resources"
	"github.com/vk/zigbind/internal/sema"
	"github.com/vk/zigbind/internal/staging"
	"github.com/vk/zigbind/internal/zigc"
)

// Compiler performs the real build of the rendered wrapper source. A nil
// Compiler in Services skips the invocation (dry-run).
type Compiler interface {
	Compile(ctx context.Context, desc model.Descriptor) error
}

// Services are the external collaborators one build consumes. Sema and
// Staging are required; the rest are optional.
type Services struct {
	Staging *staging.Area
	Sema    sema.Analyzer

	// SourceFS is where external source files and dependencies are read
	// from. Paths are resolved relative to the manifest's directory.
	SourceFS fs.FS

	// Format canonicalizes the staged primary source in place, typically
	// zigc.Fmt. Nil skips formatting.
	Format func(ctx context.Context, path string) error

	// Compiler is the external native compiler. Nil skips the compile
	// invocation entirely.
	Compiler Compiler

	// ModeFn maps concurrency modes to resource descriptors. Nil uses
	// resources.ForMode.
	ModeFn resources.ModeFunc
}

// Result is the terminal success state of one build.
type Result struct {
	Descriptor model.Descriptor

	// HostFile and HostSource are the rendered host glue.
	HostFile   string
	HostSource string
}

type stage struct {
	name string
	run  func(ctx context.Context, svc Services, desc model.Descriptor) (model.Descriptor, error)
}

// stages run in this order; each one owns the Descriptor fields it fills.
var stages = []stage{
	{"validate", stageValidate},
	{"read-source", stageReadSource},
	{"stage-source", stageStage},
	{"build-manifest", stageManifest},
	{"analyze", stageAnalyze},
	{"resolve-deps", stageResolveDeps},
	{"verify", stageVerify},
	{"aggregate-resources", stageAggregate},
	{"bind-docs", stageBindDocs},
	{"render-wrapper", stageRenderWrapper},
	{"compile", stageCompile},
	{"unload-manifest", stageUnloadManifest},
}

// Build runs the whole pipeline for one module config. On failure the
// partially built Descriptor is discarded wholesale, which also releases
// the manifest tracking it carried.
func Build(ctx context.Context, cfg *model.Config, svc Services) (Result, error) {
	logger := ctxlog.FromContext(ctx).With("module", cfg.Name)
	ctx = ctxlog.WithLogger(ctx, logger)

	desc := model.Descriptor{Config: *cfg}

	for _, st := range stages {
		var err error
		desc, err = st.run(ctx, svc, desc)
		if err != nil {
			logger.Debug("Pipeline stage failed; aborting build.", "stage", st.name, "error", err)
			return Result{}, fmt.Errorf("stage %s: %w", st.name, err)
		}
		logger.Debug("Pipeline stage complete.", "stage", st.name)
	}

	return dispatchRender(ctx, desc)
}

func stageValidate(ctx context.Context, svc Services, desc model.Descriptor) (model.Descriptor, error) {
	if err := config.Validate(&desc.Config); err != nil {
		return desc, err
	}
	set, err := declare.Normalize(ctx, desc.Config.Declarations)
	if err != nil {
		return desc, &model.ConfigError{
			Module: desc.Config.Name,
			Ref:    desc.Config.DefRange,
			Detail: err.Error(),
		}
	}
	desc.Decl = set
	return desc, nil
}

func stageReadSource(ctx context.Context, svc Services, desc model.Descriptor) (model.Descriptor, error) {
	if desc.Config.Source != "" {
		desc.RawSource = desc.Config.Source
		return desc, nil
	}
	src, err := fs.ReadFile(svc.SourceFS, sourcePath(desc))
	if err != nil {
		return desc, &model.DependencyError{Path: sourcePath(desc), Err: err}
	}
	desc.RawSource = string(src)
	return desc, nil
}

func stageStage(ctx context.Context, svc Services, desc model.Descriptor) (model.Descriptor, error) {
	dir, err := svc.Staging.ModuleDir(desc.Config.Name)
	if err != nil {
		return desc, err
	}
	desc.StagingDir = dir

	staged, err := svc.Staging.WritePrimary(desc.Config.Name, desc.RawSource)
	if err != nil {
		return desc, err
	}
	desc.StagedPath = staged

	if svc.Format != nil {
		if err := svc.Format(ctx, staged); err != nil {
			return desc, err
		}
		// The formatted file is what sema and the compiler see; re-read it
		// so RawSource and the manifest describe the same text.
		formatted, err := os.ReadFile(staged)
		if err != nil {
			return desc, fmt.Errorf("re-reading formatted source: %w", err)
		}
		desc.RawSource = string(formatted)
	}
	return desc, nil
}

func stageManifest(ctx context.Context, svc Services, desc model.Descriptor) (model.Descriptor, error) {
	b := manifest.NewBuilder()
	b.Append("<zigbind>", 1, render.PreludeLineCount)
	b.Append(originPath(desc), originLine(desc), countLines(desc.RawSource))
	desc.Manifest = b.Build()
	return desc, nil
}

func stageAnalyze(ctx context.Context, svc Services, desc model.Descriptor) (model.Descriptor, error) {
	reported, err := svc.Sema.Analyze(ctx, desc.StagedPath, desc.RawSource)
	if err != nil {
		return desc, analyzeError(desc, err)
	}
	desc.Reported = reported
	desc.Decls = sema.ScanDecls(desc.RawSource)
	return desc, nil
}

// analyzeError rewrites a sema failure whose diagnostic points into the
// staged primary source. The rendered wrapper places the author fragment
// directly after the fixed prelude, so primary line n sits at staged line
// n+PreludeLineCount in the manifest.
func analyzeError(desc model.Descriptor, err error) error {
	file, line, ok := zigc.Diagnostic(err.Error())
	if !ok || !zigc.SameFile(file, desc.StagedPath) {
		return err
	}
	return &model.CompileError{
		Module:   desc.Config.Name,
		Location: desc.Manifest.FormatLocation(line + render.PreludeLineCount),
		Output:   err.Error(),
	}
}

func stageResolveDeps(ctx context.Context, svc Services, desc model.Descriptor) (model.Descriptor, error) {
	set, err := deps.Resolve(ctx, desc.RawSource, originPath(desc), svc.SourceFS)
	if err != nil {
		return desc, err
	}
	desc.DepSet = set
	return desc, nil
}

func stageVerify(ctx context.Context, svc Services, desc model.Descriptor) (model.Descriptor, error) {
	records, err := sema.Verify(ctx, desc.Config.Name, desc.Decl, desc.Reported)
	if err != nil {
		return desc, err
	}
	desc.Exports = records
	return desc, nil
}

func stageAggregate(ctx context.Context, svc Services, desc model.Descriptor) (model.Descriptor, error) {
	modeFn := svc.ModeFn
	if modeFn == nil {
		modeFn = resources.ForMode
	}
	desc.Exports, desc.Resources = resources.Augment(ctx, desc.Exports, modeFn)
	return desc, nil
}

func stageBindDocs(ctx context.Context, svc Services, desc model.Descriptor) (model.Descriptor, error) {
	desc.Exports = docbind.Bind(ctx, desc.Exports, desc.Decls)
	return desc, nil
}

func stageRenderWrapper(ctx context.Context, svc Services, desc model.Descriptor) (model.Descriptor, error) {
	rendered, err := svc.Staging.WriteRendered(desc.Config.Name, render.Wrapper(desc))
	if err != nil {
		return desc, err
	}
	desc.RenderedPath = rendered
	return desc, nil
}

func stageCompile(ctx context.Context, svc Services, desc model.Descriptor) (model.Descriptor, error) {
	if svc.Compiler == nil {
		ctxlog.FromContext(ctx).Debug("No compiler configured; skipping compile invocation.")
		return desc, nil
	}
	if err := svc.Compiler.Compile(ctx, desc); err != nil {
		return desc, err
	}
	return desc, nil
}

func stageUnloadManifest(ctx context.Context, svc Services, desc model.Descriptor) (model.Descriptor, error) {
	desc.Manifest = nil
	return desc, nil
}

func dispatchRender(ctx context.Context, desc model.Descriptor) (Result, error) {
	renderer, err := render.ForFlavor(desc.Config.Flavor)
	if err != nil {
		return Result{}, err
	}
	hostSource, err := renderer.RenderHost(desc)
	if err != nil {
		return Result{}, err
	}
	ctxlog.FromContext(ctx).Info("Module build complete.",
		"flavor", desc.Config.Flavor,
		"exports", len(desc.Exports),
		"resources", len(desc.Resources),
		"dependencies", len(desc.DepSet))
	return Result{
		Descriptor: desc,
		HostFile:   renderer.FileName(desc.Config.Name),
		HostSource: hostSource,
	}, nil
}

func countLines(src string) int {
	if src == "" {
		return 0
	}
	n := strings.Count(src, "\n")
	if !strings.HasSuffix(src, "\n") {
		n++
	}
	return n
}

// sourcePath is the external source file location within SourceFS,
// resolved relative to the manifest's directory.
func sourcePath(desc model.Descriptor) string {
	return path.Clean(path.Join(path.Dir(desc.Config.DefRange.File), desc.Config.SourceFile))
}

// originPath is the path dependency references and manifest fragments are
// attributed to: the external source file when one was given, the manifest
// file itself in literal-source mode.
func originPath(desc model.Descriptor) string {
	if desc.Config.SourceFile != "" {
		return sourcePath(desc)
	}
	return desc.Config.DefRange.File
}

// originLine is the original line of the author fragment's first line: 1
// for an external source file, the embedded source's first content line
// within the manifest for literal source.
func originLine(desc model.Descriptor) int {
	if desc.Config.SourceFile == "" && desc.Config.SourceLine > 0 {
		return desc.Config.SourceLine
	}
	return 1
}
