// Package zigc wraps the external zig toolchain. Every invocation is a
// blocking subprocess call with captured output; there is no cancellation
// beyond the context passed to exec.
package zigc

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/vk/zigbind/internal/ctxlog"
	"github.com/vk/zigbind/internal/model"
)

// Toolchain locates the zig executable and the directory compiles run in.
type Toolchain struct {
	// Path is the zig executable, "zig" by default.
	Path string
}

// New returns a Toolchain for the given executable path.
func New(path string) *Toolchain {
	if path == "" {
		path = "zig"
	}
	return &Toolchain{Path: path}
}

func (t *Toolchain) run(ctx context.Context, workDir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, t.Path, args...)
	cmd.Dir = workDir
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return buf.String(), err
}

// Fmt rewrites the file at path in canonical style. Formatting is purely
// cosmetic, so a failure (typically a parse error the compiler will report
// properly later) leaves the file unchanged and is not an error here.
func (t *Toolchain) Fmt(ctx context.Context, path string) error {
	logger := ctxlog.FromContext(ctx)
	out, err := t.run(ctx, "", "fmt", path)
	if err != nil {
		logger.Debug("zig fmt declined to format file; leaving as written.", "path", path, "output", out)
	}
	return nil
}

// AstCheck validates the syntax of the file at path using the compiler's
// own parser. The returned error carries the compiler's captured output.
func (t *Toolchain) AstCheck(ctx context.Context, path string) error {
	out, err := t.run(ctx, "", "ast-check", path)
	if err != nil {
		return fmt.Errorf("zig ast-check %s: %w\n%s", path, err, strings.TrimSpace(out))
	}
	return nil
}

// locationPattern matches the "file.zig:12:4:" prefix of zig diagnostics.
var locationPattern = regexp.MustCompile(`(?m)^([^\s:]+\.zig):(\d+):\d+:`)

// Diagnostic extracts the first "file.zig:line:col:" location from captured
// compiler output. ok is false when no such location is present.
func Diagnostic(out string) (file string, line int, ok bool) {
	m := locationPattern.FindStringSubmatch(out)
	if m == nil {
		return "", 0, false
	}
	line, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], line, true
}

// SameFile reports whether a diagnostic's file refers to the staged file at
// path. The compiler may print the path relative to its working directory,
// so the base name is compared as a fallback.
func SameFile(diag, path string) bool {
	return diag == path || filepath.Base(diag) == filepath.Base(path)
}

// errorLocation resolves the failing diagnostic in out to author
// coordinates. Only diagnostics in the rendered wrapper go through the
// manifest; a failure inside a dependency file already carries its own
// coordinates and is reported as printed.
func errorLocation(out string, desc model.Descriptor) string {
	file, line, ok := Diagnostic(out)
	if !ok {
		return ""
	}
	if SameFile(file, desc.RenderedPath) {
		return desc.Manifest.FormatLocation(line)
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// Compile performs the real build of the module's rendered source as a
// dynamic library inside the staging directory. Failures are fatal and are
// remapped through the module's manifest to original source coordinates.
func (t *Toolchain) Compile(ctx context.Context, desc model.Descriptor) error {
	logger := ctxlog.FromContext(ctx)
	workDir := desc.Config.WorkingDir
	if workDir == "" {
		workDir = desc.StagingDir
	}

	out, err := t.run(ctx, workDir,
		"build-lib", "-dynamic", "-fallow-shlib-undefined",
		"-femit-bin="+desc.Config.Name+".so", desc.RenderedPath)
	if err == nil {
		logger.Debug("Compiled module.", "module", desc.Config.Name, "dir", workDir)
		return nil
	}

	return &model.CompileError{
		Module:   desc.Config.Name,
		Location: errorLocation(out, desc),
		Output:   strings.TrimSpace(out),
	}
}
