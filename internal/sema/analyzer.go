// Package sema determines what the staged native source actually exports
// and cross-checks that against the author's declarations.
package sema

import (
	"context"
	"regexp"
	"strings"

	"github.com/vk/zigbind/internal/ctxlog"
	"github.com/vk/zigbind/internal/model"
)

// Reported is one compiler-reported export of the staged source.
type Reported = model.ReportedExport

// Analyzer produces the exported signatures and concurrency modes of a
// staged source file. Implementations may shell out to the toolchain; tests
// substitute fakes.
type Analyzer interface {
	Analyze(ctx context.Context, stagedPath, src string) ([]Reported, error)
}

// SourceAnalyzer is the production Analyzer. It scans the staged Zig source
// for `export fn` declarations and `/// nif:` mode directives. When Check is
// non-nil it runs first, so syntax errors surface with compiler detail
// before any scanning happens.
type SourceAnalyzer struct {
	// Check validates the staged file, typically zigc.AstCheck.
	Check func(ctx context.Context, path string) error
}

var (
	fnPattern        = regexp.MustCompile(`^\s*(export|pub)\s+fn\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(([^)]*)\)\s*([^{]*)`)
	directivePattern = regexp.MustCompile(`^///\s*nif:\s*([A-Za-z_][A-Za-z0-9_]*)\s+(\S+)\s*$`)
)

// Analyze implements Analyzer.
func (a *SourceAnalyzer) Analyze(ctx context.Context, stagedPath, src string) ([]Reported, error) {
	logger := ctxlog.FromContext(ctx)

	if a.Check != nil {
		if err := a.Check(ctx, stagedPath); err != nil {
			return nil, err
		}
	}

	modes, err := scanDirectives(src)
	if err != nil {
		return nil, err
	}

	var reported []Reported
	for _, line := range strings.Split(src, "\n") {
		m := fnPattern.FindStringSubmatch(line)
		if m == nil || m[1] != "export" {
			continue
		}
		name := m[2]
		params := splitParams(m[3])
		mode := modes[name] // zero value is ModeSynchronous

		reported = append(reported, Reported{
			Name:      name,
			Signature: formatSignature(params, strings.TrimSpace(m[4])),
			Arity:     len(params),
			Mode:      mode,
		})
	}

	logger.Debug("Analyzed staged source.", "path", stagedPath, "exports", len(reported))
	return reported, nil
}

// scanDirectives collects the `/// nif: <name> <mode>` directives. An
// unknown mode spelling is a source error, not a silent default.
func scanDirectives(src string) (map[string]model.ConcurrencyMode, error) {
	modes := make(map[string]model.ConcurrencyMode)
	for _, line := range strings.Split(src, "\n") {
		m := directivePattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		mode, err := model.ParseConcurrencyMode(m[2])
		if err != nil {
			return nil, err
		}
		modes[m[1]] = mode
	}
	return modes, nil
}

// splitParams breaks a parameter list into its type names.
func splitParams(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	types := make([]string, 0, len(parts))
	for _, p := range parts {
		if idx := strings.LastIndex(p, ":"); idx >= 0 {
			p = p[idx+1:]
		}
		types = append(types, strings.TrimSpace(p))
	}
	return types
}

func formatSignature(params []string, ret string) string {
	return "fn (" + strings.Join(params, ", ") + ") " + ret
}

// ScanDecls lists every top-level function declaration in the staged source
// together with its extracted `///` documentation comment. The Documentation
// Binder matches these against verified export names.
func ScanDecls(src string) []model.SourceDecl {
	var decls []model.SourceDecl
	var pendingDoc []string

	for i, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "///") {
			// Mode directives are plumbing, not documentation.
			if directivePattern.MatchString(trimmed) {
				continue
			}
			pendingDoc = append(pendingDoc, strings.TrimSpace(strings.TrimPrefix(trimmed, "///")))
			continue
		}

		if m := fnPattern.FindStringSubmatch(line); m != nil {
			decls = append(decls, model.SourceDecl{
				Name: m[2],
				Doc:  strings.TrimSpace(strings.Join(pendingDoc, "\n")),
				Line: i + 1,
			})
		}

		if trimmed != "" {
			pendingDoc = nil
		}
	}
	return decls
}
