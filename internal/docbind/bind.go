// Package docbind attaches extracted documentation comments to verified
// exports. Absence of documentation is a valid terminal state; nothing here
// can fail a build.
package docbind

import (
	"context"
	"strings"

	"github.com/vk/zigbind/internal/ctxlog"
	"github.com/vk/zigbind/internal/model"
)

// Bind associates each export record with the doc comment of the first
// top-level declaration in the staged source whose name matches and whose
// trimmed doc is non-empty. Matching is exact-name only and never crosses
// into dependency files.
func Bind(ctx context.Context, records []model.ExportRecord, decls []model.SourceDecl) []model.ExportRecord {
	logger := ctxlog.FromContext(ctx)

	out := make([]model.ExportRecord, len(records))
	bound := 0
	for i, rec := range records {
		for _, decl := range decls {
			if decl.Name != rec.Name {
				continue
			}
			if doc := strings.TrimSpace(decl.Doc); doc != "" {
				rec.Doc = doc
				bound++
				break
			}
		}
		out[i] = rec
	}

	logger.Debug("Bound documentation.", "exports", len(out), "documented", bound)
	return out
}
