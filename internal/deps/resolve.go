// Package deps computes the transitive closure of native source files a
// module references, for rebuild tracking and external-resource listing.
//
// Why an explicit worklist?
//
// The file graph is author-controlled and may contain cycles. Iterating a
// worklist with a visited-set guard makes termination obvious and keeps the
// result a pure set: each distinct path is read and parsed exactly once, and
// the final DepSet is identical no matter which traversal order the worklist
// happens to produce.
package deps

import (
	"context"
	"io/fs"
	"path"
	"regexp"
	"strings"

	"github.com/vk/zigbind/internal/ctxlog"
	"github.com/vk/zigbind/internal/model"
)

var importPattern = regexp.MustCompile(`@import\("([^"]+)"\)`)

// ScanImports extracts the file-backed @import references from Zig source.
// Package imports such as "std" or "builtin" are not files and are skipped,
// as are imports on commented-out lines.
func ScanImports(src string) []string {
	var refs []string
	for _, line := range strings.Split(src, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}
		for _, m := range importPattern.FindAllStringSubmatch(line, -1) {
			if strings.HasSuffix(m[1], ".zig") {
				refs = append(refs, m[1])
			}
		}
	}
	return refs
}

// Resolve walks the import graph rooted at initialSource, which was read
// from initialPath within fsys, and returns the set of distinct referenced
// files. The root itself is not a member. An unreadable referenced file is
// fatal to the whole build.
func Resolve(ctx context.Context, initialSource, initialPath string, fsys fs.FS) (model.DepSet, error) {
	logger := ctxlog.FromContext(ctx)

	visited := make(model.DepSet)

	type item struct {
		src  string
		path string
	}
	worklist := []item{{src: initialSource, path: initialPath}}

	for len(worklist) > 0 {
		cur := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		for _, ref := range ScanImports(cur.src) {
			resolved := path.Clean(path.Join(path.Dir(cur.path), ref))
			if !visited.Add(resolved) {
				continue
			}
			data, err := fs.ReadFile(fsys, resolved)
			if err != nil {
				return nil, &model.DependencyError{Path: resolved, Err: err}
			}
			worklist = append(worklist, item{src: string(data), path: resolved})
		}
	}

	logger.Debug("Resolved dependency closure.", "root", initialPath, "count", len(visited))
	return visited, nil
}
