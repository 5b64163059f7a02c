// Package declare canonicalizes the heterogeneous export list an author
// writes in a manifest into the uniform DeclSet the verifier consumes.
package declare

import (
	"context"
	"fmt"

	"github.com/vk/zigbind/internal/ctxlog"
	"github.com/vk/zigbind/internal/model"
)

// Normalize processes the raw declaration list left to right. A bare name
// becomes an entry with default options; a name-with-options pair keeps its
// options; the wildcard marker switches the set into auto-discovery mode,
// carrying forward everything accumulated so far as explicit overrides. A
// second wildcard is a no-op.
//
// When the same name appears more than once, the last occurrence wins.
// Callers must not depend on any ordering of the result; only membership and
// per-name options are the contract.
func Normalize(ctx context.Context, decls []model.Declaration) (model.DeclSet, error) {
	logger := ctxlog.FromContext(ctx)

	set := model.DeclSet{Entries: make(map[string]model.ExportOptions)}
	for _, d := range decls {
		switch decl := d.(type) {
		case model.Name:
			set.Entries[string(decl)] = model.ExportOptions{}
		case model.NameWithOptions:
			set.Entries[decl.Name] = decl.Options
		case model.Wildcard:
			if set.Auto {
				logger.Debug("Ignoring repeated wildcard marker.")
				continue
			}
			set.Auto = true
		default:
			// Loaders only produce the three variants above; anything else
			// is a bug in the caller, not author input.
			return model.DeclSet{}, fmt.Errorf("malformed declaration element of type %T", d)
		}
	}

	logger.Debug("Normalized export declarations.",
		"auto", set.Auto, "explicit_entries", len(set.Entries))
	return set, nil
}
