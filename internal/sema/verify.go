package sema

import (
	"context"
	"sort"

	"github.com/vk/zigbind/internal/ctxlog"
	"github.com/vk/zigbind/internal/model"
)

// Verify cross-checks the normalized declarations against the reported
// exports and produces the verified export list.
//
// In explicit mode every declared name must be reported, and reported
// exports the author did not declare are ignored. In auto mode every
// reported export is included, with declared options layered over the
// compiler-reported defaults. A verified list that ends up empty fails the
// build on its own, separately from any per-name mismatch.
//
// Records are returned sorted by name so that downstream output is
// reproducible; nothing semantic depends on the order.
func Verify(ctx context.Context, module string, set model.DeclSet, reported []Reported) ([]model.ExportRecord, error) {
	logger := ctxlog.FromContext(ctx)

	byName := make(map[string]Reported, len(reported))
	for _, r := range reported {
		byName[r.Name] = r
	}

	var records []model.ExportRecord

	if set.Auto {
		for _, r := range reported {
			rec := model.ExportRecord{
				Name:      r.Name,
				Mode:      r.Mode,
				Signature: r.Signature,
				Arity:     r.Arity,
			}
			if opts, declared := set.Entries[r.Name]; declared {
				rec.Options = opts
			}
			records = append(records, rec)
		}
	} else {
		var missing []string
		for name, opts := range set.Entries {
			r, found := byName[name]
			if !found {
				missing = append(missing, name)
				continue
			}
			records = append(records, model.ExportRecord{
				Name:      name,
				Mode:      r.Mode,
				Signature: r.Signature,
				Arity:     r.Arity,
				Options:   opts,
			})
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return nil, &model.VerifyError{Module: module, Kind: model.ErrMissingExport, Missing: missing}
		}
	}

	if len(records) == 0 {
		return nil, &model.VerifyError{Module: module, Kind: model.ErrNoExports}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })

	logger.Debug("Verified export list.", "module", module, "auto", set.Auto, "exports", len(records))
	return records, nil
}
