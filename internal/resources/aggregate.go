// Package resources computes the runtime handles each verified export needs
// based on its concurrency mode.
package resources

import (
	"context"

	"github.com/vk/zigbind/internal/ctxlog"
	"github.com/vk/zigbind/internal/model"
)

// ModeFunc maps a concurrency mode to the resource descriptors an export of
// that mode requires. It must be pure: same mode and name, same descriptors.
type ModeFunc func(mode model.ConcurrencyMode, exportName string) []model.ResourceDescriptor

// ForMode is the default ModeFunc for the BEAM runtime binding. Synchronous
// exports need nothing; every other mode needs exactly one handle, named
// after the export it serves.
func ForMode(mode model.ConcurrencyMode, exportName string) []model.ResourceDescriptor {
	switch mode {
	case model.ModeThreaded:
		return []model.ResourceDescriptor{{Name: exportName + "-thread", Kind: model.ResourceThread}}
	case model.ModeYielding:
		return []model.ResourceDescriptor{{Name: exportName + "-frame", Kind: model.ResourceYieldState}}
	case model.ModeDirtyCPU, model.ModeDirtyIO:
		return []model.ResourceDescriptor{{Name: exportName + "-dirty", Kind: model.ResourceDirtySlot}}
	default:
		return nil
	}
}

// Augment fills in each record's resource requirements and returns the new
// record list together with the module-level concatenation, in record order.
// Requirements are never deduplicated across exports: two exports in the
// same mode each get their own descriptors.
func Augment(ctx context.Context, records []model.ExportRecord, modeFn ModeFunc) ([]model.ExportRecord, []model.ResourceDescriptor) {
	logger := ctxlog.FromContext(ctx)

	out := make([]model.ExportRecord, len(records))
	var all []model.ResourceDescriptor
	for i, rec := range records {
		rec.Resources = modeFn(rec.Mode, rec.Name)
		all = append(all, rec.Resources...)
		out[i] = rec
	}

	logger.Debug("Aggregated runtime resources.", "exports", len(out), "resources", len(all))
	return out, all
}
