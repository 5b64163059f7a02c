package resources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/zigbind/internal/model"
)

func TestForMode(t *testing.T) {
	assert.Nil(t, ForMode(model.ModeSynchronous, "add"))

	threaded := ForMode(model.ModeThreaded, "mul")
	require.Len(t, threaded, 1)
	assert.Equal(t, model.ResourceDescriptor{Name: "mul-thread", Kind: model.ResourceThread}, threaded[0])

	yielding := ForMode(model.ModeYielding, "walk")
	require.Len(t, yielding, 1)
	assert.Equal(t, model.ResourceYieldState, yielding[0].Kind)

	assert.Equal(t, model.ResourceDirtySlot, ForMode(model.ModeDirtyCPU, "hash")[0].Kind)
	assert.Equal(t, model.ResourceDirtySlot, ForMode(model.ModeDirtyIO, "read")[0].Kind)
}

func TestAugment(t *testing.T) {
	t.Run("synchronous exports add nothing", func(t *testing.T) {
		records := []model.ExportRecord{
			{Name: "add", Mode: model.ModeSynchronous},
			{Name: "sub", Mode: model.ModeSynchronous},
		}
		out, all := Augment(context.Background(), records, ForMode)
		require.Len(t, out, 2)
		assert.Empty(t, all)
		assert.Empty(t, out[0].Resources)
	})

	t.Run("each export's requirement is independent", func(t *testing.T) {
		records := []model.ExportRecord{
			{Name: "mul", Mode: model.ModeThreaded},
			{Name: "pow", Mode: model.ModeThreaded},
			{Name: "div", Mode: model.ModeSynchronous},
		}
		out, all := Augment(context.Background(), records, ForMode)

		require.Len(t, all, 2)
		assert.Equal(t, "mul-thread", all[0].Name)
		assert.Equal(t, "pow-thread", all[1].Name)
		assert.Empty(t, out[2].Resources)
	})

	t.Run("input records are not mutated", func(t *testing.T) {
		records := []model.ExportRecord{{Name: "mul", Mode: model.ModeThreaded}}
		_, _ = Augment(context.Background(), records, ForMode)
		assert.Nil(t, records[0].Resources)
	})
}
