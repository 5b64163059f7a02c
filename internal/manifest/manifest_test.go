package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAcrossFragments(t *testing.T) {
	b := NewBuilder()
	b.Append("<zigbind>", 1, 2)        // staged 1-2: generated prelude
	b.Append("native/math.zig", 1, 10) // staged 3-12: author source
	b.Append("<zigbind>", 1, 5)        // staged 13-17: generated glue
	m := b.Build()

	// First author line.
	file, line, ok := m.Resolve(3)
	require.True(t, ok)
	assert.Equal(t, "native/math.zig", file)
	assert.Equal(t, 1, line)

	// Last author line.
	file, line, ok = m.Resolve(12)
	require.True(t, ok)
	assert.Equal(t, "native/math.zig", file)
	assert.Equal(t, 10, line)

	// Generated line resolves to the generator tag.
	file, _, ok = m.Resolve(14)
	require.True(t, ok)
	assert.Equal(t, "<zigbind>", file)
}

func TestResolveOutsideFragments(t *testing.T) {
	b := NewBuilder()
	b.Append("a.zig", 1, 3)
	m := b.Build()

	_, line, ok := m.Resolve(99)
	assert.False(t, ok)
	assert.Equal(t, 99, line)
	assert.Equal(t, "staged:99", m.FormatLocation(99))
}

func TestFormatLocation(t *testing.T) {
	b := NewBuilder()
	b.Append("native/math.zig", 5, 4)
	m := b.Build()

	assert.Equal(t, "native/math.zig:7", m.FormatLocation(3))
}

func TestNilMapResolves(t *testing.T) {
	var m *Map
	_, line, ok := m.Resolve(7)
	assert.False(t, ok)
	assert.Equal(t, 7, line)
}

func TestEmptyAppendIgnored(t *testing.T) {
	b := NewBuilder()
	b.Append("a.zig", 1, 0)
	b.Append("b.zig", 1, 2)
	m := b.Build()

	require.Len(t, m.Fragments(), 1)
	file, line, ok := m.Resolve(1)
	require.True(t, ok)
	assert.Equal(t, "b.zig", file)
	assert.Equal(t, 1, line)
}
