package docbind

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/zigbind/internal/model"
)

func TestBind(t *testing.T) {
	records := []model.ExportRecord{
		{Name: "add"},
		{Name: "sub"},
		{Name: "mul"},
	}
	decls := []model.SourceDecl{
		{Name: "add", Doc: "Adds two integers.", Line: 3},
		{Name: "sub", Doc: "   ", Line: 8},
		{Name: "sub", Doc: "Subtracts b from a.", Line: 14},
	}

	out := Bind(context.Background(), records, decls)
	require.Len(t, out, 3)

	assert.Equal(t, "Adds two integers.", out[0].Doc)
	// The first sub decl has only whitespace doc; the second one wins.
	assert.Equal(t, "Subtracts b from a.", out[1].Doc)
	// No decl matches mul; absence of documentation is fine.
	assert.Empty(t, out[2].Doc)
}

func TestBindNoDecls(t *testing.T) {
	records := []model.ExportRecord{{Name: "add"}}
	out := Bind(context.Background(), records, nil)
	require.Len(t, out, 1)
	assert.Empty(t, out[0].Doc)
}
