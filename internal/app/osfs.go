package app

import (
	"io/fs"
	"os"
	"path/filepath"
)

// osFS exposes the real filesystem as an fs.FS without rooting it, so the
// pipeline can resolve source files relative to wherever the manifest lives,
// including absolute manifest paths.
type osFS struct{}

func (osFS) Open(name string) (fs.File, error) {
	return os.Open(filepath.FromSlash(name))
}
