// Package staging provides the isolated build directories a module's source
// is written into before the external compiler runs.
//
// Staging paths are keyed by a build-environment identifier plus the module
// name, so concurrent builds of distinct modules never collide. Two
// concurrent builds of the same module in the same environment are a
// configuration error and are not guarded against here.
package staging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Area is one build environment's staging root.
type Area struct {
	root  string
	envID string
}

// New returns an Area rooted at root. An empty root falls back to the
// system temp directory; an empty envID gets a random one, which makes the
// staging location unique per process run.
func New(root, envID string) *Area {
	if root == "" {
		root = os.TempDir()
	}
	if envID == "" {
		envID = uuid.NewString()
	}
	return &Area{root: root, envID: envID}
}

// EnvID returns the build-environment identifier the Area keys paths by.
func (a *Area) EnvID() string { return a.envID }

// ModuleDir returns the isolated writable directory for one module,
// creating it if necessary.
func (a *Area) ModuleDir(module string) (string, error) {
	dir := filepath.Join(a.root, fmt.Sprintf("zigbind-%s", a.envID), module)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating staging dir for module %q: %w", module, err)
	}
	return dir, nil
}

// WritePrimary writes the staged primary source for a module and returns
// its path. The file name is derived from the module identifier.
func (a *Area) WritePrimary(module, src string) (string, error) {
	return a.write(module, module+".zig", src)
}

// WriteRendered writes the fully rendered wrapper source that the final
// compile invocation consumes.
func (a *Area) WriteRendered(module, src string) (string, error) {
	return a.write(module, module+".nif.zig", src)
}

func (a *Area) write(module, name, src string) (string, error) {
	dir, err := a.ModuleDir(module)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		return "", fmt.Errorf("staging %s: %w", name, err)
	}
	return path, nil
}
