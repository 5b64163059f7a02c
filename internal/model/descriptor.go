// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Descriptor, the single value threaded through every
// pipeline stage.
//
// Why replace-whole-value staging?
//
// Each stage takes a Descriptor and returns a new one with exactly the
// fields it owns filled in. Later stages can never observe a half-updated
// build, distinct module builds share no mutable state, and every stage is
// unit-testable with a literal Descriptor as input. Nothing outside the
// orchestrator ever holds a Descriptor across stage boundaries.
package model

import (
	"sort"

	"github.com/vk/zigbind/internal/manifest"
	"github.com/zclconf/go-cty/cty"
)

// Flavor selects the host-binding dialect the renderer emits.
type Flavor string

const (
	FlavorElixir Flavor = "elixir"
	FlavorErlang Flavor = "erlang"
)

// KnownFlavor reports whether f is one of the supported flavors.
func KnownFlavor(f Flavor) bool {
	return f == FlavorElixir || f == FlavorErlang
}

// SourceRef links a parsed object back to its file and line.
type SourceRef struct {
	File string
	Line int
}

// Config is the author-supplied portion of a module build, translated from
// an HCL or YAML manifest into this format-agnostic form.
type Config struct {
	// Name is the module identifier, unique per build environment.
	Name string

	// Flavor selects the host render dialect.
	Flavor Flavor

	// DefRange is where the module block was declared.
	DefRange SourceRef

	// Source is the literal embedded native source. Mutually exclusive with
	// SourceFile.
	Source string

	// SourceLine is the line within DefRange.File where the literal source's
	// first content line sits. Zero when the source comes from SourceFile.
	SourceLine int

	// SourceFile is the path of an external native source file, relative to
	// the manifest's directory. Mutually exclusive with Source.
	SourceFile string

	// WorkingDir optionally overrides where the compiler runs.
	WorkingDir string

	// Declarations is the raw export list, in manifest order.
	Declarations []Declaration

	// Attributes are free-form author values forwarded unmodified to the
	// renderer.
	Attributes map[string]cty.Value
}

// Descriptor is the unit being built. It starts as just the Config and the
// raw source; each pipeline stage returns a copy with more fields resolved.
type Descriptor struct {
	Config Config

	// RawSource is the author's native source as read, before staging.
	RawSource string

	// StagedPath is where the staged primary source was written.
	StagedPath string

	// StagingDir is the isolated build directory for this module.
	StagingDir string

	// Manifest remaps staged line numbers to original coordinates. Nil
	// before the manifest stage and after unload.
	Manifest *manifest.Map

	// Decl is the normalized form of the author's export declarations.
	Decl DeclSet

	// Decls are the top-level declarations scanned from the staged source.
	Decls []SourceDecl

	// Reported are the sema-reported exported signatures of the staged
	// source, before verification against the author's declarations.
	Reported []ReportedExport

	// DepSet is the transitive closure of referenced source files.
	DepSet DepSet

	// Exports is the verified, resource-augmented, documented export list.
	Exports []ExportRecord

	// Resources is the module-level concatenation of every export's
	// resource requirements, in export order.
	Resources []ResourceDescriptor

	// RenderedPath is where the fully rendered wrapper source was written
	// before the final compile.
	RenderedPath string
}

// DepSet is a set of distinct, repository-relative file paths. A path is
// present at most once no matter how often the underlying file graph
// references it.
type DepSet map[string]struct{}

// Has reports whether path is in the set.
func (s DepSet) Has(path string) bool {
	_, ok := s[path]
	return ok
}

// Add inserts path, reporting whether it was newly added.
func (s DepSet) Add(path string) bool {
	if s.Has(path) {
		return false
	}
	s[path] = struct{}{}
	return true
}

// Paths returns the members in lexical order. Ordering exists only to make
// logs and rendered output reproducible; set membership is the contract.
func (s DepSet) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
