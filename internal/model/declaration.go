// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Declaration variants an author can write in a module
// manifest.
//
// Why a tagged-variant type instead of `any`?
//
// The export list in a manifest is genuinely heterogeneous: a bare name, a
// name paired with call-time options, or the wildcard marker that switches
// the whole module into auto-discovery mode. Modelling each shape as its own
// type behind a small sealed interface lets the Normalizer consume the list
// with an exhaustive type switch, and makes an unrepresentable shape a
// compile error in the loaders rather than a runtime surprise downstream.
package model

import "github.com/zclconf/go-cty/cty"

// WildcardName is the marker an author writes inside an export list to
// switch the module into auto-discovery mode.
const WildcardName = "..."

// Declaration is one element of an author's export list.
type Declaration interface {
	declaration()
}

// Name declares an export by bare name, with default options.
type Name string

// NameWithOptions declares an export together with call-time options.
type NameWithOptions struct {
	Name    string
	Options ExportOptions
}

// Wildcard is the auto-discovery marker. Its position in the list carries no
// meaning; a second occurrence is a no-op.
type Wildcard struct{}

func (Name) declaration()            {}
func (NameWithOptions) declaration() {}
func (Wildcard) declaration()        {}

// ExportOptions carries the arity-independent, call-time metadata an author
// may attach to a declared export.
type ExportOptions struct {
	// Alias is the name the host runtime exposes the export under. Empty
	// means the native name is used as-is.
	Alias string

	// SignatureHint is an optional, author-supplied signature the verifier
	// reports alongside mismatches. It never overrides the compiler-reported
	// signature.
	SignatureHint string

	// Attrs holds free-form per-export attributes, forwarded unmodified to
	// the renderer.
	Attrs map[string]cty.Value
}

// DeclSet is the normalized form of a declaration list.
//
// In explicit mode (Auto == false) Entries is the complete export set. In
// auto mode Entries holds only the explicit overrides layered on top of
// whatever the compiler reports.
type DeclSet struct {
	Auto    bool
	Entries map[string]ExportOptions
}
