// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the typed errors of the build pipeline. Every one of
// them is fatal to the whole build; the types exist so callers and tests can
// tell the failure classes apart with errors.Is / errors.As rather than by
// matching message text.
package model

import (
	"errors"
	"fmt"
)

// Sentinel kinds for the verification failures. A declared export missing
// from the compiler's report and a module with no exports at all are
// distinct failures with distinct remedies.
var (
	ErrMissingExport = errors.New("declared export not found in compiled source")
	ErrNoExports     = errors.New("module has no exports")
)

// ConfigError reports a contradictory or malformed manifest, located at the
// offending declaration. Raised before staging begins.
type ConfigError struct {
	Module string
	Ref    SourceRef
	Detail string
}

func (e *ConfigError) Error() string {
	if e.Ref.File != "" {
		return fmt.Sprintf("%s:%d: module %q: %s", e.Ref.File, e.Ref.Line, e.Module, e.Detail)
	}
	return fmt.Sprintf("module %q: %s", e.Module, e.Detail)
}

// DependencyError reports a referenced source file that could not be read or
// parsed. Raised before sema runs.
type DependencyError struct {
	Path string
	Err  error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency %q: %v", e.Path, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// VerifyError reports a semantic mismatch between the author's declarations
// and the compiler-reported exports. Kind is one of ErrMissingExport or
// ErrNoExports.
type VerifyError struct {
	Module  string
	Kind    error
	Missing []string
}

func (e *VerifyError) Error() string {
	if errors.Is(e.Kind, ErrMissingExport) {
		return fmt.Sprintf("module %q: declared exports not found in compiled source: %v", e.Module, e.Missing)
	}
	return fmt.Sprintf("module %q: verified export list is empty", e.Module)
}

func (e *VerifyError) Unwrap() error { return e.Kind }

// CompileError reports an external compiler failure, with its location
// already remapped through the manifest to original source coordinates.
type CompileError struct {
	Module   string
	Location string
	Output   string
}

func (e *CompileError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("module %q: compile failed at %s: %s", e.Module, e.Location, e.Output)
	}
	return fmt.Sprintf("module %q: compile failed: %s", e.Module, e.Output)
}
