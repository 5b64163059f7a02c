// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the post-verification view of a module's exports: the
// concurrency modes the compiler can report, the ExportRecord produced by the
// verifier, and the runtime resource descriptors a non-synchronous mode
// requires.
package model

import "fmt"

// ConcurrencyMode is the execution discipline of one export. It determines
// whether the host runtime must allocate extra resources to call it safely.
type ConcurrencyMode int

const (
	// ModeSynchronous runs on the caller's scheduler thread. The default.
	ModeSynchronous ConcurrencyMode = iota

	// ModeThreaded dispatches the call to a dedicated OS thread.
	ModeThreaded

	// ModeYielding cooperatively yields back to the scheduler mid-call.
	ModeYielding

	// ModeDirtyCPU runs on a dirty CPU scheduler.
	ModeDirtyCPU

	// ModeDirtyIO runs on a dirty IO scheduler.
	ModeDirtyIO
)

var modeNames = map[ConcurrencyMode]string{
	ModeSynchronous: "synchronous",
	ModeThreaded:    "threaded",
	ModeYielding:    "yielding",
	ModeDirtyCPU:    "dirty_cpu",
	ModeDirtyIO:     "dirty_io",
}

// String returns the directive spelling of the mode.
func (m ConcurrencyMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("ConcurrencyMode(%d)", int(m))
}

// ParseConcurrencyMode maps a directive spelling back to its mode.
func ParseConcurrencyMode(s string) (ConcurrencyMode, error) {
	for mode, name := range modeNames {
		if name == s {
			return mode, nil
		}
	}
	return ModeSynchronous, fmt.Errorf("unknown concurrency mode %q", s)
}

// ExportRecord is one verified export of a module.
type ExportRecord struct {
	// Name is the native function name, unique within the module.
	Name string

	// Mode is the compiler-reported concurrency mode.
	Mode ConcurrencyMode

	// Signature is the compiler-reported signature.
	Signature string

	// Arity is the number of arguments the compiler reports.
	Arity int

	// Options are the author-declared call-time options, defaults if the
	// export was auto-discovered.
	Options ExportOptions

	// Doc is the associated documentation comment, empty when the staged
	// source carries none for this name.
	Doc string

	// Resources are the runtime handles this export's mode requires.
	// Empty for synchronous exports.
	Resources []ResourceDescriptor
}

// HostName is the name the host runtime exposes the export under: the
// author's alias when declared, the native name otherwise.
func (r ExportRecord) HostName() string {
	if r.Options.Alias != "" {
		return r.Options.Alias
	}
	return r.Name
}

// ResourceDescriptor names one runtime handle an export's concurrency mode
// requires the host runtime to allocate. Descriptors are not deduplicated
// across exports; each export's requirement is independent.
type ResourceDescriptor struct {
	// Name identifies the handle, derived from the export it serves.
	Name string

	// Kind is the runtime facility backing the handle.
	Kind ResourceKind
}

// ResourceKind enumerates the runtime facilities a descriptor can name.
type ResourceKind int

const (
	// ResourceThread is a dedicated OS thread plus its control channel.
	ResourceThread ResourceKind = iota

	// ResourceYieldState is the saved-frame state of a yielding call.
	ResourceYieldState

	// ResourceDirtySlot is a reservation on a dirty scheduler.
	ResourceDirtySlot
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceThread:
		return "thread"
	case ResourceYieldState:
		return "yield_state"
	case ResourceDirtySlot:
		return "dirty_slot"
	default:
		return fmt.Sprintf("ResourceKind(%d)", int(k))
	}
}

// ReportedExport is one compiler-reported export of the staged source, as
// returned by the sema service.
type ReportedExport struct {
	Name      string
	Signature string
	Arity     int
	Mode      ConcurrencyMode
}

// SourceDecl is one top-level declaration found while scanning the staged
// source, with its extracted documentation comment. The Documentation Binder
// matches these against export names.
type SourceDecl struct {
	Name string
	Doc  string
	Line int
}
