// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the Go struct representation of a zigbind module
// build. Its core purpose is to create a strongly-typed, in-memory model of
// the author's declarations and of everything the pipeline learns about the
// native source while building it.
//
// # Core Concepts
//
// The model is built around a few key structures:
//
//   - Descriptor: The unit being built. It aggregates the author's manifest
//     configuration, the staged source, the transitive dependency set, and the
//     verified export list. Exactly one Descriptor exists per module build.
//
//   - Declaration: The author's statement about one exported function. A
//     declaration list is heterogeneous: bare names, name-with-options pairs,
//     and at most one meaningful wildcard marker.
//
//   - ExportRecord: The post-verification view of one export, carrying its
//     resolved signature, concurrency mode, documentation, and any runtime
//     resources the mode requires.
//
//   - SourceRef: Metadata linking every parsed object back to its file and
//     line, so errors can name the exact declaration at fault.
//
// Why a separate model package?
//
// The pipeline reconciles three independent sources of truth: what the author
// declared, what the compiler actually exports, and what the host runtime
// requires per concurrency mode. Keeping all three in one format-agnostic
// model lets each pipeline stage consume and produce plain values, with the
// HCL and YAML front-ends reduced to translation layers.
package model
