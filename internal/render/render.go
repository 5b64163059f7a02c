// Package render turns a fully verified, resource-augmented, documented
// module descriptor into source text: the Zig wrapper the compiler consumes,
// and the host-language glue module one of exactly two flavors emits.
//
// Why an interface per flavor?
//
// The pre-render contract is identical for every flavor: the descriptor is
// complete, or the renderer is never called. Selecting a HostRenderer by the
// descriptor's flavor field keeps the orchestrator's final stage a single
// dispatch with no flavor conditionals anywhere else in the pipeline.
package render

import (
	"fmt"
	"strings"

	"github.com/vk/zigbind/internal/model"
)

// HostRenderer emits the host-loadable glue for one binding flavor.
type HostRenderer interface {
	// RenderHost produces the host-language source for the descriptor.
	RenderHost(desc model.Descriptor) (string, error)

	// FileName returns the output file name for the module.
	FileName(module string) string
}

// ForFlavor selects the renderer for the descriptor's target flavor.
func ForFlavor(f model.Flavor) (HostRenderer, error) {
	switch f {
	case model.FlavorElixir:
		return &ElixirRenderer{}, nil
	case model.FlavorErlang:
		return &ErlangRenderer{}, nil
	default:
		return nil, fmt.Errorf("no renderer for flavor %q", f)
	}
}

// preludeLines is the fixed generated header of every wrapper file. The
// manifest relies on its length being constant, so author lines keep a
// stable offset no matter what glue follows them.
var preludeLines = []string{
	"// Generated by zigbind. Do not edit.",
	`const std = @import("std");`,
	`const beam = @import("beam");`,
	"",
}

// PreludeLineCount is the number of generated lines preceding the author's
// source in the wrapper file.
var PreludeLineCount = len(preludeLines)

// Wrapper renders the full Zig source the final compile consumes: the fixed
// prelude, the author's source verbatim, then the per-export glue. Glue
// lines sit past the author fragment and stay unmapped in the manifest.
func Wrapper(desc model.Descriptor) string {
	var b strings.Builder
	for _, line := range preludeLines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(desc.RawSource)
	if !strings.HasSuffix(desc.RawSource, "\n") {
		b.WriteString("\n")
	}

	b.WriteString("\n// --- zigbind glue ---\n")
	for _, res := range desc.Resources {
		fmt.Fprintf(&b, "var %s: beam.Resource(.%s) = undefined;\n",
			zigIdent(res.Name), res.Kind)
	}
	b.WriteString("\n")
	b.WriteString("export const __zigbind_entries = [_]beam.Entry{\n")
	for _, rec := range desc.Exports {
		fmt.Fprintf(&b, "    .{ .name = \"%s\", .arity = %d, .mode = .%s, .call = %s },\n",
			rec.HostName(), rec.Arity, rec.Mode, rec.Name)
	}
	b.WriteString("};\n")
	return b.String()
}

// zigIdent makes a resource name usable as a Zig identifier.
func zigIdent(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
