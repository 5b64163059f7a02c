// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It is responsible for all file parsing, diagnostics, and
// HCL-to-model translation; nothing outside this package touches an HCL
// type.
package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/zigbind/internal/ctxlog"
	"github.com/vk/zigbind/internal/model"
)

// Loader parses .hcl module manifests.
type Loader struct{}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

// moduleRootSchema is the top-level structure of a manifest file: one or
// more 'module' blocks.
type moduleRootSchema struct {
	Modules []*hclModule `hcl:"module,block"`
}

// hclModule represents a single 'module' block for decoding purposes.
type hclModule struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// moduleBodySchema describes the body of a 'module' block.
var moduleBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "flavor", Required: true},
		{Name: "source"},
		{Name: "source_file"},
		{Name: "working_dir"},
		{Name: "exports"},
		{Name: "attributes"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "export", LabelNames: []string{"name"}},
	},
}

// exportBodySchema describes the body of an 'export' block.
var exportBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "alias"},
		{Name: "signature"},
		{Name: "attributes"},
	},
}

// Load implements config.Loader for .hcl manifest files.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]*model.Config, error) {
	logger := ctxlog.FromContext(ctx)

	parser := hclparse.NewParser()
	var configs []*model.Config

	for _, path := range paths {
		hclFile, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse manifest %s: %w", path, diags)
		}

		fileConfigs, diags := decodeManifest(hclFile)
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid manifest %s: %w", path, diags)
		}
		configs = append(configs, fileConfigs...)
		logger.Debug("Loaded module manifests from HCL file.", "file", path, "modules", len(fileConfigs))
	}

	return configs, nil
}

func decodeManifest(hclFile *hcl.File) ([]*model.Config, hcl.Diagnostics) {
	var allDiags hcl.Diagnostics

	root := &moduleRootSchema{}
	diags := gohcl.DecodeBody(hclFile.Body, nil, root)
	allDiags = append(allDiags, diags...)
	if diags.HasErrors() {
		return nil, allDiags
	}

	seen := make(map[string]bool)
	configs := make([]*model.Config, 0, len(root.Modules))
	for _, mod := range root.Modules {
		cfg, modDiags := decodeModule(mod)
		allDiags = append(allDiags, modDiags...)
		if modDiags.HasErrors() {
			continue
		}
		if seen[cfg.Name] {
			allDiags = append(allDiags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate module definition",
				Detail:   fmt.Sprintf("A module named '%s' has already been defined.", cfg.Name),
			})
			continue
		}
		seen[cfg.Name] = true
		configs = append(configs, cfg)
	}

	if allDiags.HasErrors() {
		return nil, allDiags
	}
	return configs, nil
}

func decodeModule(mod *hclModule) (*model.Config, hcl.Diagnostics) {
	content, diags := mod.Body.Content(moduleBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}

	cfg := &model.Config{Name: mod.Name}

	if attr, ok := content.Attributes["flavor"]; ok {
		var flavor string
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &flavor)...)
		cfg.Flavor = model.Flavor(flavor)
		// The required flavor attribute anchors error locations for the block.
		cfg.DefRange = model.SourceRef{
			File: attr.Range.Filename,
			Line: attr.Range.Start.Line,
		}
	}
	if attr, ok := content.Attributes["source"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &cfg.Source)...)
		rng := attr.Expr.Range()
		cfg.SourceLine = rng.Start.Line
		// Heredoc content starts on the line after the opening marker.
		if rng.End.Line > rng.Start.Line {
			cfg.SourceLine++
		}
	}
	if attr, ok := content.Attributes["source_file"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &cfg.SourceFile)...)
	}
	if attr, ok := content.Attributes["working_dir"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &cfg.WorkingDir)...)
	}
	if attr, ok := content.Attributes["attributes"]; ok {
		val, valDiags := attr.Expr.Value(nil)
		diags = append(diags, valDiags...)
		if !valDiags.HasErrors() && val.Type().IsObjectType() {
			cfg.Attributes = val.AsValueMap()
		}
	}

	var declDiags hcl.Diagnostics
	cfg.Declarations, declDiags = decodeDeclarations(content)
	diags = append(diags, declDiags...)

	if diags.HasErrors() {
		return nil, diags
	}
	return cfg, nil
}

// decodeDeclarations assembles the raw declaration list: first the entries
// of the 'exports' attribute in list order, then the 'export' blocks in
// file order.
func decodeDeclarations(content *hcl.BodyContent) ([]model.Declaration, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	var decls []model.Declaration

	if attr, ok := content.Attributes["exports"]; ok {
		val, valDiags := attr.Expr.Value(nil)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			return nil, diags
		}
		if !val.CanIterateElements() {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid exports attribute",
				Detail:   "The 'exports' attribute must be a list of export names.",
				Subject:  attr.Expr.Range().Ptr(),
			})
			return nil, diags
		}
		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			if elem.Type() != cty.String {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid export name",
					Detail:   "Every element of 'exports' must be a string.",
					Subject:  attr.Expr.Range().Ptr(),
				})
				return nil, diags
			}
			name := elem.AsString()
			if name == model.WildcardName {
				decls = append(decls, model.Wildcard{})
			} else {
				decls = append(decls, model.Name(name))
			}
		}
	}

	for _, block := range content.Blocks.OfType("export") {
		opts, optDiags := decodeExportOptions(block)
		diags = append(diags, optDiags...)
		if optDiags.HasErrors() {
			continue
		}
		decls = append(decls, model.NameWithOptions{Name: block.Labels[0], Options: opts})
	}

	return decls, diags
}

func decodeExportOptions(block *hcl.Block) (model.ExportOptions, hcl.Diagnostics) {
	var opts model.ExportOptions

	content, diags := block.Body.Content(exportBodySchema)
	if diags.HasErrors() {
		return opts, diags
	}

	if attr, ok := content.Attributes["alias"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &opts.Alias)...)
	}
	if attr, ok := content.Attributes["signature"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &opts.SignatureHint)...)
	}
	if attr, ok := content.Attributes["attributes"]; ok {
		val, valDiags := attr.Expr.Value(nil)
		diags = append(diags, valDiags...)
		if !valDiags.HasErrors() && val.Type().IsObjectType() {
			opts.Attrs = val.AsValueMap()
		}
	}

	return opts, diags
}
