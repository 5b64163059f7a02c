// Package yamlcfg provides the YAML implementation of the config.Loader
// interface, for host projects without HCL tooling. It decodes the same
// format-agnostic module configs the hcl package produces.
package yamlcfg

import (
	"context"
	"fmt"
	"os"

	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/vk/zigbind/internal/ctxlog"
	"github.com/vk/zigbind/internal/model"
)

// Loader parses .yaml / .yml module manifests.
type Loader struct{}

// NewLoader creates a new YAML loader.
func NewLoader() *Loader {
	return &Loader{}
}

type yamlManifest struct {
	Modules []yamlModule `yaml:"modules"`
}

type yamlModule struct {
	Name       string         `yaml:"name"`
	Flavor     string         `yaml:"flavor"`
	Source     string         `yaml:"source"`
	SourceFile string         `yaml:"source_file"`
	WorkingDir string         `yaml:"working_dir"`
	Exports    []yaml.Node    `yaml:"exports"`
	Attributes map[string]any `yaml:"attributes"`

	line       int
	sourceLine int
}

// yamlExport is an export entry written as a mapping instead of a bare name.
type yamlExport struct {
	Name       string         `yaml:"name"`
	Alias      string         `yaml:"alias"`
	Signature  string         `yaml:"signature"`
	Attributes map[string]any `yaml:"attributes"`
}

// Load implements config.Loader for YAML manifest files.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]*model.Config, error) {
	logger := ctxlog.FromContext(ctx)

	var configs []*model.Config
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading manifest %s: %w", path, err)
		}

		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
		}
		var manifest yamlManifest
		if err := root.Decode(&manifest); err != nil {
			return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
		}
		rememberModuleLines(&root, manifest.Modules)

		seen := make(map[string]bool)
		for _, mod := range manifest.Modules {
			if seen[mod.Name] {
				return nil, fmt.Errorf("invalid manifest %s: duplicate module definition %q", path, mod.Name)
			}
			seen[mod.Name] = true

			cfg, err := translateModule(path, mod)
			if err != nil {
				return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
			}
			configs = append(configs, cfg)
		}
		logger.Debug("Loaded module manifests from YAML file.", "file", path, "modules", len(manifest.Modules))
	}

	return configs, nil
}

// rememberModuleLines copies each module mapping node's line number onto the
// decoded struct, so configuration errors can point at the block, and the
// line of the literal source's first content line, so the manifest can remap
// staged lines back to where the author wrote them.
func rememberModuleLines(root *yaml.Node, modules []yamlModule) {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return
	}
	doc := root.Content[0]
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "modules" {
			continue
		}
		seq := doc.Content[i+1]
		for j := range seq.Content {
			if j >= len(modules) {
				break
			}
			mod := seq.Content[j]
			modules[j].line = mod.Line
			for k := 0; k+1 < len(mod.Content); k += 2 {
				if mod.Content[k].Value != "source" {
					continue
				}
				val := mod.Content[k+1]
				modules[j].sourceLine = val.Line
				// Block scalars put content on the line after the indicator.
				if val.Style == yaml.LiteralStyle || val.Style == yaml.FoldedStyle {
					modules[j].sourceLine++
				}
			}
		}
	}
}

func translateModule(path string, mod yamlModule) (*model.Config, error) {
	decls, err := translateExports(mod.Exports)
	if err != nil {
		return nil, fmt.Errorf("module %q: %w", mod.Name, err)
	}

	attrs, err := ctyAttributes(mod.Attributes)
	if err != nil {
		return nil, fmt.Errorf("module %q: %w", mod.Name, err)
	}

	return &model.Config{
		Name:         mod.Name,
		Flavor:       model.Flavor(mod.Flavor),
		DefRange:     model.SourceRef{File: path, Line: mod.line},
		Source:       mod.Source,
		SourceLine:   mod.sourceLine,
		SourceFile:   mod.SourceFile,
		WorkingDir:   mod.WorkingDir,
		Declarations: decls,
		Attributes:   attrs,
	}, nil
}

func translateExports(nodes []yaml.Node) ([]model.Declaration, error) {
	var decls []model.Declaration
	for _, node := range nodes {
		switch node.Kind {
		case yaml.ScalarNode:
			var name string
			if err := node.Decode(&name); err != nil {
				return nil, fmt.Errorf("line %d: invalid export name: %w", node.Line, err)
			}
			if name == model.WildcardName {
				decls = append(decls, model.Wildcard{})
			} else {
				decls = append(decls, model.Name(name))
			}
		case yaml.MappingNode:
			var entry yamlExport
			if err := node.Decode(&entry); err != nil {
				return nil, fmt.Errorf("line %d: invalid export entry: %w", node.Line, err)
			}
			if entry.Name == "" {
				return nil, fmt.Errorf("line %d: export entry is missing a name", node.Line)
			}
			attrs, err := ctyAttributes(entry.Attributes)
			if err != nil {
				return nil, fmt.Errorf("line %d: export %q: %w", node.Line, entry.Name, err)
			}
			decls = append(decls, model.NameWithOptions{
				Name: entry.Name,
				Options: model.ExportOptions{
					Alias:         entry.Alias,
					SignatureHint: entry.Signature,
					Attrs:         attrs,
				},
			})
		default:
			return nil, fmt.Errorf("line %d: export entries must be names or mappings", node.Line)
		}
	}
	return decls, nil
}

// ctyAttributes converts the decoded free-form attribute map into cty
// values, matching what the HCL loader produces for the same manifest.
func ctyAttributes(raw map[string]any) (map[string]cty.Value, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	attrs := make(map[string]cty.Value, len(raw))
	for k, v := range raw {
		val, err := ctyValue(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		attrs[k] = val
	}
	return attrs, nil
}

func ctyValue(v any) (cty.Value, error) {
	switch val := v.(type) {
	case string:
		return cty.StringVal(val), nil
	case bool:
		return cty.BoolVal(val), nil
	case int:
		return cty.NumberIntVal(int64(val)), nil
	case int64:
		return cty.NumberIntVal(val), nil
	case float64:
		return cty.NumberFloatVal(val), nil
	case []any:
		elems := make([]cty.Value, 0, len(val))
		for _, e := range val {
			ev, err := ctyValue(e)
			if err != nil {
				return cty.NilVal, err
			}
			elems = append(elems, ev)
		}
		if len(elems) == 0 {
			return cty.EmptyTupleVal, nil
		}
		return cty.TupleVal(elems), nil
	case map[string]any:
		obj := make(map[string]cty.Value, len(val))
		for k, e := range val {
			ev, err := ctyValue(e)
			if err != nil {
				return cty.NilVal, err
			}
			obj[k] = ev
		}
		return cty.ObjectVal(obj), nil
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported attribute value of type %T", v)
	}
}
