package render

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/zigbind/internal/model"
)

// ErlangRenderer emits an Erlang source module equivalent to the Elixir
// flavor: exported stubs that fail with nif_error until the library loads.
type ErlangRenderer struct{}

var erlangTemplate = template.Must(template.New("erlang").Funcs(template.FuncMap{
	"args": stubArgs,
}).Parse(`%% Generated by zigbind. Do not edit.
-module({{.Name}}).
-export([{{.ExportList}}]).
-on_load(init/0).
{{- range $k, $v := .Attributes}}
-{{$k}}({{$v}}).
{{- end}}

init() ->
    erlang:load_nif("{{.LibraryPath}}", 0).
{{range .Exports}}
{{- if .Doc}}
%% {{.DocOneLine}}
{{- end}}
{{.HostName}}({{args .Arity}}) ->
    erlang:nif_error(nif_not_loaded).
{{end -}}
`))

type erlangExport struct {
	model.ExportRecord
}

// DocOneLine flattens the doc comment for a leading %% line.
func (e erlangExport) DocOneLine() string {
	return strings.Join(strings.Split(e.Doc, "\n"), " ")
}

type erlangData struct {
	Name        string
	LibraryPath string
	ExportList  string
	Attributes  map[string]string
	Exports     []erlangExport
}

// RenderHost implements HostRenderer.
func (r *ErlangRenderer) RenderHost(desc model.Descriptor) (string, error) {
	exports := make([]erlangExport, len(desc.Exports))
	specs := make([]string, len(desc.Exports))
	for i, rec := range desc.Exports {
		exports[i] = erlangExport{rec}
		specs[i] = fmt.Sprintf("%s/%d", rec.HostName(), rec.Arity)
	}

	data := erlangData{
		Name:        desc.Config.Name,
		LibraryPath: desc.Config.Name,
		ExportList:  strings.Join(specs, ", "),
		Attributes:  erlangAttributes(desc.Config.Attributes),
		Exports:     exports,
	}

	var b strings.Builder
	if err := erlangTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering erlang module %q: %w", desc.Config.Name, err)
	}
	return b.String(), nil
}

// FileName implements HostRenderer.
func (r *ErlangRenderer) FileName(module string) string {
	return module + ".erl"
}

// erlangAttributes renders the author's free-form attributes as module
// attributes, matching what the Elixir flavor emits for the same manifest.
func erlangAttributes(attrs map[string]cty.Value) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = erlangLiteral(v)
	}
	return out
}

func erlangLiteral(v cty.Value) string {
	switch {
	case v.IsNull():
		return "undefined"
	case v.Type() == cty.String:
		return fmt.Sprintf("%q", v.AsString())
	case v.Type() == cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	case v.Type() == cty.Number:
		return v.AsBigFloat().Text('g', -1)
	default:
		return fmt.Sprintf("%q", v.GoString())
	}
}
