package render

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/zigbind/internal/model"
)

// ElixirRenderer emits an Elixir module whose functions raise until the
// compiled NIF library is loaded over them.
type ElixirRenderer struct{}

var elixirTemplate = template.Must(template.New("elixir").Funcs(template.FuncMap{
	"args":     stubArgs,
	"docLines": docLines,
}).Parse(`defmodule {{.ModuleName}} do
  @moduledoc """
  Native bindings for the {{.Name}} module, generated by zigbind.
  """
{{- range $k, $v := .Attributes}}
  @{{$k}} {{$v}}
{{- end}}

  @on_load :__load_nifs__

  @doc false
  def __load_nifs__ do
    :erlang.load_nif(~c"{{.LibraryPath}}", 0)
  end
{{range .Exports}}
{{- if .Doc}}
  @doc """
{{docLines .Doc}}  """
{{- end}}
  def {{.HostName}}({{args .Arity}}), do: :erlang.nif_error(:nif_not_loaded)
{{end -}}
end
`))

type elixirData struct {
	Name        string
	ModuleName  string
	LibraryPath string
	Attributes  map[string]string
	Exports     []model.ExportRecord
}

// RenderHost implements HostRenderer.
func (r *ElixirRenderer) RenderHost(desc model.Descriptor) (string, error) {
	data := elixirData{
		Name:        desc.Config.Name,
		ModuleName:  elixirModuleName(desc.Config.Name),
		LibraryPath: desc.Config.Name,
		Attributes:  elixirAttributes(desc.Config.Attributes),
		Exports:     desc.Exports,
	}

	var b strings.Builder
	if err := elixirTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering elixir module %q: %w", desc.Config.Name, err)
	}
	return b.String(), nil
}

// FileName implements HostRenderer.
func (r *ElixirRenderer) FileName(module string) string {
	return module + ".ex"
}

// elixirModuleName capitalizes each underscore-separated word of the module
// identifier, "math_nifs" becoming "MathNifs".
func elixirModuleName(name string) string {
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "")
}

// elixirAttributes renders the author's free-form attributes as module
// attributes, forwarded unmodified in value.
func elixirAttributes(attrs map[string]cty.Value) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = elixirLiteral(v)
	}
	return out
}

func elixirLiteral(v cty.Value) string {
	switch {
	case v.IsNull():
		return "nil"
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

// stubArgs renders n ignored parameters for a stub head.
func stubArgs(n int) string {
	args := make([]string, n)
	for i := range args {
		args[i] = fmt.Sprintf("_arg%d", i+1)
	}
	return strings.Join(args, ", ")
}

// docLines indents a doc string for a heredoc body.
func docLines(doc string) string {
	var b strings.Builder
	for _, line := range strings.Split(doc, "\n") {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
