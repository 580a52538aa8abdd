package wire

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/corefn-dev/nbeopt/internal/coreir"
	"github.com/corefn-dev/nbeopt/internal/directive"
)

type yamlDirectiveFile struct {
	Directives []yamlDirective `yaml:"directives"`
}

type yamlDirective struct {
	Module string   `yaml:"module"`
	Name   string   `yaml:"name"`
	Path   []string `yaml:"path,omitempty"`
	Inline string   `yaml:"inline"`
	Arity  int      `yaml:"arity,omitempty"`
}

// DecodeDirectives parses a directives file into the map Optimize
// expects. This is the minimal loader directive.go's own doc comment
// defers to — it populates EvalRef/InlineDirective pairs and leaves any
// precedence merge against a module's own exported defaults to the
// caller.
func DecodeDirectives(data []byte) (map[directive.EvalRef]directive.InlineDirective, error) {
	var raw yamlDirectiveFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	out := make(map[directive.EvalRef]directive.InlineDirective, len(raw.Directives))
	for _, d := range raw.Directives {
		ref := directive.EvalRef{Qual: coreir.NewQualified(d.Module, d.Name), Path: strings.Join(d.Path, ".")}
		dir, err := resolveInlineDirective(d)
		if err != nil {
			return nil, fmt.Errorf("wire: directive for %s.%s: %w", d.Module, d.Name, err)
		}
		out[ref] = dir
	}
	return out, nil
}

func resolveInlineDirective(d yamlDirective) (directive.InlineDirective, error) {
	switch d.Inline {
	case "", "default":
		return directive.Default(), nil
	case "never":
		return directive.Never(), nil
	case "always":
		return directive.Always(), nil
	case "arity":
		if d.Arity < 1 {
			return directive.InlineDirective{}, fmt.Errorf("arity directive needs arity >= 1, got %d", d.Arity)
		}
		return directive.ArityN(d.Arity), nil
	default:
		return directive.InlineDirective{}, fmt.Errorf("unknown inline directive %q", d.Inline)
	}
}
