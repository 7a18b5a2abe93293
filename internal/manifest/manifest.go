// Package manifest loads the declarations and registration requests of a
// verification unit from YAML.
//
// A manifest stands in for the output of a parser and type checker: it lists
// the traits, nominal types and declarations in scope, and marks the
// declarations that carry a derivative attribute.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/derivcheck/internal/config"
	"github.com/funvibe/derivcheck/internal/derivative"
	"github.com/funvibe/derivcheck/internal/diagnostics"
)

// Manifest represents a whole manifest file.
type Manifest struct {
	// File is the default source file of declarations that do not name one.
	// Defaults to the manifest's base name.
	File string `yaml:"file,omitempty"`

	// NoPrelude skips the builtin traits and numeric types.
	NoPrelude bool `yaml:"no_prelude,omitempty"`

	Traits       []Trait `yaml:"traits,omitempty"`
	Types        []Type  `yaml:"types,omitempty"`
	Declarations []Decl  `yaml:"declarations"`
}

// Trait declares a trait and the traits it refines.
type Trait struct {
	Name    string   `yaml:"name"`
	Refines []string `yaml:"refines,omitempty"`
}

// Type declares a nominal type.
type Type struct {
	Name     string   `yaml:"name"`
	Conforms []string `yaml:"conforms,omitempty"`
	// Tangent is the TangentVector of a Differentiable type. Defaults to
	// the type itself when the type conforms to Differentiable.
	Tangent string `yaml:"tangent,omitempty"`
}

// Decl is a function, method or property.
type Decl struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name,omitempty"` // Defaults to ID
	File string `yaml:"file,omitempty"`

	// Owner is the enclosing type or trait. Kind defaults to "instance" for
	// declarations with an owner and "free" otherwise.
	Owner string `yaml:"owner,omitempty"`
	Kind  string `yaml:"kind,omitempty"`

	Generics     []string `yaml:"generics,omitempty"`
	Requirements []string `yaml:"requirements,omitempty"`

	// Params are written as "[label] name: Type", e.g. "_ x: Float".
	Params []string `yaml:"params,omitempty"`
	Result string   `yaml:"result,omitempty"` // Defaults to ()

	Attribute *Attribute `yaml:"attribute,omitempty"`

	// Expect is the diagnostic the attribute should produce, by name or
	// code. Only consulted in verify mode.
	Expect string `yaml:"expect,omitempty"`
}

// Attribute marks a declaration as a derivative of another one.
type Attribute struct {
	Kind string   `yaml:"kind,omitempty"` // differentiating (default) or transposing
	Of   string   `yaml:"of"`
	Wrt  WrtField `yaml:"wrt,omitempty"`
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return ParseManifest(data, path)
}

// ParseManifest parses manifest content from bytes.
// The path argument is used for error messages and the default file name.
func ParseManifest(data []byte, path string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := m.validate(path); err != nil {
		return nil, err
	}
	m.setDefaults(path)
	return &m, nil
}

// validate checks the manifest for semantic errors.
func (m *Manifest) validate(path string) error {
	if len(m.Declarations) == 0 {
		return fmt.Errorf("%s: no declarations defined", path)
	}

	seenTypes := make(map[string]bool)
	for i, t := range m.Traits {
		if t.Name == "" {
			return fmt.Errorf("%s: traits[%d]: name is required", path, i)
		}
		if seenTypes[t.Name] {
			return fmt.Errorf("%s: traits[%d]: %s declared twice", path, i, t.Name)
		}
		seenTypes[t.Name] = true
	}
	for i, t := range m.Types {
		if t.Name == "" {
			return fmt.Errorf("%s: types[%d]: name is required", path, i)
		}
		if seenTypes[t.Name] {
			return fmt.Errorf("%s: types[%d]: %s declared twice", path, i, t.Name)
		}
		seenTypes[t.Name] = true
	}

	seenIDs := make(map[string]bool)
	for i, d := range m.Declarations {
		if d.ID == "" {
			return fmt.Errorf("%s: declarations[%d]: id is required", path, i)
		}
		if seenIDs[d.ID] {
			return fmt.Errorf("%s: declarations[%d]: duplicate id %q", path, i, d.ID)
		}
		seenIDs[d.ID] = true

		switch d.Kind {
		case "", "free", "static", "instance", "property":
		default:
			return fmt.Errorf("%s: declarations[%d] (%s): unknown kind %q", path, i, d.ID, d.Kind)
		}
		if d.Kind == "free" && d.Owner != "" {
			return fmt.Errorf("%s: declarations[%d] (%s): free declarations have no owner", path, i, d.ID)
		}
		if (d.Kind == "static" || d.Kind == "instance" || d.Kind == "property") && d.Owner == "" {
			return fmt.Errorf("%s: declarations[%d] (%s): %s declarations require an owner", path, i, d.ID, d.Kind)
		}
		if d.Kind == "property" && len(d.Params) > 0 {
			return fmt.Errorf("%s: declarations[%d] (%s): properties take no parameters", path, i, d.ID)
		}
		for j, p := range d.Params {
			if _, _, _, err := splitParam(p); err != nil {
				return fmt.Errorf("%s: declarations[%d].params[%d] (%s): %w", path, i, j, d.ID, err)
			}
		}

		if d.Attribute != nil {
			if d.Attribute.Of == "" {
				return fmt.Errorf("%s: declarations[%d] (%s): attribute requires 'of'", path, i, d.ID)
			}
			if _, err := derivative.ParseAttribute(d.Attribute.Kind); err != nil {
				return fmt.Errorf("%s: declarations[%d] (%s): %w", path, i, d.ID, err)
			}
		}
		if d.Expect != "" {
			if d.Attribute == nil {
				return fmt.Errorf("%s: declarations[%d] (%s): expect without attribute", path, i, d.ID)
			}
			if _, ok := diagnostics.CodeByName(d.Expect); !ok {
				return fmt.Errorf("%s: declarations[%d] (%s): unknown diagnostic %q", path, i, d.ID, d.Expect)
			}
		}
	}
	return nil
}

// setDefaults fills in default values for omitted fields.
func (m *Manifest) setDefaults(path string) {
	if m.File == "" {
		m.File = filepath.Base(path)
	}
	for i := range m.Declarations {
		d := &m.Declarations[i]
		if d.Name == "" {
			d.Name = d.ID
		}
		if d.File == "" {
			d.File = m.File
		}
		if d.Kind == "" {
			if d.Owner != "" {
				d.Kind = "instance"
			} else {
				d.Kind = "free"
			}
		}
		if d.Result == "" {
			d.Result = "()"
		}
		if d.Attribute != nil && d.Attribute.Kind == "" {
			d.Attribute.Kind = config.DifferentiatingAttr
		}
	}
}

// splitParam splits "[label] name: Type" into its parts.
func splitParam(p string) (label, name, typ string, err error) {
	colon := strings.IndexByte(p, ':')
	if colon < 0 {
		return "", "", "", fmt.Errorf("parameter %q: missing ':'", p)
	}
	names := strings.Fields(p[:colon])
	typ = strings.TrimSpace(p[colon+1:])
	if typ == "" {
		return "", "", "", fmt.Errorf("parameter %q: missing type", p)
	}
	switch len(names) {
	case 1:
		return names[0], names[0], typ, nil
	case 2:
		return names[0], names[1], typ, nil
	default:
		return "", "", "", fmt.Errorf("parameter %q: expected '[label] name: Type'", p)
	}
}
