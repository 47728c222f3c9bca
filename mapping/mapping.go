// Package mapping provides the field-mapping profile: a declarative table
// from canonical field name to an extractor-spec tree, loaded from YAML.
package mapping

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/openstudydata/ddiwalk/ddixml"
	"github.com/openstudydata/ddiwalk/extract"
)

// ErrUnknownField indicates a field name with no entry in the profile.
// This is a configuration error, not a runtime condition.
var ErrUnknownField = errors.New("no mapping for field")

// Profile is a complete mapping configuration for one source format.
type Profile struct {
	// Name is the profile identifier
	Name string `yaml:"name"`

	// Format is the source format (e.g., "ddi")
	Format string `yaml:"format"`

	// Version is the source schema version the queries were written against
	Version string `yaml:"version,omitempty"`

	// Description provides human-readable documentation
	Description string `yaml:"description,omitempty"`

	// Fields maps canonical field names to extractor specs
	Fields map[string]*Spec `yaml:"fields"`
}

// Spec is the YAML representation of one extractor node. Kind selects the
// node type; the remaining keys apply per kind.
type Spec struct {
	Kind      string  `yaml:"kind"`
	Value     string  `yaml:"value,omitempty"`
	Query     string  `yaml:"query,omitempty"`
	Separator string  `yaml:"separator,omitempty"`
	Child     *Spec   `yaml:"child,omitempty"`
	Children  []*Spec `yaml:"children,omitempty"`
	Starts    *Spec   `yaml:"starts,omitempty"`
	Ends      *Spec   `yaml:"ends,omitempty"`
	Cycles    *Spec   `yaml:"cycles,omitempty"`
}

// Build compiles the spec tree into an extractor node.
func (s *Spec) Build() (extract.Node, error) {
	if s == nil {
		return nil, errors.New("nil extractor spec")
	}
	switch s.Kind {
	case "literal":
		return extract.Literal{Value: s.Value}, nil
	case "xpath":
		if s.Query == "" {
			return nil, errors.New("xpath spec requires a query")
		}
		return extract.PathSingle{Query: s.Query}, nil
	case "xpath_all":
		if s.Query == "" {
			return nil, errors.New("xpath_all spec requires a query")
		}
		return extract.PathMulti{Query: s.Query}, nil
	case "join":
		children, err := buildChildren(s.Children)
		if err != nil {
			return nil, err
		}
		return extract.Join{Children: children, Separator: s.Separator}, nil
	case "first":
		children, err := buildChildren(s.Children)
		if err != nil {
			return nil, err
		}
		return extract.FirstNonEmpty{Children: children}, nil
	case "join_list":
		if s.Child == nil {
			return nil, errors.New("join_list spec requires a child")
		}
		child, err := s.Child.Build()
		if err != nil {
			return nil, err
		}
		return extract.JoinList{Child: child, Separator: s.Separator}, nil
	case "wrap":
		children, err := buildChildren(s.Children)
		if err != nil {
			return nil, err
		}
		return extract.Wrap{Children: children}, nil
	case "wrap_names":
		children, err := buildChildren(s.Children)
		if err != nil {
			return nil, err
		}
		return extract.WrapAsNames{Children: children}, nil
	case "date_range":
		if s.Starts == nil {
			return nil, errors.New("date_range spec requires starts")
		}
		starts, err := s.Starts.Build()
		if err != nil {
			return nil, err
		}
		node := extract.DateRange{Starts: starts, Separator: s.Separator}
		if s.Ends != nil {
			if node.Ends, err = s.Ends.Build(); err != nil {
				return nil, err
			}
		}
		if s.Cycles != nil {
			if node.Cycles, err = s.Cycles.Build(); err != nil {
				return nil, err
			}
		}
		return node, nil
	default:
		return nil, fmt.Errorf("unknown extractor kind %q", s.Kind)
	}
}

// Kinds returns the extractor kinds used by the spec tree, outermost first.
func (s *Spec) Kinds() []string {
	if s == nil {
		return nil
	}
	kinds := []string{s.Kind}
	for _, child := range s.Children {
		kinds = append(kinds, child.Kinds()...)
	}
	for _, child := range []*Spec{s.Child, s.Starts, s.Ends, s.Cycles} {
		kinds = append(kinds, child.Kinds()...)
	}
	return kinds
}

func buildChildren(specs []*Spec) ([]extract.Node, error) {
	if len(specs) == 0 {
		return nil, errors.New("spec requires children")
	}
	children := make([]extract.Node, 0, len(specs))
	for _, spec := range specs {
		node, err := spec.Build()
		if err != nil {
			return nil, err
		}
		children = append(children, node)
	}
	return children, nil
}

// FieldSet is a compiled profile: the process-wide, read-only table of
// extractor trees. It must be built before concurrent imports begin and is
// never mutated afterward.
type FieldSet struct {
	profile *Profile
	fields  map[string]extract.Node
	keys    []string
}

// Build compiles every field spec in the profile.
func (p *Profile) Build() (*FieldSet, error) {
	fs := &FieldSet{
		profile: p,
		fields:  make(map[string]extract.Node, len(p.Fields)),
		keys:    make([]string, 0, len(p.Fields)),
	}
	for name, spec := range p.Fields {
		node, err := spec.Build()
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		fs.fields[name] = node
		fs.keys = append(fs.keys, name)
	}
	sort.Strings(fs.keys)
	return fs, nil
}

// Profile returns the profile the set was built from.
func (fs *FieldSet) Profile() *Profile {
	return fs.profile
}

// Keys returns the declared field names, sorted.
func (fs *FieldSet) Keys() []string {
	return fs.keys
}

// Get returns the extractor for a declared field.
func (fs *FieldSet) Get(name string) (extract.Node, error) {
	node, ok := fs.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return node, nil
}

// ExtractAll evaluates every declared field against the document and
// assembles the canonical record. Fields are independent; evaluation order
// never changes the result. A panicking extractor is caught at the field
// boundary and contributes an empty value rather than aborting the record.
func (fs *FieldSet) ExtractAll(ctx *ddixml.Context) map[string]extract.Value {
	out := make(map[string]extract.Value, len(fs.fields))
	for name, node := range fs.fields {
		out[name] = extractField(name, node, ctx)
	}
	return out
}

func extractField(name string, node extract.Node, ctx *ddixml.Context) (v extract.Value) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("field extraction failed", "field", name, "panic", r)
			v = extract.Empty()
		}
	}()
	return node.Extract(ctx)
}
