package etl

import (
	"fmt"
	"strings"

	"github.com/BartekS5/xtravels-migrate/pkg/models"
)

// Mapping is a compiled mapping descriptor: what to query and how to
// reshape each row before it is written.
type Mapping struct {
	Name       string
	Projection Projection
	Transform  RowTransform
}

// Projection selects and renames fields of one source entity.
type Projection struct {
	Entity       string
	Columns      []Column
	Associations map[string]Association
}

// Column is one output field. Several paths are concatenated as strings.
type Column struct {
	Name  string
	Paths []Path
}

// Path addresses a source field, optionally through an association.
type Path struct {
	Association string
	Field       string
}

func (p Path) String() string {
	if p.Association == "" {
		return p.Field
	}
	return p.Association + "." + p.Field
}

type Association struct {
	Target     string
	ForeignKey string
	TargetKey  string
}

// ColumnNames returns the output field names in projection order.
func (p Projection) ColumnNames() []string {
	names := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		names[i] = c.Name
	}
	return names
}

// UsedAssociations returns the associations referenced by any column, in
// first-use order.
func (p Projection) UsedAssociations() []string {
	var used []string
	seen := map[string]bool{}
	for _, c := range p.Columns {
		for _, path := range c.Paths {
			if path.Association != "" && !seen[path.Association] {
				seen[path.Association] = true
				used = append(used, path.Association)
			}
		}
	}
	return used
}

// Compile turns a mapping set into runnable mappings.
func Compile(set *models.MappingSet) ([]Mapping, error) {
	mappings := make([]Mapping, 0, len(set.Mappings))
	for _, ms := range set.Mappings {
		m, err := compileMapping(ms)
		if err != nil {
			return nil, fmt.Errorf("mapping %q: %w", ms.Name, err)
		}
		mappings = append(mappings, m)
	}
	return mappings, nil
}

func compileMapping(ms models.MappingSchema) (Mapping, error) {
	proj := Projection{
		Entity:       ms.Entity,
		Associations: make(map[string]Association, len(ms.Associations)),
	}
	for name, a := range ms.Associations {
		if a.Target == "" || a.ForeignKey == "" || a.TargetKey == "" {
			return Mapping{}, fmt.Errorf("association %q is incomplete", name)
		}
		proj.Associations[name] = Association{Target: a.Target, ForeignKey: a.ForeignKey, TargetKey: a.TargetKey}
	}

	for _, f := range ms.Fields {
		col := Column{Name: f.As}
		for _, src := range f.From {
			path, err := parsePath(src)
			if err != nil {
				return Mapping{}, err
			}
			if path.Association != "" {
				if _, ok := proj.Associations[path.Association]; !ok {
					return Mapping{}, fmt.Errorf("field %q uses undeclared association %q", f.As, path.Association)
				}
			}
			col.Paths = append(col.Paths, path)
		}
		proj.Columns = append(proj.Columns, col)
	}

	transform, err := NewTransformer(ms.Transforms)
	if err != nil {
		return Mapping{}, err
	}

	m := Mapping{Name: ms.Name, Projection: proj}
	if transform != nil {
		m.Transform = transform.Apply
	}
	return m, nil
}

func parsePath(s string) (Path, error) {
	parts := strings.Split(s, ".")
	switch {
	case len(parts) == 1 && parts[0] != "":
		return Path{Field: parts[0]}, nil
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		return Path{Association: parts[0], Field: parts[1]}, nil
	default:
		return Path{}, fmt.Errorf("unsupported source path %q", s)
	}
}
