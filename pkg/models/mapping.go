package models

import (
	"encoding/json"
	"fmt"
)

// MappingSet represents the root of a JSON mapping file.
type MappingSet struct {
	Version   string          `json:"version"`
	Namespace string          `json:"namespace"`
	Mappings  []MappingSchema `json:"mappings"`
}

// MappingSchema describes how one legacy entity is projected into one
// seed file of the new schema.
type MappingSchema struct {
	Name         string                       `json:"name"`
	Entity       string                       `json:"entity"`
	Fields       []FieldConfig                `json:"fields"`
	Associations map[string]AssociationConfig `json:"associations,omitempty"`
	Transforms   []TransformConfig            `json:"transforms,omitempty"`
}

// FieldConfig is one output column. From holds source paths such as
// "BookingID" or "to_Travel.TravelID"; more than one path is concatenated.
type FieldConfig struct {
	As   string   `json:"as"`
	From []string `json:"from"`
}

type AssociationConfig struct {
	Target     string `json:"target"`
	ForeignKey string `json:"foreignKey"`
	TargetKey  string `json:"targetKey"`
}

type TransformConfig struct {
	Type  string           `json:"type"`
	Field string           `json:"field"`
	Days  int              `json:"days,omitempty"`
	When  *ConditionConfig `json:"when,omitempty"`
}

// ConditionConfig restricts a transform to rows whose Field value is in In.
type ConditionConfig struct {
	Field string   `json:"field"`
	In    []string `json:"in"`
}

func LoadMapping(data []byte) (*MappingSet, error) {
	var m MappingSet
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the structural rules the query builders rely on.
func (m *MappingSet) Validate() error {
	if len(m.Mappings) == 0 {
		return fmt.Errorf("mapping set has no mappings")
	}
	seen := make(map[string]bool, len(m.Mappings))
	for _, ms := range m.Mappings {
		if ms.Name == "" || ms.Entity == "" {
			return fmt.Errorf("mapping %q: name and entity are required", ms.Name)
		}
		if seen[ms.Name] {
			return fmt.Errorf("duplicate mapping name %q", ms.Name)
		}
		seen[ms.Name] = true

		if len(ms.Fields) == 0 {
			return fmt.Errorf("mapping %q: no fields", ms.Name)
		}
		cols := make(map[string]bool, len(ms.Fields))
		for _, f := range ms.Fields {
			if f.As == "" || len(f.From) == 0 {
				return fmt.Errorf("mapping %q: field needs 'as' and 'from'", ms.Name)
			}
			if cols[f.As] {
				return fmt.Errorf("mapping %q: duplicate field %q", ms.Name, f.As)
			}
			cols[f.As] = true
		}
	}
	return nil
}
