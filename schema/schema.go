// Package schema declares the static record schemas shared by prompt
// rendering and structured extraction.
//
// A Schema is the single description of a record: the extract and validate
// prompts embed instructions generated from it, and the extract package
// enforces the same fields, kinds and constraints when decoding model output.
package schema

import (
	"strings"

	"github.com/fwojciec/walkplan"
)

// Kind is the value type of a field.
type Kind int

const (
	KindString     Kind = iota // Trimmed text.
	KindBool                   // Yes/no discriminator.
	KindStringList             // Ordered list of text items.
	KindEnum                   // Text restricted to Enum.
)

// String returns the JSON Schema type name for k.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "boolean"
	case KindStringList:
		return "array"
	default:
		return "string"
	}
}

// Field describes one record field.
type Field struct {
	Name        string
	Label       string // key used in the "Label: value" layout
	Description string
	Kind        Kind
	Required    bool
	NonEmpty    bool     // strings must contain non-space text
	Enum        []string // closed value set for KindEnum
	MaxItems    int      // 0 = unbounded, KindStringList only
	Aliases     []string // alternative key spellings accepted on input
}

// Matches reports whether key names this field. Comparison ignores case and
// treats spaces, dashes and underscores alike.
func (f Field) Matches(key string) bool {
	k := normalizeKey(key)
	if k == "" {
		return false
	}
	if k == normalizeKey(f.Name) || (f.Label != "" && k == normalizeKey(f.Label)) {
		return true
	}
	for _, a := range f.Aliases {
		if k == normalizeKey(a) {
			return true
		}
	}
	return false
}

// Schema is an ordered set of fields describing one record shape.
type Schema struct {
	Name        string
	Description string
	Fields      []Field
}

// Field returns the field that key names.
func (s Schema) Field(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Matches(key) {
			return f, true
		}
	}
	return Field{}, false
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(key)
}

// TripPlan is the schema of walkplan.TripPlan.
var TripPlan = Schema{
	Name:        "Trip",
	Description: "A dog walk with start and end points, ordered waypoints and a transit mode.",
	Fields: []Field{
		{
			Name:        "start",
			Label:       "Start",
			Description: "start location of trip",
			Kind:        KindString,
			Required:    true,
			NonEmpty:    true,
		},
		{
			Name:        "end",
			Label:       "End",
			Description: "end location of trip",
			Kind:        KindString,
			Required:    true,
			NonEmpty:    true,
		},
		{
			Name:        "waypoints",
			Label:       "Waypoints",
			Description: "list of waypoints in visiting order",
			Kind:        KindStringList,
			MaxItems:    walkplan.MaxWaypoints,
		},
		{
			Name:        "transit",
			Label:       "Transit",
			Description: "mode of transportation",
			Kind:        KindEnum,
			Required:    true,
			Enum:        transitValues(),
		},
	},
}

// Validation is the schema of walkplan.ValidationResult. The aliases accept
// the field names used by earlier prompt versions.
var Validation = Schema{
	Name:        "Validation",
	Description: "Feasibility verdict for a dog walk request.",
	Fields: []Field{
		{
			Name:        "is_valid",
			Label:       "Is Valid",
			Description: "true if the plan is feasible, false otherwise",
			Kind:        KindBool,
			Required:    true,
			Aliases:     []string{"plan_is_valid", "valid"},
		},
		{
			Name:        "suggested_request",
			Label:       "Suggested Request",
			Description: "your update to the plan",
			Kind:        KindString,
			Required:    true,
			Aliases:     []string{"updated_request"},
		},
	},
}

func transitValues() []string {
	ts := walkplan.Transits()
	vals := make([]string, len(ts))
	for i, t := range ts {
		vals[i] = string(t)
	}
	return vals
}
