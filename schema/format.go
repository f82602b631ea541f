package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type jsonSchema struct {
	Title       string                  `json:"title,omitempty"`
	Description string                  `json:"description,omitempty"`
	Type        string                  `json:"type"`
	Properties  map[string]jsonProperty `json:"properties"`
	Required    []string                `json:"required,omitempty"`
}

type jsonProperty struct {
	Type        string        `json:"type"`
	Description string        `json:"description,omitempty"`
	Enum        []string      `json:"enum,omitempty"`
	Items       *jsonProperty `json:"items,omitempty"`
	MaxItems    int           `json:"maxItems,omitempty"`
	MinLength   int           `json:"minLength,omitempty"`
}

// JSONSchema returns the JSON Schema document for s.
func (s Schema) JSONSchema() ([]byte, error) {
	doc := jsonSchema{
		Title:       s.Name,
		Description: s.Description,
		Type:        "object",
		Properties:  make(map[string]jsonProperty, len(s.Fields)),
	}
	for _, f := range s.Fields {
		p := jsonProperty{Type: f.Kind.String(), Description: f.Description}
		switch f.Kind {
		case KindEnum:
			p.Enum = f.Enum
		case KindStringList:
			p.Items = &jsonProperty{Type: "string"}
			p.MaxItems = f.MaxItems
		case KindString:
			if f.NonEmpty {
				p.MinLength = 1
			}
		}
		doc.Properties[f.Name] = p
		if f.Required {
			doc.Required = append(doc.Required, f.Name)
		}
	}
	return json.Marshal(doc)
}

// FormatInstructions returns the output format section embedded in prompts
// that expect a record of this schema.
func (s Schema) FormatInstructions() string {
	doc, err := s.JSONSchema()
	if err != nil {
		// jsonSchema holds only strings, ints and slices.
		panic(fmt.Sprintf("schema: marshal %s: %v", s.Name, err))
	}

	var b strings.Builder
	b.WriteString("The output should be formatted as a JSON instance that conforms to the JSON schema below.\n\n")
	b.WriteString("Fields:\n")
	for _, f := range s.Fields {
		fmt.Fprintf(&b, "- %s (%s", f.Name, describeKind(f))
		if f.Required {
			b.WriteString(", required")
		}
		fmt.Fprintf(&b, "): %s\n", f.Description)
	}
	b.WriteString("\nHere is the output schema:\n```\n")
	b.Write(doc)
	b.WriteString("\n```\n")
	b.WriteString("Return the JSON object only, with exactly these keys.")
	return b.String()
}

func describeKind(f Field) string {
	switch f.Kind {
	case KindBool:
		return "boolean"
	case KindStringList:
		if f.MaxItems > 0 {
			return fmt.Sprintf("list of strings, at most %d items", f.MaxItems)
		}
		return "list of strings"
	case KindEnum:
		quoted := make([]string, len(f.Enum))
		for i, v := range f.Enum {
			quoted[i] = fmt.Sprintf("%q", v)
		}
		return "one of " + strings.Join(quoted, ", ")
	default:
		return "string"
	}
}

// Format renders rec as the JSON object the format instructions ask for,
// with keys in field order. Absent optional fields are omitted.
func (s Schema) Format(rec Record) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	n := 0
	for _, f := range s.Fields {
		v, ok := rec[f.Name]
		if !ok {
			if f.Required {
				return "", fmt.Errorf("schema: %s: missing required field %q", s.Name, f.Name)
			}
			continue
		}
		if err := checkGoType(f, v); err != nil {
			return "", fmt.Errorf("schema: %s: %w", s.Name, err)
		}
		if l, isList := v.([]string); isList && l == nil {
			v = []string{}
		}
		val, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("schema: %s: field %q: %w", s.Name, f.Name, err)
		}
		if n > 0 {
			buf.WriteString(", ")
		}
		key, _ := json.Marshal(f.Name)
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(val)
		n++
	}
	buf.WriteString("}")
	return buf.String(), nil
}

func checkGoType(f Field, v any) error {
	var ok bool
	switch f.Kind {
	case KindBool:
		_, ok = v.(bool)
	case KindStringList:
		_, ok = v.([]string)
	default:
		_, ok = v.(string)
	}
	if !ok {
		return fmt.Errorf("field %q: value of type %T is not a %s", f.Name, v, f.Kind)
	}
	return nil
}
