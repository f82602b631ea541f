package extract

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/fwojciec/walkplan/schema"
)

func decodeObject(obj jsonObject, s schema.Schema) (schema.Record, error) {
	rec := make(schema.Record, len(s.Fields))
	for _, f := range s.Fields {
		raw, ok := obj.lookup(f)
		if !ok || isNull(raw) {
			if f.Required {
				return nil, parseErrorf("missing required field %q", f.Name)
			}
			continue
		}
		v, err := coerceJSON(f, raw)
		if err != nil {
			return nil, err
		}
		rec[f.Name] = v
	}
	return rec, nil
}

func decodeLines(lines map[string]string, s schema.Schema) (schema.Record, error) {
	rec := make(schema.Record, len(s.Fields))
	for _, f := range s.Fields {
		raw, ok := lines[f.Name]
		if !ok {
			if f.Required {
				return nil, parseErrorf("missing required field %q", f.Name)
			}
			continue
		}
		v, err := coerceText(f, raw)
		if err != nil {
			return nil, err
		}
		rec[f.Name] = v
	}
	return rec, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// coerceJSON converts a JSON value to the Go type of f.Kind.
func coerceJSON(f schema.Field, raw json.RawMessage) (any, error) {
	switch f.Kind {
	case schema.KindBool:
		var v any
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			return nil, typeError(f, string(raw))
		}
		switch b := v.(type) {
		case bool:
			return b, nil
		case json.Number:
			return parseBool(f, b.String())
		case string:
			return parseBool(f, b)
		}
		return nil, typeError(f, string(raw))

	case schema.KindStringList:
		return decodeList(f, raw)

	default:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, typeError(f, string(raw))
		}
		return coerceString(f, s)
	}
}

// coerceText converts the raw value of a "Key: value" line.
func coerceText(f schema.Field, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch f.Kind {
	case schema.KindBool:
		return parseBool(f, unquote(raw))

	case schema.KindStringList:
		if strings.HasPrefix(raw, "[") {
			if !json.Valid([]byte(raw)) && strings.HasSuffix(raw, "]") {
				// ['Dog Park', 'Cafe']
				return splitList(f, strings.TrimSpace(raw[1:len(raw)-1]))
			}
			return decodeList(f, json.RawMessage(raw))
		}
		return splitList(f, raw)

	default:
		return coerceString(f, unquote(raw))
	}
}

func coerceString(f schema.Field, s string) (any, error) {
	s = strings.TrimSpace(s)
	if f.Kind == schema.KindEnum {
		for _, allowed := range f.Enum {
			if strings.EqualFold(s, allowed) {
				return allowed, nil
			}
		}
		return nil, parseErrorf("field %q: %q is not one of %s", f.Name, s, strings.Join(f.Enum, ", "))
	}
	if f.NonEmpty && s == "" {
		return nil, parseErrorf("field %q must not be empty", f.Name)
	}
	return s, nil
}

func parseBool(f schema.Field, s string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	}
	return nil, typeError(f, s)
}

func decodeList(f schema.Field, raw json.RawMessage) (any, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, typeError(f, string(raw))
	}
	items := make([]string, 0, len(elems))
	for i, e := range elems {
		var s string
		if err := json.Unmarshal(e, &s); err != nil {
			return nil, parseErrorf("field %q: item %d is not a string: %s", f.Name, i+1, string(e))
		}
		items = append(items, s)
	}
	return checkList(f, items)
}

// splitList reads a plain-text list: one item per line when the value spans
// lines, otherwise comma separated. "none" or an empty value is an empty list.
func splitList(f schema.Field, raw string) (any, error) {
	if raw == "" || strings.EqualFold(raw, "none") {
		return checkList(f, []string{})
	}
	sep := ","
	if strings.Contains(raw, "\n") {
		sep = "\n"
	}
	parts := strings.Split(raw, sep)
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		items = append(items, unquote(strings.TrimSpace(p)))
	}
	return checkList(f, items)
}

func checkList(f schema.Field, items []string) (any, error) {
	if f.MaxItems > 0 && len(items) > f.MaxItems {
		return nil, parseErrorf("field %q: %d items exceeds the limit of %d", f.Name, len(items), f.MaxItems)
	}
	for i, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			return nil, parseErrorf("field %q: item %d is empty", f.Name, i+1)
		}
		items[i] = it
	}
	return items, nil
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

func typeError(f schema.Field, got string) error {
	const limit = 80
	if len(got) > limit {
		got = got[:limit] + "..."
	}
	return parseErrorf("field %q: expected %s, got %s", f.Name, f.Kind, got)
}

