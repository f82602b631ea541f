package extract

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/fwojciec/walkplan/schema"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type payloadKind int

const (
	payloadNone  payloadKind = iota // Nothing resembling a record.
	payloadJSON                     // A JSON object.
	payloadLines                    // "Key: value" lines.
)

// payload is the located structured region of a response.
type payload struct {
	kind   payloadKind
	object jsonObject
	lines  map[string]string // canonical field name -> raw value
}

// jsonObject is a decoded JSON object with its keys in sorted order so that
// field resolution does not depend on map iteration.
type jsonObject struct {
	keys   []string
	values map[string]json.RawMessage
}

func locate(input string, s schema.Schema) payload {
	// Fenced blocks first: models often wrap the object in ```json.
	var fallback *jsonObject
	for _, region := range append(fencedBlocks(input), input) {
		for _, cand := range jsonCandidates(region) {
			obj, ok := parseObject(cand)
			if !ok {
				continue
			}
			if found, ok := obj.find(s); ok {
				return payload{kind: payloadJSON, object: found}
			}
			if fallback == nil {
				fallback = &obj
			}
		}
	}
	if lines := keyValueLines(input, s); len(lines) > 0 {
		return payload{kind: payloadLines, lines: lines}
	}
	if fallback != nil {
		return payload{kind: payloadJSON, object: *fallback}
	}
	return payload{kind: payloadNone}
}

// fencedBlocks returns the contents of fenced code blocks tagged json or
// untagged, in document order.
func fencedBlocks(input string) []string {
	source := []byte(input)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var blocks []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		lang := strings.ToLower(string(fb.Language(source)))
		if lang != "" && lang != "json" {
			return ast.WalkSkipChildren, nil
		}
		var b strings.Builder
		lines := fb.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(source))
		}
		blocks = append(blocks, b.String())
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

// jsonCandidates returns every top-level balanced {...} region of s. It skips
// braces inside JSON strings. A '{' that is never closed is treated as prose
// and scanning resumes right after it. Scanning bytes is safe because UTF-8 never
// encodes '{', '}', '"' or '\\' inside a multi-byte sequence.
func jsonCandidates(s string) []string {
	var (
		candidates []string
		depth      int
		start      = -1
		inString   bool
		escaped    bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				candidates = append(candidates, s[start:i+1])
				start = -1
			}
		}
	}
	if depth > 0 && start >= 0 {
		candidates = append(candidates, jsonCandidates(s[start+1:])...)
	}
	return candidates
}

func parseObject(s string) (jsonObject, bool) {
	var values map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &values); err != nil {
		return jsonObject{}, false
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return jsonObject{keys: keys, values: values}, true
}

// mentions reports whether any key of o names a field of s.
func (o jsonObject) mentions(s schema.Schema) bool {
	for _, k := range o.keys {
		if _, ok := s.Field(k); ok {
			return true
		}
	}
	return false
}

// find returns o when it mentions a field of s, otherwise the first nested
// object, in key order, that does.
func (o jsonObject) find(s schema.Schema) (jsonObject, bool) {
	if o.mentions(s) {
		return o, true
	}
	for _, k := range o.keys {
		inner, ok := parseObject(string(o.values[k]))
		if !ok {
			continue
		}
		if found, ok := inner.find(s); ok {
			return found, true
		}
	}
	return jsonObject{}, false
}

// lookup returns the value of the first key, in sorted order, naming f.
func (o jsonObject) lookup(f schema.Field) (json.RawMessage, bool) {
	for _, k := range o.keys {
		if f.Matches(k) {
			return o.values[k], true
		}
	}
	return nil, false
}

// keyLine matches "Key: value" with optional list bullet and markdown emphasis.
var keyLine = regexp.MustCompile(`^\s*(?:[-*+]\s+)?(?:\*\*|__)?([A-Za-z][A-Za-z _-]*?)(?:\*\*|__)?\s*:\s*(?:\*\*|__)?\s*(.*)$`)

// bulletLine matches a list item continuing a multi-line list value.
var bulletLine = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+(.+)$`)

// keyValueLines collects the first "Key: value" line for each schema field.
// A list field with an empty value on its key line takes its items from the
// bullet lines that follow.
func keyValueLines(input string, s schema.Schema) map[string]string {
	found := make(map[string]string)
	lines := strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n")
	for i := 0; i < len(lines); i++ {
		m := keyLine.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		f, ok := s.Field(m[1])
		if !ok {
			continue
		}
		if _, seen := found[f.Name]; seen {
			continue
		}
		value := strings.TrimSpace(m[2])
		if f.Kind == schema.KindStringList && value == "" {
			var items []string
			for i+1 < len(lines) {
				bm := bulletLine.FindStringSubmatch(lines[i+1])
				if bm == nil {
					break
				}
				items = append(items, strings.TrimSpace(bm[1]))
				i++
			}
			value = strings.Join(items, "\n")
			found[f.Name] = value
			continue
		}
		found[f.Name] = value
	}
	return found
}
