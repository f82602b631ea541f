// Package extract turns free-form language model output into records that
// conform to a [schema.Schema].
//
// The model is asked for a JSON object but is not trusted to comply. Extract
// looks for the payload in fenced code blocks, then anywhere in the text as a
// balanced JSON object, then as a block of "Key: value" lines. Every failure
// is reported as a *walkplan.ParseError; values outside a field's declared
// type, enum or length bound are rejected, never coerced to a default.
package extract

import (
	"fmt"
	"strings"

	"github.com/fwojciec/walkplan"
	"github.com/fwojciec/walkplan/schema"
)

// Extract locates the structured payload in text and decodes it against s.
// It is a pure function: the same text always yields an equal record.
func Extract(text string, s schema.Schema) (schema.Record, error) {
	text = sanitize(text)
	if strings.TrimSpace(text) == "" {
		return nil, parseErrorf("empty response")
	}
	p := locate(text, s)
	switch p.kind {
	case payloadJSON:
		return decodeObject(p.object, s)
	case payloadLines:
		return decodeLines(p.lines, s)
	default:
		return nil, parseErrorf("no structured payload found")
	}
}

// TripPlan extracts a walkplan.TripPlan from text. Waypoints is never nil.
func TripPlan(text string) (walkplan.TripPlan, error) {
	rec, err := Extract(text, schema.TripPlan)
	if err != nil {
		return walkplan.TripPlan{}, err
	}
	plan := walkplan.TripPlan{
		Start:     rec.String("start"),
		End:       rec.String("end"),
		Waypoints: rec.Strings("waypoints"),
		Transit:   walkplan.Transit(rec.String("transit")),
	}
	if plan.Waypoints == nil {
		plan.Waypoints = []string{}
	}
	if err := plan.Validate(); err != nil {
		return walkplan.TripPlan{}, err
	}
	return plan, nil
}

// Validation extracts a walkplan.ValidationResult from text. A rejected
// request must come with a non-empty suggestion.
func Validation(text string) (walkplan.ValidationResult, error) {
	rec, err := Extract(text, schema.Validation)
	if err != nil {
		return walkplan.ValidationResult{}, err
	}
	res := walkplan.ValidationResult{
		IsValid:          rec.Bool("is_valid"),
		SuggestedRequest: rec.String("suggested_request"),
	}
	if !res.IsValid && res.SuggestedRequest == "" {
		return walkplan.ValidationResult{}, parseErrorf("suggested_request must not be empty when is_valid is false")
	}
	return res, nil
}

func parseErrorf(format string, args ...any) *walkplan.ParseError {
	return &walkplan.ParseError{Reason: fmt.Sprintf(format, args...)}
}
