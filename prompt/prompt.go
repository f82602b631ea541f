// Package prompt renders the system and user messages for each pipeline stage.
//
// Template text is embedded data. Each stage takes exactly one variable:
// "query" for validate and itinerary, "agent_suggestion" for extract. Format
// instructions are generated from the schema package rather than written by
// hand, so prompt and parser cannot drift apart.
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/fwojciec/walkplan"
	"github.com/fwojciec/walkplan/schema"
)

// Variable keys.
const (
	KeyQuery           = "query"
	KeyAgentSuggestion = "agent_suggestion"
)

// Vars maps variable keys to values.
type Vars map[string]string

// Prompt is a rendered stage prompt.
type Prompt struct {
	System string
	User   string
}

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").Option("missingkey=error").ParseFS(templateFS, "templates/*.tmpl"))

type stageTemplate struct {
	file string
	key  string
	data func() any
}

var stages = map[walkplan.Stage]stageTemplate{
	walkplan.StageValidate: {
		file: "validate.tmpl",
		key:  KeyQuery,
		data: func() any {
			return map[string]any{"FormatInstructions": schema.Validation.FormatInstructions()}
		},
	},
	walkplan.StageItinerary: {
		file: "itinerary.tmpl",
		key:  KeyQuery,
		data: func() any { return nil },
	},
	walkplan.StageExtract: {
		file: "extract.tmpl",
		key:  KeyAgentSuggestion,
		data: func() any {
			return map[string]any{
				"MaxWaypoints":       walkplan.MaxWaypoints,
				"Example":            example(),
				"Transits":           quotedTransits(),
				"FormatInstructions": schema.TripPlan.FormatInstructions(),
			}
		},
	},
}

// system prompts do not depend on variables, so render them once.
var systemPrompts = renderSystemPrompts()

func renderSystemPrompts() map[walkplan.Stage]string {
	out := make(map[walkplan.Stage]string, len(stages))
	for stage, st := range stages {
		var b strings.Builder
		if err := templates.ExecuteTemplate(&b, st.file, st.data()); err != nil {
			panic(fmt.Sprintf("prompt: render %s: %v", st.file, err))
		}
		out[stage] = strings.TrimSpace(b.String())
	}
	return out
}

// Key returns the variable key stage expects.
func Key(stage walkplan.Stage) (string, error) {
	st, ok := stages[stage]
	if !ok {
		return "", fmt.Errorf("prompt: %q: %w", stage, walkplan.ErrUnknownStage)
	}
	return st.key, nil
}

// Render returns the prompt for stage with its variable substituted into the
// user message. A missing or blank variable returns a
// *walkplan.MissingVariableError. Keys the stage does not use are ignored.
func Render(stage walkplan.Stage, vars Vars) (Prompt, error) {
	key, err := Key(stage)
	if err != nil {
		return Prompt{}, err
	}
	value, ok := vars[key]
	if !ok || strings.TrimSpace(value) == "" {
		return Prompt{}, &walkplan.MissingVariableError{Stage: stage, Key: key}
	}
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, "user.tmpl", value); err != nil {
		return Prompt{}, fmt.Errorf("prompt: render user message: %w", err)
	}
	return Prompt{
		System: systemPrompts[stage],
		User:   strings.TrimSpace(b.String()),
	}, nil
}

// Correction returns the note appended to an extract prompt after the
// previous response failed to parse.
func Correction(reason string) string {
	return "Your previous output did not match the required format (" + reason + "). " +
		"Reply again with only the JSON object described in the instructions."
}

func example() string {
	out, err := schema.TripPlan.Format(schema.Record{
		"start":     "Central Park",
		"end":       "Central Park",
		"waypoints": []string{"Dog Park", "Riverside Drive", "Coffee Shop"},
		"transit":   string(walkplan.TransitWalking),
	})
	if err != nil {
		panic(fmt.Sprintf("prompt: format example: %v", err))
	}
	return out
}

func quotedTransits() string {
	ts := walkplan.Transits()
	quoted := make([]string, len(ts))
	for i, t := range ts {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}
