package extract_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fwojciec/walkplan"
	"github.com/fwojciec/walkplan/extract"
	"github.com/fwojciec/walkplan/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireParseError(t *testing.T, err error, reason string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, walkplan.ErrParse), "expected ErrParse, got %v", err)
	var pe *walkplan.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Reason, reason)
}

func TestTripPlan_PlainJSON(t *testing.T) {
	t.Parallel()
	got, err := extract.TripPlan(`{"start": "Central Park", "end": "Central Park", "waypoints": ["Dog Park", "Riverside Drive"], "transit": "walking"}`)
	require.NoError(t, err)
	assert.Equal(t, walkplan.TripPlan{
		Start:     "Central Park",
		End:       "Central Park",
		Waypoints: []string{"Dog Park", "Riverside Drive"},
		Transit:   walkplan.TransitWalking,
	}, got)
}

func TestTripPlan_JSONSurroundedByProse(t *testing.T) {
	t.Parallel()
	text := "Sure! Use {curly} braces sparingly. Here is the plan:\n" +
		`{"start": "12 Elm St", "end": "Lakeside {North} Gate", "waypoints": [], "transit": "bicycle"}` +
		"\nHave a great walk!"
	got, err := extract.TripPlan(text)
	require.NoError(t, err)
	assert.Equal(t, "12 Elm St", got.Start)
	assert.Equal(t, "Lakeside {North} Gate", got.End)
	assert.Equal(t, []string{}, got.Waypoints)
	assert.Equal(t, walkplan.TransitBicycle, got.Transit)
}

func TestTripPlan_UnclosedBraceInProse(t *testing.T) {
	t.Parallel()
	text := "Note: I used {placeholder syntax earlier.\n" +
		`{"start": "A", "end": "B", "waypoints": [], "transit": "walking"}`
	got, err := extract.TripPlan(text)
	require.NoError(t, err)
	assert.Equal(t, walkplan.TripPlan{Start: "A", End: "B", Waypoints: []string{}, Transit: walkplan.TransitWalking}, got)
}

func TestTripPlan_WrappedObject(t *testing.T) {
	t.Parallel()
	got, err := extract.TripPlan(`{"trip": {"start": "A", "end": "B", "waypoints": ["Pond"], "transit": "car"}}`)
	require.NoError(t, err)
	assert.Equal(t, walkplan.TripPlan{Start: "A", End: "B", Waypoints: []string{"Pond"}, Transit: walkplan.TransitCar}, got)

	got, err = extract.TripPlan("Result:\n```json\n{\"result\": {\"plan\": {\"start\": \"A\", \"end\": \"B\", \"transit\": \"bus\"}}}\n```")
	require.NoError(t, err)
	assert.Equal(t, "A", got.Start)
	assert.Equal(t, walkplan.TransitBus, got.Transit)
}

func TestTripPlan_FencedJSON(t *testing.T) {
	t.Parallel()
	text := "Here you go:\n\n```json\n{\n  \"start\": \"Home\",\n  \"end\": \"Home\",\n  \"waypoints\": [\"Fountain\"],\n  \"transit\": \"Walking\"\n}\n```\n"
	got, err := extract.TripPlan(text)
	require.NoError(t, err)
	assert.Equal(t, "Home", got.Start)
	assert.Equal(t, []string{"Fountain"}, got.Waypoints)
	assert.Equal(t, walkplan.TransitWalking, got.Transit, "enum match is case-insensitive and canonicalised")
}

func TestTripPlan_PrefersFencedBlockThatMatchesSchema(t *testing.T) {
	t.Parallel()
	text := "```json\n{\"note\": \"ignore me\"}\n```\n\n```\n{\"start\": \"A\", \"end\": \"B\", \"transit\": \"bus\"}\n```"
	got, err := extract.TripPlan(text)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Start)
	assert.Equal(t, walkplan.TransitBus, got.Transit)
}

func TestTripPlan_KeyValueLayout(t *testing.T) {
	t.Parallel()
	text := `Output:
Start: Central Park
End: Central Park
Waypoints: ["Dog Park", "Riverside Drive", "Coffee Shop"]
Transit: walking`
	got, err := extract.TripPlan(text)
	require.NoError(t, err)
	assert.Equal(t, walkplan.TripPlan{
		Start:     "Central Park",
		End:       "Central Park",
		Waypoints: []string{"Dog Park", "Riverside Drive", "Coffee Shop"},
		Transit:   walkplan.TransitWalking,
	}, got)
}

func TestTripPlan_KeyValueBulletedList(t *testing.T) {
	t.Parallel()
	text := `**Start:** 5th Ave Entrance
**End:** Bethesda Terrace
Waypoints:
- Sheep Meadow, south lawn
- The Mall
Transit: "walking"`
	got, err := extract.TripPlan(text)
	require.NoError(t, err)
	assert.Equal(t, "5th Ave Entrance", got.Start)
	assert.Equal(t, "Bethesda Terrace", got.End)
	assert.Equal(t, []string{"Sheep Meadow, south lawn", "The Mall"}, got.Waypoints)
	assert.Equal(t, walkplan.TransitWalking, got.Transit)
}

func TestTripPlan_KeyValueCommaList(t *testing.T) {
	t.Parallel()
	got, err := extract.TripPlan("Start: A\nEnd: B\nWaypoints: Pond, Bridge, Cafe\nTransit: car")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pond", "Bridge", "Cafe"}, got.Waypoints)

	got, err = extract.TripPlan("Start: A\nEnd: B\nWaypoints: none\nTransit: car")
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.Waypoints)
}

func TestTripPlan_KeyValueSingleQuotedList(t *testing.T) {
	t.Parallel()
	got, err := extract.TripPlan("Start: A\nEnd: B\nWaypoints: ['Dog Park', 'Cafe']\nTransit: walking")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dog Park", "Cafe"}, got.Waypoints)

	got, err = extract.TripPlan("Start: A\nEnd: B\nWaypoints: [Pond, Bridge]\nTransit: walking")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pond", "Bridge"}, got.Waypoints)

	_, err = extract.TripPlan("Start: A\nEnd: B\nWaypoints: ['Dog Park', '']\nTransit: walking")
	requireParseError(t, err, "item 2 is empty")
}

func TestTripPlan_OffEnumTransit(t *testing.T) {
	t.Parallel()
	for _, transit := range []string{"rocket", "train", "scooter", "", "walk", "cars", "walking bus"} {
		t.Run(fmt.Sprintf("transit %q", transit), func(t *testing.T) {
			t.Parallel()
			text := fmt.Sprintf(`{"start": "A", "end": "B", "waypoints": [], "transit": %q}`, transit)
			got, err := extract.TripPlan(text)
			requireParseError(t, err, `"transit"`)
			assert.Equal(t, walkplan.TripPlan{}, got, "no partial record on failure")
		})
	}
}

func TestTripPlan_WaypointLimit(t *testing.T) {
	t.Parallel()

	waypoints := func(n int) string {
		items := make([]string, n)
		for i := range items {
			items[i] = fmt.Sprintf("%q", fmt.Sprintf("Stop %d", i+1))
		}
		return "[" + strings.Join(items, ", ") + "]"
	}

	t.Run("20 waypoints accepted", func(t *testing.T) {
		t.Parallel()
		got, err := extract.TripPlan(`{"start": "A", "end": "B", "waypoints": ` + waypoints(20) + `, "transit": "bus"}`)
		require.NoError(t, err)
		assert.Len(t, got.Waypoints, 20)
	})

	for _, n := range []int{21, 25, 100} {
		t.Run(fmt.Sprintf("%d waypoints rejected", n), func(t *testing.T) {
			t.Parallel()
			_, err := extract.TripPlan(`{"start": "A", "end": "B", "waypoints": ` + waypoints(n) + `, "transit": "bus"}`)
			requireParseError(t, err, "exceeds the limit of 20")
		})
	}

	t.Run("21 waypoints in key value layout rejected", func(t *testing.T) {
		t.Parallel()
		_, err := extract.TripPlan("Start: A\nEnd: B\nWaypoints: " + waypoints(21) + "\nTransit: bus")
		requireParseError(t, err, "exceeds the limit of 20")
	})
}

func TestTripPlan_Malformed(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		text   string
		reason string
	}{
		{"empty", "   \n", "empty response"},
		{"prose only", "Have a lovely walk with your dog!", "no structured payload found"},
		{"unbalanced json", `{"start": "A", "end": "B"`, "no structured payload found"},
		{"missing start", `{"end": "B", "transit": "car"}`, `missing required field "start"`},
		{"null start", `{"start": null, "end": "B", "transit": "car"}`, `missing required field "start"`},
		{"blank end", `{"start": "A", "end": "  ", "transit": "car"}`, `field "end" must not be empty`},
		{"numeric start", `{"start": 42, "end": "B", "transit": "car"}`, `field "start": expected string`},
		{"waypoints not a list", `{"start": "A", "end": "B", "waypoints": "Park", "transit": "car"}`, `field "waypoints": expected array`},
		{"non-string waypoint", `{"start": "A", "end": "B", "waypoints": ["Park", 7], "transit": "car"}`, "item 2 is not a string"},
		{"blank waypoint", `{"start": "A", "end": "B", "waypoints": ["Park", " "], "transit": "car"}`, "item 2 is empty"},
		{"unrelated object", `{"foo": "bar"}`, `missing required field "start"`},
		{"key value missing transit", "Start: A\nEnd: B", `missing required field "transit"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := extract.TripPlan(tt.text)
			requireParseError(t, err, tt.reason)
			assert.Equal(t, walkplan.TripPlan{}, got)
		})
	}
}

func TestTripPlan_Idempotent(t *testing.T) {
	t.Parallel()
	text := "Plan:\n```json\n{\"start\": \"A\", \"end\": \"B\", \"waypoints\": [\"X\", \"Y\"], \"transit\": \"car\"}\n```"
	first, err := extract.TripPlan(text)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := extract.TripPlan(text)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestTripPlan_DuplicateKeysResolveDeterministically(t *testing.T) {
	t.Parallel()
	text := `{"Start": "Upper", "start": "Lower", "end": "B", "transit": "car"}`
	first, err := extract.TripPlan(text)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := extract.TripPlan(text)
		require.NoError(t, err)
		assert.Equal(t, first.Start, again.Start)
	}
}

func TestTripPlan_RoundTripThroughFormat(t *testing.T) {
	t.Parallel()
	plan := walkplan.TripPlan{
		Start:     "Central Park",
		End:       "Central Park",
		Waypoints: []string{"Dog Park", "Riverside Drive", "Coffee Shop"},
		Transit:   walkplan.TransitWalking,
	}
	text, err := schema.TripPlan.Format(schema.Record{
		"start":     plan.Start,
		"end":       plan.End,
		"waypoints": plan.Waypoints,
		"transit":   string(plan.Transit),
	})
	require.NoError(t, err)

	got, err := extract.TripPlan(text)
	require.NoError(t, err)
	assert.Equal(t, plan, got)
}

func TestValidation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		text string
		want walkplan.ValidationResult
	}{
		{
			name: "canonical fields",
			text: `{"is_valid": true, "suggested_request": "Walk my dog for 20 minutes downtown"}`,
			want: walkplan.ValidationResult{IsValid: true, SuggestedRequest: "Walk my dog for 20 minutes downtown"},
		},
		{
			name: "legacy field names with yes/no",
			text: `{"plan_is_valid": "no", "updated_request": "Plan a 30 minute walk around the park"}`,
			want: walkplan.ValidationResult{IsValid: false, SuggestedRequest: "Plan a 30 minute walk around the park"},
		},
		{
			name: "numeric flag",
			text: `{"plan_is_valid": 1, "updated_request": "same"}`,
			want: walkplan.ValidationResult{IsValid: true, SuggestedRequest: "same"},
		},
		{
			name: "empty suggestion allowed when valid",
			text: `{"is_valid": "YES", "suggested_request": ""}`,
			want: walkplan.ValidationResult{IsValid: true},
		},
		{
			name: "key value layout",
			text: "Is Valid: no\nSuggested Request: Walk the dog to the nearest park and back",
			want: walkplan.ValidationResult{IsValid: false, SuggestedRequest: "Walk the dog to the nearest park and back"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := extract.Validation(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidation_Malformed(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		text   string
		reason string
	}{
		{"not a boolean", `{"is_valid": "maybe", "suggested_request": "x"}`, `field "is_valid": expected boolean`},
		{"number out of range", `{"is_valid": 2, "suggested_request": "x"}`, `field "is_valid": expected boolean`},
		{"missing suggestion", `{"is_valid": true}`, `missing required field "suggested_request"`},
		{"rejected without suggestion", `{"is_valid": false, "suggested_request": " "}`, "must not be empty when is_valid is false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := extract.Validation(tt.text)
			requireParseError(t, err, tt.reason)
		})
	}
}

func TestExtract_ReturnsCanonicalRecord(t *testing.T) {
	t.Parallel()
	rec, err := extract.Extract(`{"START": "A", "End": "B", "Transit": "BUS"}`, schema.TripPlan)
	require.NoError(t, err)
	assert.Equal(t, schema.Record{"start": "A", "end": "B", "transit": "bus"}, rec)
}

func TestTripPlan_StripsTerminalNoise(t *testing.T) {
	t.Parallel()
	text := "\uFEFF\x1b[32m```json\r\n" +
		"{\"start\": \"Central\x00 Park\", \"end\": \"Zoo\", \"waypoints\": [], \"transit\": \"bus\"}\r\n" +
		"```\x1b[0m\r\n"
	got, err := extract.TripPlan(text)
	require.NoError(t, err)
	assert.Equal(t, "Central Park", got.Start)
	assert.Equal(t, "Zoo", got.End)
	assert.Equal(t, walkplan.TransitBus, got.Transit)
}

func TestTripPlan_OnlyControlCharacters(t *testing.T) {
	t.Parallel()
	_, err := extract.TripPlan("\x1b[2J\x00\x07\r\n")
	requireParseError(t, err, "empty response")
}
