// Package json persists planning reports as versioned JSON documents.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/walkplan"
)

// envelope is the v1 wire format for a persisted report.
type envelope struct {
	Version   int         `json:"version"`
	ID        string      `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	Results   []resultDTO `json:"results"`
}

type resultDTO struct {
	Request string    `json:"request"`
	Plan    *planDTO  `json:"plan,omitempty"`
	Error   *errorDTO `json:"error,omitempty"`
}

// planDTO mirrors the extract stage output object.
type planDTO struct {
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Waypoints []string `json:"waypoints"`
	Transit   string   `json:"transit"`
}

// MarshalReport serializes a Report to JSON in v1 envelope format.
func MarshalReport(r walkplan.Report) ([]byte, error) {
	env := envelope{
		Version:   1,
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Results:   make([]resultDTO, len(r.Results)),
	}
	for i, res := range r.Results {
		dto, err := marshalResult(res)
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
		env.Results[i] = dto
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalReport deserializes a Report from JSON in v1 envelope format.
func UnmarshalReport(data []byte) (walkplan.Report, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return walkplan.Report{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return walkplan.Report{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	results := make([]walkplan.Result, len(env.Results))
	for i, dto := range env.Results {
		res, err := unmarshalResult(dto)
		if err != nil {
			return walkplan.Report{}, fmt.Errorf("result %d: %w", i, err)
		}
		results[i] = res
	}
	return walkplan.Report{
		ID:        env.ID,
		CreatedAt: env.CreatedAt,
		Results:   results,
	}, nil
}

// MarshalPlan serializes a single plan as the bare extract-stage object.
func MarshalPlan(p walkplan.TripPlan) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(toPlanDTO(p), "", "  ")
}

func marshalResult(res walkplan.Result) (resultDTO, error) {
	dto := resultDTO{Request: res.Request}
	if res.Err != nil {
		dto.Error = marshalError(res.Err)
		return dto, nil
	}
	if err := res.Plan.Validate(); err != nil {
		return resultDTO{}, err
	}
	p := toPlanDTO(res.Plan)
	dto.Plan = &p
	return dto, nil
}

func unmarshalResult(dto resultDTO) (walkplan.Result, error) {
	res := walkplan.Result{Request: dto.Request}
	switch {
	case dto.Error != nil && dto.Plan != nil:
		return walkplan.Result{}, fmt.Errorf("result has both plan and error")
	case dto.Error != nil:
		err, uerr := unmarshalError(*dto.Error)
		if uerr != nil {
			return walkplan.Result{}, uerr
		}
		res.Err = err
	case dto.Plan != nil:
		plan := walkplan.TripPlan{
			Start:     dto.Plan.Start,
			End:       dto.Plan.End,
			Waypoints: dto.Plan.Waypoints,
			Transit:   walkplan.Transit(dto.Plan.Transit),
		}
		if plan.Waypoints == nil {
			plan.Waypoints = []string{}
		}
		if err := plan.Validate(); err != nil {
			return walkplan.Result{}, err
		}
		res.Plan = plan
	default:
		return walkplan.Result{}, fmt.Errorf("result has neither plan nor error")
	}
	return res, nil
}

func toPlanDTO(p walkplan.TripPlan) planDTO {
	wps := p.Waypoints
	if wps == nil {
		wps = []string{}
	}
	return planDTO{Start: p.Start, End: p.End, Waypoints: wps, Transit: string(p.Transit)}
}

// Save writes a Report to a JSON file, creating parent directories as needed.
func Save(path string, r walkplan.Report) error {
	data, err := MarshalReport(r)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a Report from a JSON file.
func Load(path string) (walkplan.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return walkplan.Report{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalReport(data)
}
