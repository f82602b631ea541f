package walkplan

import (
	"fmt"
	"strings"
)

// MaxWaypoints is the largest number of waypoints a TripPlan may carry.
const MaxWaypoints = 20

// Transit is the mode of transportation for a trip.
type Transit string

const (
	TransitWalking Transit = "walking"
	TransitCar     Transit = "car"
	TransitBus     Transit = "bus"
	TransitBicycle Transit = "bicycle"
)

// Transits returns the closed set of transit modes in declaration order.
func Transits() []Transit {
	return []Transit{TransitWalking, TransitCar, TransitBus, TransitBicycle}
}

// Valid reports whether t is one of the enumerated transit modes.
func (t Transit) Valid() bool {
	switch t {
	case TransitWalking, TransitCar, TransitBus, TransitBicycle:
		return true
	}
	return false
}

// ValidationResult is the feasibility verdict for a walk request.
// SuggestedRequest is always populated; it is only meaningful to the caller
// when IsValid is false.
type ValidationResult struct {
	IsValid          bool
	SuggestedRequest string
}

// TripPlan is the structured plan produced by the extract stage.
// Waypoints are in visiting order.
type TripPlan struct {
	Start     string
	End       string
	Waypoints []string
	Transit   Transit
}

// Validate checks the TripPlan invariants. Violations wrap ErrParse because a
// plan can only become invalid through a bad model response.
func (p TripPlan) Validate() error {
	if strings.TrimSpace(p.Start) == "" {
		return &ParseError{Reason: "start must not be empty"}
	}
	if strings.TrimSpace(p.End) == "" {
		return &ParseError{Reason: "end must not be empty"}
	}
	if len(p.Waypoints) > MaxWaypoints {
		return &ParseError{Reason: fmt.Sprintf("waypoints must have at most %d items, got %d", MaxWaypoints, len(p.Waypoints))}
	}
	for i, w := range p.Waypoints {
		if strings.TrimSpace(w) == "" {
			return &ParseError{Reason: fmt.Sprintf("waypoint %d is empty", i+1)}
		}
	}
	if !p.Transit.Valid() {
		return &ParseError{Reason: fmt.Sprintf("transit %q is not one of walking, car, bus, bicycle", p.Transit)}
	}
	return nil
}
