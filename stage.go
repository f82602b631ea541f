package walkplan

// Stage identifies one step of the planning pipeline.
type Stage string

const (
	StageValidate  Stage = "validate"
	StageItinerary Stage = "itinerary"
	StageExtract   Stage = "extract"
)

// Stages returns the pipeline stages in execution order.
func Stages() []Stage {
	return []Stage{StageValidate, StageItinerary, StageExtract}
}
