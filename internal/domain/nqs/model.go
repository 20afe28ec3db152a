package nqs

// Source tags where a score came from.
type Source string

const (
	// SourceAgent marks a score produced by the remote scoring agent.
	SourceAgent Source = "agent"
	// SourceLocal marks a score computed from the bundled district datasets.
	SourceLocal Source = "local"
)

// Level labels bucket the composite score.
const (
	LevelVeryHigh   = "very high"
	LevelHigh       = "high"
	LevelMediumHigh = "medium-high"
	LevelMedium     = "medium"
	LevelLow        = "low"
)

// Category identifies one per-district dataset table.
type Category string

const (
	CategoryServices        Category = "services"
	CategoryAccessibility   Category = "accessibility"
	CategoryGreenery        Category = "greenery"
	CategoryEducation       Category = "education"
	CategoryPricePercentile Category = "pricePercentile"
	CategoryNoise           Category = "noise"
)

// Categories lists every dataset table in scoring order.
var Categories = []Category{
	CategoryServices,
	CategoryAccessibility,
	CategoryGreenery,
	CategoryEducation,
	CategoryPricePercentile,
	CategoryNoise,
}

// Coordinates is a WGS84 point. Distances between points are planar in raw degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Request describes the area to score.
type Request struct {
	City        string         `json:"city"`
	District    string         `json:"district"`
	Coordinates *Coordinates   `json:"coordinates,omitempty"`
	Extras      map[string]any `json:"extras,omitempty"`
}

// Breakdown holds the per-category sub-scores that fed the composite.
// Noise is already inverted: higher means quieter.
type Breakdown struct {
	Services        float64 `json:"services"`
	Accessibility   float64 `json:"accessibility"`
	Greenery        float64 `json:"greenery"`
	Education       float64 `json:"education"`
	PricePercentile float64 `json:"pricePercentile"`
	Noise           float64 `json:"noise"`
}

// Result is the neighborhood quality score returned to callers.
type Result struct {
	Score         float64    `json:"score"`
	Level         string     `json:"level"`
	Breakdown     *Breakdown `json:"breakdown"`
	DistrictFound bool       `json:"districtFound"`
	DistrictKey   string     `json:"districtKey,omitempty"`
	Source        Source     `json:"source"`
	Notes         string     `json:"notes,omitempty"`
}

// AgentRequest is sent to the remote scoring agent.
type AgentRequest struct {
	City        string         `json:"city"`
	District    string         `json:"district"`
	Coordinates *Coordinates   `json:"coordinates,omitempty"`
	Extras      map[string]any `json:"extras,omitempty"`
}

// AgentResponse is the agent's reply. Score is a pointer so an absent score
// fails validation instead of reading as zero.
type AgentResponse struct {
	OK                bool     `json:"ok"`
	Source            string   `json:"source,omitempty"`
	Score             *float64 `json:"score,omitempty" validate:"required,gte=0,lte=100"`
	Level             string   `json:"level,omitempty"`
	Notes             string   `json:"notes,omitempty"`
	FallbackRequested bool     `json:"fallbackRequested,omitempty"`
}
