package valuation

import (
	"time"

	"github.com/yanqian/property-valuator/internal/domain/nqs"
)

// AdjustmentFactor records one price-changing step. Exactly one of
// Multiplier and Addition is set. Impact is relative to the price
// immediately before the step.
type AdjustmentFactor struct {
	Factor     string   `json:"factor"`
	Label      string   `json:"label"`
	Multiplier *float64 `json:"multiplier,omitempty"`
	Addition   *float64 `json:"addition,omitempty"`
	Impact     string   `json:"impact"`
}

// PriceRange is the band reported around the estimate.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Result is the outcome of a valuation. A validation failure is reported
// through Message with a zero estimate and zero confidence.
type Result struct {
	EstimatedValue   float64            `json:"estimatedValue"`
	Confidence       int                `json:"confidence"`
	PriceRange       PriceRange         `json:"priceRange"`
	BasePricePerSqm  float64            `json:"basePricePerSqm"`
	Adjustments      []AdjustmentFactor `json:"adjustments"`
	Recommendations  []string           `json:"recommendations"`
	NQS              *nqs.Result        `json:"nqs"`
	UsedRemoteSource bool               `json:"usedRemoteSource"`
	FilledFields     int                `json:"filledFields"`
	Message          string             `json:"message,omitempty"`
}

// Invalid reports whether the result carries a validation failure.
func (r Result) Invalid() bool {
	return r.Message != ""
}

// Config holds runtime knobs for the valuation service.
type Config struct {
	// CityBasePrices extends or overrides the built-in city table.
	CityBasePrices   map[string]float64
	DefaultBasePrice float64
	RecordHistory    bool
}

// Stats summarises the recorded history.
type Stats struct {
	Count          int       `json:"count"`
	MeanValue      float64   `json:"meanValue"`
	StdDevValue    float64   `json:"stdDevValue"`
	MeanConfidence float64   `json:"meanConfidence"`
	RemoteShare    float64   `json:"remoteShare"`
	Latest         time.Time `json:"latest,omitempty"`
}
