package valuation

import "math"

const (
	possibleFields = 100
	maxConfidence  = 95
)

type confidenceBonus struct {
	fields []string
	points float64
}

// Bonuses reward the fields that move the estimate most. They sum to 30.
var confidenceBonuses = []confidenceBonus{
	{[]string{FieldPropertyType}, 5},
	{[]string{FieldAge}, 5},
	{[]string{FieldNeighborhoodTier}, 5},
	{[]string{FieldFinishing}, 5},
	{[]string{FieldBedrooms, FieldBathrooms}, 5},
	{[]string{FieldFacade}, 3},
	{[]string{FieldStreetWidth}, 2},
}

// confidence scores how complete the attributes are, capped at 95.
func confidence(attrs Attributes, filled int) int {
	ratio := float64(filled) / possibleFields
	bonus := 0.0
	for _, b := range confidenceBonuses {
		all := true
		for _, f := range b.fields {
			if !attrs.Present(f) {
				all = false
				break
			}
		}
		if all {
			bonus += b.points
		}
	}
	c := int(math.Round(ratio*70 + bonus))
	if c > maxConfidence {
		return maxConfidence
	}
	if c < 0 {
		return 0
	}
	return c
}
