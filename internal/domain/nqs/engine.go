package nqs

import "math"

const (
	// unresolvedScore is deliberately above the 50 midpoint; callers rely on it.
	unresolvedScore = 70
	missingCategory = 50
)

var weights = map[Category]float64{
	CategoryServices:        0.25,
	CategoryAccessibility:   0.20,
	CategoryGreenery:        0.15,
	CategoryEducation:       0.15,
	CategoryPricePercentile: 0.20,
	CategoryNoise:           0.05,
}

// Engine computes scores from the bundled district datasets.
type Engine struct {
	resolver *Resolver
	tables   map[Category]ScoreTable
}

// NewEngine builds a local engine over ds.
func NewEngine(ds Dataset) *Engine {
	tables := make(map[Category]ScoreTable, len(Categories))
	for _, c := range Categories {
		tables[c] = ds.Table(c)
	}
	return &Engine{resolver: NewResolver(ds.Districts), tables: tables}
}

// Resolver exposes the district resolver backing the engine.
func (e *Engine) Resolver() *Resolver {
	return e.resolver
}

// Score resolves q and computes the local score.
func (e *Engine) Score(q Query) Result {
	key, ok := e.resolver.Resolve(q)
	return e.ComputeLocal(key, ok)
}

// ComputeLocal scores an already resolved district. found=false yields the
// canned result used for unknown areas.
func (e *Engine) ComputeLocal(key string, found bool) Result {
	if !found {
		return Result{
			Score: unresolvedScore,
			Level: LevelMedium,
			Breakdown: &Breakdown{
				Services:        unresolvedScore,
				Accessibility:   unresolvedScore,
				Greenery:        unresolvedScore,
				Education:       unresolvedScore,
				PricePercentile: unresolvedScore,
				Noise:           unresolvedScore,
			},
			DistrictFound: false,
			Source:        SourceLocal,
		}
	}

	scores := make(map[Category]float64, len(Categories))
	for _, c := range Categories {
		v, ok := e.tables[c].Get(key)
		if !ok {
			v = missingCategory
		}
		if c == CategoryNoise {
			v = 100 - v
		}
		scores[c] = v
	}

	var composite float64
	for _, c := range Categories {
		composite += scores[c] * weights[c]
	}
	score := math.Round(clamp(composite, 0, 100))

	return Result{
		Score: score,
		Level: LevelFor(score),
		Breakdown: &Breakdown{
			Services:        scores[CategoryServices],
			Accessibility:   scores[CategoryAccessibility],
			Greenery:        scores[CategoryGreenery],
			Education:       scores[CategoryEducation],
			PricePercentile: scores[CategoryPricePercentile],
			Noise:           scores[CategoryNoise],
		},
		DistrictFound: true,
		DistrictKey:   key,
		Source:        SourceLocal,
	}
}

// LevelFor maps a composite score to its label.
func LevelFor(score float64) string {
	switch {
	case score >= 85:
		return LevelVeryHigh
	case score >= 75:
		return LevelHigh
	case score >= 60:
		return LevelMediumHigh
	case score >= 45:
		return LevelMedium
	default:
		return LevelLow
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
