package valuation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/property-valuator/internal/domain/nqs"
	"github.com/yanqian/property-valuator/pkg/util"
)

func TestEvaluateScenarioABaseAndUnresolvedNQS(t *testing.T) {
	svc := newTestService(localScorer(), nil)

	res := svc.Evaluate(context.Background(), Attributes{"area": 300.0, "city": "CityX"})
	require.False(t, res.Invalid())
	require.Equal(t, 3500.0, res.BasePricePerSqm)
	require.Equal(t, 1_050_000.0, *res.Adjustments[0].Addition)
	require.Equal(t, 1_075_200.0, res.EstimatedValue)
	require.NotNil(t, res.NQS)
	require.Equal(t, nqs.SourceLocal, res.NQS.Source)
	require.False(t, res.NQS.DistrictFound)
	require.False(t, res.UsedRemoteSource)

	last := res.Adjustments[len(res.Adjustments)-1]
	require.Equal(t, "nqs", last.Factor)
	require.InDelta(t, 1.024, *last.Multiplier, 1e-12)
	require.Equal(t, "+2.4%", last.Impact)
}

func TestEvaluateScenarioBVilla(t *testing.T) {
	svc := newTestService(nil, nil)

	res := svc.Evaluate(context.Background(), Attributes{"area": 300.0, "city": "CityX", "propertyType": "villa"})
	require.Nil(t, res.NQS)
	require.Equal(t, 1_207_500.0, res.EstimatedValue)
	require.Len(t, res.Adjustments, 2)
	require.Equal(t, "propertyType", res.Adjustments[1].Factor)
	require.Equal(t, "villa", res.Adjustments[1].Label)
	require.Equal(t, "+15.0%", res.Adjustments[1].Impact)
}

func TestEvaluateScenarioCBedrooms(t *testing.T) {
	svc := newTestService(nil, nil)

	res := svc.Evaluate(context.Background(), Attributes{"area": 100.0, "city": "CityX", "bedrooms": 5.0})
	factor := findFactor(t, res, "bedrooms")
	require.InDelta(t, 1.04, *factor.Multiplier, 1e-12)
	require.Equal(t, 364_000.0, res.EstimatedValue)

	res = svc.Evaluate(context.Background(), Attributes{"area": 100.0, "city": "CityX", "bedrooms": 3.0})
	require.Len(t, res.Adjustments, 1)
}

func TestEvaluateScenarioDAgentScore(t *testing.T) {
	scorer := &stubScorer{result: nqs.Result{Score: 82, Level: "high", Source: nqs.SourceAgent, DistrictFound: true}}
	svc := newTestService(scorer, nil)

	res := svc.Evaluate(context.Background(), Attributes{"area": 100.0, "city": "CityX", "district": "Old Town", "latitude": 30.0, "longitude": 31.0})
	require.True(t, res.UsedRemoteSource)
	require.Equal(t, nqs.SourceAgent, res.NQS.Source)
	require.Equal(t, 82.0, res.NQS.Score)
	require.Equal(t, 363_440.0, res.EstimatedValue)
	require.Equal(t, "+3.8%", findFactor(t, res, "nqs").Impact)

	require.Equal(t, "CityX", scorer.last.City)
	require.Equal(t, "Old Town", scorer.last.District)
	require.Equal(t, &nqs.Coordinates{Lat: 30, Lon: 31}, scorer.last.Coordinates)
	require.Equal(t, 100.0, scorer.last.Extras["area"])
}

func TestEvaluateMissingRequiredFields(t *testing.T) {
	svc := newTestService(localScorer(), nil)

	for _, attrs := range []Attributes{nil, {}, {"area": 120.0}, {"city": "CityX"}, {"area": "abc", "city": "CityX"}, {"area": 0.0, "city": "CityX"}} {
		res := svc.Evaluate(context.Background(), attrs)
		require.True(t, res.Invalid())
		require.Equal(t, 0.0, res.EstimatedValue)
		require.Equal(t, 0, res.Confidence)
		require.Nil(t, res.NQS)
		require.NotEmpty(t, res.Message)
	}
}

func TestEvaluateMonotonicInArea(t *testing.T) {
	svc := newTestService(localScorer(), nil)
	base := Attributes{"city": "CityX", "propertyType": "apartment", "floor": 4.0, "pool": true, "nearMetro": true, "parkingSpaces": 1.0}

	prev := 0.0
	for area := 10.0; area <= 1000; area += 10 {
		attrs := base.Clone()
		attrs["area"] = area
		res := svc.Evaluate(context.Background(), attrs)
		require.Greater(t, res.EstimatedValue, prev, "area %v", area)
		prev = res.EstimatedValue
	}
}

func TestMultipliersCommute(t *testing.T) {
	fields := [][2]string{
		{"propertyType", "duplex"},
		{"age", "1-5"},
		{"neighborhoodTier", "premium"},
		{"facade", "corner"},
		{"streetWidth", "wide"},
		{"finishing", "super-lux"},
		{"view", "park"},
	}
	forward := 1.0
	for _, f := range fields {
		forward *= multiplierFor(f[0], f[1])
	}
	backward := 1.0
	for i := len(fields) - 1; i >= 0; i-- {
		backward *= multiplierFor(fields[i][0], fields[i][1])
	}
	require.InDelta(t, forward, backward, 1e-12)

	svc := newTestService(nil, nil)
	attrs := Attributes{"area": 200.0, "city": "CityX"}
	for _, f := range fields {
		attrs[f[0]] = f[1]
	}
	res := svc.Evaluate(context.Background(), attrs)
	require.InDelta(t, 200*3500*forward, res.EstimatedValue, 1.0)
}

func TestUnknownEnumValuesAreNeutral(t *testing.T) {
	svc := newTestService(nil, nil)

	res := svc.Evaluate(context.Background(), Attributes{"area": 100.0, "city": "Atlantis", "propertyType": "castle", "view": "moon"})
	require.Equal(t, DefaultBasePricePerSqm, res.BasePricePerSqm)
	require.Equal(t, 250_000.0, res.EstimatedValue)
	require.Equal(t, 1.0, *findFactor(t, res, "propertyType").Multiplier)
	require.Equal(t, "+0.0%", findFactor(t, res, "view").Impact)
}

func TestAdjustmentLogOrderAndRelativeImpact(t *testing.T) {
	svc := newTestService(localScorer(), nil)

	res := svc.Evaluate(context.Background(), Attributes{
		"area":             200.0,
		"city":             "CityX",
		"propertyType":     "villa",
		"age":              "new",
		"neighborhoodTier": "upscale",
		"facade":           "corner",
		"streetWidth":      "main",
		"finishing":        "ultra-lux",
		"view":             "garden",
		"bedrooms":         4.0,
		"bathrooms":        4.0,
		"pool":             true,
		"gym":              "yes",
		"nearSea":          true,
		"nearMall":         1.0,
		"parkingSpaces":    2.0,
		"floor":            3.0,
		"landArea":         500.0,
		"builtArea":        300.0,
	})

	got := make([]string, 0, len(res.Adjustments))
	for _, a := range res.Adjustments {
		got = append(got, a.Factor)
	}
	require.Equal(t, []string{
		"base", "propertyType", "age", "neighborhoodTier", "facade", "streetWidth",
		"finishing", "view", "bedrooms", "bathrooms", "amenities", "proximity",
		"parkingSpaces", "landArea", "nqs",
	}, got)

	amenities := findFactor(t, res, "amenities")
	require.Equal(t, 200_000.0, *amenities.Addition)
	require.Equal(t, "pool, gym", amenities.Label)

	proximity := findFactor(t, res, "proximity")
	require.InDelta(t, 1.08*1.03, *proximity.Multiplier, 1e-12)
	require.Equal(t, "+11.2%", proximity.Impact)

	land := findFactor(t, res, "landArea")
	require.Equal(t, 200*3500*0.5, *land.Addition)

	// every multiplier impact is relative to the price just before it.
	require.Equal(t, "+10.0%", findFactor(t, res, "age").Impact)
	require.Equal(t, "+2.0%", findFactor(t, res, "parkingSpaces").Impact)
}

func TestFloorOnlyAppliesToApartments(t *testing.T) {
	svc := newTestService(nil, nil)

	res := svc.Evaluate(context.Background(), Attributes{"area": 100.0, "city": "CityX", "propertyType": "apartment", "floor": 10.0})
	require.InDelta(t, 1.05, *findFactor(t, res, "floor").Multiplier, 1e-12)
	require.Equal(t, 367_500.0, res.EstimatedValue)

	res = svc.Evaluate(context.Background(), Attributes{"area": 100.0, "city": "CityX", "propertyType": "villa", "floor": 10.0})
	for _, a := range res.Adjustments {
		require.NotEqual(t, "floor", a.Factor)
	}
}

func TestLandPremiumDefaultsBuiltAreaToArea(t *testing.T) {
	svc := newTestService(nil, nil)

	res := svc.Evaluate(context.Background(), Attributes{"area": 100.0, "city": "CityX", "propertyType": "land", "landArea": 300.0})
	// 100*3500*0.85 + 200*3500*0.5
	require.Equal(t, 647_500.0, res.EstimatedValue)

	res = svc.Evaluate(context.Background(), Attributes{"area": 100.0, "city": "CityX", "propertyType": "apartment", "landArea": 300.0})
	require.Equal(t, 350_000.0, res.EstimatedValue)
}

func TestPriceRangeIsSymmetric(t *testing.T) {
	svc := newTestService(localScorer(), nil)

	for _, area := range []float64{33, 87.5, 120, 301, 999} {
		res := svc.Evaluate(context.Background(), Attributes{"area": area, "city": "CityX", "propertyType": "villa", "view": "sea"})
		require.InDelta(t, res.PriceRange.Max-res.EstimatedValue, res.EstimatedValue-res.PriceRange.Min, 1.0)
		require.InDelta(t, res.EstimatedValue*0.9, res.PriceRange.Min, 0.5)
		require.InDelta(t, res.EstimatedValue*1.1, res.PriceRange.Max, 0.5)
	}
}

func TestConfidenceAndRecommendations(t *testing.T) {
	svc := newTestService(nil, nil)

	sparse := svc.Evaluate(context.Background(), Attributes{"area": 100.0, "city": "CityX"})
	require.Equal(t, 1, sparse.Confidence) // 2/100*70 = 1.4
	require.Equal(t, []string{recAddDetail, recPropertyType, recAge, recNeighborhood, recFinishing, recRooms}, sparse.Recommendations)

	attrs := Attributes{
		"area": 100.0, "city": "CityX", "propertyType": "apartment", "age": "new",
		"neighborhoodTier": "mid", "finishing": "standard", "bedrooms": 2.0, "bathrooms": 1.0,
		"facade": "back", "streetWidth": "wide",
	}
	for _, a := range Amenities {
		attrs[a.Key] = true
	}
	for _, p := range Proximities {
		attrs[p.Key] = true
	}
	rich := svc.Evaluate(context.Background(), attrs)
	// 43 filled -> 30.1, bonus 30
	require.Equal(t, 60, rich.Confidence)
	require.Empty(t, rich.Recommendations)

	for i := 0; i < 60; i++ {
		attrs[string(rune('a'+i%26))+string(rune('A'+i/26))] = "x"
	}
	full := svc.Evaluate(context.Background(), attrs)
	require.Equal(t, 95, full.Confidence)
	require.Equal(t, []string{recReliableEnough}, full.Recommendations)
}

func TestEvaluateNonFiniteInputs(t *testing.T) {
	cases := []struct {
		name    string
		attrs   Attributes
		message string
	}{
		{"nan area", Attributes{"area": "NaN", "city": "CityX"}, missingRequired},
		{"inf area", Attributes{"area": "Inf", "city": "CityX"}, missingRequired},
		{"negative inf area", Attributes{"area": "-Inf", "city": "CityX"}, missingRequired},
		{"overflowing area", Attributes{"area": 1e308, "city": "CityX"}, outOfRange},
		{"overflowing bedrooms", Attributes{"area": 100.0, "city": "CityX", "bedrooms": "1e308"}, outOfRange},
		{"nan floor", Attributes{"area": 100.0, "city": "CityX", "propertyType": "apartment", "floor": "NaN"}, ""},
		{"inf land area", Attributes{"area": 100.0, "city": "CityX", "propertyType": "land", "landArea": "+Inf"}, ""},
		{"nan parking", Attributes{"area": 100.0, "city": "CityX", "parkingSpaces": "NaN"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			history := &stubHistory{}
			svc := newTestService(localScorer(), history)

			res := svc.Evaluate(context.Background(), tc.attrs)
			require.Equal(t, tc.message, res.Message)
			_, err := json.Marshal(res)
			require.NoError(t, err)
			require.False(t, math.IsNaN(res.EstimatedValue) || math.IsInf(res.EstimatedValue, 0))

			if tc.message != "" {
				require.Zero(t, res.EstimatedValue)
				require.Empty(t, history.entries)
				return
			}
			require.Greater(t, res.EstimatedValue, 0.0)
			require.Len(t, history.entries, 1)
			for _, adj := range res.Adjustments {
				require.NotEqual(t, FieldFloor, adj.Factor)
				require.NotEqual(t, FieldLandArea, adj.Factor)
				require.NotEqual(t, FieldParkingSpaces, adj.Factor)
			}
		})
	}
}

func TestNumericEnumValueIsNeutralAndLogged(t *testing.T) {
	svc := newTestService(nil, nil)

	res := svc.Evaluate(context.Background(), Attributes{"area": 100.0, "city": "CityX", "age": 7.0})
	require.Equal(t, 350_000.0, res.EstimatedValue)
	require.Len(t, res.Adjustments, 2)
	require.Equal(t, FieldAge, res.Adjustments[1].Factor)
	require.Equal(t, "7", res.Adjustments[1].Label)
	require.Equal(t, 1.0, *res.Adjustments[1].Multiplier)
	require.NotContains(t, res.Recommendations, recAge)
	// 3/100*70 = 2.1, plus the age bonus
	require.Equal(t, 7, res.Confidence)
}

func TestSummarizeSkipsNonFiniteEstimates(t *testing.T) {
	st := summarize([]HistoryEntry{
		{Result: Result{EstimatedValue: math.NaN(), Confidence: 10}},
		{Result: Result{EstimatedValue: 200, Confidence: 50}},
		{Result: Result{EstimatedValue: math.Inf(1), Confidence: 10}},
	})
	require.Equal(t, 1, st.Count)
	require.Equal(t, 200.0, st.MeanValue)
	require.Equal(t, 50.0, st.MeanConfidence)
	_, err := json.Marshal(st)
	require.NoError(t, err)

	require.Equal(t, Stats{}, summarize([]HistoryEntry{{Result: Result{EstimatedValue: math.NaN()}}}))
}

func TestConfidenceIgnoresEmptyValues(t *testing.T) {
	attrs := Attributes{"area": 100.0, "city": "CityX", "pool": false, "view": "  ", "propertyType": nil, "floor": 0.0}
	require.Equal(t, 3, attrs.FilledCount())
	require.Equal(t, 2, confidence(attrs, attrs.FilledCount()))
}

func TestConfidenceBounds(t *testing.T) {
	for filled := 0; filled <= 200; filled += 7 {
		c := confidence(Attributes{"propertyType": "x", "age": "x", "neighborhoodTier": "x", "finishing": "x", "bedrooms": 1, "bathrooms": 1, "facade": "x", "streetWidth": "x"}, filled)
		require.GreaterOrEqual(t, c, 0)
		require.LessOrEqual(t, c, 95)
	}
}

func TestEvaluateRecordsHistory(t *testing.T) {
	history := &stubHistory{}
	hook := &stubHook{}
	svc := newTestService(localScorer(), history)
	svc.hook = hook

	res := svc.Evaluate(context.Background(), Attributes{"area": 100.0, "city": "CityX", "pool": true})
	require.Len(t, history.entries, 1)
	entry := history.entries[0]
	require.Equal(t, "entry-1", entry.ID)
	require.Equal(t, res, entry.Result)
	require.Equal(t, 3, entry.FilledFieldCount)
	require.Equal(t, true, entry.Attributes["pool"])
	require.Len(t, hook.entries, 1)

	invalid := svc.Evaluate(context.Background(), Attributes{})
	require.True(t, invalid.Invalid())
	require.Len(t, history.entries, 1)
}

func TestEvaluateIgnoresHistoryFailure(t *testing.T) {
	history := &stubHistory{err: errors.New("valkey down")}
	hook := &stubHook{}
	svc := newTestService(localScorer(), history)
	svc.hook = hook

	res := svc.Evaluate(context.Background(), Attributes{"area": 100.0, "city": "CityX"})
	require.False(t, res.Invalid())
	require.Equal(t, 358_400.0, res.EstimatedValue)
	require.Empty(t, hook.entries)
}

func TestStats(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	history := &stubHistory{entries: []HistoryEntry{
		{Timestamp: ts, Result: Result{EstimatedValue: 100, Confidence: 40}},
		{Timestamp: ts.Add(time.Hour), Result: Result{EstimatedValue: 300, Confidence: 60, UsedRemoteSource: true}},
	}}
	svc := newTestService(nil, history)

	st, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, st.Count)
	require.InDelta(t, 200, st.MeanValue, 1e-9)
	require.InDelta(t, 141.4213562, st.StdDevValue, 1e-6)
	require.InDelta(t, 50, st.MeanConfidence, 1e-9)
	require.InDelta(t, 0.5, st.RemoteShare, 1e-9)
	require.Equal(t, ts.Add(time.Hour), st.Latest)

	single := summarize(history.entries[:1])
	require.Equal(t, 100.0, single.MeanValue)
	require.Equal(t, 0.0, single.StdDevValue)

	require.Equal(t, Stats{}, summarize(nil))
}

func TestStatsWrapsStoreError(t *testing.T) {
	svc := newTestService(nil, &stubHistory{err: errors.New("boom")})

	_, err := svc.Stats(context.Background())
	require.Error(t, err)
}

func newTestService(scorer NQSScorer, history HistoryStore) *service {
	svc := NewService(Config{
		CityBasePrices: map[string]float64{"CityX": 3500},
		RecordHistory:  true,
	}, scorer, history, nil, slog.New(slog.NewTextHandler(io.Discard, nil))).(*service)
	n := 0
	svc.newID = func() string {
		n++
		return "entry-" + string(rune('0'+n))
	}
	svc.now = util.FixedClock(time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))
	return svc
}

func localScorer() NQSScorer {
	return &stubScorer{result: nqs.NewEngine(nqs.Dataset{}).ComputeLocal("", false)}
}

func multiplierFor(field, value string) float64 {
	switch field {
	case FieldPropertyType:
		return PropertyType(value).Multiplier()
	case FieldAge:
		return AgeBand(value).Multiplier()
	case FieldNeighborhoodTier:
		return NeighborhoodTier(value).Multiplier()
	case FieldFacade:
		return Facade(value).Multiplier()
	case FieldStreetWidth:
		return StreetWidth(value).Multiplier()
	case FieldFinishing:
		return Finishing(value).Multiplier()
	case FieldView:
		return View(value).Multiplier()
	}
	return 1
}

func findFactor(t *testing.T, res Result, name string) AdjustmentFactor {
	t.Helper()
	for _, a := range res.Adjustments {
		if a.Factor == name {
			return a
		}
	}
	t.Fatalf("factor %q not found in %+v", name, res.Adjustments)
	return AdjustmentFactor{}
}

type stubScorer struct {
	result nqs.Result
	last   nqs.Request
}

func (s *stubScorer) Score(ctx context.Context, req nqs.Request) nqs.Result {
	s.last = req
	return s.result
}

type stubHistory struct {
	entries []HistoryEntry
	err     error
}

func (s *stubHistory) Append(ctx context.Context, entry HistoryEntry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubHistory) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.entries, nil
}

type stubHook struct {
	entries []HistoryEntry
}

func (s *stubHook) Observe(ctx context.Context, entry HistoryEntry) error {
	s.entries = append(s.entries, entry)
	return nil
}
