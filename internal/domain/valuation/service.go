package valuation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/yanqian/property-valuator/internal/domain/nqs"
	apperrors "github.com/yanqian/property-valuator/pkg/errors"
	"github.com/yanqian/property-valuator/pkg/util"
)

const (
	rangeSpread     = 0.10
	missingRequired = "area and city are required to estimate a value"
	outOfRange      = "attribute values are too large to produce an estimate"
)

// Service estimates property values.
type Service interface {
	// Evaluate never fails; missing required fields are reported on the result.
	Evaluate(ctx context.Context, attrs Attributes) Result
	Stats(ctx context.Context) (Stats, error)
}

// NQSScorer supplies the neighborhood quality score for the final step.
type NQSScorer interface {
	Score(ctx context.Context, req nqs.Request) nqs.Result
}

type service struct {
	cityPrices       map[string]float64
	defaultBasePrice float64
	recordHistory    bool
	scorer           NQSScorer
	history          HistoryStore
	hook             LearningHook
	logger           *slog.Logger
	now              util.Clock
	newID            func() string
}

// NewService wires the valuation calculator. scorer, history and hook are optional.
func NewService(cfg Config, scorer NQSScorer, history HistoryStore, hook LearningHook, logger *slog.Logger) Service {
	prices := make(map[string]float64, len(defaultCityBasePrices)+len(cfg.CityBasePrices))
	for city, p := range defaultCityBasePrices {
		prices[city] = p
	}
	for city, p := range cfg.CityBasePrices {
		prices[city] = p
	}
	def := cfg.DefaultBasePrice
	if def <= 0 {
		def = DefaultBasePricePerSqm
	}
	return &service{
		cityPrices:       prices,
		defaultBasePrice: def,
		recordHistory:    cfg.RecordHistory,
		scorer:           scorer,
		history:          history,
		hook:             hook,
		logger:           logger.With("component", "valuation.service"),
		now:              util.NowUTC,
		newID:            uuid.NewString,
	}
}

func (s *service) Evaluate(ctx context.Context, attrs Attributes) Result {
	if attrs == nil {
		attrs = Attributes{}
	}
	filled := attrs.FilledCount()

	area, hasArea := attrs.Number(FieldArea)
	city, hasCity := attrs.String(FieldCity)
	if !hasArea || !hasCity || area <= 0 {
		s.logger.Info("valuation rejected", "has_area", hasArea, "has_city", hasCity)
		return rejected(filled, missingRequired)
	}

	l, base := s.priceAttributes(attrs, area, city)

	var nqsResult *nqs.Result
	if s.scorer != nil {
		res := s.scorer.Score(ctx, nqsRequest(attrs, city, area))
		nqsResult = &res
		_, pct := nqs.AdjustPrice(l.price, res.Score)
		l.multiply("nqs", fmt.Sprintf("score %s (%s, %s)", formatQty(res.Score), res.Level, res.Source), 1+pct/100)
	}

	if !finite(l.price) || !finite(l.price*(1+rangeSpread)) {
		s.logger.Warn("valuation overflowed", "city", city, "area", area, "adjustments", len(l.log))
		return rejected(filled, outOfRange)
	}

	estimate := math.Round(l.price)
	conf := confidence(attrs, filled)
	result := Result{
		EstimatedValue: estimate,
		Confidence:     conf,
		PriceRange: PriceRange{
			Min: math.Round(estimate * (1 - rangeSpread)),
			Max: math.Round(estimate * (1 + rangeSpread)),
		},
		BasePricePerSqm:  base,
		Adjustments:      l.log,
		Recommendations:  recommend(attrs, conf),
		NQS:              nqsResult,
		UsedRemoteSource: nqsResult != nil && nqsResult.Source == nqs.SourceAgent,
		FilledFields:     filled,
	}
	s.logger.Info("valuation computed", "city", city, "estimate", estimate, "confidence", conf, "adjustments", len(l.log))

	s.record(ctx, attrs, result)
	return result
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func rejected(filled int, message string) Result {
	return Result{
		Adjustments:     []AdjustmentFactor{},
		Recommendations: []string{},
		FilledFields:    filled,
		Message:         message,
	}
}

// record appends to history and notifies the learning hook. Failures are
// logged and never reach the caller.
func (s *service) record(ctx context.Context, attrs Attributes, result Result) {
	if !s.recordHistory || s.history == nil {
		return
	}
	entry := HistoryEntry{
		ID:               s.newID(),
		Timestamp:        s.now(),
		Attributes:       attrs.Clone(),
		Result:           result,
		FilledFieldCount: result.FilledFields,
	}
	if err := s.history.Append(ctx, entry); err != nil {
		s.logger.Warn("history append failed", "error", apperrors.Wrap(apperrors.CodeHistory, "append history entry", err))
		return
	}
	if s.hook == nil {
		return
	}
	if err := s.hook.Observe(ctx, entry); err != nil {
		s.logger.Warn("learning hook rejected entry", "id", entry.ID, "error", err)
	}
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	if s.history == nil {
		return Stats{}, nil
	}
	entries, err := s.history.Recent(ctx, HistoryCapacity)
	if err != nil {
		return Stats{}, apperrors.Wrap(apperrors.CodeHistory, "failed to read history", err)
	}
	return summarize(entries), nil
}

// summarize skips entries whose estimate is not a finite number.
func summarize(entries []HistoryEntry) Stats {
	values := make([]float64, 0, len(entries))
	confidences := make([]float64, 0, len(entries))
	remote := 0
	var latest time.Time
	for _, e := range entries {
		if !finite(e.Result.EstimatedValue) {
			continue
		}
		values = append(values, e.Result.EstimatedValue)
		confidences = append(confidences, float64(e.Result.Confidence))
		if e.Result.UsedRemoteSource {
			remote++
		}
		if e.Timestamp.After(latest) {
			latest = e.Timestamp
		}
	}
	if len(values) == 0 {
		return Stats{}
	}
	st := Stats{
		Count:          len(values),
		MeanConfidence: stat.Mean(confidences, nil),
		RemoteShare:    float64(remote) / float64(len(values)),
		Latest:         latest,
	}
	if len(values) > 1 {
		st.MeanValue, st.StdDevValue = stat.MeanStdDev(values, nil)
	} else {
		st.MeanValue = values[0]
	}
	return st
}

func nqsRequest(attrs Attributes, city string, area float64) nqs.Request {
	req := nqs.Request{City: city}
	req.District, _ = attrs.String(FieldDistrict)
	lat, hasLat := attrs.Number(FieldLatitude)
	lon, hasLon := attrs.Number(FieldLongitude)
	if hasLat && hasLon {
		req.Coordinates = &nqs.Coordinates{Lat: lat, Lon: lon}
	}
	extras := map[string]any{"area": area}
	if v, ok := attrs.String(FieldPropertyType); ok {
		extras[FieldPropertyType] = v
	}
	if v, ok := attrs.String(FieldNeighborhoodTier); ok {
		extras[FieldNeighborhoodTier] = v
	}
	req.Extras = extras
	return req
}
