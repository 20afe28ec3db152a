package datasets

import (
	"context"
	"log/slog"

	"github.com/yanqian/property-valuator/internal/domain/nqs"
)

// FallbackSource tries primary first and degrades to secondary on any error.
type FallbackSource struct {
	primary   Source
	secondary Source
	logger    *slog.Logger
}

// WithFallback chains two sources.
func WithFallback(primary, secondary Source, logger *slog.Logger) *FallbackSource {
	return &FallbackSource{primary: primary, secondary: secondary, logger: logger.With("component", "datasets")}
}

// Load implements Source.
func (s *FallbackSource) Load(ctx context.Context) (nqs.Dataset, error) {
	ds, err := s.primary.Load(ctx)
	if err == nil {
		return ds, nil
	}
	s.logger.Error("dataset source failed, using fallback", "error", err)
	return s.secondary.Load(ctx)
}

var _ Source = (*FallbackSource)(nil)
