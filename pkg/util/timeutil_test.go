package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNowUTC(t *testing.T) {
	require.Equal(t, time.UTC, NowUTC().Location())
}

func TestFixedClock(t *testing.T) {
	cairo := time.FixedZone("EET", 2*60*60)
	clock := FixedClock(time.Date(2026, 10, 18, 14, 0, 0, 0, cairo))
	require.Equal(t, time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC), clock())
	require.Equal(t, clock(), clock())
}
