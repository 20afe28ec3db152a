package money

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAmountGroupsThousands(t *testing.T) {
	require.Equal(t, "1,050,000", Amount(1050000))
	require.Equal(t, "+25,000", SignedAmount(25000))
	require.Equal(t, "-1,500", SignedAmount(-1499.6))
}

func TestPercent(t *testing.T) {
	require.Equal(t, "+15.0%", Percent(15))
	require.Equal(t, "-6.0%", Percent(-6))
	require.Equal(t, "+0.0%", Percent(-0.01))
	require.Equal(t, "+2.4%", Change(1000, 1024))
	require.Equal(t, "+0.0%", Change(0, 10))
}
