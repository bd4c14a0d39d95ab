package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRound2HalfUpAtCent(t *testing.T) {
	require.Equal(t, 33.67, Round2(33.665))
	require.Equal(t, 10.55, Round2(10.554))
	require.Equal(t, 0.0, Round2(0))
	require.Equal(t, -1000.0, Round2(-1000))
}

func TestMulRound(t *testing.T) {
	// 3kg at 10.555/kg lands exactly on the half cent and rounds up.
	require.Equal(t, 31.67, MulRound(3, 10.555))
	require.Equal(t, 0.0, MulRound(0, 99.99))
}

func TestSumRoundNoDrift(t *testing.T) {
	// 1000 sequential cent additions must not drift the way naive float64
	// accumulation does.
	amounts := make([]float64, 1000)
	for i := range amounts {
		amounts[i] = 0.01
	}
	require.Equal(t, 10.0, SumRound(amounts...))
}

func TestPercentage(t *testing.T) {
	require.Equal(t, 75, Percentage(45, 60))
	require.Equal(t, 100, Percentage(60, 60))
	require.Equal(t, 0, Percentage(10, 0))
	// Rounds to nearest integer.
	require.Equal(t, 33, Percentage(1, 3))
	require.Equal(t, 67, Percentage(2, 3))
}
