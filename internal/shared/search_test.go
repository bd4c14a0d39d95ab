package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMatchesQuery(t *testing.T) {
	require.True(t, MatchesQuery("Acme", "ac"))
	require.True(t, MatchesQuery("Mac Co", "AC"))
	require.False(t, MatchesQuery("Acme", "a"))
	require.False(t, MatchesQuery("Acme", " "))
	require.False(t, MatchesQuery("Bolt", "ac"))
}

func TestFoldName(t *testing.T) {
	require.Equal(t, FoldName("  ACME Traders "), FoldName("acme traders"))
}

func TestDayWindow(t *testing.T) {
	at := time.Date(2024, 5, 17, 15, 42, 7, 0, time.Local)
	start, end := DayWindow(at)
	require.Equal(t, time.Date(2024, 5, 17, 0, 0, 0, 0, time.Local), start)
	require.Equal(t, 24*time.Hour, end.Sub(start))
	require.True(t, at.After(start) && at.Before(end))
}

func TestParseISODate(t *testing.T) {
	d, err := ParseISODate("2024-01-02")
	require.NoError(t, err)
	require.Equal(t, 2024, d.Year())

	ts, err := ParseISODate("2024-01-02T10:30:00Z")
	require.NoError(t, err)
	require.Equal(t, 10, ts.Hour())

	_, err = ParseISODate("02/01/2024")
	require.Error(t, err)
}
