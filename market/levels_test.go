package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tradingWeek builds six daily candles, Sunday through Friday, whose closes
// are the given values.
func tradingWeek(sunday time.Time, closes [6]float64) []Candle {
	out := make([]Candle, 0, 6)
	for i, c := range closes {
		out = append(out, Candle{
			Start: sunday.AddDate(0, 0, i),
			Open:  c,
			High:  c + 0.0005,
			Low:   c - 0.0005,
			Close: c,
		})
	}
	return out
}

func weeklyFixture() []Candle {
	// Four weeks oldest-first; the walk back from the newest candle must
	// complete three weeks and never reach the first one.
	var candles []Candle
	sunday := time.Date(2024, 2, 18, 22, 0, 0, 0, time.UTC)
	weeks := [][6]float64{
		{1.20, 1.21, 1.22, 1.23, 1.24, 1.25}, // ignored, only 3 weeks tracked
		{1.09, 1.10, 1.08, 1.09, 1.07, 1.08}, // max 1.10, min 1.07
		{1.11, 1.12, 1.10, 1.11, 1.09, 1.10}, // max 1.12, min 1.09
		{1.07, 1.08, 1.06, 1.07, 1.05, 1.06}, // max 1.08, min 1.05
	}
	for i, w := range weeks {
		candles = append(candles, tradingWeek(sunday.AddDate(0, 0, 7*i), w)...)
	}
	return candles
}

func TestWeeklyResistance(t *testing.T) {
	levels, err := weeklyExtremes("EURUSD", weeklyFixture(), higher)
	require.NoError(t, err)

	assert.Equal(t, []float64{1.10, 1.12, 1.08}, levels.Values())
	assert.Equal(t, 1.08, levels.Current())
	assert.Equal(t, 1.12, levels.Previous())
	assert.Equal(t, 1.10, levels.Oldest())
}

func TestWeeklySupport(t *testing.T) {
	levels, err := weeklyExtremes("EURUSD", weeklyFixture(), lower)
	require.NoError(t, err)

	assert.Equal(t, []float64{1.07, 1.09, 1.05}, levels.Values())
	assert.Equal(t, 1.05, levels.Current())
}

func TestWeeklyExtremesNeedsThreeWeeks(t *testing.T) {
	sunday := time.Date(2024, 3, 3, 22, 0, 0, 0, time.UTC)
	candles := tradingWeek(sunday, [6]float64{1.10, 1.11, 1.12, 1.11, 1.10, 1.09})

	_, err := weeklyExtremes("EURUSD", candles, higher)
	var nce *NotEnoughCandlesError
	require.ErrorAs(t, err, &nce)
	assert.Equal(t, "EURUSD", nce.Pair)
}

func TestWindowExtreme(t *testing.T) {
	candles := []Candle{
		{Close: 1.10}, {Close: 1.14}, {Close: 1.11},
	}
	res, err := windowExtreme("EURUSD", candles, higher)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Len())
	assert.Equal(t, 1.14, res.Current())

	sup, err := windowExtreme("EURUSD", candles, lower)
	require.NoError(t, err)
	assert.Equal(t, 1.10, sup.Current())

	_, err = windowExtreme("EURUSD", nil, higher)
	assert.Error(t, err)
}
