package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zonkia/XTB-autoTrader/market"
)

func TestProgression(t *testing.T) {
	unit := 0.005
	assert.Equal(t, 1, Progression(1.110, 1.100, unit))
	assert.Equal(t, -1, Progression(1.100, 1.110, unit))
	assert.Equal(t, 0, Progression(1.101, 1.100, unit))
	assert.Equal(t, 0, Progression(1.100, 1.101, unit))
	// Exactly one unit counts as a move.
	assert.Equal(t, 1, Progression(1.105, 1.100, unit))
	assert.Equal(t, -1, Progression(1.100, 1.105, unit))
}

func TestClassifyTrend(t *testing.T) {
	unit := 0.005

	// Levels are oldest first. Rising resistance and support week over week.
	up := ClassifyTrend(
		market.NewLevels(1.100, 1.110, 1.120),
		market.NewLevels(1.090, 1.100, 1.110),
		unit,
	)
	assert.Equal(t, Uptrend, up)

	down := ClassifyTrend(
		market.NewLevels(1.120, 1.110, 1.100),
		market.NewLevels(1.110, 1.100, 1.090),
		unit,
	)
	assert.Equal(t, Downtrend, down)

	// Completely flat levels rank zero, which lands below the sideways
	// pivot and reads as a downtrend.
	flat := ClassifyTrend(
		market.NewLevels(1.100, 1.100, 1.100),
		market.NewLevels(1.090, 1.090, 1.090),
		unit,
	)
	assert.Equal(t, Downtrend, flat)

	// One week of resistance progress with no three-week move ranks exactly
	// one: sideways.
	side := ClassifyTrend(
		market.NewLevels(1.100, 1.095, 1.101),
		market.NewLevels(1.090, 1.090, 1.091),
		unit,
	)
	assert.Equal(t, Sideways, side)

	// Support up one week but the three-week resistance move down twice
	// outweighs it.
	mixed := ClassifyTrend(
		market.NewLevels(1.120, 1.110, 1.100),
		market.NewLevels(1.090, 1.090, 1.100),
		unit,
	)
	assert.Equal(t, Downtrend, mixed)
}

func TestTrendDirection(t *testing.T) {
	assert.Equal(t, Buy, Uptrend.Direction())
	assert.Equal(t, Sell, Downtrend.Direction())
	assert.Equal(t, Both, Sideways.Direction())
}
