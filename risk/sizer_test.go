package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zonkia/XTB-autoTrader/market"
	"github.com/zonkia/XTB-autoTrader/signal"
)

func buyInputs() Inputs {
	return Inputs{
		Pair:      "EURUSD",
		Direction: signal.Buy,
		Quote:     market.Quote{Bid: 1.0995, Ask: 1.1000, Spread: 0.0005},
		// Stop lands at bid - 3*unit = 1.0950.
		Unit:            0.0015,
		Resistance:      market.NewLevels(1.0900, 1.1050, 1.1100),
		Support:         market.NewLevels(1.0800, 1.0850, 1.0900),
		LocalResistance: 1.0990,
		LocalSupport:    1.0970,
		Equity:          10000,
		FxRate:          1,
		Fraction:        DefaultFractions().Full,
	}
}

func TestSizeBuy(t *testing.T) {
	plan, ok := buyInputs().Size()
	require.True(t, ok)

	assert.Equal(t, "EURUSD", plan.Pair)
	assert.Equal(t, signal.Buy, plan.Direction)
	assert.Equal(t, 1.0950, plan.StopLoss)
	assert.Equal(t, 1.1100, plan.TakeProfit)
	// truncate(10000/1/100000*0.03/((1.0950/1.1000)-1)*(-1), 2)
	want := market.TruncateTo(10000.0/1/100000*0.03/(1.0950/1.1000-1)*(-1), 2)
	assert.Equal(t, want, plan.Volume)
	assert.Equal(t, 0.65, plan.Volume)
}

func TestSizeBuyFallsBackToPreviousLevel(t *testing.T) {
	in := buyInputs()
	// Current-week resistance too close for 1.1 reward-to-risk; the
	// previous-week level at 1.1050 still clears it.
	in.Resistance = market.NewLevels(1.0900, 1.1060, 1.1004)

	plan, ok := in.Size()
	require.True(t, ok)
	assert.Equal(t, 1.1060, plan.TakeProfit)
}

func TestSizeBuyRejectsLowRiskReward(t *testing.T) {
	in := buyInputs()
	in.Resistance = market.NewLevels(1.0900, 1.1004, 1.1003)

	_, ok := in.Size()
	assert.False(t, ok)
}

func TestSizeBuyMomentumGate(t *testing.T) {
	in := buyInputs()
	in.LocalResistance = 1.1020 // bid below the local band: no breakout yet

	_, ok := in.Size()
	assert.False(t, ok)
}

func TestSizeSell(t *testing.T) {
	in := Inputs{
		Pair:      "EURUSD",
		Direction: signal.Sell,
		Quote:     market.Quote{Bid: 1.0995, Ask: 1.1000, Spread: 0.0005},
		// Stop lands at ask + 3*unit = 1.1045.
		Unit:            0.0015,
		Resistance:      market.NewLevels(1.1100, 1.1150, 1.1200),
		Support:         market.NewLevels(1.1000, 1.0950, 1.0900),
		LocalResistance: 1.1010,
		LocalSupport:    1.0998,
		Equity:          10000,
		FxRate:          1,
		Fraction:        DefaultFractions().Full,
	}

	plan, ok := in.Size()
	require.True(t, ok)
	assert.Equal(t, 1.1045, plan.StopLoss)
	// Take-profit is the support level padded by the spread.
	assert.InDelta(t, 1.0905, plan.TakeProfit, 1e-9)
	want := market.TruncateTo(10000.0/1/100000*0.03/(1.1045/1.0995-1), 2)
	assert.Equal(t, want, plan.Volume)
	assert.Equal(t, 0.65, plan.Volume)
}

func TestSizeSellMomentumGate(t *testing.T) {
	in := Inputs{
		Pair:         "EURUSD",
		Direction:    signal.Sell,
		Quote:        market.Quote{Bid: 1.0995, Ask: 1.1000, Spread: 0.0005},
		Unit:         0.0015,
		Support:      market.NewLevels(1.1000, 1.0950, 1.0900),
		LocalSupport: 1.0980, // bid above local support: no breakdown yet
		Equity:       10000,
		FxRate:       1,
		Fraction:     DefaultFractions().Semi,
	}
	_, ok := in.Size()
	assert.False(t, ok)
}

func TestSizeUnknownPairOrDirection(t *testing.T) {
	in := buyInputs()
	in.Pair = "EURCHF"
	_, ok := in.Size()
	assert.False(t, ok)

	in = buyInputs()
	in.Direction = signal.Both
	_, ok = in.Size()
	assert.False(t, ok)
}

func TestSizeBuyHonorsMinRiskReward(t *testing.T) {
	in := buyInputs()
	// The stock fixture sizes fine at the default bar.
	_, ok := in.Size()
	require.True(t, ok)

	// A stricter bar rejects the same entry.
	in.MinRiskReward = 50
	_, ok = in.Size()
	assert.False(t, ok)
}

func TestSizeBuyUsesConfiguredFraction(t *testing.T) {
	in := buyInputs()
	in.Fraction = 0.09

	plan, ok := in.Size()
	require.True(t, ok)
	want := market.TruncateTo(10000.0/1/100000*0.09/(1.0950/1.1000-1)*(-1), 2)
	assert.Equal(t, want, plan.Volume)
	assert.Equal(t, 1.97, plan.Volume)
}

func TestFractionFor(t *testing.T) {
	full := []string{"EURUSD"}
	semi := []string{"GBPJPY"}
	assert.Equal(t, 0.03, FractionFor("EURUSD", full, semi, Fractions{}))
	assert.Equal(t, 0.02, FractionFor("GBPJPY", full, semi, Fractions{}))
	assert.Equal(t, 0.01, FractionFor("AUDCAD", full, semi, Fractions{}))

	fr := Fractions{Full: 0.05, Semi: 0.03, Base: 0.005}
	assert.Equal(t, 0.05, FractionFor("EURUSD", full, semi, fr))
	assert.Equal(t, 0.03, FractionFor("GBPJPY", full, semi, fr))
	assert.Equal(t, 0.005, FractionFor("AUDCAD", full, semi, fr))
}
