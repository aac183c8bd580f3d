// Package risk prices and sizes entries. A candidate becomes an order only
// when a weekly level offers enough reward for the stop distance and the
// price shows local momentum in the trade's direction.
package risk

import (
	"github.com/zonkia/XTB-autoTrader/market"
	"github.com/zonkia/XTB-autoTrader/signal"
)

const (
	// DefaultMinRiskReward is the minimum target-to-stop ratio for any entry
	// when the caller does not set its own.
	DefaultMinRiskReward = 1.1

	// stopUnits is the stop distance in volatility units.
	stopUnits = 3

	// lotSize is the notional of one full lot.
	lotSize = 100000
)

// Fractions holds the equity fractions at risk by how strongly the calendar
// backs a pair.
type Fractions struct {
	Full float64
	Semi float64
	Base float64
}

// DefaultFractions returns the stock risk fractions.
func DefaultFractions() Fractions {
	return Fractions{Full: 0.03, Semi: 0.02, Base: 0.01}
}

// FractionFor picks the equity fraction at risk for one pair.
func FractionFor(pair string, full, semi []string, fr Fractions) float64 {
	if fr == (Fractions{}) {
		fr = DefaultFractions()
	}
	for _, p := range full {
		if p == pair {
			return fr.Full
		}
	}
	for _, p := range semi {
		if p == pair {
			return fr.Semi
		}
	}
	return fr.Base
}

// Inputs is everything the sizer needs for one candidate.
type Inputs struct {
	Pair      string
	Direction signal.Direction
	Quote     market.Quote

	// Weekly levels on the four-hour chart, and the single-extreme local
	// band over the last half hour.
	Resistance      market.Levels
	Support         market.Levels
	LocalResistance float64
	LocalSupport    float64

	// Unit is the quarter-chart volatility unit.
	Unit float64

	Equity   float64
	FxRate   float64 // account currency per unit of the pair's base currency
	Fraction float64

	// MinRiskReward overrides DefaultMinRiskReward when positive.
	MinRiskReward float64
}

// Plan is a sized order ready to submit.
type Plan struct {
	Pair       string
	Direction  signal.Direction
	Volume     float64
	StopLoss   float64
	TakeProfit float64
}

// Size turns a candidate into an order plan. The boolean is false when no
// weekly level clears the risk-reward bar or the local momentum gate fails;
// the candidate is then dropped without error.
func (in Inputs) Size() (Plan, bool) {
	inst, err := market.Lookup(in.Pair)
	if err != nil {
		return Plan{}, false
	}
	switch in.Direction {
	case signal.Buy:
		return in.sizeBuy(inst)
	case signal.Sell:
		return in.sizeSell(inst)
	default:
		return Plan{}, false
	}
}

func (in Inputs) sizeBuy(inst market.Instrument) (Plan, bool) {
	stop := inst.RoundPrice(in.Quote.Bid - stopUnits*in.Unit)

	target, ok := in.pickTarget(in.Resistance, func(level float64) float64 {
		return (level - in.Quote.Ask) / (in.Quote.Ask - stop)
	})
	if !ok {
		return Plan{}, false
	}
	if in.Quote.Bid <= in.LocalResistance {
		return Plan{}, false
	}

	volume := market.TruncateTo(
		in.Equity/in.FxRate/lotSize*in.Fraction/(stop/in.Quote.Ask-1)*(-1), 2)
	return Plan{
		Pair:       in.Pair,
		Direction:  signal.Buy,
		Volume:     volume,
		StopLoss:   stop,
		TakeProfit: target,
	}, true
}

func (in Inputs) sizeSell(inst market.Instrument) (Plan, bool) {
	stop := inst.RoundPrice(in.Quote.Ask + stopUnits*in.Unit)

	target, ok := in.pickTarget(in.Support, func(level float64) float64 {
		return (in.Quote.Bid - level) / (stop - in.Quote.Bid)
	})
	if !ok {
		return Plan{}, false
	}
	if in.Quote.Bid >= in.LocalSupport {
		return Plan{}, false
	}

	volume := market.TruncateTo(
		in.Equity/in.FxRate/lotSize*in.Fraction/(stop/in.Quote.Bid-1), 2)
	return Plan{
		Pair:       in.Pair,
		Direction:  signal.Sell,
		Volume:     volume,
		StopLoss:   stop,
		TakeProfit: target + in.Quote.Spread,
	}, true
}

// pickTarget tries the current-week level, then the previous-week one. The
// first level clearing the ratio decides; a failed momentum gate afterwards
// does not fall through to the next level.
func (in Inputs) pickTarget(levels market.Levels, ratio func(float64) float64) (float64, bool) {
	if levels.Len() < 2 {
		return 0, false
	}
	bar := in.MinRiskReward
	if bar <= 0 {
		bar = DefaultMinRiskReward
	}
	for _, level := range []float64{levels.Current(), levels.Previous()} {
		if ratio(level) >= bar {
			return level, true
		}
	}
	return 0, false
}
