package signal

import (
	"math"

	"github.com/zonkia/XTB-autoTrader/market"
)

// Trend is the weekly-level market regime for one pair.
type Trend int

const (
	Sideways Trend = iota
	Uptrend
	Downtrend
)

func (t Trend) String() string {
	switch t {
	case Uptrend:
		return "uptrend"
	case Downtrend:
		return "downtrend"
	default:
		return "side"
	}
}

// Direction maps the trend to the side it permits.
func (t Trend) Direction() Direction {
	switch t {
	case Uptrend:
		return Buy
	case Downtrend:
		return Sell
	default:
		return Both
	}
}

// Progression scores the move between two weekly levels against the
// volatility unit: +1 up by at least one unit, -1 down by at least one unit,
// 0 inside the noise band.
func Progression(current, previous, unit float64) int {
	diff := current - previous
	switch {
	case diff >= unit && diff > 0:
		return 1
	case math.Abs(diff) < unit:
		return 0
	default:
		return -1
	}
}

// ClassifyTrend ranks the resistance and support progressions. The
// current-versus-oldest resistance move counts twice, weighting the
// three-week direction over week-to-week wiggle. Rank above one is an
// uptrend, below one a downtrend, exactly one sideways.
func ClassifyTrend(resistance, support market.Levels, unit float64) Trend {
	rank := Progression(resistance.Current(), resistance.Previous(), unit) +
		Progression(support.Current(), support.Previous(), unit) +
		2*Progression(resistance.Current(), resistance.Oldest(), unit)
	switch {
	case rank > 1:
		return Uptrend
	case rank < 1:
		return Downtrend
	default:
		return Sideways
	}
}
