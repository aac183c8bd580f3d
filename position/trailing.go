package position

import (
	"math"

	"github.com/zonkia/XTB-autoTrader/market"
	"github.com/zonkia/XTB-autoTrader/signal"
)

// trailPadUnits is the distance, in volatility units, kept between the
// chosen close and the new stop.
const trailPadUnits = 2

// ProposeStop computes a tightened stop for one open position from the
// close sequence since entry (the open price prepended as element zero).
//
// The primary candidate is the most recent reversal close at least one unit
// away from the last close, on the profitable side of it. It must sit beyond
// the entry price and clear the reference (the more favorable of entry and
// current stop) by more than spread plus two units. When the last four steps
// all confirm the trade's direction, the close five steps back becomes the
// candidate instead, same clearance applied.
//
// The returned stop is rounded to the instrument's precision. A stop that
// would loosen the current one is discarded; the boolean reports whether an
// update should be sent.
func ProposeStop(pos Position, closes []float64, unit, spread float64) (float64, bool) {
	inst, err := market.Lookup(pos.Pair)
	if err != nil {
		return 0, false
	}
	if len(closes) < 2 || pos.Profit <= 0 {
		return 0, false
	}
	buy := pos.Direction == signal.Buy
	if !buy && pos.Direction != signal.Sell {
		return 0, false
	}

	dirs := confirmations(closes, buy)
	last := closes[len(closes)-1]
	ref := reference(pos, buy)
	clearance := spread + trailPadUnits*unit

	candidate, have := 0.0, false

	// Most recent reversal far enough from the last close decides; older
	// reversals are never consulted.
	for i := len(dirs) - 1; i >= 1; i-- {
		if dirs[i] != 0 {
			continue
		}
		if math.Abs(last-closes[i]) < unit {
			continue
		}
		profitable := (buy && last > closes[i]) || (!buy && last < closes[i])
		beyondEntry := (buy && closes[i] > pos.OpenPrice) || (!buy && closes[i] < pos.OpenPrice)
		if profitable && beyondEntry && math.Abs(closes[i]-ref) > clearance {
			candidate, have = closes[i], true
		}
		break
	}

	// Four straight confirmations promote the close five steps back.
	if n := len(closes); n >= 5 {
		allConfirm := dirs[n-5]+dirs[n-4]+dirs[n-3]+dirs[n-2] == 4
		if allConfirm && math.Abs(closes[n-5]-ref) > clearance {
			candidate, have = closes[n-5], true
		}
	}
	if !have {
		return 0, false
	}

	var stop float64
	if buy {
		stop = inst.RoundPrice(candidate - trailPadUnits*unit)
		if pos.StopLoss != 0 && stop <= pos.StopLoss {
			return 0, false
		}
	} else {
		stop = inst.RoundPrice(candidate + trailPadUnits*unit + spread)
		if pos.StopLoss != 0 && stop >= pos.StopLoss {
			return 0, false
		}
	}
	return stop, true
}

// confirmations scores each step of the close sequence: 1 when the close
// moved with the trade, 0 on a reversal. The entry element always confirms.
func confirmations(closes []float64, buy bool) []int {
	dirs := make([]int, len(closes))
	dirs[0] = 1
	for i := 1; i < len(closes); i++ {
		confirm := closes[i] >= closes[i-1]
		if !buy {
			confirm = closes[i] <= closes[i-1]
		}
		if confirm {
			dirs[i] = 1
		}
	}
	return dirs
}

// reference is what a new stop must clear: the current stop once it has been
// trailed past the entry, the entry otherwise.
func reference(pos Position, buy bool) float64 {
	if buy {
		if pos.StopLoss > pos.OpenPrice {
			return pos.StopLoss
		}
		return pos.OpenPrice
	}
	if pos.StopLoss > 0 && pos.StopLoss < pos.OpenPrice {
		return pos.StopLoss
	}
	return pos.OpenPrice
}
