package market

const (
	stochK       = 25
	stochSmooth  = 15
	stochWindow  = stochK + stochSmooth - 1
	unitDecimals = 5
)

// Oscillator is one slow-stochastic reading plus the window's mean candle
// range, used elsewhere as the instrument's volatility unit.
type Oscillator struct {
	Value float64
	Unit  float64
}

// SlowStochastic computes the smoothed stochastic over the newest
// stochWindow candles. Candles arrive oldest-first.
//
// A window where every lookback range is flat has a zero denominator; the
// reading is then ±Inf or NaN and threshold comparisons simply fail, which is
// the desired behavior for a dead market.
func SlowStochastic(pair string, candles []Candle) (Oscillator, error) {
	if len(candles) < stochWindow {
		return Oscillator{}, &NotEnoughCandlesError{Pair: pair, Need: stochWindow, Got: len(candles)}
	}

	// Newest-first view over the last stochWindow candles.
	recent := make([]Candle, stochWindow)
	for i := 0; i < stochWindow; i++ {
		recent[i] = candles[len(candles)-1-i]
	}

	var num, den float64
	for i := 0; i < stochSmooth; i++ {
		lo := recent[i].Low
		hi := recent[i].High
		for _, c := range recent[i : i+stochK] {
			if c.Low < lo {
				lo = c.Low
			}
			if c.High > hi {
				hi = c.High
			}
		}
		num += 100 * (recent[i].Close - lo)
		den += hi - lo
	}

	var rangeSum float64
	for _, c := range recent {
		rangeSum += c.Range()
	}

	value := num / den
	if den != 0 {
		value = RoundTo(value, 2)
	}
	return Oscillator{
		Value: value,
		Unit:  RoundTo(rangeSum/float64(stochWindow), unitDecimals),
	}, nil
}
