package market

import "time"

const levelWeeks = 3

// Levels holds one price band per completed week, oldest first.
type Levels struct {
	values []float64
}

// NewLevels wraps per-week values ordered oldest to newest.
func NewLevels(values ...float64) Levels {
	return Levels{values: append([]float64(nil), values...)}
}

// Current is the most recent week's level.
func (l Levels) Current() float64 { return l.values[len(l.values)-1] }

// Previous is the week before Current.
func (l Levels) Previous() float64 { return l.values[len(l.values)-2] }

// Oldest is the earliest tracked week's level.
func (l Levels) Oldest() float64 { return l.values[0] }

// Values returns the per-week levels oldest first.
func (l Levels) Values() []float64 { return append([]float64(nil), l.values...) }

func (l Levels) Len() int { return len(l.values) }

// weeklyExtremes walks candles newest-first, closing a week at each Sunday
// candle, and records the extreme close of every completed week until
// levelWeeks have been seen. Candles arrive oldest-first as fetched.
func weeklyExtremes(pair string, candles []Candle, better func(a, b float64) bool) (Levels, error) {
	if len(candles) == 0 {
		return Levels{}, &NotEnoughCandlesError{Pair: pair, Need: 1, Got: 0}
	}

	// Newest-first collection: index 0 is the current week.
	var weeks []float64
	extreme := candles[len(candles)-1].Close
	for i := len(candles) - 1; i >= 0; i-- {
		c := candles[i]
		if better(c.Close, extreme) {
			extreme = c.Close
		}
		if c.Weekday() == time.Sunday {
			weeks = append(weeks, extreme)
			if len(weeks) == levelWeeks {
				break
			}
			if i > 0 {
				extreme = candles[i-1].Close
			}
		}
	}
	if len(weeks) < levelWeeks {
		return Levels{}, &NotEnoughCandlesError{Pair: pair, Need: levelWeeks, Got: len(weeks)}
	}

	// Reverse to oldest-first.
	ordered := make([]float64, len(weeks))
	for i, v := range weeks {
		ordered[len(weeks)-1-i] = v
	}
	return Levels{values: ordered}, nil
}

// windowExtreme is the single extreme close over the whole window, used when
// the caller picked an explicit chart start.
func windowExtreme(pair string, candles []Candle, better func(a, b float64) bool) (Levels, error) {
	if len(candles) == 0 {
		return Levels{}, &NotEnoughCandlesError{Pair: pair, Need: 1, Got: 0}
	}
	extreme := candles[0].Close
	for _, c := range candles[1:] {
		if better(c.Close, extreme) {
			extreme = c.Close
		}
	}
	return Levels{values: []float64{extreme}}, nil
}

func higher(a, b float64) bool { return a > b }
func lower(a, b float64) bool  { return a < b }
