package market

import (
	"time"

	"github.com/zonkia/XTB-autoTrader/xapi"
)

// Candle is one normalized OHLC bar. The wire format carries the open as an
// integer-scaled price and high/low/close as deltas against it; Normalize
// resolves all four to absolute prices before anything computes on them.
type Candle struct {
	Start time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// Weekday of the candle's start in UTC.
func (c Candle) Weekday() time.Weekday {
	return c.Start.UTC().Weekday()
}

// Range is high minus low.
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// Normalize converts raw wire candles to absolute prices using the
// instrument's scale.
func Normalize(rates []xapi.RateInfo, inst Instrument) []Candle {
	scale := inst.Scale()
	out := make([]Candle, 0, len(rates))
	for _, r := range rates {
		out = append(out, Candle{
			Start: time.UnixMilli(r.Ctm).UTC(),
			Open:  r.Open / scale,
			High:  (r.Open + r.High) / scale,
			Low:   (r.Open + r.Low) / scale,
			Close: (r.Open + r.Close) / scale,
		})
	}
	return out
}
