// Package market models the tradable universe: instruments, timeframes,
// candles, and the market-data service that derives support/resistance bands
// and oscillator readings from broker charts.
package market

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownInstrument is returned for a pair outside the configured universe.
var ErrUnknownInstrument = errors.New("market: unknown instrument")

// Instrument is one currency pair's metadata. Digits is the venue's price
// precision: 3 for JPY quotes, 5 otherwise.
type Instrument struct {
	Name   string
	Base   string
	Quote  string
	Digits int
}

// Scale is the integer price scale, 10^Digits.
func (i Instrument) Scale() float64 {
	return math.Pow(10, float64(i.Digits))
}

// Instruments is the tradable universe keyed by pair name.
var Instruments = map[string]Instrument{
	"EURUSD": {Name: "EURUSD", Base: "EUR", Quote: "USD", Digits: 5},
	"USDJPY": {Name: "USDJPY", Base: "USD", Quote: "JPY", Digits: 3},
	"GBPUSD": {Name: "GBPUSD", Base: "GBP", Quote: "USD", Digits: 5},
	"AUDUSD": {Name: "AUDUSD", Base: "AUD", Quote: "USD", Digits: 5},
	"USDCAD": {Name: "USDCAD", Base: "USD", Quote: "CAD", Digits: 5},
	"EURJPY": {Name: "EURJPY", Base: "EUR", Quote: "JPY", Digits: 3},
	"EURGBP": {Name: "EURGBP", Base: "EUR", Quote: "GBP", Digits: 5},
	"GBPJPY": {Name: "GBPJPY", Base: "GBP", Quote: "JPY", Digits: 3},
	"AUDJPY": {Name: "AUDJPY", Base: "AUD", Quote: "JPY", Digits: 3},
	"AUDCAD": {Name: "AUDCAD", Base: "AUD", Quote: "CAD", Digits: 5},
	"CADJPY": {Name: "CADJPY", Base: "CAD", Quote: "JPY", Digits: 3},
}

// Universe lists the pair names in a stable order.
var Universe = []string{
	"EURUSD", "USDJPY", "GBPUSD", "AUDUSD", "USDCAD", "EURJPY",
	"EURGBP", "GBPJPY", "AUDJPY", "AUDCAD", "CADJPY",
}

// Currencies are the legs covered by the universe.
var Currencies = []string{"EUR", "USD", "GBP", "AUD", "JPY", "CAD"}

// Lookup resolves a pair name against the universe.
func Lookup(name string) (Instrument, error) {
	inst, ok := Instruments[name]
	if !ok {
		return Instrument{}, fmt.Errorf("%w: %s", ErrUnknownInstrument, name)
	}
	return inst, nil
}

// RoundPrice rounds a price to the instrument's precision.
func (i Instrument) RoundPrice(p float64) float64 {
	return RoundTo(p, i.Digits)
}
