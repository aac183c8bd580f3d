package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zonkia/XTB-autoTrader/market"
)

func pairsOf(cands []Candidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.Pair)
	}
	return out
}

func TestFullPairs(t *testing.T) {
	bb := BullBear{Bulls: []string{"EUR"}, Bears: []string{"USD", "JPY"}}
	full := FullPairs(bb, market.Universe)
	assert.Equal(t, []string{"USDJPY", "EURUSD", "EURJPY"}, full)

	one := FullPairs(BullBear{Bulls: []string{"EUR"}}, market.Universe)
	assert.Empty(t, one, "a single flagged currency cannot form a full pair")
}

func TestSemiPairs(t *testing.T) {
	bb := BullBear{Bulls: []string{"CAD"}}
	semi := SemiPairs(bb, market.Universe, market.Currencies)
	assert.Equal(t, []string{"USDCAD", "AUDCAD", "CADJPY"}, semi)
}

func TestDirectionsForNoFlags(t *testing.T) {
	cands := DirectionsFor(BullBear{}, []string{"EURUSD", "GBPJPY"})
	assert.Equal(t, []Candidate{
		{Pair: "EURUSD", Direction: Both},
		{Pair: "GBPJPY", Direction: Both},
	}, cands)
}

func TestDirectionsForLegs(t *testing.T) {
	bb := BullBear{Bulls: []string{"EUR"}, Bears: []string{"JPY"}}
	cands := DirectionsFor(bb, []string{"EURUSD", "USDJPY", "EURJPY", "AUDCAD", "GBPJPY"})

	byPair := map[string]Direction{}
	for _, c := range cands {
		byPair[c.Pair] = c.Direction
	}
	assert.Equal(t, Buy, byPair["EURUSD"], "bull base buys")
	assert.Equal(t, Buy, byPair["USDJPY"], "bear quote buys")
	assert.Equal(t, Buy, byPair["EURJPY"], "bull base and bear quote agree")
	assert.Equal(t, Both, byPair["AUDCAD"], "no flagged leg trades either way")
	assert.Equal(t, Buy, byPair["GBPJPY"], "bear quote buys")
}

func TestDirectionsForConflicts(t *testing.T) {
	// Both legs bull: no direction can be assigned.
	bb := BullBear{Bulls: []string{"EUR", "USD"}}
	cands := DirectionsFor(bb, []string{"EURUSD"})
	assert.Empty(t, cands)

	// Bear opinion overrides the bull one when both speak.
	bb = BullBear{Bulls: []string{"USD"}, Bears: []string{"EUR"}}
	cands = DirectionsFor(bb, []string{"EURUSD"})
	assert.Equal(t, []Candidate{{Pair: "EURUSD", Direction: Sell}}, cands)
}

func TestFilterByTrend(t *testing.T) {
	cands := []Candidate{
		{Pair: "EURUSD", Direction: Buy},
		{Pair: "USDJPY", Direction: Sell},
		{Pair: "GBPUSD", Direction: Both},
		{Pair: "AUDCAD", Direction: Buy},
	}
	trends := map[string]Trend{
		"EURUSD": Uptrend,   // agrees
		"USDJPY": Uptrend,   // conflicts
		"GBPUSD": Downtrend, // wildcard candidate
		"AUDCAD": Sideways,  // sideways accepts anything
	}

	got := FilterByTrend(cands, trends)
	assert.Equal(t, []Candidate{
		{Pair: "EURUSD", Direction: Buy},
		{Pair: "GBPUSD", Direction: Sell},
		{Pair: "AUDCAD", Direction: Both},
	}, got)
}

func TestOscillatorGate(t *testing.T) {
	pairs := []string{"EURUSD", "USDJPY", "GBPUSD", "AUDCAD"}
	fourHour := map[string]float64{"EURUSD": 40, "USDJPY": 60, "GBPUSD": 55, "AUDCAD": 45}
	hour := map[string]float64{"EURUSD": 25, "USDJPY": 85, "GBPUSD": 82, "AUDCAD": 30}
	halfHour := map[string]float64{"EURUSD": 15, "USDJPY": 75, "GBPUSD": 85, "AUDCAD": 40}
	quarter := map[string]float64{"EURUSD": 18, "USDJPY": 83, "GBPUSD": 79, "AUDCAD": 21}

	got := OscillatorGate(pairs, fourHour, hour, halfHour, quarter)
	assert.Equal(t, []Candidate{
		{Pair: "EURUSD", Direction: Buy},  // oversold across the board
		{Pair: "USDJPY", Direction: Sell}, // overbought, hour leg qualifies
	}, got)
	// GBPUSD fails the quarter threshold; AUDCAD fails both half and hour.
}

func TestIntersect(t *testing.T) {
	trendGated := []Candidate{
		{Pair: "EURUSD", Direction: Buy},
		{Pair: "USDJPY", Direction: Both},
		{Pair: "GBPUSD", Direction: Sell},
		{Pair: "AUDCAD", Direction: Buy},
	}
	oscGated := []Candidate{
		{Pair: "EURUSD", Direction: Buy},
		{Pair: "USDJPY", Direction: Sell},
		{Pair: "GBPUSD", Direction: Buy},
	}

	got := Intersect(trendGated, oscGated)
	assert.Equal(t, []Candidate{
		{Pair: "EURUSD", Direction: Buy},
		{Pair: "USDJPY", Direction: Sell},
	}, got)
}

func TestReorder(t *testing.T) {
	cands := []Candidate{
		{Pair: "AUDCAD", Direction: Buy},
		{Pair: "EURUSD", Direction: Sell},
		{Pair: "GBPJPY", Direction: Buy},
		{Pair: "USDJPY", Direction: Sell},
	}
	full := []string{"EURUSD", "GBPJPY"}
	semi := []string{"USDJPY", "EURGBP"}

	got := Reorder(cands, full, semi)
	assert.Equal(t, []string{"GBPJPY", "EURUSD", "USDJPY", "AUDCAD"}, pairsOf(got))
}

func TestDropOpenLegs(t *testing.T) {
	cands := []Candidate{
		{Pair: "EURUSD", Direction: Buy},
		{Pair: "GBPJPY", Direction: Sell},
		{Pair: "AUDCAD", Direction: Buy},
	}
	got := DropOpenLegs(cands, []string{"USDJPY"})
	assert.Equal(t, []string{"GBPJPY", "AUDCAD"}, pairsOf(got))
}

func TestUniqueLegsIsOrderDependent(t *testing.T) {
	cands := []Candidate{
		{Pair: "EURUSD", Direction: Buy},
		{Pair: "EURGBP", Direction: Sell}, // shares EUR with the first
		{Pair: "GBPJPY", Direction: Buy},
		{Pair: "AUDJPY", Direction: Sell}, // shares JPY with the third
		{Pair: "AUDCAD", Direction: Buy},
	}
	got := UniqueLegs(cands)
	assert.Equal(t, []string{"EURUSD", "GBPJPY", "AUDCAD"}, pairsOf(got))

	// The same set in a different order keeps different pairs.
	reversed := []Candidate{
		{Pair: "AUDCAD", Direction: Buy},
		{Pair: "AUDJPY", Direction: Sell},
		{Pair: "GBPJPY", Direction: Buy},
		{Pair: "EURGBP", Direction: Sell},
		{Pair: "EURUSD", Direction: Buy},
	}
	got = UniqueLegs(reversed)
	assert.Equal(t, []string{"AUDCAD", "GBPJPY", "EURUSD"}, pairsOf(got))
}

func TestSplitCurrencies(t *testing.T) {
	got := SplitCurrencies([]string{"EURUSD", "GBPJPY", "EURGBP"})
	assert.Equal(t, []string{"EUR", "GBP", "USD", "JPY"}, got)
}
