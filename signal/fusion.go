package signal

// Candidate is one pair with the side the signals allow for it.
type Candidate struct {
	Pair      string
	Direction Direction
}

func pairLegs(pair string) (base, quote string) {
	return pair[:3], pair[3:]
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func appendUnique(list []string, v string) []string {
	if contains(list, v) {
		return list
	}
	return append(list, v)
}

// FullPairs lists the universe pairs whose both legs carry a calendar flag,
// in first-combination order.
func FullPairs(bb BullBear, universe []string) []string {
	flagged := append(append([]string{}, bb.Bears...), bb.Bulls...)
	var out []string
	for _, a := range flagged {
		for _, b := range flagged {
			if contains(universe, a+b) {
				out = appendUnique(out, a+b)
			}
		}
	}
	return out
}

// SemiPairs lists the universe pairs with at least one flagged leg, pairing
// every flagged currency against the whole tracked set in both orders.
func SemiPairs(bb BullBear, universe, currencies []string) []string {
	flagged := append(append([]string{}, bb.Bears...), bb.Bulls...)
	var out []string
	for _, f := range flagged {
		for _, c := range currencies {
			if contains(universe, f+c) {
				out = appendUnique(out, f+c)
			}
			if contains(universe, c+f) {
				out = appendUnique(out, c+f)
			}
		}
	}
	return out
}

// DirectionsFor assigns each pair the side its calendar flags imply. A bull
// quote leg means sell, a bull base leg means buy; bear legs mirror that and
// win when both sides have an opinion. A pair with both legs in the same
// list gets no direction and is dropped; a pair with no flagged leg trades
// either way. When nothing is flagged at all, every pair is unconstrained.
func DirectionsFor(bb BullBear, pairs []string) []Candidate {
	out := make([]Candidate, 0, len(pairs))
	if len(bb.Bulls) == 0 && len(bb.Bears) == 0 {
		for _, p := range pairs {
			out = append(out, Candidate{Pair: p, Direction: Both})
		}
		return out
	}

	for _, p := range pairs {
		base, quote := pairLegs(p)
		baseBull, quoteBull := contains(bb.Bulls, base), contains(bb.Bulls, quote)
		baseBear, quoteBear := contains(bb.Bears, base), contains(bb.Bears, quote)

		dir := None
		if len(bb.Bulls) > 0 && !(baseBull && quoteBull) {
			switch {
			case quoteBull:
				dir = Sell
			case baseBull:
				dir = Buy
			case !baseBear && !quoteBear:
				dir = Both
			}
		}
		if len(bb.Bears) > 0 && !(baseBear && quoteBear) {
			switch {
			case quoteBear:
				dir = Buy
			case baseBear:
				dir = Sell
			case !baseBull && !quoteBull && dir == None:
				dir = Both
			}
		}
		if dir != None {
			out = append(out, Candidate{Pair: p, Direction: dir})
		}
	}
	return out
}

// FilterByTrend keeps candidates whose calendar side agrees with the weekly
// trend, carrying the trend-implied side forward. A sideways trend accepts
// anything; an unconstrained candidate accepts any trend.
func FilterByTrend(cands []Candidate, trends map[string]Trend) []Candidate {
	var out []Candidate
	for _, c := range cands {
		trend, ok := trends[c.Pair]
		if !ok {
			continue
		}
		implied := trend.Direction()
		if c.Direction == implied || c.Direction == Both || trend == Sideways {
			out = append(out, Candidate{Pair: c.Pair, Direction: implied})
		}
	}
	return out
}

// OscillatorGate keeps pairs whose stochastic readings line up across
// timeframes: oversold for a buy, overbought for a sell, with the four-hour
// reading on the right side of the midline.
func OscillatorGate(pairs []string, fourHour, hour, halfHour, quarter map[string]float64) []Candidate {
	var out []Candidate
	for _, p := range pairs {
		if quarter[p] <= 20 && fourHour[p] < 50 && (halfHour[p] <= 20 || hour[p] <= 20) {
			out = append(out, Candidate{Pair: p, Direction: Buy})
		}
	}
	for _, p := range pairs {
		if quarter[p] >= 80 && fourHour[p] > 50 && (halfHour[p] >= 80 || hour[p] >= 80) {
			out = append(out, Candidate{Pair: p, Direction: Sell})
		}
	}
	return out
}

// Intersect keeps the pairs present in both gates whose sides agree, taking
// the oscillator side. A trend-side wildcard matches either.
func Intersect(trendGated, oscGated []Candidate) []Candidate {
	bySide := make(map[string]Direction, len(oscGated))
	for _, c := range oscGated {
		bySide[c.Pair] = c.Direction
	}
	var out []Candidate
	for _, c := range trendGated {
		oscDir, ok := bySide[c.Pair]
		if !ok {
			continue
		}
		if c.Direction == oscDir || c.Direction == Both {
			out = append(out, Candidate{Pair: c.Pair, Direction: oscDir})
		}
	}
	return out
}

// Reorder moves full-flag pairs first and semi-flag pairs second, each group
// newest-flag-first, followed by everything else in its existing order.
func Reorder(cands []Candidate, full, semi []string) []Candidate {
	byPair := make(map[string]Candidate, len(cands))
	for _, c := range cands {
		byPair[c.Pair] = c
	}
	var out []Candidate
	taken := map[string]bool{}
	take := func(pair string) {
		if c, ok := byPair[pair]; ok && !taken[pair] {
			taken[pair] = true
			out = append(out, c)
		}
	}
	for i := len(full) - 1; i >= 0; i-- {
		take(full[i])
	}
	for i := len(semi) - 1; i >= 0; i-- {
		take(semi[i])
	}
	for _, c := range cands {
		take(c.Pair)
	}
	return out
}

// DropOpenLegs removes candidates sharing a currency with any open position.
func DropOpenLegs(cands []Candidate, openPairs []string) []Candidate {
	busy := map[string]bool{}
	for _, p := range openPairs {
		base, quote := pairLegs(p)
		busy[base] = true
		busy[quote] = true
	}
	var out []Candidate
	for _, c := range cands {
		base, quote := pairLegs(c.Pair)
		if busy[base] || busy[quote] {
			continue
		}
		out = append(out, c)
	}
	return out
}

// UniqueLegs greedily keeps the first candidate for each currency; a later
// pair reusing a leg is dropped.
func UniqueLegs(cands []Candidate) []Candidate {
	used := map[string]bool{}
	var out []Candidate
	for _, c := range cands {
		base, quote := pairLegs(c.Pair)
		if used[base] || used[quote] {
			continue
		}
		used[base] = true
		used[quote] = true
		out = append(out, c)
	}
	return out
}

// SplitCurrencies lists the unique legs of the given pairs in first-seen
// order.
func SplitCurrencies(pairs []string) []string {
	var out []string
	for _, p := range pairs {
		base, _ := pairLegs(p)
		out = appendUnique(out, base)
	}
	for _, p := range pairs {
		_, quote := pairLegs(p)
		out = appendUnique(out, quote)
	}
	return out
}
