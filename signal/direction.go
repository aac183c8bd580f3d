// Package signal derives trade candidates from three independent sources:
// the economic calendar, the weekly support/resistance trend, and the slow
// stochastic. A candidate survives only when the sources agree.
package signal

// Direction is a candidate's allowed side. Both means the source placed no
// constraint; None means the candidate is ruled out.
type Direction int

const (
	None Direction = iota
	Buy
	Sell
	Both
)

func (d Direction) String() string {
	switch d {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	case Both:
		return "both"
	default:
		return "none"
	}
}

// Opposite flips buy and sell; None and Both map to themselves.
func (d Direction) Opposite() Direction {
	switch d {
	case Buy:
		return Sell
	case Sell:
		return Buy
	default:
		return d
	}
}
