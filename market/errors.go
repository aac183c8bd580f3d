package market

import "fmt"

// NotEnoughCandlesError reports a chart window too short for a computation.
type NotEnoughCandlesError struct {
	Pair string
	Need int
	Got  int
}

func (e *NotEnoughCandlesError) Error() string {
	return fmt.Sprintf("market: %s: need %d candles, got %d", e.Pair, e.Need, e.Got)
}
