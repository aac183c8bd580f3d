package market

import (
	"context"
	"time"

	"github.com/zonkia/XTB-autoTrader/xapi"
)

// defaultLookback is how far back a chart request reaches when the caller
// does not pick a start. 19 days covers three completed trading weeks.
const defaultLookback = 19 * 24 * time.Hour

// ChartSource is the slice of the broker client the service needs.
type ChartSource interface {
	ChartRange(ctx context.Context, req xapi.ChartRequest) (xapi.ChartResult, error)
	Symbol(ctx context.Context, symbol string) (xapi.SymbolQuote, error)
}

// Quote is one bid/ask snapshot. Spread is pre-rounded to the instrument's
// precision; quotes are fetched fresh every cycle, never cached.
type Quote struct {
	Bid    float64
	Ask    float64
	Spread float64
}

// Service turns raw broker charts into the derived series the strategy
// consumes.
type Service struct {
	src ChartSource
	now func() time.Time
}

func NewService(src ChartSource) *Service {
	return &Service{src: src, now: time.Now}
}

// Candles fetches and normalizes the chart for one pair. A zero start means
// midnight defaultLookback ago; the window always ends now.
func (s *Service) Candles(ctx context.Context, pair string, tf Timeframe, start time.Time) ([]Candle, error) {
	inst, err := Lookup(pair)
	if err != nil {
		return nil, err
	}
	period, err := tf.Period()
	if err != nil {
		return nil, err
	}
	if start.IsZero() {
		start = s.defaultStart()
	}
	res, err := s.src.ChartRange(ctx, xapi.ChartRequest{
		Symbol: pair,
		Period: period,
		Start:  start.UnixMilli(),
		End:    s.now().UnixMilli(),
	})
	if err != nil {
		return nil, err
	}
	return Normalize(res.Rates, inst), nil
}

// defaultStart is midnight at the start of the lookback window.
func (s *Service) defaultStart() time.Time {
	day := s.now().Add(-defaultLookback)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
}

// Resistance returns per-week close maxima. With a zero start the three most
// recent completed weeks are tracked; an explicit start collapses the whole
// window into a single level.
func (s *Service) Resistance(ctx context.Context, pair string, tf Timeframe, start time.Time) (Levels, error) {
	return s.levels(ctx, pair, tf, start, higher)
}

// Support returns per-week close minima, mirroring Resistance.
func (s *Service) Support(ctx context.Context, pair string, tf Timeframe, start time.Time) (Levels, error) {
	return s.levels(ctx, pair, tf, start, lower)
}

func (s *Service) levels(ctx context.Context, pair string, tf Timeframe, start time.Time, better func(a, b float64) bool) (Levels, error) {
	explicit := !start.IsZero()
	candles, err := s.Candles(ctx, pair, tf, start)
	if err != nil {
		return Levels{}, err
	}
	if explicit {
		return windowExtreme(pair, candles, better)
	}
	return weeklyExtremes(pair, candles, better)
}

// Oscillator computes the slow stochastic for one pair and timeframe over
// the default window.
func (s *Service) Oscillator(ctx context.Context, pair string, tf Timeframe) (Oscillator, error) {
	candles, err := s.Candles(ctx, pair, tf, time.Time{})
	if err != nil {
		return Oscillator{}, err
	}
	return SlowStochastic(pair, candles)
}

// Quote fetches the live bid/ask for one pair.
func (s *Service) Quote(ctx context.Context, pair string) (Quote, error) {
	inst, err := Lookup(pair)
	if err != nil {
		return Quote{}, err
	}
	q, err := s.src.Symbol(ctx, pair)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Bid:    q.Bid,
		Ask:    q.Ask,
		Spread: RoundTo(q.Ask-q.Bid, inst.Digits),
	}, nil
}
