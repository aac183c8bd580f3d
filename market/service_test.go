package market

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zonkia/XTB-autoTrader/xapi"
)

type fakeChartSource struct {
	lastChart xapi.ChartRequest
	chart     xapi.ChartResult
	chartErr  error
	quote     xapi.SymbolQuote
}

func (f *fakeChartSource) ChartRange(ctx context.Context, req xapi.ChartRequest) (xapi.ChartResult, error) {
	f.lastChart = req
	return f.chart, f.chartErr
}

func (f *fakeChartSource) Symbol(ctx context.Context, symbol string) (xapi.SymbolQuote, error) {
	return f.quote, nil
}

func newTestService(src *fakeChartSource, now time.Time) *Service {
	s := NewService(src)
	s.now = func() time.Time { return now }
	return s
}

func TestCandlesDefaultStart(t *testing.T) {
	src := &fakeChartSource{chart: xapi.ChartResult{Digits: 5}}
	now := time.Date(2024, 3, 20, 14, 30, 0, 0, time.UTC)
	svc := newTestService(src, now)

	_, err := svc.Candles(context.Background(), "EURUSD", FourHour, time.Time{})
	require.NoError(t, err)

	wantStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, wantStart.UnixMilli(), src.lastChart.Start)
	assert.Equal(t, now.UnixMilli(), src.lastChart.End)
	assert.Equal(t, 240, src.lastChart.Period)
	assert.Equal(t, "EURUSD", src.lastChart.Symbol)
}

func TestCandlesExplicitStart(t *testing.T) {
	src := &fakeChartSource{}
	now := time.Date(2024, 3, 20, 14, 30, 0, 0, time.UTC)
	svc := newTestService(src, now)

	start := now.Add(-30 * time.Minute)
	_, err := svc.Candles(context.Background(), "GBPJPY", HalfHour, start)
	require.NoError(t, err)
	assert.Equal(t, start.UnixMilli(), src.lastChart.Start)
	assert.Equal(t, 30, src.lastChart.Period)
}

func TestCandlesNormalizes(t *testing.T) {
	src := &fakeChartSource{chart: xapi.ChartResult{
		Digits: 5,
		Rates:  []xapi.RateInfo{{Open: 110000, High: 50, Low: -50, Close: 25}},
	}}
	svc := newTestService(src, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC))

	candles, err := svc.Candles(context.Background(), "EURUSD", Hour, time.Time{})
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.InDelta(t, 1.10000, candles[0].Open, 1e-9)
	assert.InDelta(t, 1.10025, candles[0].Close, 1e-9)
}

func TestCandlesUnknownPair(t *testing.T) {
	svc := newTestService(&fakeChartSource{}, time.Now())
	_, err := svc.Candles(context.Background(), "XAUUSD", Hour, time.Time{})
	assert.ErrorIs(t, err, ErrUnknownInstrument)
}

func TestResistanceWithExplicitStartIsSingleLevel(t *testing.T) {
	src := &fakeChartSource{chart: xapi.ChartResult{
		Rates: []xapi.RateInfo{
			{Open: 109000, Close: 0},
			{Open: 109000, Close: 400},
			{Open: 109000, Close: 150},
		},
	}}
	now := time.Date(2024, 3, 20, 14, 30, 0, 0, time.UTC)
	svc := newTestService(src, now)

	res, err := svc.Resistance(context.Background(), "EURUSD", HalfHour, now.Add(-30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Len())
	assert.InDelta(t, 1.09400, res.Current(), 1e-9)
}

func TestQuoteSpreadRounding(t *testing.T) {
	src := &fakeChartSource{quote: xapi.SymbolQuote{Bid: 109.481, Ask: 109.503}}
	svc := newTestService(src, time.Now())

	q, err := svc.Quote(context.Background(), "USDJPY")
	require.NoError(t, err)
	assert.Equal(t, 109.481, q.Bid)
	assert.Equal(t, 109.503, q.Ask)
	assert.Equal(t, 0.022, q.Spread)
}
