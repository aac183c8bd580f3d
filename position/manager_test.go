package position

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zonkia/XTB-autoTrader/market"
	"github.com/zonkia/XTB-autoTrader/risk"
	"github.com/zonkia/XTB-autoTrader/signal"
	"github.com/zonkia/XTB-autoTrader/xapi"
)

type fakeTrader struct {
	trades []xapi.TradeRecord
	sent   []xapi.TradeTransaction
	order  int
}

func (f *fakeTrader) Trades(ctx context.Context, openedOnly bool) ([]xapi.TradeRecord, error) {
	return f.trades, nil
}

func (f *fakeTrader) SendTradeTransaction(ctx context.Context, tx xapi.TradeTransaction) (int, error) {
	f.sent = append(f.sent, tx)
	return f.order, nil
}

func TestSnapshot(t *testing.T) {
	trader := &fakeTrader{trades: []xapi.TradeRecord{
		{Symbol: "EURUSD", Cmd: 0, Volume: 0.5, OpenPrice: 1.1000, OpenTime: 1700000000000, Order: 7, StopLoss: 1.0950, TakeProfit: 1.1100, Profit: 12.5},
		{Symbol: "GBPJPY", Cmd: 1, Volume: 0.2, OpenPrice: 185.100, Order: 8},
		{Symbol: "AUDCAD", Cmd: 4, Order: 9}, // pending stop order, skipped
	}}
	m := NewManager(trader, nil)

	positions, err := m.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, signal.Buy, positions[0].Direction)
	assert.Equal(t, time.UnixMilli(1700000000000), positions[0].OpenTime)
	assert.Equal(t, signal.Sell, positions[1].Direction)
}

func TestOpenSubmitsPlan(t *testing.T) {
	trader := &fakeTrader{order: 42}
	m := NewManager(trader, nil)

	order, err := m.Open(context.Background(), risk.Plan{
		Pair: "EURUSD", Direction: signal.Buy, Volume: 0.65, StopLoss: 1.0950, TakeProfit: 1.1100,
	})
	require.NoError(t, err)
	assert.Equal(t, 42, order)

	require.Len(t, trader.sent, 1)
	tx := trader.sent[0]
	assert.Equal(t, xapi.SideBuy, tx.Side)
	assert.Equal(t, xapi.ActionOpen, tx.Action)
	assert.Equal(t, 1.0, tx.Price)
	assert.Equal(t, 0.65, tx.Volume)
}

func TestCloseUsesOrderID(t *testing.T) {
	trader := &fakeTrader{}
	m := NewManager(trader, nil)

	err := m.Close(context.Background(), Position{
		Pair: "GBPJPY", Direction: signal.Sell, Volume: 0.2, OpenPrice: 185.100, Order: 8,
	})
	require.NoError(t, err)

	tx := trader.sent[0]
	assert.Equal(t, xapi.ActionClose, tx.Action)
	assert.Equal(t, xapi.SideSell, tx.Side)
	assert.Equal(t, 8, tx.Order)
	assert.Equal(t, 185.100, tx.Price)
}

func TestModifyKeepsTakeProfit(t *testing.T) {
	trader := &fakeTrader{}
	m := NewManager(trader, nil)

	err := m.Modify(context.Background(), Position{
		Pair: "EURUSD", Direction: signal.Buy, Volume: 0.5,
		OpenPrice: 1.1000, Order: 7, StopLoss: 1.0950, TakeProfit: 1.1100,
	}, 1.1020)
	require.NoError(t, err)

	tx := trader.sent[0]
	assert.Equal(t, xapi.ActionModify, tx.Action)
	assert.Equal(t, 1.1020, tx.StopLoss)
	assert.Equal(t, 1.1100, tx.TakeProfit)
	assert.Equal(t, 7, tx.Order)
}

func TestEmergencyCloses(t *testing.T) {
	positions := []Position{
		{Pair: "EURUSD", Direction: signal.Buy, StopLoss: 1.0950, TakeProfit: 1.1100},
		{Pair: "GBPJPY", Direction: signal.Sell, StopLoss: 186.000, TakeProfit: 184.000},
		{Pair: "AUDCAD", Direction: signal.Buy, StopLoss: 0.8900, TakeProfit: 0.9100},
	}
	quotes := map[string]market.Quote{
		"EURUSD": {Bid: 1.0940, Ask: 1.0945}, // bid fell through the stop
		"GBPJPY": {Bid: 186.050, Ask: 186.080}, // ask rose through the stop
		"AUDCAD": {Bid: 0.9000, Ask: 0.9005},   // inside the band, stays open
	}

	got := EmergencyCloses(positions, quotes)
	require.Len(t, got, 2)
	assert.Equal(t, "EURUSD", got[0].Pair)
	assert.Equal(t, "GBPJPY", got[1].Pair)
}

func TestEmergencyClosesIgnoresUnsetLevels(t *testing.T) {
	// Hand-opened positions may carry no stop or target at all.
	positions := []Position{
		{Pair: "EURUSD", Direction: signal.Buy},
		{Pair: "GBPJPY", Direction: signal.Sell},
		{Pair: "AUDCAD", Direction: signal.Buy, StopLoss: 0.8900},
	}
	quotes := map[string]market.Quote{
		"EURUSD": {Bid: 1.0940, Ask: 1.0945},
		"GBPJPY": {Bid: 186.050, Ask: 186.080},
		"AUDCAD": {Bid: 0.9000, Ask: 0.9005},
	}

	assert.Empty(t, EmergencyCloses(positions, quotes))

	// The one level that is set still fires.
	quotes["AUDCAD"] = market.Quote{Bid: 0.8890, Ask: 0.8895}
	got := EmergencyCloses(positions, quotes)
	require.Len(t, got, 1)
	assert.Equal(t, "AUDCAD", got[0].Pair)
}

func TestWeekendDue(t *testing.T) {
	friday := time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Friday, friday.Weekday())

	assert.False(t, WeekendDue(friday.Add(22*time.Hour+53*time.Minute+59*time.Second)))
	assert.True(t, WeekendDue(friday.Add(22*time.Hour+54*time.Minute)))
	assert.True(t, WeekendDue(friday.Add(22*time.Hour+54*time.Minute+1*time.Second)))

	thursday := friday.AddDate(0, 0, -1)
	assert.False(t, WeekendDue(thursday.Add(23*time.Hour)))
}
