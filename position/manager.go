// Package position tracks open broker positions and issues the order
// intents that open, close, and modify them.
package position

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/zonkia/XTB-autoTrader/market"
	"github.com/zonkia/XTB-autoTrader/risk"
	"github.com/zonkia/XTB-autoTrader/signal"
	"github.com/zonkia/XTB-autoTrader/xapi"
)

// weekendCutoff is the seconds-of-day on Friday after which every open
// position is queued for close.
const weekendCutoff = 22*3600 + 54*60

// Trader is the slice of the broker client the manager uses.
type Trader interface {
	Trades(ctx context.Context, openedOnly bool) ([]xapi.TradeRecord, error)
	SendTradeTransaction(ctx context.Context, tx xapi.TradeTransaction) (int, error)
}

// Position is one open trade as last reported by the broker.
type Position struct {
	Pair       string
	Direction  signal.Direction
	Volume     float64
	OpenPrice  float64
	OpenTime   time.Time
	Order      int
	StopLoss   float64
	TakeProfit float64
	Profit     float64
}

// Manager snapshots open positions and submits order intents.
type Manager struct {
	trader Trader
	log    *zap.Logger
}

func NewManager(trader Trader, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{trader: trader, log: log}
}

// Snapshot fetches the currently open positions. Pending orders with a
// non-market command are skipped.
func (m *Manager) Snapshot(ctx context.Context) ([]Position, error) {
	trades, err := m.trader.Trades(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make([]Position, 0, len(trades))
	for _, tr := range trades {
		var dir signal.Direction
		switch xapi.TradeSide(tr.Cmd) {
		case xapi.SideBuy:
			dir = signal.Buy
		case xapi.SideSell:
			dir = signal.Sell
		default:
			continue
		}
		out = append(out, Position{
			Pair:       tr.Symbol,
			Direction:  dir,
			Volume:     tr.Volume,
			OpenPrice:  tr.OpenPrice,
			OpenTime:   time.UnixMilli(tr.OpenTime),
			Order:      tr.Order,
			StopLoss:   tr.StopLoss,
			TakeProfit: tr.TakeProfit,
			Profit:     tr.Profit,
		})
	}
	return out, nil
}

// Open submits a sized plan as a market order. The wire price field is a
// placeholder; the venue fills at market.
func (m *Manager) Open(ctx context.Context, plan risk.Plan) (int, error) {
	order, err := m.trader.SendTradeTransaction(ctx, xapi.TradeTransaction{
		Symbol:     plan.Pair,
		Side:       side(plan.Direction),
		Action:     xapi.ActionOpen,
		Volume:     plan.Volume,
		Price:      1,
		StopLoss:   plan.StopLoss,
		TakeProfit: plan.TakeProfit,
	})
	if err != nil {
		return 0, err
	}
	m.log.Info("position opened",
		zap.String("pair", plan.Pair),
		zap.Stringer("side", plan.Direction),
		zap.Float64("volume", plan.Volume),
		zap.Float64("sl", plan.StopLoss),
		zap.Float64("tp", plan.TakeProfit),
		zap.Int("order", order))
	return order, nil
}

// Close flattens one open position by order id.
func (m *Manager) Close(ctx context.Context, pos Position) error {
	_, err := m.trader.SendTradeTransaction(ctx, xapi.TradeTransaction{
		Symbol: pos.Pair,
		Side:   side(pos.Direction),
		Action: xapi.ActionClose,
		Volume: pos.Volume,
		Price:  pos.OpenPrice,
		Order:  pos.Order,
	})
	if err != nil {
		return err
	}
	m.log.Info("position closed",
		zap.String("pair", pos.Pair),
		zap.Int("order", pos.Order),
		zap.Float64("profit", pos.Profit))
	return nil
}

// Modify rewrites the stop of one open position, keeping its take-profit.
func (m *Manager) Modify(ctx context.Context, pos Position, newStop float64) error {
	_, err := m.trader.SendTradeTransaction(ctx, xapi.TradeTransaction{
		Symbol:     pos.Pair,
		Side:       side(pos.Direction),
		Action:     xapi.ActionModify,
		Volume:     pos.Volume,
		Price:      pos.OpenPrice,
		StopLoss:   newStop,
		TakeProfit: pos.TakeProfit,
		Order:      pos.Order,
	})
	if err != nil {
		return err
	}
	m.log.Info("stop updated",
		zap.String("pair", pos.Pair),
		zap.Int("order", pos.Order),
		zap.Float64("sl", newStop))
	return nil
}

func side(d signal.Direction) xapi.TradeSide {
	if d == signal.Sell {
		return xapi.SideSell
	}
	return xapi.SideBuy
}

// EmergencyCloses returns the positions whose live price has crossed their
// recorded stop or target, meaning the broker-side trigger was missed.
// Positions without a stop or target set, such as ones opened by hand, are
// only checked on the levels they do carry.
func EmergencyCloses(positions []Position, quotes map[string]market.Quote) []Position {
	var out []Position
	for _, pos := range positions {
		q, ok := quotes[pos.Pair]
		if !ok {
			continue
		}
		switch pos.Direction {
		case signal.Buy:
			if (pos.StopLoss != 0 && q.Bid < pos.StopLoss) ||
				(pos.TakeProfit != 0 && q.Bid > pos.TakeProfit) {
				out = append(out, pos)
			}
		case signal.Sell:
			if (pos.StopLoss != 0 && q.Ask > pos.StopLoss) ||
				(pos.TakeProfit != 0 && q.Ask < pos.TakeProfit) {
				out = append(out, pos)
			}
		}
	}
	return out
}

// WeekendDue reports whether the Friday close-everything window has started.
func WeekendDue(now time.Time) bool {
	if now.Weekday() != time.Friday {
		return false
	}
	secs := now.Hour()*3600 + now.Minute()*60 + now.Second()
	return secs >= weekendCutoff
}
