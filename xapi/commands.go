package xapi

import (
	"context"
)

// TradeSide is the broker's cmd field on a trade transaction.
type TradeSide int

const (
	SideBuy       TradeSide = 0
	SideSell      TradeSide = 1
	SideBuyLimit  TradeSide = 2
	SideSellLimit TradeSide = 3
	SideBuyStop   TradeSide = 4
	SideSellStop  TradeSide = 5
)

// TradeAction is the broker's type field on a trade transaction.
type TradeAction int

const (
	ActionOpen   TradeAction = 0
	ActionClose  TradeAction = 2
	ActionModify TradeAction = 3
	ActionDelete TradeAction = 4
)

// Login authenticates the session and returns the stream session id used by
// the streaming connection.
func (c *Client) Login(ctx context.Context, userID int, password string) (string, error) {
	args := map[string]any{
		"userId":   userID,
		"password": password,
		"appName":  "",
	}
	env, err := c.exchange(ctx, "login", args)
	if err != nil {
		return "", err
	}
	return env.StreamSessionID, nil
}

// CalendarEvent is one economic-calendar entry as the broker reports it.
// Numeric fields arrive as strings; current is empty until the event has
// occurred.
type CalendarEvent struct {
	Country  string `json:"country"`
	Title    string `json:"title"`
	Impact   string `json:"impact"`
	Forecast string `json:"forecast"`
	Current  string `json:"current"`
	Previous string `json:"previous"`
	Time     int64  `json:"time"` // unix milliseconds
}

// Calendar fetches the full economic calendar.
func (c *Client) Calendar(ctx context.Context) ([]CalendarEvent, error) {
	data, err := c.Execute(ctx, "getCalendar", nil)
	if err != nil {
		return nil, err
	}
	var events []CalendarEvent
	if err := decodeReturn("getCalendar", data, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ChartRequest selects a candle range. Period is the broker period code in
// minutes; start and end are unix milliseconds.
type ChartRequest struct {
	Symbol string
	Period int
	Start  int64
	End    int64
}

// RateInfo is one raw candle. Open is an integer-scaled price; high, low and
// close are deltas relative to open in the same scale.
type RateInfo struct {
	Ctm   int64   `json:"ctm"` // candle start, unix milliseconds
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
	Vol   float64 `json:"vol"`
}

// ChartResult carries the raw candles plus the price scale the venue used.
type ChartResult struct {
	Digits int        `json:"digits"`
	Rates  []RateInfo `json:"rateInfos"`
}

// ChartRange fetches raw candles for the requested range.
func (c *Client) ChartRange(ctx context.Context, req ChartRequest) (ChartResult, error) {
	args := map[string]any{
		"info": map[string]any{
			"symbol": req.Symbol,
			"period": req.Period,
			"start":  req.Start,
			"end":    req.End,
			"ticks":  0,
		},
	}
	data, err := c.Execute(ctx, "getChartRangeRequest", args)
	if err != nil {
		return ChartResult{}, err
	}
	var res ChartResult
	if err := decodeReturn("getChartRangeRequest", data, &res); err != nil {
		return ChartResult{}, err
	}
	return res, nil
}

// SymbolQuote is the on-demand price snapshot for one instrument.
type SymbolQuote struct {
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	SwapLong  float64 `json:"swapLong"`
	SwapShort float64 `json:"swapShort"`
}

// Symbol fetches the current bid/ask for one instrument.
func (c *Client) Symbol(ctx context.Context, symbol string) (SymbolQuote, error) {
	data, err := c.Execute(ctx, "getSymbol", map[string]any{"symbol": symbol})
	if err != nil {
		return SymbolQuote{}, err
	}
	var q SymbolQuote
	if err := decodeReturn("getSymbol", data, &q); err != nil {
		return SymbolQuote{}, err
	}
	return q, nil
}

// MarginLevel is the account-level risk snapshot.
type MarginLevel struct {
	Balance     float64 `json:"balance"`
	Margin      float64 `json:"margin"`
	Equity      float64 `json:"equity"`
	MarginFree  float64 `json:"margin_free"`
	MarginLevel float64 `json:"margin_level"`
}

// Margin fetches account balance, equity and margin state.
func (c *Client) Margin(ctx context.Context) (MarginLevel, error) {
	data, err := c.Execute(ctx, "getMarginLevel", nil)
	if err != nil {
		return MarginLevel{}, err
	}
	var m MarginLevel
	if err := decodeReturn("getMarginLevel", data, &m); err != nil {
		return MarginLevel{}, err
	}
	return m, nil
}

// TradeRecord is one broker-side trade as returned by getTrades.
type TradeRecord struct {
	Symbol     string  `json:"symbol"`
	Cmd        int     `json:"cmd"`
	Volume     float64 `json:"volume"`
	OpenPrice  float64 `json:"open_price"`
	OpenTime   int64   `json:"open_time"` // unix milliseconds
	Order      int     `json:"order"`
	StopLoss   float64 `json:"sl"`
	TakeProfit float64 `json:"tp"`
	Profit     float64 `json:"profit"`
}

// Trades fetches the account's trades; openedOnly restricts to open
// positions.
func (c *Client) Trades(ctx context.Context, openedOnly bool) ([]TradeRecord, error) {
	data, err := c.Execute(ctx, "getTrades", map[string]any{"openedOnly": openedOnly})
	if err != nil {
		return nil, err
	}
	var trades []TradeRecord
	if err := decodeReturn("getTrades", data, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

// TradeTransaction is one order intent: open, close or modify. Order is
// required for close and modify.
type TradeTransaction struct {
	Symbol     string
	Side       TradeSide
	Action     TradeAction
	Volume     float64
	Price      float64
	StopLoss   float64
	TakeProfit float64
	Order      int
}

// SendTradeTransaction issues the order intent and returns the broker's
// order number. A rejected transaction surfaces as a *BrokerError.
func (c *Client) SendTradeTransaction(ctx context.Context, tx TradeTransaction) (int, error) {
	info := map[string]any{
		"symbol":        tx.Symbol,
		"cmd":           int(tx.Side),
		"type":          int(tx.Action),
		"volume":        tx.Volume,
		"price":         tx.Price,
		"sl":            tx.StopLoss,
		"tp":            tx.TakeProfit,
		"order":         tx.Order,
		"offset":        0,
		"expiration":    nil,
		"customComment": nil,
	}
	data, err := c.Execute(ctx, "tradeTransaction", map[string]any{"tradeTransInfo": info})
	if err != nil {
		return 0, err
	}
	var res struct {
		Order int `json:"order"`
	}
	if err := decodeReturn("tradeTransaction", data, &res); err != nil {
		return 0, err
	}
	return res.Order, nil
}
