// Package journal persists every order sent to the broker and periodic
// account snapshots, so a session can be reconstructed after the fact.
package journal

import "time"

// OrderRecord is one trade transaction as it was handed to the broker.
type OrderRecord struct {
	ID       string
	Pair     string
	Action   string // open, close, modify
	Side     string // buy, sell
	Volume   float64
	Price    float64
	StopLoss float64
	Target   float64
	Order    int
	Time     time.Time
}

// EquitySnapshot captures the account state at the end of a cycle.
type EquitySnapshot struct {
	Time        time.Time
	Balance     float64
	Equity      float64
	Margin      float64
	MarginFree  float64
	MarginLevel float64
}

type Journal interface {
	RecordOrder(OrderRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Discard is a Journal that keeps nothing.
type Discard struct{}

func (Discard) RecordOrder(OrderRecord) error     { return nil }
func (Discard) RecordEquity(EquitySnapshot) error { return nil }
func (Discard) Close() error                      { return nil }
