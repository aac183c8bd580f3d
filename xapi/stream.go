package xapi

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"go.uber.org/zap"
)

// StreamHandlers receives the push feed, dispatched by message type. A nil
// handler drops its messages. Each handler gets the complete document,
// including the command field.
type StreamHandlers struct {
	Tick        func(json.RawMessage)
	Trade       func(json.RawMessage)
	Balance     func(json.RawMessage)
	TradeStatus func(json.RawMessage)
	Profit      func(json.RawMessage)
	News        func(json.RawMessage)
}

// StreamClient is the second connection per account: it authenticates with
// the stream session id issued at login and runs an isolated receive loop.
// Subscriptions are one-way sends; no response is expected.
type StreamClient struct {
	addr      string
	sessionID string
	handlers  StreamHandlers
	log       *zap.Logger

	tr         *transport
	dial       func(ctx context.Context) (net.Conn, error)
	retryDelay time.Duration

	done     chan struct{}
	started  bool
	stopOnce sync.Once
}

// NewStreamClient builds a streaming client. Start must be called after
// Connect for the receive loop to run.
func NewStreamClient(addr, sessionID string, h StreamHandlers, log *zap.Logger) *StreamClient {
	if addr == "" {
		addr = DefaultStreamAddress
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &StreamClient{
		addr:       addr,
		sessionID:  sessionID,
		handlers:   h,
		log:        log,
		done:       make(chan struct{}),
		retryDelay: connRetryDelay,
	}
	s.dial = func(ctx context.Context) (net.Conn, error) {
		d := tls.Dialer{}
		return d.DialContext(ctx, "tcp", s.addr)
	}
	return s
}

// Connect dials the streaming endpoint with the same bounded retry behavior
// as the command client.
func (s *StreamClient) Connect(ctx context.Context) error {
	b := &backoff.Backoff{Min: s.retryDelay, Max: s.retryDelay, Factor: 1}
	var lastErr error
	for attempt := 0; attempt < maxConnRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return &ConnError{Op: "connect", Err: ctx.Err()}
			case <-time.After(b.Duration()):
			}
		}
		conn, err := s.dial(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		s.tr = newTransport(conn)
		return nil
	}
	return &ConnError{
		Op:  "connect",
		Err: fmt.Errorf("%s unreachable after %d attempts: %w", s.addr, maxConnRetries, lastErr),
	}
}

// Start launches the receive loop. It returns immediately; messages are
// dispatched on the loop goroutine until Stop is called or the socket dies.
func (s *StreamClient) Start() error {
	if s.tr == nil {
		return &ConnError{Op: "start", Err: ErrNotConnected}
	}
	s.started = true
	go s.run()
	return nil
}

func (s *StreamClient) run() {
	defer close(s.done)
	for {
		doc, err := s.tr.readDocument()
		if err != nil {
			var ce *ConnError
			if errors.As(err, &ce) && errors.Is(ce.Err, net.ErrClosed) {
				return // Stop closed the socket
			}
			s.log.Warn("stream receive loop ended", zap.Error(err))
			return
		}
		s.dispatch(doc)
	}
}

func (s *StreamClient) dispatch(doc json.RawMessage) {
	var head struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(doc, &head); err != nil {
		s.log.Warn("stream message without command field", zap.Error(err))
		return
	}
	var h func(json.RawMessage)
	switch head.Command {
	case "tickPrices":
		h = s.handlers.Tick
	case "trade":
		h = s.handlers.Trade
	case "balance":
		h = s.handlers.Balance
	case "tradeStatus":
		h = s.handlers.TradeStatus
	case "profit":
		h = s.handlers.Profit
	case "news":
		h = s.handlers.News
	default:
		s.log.Debug("unhandled stream message", zap.String("command", head.Command))
		return
	}
	if h != nil {
		h(doc)
	}
}

// Stop closes the socket and joins the receive loop. No handler is invoked
// after Stop returns. Idempotent.
func (s *StreamClient) Stop() {
	s.stopOnce.Do(func() {
		if s.tr != nil {
			_ = s.tr.close()
		}
		// The receive loop only exists once Start has run.
		if s.started {
			<-s.done
		}
	})
}

// send is a fire-and-forget subscription command.
func (s *StreamClient) send(command string, extra map[string]any) error {
	if s.tr == nil {
		return &ConnError{Op: "send", Err: ErrNotConnected}
	}
	msg := map[string]any{
		"command":         command,
		"streamSessionId": s.sessionID,
	}
	for k, v := range extra {
		msg[k] = v
	}
	return s.tr.writeDocument(msg)
}

func (s *StreamClient) SubscribePrice(symbol string) error {
	return s.send("getTickPrices", map[string]any{"symbol": symbol})
}

func (s *StreamClient) SubscribePrices(symbols []string) error {
	for _, sym := range symbols {
		if err := s.SubscribePrice(sym); err != nil {
			return err
		}
	}
	return nil
}

func (s *StreamClient) SubscribeTrades() error      { return s.send("getTrades", nil) }
func (s *StreamClient) SubscribeBalance() error     { return s.send("getBalance", nil) }
func (s *StreamClient) SubscribeTradeStatus() error { return s.send("getTradeStatus", nil) }
func (s *StreamClient) SubscribeProfits() error     { return s.send("getProfits", nil) }
func (s *StreamClient) SubscribeNews() error        { return s.send("getNews", nil) }

func (s *StreamClient) UnsubscribePrice(symbol string) error {
	return s.send("stopTickPrices", map[string]any{"symbol": symbol})
}

func (s *StreamClient) UnsubscribePrices(symbols []string) error {
	for _, sym := range symbols {
		if err := s.UnsubscribePrice(sym); err != nil {
			return err
		}
	}
	return nil
}

func (s *StreamClient) UnsubscribeTrades() error      { return s.send("stopTrades", nil) }
func (s *StreamClient) UnsubscribeBalance() error     { return s.send("stopBalance", nil) }
func (s *StreamClient) UnsubscribeTradeStatus() error { return s.send("stopTradeStatus", nil) }
func (s *StreamClient) UnsubscribeProfits() error     { return s.send("stopProfits", nil) }
func (s *StreamClient) UnsubscribeNews() error        { return s.send("stopNews", nil) }
