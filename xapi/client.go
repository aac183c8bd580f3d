package xapi

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/jpillora/backoff"
)

const (
	// maxConnRetries bounds how many dial attempts Connect makes before
	// giving up on the session.
	maxConnRetries = 4
	connRetryDelay = time.Second

	responseTimeout = 30 * time.Second
)

type request struct {
	Command   string `json:"command"`
	Arguments any    `json:"arguments,omitempty"`
}

type envelope struct {
	Status          bool            `json:"status"`
	ReturnData      json.RawMessage `json:"returnData"`
	ErrorCode       string          `json:"errorCode"`
	ErrorDescr      string          `json:"errorDescr"`
	StreamSessionID string          `json:"streamSessionId"`
}

// Client is the synchronous command/response channel to the broker.
//
// Only one command may be in flight per session: Execute blocks until the
// response for its command has been read. The client is not safe for
// concurrent command issuance on the same connection.
type Client struct {
	addr       string
	tr         *transport
	timeout    time.Duration
	retryDelay time.Duration

	// dial is swapped out by tests.
	dial func(ctx context.Context) (net.Conn, error)
}

// NewClient returns a client for the given "host:port" address. The
// connection is TLS-wrapped; nothing is dialed until Connect.
func NewClient(addr string) *Client {
	if addr == "" {
		addr = DefaultAddress
	}
	c := &Client{addr: addr, timeout: responseTimeout, retryDelay: connRetryDelay}
	c.dial = func(ctx context.Context) (net.Conn, error) {
		d := tls.Dialer{}
		return d.DialContext(ctx, "tcp", c.addr)
	}
	return c
}

// Connect attempts a bounded number of dials with a fixed delay between
// attempts and returns a *ConnError once they are exhausted.
func (c *Client) Connect(ctx context.Context) error {
	b := &backoff.Backoff{Min: c.retryDelay, Max: c.retryDelay, Factor: 1}
	var lastErr error
	for attempt := 0; attempt < maxConnRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return &ConnError{Op: "connect", Err: ctx.Err()}
			case <-time.After(b.Duration()):
			}
		}
		conn, err := c.dial(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		c.tr = newTransport(conn)
		return nil
	}
	return &ConnError{
		Op:  "connect",
		Err: fmt.Errorf("%s unreachable after %d attempts: %w", c.addr, maxConnRetries, lastErr),
	}
}

// Disconnect closes the socket. Idempotent.
func (c *Client) Disconnect() {
	if c.tr != nil {
		_ = c.tr.close()
		c.tr = nil
	}
}

// Execute sends one command and blocks until its response envelope has been
// decoded. A status=false envelope is returned as a *BrokerError.
func (c *Client) Execute(ctx context.Context, command string, args any) (json.RawMessage, error) {
	env, err := c.exchange(ctx, command, args)
	if err != nil {
		return nil, err
	}
	return env.ReturnData, nil
}

func (c *Client) exchange(ctx context.Context, command string, args any) (*envelope, error) {
	if c.tr == nil {
		return nil, &ConnError{Op: "execute", Err: ErrNotConnected}
	}
	if err := c.tr.writeDocument(request{Command: command, Arguments: args}); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.tr.conn.SetReadDeadline(deadline)
	doc, err := c.tr.readDocument()
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(doc, &env); err != nil {
		return nil, &ShapeError{Command: command, Err: err}
	}
	if !env.Status {
		return nil, &BrokerError{Command: command, Code: env.ErrorCode, Descr: env.ErrorDescr}
	}
	return &env, nil
}

// decodeReturn unmarshals returnData into out, tagging failures with the
// command name.
func decodeReturn(command string, data json.RawMessage, out any) error {
	if len(data) == 0 {
		return &ShapeError{Command: command, Err: fmt.Errorf("empty returnData")}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ShapeError{Command: command, Err: err}
	}
	return nil
}
