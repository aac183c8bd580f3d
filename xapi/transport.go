package xapi

import (
	"bytes"
	"encoding/json"
	"net"
	"time"
)

const (
	// DefaultAddress is the production command endpoint.
	DefaultAddress = "xapi.xtb.com:5124"
	// DefaultStreamAddress is the production push-feed endpoint.
	DefaultStreamAddress = "xapi.xtb.com:5125"

	// sendDelay paces every outbound write to respect venue throttling.
	sendDelay = 500 * time.Millisecond

	readChunkSize = 4096
)

// transport frames JSON documents over a stream socket. The command client
// and the streaming client each own one; they share framing, not lifecycle.
//
// The wire protocol has no length prefix: message boundaries are implicit in
// JSON document completeness, so reads are accumulated in a buffer and one
// document is peeled off the front at a time.
type transport struct {
	conn      net.Conn
	buf       []byte
	sendDelay time.Duration
}

func newTransport(conn net.Conn) *transport {
	return &transport{conn: conn, sendDelay: sendDelay}
}

// writeDocument marshals v and writes it fully, looping on partial sends.
// Every send is followed by the pacing delay.
func (t *transport) writeDocument(v any) error {
	msg, err := json.Marshal(v)
	if err != nil {
		return err
	}
	for sent := 0; sent < len(msg); {
		n, err := t.conn.Write(msg[sent:])
		if err != nil {
			return &ConnError{Op: "write", Err: err}
		}
		sent += n
		time.Sleep(t.sendDelay)
	}
	return nil
}

// readDocument blocks until one complete JSON document has been decoded from
// the byte stream. A document split across reads is assembled; when a read
// carries more than one document the surplus stays buffered for the next
// call. Incomplete JSON is never an error, only a reason to read more.
func (t *transport) readDocument() (json.RawMessage, error) {
	chunk := make([]byte, readChunkSize)
	for {
		if doc, ok := t.next(); ok {
			return doc, nil
		}
		n, err := t.conn.Read(chunk)
		if n > 0 {
			t.buf = append(t.buf, chunk[:n]...)
			continue
		}
		if err != nil {
			return nil, &ConnError{Op: "read", Err: err}
		}
	}
}

// next attempts to decode one document from the front of the buffer.
func (t *transport) next() (json.RawMessage, bool) {
	trimmed := bytes.TrimLeft(t.buf, " \t\r\n")
	if len(trimmed) == 0 {
		t.buf = t.buf[:0]
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	var doc json.RawMessage
	if err := dec.Decode(&doc); err != nil {
		// Truncated or not yet valid; the stream will complete it.
		return nil, false
	}
	rest := bytes.TrimLeft(trimmed[dec.InputOffset():], " \t\r\n")
	// doc and rest both alias t.buf; copy before the buffer is reused.
	out := append(json.RawMessage(nil), doc...)
	t.buf = append([]byte(nil), rest...)
	return out, true
}

// buffered reports how many undecoded bytes remain. Test hook.
func (t *transport) buffered() int { return len(t.buf) }

func (t *transport) close() error {
	if t.conn == nil {
		return nil
	}
	return t.conn.Close()
}
