// Package id mints the identifiers stamped on journal rows. A ULID sorts by
// mint time, so the journal's time index stays in insertion order.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type minter struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

var def = newMinter()

func newMinter() *minter {
	// Monotonic entropy keeps IDs minted within one millisecond ordered.
	return &minter{
		entropy: ulid.Monotonic(rand.New(rand.NewSource(seed())), 0),
	}
}

func seed() int64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return time.Now().UnixNano()
	}
	n := int64(binary.LittleEndian.Uint64(buf[:]))
	if n == 0 {
		return time.Now().UnixNano()
	}
	return n
}

func (m *minter) next() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ulid.MustNew(ulid.Now(), m.entropy).String()
}

// New returns a fresh ULID string.
func New() string {
	return def.next()
}
