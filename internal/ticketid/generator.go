// Package ticketid mints ticket numbers.
package ticketid

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

const Prefix = "TKT-"

// Length is the fixed length of every generated ticket number.
const Length = len(Prefix) + 26

// Generator produces unique, time-ordered ticket numbers such as TKT-01HZX3K8Q5V7W2N4M6P8R0T2Y4.
// It is safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy io.Reader
}

type Option func(*Generator)

func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

func New(opts ...Option) *Generator {
	g := &Generator{now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	// monotonic entropy increments within the same millisecond instead of drawing fresh randomness
	g.entropy = ulid.Monotonic(rand.Reader, 0)
	return g
}

func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	for {
		id, err := ulid.New(ulid.Timestamp(g.now()), g.entropy)
		if err == nil {
			return Prefix + id.String()
		}
		// the monotonic counter overflowed for this millisecond
		time.Sleep(time.Millisecond)
	}
}
