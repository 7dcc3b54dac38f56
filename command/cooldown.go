package command

import (
	"sync"
	"time"
)

// Gate enforces a per-channel cooldown between handled commands. Channels
// are independent; a command in one never delays another.
type Gate struct {
	mu    sync.Mutex
	d     time.Duration
	until map[string]time.Time

	now func() time.Time // test seam
}

// NewGate returns a gate with the given cooldown window. A non-positive
// window disables the gate.
func NewGate(d time.Duration) *Gate {
	return &Gate{d: d, until: make(map[string]time.Time), now: time.Now}
}

// Active reports whether the channel is still cooling down.
func (g *Gate) Active(channel string) bool {
	if g.d <= 0 {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.now().Before(g.until[channel])
}

// Arm starts the channel's cooldown window.
func (g *Gate) Arm(channel string) {
	if g.d <= 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.until[channel] = g.now().Add(g.d)
}
