package app

import (
	"sync"
	"time"

	"github.com/avolkov/streamcast/internal/core"
	"github.com/avolkov/streamcast/internal/domain"
)

// ChatLimiter is a per-connection cooldown gate for chat messages. A send
// is allowed only when at least cooldown has elapsed since that
// connection's last accepted send. The token is per connection, not per
// room.
type ChatLimiter struct {
	mu       sync.Mutex
	clock    core.Clock
	cooldown time.Duration
	last     map[domain.ConnID]time.Time
}

func NewChatLimiter(clock core.Clock, cooldown time.Duration) *ChatLimiter {
	if clock == nil {
		clock = core.RealClock{}
	}
	return &ChatLimiter{
		clock:    clock,
		cooldown: cooldown,
		last:     map[domain.ConnID]time.Time{},
	}
}

// Allow records the attempt time only when it is accepted, so rejected
// spam does not push the window forward.
func (l *ChatLimiter) Allow(conn domain.ConnID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if last, ok := l.last[conn]; ok && now.Sub(last) < l.cooldown {
		return false
	}
	l.last[conn] = now
	return true
}

// Forget purges the connection's token on disconnect.
func (l *ChatLimiter) Forget(conn domain.ConnID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.last, conn)
}
