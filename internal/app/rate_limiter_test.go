package app

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestChatLimiter_Cooldown(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	l := NewChatLimiter(clk, 500*time.Millisecond)

	if !l.Allow("c1") {
		t.Fatalf("first send must be allowed")
	}
	if l.Allow("c1") {
		t.Fatalf("second send within cooldown must be rejected")
	}

	clk.Advance(500 * time.Millisecond)
	if !l.Allow("c1") {
		t.Fatalf("send after cooldown must be allowed")
	}
}

func TestChatLimiter_RejectionDoesNotPushWindow(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	l := NewChatLimiter(clk, 500*time.Millisecond)

	l.Allow("c1")
	clk.Advance(400 * time.Millisecond)
	if l.Allow("c1") {
		t.Fatalf("send at 400ms must be rejected")
	}
	clk.Advance(100 * time.Millisecond)
	if !l.Allow("c1") {
		t.Fatalf("rejected attempt must not reset the cooldown")
	}
}

func TestChatLimiter_PerConnection(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	l := NewChatLimiter(clk, 500*time.Millisecond)

	if !l.Allow("c1") || !l.Allow("c2") {
		t.Fatalf("cooldown must be per connection, not global")
	}
}

func TestChatLimiter_Forget(t *testing.T) {
	clk := &fakeClock{now: time.Unix(0, 0)}
	l := NewChatLimiter(clk, 500*time.Millisecond)

	l.Allow("c1")
	l.Forget("c1")
	if !l.Allow("c1") {
		t.Fatalf("a forgotten connection starts with a fresh token")
	}
}
