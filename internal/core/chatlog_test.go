package core

import (
	"fmt"
	"testing"

	"github.com/avolkov/streamcast/internal/domain"
)

func TestChatLog_BoundAndOrder(t *testing.T) {
	l := NewChatLog(100)
	for i := 0; i < 150; i++ {
		l.Push(domain.NewMessage("c1", "alice", fmt.Sprintf("msg-%d", i)))
	}

	if l.Len() != 100 {
		t.Fatalf("expected 100 entries after eviction, got %d", l.Len())
	}

	all := l.Recent(0)
	if got := all[0].Body; got != "msg-50" {
		t.Fatalf("expected oldest surviving entry msg-50, got %s", got)
	}
	if got := all[len(all)-1].Body; got != "msg-149" {
		t.Fatalf("expected newest entry msg-149, got %s", got)
	}

	recent := l.Recent(50)
	if len(recent) != 50 {
		t.Fatalf("expected 50 entries, got %d", len(recent))
	}
	for i, msg := range recent {
		want := fmt.Sprintf("msg-%d", 100+i)
		if msg.Body != want {
			t.Fatalf("entry %d: expected %s (oldest-first), got %s", i, want, msg.Body)
		}
	}
}

func TestChatLog_RecentIsReReadable(t *testing.T) {
	l := NewChatLog(10)
	l.Push(domain.NewMessage("c1", "alice", "hello"))

	first := l.Recent(5)
	second := l.Recent(5)
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected both reads to return 1 entry, got %d and %d", len(first), len(second))
	}

	first[0].Body = "mutated"
	if l.Recent(5)[0].Body != "hello" {
		t.Fatalf("Recent must return a copy, log was mutated")
	}
}

func TestChatLog_Clear(t *testing.T) {
	l := NewChatLog(10)
	l.Push(domain.NewMessage("c1", "alice", "hello"))
	l.Clear()
	if l.Len() != 0 {
		t.Fatalf("expected empty log after clear, got %d", l.Len())
	}
}
