package domain

import (
	"strings"
	"testing"
)

func TestSanitizeBody(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"escapes markup", "<script>alert(1)</script>", "&lt;script&gt;alert(1)&lt;/script&gt;"},
		{"whitespace only becomes empty", " \t\n ", ""},
		{"plain text untouched", "hello world", "hello world"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeBody(tt.in); got != tt.want {
				t.Fatalf("SanitizeBody(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeBody_Truncates(t *testing.T) {
	long := strings.Repeat("a", MaxMessageLen+50)
	got := SanitizeBody(long)
	if len([]rune(got)) != MaxMessageLen {
		t.Fatalf("expected %d runes, got %d", MaxMessageLen, len([]rune(got)))
	}
}

func TestNewPeer_Validation(t *testing.T) {
	if _, err := NewPeer("c1", ""); err != ErrNameEmpty {
		t.Fatalf("expected ErrNameEmpty, got %v", err)
	}
	if _, err := NewPeer("c1", strings.Repeat("x", MaxNameLen+1)); err != ErrNameTooLong {
		t.Fatalf("expected ErrNameTooLong, got %v", err)
	}
	p, err := NewPeer("c1", "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Conn != "c1" || p.Name != "alice" || p.JoinedAt.IsZero() {
		t.Fatalf("unexpected peer: %+v", p)
	}
}
