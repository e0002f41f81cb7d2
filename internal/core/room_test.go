package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/avolkov/streamcast/internal/domain"
)

func connID(i int) domain.ConnID {
	return domain.ConnID(fmt.Sprintf("conn-%d", i))
}

func TestRoom_AtMostOneStreamer(t *testing.T) {
	r := NewRoom("r1", 20, 100)

	if err := r.ClaimStreamer("a", "alice"); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	err := r.ClaimStreamer("b", "bob")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict for second claim, got %v", err)
	}
	if !strings.Contains(Reason(err), "stream already active") {
		t.Fatalf("expected reason to name the conflict, got %q", Reason(err))
	}
	if !strings.Contains(Reason(err), "alice") {
		t.Fatalf("expected reason to include current streamer name, got %q", Reason(err))
	}

	if r.ReleaseStreamer("b") {
		t.Fatalf("release by non-holder must not change state")
	}
	if !r.ReleaseStreamer("a") {
		t.Fatalf("release by holder must report a change")
	}
	if err := r.ClaimStreamer("b", "bob"); err != nil {
		t.Fatalf("claim after release: %v", err)
	}
}

func TestRoom_ViewerCap(t *testing.T) {
	r := NewRoom("r1", 2, 100)
	if err := r.ClaimStreamer("s", "sam"); err != nil {
		t.Fatalf("claim: %v", err)
	}

	accepted, rejected := 0, 0
	for i := 0; i < 3; i++ {
		_, err := r.AdmitViewer(connID(i), fmt.Sprintf("viewer-%d", i))
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, ErrConflict) && Reason(err) == "room full":
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if accepted != 2 || rejected != 1 {
		t.Fatalf("expected 2 accepted / 1 rejected, got %d/%d", accepted, rejected)
	}
}

func TestRoom_AdmitViewerRejectsStreamer(t *testing.T) {
	r := NewRoom("r1", 20, 100)
	if err := r.ClaimStreamer("s", "sam"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	_, err := r.AdmitViewer("s", "sam")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("streamer id must never enter the viewer set, got %v", err)
	}
	if r.IsViewer("s") {
		t.Fatalf("streamer must not hold a viewer slot")
	}
	if s, ok := r.Streamer(); !ok || s.Conn != "s" {
		t.Fatalf("streamer slot must be unchanged, got %+v ok=%v", s, ok)
	}
}

func TestRoom_AdmitWithoutStreamer(t *testing.T) {
	r := NewRoom("r1", 20, 100)
	_, err := r.AdmitViewer("v", "val")
	if !errors.Is(err, ErrConflict) || Reason(err) != "no active stream" {
		t.Fatalf("expected 'no active stream' conflict, got %v", err)
	}
}

func TestRoom_RoleDisjointness(t *testing.T) {
	r := NewRoom("r1", 20, 100)
	if err := r.ClaimStreamer("s", "sam"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := r.AdmitViewer("v", "val"); err != nil {
		t.Fatalf("admit: %v", err)
	}

	if !r.ReleaseStreamer("s") {
		t.Fatalf("release: no change")
	}
	if err := r.ClaimStreamer("v", "val"); err != nil {
		t.Fatalf("viewer claiming vacated slot: %v", err)
	}

	if r.IsViewer("v") {
		t.Fatalf("connection must be evicted from viewers on claim")
	}
	s, ok := r.Streamer()
	if !ok || s.Conn != "v" {
		t.Fatalf("expected v to hold the streamer slot, got %+v ok=%v", s, ok)
	}
	if r.ViewerCount() != 0 {
		t.Fatalf("expected empty viewer set, got %d", r.ViewerCount())
	}
}

func TestRoom_Stats(t *testing.T) {
	r := NewRoom("r1", 20, 100)
	if err := r.ClaimStreamer("s", "sam"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := r.AdmitViewer(connID(i), "v"); err != nil {
			t.Fatalf("admit %d: %v", i, err)
		}
	}
	r.RemoveViewer(connID(0))
	if _, err := r.AdmitViewer(connID(3), "v"); err != nil {
		t.Fatalf("admit: %v", err)
	}

	stats := r.Stats()
	if stats.TotalViewers != 4 {
		t.Fatalf("expected 4 total admissions, got %d", stats.TotalViewers)
	}
	if stats.PeakViewers != 3 {
		t.Fatalf("expected peak 3, got %d", stats.PeakViewers)
	}
}

func TestRoom_Empty(t *testing.T) {
	r := NewRoom("r1", 20, 100)
	if !r.Empty() {
		t.Fatalf("new room must be empty")
	}
	if err := r.ClaimStreamer("s", "sam"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := r.AdmitViewer("v", "val"); err != nil {
		t.Fatalf("admit: %v", err)
	}
	if r.Empty() {
		t.Fatalf("occupied room must not be empty")
	}

	r.ReleaseStreamer("s")
	if r.Empty() {
		t.Fatalf("room with a viewer must not be empty")
	}
	r.RemoveViewer("v")
	if !r.Empty() {
		t.Fatalf("expected empty after last viewer left")
	}
}

func TestRoom_RemoveViewerAbsent(t *testing.T) {
	r := NewRoom("r1", 20, 100)
	if count, removed := r.RemoveViewer("ghost"); removed || count != 0 {
		t.Fatalf("removing an unknown viewer must be a no-op, got count=%d removed=%v", count, removed)
	}
}
