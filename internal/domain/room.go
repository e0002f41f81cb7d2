// Package domain contains plain entities without logic, just meta-data.
package domain

type (
	// RoomID is the caller-supplied, case-sensitive room identifier.
	RoomID string
	// ConnID is the transport-assigned, opaque connection identifier.
	ConnID string
)

// RoomStats are monotonic per-room counters. Peak is the high-water mark of
// concurrent viewers, Total counts every admission ever made.
type RoomStats struct {
	TotalViewers int   `json:"total_viewers"`
	PeakViewers  int   `json:"peak_viewers"`
	Messages     int64 `json:"messages"`
}
