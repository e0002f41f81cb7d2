package domain

import (
	"errors"
	"time"
)

const MaxNameLen = 36

var (
	ErrNameTooLong = errors.New("display name too long")
	ErrNameEmpty   = errors.New("display name empty")
)

// Peer is one room occupant: the streamer or one viewer. The transport owns
// the underlying connection; rooms only hold this meta.
type Peer struct {
	Conn     ConnID    `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

// NewPeer validates the display name and stamps the join time. Name limits
// are enforced here and nowhere else.
func NewPeer(conn ConnID, name string) (Peer, error) {
	if len(name) == 0 {
		return Peer{}, ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return Peer{}, ErrNameTooLong
	}
	return Peer{Conn: conn, Name: name, JoinedAt: time.Now()}, nil
}
