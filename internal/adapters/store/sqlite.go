// Package store persists chat messages and stream records. Every write is
// fire-and-forget from the coordinator's point of view: live room state is
// already updated and broadcast before these run, and a failing store is
// logged and ignored.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/avolkov/streamcast/internal/core"
	"github.com/avolkov/streamcast/internal/domain"
)

type Store struct {
	db *sql.DB
}

var _ core.Recorder = (*Store)(nil)

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	schema := `
		CREATE TABLE IF NOT EXISTS messages (
			id         TEXT PRIMARY KEY,
			room       TEXT NOT NULL,
			sender     TEXT NOT NULL,
			body       TEXT NOT NULL,
			system     INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS streams (
			room       TEXT NOT NULL,
			streamer   TEXT NOT NULL,
			event      TEXT NOT NULL,
			at         TIMESTAMP NOT NULL
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) SaveMessage(room domain.RoomID, msg domain.Message) error {
	query := "INSERT INTO messages (id, room, sender, body, system, created_at) VALUES (?, ?, ?, ?, ?, ?)"
	if _, err := s.db.Exec(query, msg.ID, string(room), msg.Sender, msg.Body, msg.System, msg.Timestamp); err != nil {
		return fmt.Errorf("failed to insert message for room %q: %w", room, err)
	}
	return nil
}

func (s *Store) SaveStreamStart(room domain.RoomID, streamer string, at time.Time) error {
	return s.saveStreamEvent(room, streamer, "start", at)
}

func (s *Store) SaveStreamEnd(room domain.RoomID, streamer string, at time.Time) error {
	return s.saveStreamEvent(room, streamer, "end", at)
}

func (s *Store) saveStreamEvent(room domain.RoomID, streamer, event string, at time.Time) error {
	query := "INSERT INTO streams (room, streamer, event, at) VALUES (?, ?, ?, ?)"
	if _, err := s.db.Exec(query, string(room), streamer, event, at); err != nil {
		return fmt.Errorf("failed to insert stream %s for room %q: %w", event, room, err)
	}
	return nil
}
