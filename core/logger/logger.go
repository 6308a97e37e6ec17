package logger

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

const (
	// SessionKey is the attribute every record of a session carries.
	SessionKey = "session_id"
)

// New creates a text logger writing records at level or above to w. Each
// logger gets a fresh session ID so interleaved runs can be told apart.
func New(w io.Writer, level slog.Leveler) *slog.Logger {
	return NewWithSession(w, level, uuid.NewString())
}

// NewWithSession is like New but uses the given session ID.
func NewWithSession(w io.Writer, level slog.Leveler, sessionID string) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(SessionKey, sessionID)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
