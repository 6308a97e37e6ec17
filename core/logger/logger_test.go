package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(buf, slog.LevelInfo)

	log.Debug("hidden")
	log.Info("running", "stmt", "echo hi")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "msg=running")
	assert.Contains(t, lines[0], `stmt="echo hi"`)

	idx := strings.Index(lines[0], SessionKey+"=")
	require.GreaterOrEqual(t, idx, 0)
	sessionID := strings.Fields(lines[0][idx+len(SessionKey)+1:])[0]
	_, err := uuid.Parse(sessionID)
	assert.NoError(t, err)
}

func TestNewWithSession(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithSession(buf, slog.LevelDebug, "test-session")
	log.Debug("unsupported syntax")

	assert.Contains(t, buf.String(), "session_id=test-session")
	assert.Contains(t, buf.String(), "level=DEBUG")
}

func TestNew_UniqueSessions(t *testing.T) {
	a, b := &bytes.Buffer{}, &bytes.Buffer{}
	New(a, slog.LevelInfo).Info("x")
	New(b, slog.LevelInfo).Info("x")

	sessionOf := func(s string) string {
		return strings.Fields(s[strings.Index(s, SessionKey):])[0]
	}
	assert.NotEqual(t, sessionOf(a.String()), sessionOf(b.String()))
}

func TestDiscard(t *testing.T) {
	log := Discard()
	require.NotNil(t, log)
	log.Error("nothing happens")
}
