// Package fdio owns open descriptors for the runtime: opening files, creating
// pipes, materializing heredocs and registering handles for context-aware
// I/O.
//
// Registration prefers the Go runtime's netpoller. Handles it can't wait on,
// regular files and in-memory files, transparently fall back to a bounded
// worker pool.
package fdio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/josephlewis42/vsh/core/logger"
	"github.com/spf13/afero"
)

// Manager opens and registers handles.
type Manager struct {
	fs   afero.Fs
	pool *Pool
	log  *slog.Logger
}

// NewManager creates a manager opening paths on fsys and falling back to pool
// for blocking I/O. A nil logger discards.
func NewManager(fsys afero.Fs, pool *Pool, log *slog.Logger) *Manager {
	if pool == nil {
		pool = NewPool(DefaultPoolSize)
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Manager{fs: fsys, pool: pool, log: log}
}

// Fs returns the filesystem paths are opened on.
func (m *Manager) Fs() afero.Fs {
	return m.fs
}

// Pool returns the manager's worker pool.
func (m *Manager) Pool() *Pool {
	return m.pool
}

// Open opens name with the given open(2) flags. Existing files are checked
// against the permissions the flags request.
func (m *Manager) Open(name string, flag int) (*Handle, error) {
	perms := PermissionsForFlag(flag)

	info, err := m.fs.Stat(name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if flag&os.O_CREATE == 0 {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := checkMode(name, info, perms); err != nil {
			return nil, err
		}
	}

	f, err := m.fs.OpenFile(name, flag, 0666)
	if err != nil {
		return nil, err
	}
	return NewHandle(f), nil
}

func checkMode(name string, info fs.FileInfo, perms Permissions) error {
	mode := info.Mode()
	switch {
	case perms.Writable() && mode.IsDir():
		return &fs.PathError{Op: "open", Path: name, Err: fmt.Errorf("is a directory")}
	case perms.Readable() && mode.Perm()&0444 == 0:
		return &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	case perms.Writable() && mode.Perm()&0222 == 0:
		return &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	return nil
}

// Pipe creates an OS pipe.
func (m *Manager) Pipe() (r, w *Handle, err error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, nil, err
	}
	return NewHandle(pr), NewHandle(pw), nil
}

// Heredoc returns a readable handle that yields body. The body is written in
// the background; if nobody reads it the write is abandoned once the reader
// is closed or ctx is done.
func (m *Manager) Heredoc(ctx context.Context, body []byte) (*Handle, error) {
	r, w, err := m.Pipe()
	if err != nil {
		return nil, err
	}

	go func() {
		defer w.Close()
		if len(body) == 0 {
			return
		}

		async, err := m.Register(w)
		if err != nil {
			return
		}
		if _, err := async.WriteContext(ctx, body); err != nil {
			m.log.Debug("heredoc write abandoned", "error", err)
		}
	}()

	return r, nil
}

// Register prepares h for context-aware I/O. Registering the same handle
// again returns the existing registration.
func (m *Manager) Register(h *Handle) (*AsyncHandle, error) {
	if h.isClosed() {
		return nil, os.ErrClosed
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.async != nil {
		return h.async, nil
	}

	async := &AsyncHandle{handle: h, pool: m.pool}
	evented, err := eventedFile(h.res.file)
	switch {
	case err == nil:
		async.strategy = StrategyEvented
		async.evented = evented
	case errors.Is(err, errUnsupported):
		m.log.Debug("falling back to worker pool", "name", h.Name())
		async.strategy = StrategyThreadPool
	default:
		return nil, err
	}

	h.async = async
	return async, nil
}
