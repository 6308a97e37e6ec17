package vos

import (
	"context"
	"io"

	"github.com/josephlewis42/vsh/core/fdio"
)

// FdEnv holds the descriptor table.
type FdEnv interface {
	// FileDesc returns the binding for fd.
	FileDesc(fd int) (fdio.Entry, bool)

	// SetFileDesc binds h to fd. The environment takes ownership of h and
	// closes whatever was bound before.
	SetFileDesc(fd int, h *fdio.Handle, perms fdio.Permissions)

	// CloseFileDesc unbinds fd, closing its handle.
	CloseFileDesc(fd int) error
}

// OpenerEnv creates new handles.
type OpenerEnv interface {
	// Open opens path, relative to the working directory, with open(2) flags.
	Open(path string, flag int) (*fdio.Handle, error)

	// Pipe creates a connected pair of handles.
	Pipe() (r, w *fdio.Handle, err error)

	// Heredoc returns a readable handle yielding body.
	Heredoc(ctx context.Context, body []byte) (*fdio.Handle, error)
}

// RedirectEnv is everything needed to evaluate a redirection.
type RedirectEnv interface {
	FdEnv
	OpenerEnv
}

// IOEnv gives streams over bound descriptors.
type IOEnv interface {
	// Reader returns a reader for fd whose reads end when ctx is done. Reads
	// fail if fd is unbound or not readable.
	Reader(ctx context.Context, fd int) io.Reader

	// Writer returns a writer for fd whose writes end when ctx is done.
	// Writes fail if fd is unbound or not writable.
	Writer(ctx context.Context, fd int) io.Writer
}

// Stdin returns a reader for fd 0.
func Stdin(ctx context.Context, env IOEnv) io.Reader {
	return env.Reader(ctx, fdio.Stdin)
}

// Stdout returns a writer for fd 1.
func Stdout(ctx context.Context, env IOEnv) io.Writer {
	return env.Writer(ctx, fdio.Stdout)
}

// Stderr returns a writer for fd 2.
func Stderr(ctx context.Context, env IOEnv) io.Writer {
	return env.Writer(ctx, fdio.Stderr)
}
