package fdio

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// File is the set of operations a handle's underlying resource supports. It's
// satisfied by *os.File and afero.File.
type File interface {
	io.Reader
	io.Writer
	io.Closer
	Name() string
}

// resource is an open file shared between duplicated handles.
type resource struct {
	file    File
	refs    int32
	noClose bool
}

func (r *resource) release() error {
	if atomic.AddInt32(&r.refs, -1) != 0 || r.noClose {
		return nil
	}
	return r.file.Close()
}

// Handle is a reference to an open file, pipe or socket. Handles created by
// Dup share the underlying resource which is closed when the last handle
// referencing it is closed.
type Handle struct {
	res    *resource
	closed int32

	mu    sync.Mutex
	async *AsyncHandle
}

// NewHandle takes ownership of f.
func NewHandle(f File) *Handle {
	return &Handle{res: &resource{file: f, refs: 1}}
}

// Borrow wraps f in a handle that never closes it, for files owned by someone
// else like os.Stdin.
func Borrow(f File) *Handle {
	return &Handle{res: &resource{file: f, refs: 1, noClose: true}}
}

// Name returns the name of the underlying file.
func (h *Handle) Name() string {
	return h.res.file.Name()
}

// File returns the underlying resource.
func (h *Handle) File() File {
	return h.res.file
}

// OSFile returns the underlying *os.File if the resource is backed by the OS.
func (h *Handle) OSFile() (*os.File, bool) {
	f, ok := h.res.file.(*os.File)
	return f, ok
}

// Read reads synchronously from the underlying resource.
func (h *Handle) Read(p []byte) (int, error) {
	if h.isClosed() {
		return 0, os.ErrClosed
	}
	return h.res.file.Read(p)
}

// Write writes synchronously to the underlying resource.
func (h *Handle) Write(p []byte) (int, error) {
	if h.isClosed() {
		return 0, os.ErrClosed
	}
	return h.res.file.Write(p)
}

// Dup returns a new handle sharing the same resource. The new handle has its
// own async registration.
func (h *Handle) Dup() *Handle {
	atomic.AddInt32(&h.res.refs, 1)
	return &Handle{res: h.res}
}

// Close releases the handle. The resource is closed once every duplicate is
// closed. Closing a handle twice is a no-op.
func (h *Handle) Close() error {
	if !atomic.CompareAndSwapInt32(&h.closed, 0, 1) {
		return nil
	}

	h.mu.Lock()
	h.async = nil
	h.mu.Unlock()

	return h.res.release()
}

func (h *Handle) isClosed() bool {
	return atomic.LoadInt32(&h.closed) == 1
}

// Refs returns the number of open handles sharing the resource.
func (h *Handle) Refs() int {
	return int(atomic.LoadInt32(&h.res.refs))
}
