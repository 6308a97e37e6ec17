package vos

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/josephlewis42/vsh/core/fdio"
)

// ReaderFile adapts r into a descriptor file. A nil reader behaves like
// /dev/null.
func ReaderFile(name string, r io.Reader) fdio.File {
	if f, ok := r.(*os.File); ok {
		return f
	}
	if r == nil {
		return &devNull{name: name}
	}
	return &streamFile{name: name, r: r}
}

// WriterFile adapts w into a descriptor file. Writes are serialized so the
// same writer can back several descriptors. A nil writer discards.
func WriterFile(name string, w io.Writer) fdio.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	if w == nil {
		return &devNull{name: name}
	}
	return &streamFile{name: name, w: w}
}

type streamFile struct {
	name string
	r    io.Reader

	mu sync.Mutex
	w  io.Writer
}

var _ fdio.File = (*streamFile)(nil)

func (s *streamFile) Read(p []byte) (int, error) {
	if s.r == nil {
		return 0, fmt.Errorf("read %s: %w", s.name, os.ErrInvalid)
	}
	return s.r.Read(p)
}

func (s *streamFile) Write(p []byte) (int, error) {
	if s.w == nil {
		return 0, fmt.Errorf("write %s: %w", s.name, os.ErrInvalid)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (*streamFile) Close() error {
	return nil
}

func (s *streamFile) Name() string {
	return s.name
}

// devNull reads as empty and discards writes.
type devNull struct {
	name string
}

var _ fdio.File = (*devNull)(nil)

func (*devNull) Read([]byte) (int, error) {
	return 0, io.EOF
}

func (*devNull) Write(b []byte) (int, error) {
	return len(b), nil
}

func (*devNull) Close() error {
	return nil
}

func (d *devNull) Name() string {
	return d.name
}

// badFd fails every operation, it stands in for descriptors that can't
// serve a stream.
type badFd struct {
	err error
}

func (b *badFd) Read([]byte) (int, error) {
	return 0, b.err
}

func (b *badFd) Write([]byte) (int, error) {
	return 0, b.err
}

// ErrBadFd is returned for I/O on a descriptor that isn't bound or doesn't
// have the needed permissions.
var ErrBadFd = errors.New("bad file descriptor")

func badFdError(fd int) error {
	return fmt.Errorf("%d: %w", fd, ErrBadFd)
}
