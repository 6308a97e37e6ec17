//go:build unix

package fdio

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// eventedFile returns f if the netpoller can wait on it. Descriptors the
// poller doesn't already track are left alone: their open file description
// may be shared with the caller's terminal or other processes, so their
// flags are never changed.
func eventedFile(f File) (*os.File, error) {
	osFile, ok := f.(*os.File)
	if !ok {
		return nil, errUnsupported
	}

	rc, err := osFile.SyscallConn()
	if err != nil {
		return nil, err
	}

	// Fd() would switch the file to blocking mode, so all descriptor access
	// goes through Control.
	var stat unix.Stat_t
	var statErr error
	if err := rc.Control(func(fd uintptr) {
		statErr = unix.Fstat(int(fd), &stat)
	}); err != nil {
		return nil, err
	}
	if statErr != nil {
		return nil, statErr
	}

	// epoll and kqueue report regular files as always ready.
	if stat.Mode&unix.S_IFMT == unix.S_IFREG {
		return nil, errUnsupported
	}

	// Pipes from os.Pipe and sockets are already registered.
	if osFile.SetDeadline(time.Time{}) != nil {
		return nil, errUnsupported
	}
	return osFile, nil
}
