package fdio

import "os"

// Permissions describes how a descriptor may be used.
type Permissions int

const (
	// Read allows reading from a descriptor.
	Read Permissions = 1 << iota
	// Write allows writing to a descriptor.
	Write

	// ReadWrite allows both reading and writing.
	ReadWrite = Read | Write
)

// Readable returns true if the permissions allow reading.
func (p Permissions) Readable() bool {
	return p&Read != 0
}

// Writable returns true if the permissions allow writing.
func (p Permissions) Writable() bool {
	return p&Write != 0
}

// Flag returns the open(2) flags used to open a path with the permissions.
// Write opens truncate, read-write opens don't.
func (p Permissions) Flag() int {
	switch p {
	case Read:
		return os.O_RDONLY
	case Write:
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	default:
		return os.O_RDWR | os.O_CREATE
	}
}

func (p Permissions) String() string {
	switch p {
	case Read:
		return "read"
	case Write:
		return "write"
	case ReadWrite:
		return "readwrite"
	default:
		return "none"
	}
}

// PermissionsForFlag returns the permissions implied by open(2) flags.
func PermissionsForFlag(flag int) Permissions {
	switch flag & (os.O_RDONLY | os.O_WRONLY | os.O_RDWR) {
	case os.O_WRONLY:
		return Write
	case os.O_RDWR:
		return ReadWrite
	default:
		return Read
	}
}
