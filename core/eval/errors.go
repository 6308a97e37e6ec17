package eval

import (
	"fmt"

	"github.com/josephlewis42/vsh/core/fdio"
)

// ExpansionError is returned when a word can't be expanded, such as a
// `${var:?}` on an unset variable. It stops execution.
type ExpansionError struct {
	Err error
}

func (e *ExpansionError) Error() string {
	return e.Err.Error()
}

func (e *ExpansionError) Unwrap() error {
	return e.Err
}

// Fatal reports that expansion errors stop execution.
func (*ExpansionError) Fatal() bool {
	return true
}

// RedirectionErrorKind is the reason a redirection failed.
type RedirectionErrorKind int

const (
	// Ambiguous means the target expanded to zero or several fields.
	Ambiguous RedirectionErrorKind = iota + 1
	// BadFdSrc means the source of a duplication isn't an open descriptor.
	BadFdSrc
	// BadFdPerms means the source of a duplication can't be used in the
	// direction requested.
	BadFdPerms
	// Io means the target couldn't be opened.
	Io
)

// RedirectionError is returned when a redirection can't be performed. It
// fails only the command it belongs to.
type RedirectionError struct {
	Kind RedirectionErrorKind

	// Path is the target as written or as expanded.
	Path string
	// Fields holds the expansion of an ambiguous target.
	Fields []string
	// Perms are the permissions a duplication asked for.
	Perms fdio.Permissions

	Err error
}

func (e *RedirectionError) Error() string {
	switch e.Kind {
	case Ambiguous:
		return fmt.Sprintf("%s: ambiguous redirect", e.Path)
	case BadFdSrc:
		return fmt.Sprintf("%s: bad file descriptor", e.Path)
	case BadFdPerms:
		if e.Perms.Writable() {
			return fmt.Sprintf("%s: file descriptor not open for writing", e.Path)
		}
		return fmt.Sprintf("%s: file descriptor not open for reading", e.Path)
	default:
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
}

func (e *RedirectionError) Unwrap() error {
	return e.Err
}

// Fatal reports that redirection errors only fail the current command.
func (*RedirectionError) Fatal() bool {
	return false
}
