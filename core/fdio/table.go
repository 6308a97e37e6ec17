package fdio

import (
	"errors"
	"sort"
)

// Standard descriptor numbers.
const (
	Stdin  = 0
	Stdout = 1
	Stderr = 2
)

// Entry is a descriptor binding.
type Entry struct {
	Handle *Handle
	Perms  Permissions
}

// Table maps descriptor numbers to the handles bound to them. The table owns
// its handles: replacing or closing an entry closes the handle.
type Table struct {
	fds map[int]Entry
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{fds: make(map[int]Entry)}
}

// Get returns the binding for fd.
func (t *Table) Get(fd int) (Entry, bool) {
	e, ok := t.fds[fd]
	return e, ok
}

// Set binds h to fd, taking ownership of h and closing any handle previously
// bound to fd.
func (t *Table) Set(fd int, h *Handle, perms Permissions) {
	if old, ok := t.fds[fd]; ok && old.Handle != h {
		old.Handle.Close()
	}
	t.fds[fd] = Entry{Handle: h, Perms: perms}
}

// Close unbinds fd and closes its handle. Closing an unbound fd is a no-op.
func (t *Table) Close(fd int) error {
	e, ok := t.fds[fd]
	if !ok {
		return nil
	}
	delete(t.fds, fd)
	return e.Handle.Close()
}

// Fds returns the bound descriptor numbers in ascending order.
func (t *Table) Fds() []int {
	out := make([]int, 0, len(t.fds))
	for fd := range t.fds {
		out = append(out, fd)
	}
	sort.Ints(out)
	return out
}

// Clone returns a table with a duplicate of every handle.
func (t *Table) Clone() *Table {
	out := &Table{fds: make(map[int]Entry, len(t.fds))}
	for fd, e := range t.fds {
		out.fds[fd] = Entry{Handle: e.Handle.Dup(), Perms: e.Perms}
	}
	return out
}

// CloseAll closes every bound handle.
func (t *Table) CloseAll() error {
	var errs []error
	for _, fd := range t.Fds() {
		if err := t.Close(fd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
