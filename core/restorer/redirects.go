package restorer

import (
	"context"
	"fmt"

	"github.com/josephlewis42/vsh/core/fdio"
	"github.com/josephlewis42/vsh/core/vos"
)

// Action is a resolved redirection that rebinds one descriptor.
type Action interface {
	// Fd is the descriptor the action rebinds.
	Fd() int

	// Apply rebinds the descriptor.
	Apply(ctx context.Context, env vos.RedirectEnv) error
}

// RedirectRestorer records descriptor changes so they can be undone.
type RedirectRestorer interface {
	// Apply records the original binding of the action's descriptor then
	// applies it.
	Apply(ctx context.Context, env vos.RedirectEnv, action Action) error

	// Backup records the current binding of fd without changing it.
	Backup(env vos.FdEnv, fd int)

	// Clear forgets every record, keeping the changes.
	Clear()

	// Restore puts every recorded descriptor back the way it was and
	// forgets the records.
	Restore(env vos.FdEnv)
}

// Redirects is the default RedirectRestorer. The zero value is ready to
// use.
type Redirects struct {
	// originals maps descriptors to a duplicate of their binding before the
	// first change, nil means the descriptor was unbound.
	originals map[int]*fdio.Entry
}

var _ RedirectRestorer = (*Redirects)(nil)

// Apply implements RedirectRestorer.Apply.
func (r *Redirects) Apply(ctx context.Context, env vos.RedirectEnv, action Action) error {
	r.Backup(env, action.Fd())
	return action.Apply(ctx, env)
}

// Backup implements RedirectRestorer.Backup.
func (r *Redirects) Backup(env vos.FdEnv, fd int) {
	if r.originals == nil {
		r.originals = make(map[int]*fdio.Entry)
	}
	if _, ok := r.originals[fd]; ok {
		return
	}

	if entry, ok := env.FileDesc(fd); ok {
		r.originals[fd] = &fdio.Entry{Handle: entry.Handle.Dup(), Perms: entry.Perms}
	} else {
		r.originals[fd] = nil
	}
}

// Clear implements RedirectRestorer.Clear.
func (r *Redirects) Clear() {
	for _, orig := range r.originals {
		if orig != nil {
			orig.Handle.Close()
		}
	}
	r.originals = nil
}

// Restore implements RedirectRestorer.Restore.
func (r *Redirects) Restore(env vos.FdEnv) {
	for fd, orig := range r.originals {
		if orig == nil {
			env.CloseFileDesc(fd)
		} else {
			env.SetFileDesc(fd, orig.Handle, orig.Perms)
		}
	}
	r.originals = nil
}

// Len returns the number of recorded descriptors.
func (r *Redirects) Len() int {
	return len(r.originals)
}

// Allocated reports whether the restorer has allocated its records.
func (r *Redirects) Allocated() bool {
	return r.originals != nil
}

// Close unbinds a descriptor, as in `2>&-`.
type Close struct {
	FdNum int
}

var _ Action = Close{}

// Fd implements Action.Fd.
func (c Close) Fd() int { return c.FdNum }

// Apply implements Action.Apply.
func (c Close) Apply(_ context.Context, env vos.RedirectEnv) error {
	return env.CloseFileDesc(c.FdNum)
}

func (c Close) String() string {
	return fmt.Sprintf("%d>&-", c.FdNum)
}

// Open binds an already open handle to a descriptor. Applying it hands the
// handle to the environment.
type Open struct {
	FdNum  int
	Handle *fdio.Handle
	Perms  fdio.Permissions
}

var _ Action = Open{}

// Fd implements Action.Fd.
func (o Open) Fd() int { return o.FdNum }

// Apply implements Action.Apply.
func (o Open) Apply(_ context.Context, env vos.RedirectEnv) error {
	env.SetFileDesc(o.FdNum, o.Handle, o.Perms)
	return nil
}

func (o Open) String() string {
	return fmt.Sprintf("%d %s %s", o.FdNum, o.Perms, o.Handle.Name())
}

// HereDoc binds a descriptor to a readable handle yielding Body.
type HereDoc struct {
	FdNum int
	Body  []byte
}

var _ Action = HereDoc{}

// Fd implements Action.Fd.
func (h HereDoc) Fd() int { return h.FdNum }

// Apply implements Action.Apply.
func (h HereDoc) Apply(ctx context.Context, env vos.RedirectEnv) error {
	r, err := env.Heredoc(ctx, h.Body)
	if err != nil {
		return err
	}
	env.SetFileDesc(h.FdNum, r, fdio.Read)
	return nil
}

func (h HereDoc) String() string {
	return fmt.Sprintf("%d<<%q", h.FdNum, h.Body)
}
