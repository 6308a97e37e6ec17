package spawn

import (
	"context"
	"sync"

	"github.com/josephlewis42/vsh/core/vos"
	"mvdan.cc/sh/v3/syntax"
)

// State is where a unit is in its lifecycle. Completed and Failed are final.
type State int

const (
	Created State = iota
	Running
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Unit is a statement scheduled to run on its own goroutine.
//
// The environment belongs to the unit while it's running; callers must not
// use it until Wait returns.
type Unit struct {
	ctx    context.Context
	cancel context.CancelFunc
	run    func(ctx context.Context) (int, error)
	done   chan struct{}

	mu     sync.Mutex
	state  State
	status int
	err    error
}

// Spawn creates a unit that runs stmt against env once started. The unit is
// cancelled when ctx is.
func Spawn(ctx context.Context, env vos.Env, stmt *syntax.Stmt) *Unit {
	return newUnit(ctx, func(ctx context.Context) (int, error) {
		return execStmt(ctx, env, stmt)
	})
}

func newUnit(ctx context.Context, run func(ctx context.Context) (int, error)) *Unit {
	ctx, cancel := context.WithCancel(ctx)
	return &Unit{
		ctx:    ctx,
		cancel: cancel,
		run:    run,
		done:   make(chan struct{}),
	}
}

// Start begins running the unit. Starting a unit that isn't in the Created
// state does nothing.
func (u *Unit) Start() {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != Created {
		return
	}
	u.state = Running
	go u.exec()
}

func (u *Unit) exec() {
	status, err := u.run(u.ctx)
	u.cancel()

	u.mu.Lock()
	defer u.mu.Unlock()
	u.finish(status, err)
}

// finish must be called with mu held.
func (u *Unit) finish(status int, err error) {
	u.status = status
	u.err = err
	if err != nil {
		u.state = Failed
	} else {
		u.state = Completed
	}
	close(u.done)
}

// Cancel stops the unit. A running unit observes the cancellation through
// its context and unwinds; a unit that was never started fails immediately.
func (u *Unit) Cancel() {
	u.cancel()

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state == Created {
		u.finish(vos.ExitError, context.Canceled)
	}
}

// Wait starts the unit if needed and blocks until it reaches a final state,
// returning its exit status and the error it failed with.
func (u *Unit) Wait() (int, error) {
	u.Start()
	<-u.done

	u.mu.Lock()
	defer u.mu.Unlock()
	return u.status, u.err
}

// Done is closed once the unit reaches a final state.
func (u *Unit) Done() <-chan struct{} {
	return u.done
}

// State returns the current state.
func (u *Unit) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}
