package vos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"sync/atomic"

	"github.com/josephlewis42/vsh/core/fdio"
)

// Process is the view an in-memory program has of itself.
type Process struct {
	// The process ID of the process.
	PID int
	// Args holds command line arguments, including the command as Args[0].
	Args []string
	// Env holds the exported variables as "key=value".
	Env []string
	// Dir is the working directory.
	Dir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// ProcessFunc is a "process" that can be run.
type ProcessFunc func(ctx context.Context, proc *Process) int

// ProcessResolver looks up a process by path, it returns nil if no process
// was found.
type ProcessResolver func(path string) ProcessFunc

// VirtualExecutor runs Go functions in place of external programs.
type VirtualExecutor struct {
	resolver ProcessResolver
	// lastPID contains the last PID handed out.
	lastPID int32
}

var _ Executor = (*VirtualExecutor)(nil)

// NewVirtualExecutor creates an executor resolving programs with resolver.
func NewVirtualExecutor(resolver ProcessResolver) *VirtualExecutor {
	return &VirtualExecutor{resolver: resolver}
}

// NextPID gets a monotonically increasing PID.
func (v *VirtualExecutor) NextPID() int {
	return int(atomic.AddInt32(&v.lastPID, 1))
}

// Exec implements Executor.Exec.
func (v *VirtualExecutor) Exec(ctx context.Context, req *ExecRequest) (int, error) {
	proc := v.resolver(req.Path)
	if proc == nil {
		return ExitCmdNotFound, fmt.Errorf("%s: %w", req.Path, ErrNotFound)
	}

	return proc(ctx, &Process{
		PID:    v.NextPID(),
		Args:   req.Args,
		Env:    req.Env,
		Dir:    req.Dir,
		Stdin:  orEmpty(req.Stdin),
		Stdout: orDiscard(req.Stdout),
		Stderr: orDiscard(req.Stderr),
	}), nil
}

func orEmpty(r io.Reader) io.Reader {
	if r == nil {
		return &devNull{}
	}
	return r
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

// OSExecutor runs real programs on the host. Process creation is offloaded
// to the pool.
type OSExecutor struct {
	pool *fdio.Pool
}

var _ Executor = (*OSExecutor)(nil)

// NewOSExecutor creates an executor starting processes on pool.
func NewOSExecutor(pool *fdio.Pool) *OSExecutor {
	return &OSExecutor{pool: pool}
}

// Exec implements Executor.Exec.
func (o *OSExecutor) Exec(ctx context.Context, req *ExecRequest) (int, error) {
	hostPath := req.Path
	if !filepath.IsAbs(hostPath) {
		hostPath = filepath.Join(req.Dir, hostPath)
	}

	cmd := exec.CommandContext(ctx, hostPath)
	cmd.Args = req.Args
	cmd.Env = req.Env
	cmd.Dir = req.Dir
	cmd.Stdin = req.Stdin
	cmd.Stdout = req.Stdout
	cmd.Stderr = req.Stderr

	if err := o.pool.Do(ctx, cmd.Start); err != nil {
		return ExitCmdNotExecutable, err
	}

	err := cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ExitError, ctxErr
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return ExitSuccess, nil
	case errors.As(err, &exitErr) && exitErr.ExitCode() >= 0:
		return exitErr.ExitCode(), nil
	default:
		return ExitError, err
	}
}
