package spawn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/josephlewis42/vsh/commands"
	"github.com/josephlewis42/vsh/core/eval"
	"github.com/josephlewis42/vsh/core/fdio"
	"github.com/josephlewis42/vsh/core/restorer"
	"github.com/josephlewis42/vsh/core/vos"
	"mvdan.cc/sh/v3/syntax"
)

// execSimple runs a simple command. Failures that don't stop the script are
// reported before the command's redirects are undone, so `cmd 2>log` sends
// "command not found" to log.
func execSimple(ctx context.Context, env vos.Env, stmt *syntax.Stmt, call *syntax.CallExpr) (int, error) {
	redirects := &restorer.Redirects{}
	vars := &restorer.Vars{}
	defer func() {
		redirects.Restore(env)
		vars.Restore(env)
	}()

	status, err := runSimple(ctx, env, stmt, call, redirects, vars)
	return swallow(env, status, err)
}

func runSimple(ctx context.Context, env vos.Env, stmt *syntax.Stmt, call *syntax.CallExpr, redirects *restorer.Redirects, vars *restorer.Vars) (int, error) {
	cfg := evalConfig(env)
	prefix, rest := eval.SplitPrefix(eval.Items(call, stmt.Redirs))

	// Assignments are only exported when they're scoped to a command.
	export := len(rest) > 0
	if err := eval.EvalRedirectsOrVarAssignmentsWithRestorers(ctx, env, cfg, redirects, vars, prefix, export); err != nil {
		return vos.ExitError, err
	}

	fields, err := eval.EvalRedirectsOrCmdWords(ctx, env, cfg, redirects, rest)
	if err != nil {
		return vos.ExitError, err
	}

	if len(fields) == 0 {
		// Bare assignments outlive the command.
		vars.Clear()
		return vos.ExitSuccess, nil
	}

	name := fields[0]
	log := env.Logger().With("name", name)
	if body, ok := env.LookupFunc(name); ok {
		log.DebugContext(ctx, "calling function", "args", len(fields)-1)
		return callFunc(ctx, env, name, body, fields[1:])
	}

	if builtin, ok := commands.LookupBuiltin(name); ok {
		log.DebugContext(ctx, "running builtin", "builtin", builtin)
		status := builtin.Run(ctx, env, fields)
		log.DebugContext(ctx, "builtin finished", "status", status)
		return status, nil
	}

	return execExternal(ctx, env, fields)
}

func callFunc(ctx context.Context, env vos.Env, name string, body *syntax.Stmt, args []string) (int, error) {
	if err := env.PushFuncFrame(); err != nil {
		return vos.ExitError, fmt.Errorf("%s: %w", name, err)
	}
	defer env.PopFuncFrame()

	old := env.SetArgs(args)
	defer env.SetArgs(old)

	return execStmt(ctx, env, body)
}

func execExternal(ctx context.Context, env vos.Env, argv []string) (int, error) {
	name := argv[0]
	log := env.Logger().With("name", name)

	path, err := vos.LookPath(env, name)
	if err != nil {
		log.DebugContext(ctx, "lookup failed", "error", err)
		return vos.ExitError, commandError(name, err)
	}

	log.DebugContext(ctx, "executing", "path", path)
	status, err := env.Executor().Exec(ctx, &vos.ExecRequest{
		Path:   path,
		Args:   argv,
		Env:    env.Environ(),
		Dir:    env.Getwd(),
		Stdin:  processReader(ctx, env, fdio.Stdin),
		Stdout: processWriter(ctx, env, fdio.Stdout),
		Stderr: processWriter(ctx, env, fdio.Stderr),
	})
	switch {
	case ctx.Err() != nil:
		return vos.ExitError, ctx.Err()
	case err != nil:
		log.DebugContext(ctx, "exec failed", "error", err)
		return vos.ExitError, commandError(name, err)
	}

	log.DebugContext(ctx, "process exited", "status", status)
	return status, nil
}

func commandError(name string, err error) *CommandError {
	switch {
	case errors.Is(err, vos.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return &CommandError{Kind: NotFound, Name: name, Err: err}
	case errors.Is(err, fs.ErrPermission):
		return &CommandError{Kind: NotExecutable, Name: name, Err: err}
	default:
		return &CommandError{Kind: Io, Name: name, Err: err}
	}
}

// processReader returns the stream a program gets for fd. OS files are handed
// over as they are so real programs inherit the descriptor.
func processReader(ctx context.Context, env vos.Env, fd int) io.Reader {
	entry, ok := env.FileDesc(fd)
	if !ok || !entry.Perms.Readable() {
		return nil
	}
	if f, ok := entry.Handle.OSFile(); ok {
		return f
	}
	return env.Reader(ctx, fd)
}

func processWriter(ctx context.Context, env vos.Env, fd int) io.Writer {
	entry, ok := env.FileDesc(fd)
	if !ok || !entry.Perms.Writable() {
		return nil
	}
	if f, ok := entry.Handle.OSFile(); ok {
		return f
	}
	return env.Writer(ctx, fd)
}
