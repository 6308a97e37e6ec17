package spawn

import (
	"context"
	"errors"
	"io"

	"github.com/josephlewis42/vsh/core/fdio"
	"github.com/josephlewis42/vsh/core/vos"
	"mvdan.cc/sh/v3/syntax"
)

// Run executes a parsed file against env and returns the status of the last
// statement. The returned error is fatal: the script stopped early.
func Run(ctx context.Context, env vos.Env, file *syntax.File) (int, error) {
	return runStmts(ctx, env, file.Stmts)
}

// RunReader parses and runs the script in r. Interactive environments run
// each complete line as soon as it's read and keep going after syntax
// errors.
func RunReader(ctx context.Context, env vos.Env, r io.Reader, name string) (int, error) {
	parser := syntax.NewParser()
	if !env.IsInteractive() {
		file, err := parser.Parse(r, name)
		if err != nil {
			return vos.ExitError, err
		}
		return Run(ctx, env, file)
	}

	status := vos.ExitSuccess
	for {
		var runErr error
		err := parser.Interactive(r, func(stmts []*syntax.Stmt) bool {
			status, runErr = runStmts(ctx, env, stmts)
			return runErr == nil
		})
		switch {
		case runErr != nil:
			return status, runErr
		case err == nil:
			return status, nil
		case ctx.Err() != nil:
			return status, ctx.Err()
		}

		var syntaxErr syntax.ParseError
		if !errors.As(err, &syntaxErr) {
			return status, err
		}
		env.ReportFailure(err)
		status = vos.ExitError
		env.SetLastStatus(status)
	}
}

// runStmts runs a sequence. Non-fatal errors are reported and become the
// member's status, except for the last member of a non-interactive
// sequence whose errors go to the caller. $? is updated after every member.
func runStmts(ctx context.Context, env vos.Env, stmts []*syntax.Stmt) (int, error) {
	status := vos.ExitSuccess
	interactive := env.IsInteractive()

	for i, stmt := range stmts {
		var err error
		status, err = execStmt(ctx, env, stmt)
		if interactive || i < len(stmts)-1 {
			status, err = swallow(env, status, err)
		}
		env.SetLastStatus(status)
		if err != nil {
			return status, err
		}
	}
	return status, nil
}

// cmdSubst runs command substitutions in a fork of env, capturing stdout.
func cmdSubst(env vos.Env) func(ctx context.Context, w io.Writer, cs *syntax.CmdSubst) error {
	return func(ctx context.Context, w io.Writer, cs *syntax.CmdSubst) error {
		r, pw, err := env.Pipe()
		if err != nil {
			return err
		}

		child := env.Fork()
		child.SetFileDesc(fdio.Stdout, pw, fdio.Write)

		copied := make(chan error, 1)
		go func() {
			defer r.Close()
			_, err := io.Copy(w, r)
			copied <- err
		}()

		status, err := runStmts(ctx, child, cs.Stmts)
		status, err = exitSubshell(child, status, err)
		child.Close()

		if copyErr := <-copied; err == nil {
			err = copyErr
		}
		env.SetLastStatus(status)
		return err
	}
}
