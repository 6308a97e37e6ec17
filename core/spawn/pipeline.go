package spawn

import (
	"context"

	"github.com/josephlewis42/vsh/core/fdio"
	"github.com/josephlewis42/vsh/core/vos"
	"mvdan.cc/sh/v3/syntax"
)

type pipeMember struct {
	stmt *syntax.Stmt
	// stderr is set if the member's stderr joins its stdout in the pipe, as
	// with |&.
	stderr bool
}

func flattenPipeline(cmd *syntax.BinaryCmd) []pipeMember {
	members := flattenPipeSide(cmd.X)
	members[len(members)-1].stderr = cmd.Op == syntax.PipeAll
	return append(members, flattenPipeSide(cmd.Y)...)
}

func flattenPipeSide(stmt *syntax.Stmt) []pipeMember {
	bin, ok := stmt.Cmd.(*syntax.BinaryCmd)
	plain := !stmt.Negated && !stmt.Background && !stmt.Coprocess && len(stmt.Redirs) == 0
	if ok && plain && (bin.Op == syntax.Pipe || bin.Op == syntax.PipeAll) {
		return flattenPipeline(bin)
	}
	return []pipeMember{{stmt: stmt}}
}

// execPipeline runs every member concurrently, each in its own fork of env
// with stdout connected to the next member's stdin.
func execPipeline(ctx context.Context, env vos.Env, cmd *syntax.BinaryCmd) (int, error) {
	members := flattenPipeline(cmd)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	units := make([]*Unit, 0, len(members))
	abort := func(err error) (int, error) {
		cancel()
		for _, u := range units {
			u.Wait()
		}
		return vos.ExitError, err
	}

	var stdin *fdio.Handle
	for i, member := range members {
		child := env.Fork()
		if stdin != nil {
			child.SetFileDesc(fdio.Stdin, stdin, fdio.Read)
			stdin = nil
		}

		if i < len(members)-1 {
			r, w, err := env.Pipe()
			if err != nil {
				child.Close()
				return abort(err)
			}
			if member.stderr {
				child.SetFileDesc(fdio.Stderr, w.Dup(), fdio.Write)
			}
			child.SetFileDesc(fdio.Stdout, w, fdio.Write)
			stdin = r
		}

		stmt := member.stmt
		u := newUnit(ctx, func(ctx context.Context) (int, error) {
			defer child.Close()

			status, err := execStmt(ctx, child, stmt)
			return exitSubshell(child, status, err)
		})
		u.Start()
		units = append(units, u)
	}

	statuses := make([]int, len(units))
	var firstErr error
	for i, u := range units {
		status, err := u.Wait()
		statuses[i] = status
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return vos.ExitError, firstErr
	}

	return pipelineStatus(statuses, env.PipeFail()), nil
}

// pipelineStatus is the last member's status. With pipefail it's the status
// of the rightmost member that failed.
func pipelineStatus(statuses []int, pipeFail bool) int {
	status := statuses[len(statuses)-1]
	if !pipeFail {
		return status
	}
	for i := len(statuses) - 1; i >= 0; i-- {
		if statuses[i] != vos.ExitSuccess {
			return statuses[i]
		}
	}
	return status
}
