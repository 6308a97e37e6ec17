package spawn

import (
	"bytes"
	"context"
	"fmt"
	"regexp"

	"github.com/josephlewis42/vsh/core/eval"
	"github.com/josephlewis42/vsh/core/restorer"
	"github.com/josephlewis42/vsh/core/vos"
	"mvdan.cc/sh/v3/pattern"
	"mvdan.cc/sh/v3/syntax"
)

func evalConfig(env vos.Env) *eval.Config {
	return &eval.Config{CmdSubst: cmdSubst(env)}
}

func execStmt(ctx context.Context, env vos.Env, stmt *syntax.Stmt) (int, error) {
	if err := ctx.Err(); err != nil {
		return vos.ExitError, err
	}

	status, err := execCommand(ctx, env, stmt)
	if err != nil || !stmt.Negated {
		return status, err
	}

	if status == vos.ExitSuccess {
		return vos.ExitError, nil
	}
	return vos.ExitSuccess, nil
}

func execCommand(ctx context.Context, env vos.Env, stmt *syntax.Stmt) (int, error) {
	switch {
	case stmt.Background:
		return vos.ExitError, unsupported(env, stmt, "background job")
	case stmt.Coprocess:
		return vos.ExitError, unsupported(env, stmt, "coprocess")
	}

	switch cmd := stmt.Cmd.(type) {
	case nil:
		return execSimple(ctx, env, stmt, nil)
	case *syntax.CallExpr:
		return execSimple(ctx, env, stmt, cmd)
	case *syntax.FuncDecl:
		env.SetFunc(cmd.Name.Value, cmd.Body)
		return vos.ExitSuccess, nil
	}

	if len(stmt.Redirs) > 0 {
		redirects := &restorer.Redirects{}
		defer redirects.Restore(env)

		if err := eval.EvalRedirects(ctx, env, evalConfig(env), redirects, stmt.Redirs); err != nil {
			return swallow(env, vos.ExitError, err)
		}
	}
	return execCompound(ctx, env, stmt.Cmd)
}

func execCompound(ctx context.Context, env vos.Env, cmd syntax.Command) (int, error) {
	switch cmd := cmd.(type) {
	case *syntax.Block:
		return runStmts(ctx, env, cmd.Stmts)
	case *syntax.Subshell:
		return execSubshell(ctx, env, cmd.Stmts)
	case *syntax.BinaryCmd:
		switch cmd.Op {
		case syntax.AndStmt, syntax.OrStmt:
			return execAndOr(ctx, env, cmd)
		default:
			return execPipeline(ctx, env, cmd)
		}
	case *syntax.IfClause:
		return execIf(ctx, env, cmd)
	case *syntax.WhileClause:
		return execWhile(ctx, env, cmd)
	case *syntax.ForClause:
		return execFor(ctx, env, cmd)
	case *syntax.CaseClause:
		return execCase(ctx, env, cmd)
	case *syntax.ArithmCmd:
		n, err := eval.Arithm(ctx, env, evalConfig(env), cmd.X)
		if err != nil {
			return vos.ExitError, err
		}
		if n == 0 {
			return vos.ExitError, nil
		}
		return vos.ExitSuccess, nil
	default:
		return vos.ExitError, unsupported(env, cmd, fmt.Sprintf("%T", cmd))
	}
}

// unsupported logs the offending node and returns ErrUnimplemented.
func unsupported(env vos.Env, node syntax.Node, what string) error {
	buf := &bytes.Buffer{}
	syntax.DebugPrint(buf, node)
	env.Logger().Debug("unsupported syntax", "node", buf.String())

	return unimplemented(node, what)
}

func execAndOr(ctx context.Context, env vos.Env, cmd *syntax.BinaryCmd) (int, error) {
	status, err := execStmt(ctx, env, cmd.X)
	if err != nil {
		return status, err
	}
	env.SetLastStatus(status)

	if (status == vos.ExitSuccess) == (cmd.Op == syntax.AndStmt) {
		return execStmt(ctx, env, cmd.Y)
	}
	return status, nil
}

func execSubshell(ctx context.Context, env vos.Env, stmts []*syntax.Stmt) (int, error) {
	child := env.Fork()
	defer child.Close()

	status, err := runStmts(ctx, child, stmts)
	return exitSubshell(child, status, err)
}

func execIf(ctx context.Context, env vos.Env, cmd *syntax.IfClause) (int, error) {
	for clause := cmd; clause != nil; clause = clause.Else {
		// "else" has no condition.
		if clause.ThenPos.IsValid() {
			cond, err := runStmts(ctx, env, clause.Cond)
			if err != nil {
				return cond, err
			}
			if cond != vos.ExitSuccess {
				continue
			}
		}
		return runStmts(ctx, env, clause.Then)
	}
	return vos.ExitSuccess, nil
}

func execWhile(ctx context.Context, env vos.Env, cmd *syntax.WhileClause) (int, error) {
	status := vos.ExitSuccess
	for {
		if err := ctx.Err(); err != nil {
			return status, err
		}

		cond, err := runStmts(ctx, env, cmd.Cond)
		if err != nil {
			return cond, err
		}
		if (cond == vos.ExitSuccess) == cmd.Until {
			return status, nil
		}

		status, err = runStmts(ctx, env, cmd.Do)
		if err != nil {
			return status, err
		}
	}
}

func execFor(ctx context.Context, env vos.Env, cmd *syntax.ForClause) (int, error) {
	if cmd.Select {
		return vos.ExitError, unsupported(env, cmd, "select")
	}

	cfg := evalConfig(env)
	switch loop := cmd.Loop.(type) {
	case *syntax.WordIter:
		items := append([]string(nil), env.Args()...)
		if loop.InPos.IsValid() {
			var err error
			if items, err = eval.Fields(ctx, env, cfg, loop.Items...); err != nil {
				return vos.ExitError, err
			}
		}

		status := vos.ExitSuccess
		for _, item := range items {
			if err := ctx.Err(); err != nil {
				return status, err
			}

			old, _ := env.LookupVar(loop.Name.Value)
			env.SetVar(loop.Name.Value, vos.Var{Value: item, Exported: old.Exported})

			var err error
			if status, err = runStmts(ctx, env, cmd.Do); err != nil {
				return status, err
			}
		}
		return status, nil

	case *syntax.CStyleLoop:
		arithm := func(expr syntax.ArithmExpr) (int, error) {
			if expr == nil {
				return 1, nil
			}
			return eval.Arithm(ctx, env, cfg, expr)
		}

		if _, err := arithm(loop.Init); err != nil {
			return vos.ExitError, err
		}

		status := vos.ExitSuccess
		for {
			if err := ctx.Err(); err != nil {
				return status, err
			}

			cond, err := arithm(loop.Cond)
			switch {
			case err != nil:
				return vos.ExitError, err
			case cond == 0:
				return status, nil
			}

			if status, err = runStmts(ctx, env, cmd.Do); err != nil {
				return status, err
			}
			if _, err := arithm(loop.Post); err != nil {
				return vos.ExitError, err
			}
		}

	default:
		return vos.ExitError, unsupported(env, cmd, fmt.Sprintf("%T", loop))
	}
}

func execCase(ctx context.Context, env vos.Env, cmd *syntax.CaseClause) (int, error) {
	cfg := evalConfig(env)
	word, err := eval.Literal(ctx, env, cfg, cmd.Word)
	if err != nil {
		return vos.ExitError, err
	}

	status := vos.ExitSuccess
	fallingThrough := false
	for _, item := range cmd.Items {
		if !fallingThrough {
			matched, err := caseMatches(ctx, env, cfg, word, item.Patterns)
			switch {
			case err != nil:
				return vos.ExitError, err
			case !matched:
				continue
			}
		}

		if status, err = runStmts(ctx, env, item.Stmts); err != nil {
			return status, err
		}

		switch item.Op {
		case syntax.Fallthrough:
			fallingThrough = true
		case syntax.Resume, syntax.ResumeKorn:
			fallingThrough = false
		default:
			return status, nil
		}
	}
	return status, nil
}

func caseMatches(ctx context.Context, env vos.Env, cfg *eval.Config, word string, patterns []*syntax.Word) (bool, error) {
	for _, pat := range patterns {
		expanded, err := eval.Pattern(ctx, env, cfg, pat)
		if err != nil {
			return false, err
		}

		expr, err := pattern.Regexp(expanded, pattern.EntireString)
		if err != nil {
			return false, &eval.ExpansionError{Err: err}
		}
		rx, err := regexp.Compile(expr)
		if err != nil {
			return false, &eval.ExpansionError{Err: err}
		}

		if rx.MatchString(word) {
			return true, nil
		}
	}
	return false, nil
}
