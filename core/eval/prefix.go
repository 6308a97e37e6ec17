package eval

import (
	"context"
	"fmt"
	"sort"

	"github.com/josephlewis42/vsh/core/restorer"
	"github.com/josephlewis42/vsh/core/vos"
	"mvdan.cc/sh/v3/syntax"
)

// Item is one element of a simple command: exactly one field is set.
type Item struct {
	Assign   *syntax.Assign
	Redirect *syntax.Redirect
	Word     *syntax.Word
}

// Pos returns the position of the item in the source.
func (i Item) Pos() syntax.Pos {
	switch {
	case i.Assign != nil:
		return i.Assign.Pos()
	case i.Redirect != nil:
		return i.Redirect.Pos()
	default:
		return i.Word.Pos()
	}
}

// Items merges the assignments and words of call with the statement's
// redirects in source order.
func Items(call *syntax.CallExpr, redirs []*syntax.Redirect) []Item {
	var items []Item
	if call != nil {
		for _, as := range call.Assigns {
			items = append(items, Item{Assign: as})
		}
		for _, w := range call.Args {
			items = append(items, Item{Word: w})
		}
	}
	for _, rd := range redirs {
		items = append(items, Item{Redirect: rd})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Pos().Offset() < items[j].Pos().Offset()
	})
	return items
}

// SplitPrefix splits items at the first word. The prefix holds the
// assignments and redirects before the command name.
func SplitPrefix(items []Item) (prefix, rest []Item) {
	for i, item := range items {
		if item.Word != nil {
			return items[:i], items[i:]
		}
	}
	return items, nil
}

// EvalRedirectsOrVarAssignments evaluates prefix left to right with fresh
// restorers, which are returned for the caller to restore once the command
// is done. Assignments are exported if export is set.
//
// If evaluation fails, or ctx is done before the prefix is complete,
// everything applied so far is restored and the error returned.
func EvalRedirectsOrVarAssignments(ctx context.Context, env Env, cfg *Config, prefix []Item, export bool) (*restorer.Redirects, *restorer.Vars, error) {
	redirects := &restorer.Redirects{}
	vars := &restorer.Vars{}

	if err := EvalRedirectsOrVarAssignmentsWithRestorers(ctx, env, cfg, redirects, vars, prefix, export); err != nil {
		redirects.Restore(env)
		vars.Restore(env)
		return nil, nil, err
	}
	return redirects, vars, nil
}

// EvalRedirectsOrVarAssignmentsWithRestorers evaluates prefix left to right
// recording every change in the supplied restorers. On failure, evaluation
// stops and the restorers hold everything applied so far.
//
// Each assignment sees the ones before it, so `a=1 b=$a` sets b to 1.
func EvalRedirectsOrVarAssignmentsWithRestorers(ctx context.Context, env Env, cfg *Config, rr restorer.RedirectRestorer, vr restorer.VarRestorer, prefix []Item, export bool) error {
	for _, item := range prefix {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch {
		case item.Assign != nil:
			if err := assign(ctx, env, cfg, vr, item.Assign, export); err != nil {
				return err
			}
		case item.Redirect != nil:
			if err := applyRedirect(ctx, env, cfg, rr, item.Redirect); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unexpected word %q before command", wordString(item.Word))
		}
	}
	return nil
}

// EvalRedirectsOrCmdWords evaluates the rest of a command after its prefix,
// expanding words into fields and applying redirects through rr.
func EvalRedirectsOrCmdWords(ctx context.Context, env Env, cfg *Config, rr restorer.RedirectRestorer, items []Item) ([]string, error) {
	var fields []string
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch {
		case item.Word != nil:
			expanded, err := Fields(ctx, env, cfg, item.Word)
			if err != nil {
				return nil, err
			}
			fields = append(fields, expanded...)
		case item.Redirect != nil:
			if err := applyRedirect(ctx, env, cfg, rr, item.Redirect); err != nil {
				return nil, err
			}
		default:
			// Assignments after the command name are plain words to the
			// parser, so this can't happen.
			return nil, fmt.Errorf("unexpected assignment to %q after command", item.Assign.Name.Value)
		}
	}
	return fields, nil
}

// EvalRedirects applies redirs, as on a compound command, through rr.
func EvalRedirects(ctx context.Context, env Env, cfg *Config, rr restorer.RedirectRestorer, redirs []*syntax.Redirect) error {
	for _, rd := range redirs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := applyRedirect(ctx, env, cfg, rr, rd); err != nil {
			return err
		}
	}
	return nil
}

func applyRedirect(ctx context.Context, env Env, cfg *Config, rr restorer.RedirectRestorer, rd *syntax.Redirect) error {
	actions, err := Redirect(ctx, env, cfg, rd)
	if err != nil {
		return err
	}

	for i, action := range actions {
		if err := rr.Apply(ctx, env, action); err != nil {
			closeUnapplied(actions[i+1:])
			return err
		}
	}
	return nil
}

func closeUnapplied(actions []restorer.Action) {
	for _, action := range actions {
		if open, ok := action.(restorer.Open); ok {
			open.Handle.Close()
		}
	}
}

func assign(ctx context.Context, env Env, cfg *Config, vr restorer.VarRestorer, as *syntax.Assign, export bool) error {
	name := as.Name.Value
	if as.Index != nil || as.Array != nil {
		return &ExpansionError{Err: fmt.Errorf("%s: arrays are not supported", name)}
	}

	value, err := Literal(ctx, env, cfg, as.Value)
	if err != nil {
		return err
	}

	old, exists := env.LookupVar(name)
	if as.Append {
		value = old.Value + value
	}

	vr.SetVar(env, name, vos.Var{Value: value, Exported: export || (exists && old.Exported)})
	return nil
}
