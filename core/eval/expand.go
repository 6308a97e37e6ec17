package eval

import (
	"context"
	"io"
	"strconv"

	"github.com/josephlewis42/vsh/core/vos"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

// Env is what expansion and redirection need from an environment.
type Env interface {
	vos.VarEnv
	vos.VarLister
	vos.ArgsEnv
	vos.LastStatusEnv
	vos.RedirectEnv
}

// Config holds hooks expansion calls out to.
type Config struct {
	// CmdSubst runs the command substitution, writing its standard output
	// to w. If nil, command substitutions fail to expand.
	CmdSubst func(ctx context.Context, w io.Writer, cs *syntax.CmdSubst) error
}

func (c *Config) expandConfig(ctx context.Context, env Env) *expand.Config {
	ec := &expand.Config{Env: &expandEnv{env: env}}
	if c != nil && c.CmdSubst != nil {
		ec.CmdSubst = func(w io.Writer, cs *syntax.CmdSubst) error {
			return c.CmdSubst(ctx, w, cs)
		}
	}
	return ec
}

// Literal expands word into a single string, as for an assignment value.
func Literal(ctx context.Context, env Env, cfg *Config, word *syntax.Word) (string, error) {
	out, err := expand.Literal(cfg.expandConfig(ctx, env), word)
	if err != nil {
		return "", &ExpansionError{Err: err}
	}
	return out, nil
}

// Fields expands words into fields, splitting on IFS.
func Fields(ctx context.Context, env Env, cfg *Config, words ...*syntax.Word) ([]string, error) {
	out, err := expand.Fields(cfg.expandConfig(ctx, env), words...)
	if err != nil {
		return nil, &ExpansionError{Err: err}
	}
	return out, nil
}

// Document expands word as if it were double quoted, as for a heredoc
// body.
func Document(ctx context.Context, env Env, cfg *Config, word *syntax.Word) (string, error) {
	out, err := expand.Document(cfg.expandConfig(ctx, env), word)
	if err != nil {
		return "", &ExpansionError{Err: err}
	}
	return out, nil
}

// Pattern expands word into a shell pattern with quoted parts escaped.
func Pattern(ctx context.Context, env Env, cfg *Config, word *syntax.Word) (string, error) {
	out, err := expand.Pattern(cfg.expandConfig(ctx, env), word)
	if err != nil {
		return "", &ExpansionError{Err: err}
	}
	return out, nil
}

// Arithm evaluates an arithmetic expression.
func Arithm(ctx context.Context, env Env, cfg *Config, expr syntax.ArithmExpr) (int, error) {
	out, err := expand.Arithm(cfg.expandConfig(ctx, env), expr)
	if err != nil {
		return 0, &ExpansionError{Err: err}
	}
	return out, nil
}

// expandEnv exposes an environment's variables and special parameters to
// the expander.
type expandEnv struct {
	env Env
}

var _ expand.WriteEnviron = (*expandEnv)(nil)

func (e *expandEnv) Get(name string) expand.Variable {
	switch name {
	case "@", "*":
		return expand.Variable{Kind: expand.Indexed, List: e.env.Args()}
	case "#":
		return stringVar(strconv.Itoa(len(e.env.Args())))
	case "?":
		return stringVar(strconv.Itoa(e.env.LastStatus()))
	}

	if n, err := strconv.Atoi(name); err == nil {
		if arg, ok := e.env.Arg(n); ok {
			return stringVar(arg)
		}
		return expand.Variable{}
	}

	v, ok := e.env.LookupVar(name)
	if !ok {
		return expand.Variable{}
	}
	return expand.Variable{Kind: expand.String, Str: v.Value, Exported: v.Exported}
}

func (e *expandEnv) Set(name string, vr expand.Variable) error {
	if !vr.IsSet() {
		e.env.UnsetVar(name)
		return nil
	}

	old, _ := e.env.LookupVar(name)
	e.env.SetVar(name, vos.Var{Value: vr.String(), Exported: vr.Exported || old.Exported})
	return nil
}

func (e *expandEnv) Each(fn func(name string, vr expand.Variable) bool) {
	e.env.EachVar(func(name string, v vos.Var) bool {
		return fn(name, expand.Variable{Kind: expand.String, Str: v.Value, Exported: v.Exported})
	})
}

func stringVar(s string) expand.Variable {
	return expand.Variable{Kind: expand.String, Str: s}
}
