// Package commands holds the commands run inside the shell process.
package commands

import (
	"context"
	"sort"

	"github.com/josephlewis42/vsh/core/vos"
)

// Builtin identifies a command implemented by the shell itself.
type Builtin int

const (
	Colon Builtin = iota + 1
	True
	False
	Shift
	Cd
	Pwd
	Echo
)

var builtinNames = map[string]Builtin{
	":":     Colon,
	"true":  True,
	"false": False,
	"shift": Shift,
	"cd":    Cd,
	"pwd":   Pwd,
	"echo":  Echo,
}

// String returns the name the builtin is invoked by.
func (b Builtin) String() string {
	for name, builtin := range builtinNames {
		if builtin == b {
			return name
		}
	}
	return "unknown"
}

// LookupBuiltin finds the builtin invoked as name.
func LookupBuiltin(name string) (Builtin, bool) {
	b, ok := builtinNames[name]
	return b, ok
}

// ListBuiltins returns every builtin sorted by name.
func ListBuiltins() []Builtin {
	out := make([]Builtin, 0, len(builtinNames))
	for _, b := range builtinNames {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

// Env is everything a builtin may use.
type Env interface {
	vos.VarEnv
	vos.WorkingDirEnv
	vos.ArgsEnv
	vos.IOEnv
	vos.FSEnv
}

// Run executes the builtin. args[0] is the name it was invoked as.
func (b Builtin) Run(ctx context.Context, env Env, args []string) int {
	switch b {
	case Colon, True:
		return vos.ExitSuccess
	case False:
		return vos.ExitError
	case Shift:
		return RunShift(ctx, env, args)
	case Cd:
		return RunCd(ctx, env, args)
	case Pwd:
		return RunPwd(ctx, env, args)
	case Echo:
		return RunEcho(ctx, env, args)
	default:
		return vos.ExitCmdNotFound
	}
}
