package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/josephlewis42/vsh/core/vos"
)

// ShiftEnv is what shift needs.
type ShiftEnv interface {
	vos.ArgsEnv
	vos.IOEnv
}

// RunShift drops positional parameters, one unless a count is given.
func RunShift(ctx context.Context, env ShiftEnv, args []string) int {
	n := uint64(1)
	if len(args) > 1 {
		var err error
		if n, err = strconv.ParseUint(args[1], 10, 0); err != nil {
			fmt.Fprintf(vos.Stderr(ctx, env), "shift: %s: numeric argument required\n", args[1])
			return vos.ExitError
		}
	}

	if n > uint64(len(env.Args())) {
		return vos.ExitError
	}

	env.ShiftArgs(int(n))
	return vos.ExitSuccess
}
