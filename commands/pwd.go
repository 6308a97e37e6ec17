package commands

import (
	"context"
	"fmt"
	"path"

	"github.com/josephlewis42/vsh/core/vos"
	getopt "github.com/pborman/getopt/v2"
)

// DirEnv is what cd and pwd need.
type DirEnv interface {
	vos.VarEnv
	vos.WorkingDirEnv
	vos.FSEnv
	vos.IOEnv
}

// physicalFlag registers -L and -P on cmd. The returned value is true if the
// last of them given was -P.
func physicalFlag(cmd *SimpleCommand) *bool {
	physical := false

	opts := cmd.Flags()
	opts.Bool('L', "use the logical path, resolving .. lexically (default)")
	opts.Bool('P', "use the physical path with symbolic links resolved")
	cmd.OnOption = func(opt getopt.Option) {
		switch opt.ShortName() {
		case "L":
			physical = false
		case "P":
			physical = true
		}
	}

	return &physical
}

// RunPwd prints the working directory.
func RunPwd(ctx context.Context, env DirEnv, args []string) int {
	cmd := &SimpleCommand{
		Use:   "pwd [-L|-P]",
		Short: "Print the name of the current working directory.",
	}
	physical := physicalFlag(cmd)

	return cmd.Run(ctx, env, args, func() int {
		dir, err := workingDir(env, *physical)
		if err != nil {
			fmt.Fprintf(vos.Stderr(ctx, env), "pwd: %v\n", err)
			return vos.ExitError
		}

		fmt.Fprintln(vos.Stdout(ctx, env), dir)
		return vos.ExitSuccess
	})
}

// workingDir returns $PWD if it names the working directory, otherwise the
// working directory with every symbolic link resolved.
func workingDir(env DirEnv, physical bool) (string, error) {
	if !physical {
		if pwd, ok := env.LookupVar("PWD"); ok && validLogicalDir(env, pwd.Value) {
			return pwd.Value, nil
		}
	}
	return vos.Realpath(env, env.Getwd())
}

// validLogicalDir checks dir is absolute, has no . or .. components and
// refers to the working directory.
func validLogicalDir(env DirEnv, dir string) bool {
	if !path.IsAbs(dir) || path.Clean(dir) != dir {
		return false
	}

	want, err := vos.Realpath(env, env.Getwd())
	if err != nil {
		return false
	}
	got, err := vos.Realpath(env, dir)
	return err == nil && got == want
}
