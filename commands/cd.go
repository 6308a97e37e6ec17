package commands

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/josephlewis42/vsh/core/vos"
)

// RunCd changes the working directory.
func RunCd(ctx context.Context, env DirEnv, args []string) int {
	cmd := &SimpleCommand{
		Use:   "cd [-L|-P] [dir]",
		Short: "Change the shell working directory.",
	}
	physical := physicalFlag(cmd)

	return cmd.Run(ctx, env, args, func() int {
		stderr := vos.Stderr(ctx, env)
		operands := cmd.Flags().Args()

		var dir string
		printDir := false
		switch {
		case len(operands) > 1:
			fmt.Fprintln(stderr, "cd: too many arguments")
			return vos.ExitError

		case len(operands) == 0:
			home, ok := env.LookupVar("HOME")
			if !ok {
				fmt.Fprintln(stderr, "cd: HOME not set")
				return vos.ExitError
			}
			dir = home.Value

		case operands[0] == "-":
			old, ok := env.LookupVar("OLDPWD")
			if !ok || old.Value == "" {
				fmt.Fprintln(stderr, "cd: OLDPWD not set")
				return vos.ExitError
			}
			dir = old.Value
			printDir = true

		default:
			dir = operands[0]
			if found, ok := searchCdPath(env, dir); ok {
				dir = found
				printDir = true
			}
		}

		if dir == "" {
			return vos.ExitSuccess
		}

		if *physical {
			resolved, err := vos.Realpath(env, dir)
			if err != nil {
				fmt.Fprintf(stderr, "cd: %s: %v\n", dir, err)
				return vos.ExitError
			}
			dir = resolved
		}

		if err := env.Chdir(dir); err != nil {
			fmt.Fprintf(stderr, "cd: %v\n", err)
			return vos.ExitError
		}

		if printDir {
			fmt.Fprintln(vos.Stdout(ctx, env), env.Getwd())
		}
		return vos.ExitSuccess
	})
}

// searchCdPath looks for dir under each CDPATH entry, returning the first
// directory found through a non-empty entry. Absolute names and names
// starting with . or .. are never searched.
func searchCdPath(env DirEnv, dir string) (string, bool) {
	if path.IsAbs(dir) || dir == "." || dir == ".." ||
		strings.HasPrefix(dir, "./") || strings.HasPrefix(dir, "../") {
		return "", false
	}

	cdpath, ok := env.LookupVar("CDPATH")
	if !ok {
		return "", false
	}

	for _, entry := range filepath.SplitList(cdpath.Value) {
		if entry == "" {
			// An empty entry is the working directory, which is tried anyway.
			if isDir(env, dir) {
				return "", false
			}
			continue
		}

		candidate := path.Join(entry, dir)
		if isDir(env, candidate) {
			return candidate, true
		}
	}
	return "", false
}

func isDir(env DirEnv, name string) bool {
	stat, err := env.FS().Stat(vos.Abs(env, name))
	return err == nil && stat.IsDir()
}
