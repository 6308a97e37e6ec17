package vos

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound is the error resulting if a path search failed to find an executable file.
var ErrNotFound = exec.ErrNotFound

// LookPathEnv is what LookPath needs to search for programs.
type LookPathEnv interface {
	VarEnv
	WorkingDirEnv
	FSEnv
}

func findExecutable(env LookPathEnv, file string) error {
	d, err := env.FS().Stat(Abs(env, file))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case err != nil:
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}

// LookPath searches for an executable named file in the directories named by
// the PATH variable. If file contains a slash, it is tried directly and the
// PATH is not consulted. An unset PATH finds nothing.
//
// If only non-executable matches exist fs.ErrPermission is returned.
func LookPath(env LookPathEnv, file string) (string, error) {
	if strings.Contains(file, "/") {
		if err := findExecutable(env, file); err != nil {
			return "", err
		}
		return file, nil
	}

	pathVar, ok := env.LookupVar("PATH")
	if !ok {
		return "", ErrNotFound
	}

	var firstErr error = ErrNotFound
	for _, dir := range filepath.SplitList(pathVar.Value) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := path.Join(dir, file)
		err := findExecutable(env, candidate)
		switch {
		case err == nil:
			return candidate, nil
		case errors.Is(err, fs.ErrPermission) && firstErr == ErrNotFound:
			firstErr = err
		}
	}
	return "", firstErr
}

// Abs resolves name against the working directory.
func Abs(env WorkingDirEnv, name string) string {
	if path.IsAbs(name) {
		return path.Clean(name)
	}
	return path.Join(env.Getwd(), name)
}

// ExecRequest describes an external program to run, similar to go's
// os/exec.Cmd.
type ExecRequest struct {
	// Path is the path of the command to run.
	Path string

	// Args holds command line arguments, including the command as Args[0].
	Args []string

	// Env specifies the environment of the process.
	// Each entry is of the form "key=value".
	Env []string

	// Dir specifies the working directory of the command.
	Dir string

	// Stdin specifies the process's standard input.
	Stdin io.Reader

	// Stdout and Stderr specify the process's standard output and error.
	Stdout io.Writer
	Stderr io.Writer
}

// Executor runs external programs.
type Executor interface {
	// Exec runs the program to completion and returns its exit status. An
	// error means the program couldn't be started.
	Exec(ctx context.Context, req *ExecRequest) (int, error)
}
