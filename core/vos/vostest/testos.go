// Package vostest provides deterministic environments for tests.
package vostest

import (
	"bytes"
	"context"
	"io"
	"path"

	"github.com/josephlewis42/vsh/core/vos"
	"github.com/spf13/afero"
)

// Home is the working directory deterministic environments start in.
const Home = "/home/user"

// SingleProcessResolver resolves every path to process.
func SingleProcessResolver(process vos.ProcessFunc) vos.ProcessResolver {
	return func(path string) vos.ProcessFunc {
		return process
	}
}

// MapResolver resolves paths through a fixed table.
func MapResolver(processes map[string]vos.ProcessFunc) vos.ProcessResolver {
	return func(path string) vos.ProcessFunc {
		return processes[path]
	}
}

// Install writes an executable placeholder for each path so LookPath finds
// it.
func Install(fsys afero.Fs, paths ...string) error {
	for _, p := range paths {
		if err := fsys.MkdirAll(path.Dir(p), 0755); err != nil {
			return err
		}
		if err := afero.WriteFile(fsys, p, nil, 0755); err != nil {
			return err
		}
	}
	return nil
}

// NewDeterministicEnv creates an environment over an in-memory filesystem
// holding /bin, /tmp and Home, with PATH=/bin and HOME=Home. Programs under
// /bin are run through resolver. Fields set in opts override the defaults.
func NewDeterministicEnv(resolver vos.ProcessResolver, opts vos.Options) *vos.ShellEnv {
	fsys := opts.Fs
	if fsys == nil && opts.Manager == nil {
		fsys = afero.NewMemMapFs()
		for _, dir := range []string{"/bin", "/tmp", Home} {
			fsys.MkdirAll(dir, 0755)
		}
		opts.Fs = fsys
	}

	if opts.Name == "" {
		opts.Name = "vsh"
	}
	if opts.Dir == "" {
		opts.Dir = Home
	}
	if opts.Environ == nil {
		opts.Environ = []string{"HOME=" + Home, "PATH=/bin"}
	}
	if opts.Executor == nil {
		if resolver == nil {
			resolver = func(string) vos.ProcessFunc { return nil }
		}
		opts.Executor = vos.NewVirtualExecutor(resolver)
	}

	return vos.New(opts)
}

// Program is anything that can be run against an environment like a
// process, argv[0] is the program name.
type Program func(ctx context.Context, env vos.Env, argv []string) int

// Cmd is similar to exec.Cmd.
type Cmd struct {
	// Program to run.
	Program Program
	// Process arguments, the first argument should be the process name.
	Argv []string
	// If Dir is non-empty, the child changes into the directory before
	// running.
	Dir string
	// If Env is non-nil, it gives the environment variables for the
	// new process in the form returned by Environ.
	Env []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	ExitStatus int

	// Setup runs against the environment before the program.
	Setup func(*vos.ShellEnv) error
}

// Command returns a Cmd to run program with the given arguments.
func Command(program Program, name string, arg ...string) *Cmd {
	return &Cmd{
		Program: program,
		Argv:    append([]string{name}, arg...),
	}
}

// CombinedOutput runs the command and returns its combined stdout and
// stderr.
func (c *Cmd) CombinedOutput() ([]byte, error) {
	buf := &bytes.Buffer{}
	c.Stdout = buf
	c.Stderr = buf

	err := c.Run()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Run starts the command and waits for it to complete.
func (c *Cmd) Run() error {
	env := NewDeterministicEnv(nil, vos.Options{
		Name:    c.Argv[0],
		Environ: c.Env,
		Stdin:   c.Stdin,
		Stdout:  c.Stdout,
		Stderr:  c.Stderr,
	})
	defer env.Close()

	if c.Dir != "" {
		if err := env.Chdir(c.Dir); err != nil {
			return err
		}
	}

	if c.Setup != nil {
		if err := c.Setup(env); err != nil {
			return err
		}
	}

	c.ExitStatus = c.Program(context.Background(), env, c.Argv)
	return nil
}
