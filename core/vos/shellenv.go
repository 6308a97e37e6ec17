package vos

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/josephlewis42/vsh/core/fdio"
	"github.com/josephlewis42/vsh/core/logger"
	"github.com/spf13/afero"
	"mvdan.cc/sh/v3/syntax"
)

// DefaultMaxFuncDepth is the function nesting limit if none is configured.
const DefaultMaxFuncDepth = 100

// Options configure a new ShellEnv.
type Options struct {
	// Name is $0.
	Name string
	// Args are the positional parameters.
	Args []string
	// Environ seeds exported variables, in the form "key=value".
	Environ []string
	// Dir is the starting working directory, "/" if empty.
	Dir string

	// Fs is the filesystem paths resolve on, ignored if Manager is set.
	Fs afero.Fs
	// Manager opens descriptors, one is created over Fs if nil.
	Manager *fdio.Manager
	// Executor runs external programs, the host is used if nil.
	Executor Executor
	// Logger receives diagnostics, nil discards.
	Logger *slog.Logger

	Interactive  bool
	MaxFuncDepth int
	PipeFail     bool

	// Standard streams bound to fds 0, 1 and 2. They are borrowed and never
	// closed by the environment. Nil streams behave like /dev/null.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// ShellEnv is the default Env.
type ShellEnv struct {
	vars  *MapEnv
	funcs map[string]*syntax.Stmt

	// name is $0 and args are $1 onward.
	name string
	args []string

	// cwd is the logical working directory.
	cwd string

	fds      *fdio.Table
	mgr      *fdio.Manager
	executor Executor
	log      *slog.Logger

	interactive bool
	pipeFail    bool
	lastStatus  int

	depth    int
	maxDepth int
}

var _ Env = (*ShellEnv)(nil)

// New creates an environment from opts.
func New(opts Options) *ShellEnv {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	mgr := opts.Manager
	if mgr == nil {
		fsys := opts.Fs
		if fsys == nil {
			fsys = afero.NewOsFs()
		}
		mgr = fdio.NewManager(fsys, nil, log)
	}

	executor := opts.Executor
	if executor == nil {
		executor = NewOSExecutor(mgr.Pool())
	}

	maxDepth := opts.MaxFuncDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxFuncDepth
	}

	dir := opts.Dir
	if dir == "" {
		dir = "/"
	}

	env := &ShellEnv{
		vars:        NewMapEnvFromEnvList(opts.Environ),
		funcs:       make(map[string]*syntax.Stmt),
		name:        opts.Name,
		args:        append([]string(nil), opts.Args...),
		cwd:         dir,
		fds:         fdio.NewTable(),
		mgr:         mgr,
		executor:    executor,
		log:         log,
		interactive: opts.Interactive,
		pipeFail:    opts.PipeFail,
		maxDepth:    maxDepth,
	}
	env.vars.SetVar("PWD", Var{Value: dir, Exported: true})

	env.fds.Set(fdio.Stdin, fdio.Borrow(ReaderFile("stdin", opts.Stdin)), fdio.Read)
	env.fds.Set(fdio.Stdout, fdio.Borrow(WriterFile("stdout", opts.Stdout)), fdio.Write)
	env.fds.Set(fdio.Stderr, fdio.Borrow(WriterFile("stderr", opts.Stderr)), fdio.Write)

	return env
}

// LookupVar implements VarEnv.LookupVar.
func (e *ShellEnv) LookupVar(name string) (Var, bool) {
	return e.vars.LookupVar(name)
}

// SetVar implements VarEnv.SetVar.
func (e *ShellEnv) SetVar(name string, v Var) {
	e.vars.SetVar(name, v)
}

// UnsetVar implements VarEnv.UnsetVar.
func (e *ShellEnv) UnsetVar(name string) {
	e.vars.UnsetVar(name)
}

// EachVar implements VarLister.EachVar.
func (e *ShellEnv) EachVar(fn func(name string, v Var) bool) {
	e.vars.EachVar(fn)
}

// Environ implements VarLister.Environ.
func (e *ShellEnv) Environ() []string {
	return e.vars.Environ()
}

// Getwd implements WorkingDirEnv.Getwd.
func (e *ShellEnv) Getwd() string {
	return e.cwd
}

// Chdir implements WorkingDirEnv.Chdir.
func (e *ShellEnv) Chdir(dir string) error {
	dir = Abs(e, dir)

	stat, err := e.FS().Stat(dir)
	switch {
	case err != nil:
		return fmt.Errorf("%s: %w", dir, unwrapPathError(err))
	case !stat.IsDir():
		return fmt.Errorf("%s: Not a directory", dir)
	}

	old := e.cwd
	e.cwd = dir
	e.vars.SetVar("OLDPWD", Var{Value: old, Exported: true})
	e.vars.SetVar("PWD", Var{Value: dir, Exported: true})
	return nil
}

func unwrapPathError(err error) error {
	if pe, ok := err.(*fs.PathError); ok {
		return pe.Err
	}
	return err
}

// Name implements ArgsEnv.Name.
func (e *ShellEnv) Name() string {
	return e.name
}

// Args implements ArgsEnv.Args.
func (e *ShellEnv) Args() []string {
	return e.args
}

// Arg implements ArgsEnv.Arg.
func (e *ShellEnv) Arg(n int) (string, bool) {
	switch {
	case n == 0:
		return e.name, true
	case n < 0 || n > len(e.args):
		return "", false
	default:
		return e.args[n-1], true
	}
}

// SetArgs implements ArgsEnv.SetArgs.
func (e *ShellEnv) SetArgs(args []string) []string {
	old := e.args
	e.args = args
	return old
}

// ShiftArgs implements ArgsEnv.ShiftArgs.
func (e *ShellEnv) ShiftArgs(n int) {
	if n > len(e.args) {
		n = len(e.args)
	}
	e.args = e.args[n:]
}

// LookupFunc implements FuncEnv.LookupFunc.
func (e *ShellEnv) LookupFunc(name string) (*syntax.Stmt, bool) {
	body, ok := e.funcs[name]
	return body, ok
}

// SetFunc implements FuncEnv.SetFunc.
func (e *ShellEnv) SetFunc(name string, body *syntax.Stmt) {
	e.funcs[name] = body
}

// UnsetFunc implements FuncEnv.UnsetFunc.
func (e *ShellEnv) UnsetFunc(name string) {
	delete(e.funcs, name)
}

// PushFuncFrame implements FuncFrameEnv.PushFuncFrame.
func (e *ShellEnv) PushFuncFrame() error {
	if e.depth >= e.maxDepth {
		return ErrStackDepth
	}
	e.depth++
	return nil
}

// PopFuncFrame implements FuncFrameEnv.PopFuncFrame.
func (e *ShellEnv) PopFuncFrame() {
	if e.depth > 0 {
		e.depth--
	}
}

// IsInteractive implements InteractiveEnv.IsInteractive.
func (e *ShellEnv) IsInteractive() bool {
	return e.interactive
}

// ReportFailure implements FailureReporter.ReportFailure.
func (e *ShellEnv) ReportFailure(err error) {
	fmt.Fprintf(Stderr(context.Background(), e), "%s: %v\n", e.name, err)
}

// LastStatus implements LastStatusEnv.LastStatus.
func (e *ShellEnv) LastStatus() int {
	return e.lastStatus
}

// SetLastStatus implements LastStatusEnv.SetLastStatus.
func (e *ShellEnv) SetLastStatus(status int) {
	e.lastStatus = status
}

// FileDesc implements FdEnv.FileDesc.
func (e *ShellEnv) FileDesc(fd int) (fdio.Entry, bool) {
	return e.fds.Get(fd)
}

// SetFileDesc implements FdEnv.SetFileDesc.
func (e *ShellEnv) SetFileDesc(fd int, h *fdio.Handle, perms fdio.Permissions) {
	e.fds.Set(fd, h, perms)
}

// CloseFileDesc implements FdEnv.CloseFileDesc.
func (e *ShellEnv) CloseFileDesc(fd int) error {
	return e.fds.Close(fd)
}

// Open implements OpenerEnv.Open.
func (e *ShellEnv) Open(name string, flag int) (*fdio.Handle, error) {
	return e.mgr.Open(Abs(e, name), flag)
}

// Pipe implements OpenerEnv.Pipe.
func (e *ShellEnv) Pipe() (r, w *fdio.Handle, err error) {
	return e.mgr.Pipe()
}

// Heredoc implements OpenerEnv.Heredoc.
func (e *ShellEnv) Heredoc(ctx context.Context, body []byte) (*fdio.Handle, error) {
	return e.mgr.Heredoc(ctx, body)
}

// Reader implements IOEnv.Reader.
func (e *ShellEnv) Reader(ctx context.Context, fd int) io.Reader {
	entry, ok := e.fds.Get(fd)
	if !ok || !entry.Perms.Readable() {
		return &badFd{err: badFdError(fd)}
	}
	async, err := e.mgr.Register(entry.Handle)
	if err != nil {
		return &badFd{err: err}
	}
	return async.Reader(ctx)
}

// Writer implements IOEnv.Writer.
func (e *ShellEnv) Writer(ctx context.Context, fd int) io.Writer {
	entry, ok := e.fds.Get(fd)
	if !ok || !entry.Perms.Writable() {
		return &badFd{err: badFdError(fd)}
	}
	async, err := e.mgr.Register(entry.Handle)
	if err != nil {
		return &badFd{err: err}
	}
	return async.Writer(ctx)
}

// FS implements FSEnv.FS.
func (e *ShellEnv) FS() afero.Fs {
	return e.mgr.Fs()
}

// Fork implements Env.Fork.
func (e *ShellEnv) Fork() Env {
	funcs := make(map[string]*syntax.Stmt, len(e.funcs))
	for name, body := range e.funcs {
		funcs[name] = body
	}

	return &ShellEnv{
		vars:        e.vars.Clone(),
		funcs:       funcs,
		name:        e.name,
		args:        append([]string(nil), e.args...),
		cwd:         e.cwd,
		fds:         e.fds.Clone(),
		mgr:         e.mgr,
		executor:    e.executor,
		log:         e.log,
		interactive: e.interactive,
		pipeFail:    e.pipeFail,
		lastStatus:  e.lastStatus,
		depth:       e.depth,
		maxDepth:    e.maxDepth,
	}
}

// Close implements Env.Close.
func (e *ShellEnv) Close() error {
	return e.fds.CloseAll()
}

// Executor implements Env.Executor.
func (e *ShellEnv) Executor() Executor {
	return e.executor
}

// Logger implements Env.Logger.
func (e *ShellEnv) Logger() *slog.Logger {
	return e.log
}

// PipeFail implements Env.PipeFail.
func (e *ShellEnv) PipeFail() bool {
	return e.pipeFail
}
