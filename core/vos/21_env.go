package vos

import (
	"errors"

	"mvdan.cc/sh/v3/syntax"
)

// Var is a shell variable binding.
type Var struct {
	Value    string
	Exported bool
}

// VarEnv provides access to shell variables. An absent variable and a
// variable set to the empty string are distinct.
type VarEnv interface {
	// LookupVar retrieves the variable named by the key. If the variable is
	// present the binding (whose value may be empty) is returned and the
	// boolean is true.
	LookupVar(name string) (Var, bool)

	// SetVar sets the variable named by the key.
	SetVar(name string, v Var)

	// UnsetVar removes the variable named by the key.
	UnsetVar(name string)
}

// VarLister lists every variable in an environment.
type VarLister interface {
	// EachVar calls fn for each variable until fn returns false.
	EachVar(fn func(name string, v Var) bool)

	// Environ returns a copy of strings representing the exported
	// variables, in the form "key=value", sorted by key.
	Environ() []string
}

// WorkingDirEnv tracks the current working directory.
type WorkingDirEnv interface {
	// Getwd returns the logical working directory.
	Getwd() string

	// Chdir changes the working directory, relative paths are resolved
	// against the current one. PWD and OLDPWD are updated with the move.
	Chdir(dir string) error
}

// ArgsEnv holds the positional parameters.
type ArgsEnv interface {
	// Name returns $0.
	Name() string

	// Args returns $1 onward.
	Args() []string

	// Arg returns the nth positional parameter, starting at 1.
	Arg(n int) (string, bool)

	// SetArgs replaces the positional parameters, returning the old ones.
	SetArgs(args []string) []string

	// ShiftArgs drops the first n positional parameters. Shifting more than
	// are present drops all of them.
	ShiftArgs(n int)
}

// ErrStackDepth is returned when a function call would exceed the maximum
// nesting depth.
var ErrStackDepth = errors.New("maximum function nesting level exceeded")

// FuncEnv holds shell function definitions.
type FuncEnv interface {
	LookupFunc(name string) (*syntax.Stmt, bool)
	SetFunc(name string, body *syntax.Stmt)
	UnsetFunc(name string)
}

// FuncFrameEnv tracks function call depth.
type FuncFrameEnv interface {
	// PushFuncFrame records entry into a function. It returns ErrStackDepth,
	// without entering, if the configured maximum depth would be exceeded.
	PushFuncFrame() error

	// PopFuncFrame records leaving a function.
	PopFuncFrame()
}

// InteractiveEnv reports whether commands are being read from a person.
type InteractiveEnv interface {
	IsInteractive() bool
}

// FailureReporter prints diagnostics for errors that don't stop execution.
type FailureReporter interface {
	ReportFailure(err error)
}

// LastStatusEnv holds $?.
type LastStatusEnv interface {
	LastStatus() int
	SetLastStatus(status int)
}
