// Package vos defines the capabilities an execution environment offers and
// a default environment, ShellEnv, that implements all of them.
//
// Consumers take the narrowest capability set that serves them, so a
// restorer that only touches variables can run against anything with a
// VarEnv.
package vos

import (
	"log/slog"

	"github.com/spf13/afero"
)

// Exit statuses with a fixed meaning.
const (
	ExitSuccess          = 0
	ExitError            = 1
	ExitCmdNotExecutable = 126
	ExitCmdNotFound      = 127
)

// FSEnv exposes the filesystem an environment resolves paths on.
type FSEnv interface {
	FS() afero.Fs
}

// Env is the full environment a shell session runs against.
type Env interface {
	VarEnv
	VarLister
	WorkingDirEnv
	ArgsEnv
	FuncEnv
	FuncFrameEnv
	InteractiveEnv
	FailureReporter
	LastStatusEnv
	FdEnv
	OpenerEnv
	IOEnv
	FSEnv

	// Fork returns an isolated copy of the environment. Changes made to the
	// copy are never seen by the original.
	Fork() Env

	// Close releases every descriptor the environment holds.
	Close() error

	Executor() Executor
	Logger() *slog.Logger

	// PipeFail reports whether a pipeline fails when any member fails rather
	// than only when the last one does.
	PipeFail() bool
}
