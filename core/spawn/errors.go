package spawn

import (
	"context"
	"errors"
	"fmt"

	"github.com/josephlewis42/vsh/core/vos"
	"mvdan.cc/sh/v3/syntax"
)

// ErrUnimplemented is returned for syntax that parses but can't be run.
var ErrUnimplemented = errors.New("unsupported syntax")

func unimplemented(node syntax.Node, what string) error {
	return fmt.Errorf("%w: %s at %s", ErrUnimplemented, what, node.Pos())
}

// CommandErrorKind classifies why a command couldn't run.
type CommandErrorKind int

const (
	NotFound CommandErrorKind = iota + 1
	NotExecutable
	Io
)

// CommandError is returned when resolving or starting a command fails.
type CommandError struct {
	Kind CommandErrorKind
	Name string
	Err  error
}

func (e *CommandError) Error() string {
	switch e.Kind {
	case NotFound:
		return fmt.Sprintf("%s: command not found", e.Name)
	case NotExecutable:
		return fmt.Sprintf("%s: command not executable", e.Name)
	default:
		return fmt.Sprintf("%s: %v", e.Name, e.Err)
	}
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Fatal is always false, the command fails but the script goes on.
func (*CommandError) Fatal() bool {
	return false
}

// ExitStatus is the status a shell reports for the failure.
func (e *CommandError) ExitStatus() int {
	switch e.Kind {
	case NotFound:
		return vos.ExitCmdNotFound
	case NotExecutable:
		return vos.ExitCmdNotExecutable
	default:
		return vos.ExitError
	}
}

// IsFatal reports whether err must stop the enclosing script. Errors that
// don't say otherwise through a Fatal method are fatal, as is anything
// caused by a cancelled context.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var classified interface{ Fatal() bool }
	if errors.As(err, &classified) {
		return classified.Fatal()
	}
	return true
}

// ExitStatusOf returns the exit status a failure with err maps to.
func ExitStatusOf(err error) int {
	if err == nil {
		return vos.ExitSuccess
	}

	var withStatus interface{ ExitStatus() int }
	if errors.As(err, &withStatus) {
		return withStatus.ExitStatus()
	}
	return vos.ExitError
}

// swallow reports non-fatal errors and converts them to an exit status.
// Fatal errors are passed through untouched.
func swallow(env vos.FailureReporter, status int, err error) (int, error) {
	if err == nil || IsFatal(err) {
		return status, err
	}
	env.ReportFailure(err)
	return ExitStatusOf(err), nil
}

// exitSubshell ends a forked environment: anything but cancellation is
// reported and becomes the status, so the caller keeps running.
func exitSubshell(env vos.FailureReporter, status int, err error) (int, error) {
	if err == nil {
		return status, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status, err
	}
	env.ReportFailure(err)
	return ExitStatusOf(err), nil
}
