package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/josephlewis42/vsh/core/vos"
	getopt "github.com/pborman/getopt/v2"
)

type SimpleCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a one line description of the command.
	Short string
	// ShowHelp sets whether help is displayed or not.
	// If this is non-nil when Run() is called, then the default help flag isn't
	// added.
	ShowHelp *bool
	// OnOption, if set, is called for every option in the order they appear,
	// for flags where the last one wins.
	OnOption func(opt getopt.Option)

	flags *getopt.Set
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}

	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Run parses args, whose first element is the command name. If flag parsing
// was successful the callback is called.
func (s *SimpleCommand) Run(ctx context.Context, env vos.IOEnv, args []string, callback func() int) int {
	opts := s.Flags()

	// Add help flag if not overridden.
	if s.ShowHelp == nil {
		s.ShowHelp = opts.BoolLong("help", 0, "show this help and exit")
	}

	err := opts.Getopt(args, func(opt getopt.Option) bool {
		if s.OnOption != nil {
			s.OnOption(opt)
		}
		return true
	})

	if err != nil {
		stderr := vos.Stderr(ctx, env)
		fmt.Fprintf(stderr, "%s: %s\n", opts.Program(), err)
		fmt.Fprintf(stderr, "usage: %s\n", s.Use)
		return 2
	}

	if *s.ShowHelp {
		s.PrintHelp(vos.Stdout(ctx, env))
		return 0
	}

	return callback()
}
