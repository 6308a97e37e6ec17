package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/josephlewis42/vsh/core/config"
	"github.com/josephlewis42/vsh/core/fdio"
	"github.com/josephlewis42/vsh/core/logger"
	"github.com/josephlewis42/vsh/core/spawn"
	"github.com/josephlewis42/vsh/core/vos"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var colorError = color.New(color.FgRed, color.Bold)

type runOptions struct {
	command     string
	interactive bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [-c script] [file] [args...]",
		Short: "Run a script, or read commands from stdin.",
		Long: `Run executes the script given with -c, the script in file, or the
commands on stdin. Remaining arguments become the positional parameters.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			cmd.SilenceErrors = true

			configuration, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			status, err := runScript(ctx, cmd, configuration, opts, args)
			if err != nil {
				colorError.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", configuration.ShellName, err)
			}
			if status != vos.ExitSuccess {
				return exitStatus(status)
			}
			return nil
		},
	}

	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVarP(&opts.command, "command", "c", "", "script to run in place of a file")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "keep going after errors, on by default when stdin is a terminal")

	return cmd
}

func runScript(ctx context.Context, cmd *cobra.Command, cfg *config.Configuration, opts runOptions, args []string) (int, error) {
	stdin := cmd.InOrStdin()
	script := stdin
	name := cfg.ShellName
	fromStdin := false

	switch {
	case opts.command != "":
		script = strings.NewReader(opts.command)
		if len(args) > 0 {
			name, args = args[0], args[1:]
		}
	case len(args) > 0:
		f, err := os.Open(args[0])
		if err != nil {
			return vos.ExitCmdNotFound, err
		}
		defer f.Close()
		script = f
		name, args = args[0], args[1:]
	default:
		fromStdin = true
	}

	wd, err := os.Getwd()
	if err != nil {
		return vos.ExitError, err
	}

	log := logger.New(cmd.ErrOrStderr(), cfg.Level())
	manager := fdio.NewManager(afero.NewOsFs(), fdio.NewPool(cfg.WorkerPoolSize), log)
	defer manager.Pool().Wait()

	env := vos.New(vos.Options{
		Name:         name,
		Args:         args,
		Environ:      environ(os.Environ(), cfg.DefaultPath),
		Dir:          wd,
		Manager:      manager,
		Logger:       log,
		Interactive:  opts.interactive || cfg.Interactive || (fromStdin && isTerminal(stdin)),
		MaxFuncDepth: cfg.MaxFunctionDepth,
		PipeFail:     cfg.PipeFailAny(),
		Stdin:        stdin,
		Stdout:       cmd.OutOrStdout(),
		Stderr:       cmd.ErrOrStderr(),
	})
	defer env.Close()

	log.Debug("starting shell", "name", name, "interactive", env.IsInteractive(), "workers", manager.Pool().Size())
	return spawn.RunReader(ctx, env, script, name)
}

// environ adds PATH to the host environment if it's missing.
func environ(host []string, defaultPath string) []string {
	for _, kv := range host {
		if strings.HasPrefix(kv, "PATH=") {
			return host
		}
	}
	return append(append([]string(nil), host...), "PATH="+defaultPath)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func init() {
	rootCmd.AddCommand(newRunCmd())
}
