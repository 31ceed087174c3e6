// Package cli is the probecheck command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/probecheck/internal/config"
	"github.com/hamed0406/probecheck/internal/harness"
	"github.com/hamed0406/probecheck/internal/logging"
)

// errVerdict signals a completed check whose verdict is false. The report
// already says why, so nothing more is printed.
var errVerdict = errors.New("verdict failed")

const version = "1.0.0"

type app struct {
	stdout, stderr io.Writer
	cfg            config.Config
	log            *zap.Logger
}

// NewRootCmd creates the root command writing to stdout and stderr.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, log: zap.NewNop()}

	cmd := &cobra.Command{
		Use:           "probecheck",
		Short:         "Smoke-test an HTTP API against a list of probes",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			a.cfg = cfg
			logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
			if err != nil {
				return err
			}
			a.log = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.AddCommand(newRunCmd(a), newStaticCmd(a))
	return cmd
}

// Run executes the command line and returns the process exit code:
// 0 when every check passed, 1 otherwise.
func Run(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return 0
	}
	if !errors.Is(err, errVerdict) {
		printError(stderr, err)
	}
	return 1
}

// Execute runs the root command with the process arguments and exits.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

func printError(w io.Writer, err error) {
	var ce *harness.ConfigurationError
	if errors.As(err, &ce) {
		fmt.Fprintln(w, "configuration error:")
		for _, p := range ce.Problems {
			fmt.Fprintf(w, "  ✖ %v\n", p)
		}
		return
	}
	fmt.Fprintln(w, "error:", err)
}
