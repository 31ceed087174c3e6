package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/probecheck/internal/harness"
	"github.com/hamed0406/probecheck/internal/notify"
	"github.com/hamed0406/probecheck/internal/probeset"
	"github.com/hamed0406/probecheck/internal/render"
	"github.com/hamed0406/probecheck/internal/scheduler"
	"github.com/hamed0406/probecheck/internal/transport"
)

type runFlags struct {
	target  string
	file    string
	json    bool
	noColor bool
	verbose bool
	timeout time.Duration
	watch   time.Duration
}

func newRunCmd(a *app) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the probes once against the target and report",
		Long: `Run sends each probe to the target in order and prints one line per
outcome. The exit code is 0 only when every probe got an accepted status.

The target is taken from --target, then the probe file's base_url, then
TARGET_BASE_URL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), cmd, f)
		},
	}
	cmd.Flags().StringVarP(&f.target, "target", "t", "", "Base URL of the service under test")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Probe definition file (YAML or JSON); defaults to the built-in grades checklist")
	cmd.Flags().BoolVar(&f.json, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Show full details, including for passing probes")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Default per-probe timeout (overrides PROBE_TIMEOUT_MS)")
	cmd.Flags().DurationVar(&f.watch, "watch", 0, "Re-run on this interval until interrupted")
	return cmd
}

func (a *app) run(ctx context.Context, cmd *cobra.Command, f runFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	file := f.file
	if file == "" {
		file = a.cfg.ProbeFile
	}
	fileBase, probes, err := probeset.Resolve(file)
	if err != nil {
		return err
	}

	target := a.cfg.TargetBaseURL
	if fileBase != "" {
		target = fileBase
	}
	if cmd.Flags().Changed("target") {
		target = strings.TrimSpace(f.target)
	}

	timeout := a.cfg.ProbeTimeout
	if f.timeout > 0 {
		timeout = f.timeout
	}
	h := harness.New(transport.NewHTTPTransport(), a.log, harness.Options{
		DefaultTimeout: timeout,
		MaxDetailBytes: a.cfg.MaxDetailBytes,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	console := render.NewConsole(a.stdout, !f.noColor, f.verbose)
	show := func(r *harness.RunReport) {
		if f.json {
			if err := render.JSON(a.stdout, r); err != nil {
				a.log.Warn("render_error", zap.Error(err))
			}
			return
		}
		console.Report(r)
	}

	if f.watch > 0 {
		return a.watch(ctx, h, target, probes, f.watch, show)
	}

	report, err := h.Run(ctx, target, probes)
	if report != nil {
		show(report)
	}
	if err != nil {
		return err
	}
	if !harness.Verdict(report) {
		return errVerdict
	}
	return nil
}

func (a *app) watch(ctx context.Context, h *harness.Harness, target string, probes []harness.Probe, every time.Duration, show func(*harness.RunReport)) error {
	w := scheduler.NewWatcher(a.log, h, notify.FromConfig(a.cfg.SlackWebhookURL, a.log), target, probes, scheduler.WatcherConfig{
		Interval: every,
		Cooldown: a.cfg.WatchCooldown,
	})
	w.OnReport = show

	err := w.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if verdict, ok := w.LastVerdict(); !ok || !verdict {
		return errVerdict
	}
	return nil
}
