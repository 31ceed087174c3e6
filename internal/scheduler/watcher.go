// Package scheduler repeats harness runs on an interval and announces verdict
// changes.
package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/probecheck/internal/harness"
	"github.com/hamed0406/probecheck/internal/notify"
)

// Runner is the part of *harness.Harness the watcher needs.
type Runner interface {
	Run(ctx context.Context, baseURL string, probes []harness.Probe) (*harness.RunReport, error)
}

type WatcherConfig struct {
	Interval time.Duration
	// Cooldown is the minimum gap between two failure alerts while the
	// verdict stays false. Recoveries are never delayed.
	Cooldown time.Duration
}

type Watcher struct {
	Logger   *zap.Logger
	Runner   Runner
	Notifier notify.Notifier
	Target   string
	Probes   []harness.Probe
	// OnReport, when set, receives every completed report.
	OnReport func(*harness.RunReport)

	cfg WatcherConfig
	now func() time.Time

	last       *bool
	lastSentAt time.Time
}

func NewWatcher(
	logger *zap.Logger,
	runner Runner,
	notifier notify.Notifier,
	target string,
	probes []harness.Probe,
	cfg WatcherConfig,
) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Cooldown < 0 {
		cfg.Cooldown = 0
	}
	return &Watcher{
		Logger:   logger,
		Runner:   runner,
		Notifier: notifier,
		Target:   target,
		Probes:   probes,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run does an immediate pass, then one per tick, until ctx is cancelled.
// A configuration error stops the loop since no later pass can succeed.
func (w *Watcher) Run(ctx context.Context) error {
	t := time.NewTicker(w.cfg.Interval)
	defer t.Stop()

	if err := w.runOnce(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("watch_stopped")
			return ctx.Err()
		case <-t.C:
			if err := w.runOnce(ctx); err != nil {
				return err
			}
		}
	}
}

// LastVerdict reports the verdict of the most recent completed pass.
func (w *Watcher) LastVerdict() (verdict, ok bool) {
	if w.last == nil {
		return false, false
	}
	return *w.last, true
}

func (w *Watcher) runOnce(ctx context.Context) error {
	report, err := w.Runner.Run(ctx, w.Target, w.Probes)
	if err != nil {
		if harness.IsConfigurationError(err) {
			return err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// partial reports say nothing about the target
			return nil
		}
		w.Logger.Warn("watch_run_error", zap.Error(err))
		return nil
	}

	if w.OnReport != nil {
		w.OnReport(report)
	}
	w.observe(ctx, report)
	return nil
}

func (w *Watcher) observe(ctx context.Context, report *harness.RunReport) {
	up := harness.Verdict(report)
	now := w.now()

	changed := w.last == nil || *w.last != up
	cooled := w.lastSentAt.IsZero() || now.Sub(w.lastSentAt) >= w.cfg.Cooldown

	failing := !up && (changed || cooled)
	recovered := up && changed && w.last != nil

	w.last = &up
	if !failing && !recovered {
		return
	}
	if recovered {
		w.lastSentAt = time.Time{}
	} else {
		w.lastSentAt = now
	}

	if w.Notifier == nil {
		return
	}
	title, text := notify.Summarize(report)
	if err := w.Notifier.Send(ctx, title, text); err != nil {
		w.Logger.Warn("notify_error", zap.String("title", title), zap.Error(err))
	}
}
