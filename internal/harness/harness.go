package harness

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultTimeout        = 5 * time.Second
	DefaultMaxDetailBytes = 2048
)

// Options tune a Harness. Zero values fall back to the defaults above.
type Options struct {
	DefaultTimeout time.Duration
	MaxDetailBytes int
}

// Harness executes probes one after another through a Transport. It keeps no
// state between runs, so one Harness may serve many callers.
type Harness struct {
	transport Transport
	log       *zap.Logger
	opts      Options
}

func New(t Transport, log *zap.Logger, opts Options) *Harness {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = DefaultTimeout
	}
	if opts.MaxDetailBytes <= 0 {
		opts.MaxDetailBytes = DefaultMaxDetailBytes
	}
	return &Harness{transport: t, log: log, opts: opts}
}

// Run executes probes in order against baseURL and returns one outcome per
// probe. Invalid input yields a *ConfigurationError and no requests. Probe
// failures are recorded in the report, never returned as errors. ctx is only
// consulted between probes: a probe in flight runs to its own timeout, and
// the outcomes recorded so far are returned with ctx's error.
func (h *Harness) Run(ctx context.Context, baseURL string, probes []Probe) (*RunReport, error) {
	if err := Validate(baseURL, probes); err != nil {
		return nil, err
	}

	report := &RunReport{
		Target:   strings.TrimSpace(baseURL),
		Outcomes: make([]ProbeOutcome, 0, len(probes)),
	}
	for i, p := range probes {
		if err := ctx.Err(); err != nil {
			h.log.Warn("run_cancelled",
				zap.String("target", report.Target),
				zap.Int("completed", i),
				zap.Int("total", len(probes)),
			)
			return report, fmt.Errorf("run cancelled after %d of %d probes: %w", i, len(probes), err)
		}

		out := h.execute(ctx, report.Target, p)
		report.add(out)

		fields := []zap.Field{
			zap.String("probe", out.ProbeName),
			zap.String("method", string(out.Method)),
			zap.String("url", out.URL),
			zap.String("status", string(out.Status)),
			zap.Duration("elapsed", out.Elapsed),
		}
		if out.HTTPStatus != nil {
			fields = append(fields, zap.Int("http_status", *out.HTTPStatus))
		}
		if out.Passed() {
			h.log.Debug("probe_outcome", fields...)
		} else {
			h.log.Info("probe_outcome", append(fields, zap.String("detail", out.Detail))...)
		}
	}

	h.log.Info("run_finished",
		zap.String("target", report.Target),
		zap.Int("passed", report.PassedCount),
		zap.Int("total", report.TotalCount),
		zap.Bool("verdict", report.AllPassed()),
	)
	return report, nil
}

func (h *Harness) execute(ctx context.Context, baseURL string, p Probe) ProbeOutcome {
	timeout := p.Timeout
	if timeout == 0 {
		timeout = h.opts.DefaultTimeout
	}
	req := Request{
		Method:  p.Method,
		URL:     JoinURL(baseURL, p.Path),
		Headers: p.Headers,
		Timeout: timeout,
	}
	if p.Method.HasBody() {
		req.Body = p.Body
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	start := time.Now()
	resp, err := h.do(pctx, req)
	elapsed := time.Since(start)
	if elapsed < 0 {
		elapsed = 0
	}

	out := ProbeOutcome{
		ProbeName: p.Name,
		Method:    p.Method,
		URL:       req.URL,
		Elapsed:   elapsed,
	}
	switch {
	case err == nil && resp == nil:
		out.Status = StatusUnexpectedError
		out.Detail = "transport returned neither a response nor an error"
	case err == nil:
		code := resp.StatusCode
		out.HTTPStatus = &code
		out.Detail = truncate(resp.Body, h.opts.MaxDetailBytes)
		if p.Accepts(code) {
			out.Status = StatusPassed
		} else {
			out.Status = StatusFailed
			if out.Detail == "" {
				out.Detail = fmt.Sprintf("unexpected status %d", code)
			}
		}
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		out.Status = StatusTimeout
		out.Detail = fmt.Sprintf("no response within %s: %v", timeout, err)
	case errors.Is(err, ErrConnection):
		out.Status = StatusConnectionError
		out.Detail = fmt.Sprintf("could not connect to %s: %v", req.URL, err)
	default:
		out.Status = StatusUnexpectedError
		out.Detail = truncate([]byte(err.Error()), h.opts.MaxDetailBytes)
	}
	return out
}

// do shields the run from a panicking transport.
func (h *Harness) do(ctx context.Context, req Request) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, fmt.Errorf("transport panic: %v", r)
		}
	}()
	return h.transport.Do(ctx, req)
}

func truncate(b []byte, limit int) string {
	if len(b) > limit {
		b = b[:limit]
	}
	return strings.ToValidUTF8(string(b), "")
}
