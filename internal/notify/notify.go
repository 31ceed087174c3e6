// Package notify announces run verdicts to people.
package notify

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hamed0406/probecheck/internal/harness"
)

const slackDetailRunes = 200

type Notifier interface {
	Send(ctx context.Context, title, text string) error
}

// Multi fans a message out to every notifier and returns the first error.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, title, text string) error {
	var firstErr error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, title, text); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Log records notifications in the structured log.
type Log struct {
	Logger *zap.Logger
}

func (l Log) Send(_ context.Context, title, text string) error {
	l.Logger.Warn("notification", zap.String("title", title), zap.String("text", text))
	return nil
}

// FromConfig builds the configured notifiers. The structured log always
// receives a copy.
func FromConfig(slackWebhook string, log *zap.Logger) Notifier {
	m := Multi{Log{Logger: log}}
	if s := NewSlack(slackWebhook); s != nil {
		m = append(m, s)
	}
	return m
}

// Summarize renders a report as a notification title and body.
func Summarize(r *harness.RunReport) (title, text string) {
	if r.AllPassed() {
		title = "🟢 Probes RECOVERED"
	} else {
		title = "🔴 Probes FAILING"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Target: %s\nPassed: %d/%d", r.Target, r.PassedCount, r.TotalCount)
	for _, o := range r.Outcomes {
		if o.Passed() {
			continue
		}
		code := "n/a"
		if o.HTTPStatus != nil {
			code = fmt.Sprintf("%d", *o.HTTPStatus)
		}
		detail := strings.Join(strings.Fields(o.Detail), " ")
		if utf8.RuneCountInString(detail) > slackDetailRunes {
			detail = string([]rune(detail)[:slackDetailRunes]) + "..."
		}
		fmt.Fprintf(&b, "\n- %s %s [%s, HTTP %s] %s", o.Method, o.URL, o.Status, code, detail)
	}
	return title, b.String()
}
