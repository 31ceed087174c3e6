package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/hamed0406/probecheck/internal/harness"
	"github.com/hamed0406/probecheck/internal/staticcheck"
)

const consoleDetailRunes = 160

// Console prints one line per outcome followed by a summary.
type Console struct {
	w       io.Writer
	verbose bool

	ok, bad, warn, muted, bold lipgloss.Style
}

// NewConsole styles output for w. Colour is dropped when w is not a terminal
// or color is false. Verbose prints details of passing probes and does not
// shorten details.
func NewConsole(w io.Writer, color, verbose bool) *Console {
	c := &Console{w: w, verbose: verbose}
	r := lipgloss.NewRenderer(w)
	c.ok, c.bad, c.warn, c.muted, c.bold = r.NewStyle(), r.NewStyle(), r.NewStyle(), r.NewStyle(), r.NewStyle()
	if color {
		c.ok = c.ok.Foreground(lipgloss.Color("2"))
		c.bad = c.bad.Foreground(lipgloss.Color("1"))
		c.warn = c.warn.Foreground(lipgloss.Color("3"))
		c.muted = c.muted.Foreground(lipgloss.Color("8"))
		c.bold = c.bold.Bold(true)
	}
	return c
}

func (c *Console) label(s harness.Status) string {
	switch s {
	case harness.StatusPassed:
		return c.ok.Render("✔ PASS")
	case harness.StatusFailed:
		return c.bad.Render("✖ FAIL")
	case harness.StatusConnectionError:
		return c.bad.Render("✖ CONN")
	case harness.StatusTimeout:
		return c.warn.Render("⚠ TIME")
	}
	return c.bad.Render("✖ ERR ")
}

// Outcome writes a single line for o.
func (c *Console) Outcome(o harness.ProbeOutcome) {
	code := "---"
	if o.HTTPStatus != nil {
		code = fmt.Sprintf("%d", *o.HTTPStatus)
	}
	line := fmt.Sprintf("%s  %-18s %-6s %s  %s  %s",
		c.label(o.Status), o.ProbeName, o.Method, o.URL, code,
		c.muted.Render(fmt.Sprintf("%.0fms", millis(o.Elapsed))))
	if o.Detail != "" && (!o.Passed() || c.verbose) {
		line += "  " + c.detail(o.Detail)
	}
	fmt.Fprintln(c.w, line)
}

func (c *Console) detail(d string) string {
	d = strings.Join(strings.Fields(d), " ")
	if !c.verbose && utf8.RuneCountInString(d) > consoleDetailRunes {
		d = string([]rune(d)[:consoleDetailRunes]) + "..."
	}
	return c.muted.Render(d)
}

// Report writes every outcome and the summary.
func (c *Console) Report(r *harness.RunReport) {
	fmt.Fprintln(c.w, c.bold.Render("Probing "+r.Target))
	for _, o := range r.Outcomes {
		c.Outcome(o)
	}
	c.Summary(r)
}

func (c *Console) Summary(r *harness.RunReport) {
	fmt.Fprintln(c.w)
	summary := fmt.Sprintf("%d/%d probes passed", r.PassedCount, r.TotalCount)
	if r.AllPassed() {
		fmt.Fprintln(c.w, c.ok.Render("✔ "+summary))
		return
	}
	var failed []string
	for _, o := range r.Outcomes {
		if !o.Passed() {
			failed = append(failed, o.ProbeName)
		}
	}
	fmt.Fprintln(c.w, c.bad.Render("✖ "+summary))
	if len(failed) > 0 {
		fmt.Fprintln(c.w, c.muted.Render("  failing: "+strings.Join(failed, ", ")))
	}
}

// Static writes the results of a static integration check.
func (c *Console) Static(marker string, results []staticcheck.Result) {
	passed := 0
	for _, r := range results {
		switch r.Status {
		case staticcheck.StatusIntegrated:
			passed++
			fmt.Fprintf(c.w, "%s  %s references %s\n", c.ok.Render("✔"), r.File, marker)
		case staticcheck.StatusNotIntegrated:
			fmt.Fprintf(c.w, "%s  %s does not reference %s\n", c.bad.Render("✖"), r.File, marker)
		case staticcheck.StatusMissing:
			fmt.Fprintf(c.w, "%s  %s not found (%s)\n", c.bad.Render("✖"), r.File, r.Path)
		default:
			fmt.Fprintf(c.w, "%s  %s: %v\n", c.bad.Render("✖"), r.File, r.Err)
		}
	}
	fmt.Fprintln(c.w)
	summary := fmt.Sprintf("%d/%d files integrated", passed, len(results))
	if staticcheck.AllOK(results) {
		fmt.Fprintln(c.w, c.ok.Render("✔ "+summary))
	} else {
		fmt.Fprintln(c.w, c.bad.Render("✖ "+summary))
	}
}
