// Package harness runs a declarative list of HTTP probes against one target
// and classifies every result into a RunReport.
package harness

import (
	"strings"
	"time"
)

// Method is the HTTP verb a probe issues.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodHead   Method = "HEAD"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

// ParseMethod upper-cases m; an empty method means GET.
func ParseMethod(m string) Method {
	m = strings.ToUpper(strings.TrimSpace(m))
	if m == "" {
		return MethodGet
	}
	return Method(m)
}

// Valid reports whether the harness knows how to issue m.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodHead, MethodPut, MethodPatch, MethodDelete:
		return true
	}
	return false
}

// HasBody reports whether a probe body is sent with m.
func (m Method) HasBody() bool {
	return m == MethodPost || m == MethodPut || m == MethodPatch
}

// Probe describes one check.
type Probe struct {
	Name             string
	Method           Method
	Path             string            // relative to the run's base URL
	Headers          map[string]string // extra request headers
	Body             any               // JSON-encoded by the transport; only sent for POST/PUT/PATCH
	AcceptedStatuses []int
	Timeout          time.Duration // zero means Options.DefaultTimeout
}

// Accepts reports whether code is one of the probe's accepted statuses.
func (p Probe) Accepts(code int) bool {
	for _, c := range p.AcceptedStatuses {
		if c == code {
			return true
		}
	}
	return false
}

// Status is the classification of one probe execution.
type Status string

const (
	StatusPassed          Status = "passed"
	StatusFailed          Status = "failed"
	StatusConnectionError Status = "connection_error"
	StatusTimeout         Status = "timeout"
	StatusUnexpectedError Status = "unexpected_error"
)

// ProbeOutcome is the result of executing one Probe.
type ProbeOutcome struct {
	ProbeName  string
	Method     Method
	URL        string
	Status     Status
	HTTPStatus *int // nil when no response was received
	Detail     string
	Elapsed    time.Duration
}

// Passed is shorthand for o.Status == StatusPassed.
func (o ProbeOutcome) Passed() bool { return o.Status == StatusPassed }

// RunReport aggregates the outcomes of one Run in execution order.
type RunReport struct {
	Target      string
	Outcomes    []ProbeOutcome
	PassedCount int
	TotalCount  int
}

func (r *RunReport) add(o ProbeOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.TotalCount++
	if o.Passed() {
		r.PassedCount++
	}
}

// AllPassed is true iff the report has outcomes and every one of them passed.
func (r *RunReport) AllPassed() bool {
	return r != nil && r.TotalCount > 0 && r.PassedCount == r.TotalCount
}

// FailedCount is the number of outcomes that did not pass.
func (r *RunReport) FailedCount() int {
	if r == nil {
		return 0
	}
	return r.TotalCount - r.PassedCount
}

// Verdict is the single pass/fail summary of a report.
func Verdict(r *RunReport) bool {
	return r.AllPassed()
}
