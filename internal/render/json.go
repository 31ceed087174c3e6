// Package render writes run reports for people and machines.
package render

import (
	"encoding/json"
	"io"
	"time"

	"github.com/hamed0406/probecheck/internal/harness"
)

type OutcomeJSON struct {
	ProbeName  string         `json:"probe_name"`
	Method     string         `json:"method"`
	URL        string         `json:"url"`
	Status     harness.Status `json:"status"`
	HTTPStatus *int           `json:"http_status"`
	Detail     string         `json:"detail"`
	ElapsedMS  float64        `json:"elapsed_ms"`
}

type ReportJSON struct {
	Target      string        `json:"target"`
	AllPassed   bool          `json:"all_passed"`
	PassedCount int           `json:"passed_count"`
	TotalCount  int           `json:"total_count"`
	Outcomes    []OutcomeJSON `json:"outcomes"`
}

// NewReportJSON maps a report onto its wire shape. Outcome order is kept.
func NewReportJSON(r *harness.RunReport) ReportJSON {
	out := ReportJSON{
		Target:      r.Target,
		AllPassed:   r.AllPassed(),
		PassedCount: r.PassedCount,
		TotalCount:  r.TotalCount,
		Outcomes:    make([]OutcomeJSON, 0, len(r.Outcomes)),
	}
	for _, o := range r.Outcomes {
		out.Outcomes = append(out.Outcomes, OutcomeJSON{
			ProbeName:  o.ProbeName,
			Method:     string(o.Method),
			URL:        o.URL,
			Status:     o.Status,
			HTTPStatus: o.HTTPStatus,
			Detail:     o.Detail,
			ElapsedMS:  millis(o.Elapsed),
		})
	}
	return out
}

func JSON(w io.Writer, r *harness.RunReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewReportJSON(r))
}

func millis(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
