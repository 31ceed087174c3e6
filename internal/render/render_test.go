package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamed0406/probecheck/internal/harness"
	"github.com/hamed0406/probecheck/internal/staticcheck"
)

func intp(i int) *int { return &i }

func sampleReport() *harness.RunReport {
	return &harness.RunReport{
		Target: "http://127.0.0.1:8000",
		Outcomes: []harness.ProbeOutcome{
			{ProbeName: "health", Method: harness.MethodGet, URL: "http://127.0.0.1:8000/api/v1/grads/health/",
				Status: harness.StatusPassed, HTTPStatus: intp(200), Detail: `{"status":"ok"}`, Elapsed: 12 * time.Millisecond},
			{ProbeName: "grade-scales", Method: harness.MethodGet, URL: "http://127.0.0.1:8000/api/v1/grads/grade-scales/",
				Status: harness.StatusFailed, HTTPStatus: intp(500), Detail: "Server\n  Error", Elapsed: 3 * time.Millisecond},
			{ProbeName: "semester-gpas", Method: harness.MethodGet, URL: "http://127.0.0.1:8000/api/v1/grads/semester-gpas/",
				Status: harness.StatusConnectionError, Detail: "could not connect"},
		},
		PassedCount: 1,
		TotalCount:  3,
	}
}

func TestJSON_StableShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleReport()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, false, got["all_passed"])
	assert.Equal(t, float64(1), got["passed_count"])
	assert.Equal(t, float64(3), got["total_count"])

	outcomes := got["outcomes"].([]any)
	require.Len(t, outcomes, 3)
	first := outcomes[0].(map[string]any)
	for _, k := range []string{"probe_name", "method", "url", "status", "http_status", "detail", "elapsed_ms"} {
		assert.Contains(t, first, k)
	}
	assert.Equal(t, "health", first["probe_name"])
	assert.Equal(t, float64(12), first["elapsed_ms"])
	third := outcomes[2].(map[string]any)
	assert.Nil(t, third["http_status"])
	assert.Equal(t, "connection_error", third["status"])
}

func TestConsole_OneLinePerOutcomeAndSummary(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, false, false).Report(sampleReport())
	out := buf.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	// header, 3 outcomes, blank, summary, failing list
	require.Len(t, lines, 7)
	assert.Contains(t, lines[1], "✔ PASS")
	assert.NotContains(t, lines[1], `{"status":"ok"}`)
	assert.Contains(t, lines[2], "✖ FAIL")
	assert.Contains(t, lines[2], "500")
	assert.Contains(t, lines[2], "Server Error")
	assert.Contains(t, lines[3], "✖ CONN")
	assert.Contains(t, lines[3], "---")
	assert.Contains(t, out, "1/3 probes passed")
	assert.Contains(t, out, "failing: grade-scales, semester-gpas")
}

func TestConsole_VerboseShowsPassingDetail(t *testing.T) {
	var buf bytes.Buffer
	r := sampleReport()
	r.Outcomes, r.PassedCount, r.TotalCount = r.Outcomes[:1], 1, 1
	NewConsole(&buf, false, true).Report(r)
	assert.Contains(t, buf.String(), `{"status":"ok"}`)
	assert.Contains(t, buf.String(), "✔ 1/1 probes passed")
}

func TestConsole_ShortensLongDetail(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, false, false).Outcome(harness.ProbeOutcome{
		ProbeName: "x", Method: harness.MethodGet, Status: harness.StatusFailed,
		HTTPStatus: intp(500), Detail: strings.Repeat("é", 500),
	})
	assert.Contains(t, buf.String(), strings.Repeat("é", consoleDetailRunes)+"...")
	assert.NotContains(t, buf.String(), strings.Repeat("é", consoleDetailRunes+1))
}

func TestConsole_Static(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf, false, false).Static("gradesService", []staticcheck.Result{
		{File: "A.jsx", Status: staticcheck.StatusIntegrated},
		{File: "B.jsx", Path: "src/B.jsx", Status: staticcheck.StatusMissing},
	})
	out := buf.String()
	assert.Contains(t, out, "A.jsx references gradesService")
	assert.Contains(t, out, "B.jsx not found (src/B.jsx)")
	assert.Contains(t, out, "✖ 1/2 files integrated")
}
