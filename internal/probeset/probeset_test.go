package probeset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamed0406/probecheck/internal/harness"
)

const gradesYAML = `
base_url: http://127.0.0.1:8000/api/v1/grads
probes:
  - name: health
    path: /health/
    access: open
  - name: grade-scales
    method: get
    path: /grade-scales/
    access: protected
    timeout: 2s
  - name: create-midterm
    method: POST
    path: /midterm-grades/
    body:
      student: 42
      marks: 17.5
    accept: [201, 401]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_YAML(t *testing.T) {
	f, err := Load(writeFile(t, "probes.yaml", gradesYAML))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000/api/v1/grads", f.BaseURL)

	probes, err := f.ToProbes()
	require.NoError(t, err)
	require.Len(t, probes, 3)

	assert.Equal(t, harness.Probe{
		Name: "health", Method: harness.MethodGet, Path: "/health/", AcceptedStatuses: []int{200},
	}, probes[0])
	assert.Equal(t, []int{200, 401}, probes[1].AcceptedStatuses)
	assert.Equal(t, 2*time.Second, probes[1].Timeout)
	assert.Equal(t, harness.MethodPost, probes[2].Method)
	assert.Equal(t, []int{201, 401}, probes[2].AcceptedStatuses)
	assert.Equal(t, map[string]any{"student": 42, "marks": 17.5}, probes[2].Body)

	require.NoError(t, harness.Validate(f.BaseURL, probes))
}

func TestLoad_JSON(t *testing.T) {
	const js = `{"probes":[{"name":"frontend","path":"/","accept":[200],"timeout":"5s"}]}`
	f, err := Load(writeFile(t, "probes.json", js))
	require.NoError(t, err)
	probes, err := f.ToProbes()
	require.NoError(t, err)
	assert.Equal(t, "frontend", probes[0].Name)
	assert.Equal(t, 5*time.Second, probes[0].Timeout)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.False(t, harness.IsConfigurationError(err))
}

func TestParse_ShapeErrorsAreConfigurationErrors(t *testing.T) {
	cases := map[string]string{
		"empty document": "",
		"no probes":      "base_url: http://x\nprobes: []\n",
		"unknown key":    "probes:\n  - name: a\n    accept: [200]\n    retries: 3\n",
		"bad method":     "probes:\n  - name: a\n    method: TRACE\n    accept: [200]\n",
		"bad status":     "probes:\n  - name: a\n    accept: [99]\n",
		"bad access":     "probes:\n  - name: a\n    access: private\n",
		"missing name":   "probes:\n  - path: /a\n    accept: [200]\n",
		"bad base url":   "base_url: not a url\nprobes:\n  - name: a\n    accept: [200]\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.True(t, harness.IsConfigurationError(err), "got %v", err)
		})
	}
}

func TestParse_NoProbesWrapsSentinel(t *testing.T) {
	_, err := Parse([]byte("probes: []\n"))
	assert.ErrorIs(t, err, harness.ErrNoProbes)
}

func TestConvert_BadTimeout(t *testing.T) {
	_, err := Convert([]Definition{
		{Name: "a", Accept: []int{200}, Timeout: "soon"},
		{Name: "b", Accept: []int{200}, Timeout: "1m"},
		{Name: "c", Accept: []int{200}, Timeout: "never"},
	})
	var ce *harness.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Len(t, ce.Problems, 2)
}

func TestConvert_NoPolicyLeavesAcceptedEmpty(t *testing.T) {
	probes, err := Convert([]Definition{{Name: "a", Path: "/"}})
	require.NoError(t, err)
	assert.Empty(t, probes[0].AcceptedStatuses)
	assert.ErrorIs(t, harness.Validate(DefaultBaseURL, probes), harness.ErrNoAcceptedStatuses)
}

func TestDefine_RoundTripsThroughProbe(t *testing.T) {
	for _, p := range Default() {
		back, err := Define(p).Probe()
		require.NoError(t, err)
		assert.Equal(t, p, back)
	}
}

func TestDefault(t *testing.T) {
	probes := Default()
	require.Len(t, probes, 7)
	require.NoError(t, harness.Validate(DefaultBaseURL, probes))

	assert.Equal(t, "root", probes[0].Name)
	assert.Equal(t, "/", probes[0].Path)
	for _, code := range []int{200, 302, 401, 404, 500} {
		assert.True(t, probes[0].Accepts(code), "root should accept %d", code)
	}

	assert.Equal(t, "health", probes[1].Name)
	assert.Equal(t, []int{200}, probes[1].AcceptedStatuses)
	assert.Equal(t, "/api/v1/grads/health/", probes[1].Path)
	for _, p := range probes[2:] {
		assert.Equal(t, []int{200, 401}, p.AcceptedStatuses, p.Name)
	}
	assert.Equal(t, "http://127.0.0.1:8000/api/v1/grads/cumulative-gpas/",
		harness.JoinURL(DefaultBaseURL, probes[5].Path))
}

func TestResolve(t *testing.T) {
	base, probes, err := Resolve("")
	require.NoError(t, err)
	assert.Empty(t, base)
	assert.Equal(t, Default(), probes)

	base, probes, err = Resolve(writeFile(t, "probes.yaml", gradesYAML))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000/api/v1/grads", base)
	assert.Len(t, probes, 3)

	_, _, err = Resolve(writeFile(t, "bad.yaml", "probes:\n  - name: x\n    path: /\n    timeout: soon\n"))
	assert.True(t, harness.IsConfigurationError(err))
}

func TestDefinition_HeadersExpandEnvironment(t *testing.T) {
	t.Setenv("GRADES_TOKEN", "s3cret")
	f, err := Parse([]byte(`
probes:
  - name: scales
    path: /grade-scales/
    access: open
    headers:
      Authorization: Bearer ${GRADES_TOKEN}
      X-Request-Source: probecheck
`))
	require.NoError(t, err)
	probes, err := f.ToProbes()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Authorization":    "Bearer s3cret",
		"X-Request-Source": "probecheck",
	}, probes[0].Headers)
}

func TestDefinition_ReachablePolicy(t *testing.T) {
	p, err := Definition{Name: "root", Path: "/", Access: AccessReachable}.Probe()
	require.NoError(t, err)
	assert.True(t, p.Accepts(100))
	assert.True(t, p.Accepts(599))
	assert.False(t, p.Accepts(600))

	d := Define(p)
	assert.Equal(t, AccessReachable, d.Access)
	assert.Empty(t, d.Accept)
}

func TestParse_RejectsUnknownAccess(t *testing.T) {
	_, err := Parse([]byte("probes:\n  - name: a\n    path: /\n    access: anything\n"))
	assert.True(t, harness.IsConfigurationError(err))
}
