package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_CollectsEveryProblem(t *testing.T) {
	probes := []Probe{
		{Name: "", Method: MethodGet, AcceptedStatuses: []int{200}},
		{Name: "dup", Method: MethodGet, AcceptedStatuses: []int{200}},
		{Name: "dup", Method: "TRACE", AcceptedStatuses: []int{42}},
		{Name: "neg", Method: MethodGet, AcceptedStatuses: []int{200}, Timeout: -1},
	}
	err := Validate("ftp://example.com", probes)
	require.Error(t, err)

	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Len(t, ce.Problems, 6)
	for _, want := range []error{ErrInvalidBaseURL, ErrMissingName, ErrDuplicateName, ErrUnsupportedMethod, ErrInvalidStatus, ErrNegativeTimeout} {
		assert.ErrorIs(t, err, want)
	}
	assert.Contains(t, err.Error(), "invalid probe configuration")
}

func TestValidate_ProblemLabels(t *testing.T) {
	probes := []Probe{
		{Name: "", Method: MethodGet},
		{Name: "scales", Method: MethodGet},
	}
	err := Validate("http://127.0.0.1:8000", probes)
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "probe #1: probe name is required")
	assert.Contains(t, msg, "probe #1: accepted statuses must not be empty")
	assert.Contains(t, msg, `probe "scales": accepted statuses must not be empty`)
	assert.NotContains(t, msg, `"#1"`)
}

func TestValidate_BaseURL(t *testing.T) {
	ok := []Probe{{Name: "a", Method: MethodGet, AcceptedStatuses: []int{200}}}
	cases := []struct {
		in   string
		want bool
	}{
		{"http://127.0.0.1:8000", true},
		{"https://api.example.com/api/v1/", true},
		{"  http://localhost:5173 ", true},
		{"127.0.0.1:8000", false},
		{"ftp://x", false},
		{"https://", false},
		{"", false},
		{"http://[::1", false},
	}
	for _, c := range cases {
		err := Validate(c.in, ok)
		if c.want {
			assert.NoError(t, err, c.in)
		} else {
			assert.ErrorIs(t, err, ErrInvalidBaseURL, c.in)
		}
	}
}

func TestJoinURL(t *testing.T) {
	cases := []struct {
		base, path, want string
	}{
		{"http://h:8000/api/v1/grads", "/health/", "http://h:8000/api/v1/grads/health/"},
		{"http://h:8000/api/v1/grads/", "/health/", "http://h:8000/api/v1/grads/health/"},
		{"http://h:8000/api/v1/grads/", "health/", "http://h:8000/api/v1/grads/health/"},
		{"http://h:8000/api/v1/grads", "health", "http://h:8000/api/v1/grads/health"},
		{"http://h:8000//", "//x", "http://h:8000/x"},
		{"http://h:8000", "", "http://h:8000"},
		{"http://h:8000", "/", "http://h:8000/"},
		{"http://h:8000/a", "../b", "http://h:8000/a/../b"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, JoinURL(c.base, c.path), "JoinURL(%q, %q)", c.base, c.path)
	}
}

func TestParseMethod(t *testing.T) {
	assert.Equal(t, MethodGet, ParseMethod(""))
	assert.Equal(t, MethodPost, ParseMethod(" post "))
	assert.False(t, ParseMethod("trace").Valid())
	assert.True(t, MethodPatch.HasBody())
	assert.False(t, MethodGet.HasBody())
}
