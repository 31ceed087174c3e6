package probeset

import "github.com/hamed0406/probecheck/internal/harness"

const (
	DefaultBaseURL   = "http://127.0.0.1:8000"
	DefaultAPIPrefix = "/api/v1/grads"
)

var protectedEndpoints = []struct{ name, path string }{
	{"grade-scales", "/grade-scales/"},
	{"midterm-grades", "/midterm-grades/"},
	{"semester-grades", "/semester-grades/"},
	{"semester-gpas", "/semester-gpas/"},
	{"cumulative-gpas", "/cumulative-gpas/"},
}

// Default is the grades API checklist: the server root must answer at all,
// the health endpoint must answer 200, and the remaining endpoints answer
// 200 or 401 depending on credentials.
func Default() []harness.Probe {
	probes := []harness.Probe{{
		Name:             "root",
		Method:           harness.MethodGet,
		Path:             "/",
		AcceptedStatuses: anyStatus(),
	}, {
		Name:             "health",
		Method:           harness.MethodGet,
		Path:             DefaultAPIPrefix + "/health/",
		AcceptedStatuses: []int{200},
	}}
	for _, e := range protectedEndpoints {
		probes = append(probes, harness.Probe{
			Name:             e.name,
			Method:           harness.MethodGet,
			Path:             DefaultAPIPrefix + e.path,
			AcceptedStatuses: []int{200, 401},
		})
	}
	return probes
}
