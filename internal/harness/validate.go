package harness

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/multierr"
)

// Validate checks a run's input without touching the network. It returns a
// *ConfigurationError listing every problem, or nil.
func Validate(baseURL string, probes []Probe) error {
	var errs error
	if err := validateBaseURL(baseURL); err != nil {
		errs = multierr.Append(errs, err)
	}
	if len(probes) == 0 {
		errs = multierr.Append(errs, ErrNoProbes)
	}

	seen := make(map[string]int, len(probes))
	for i, p := range probes {
		label := fmt.Sprintf("%q", p.Name)
		if p.Name == "" {
			label = fmt.Sprintf("#%d", i+1)
			errs = multierr.Append(errs, fmt.Errorf("probe %s: %w", label, ErrMissingName))
		} else if first, dup := seen[p.Name]; dup {
			errs = multierr.Append(errs, fmt.Errorf("probe %q (#%d, first #%d): %w", p.Name, i+1, first, ErrDuplicateName))
		} else {
			seen[p.Name] = i + 1
		}
		if !p.Method.Valid() {
			errs = multierr.Append(errs, fmt.Errorf("probe %s: %w %q", label, ErrUnsupportedMethod, p.Method))
		}
		if len(p.AcceptedStatuses) == 0 {
			errs = multierr.Append(errs, fmt.Errorf("probe %s: %w", label, ErrNoAcceptedStatuses))
		}
		for _, code := range p.AcceptedStatuses {
			if code < 100 || code > 599 {
				errs = multierr.Append(errs, fmt.Errorf("probe %s: %w, got %d", label, ErrInvalidStatus, code))
			}
		}
		if p.Timeout < 0 {
			errs = multierr.Append(errs, fmt.Errorf("probe %s: %w", label, ErrNegativeTimeout))
		}
	}

	if errs == nil {
		return nil
	}
	return &ConfigurationError{Problems: multierr.Errors(errs)}
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w, got %q", ErrInvalidBaseURL, raw)
	}
	return nil
}

// JoinURL appends path to base with exactly one "/" between them. It is plain
// string composition: "." and ".." segments are left alone.
func JoinURL(base, path string) string {
	base = strings.TrimSpace(base)
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
