package harness

import (
	"errors"

	"go.uber.org/multierr"
)

var (
	ErrNoProbes           = errors.New("probe list is empty")
	ErrInvalidBaseURL     = errors.New("base URL must be an absolute http(s) URL")
	ErrNoAcceptedStatuses = errors.New("accepted statuses must not be empty")
	ErrInvalidStatus      = errors.New("accepted status must be between 100 and 599")
	ErrUnsupportedMethod  = errors.New("unsupported method")
	ErrMissingName        = errors.New("probe name is required")
	ErrDuplicateName      = errors.New("probe name is not unique")
	ErrNegativeTimeout    = errors.New("timeout must not be negative")
)

// ConfigurationError rejects harness input before any request is made.
// Problems holds every issue found, not just the first.
type ConfigurationError struct {
	Problems []error
}

func (e *ConfigurationError) Error() string {
	return "invalid probe configuration: " + multierr.Combine(e.Problems...).Error()
}

func (e *ConfigurationError) Unwrap() []error { return e.Problems }

// IsConfigurationError reports whether err is, or wraps, a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
