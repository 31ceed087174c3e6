// Package probeset turns probe definition files into harness probes.
package probeset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/probecheck/internal/harness"
)

// Access policies usable instead of an explicit accept list.
const (
	AccessOpen      = "open"      // 200
	AccessProtected = "protected" // 200 or 401
	AccessReachable = "reachable" // any response at all
)

// File is the on-disk probe definition format. JSON files parse too.
type File struct {
	BaseURL string       `yaml:"base_url" json:"base_url,omitempty" validate:"omitempty,url"`
	Probes  []Definition `yaml:"probes" json:"probes" validate:"required,min=1,dive"`
}

// Definition is one probe as written by a user.
type Definition struct {
	Name   string `yaml:"name" json:"name" validate:"required"`
	Method string `yaml:"method,omitempty" json:"method,omitempty" validate:"omitempty,oneof=GET POST HEAD PUT PATCH DELETE get post head put patch delete"`
	Path   string `yaml:"path" json:"path"`
	// Headers are sent with the request. Values may reference environment
	// variables, e.g. "Bearer ${GRADES_TOKEN}".
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty" validate:"omitempty,dive,keys,required,endkeys"`
	Body    any               `yaml:"body,omitempty" json:"body,omitempty"`
	Accept  []int             `yaml:"accept,omitempty" json:"accept,omitempty" validate:"omitempty,dive,min=100,max=599"`
	Access  string            `yaml:"access,omitempty" json:"access,omitempty" validate:"omitempty,oneof=open protected reachable"`
	Timeout string            `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads and validates a probe definition file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read probe file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML (or JSON) probe definitions. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &harness.ConfigurationError{Problems: []error{harness.ErrNoProbes}}
		}
		return nil, &harness.ConfigurationError{Problems: []error{fmt.Errorf("parse probe file: %w", err)}}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the definitions' shape. Semantic checks such as duplicate
// names are left to harness.Validate.
func (f *File) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return &harness.ConfigurationError{Problems: []error{err}}
	}
	problems := make([]error, 0, len(ves))
	for _, fe := range ves {
		problems = append(problems, fieldProblem(fe))
	}
	return &harness.ConfigurationError{Problems: problems}
}

func fieldProblem(fe validator.FieldError) error {
	field := strings.TrimPrefix(fe.Namespace(), "File.")
	switch fe.Tag() {
	case "required":
		if fe.Field() == "probes" {
			return fmt.Errorf("%s: %w", field, harness.ErrNoProbes)
		}
		return fmt.Errorf("%s is required", field)
	case "min":
		if fe.Field() == "probes" {
			return fmt.Errorf("%s: %w", field, harness.ErrNoProbes)
		}
		return fmt.Errorf("%s: %w, got %v", field, harness.ErrInvalidStatus, fe.Value())
	case "max":
		return fmt.Errorf("%s: %w, got %v", field, harness.ErrInvalidStatus, fe.Value())
	case "oneof":
		return fmt.Errorf("%s: %v is not one of [%s]", field, fe.Value(), fe.Param())
	case "url":
		return fmt.Errorf("%s: %w, got %q", field, harness.ErrInvalidBaseURL, fe.Value())
	}
	return fmt.Errorf("%s: failed %q rule", field, fe.Tag())
}

// ToProbes converts the definitions, keeping their order.
func (f *File) ToProbes() ([]harness.Probe, error) {
	return Convert(f.Probes)
}

// Convert turns definitions into probes, collecting every conversion problem.
func Convert(defs []Definition) ([]harness.Probe, error) {
	var errs error
	out := make([]harness.Probe, 0, len(defs))
	for _, d := range defs {
		p, err := d.Probe()
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out = append(out, p)
	}
	if errs != nil {
		return nil, &harness.ConfigurationError{Problems: multierr.Errors(errs)}
	}
	return out, nil
}

// Probe converts d. An explicit accept list wins over the access policy;
// with neither, the probe has no accepted statuses and the harness rejects it.
func (d Definition) Probe() (harness.Probe, error) {
	p := harness.Probe{
		Name:   d.Name,
		Method: harness.ParseMethod(d.Method),
		Path:   d.Path,
		Body:   d.Body,
	}
	switch {
	case len(d.Accept) > 0:
		p.AcceptedStatuses = append([]int(nil), d.Accept...)
	case d.Access == AccessOpen:
		p.AcceptedStatuses = []int{200}
	case d.Access == AccessProtected:
		p.AcceptedStatuses = []int{200, 401}
	case d.Access == AccessReachable:
		p.AcceptedStatuses = anyStatus()
	}
	if len(d.Headers) > 0 {
		p.Headers = make(map[string]string, len(d.Headers))
		for k, v := range d.Headers {
			p.Headers[k] = os.ExpandEnv(v)
		}
	}
	if d.Timeout != "" {
		to, err := time.ParseDuration(d.Timeout)
		if err != nil {
			return harness.Probe{}, fmt.Errorf("probe %q: bad timeout %q: %w", d.Name, d.Timeout, err)
		}
		p.Timeout = to
	}
	return p, nil
}

// Define is the inverse of Definition.Probe.
func Define(p harness.Probe) Definition {
	d := Definition{
		Name:   p.Name,
		Method: string(p.Method),
		Path:   p.Path,
		Body:   p.Body,
	}
	if isAnyStatus(p.AcceptedStatuses) {
		d.Access = AccessReachable
	} else {
		d.Accept = append([]int(nil), p.AcceptedStatuses...)
	}
	if len(p.Headers) > 0 {
		d.Headers = make(map[string]string, len(p.Headers))
		for k, v := range p.Headers {
			d.Headers[k] = v
		}
	}
	if p.Timeout > 0 {
		d.Timeout = p.Timeout.String()
	}
	return d
}

// anyStatus is every status a server can answer with.
func anyStatus() []int {
	codes := make([]int, 0, 500)
	for c := 100; c <= 599; c++ {
		codes = append(codes, c)
	}
	return codes
}

func isAnyStatus(codes []int) bool {
	if len(codes) != 500 {
		return false
	}
	for i, c := range codes {
		if c != 100+i {
			return false
		}
	}
	return true
}

// Resolve returns the probes defined at path, or the built-in set when path
// is empty. baseURL is the file's base_url and may be empty.
func Resolve(path string) (baseURL string, probes []harness.Probe, err error) {
	if strings.TrimSpace(path) == "" {
		return "", Default(), nil
	}
	f, err := Load(path)
	if err != nil {
		return "", nil, err
	}
	probes, err = f.ToProbes()
	if err != nil {
		return "", nil, err
	}
	return f.BaseURL, probes, nil
}
