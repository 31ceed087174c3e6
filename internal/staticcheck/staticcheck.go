// Package staticcheck verifies that source files reference an integration
// marker. It is independent of the HTTP probe harness.
package staticcheck

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

type Status string

const (
	StatusIntegrated    Status = "integrated"
	StatusNotIntegrated Status = "not_integrated"
	StatusMissing       Status = "missing"
	StatusError         Status = "error"
)

// Defaults for the grades management front end.
const (
	DefaultDir    = "src/components/GradesManagement"
	DefaultMarker = "gradesService"
)

var DefaultFiles = []string{
	"GradesManagement.jsx",
	"GradeEntryForm.jsx",
	"GPADisplay.jsx",
	"BulkGradeEntry.jsx",
}

var (
	ErrNoMarker = errors.New("marker must not be empty")
	ErrNoFiles  = errors.New("no files to check")
)

// Check looks for Marker in each of Files under Dir.
type Check struct {
	Dir    string
	Marker string
	Files  []string
}

type Result struct {
	File   string
	Path   string
	Status Status
	Err    error
}

func (r Result) OK() bool { return r.Status == StatusIntegrated }

// Run checks every file in order; a failing file never stops the rest.
func (c Check) Run() ([]Result, error) {
	if c.Marker == "" {
		return nil, ErrNoMarker
	}
	if len(c.Files) == 0 {
		return nil, ErrNoFiles
	}
	marker := []byte(c.Marker)
	out := make([]Result, 0, len(c.Files))
	for _, f := range c.Files {
		r := Result{File: f, Path: filepath.Join(c.Dir, f)}
		data, err := os.ReadFile(r.Path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			r.Status = StatusMissing
		case err != nil:
			r.Status, r.Err = StatusError, err
		case bytes.Contains(data, marker):
			r.Status = StatusIntegrated
		default:
			r.Status = StatusNotIntegrated
		}
		out = append(out, r)
	}
	return out, nil
}

// AllOK is true iff every result is integrated.
func AllOK(results []Result) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		if !r.OK() {
			return false
		}
	}
	return true
}
