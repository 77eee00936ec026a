package builder

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrBuildFailed is wrapped by Report.Err when a build produced errors.
var ErrBuildFailed = errors.New("build failed")

// Severity grades a diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is a problem found while building, tied to a source location.
type Diagnostic struct {
	File     string   `json:"file" yaml:"file"`
	Line     int      `json:"line,omitempty" yaml:"line,omitempty"`
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", d.File, d.Line, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.File, d.Severity, d.Message)
}

// Report summarises one build.
type Report struct {
	// Pages are the written output files.
	Pages       []string
	Symbols     int
	Diagnostics []Diagnostic
}

// Errors returns the error-severity diagnostics.
func (r *Report) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns the warning-severity diagnostics.
func (r *Report) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}

// Err returns a non-nil error when any diagnostic is an error.
func (r *Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d error(s), first: %s", ErrBuildFailed, len(errs), errs[0])
}

func (r *Report) add(log logrus.FieldLogger, d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
	entry := log.WithFields(logrus.Fields{"file": d.File, "line": d.Line})
	if d.Severity == SeverityError {
		entry.Error(d.Message)
		return
	}
	entry.Warn(d.Message)
}
