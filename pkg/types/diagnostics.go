package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// -----------------------------------------------------------------------------
// Diagnostics
// -----------------------------------------------------------------------------
//
// Diagnostics are advisory findings about a policy that is nonetheless
// encodable: a region that can never match because an earlier one covers
// it, a disabled region that still lists rights, and so on. They never
// block a compile; hard failures are *Error values.

// Severity classifies how serious a diagnostic is.
type Severity int

const (
	SevInfo    Severity = iota // Informational (unusual but valid)
	SevWarning                 // Probably not what the author meant
	SevError                   // Would fail compilation
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalJSON renders the severity by name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// MarshalYAML renders the severity by name.
func (s Severity) MarshalYAML() (any, error) {
	return s.String(), nil
}

// Diagnostic codes.
const (
	DiagShadowed        = "shadowed"         // fully covered by an earlier region
	DiagDisabledRights  = "disabled-rights"  // disabled region lists permissions
	DiagNoAccess        = "no-access"        // enabled region grants nothing
	DiagValidationError = "validation-error" // hard failure surfaced as a finding
)

// Diagnostic is a single finding, attributed to a master and region index.
type Diagnostic struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Code     string   `json:"code" yaml:"code"`
	Master   MasterID `json:"master" yaml:"master"`
	Index    int      `json:"index" yaml:"index"`
	Message  string   `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	if d.Index >= 0 {
		return fmt.Sprintf("%s: master %s[%d]: %s (%s)", d.Severity, d.Master, d.Index, d.Message, d.Code)
	}
	return fmt.Sprintf("%s: master %s: %s (%s)", d.Severity, d.Master, d.Message, d.Code)
}

// DiagnosticReport collects diagnostics across a configuration.
type DiagnosticReport struct {
	Diagnostics []Diagnostic `json:"diagnostics" yaml:"diagnostics"`
	Summary     DiagSummary  `json:"summary" yaml:"summary"`

	ByMaster map[MasterID][]Diagnostic `json:"-" yaml:"-"`
}

// DiagSummary provides quick statistics
type DiagSummary struct {
	Errors   int `json:"errors" yaml:"errors"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Info     int `json:"info" yaml:"info"`
}

// NewDiagnosticReport creates an empty report
func NewDiagnosticReport() *DiagnosticReport {
	return &DiagnosticReport{ByMaster: make(map[MasterID][]Diagnostic)}
}

// Add adds a diagnostic to the report and updates indices
func (r *DiagnosticReport) Add(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
	switch d.Severity {
	case SevError:
		r.Summary.Errors++
	case SevWarning:
		r.Summary.Warnings++
	case SevInfo:
		r.Summary.Info++
	}
	r.ByMaster[d.Master] = append(r.ByMaster[d.Master], d)
}

// Finalize orders diagnostics by master then index for stable output.
func (r *DiagnosticReport) Finalize() {
	sort.SliceStable(r.Diagnostics, func(i, j int) bool {
		a, b := r.Diagnostics[i], r.Diagnostics[j]
		if a.Master != b.Master {
			return a.Master < b.Master
		}
		return a.Index < b.Index
	})
}

// HasErrors returns true if any error-level diagnostics were found
func (r *DiagnosticReport) HasErrors() bool {
	return r.Summary.Errors > 0
}

// HasAnyIssues returns true if any diagnostics were found
func (r *DiagnosticReport) HasAnyIssues() bool {
	return len(r.Diagnostics) > 0
}

// FormatText renders one diagnostic per line followed by a summary line.
func (r *DiagnosticReport) FormatText() string {
	var b strings.Builder
	for _, d := range r.Diagnostics {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%d error(s), %d warning(s), %d info\n", r.Summary.Errors, r.Summary.Warnings, r.Summary.Info)
	return b.String()
}
