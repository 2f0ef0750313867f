// Package report collects validation issues found across client configs,
// the disabled store and presets, and prints them for humans or tools.
package report

import (
	"fmt"
	"strings"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/mcp/validator"
)

// Severity represents the impact of an issue.
type Severity int

const (
	// SeverityError indicates a blocking problem.
	SeverityError Severity = iota
	// SeverityWarning indicates a non-blocking problem.
	SeverityWarning
	// SeverityInfo indicates an informational note.
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return errors.Newf("unknown severity %q", text)
	}
	return nil
}

// Issue is a single problem.
type Issue struct {
	Severity Severity `json:"severity"`
	// Source names what was checked: a client, "store" or "presets".
	Source string `json:"source"`
	// Server is the server the issue concerns, if any.
	Server  string `json:"server,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	// Context holds extra detail such as the file path.
	Context map[string]string `json:"context,omitempty"`
}

// Error implements the error interface.
func (i Issue) Error() string {
	var sb strings.Builder
	sb.WriteString(i.Severity.String())
	sb.WriteString(": ")
	if i.Source != "" {
		sb.WriteString(i.Source)
		sb.WriteString(": ")
	}
	if i.Server != "" {
		fmt.Fprintf(&sb, "server %q: ", i.Server)
	}
	if i.Field != "" {
		fmt.Fprintf(&sb, "field %q: ", i.Field)
	}
	sb.WriteString(i.Message)
	return sb.String()
}

// Result aggregates issues.
type Result struct {
	Issues []Issue `json:"issues"`
}

// Add appends an issue.
func (r *Result) Add(i Issue) {
	r.Issues = append(r.Issues, i)
}

// AddError appends an error about source.
func (r *Result) AddError(source, message string, ctx map[string]string) {
	r.Add(Issue{Severity: SeverityError, Source: source, Message: message, Context: ctx})
}

// AddInfo appends an informational note about source.
func (r *Result) AddInfo(source, message string, ctx map[string]string) {
	r.Add(Issue{Severity: SeverityInfo, Source: source, Message: message, Context: ctx})
}

// AddValidation appends the findings of the server validator.
func (r *Result) AddValidation(source string, errs []*validator.ValidationError, ctx map[string]string) {
	for _, e := range errs {
		sev := SeverityError
		if e.Severity == validator.SeverityWarning {
			sev = SeverityWarning
		}
		r.Add(Issue{
			Severity: sev,
			Source:   source,
			Server:   e.ServerName,
			Field:    e.Field,
			Message:  e.Message,
			Context:  ctx,
		})
	}
}

// HasErrors returns true if any issue has SeverityError.
func (r *Result) HasErrors() bool {
	return len(r.filter(SeverityError)) > 0
}

// HasWarnings returns true if any issue has SeverityWarning.
func (r *Result) HasWarnings() bool {
	return len(r.filter(SeverityWarning)) > 0
}

// Errors returns the issues with SeverityError.
func (r *Result) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the issues with SeverityWarning.
func (r *Result) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

// Infos returns the issues with SeverityInfo.
func (r *Result) Infos() []Issue {
	return r.filter(SeverityInfo)
}

func (r *Result) filter(s Severity) []Issue {
	if r == nil {
		return nil
	}
	var res []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			res = append(res, i)
		}
	}
	return res
}
