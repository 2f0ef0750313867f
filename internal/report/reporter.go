package report

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/thoreinstein/mcpswitch/internal/errors"
)

// Format specifies the output format for reports.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// Reporter formats and writes results.
type Reporter struct {
	out    io.Writer
	format Format
}

// NewReporter creates a new Reporter.
func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{
		out:    out,
		format: format,
	}
}

// Report writes the result to the output.
func (r *Reporter) Report(result *Result) error {
	if result == nil {
		return nil
	}

	switch r.format {
	case FormatJSON:
		return r.reportJSON(result)
	default:
		return r.reportText(result)
	}
}

func (r *Reporter) reportJSON(result *Result) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(result), "encoding JSON report")
}

func (r *Reporter) reportText(result *Result) error {
	for _, info := range result.Infos() {
		r.printIssue(info, color.FgHiBlack)
	}

	errs := result.Errors()
	warnings := result.Warnings()

	if len(errs) == 0 && len(warnings) == 0 {
		fmt.Fprintln(r.out, color.GreenString("✓ Validation passed"))
		return nil
	}

	var summary []string
	if len(errs) > 0 {
		summary = append(summary, color.RedString("%d error(s)", len(errs)))
	}
	if len(warnings) > 0 {
		summary = append(summary, color.YellowString("%d warning(s)", len(warnings)))
	}
	fmt.Fprintf(r.out, "Validation failed: %s\n\n", strings.Join(summary, ", "))

	if len(errs) > 0 {
		fmt.Fprintln(r.out, "Errors:")
		for _, e := range errs {
			r.printIssue(e, color.FgRed)
		}
		fmt.Fprintln(r.out)
	}

	if len(warnings) > 0 {
		fmt.Fprintln(r.out, "Warnings:")
		for _, w := range warnings {
			r.printIssue(w, color.FgYellow)
		}
		fmt.Fprintln(r.out)
	}

	return nil
}

// printIssue writes "  • source/server.field: message (k=v)".
func (r *Reporter) printIssue(i Issue, c color.Attribute) {
	printer := color.New(c).SprintFunc()

	var sb strings.Builder
	sb.WriteString("  • ")

	label := i.Source
	if i.Server != "" {
		label += "/" + i.Server
	}
	if i.Field != "" {
		label += "." + i.Field
	}
	if label != "" {
		sb.WriteString(printer(label))
		sb.WriteString(": ")
	}

	sb.WriteString(i.Message)

	if len(i.Context) > 0 {
		parts := make([]string, 0, len(i.Context))
		for _, k := range slices.Sorted(maps.Keys(i.Context)) {
			parts = append(parts, fmt.Sprintf("%s=%s", k, i.Context[k]))
		}
		sb.WriteString(" ")
		sb.WriteString(color.New(color.FgHiBlack).Sprintf("(%s)", strings.Join(parts, ", ")))
	}

	fmt.Fprintln(r.out, sb.String())
}
