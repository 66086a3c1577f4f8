//go:build linux

package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

const (
	formatJSON  = "json"
	formatTable = "table"
	formatYAML  = "yaml"
	valueNA     = "N/A"
)

// errUnsupportedFormat is returned when the requested output format is not supported.
var errUnsupportedFormat = errors.New("unsupported output format")

// checkReport is the outcome of a capability probe.
type checkReport struct {
	Family    string `json:"family"          yaml:"family"`
	Variant   string `json:"variant"         yaml:"variant"`
	Address   string `json:"address"         yaml:"address"`
	Supported bool   `json:"supported"       yaml:"supported"`
	Op        string `json:"op,omitempty"    yaml:"op,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// formatReport renders a check report in the requested format.
func formatReport(r checkReport, format string) (string, error) {
	switch format {
	case formatJSON:
		return formatReportJSON(r)
	case formatYAML:
		return formatReportYAML(r)
	case formatTable:
		return formatReportTable(r)
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

func formatReportTable(r checkReport) (string, error) {
	var buf strings.Builder
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FAMILY\tVARIANT\tADDRESS\tSUPPORTED\tFAILED-OP\tERROR")

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		r.Family,
		r.Variant,
		r.Address,
		yesNo(r.Supported),
		orNA(r.Op),
		orNA(r.Error),
	)

	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("flush tabwriter: %w", err)
	}

	return buf.String(), nil
}

func formatReportJSON(r checkReport) (string, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	return string(b) + "\n", nil
}

func formatReportYAML(r checkReport) (string, error) {
	b, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	return string(b), nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func orNA(s string) string {
	if s == "" {
		return valueNA
	}
	return s
}
