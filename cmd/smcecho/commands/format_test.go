//go:build linux

package commands

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func testReports() (ok, failed checkReport) {
	ok = checkReport{
		Family:    "smc",
		Variant:   "v4",
		Address:   "0.0.0.0:50000",
		Supported: true,
	}
	failed = checkReport{
		Family:  "smc",
		Variant: "v6",
		Address: "[::]:50000",
		Op:      "socket",
		Error:   "socket: socket creation failed: address family not supported by protocol",
	}
	return ok, failed
}

func TestFormatReportTable(t *testing.T) {
	t.Parallel()

	ok, failed := testReports()

	out, err := formatReport(ok, formatTable)
	if err != nil {
		t.Fatalf("formatReport(table) error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("table has %d lines, want 2:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "FAMILY") {
		t.Errorf("header = %q, want FAMILY... prefix", lines[0])
	}
	for _, want := range []string{"smc", "v4", "0.0.0.0:50000", "yes", valueNA} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("row %q missing %q", lines[1], want)
		}
	}

	out, err = formatReport(failed, formatTable)
	if err != nil {
		t.Fatalf("formatReport(table) error: %v", err)
	}
	for _, want := range []string{"no", "socket", "not supported"} {
		if !strings.Contains(out, want) {
			t.Errorf("table %q missing %q", out, want)
		}
	}
}

func TestFormatReportJSON(t *testing.T) {
	t.Parallel()

	ok, failed := testReports()

	out, err := formatReport(ok, formatJSON)
	if err != nil {
		t.Fatalf("formatReport(json) error: %v", err)
	}
	if strings.Contains(out, `"error"`) {
		t.Errorf("successful report contains error field: %s", out)
	}

	out, err = formatReport(failed, formatJSON)
	if err != nil {
		t.Fatalf("formatReport(json) error: %v", err)
	}

	var got checkReport
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", out, err)
	}
	if got != failed {
		t.Errorf("decoded %+v, want %+v", got, failed)
	}
}

func TestFormatReportYAML(t *testing.T) {
	t.Parallel()

	_, failed := testReports()

	out, err := formatReport(failed, formatYAML)
	if err != nil {
		t.Fatalf("formatReport(yaml) error: %v", err)
	}
	if !strings.Contains(out, "supported: false") {
		t.Errorf("yaml %q missing supported: false", out)
	}

	var got checkReport
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", out, err)
	}
	if got != failed {
		t.Errorf("decoded %+v, want %+v", got, failed)
	}
}

func TestFormatReportUnsupported(t *testing.T) {
	t.Parallel()

	ok, _ := testReports()

	_, err := formatReport(ok, "xml")
	if !errors.Is(err, errUnsupportedFormat) {
		t.Errorf("formatReport(xml) error = %v, want %v", err, errUnsupportedFormat)
	}
}
