package main

import (
	"strings"
	"testing"
)

func TestRenderTableIncludesHeadersAndRows(t *testing.T) {
	out := renderTable(
		[]column{{title: "Case"}, {title: "Written", right: true}},
		[][]string{{"patient_01", "15"}, {"patient_02", "12"}},
	)
	// StyleRounded uppercases header cells.
	for _, want := range []string{"CASE", "WRITTEN", "patient_01", "patient_02", "15", "12"} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]column{{title: "A"}, {title: "B"}, {title: "C"}},
		[][]string{{"only"}},
	)
	if !strings.Contains(out, "only") {
		t.Fatalf("rendered table missing row value:\n%s", out)
	}
}

func TestRenderTableEmptyColumns(t *testing.T) {
	if out := renderTable(nil, nil); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Fatalf("shortID = %q, want first eight characters", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Fatalf("shortID = %q, want short ids untouched", got)
	}
}
