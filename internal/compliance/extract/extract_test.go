package extract_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/verdantry/canopy-backend/internal/compliance/extract"
)

func TestDefaultRuleSetParses(t *testing.T) {
	rs := extract.DefaultRuleSet()
	if len(rs.Rules) == 0 {
		t.Fatalf("expected built-in rules")
	}
	if rs.LabelFor("thc_percent") != "THC %" {
		t.Fatalf("unexpected label: %q", rs.LabelFor("thc_percent"))
	}
	if rs.LabelFor("unknown_key") != "unknown_key" {
		t.Fatalf("expected key fallback for unknown labels")
	}
}

func TestLoadRules_OverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `
rules:
  - key: terpenes_percent
    label: Terpenes %
    kind: percent
    aliases: [terpenes, total terpenes]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	rs, err := extract.LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if len(rs.Rules) != 1 || rs.Rules[0].Key != "terpenes_percent" {
		t.Fatalf("unexpected rules: %+v", rs.Rules)
	}
}

func TestLoadRules_RejectsBadKind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `
rules:
  - key: thc
    label: THC
    kind: number
    aliases: [thc]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	if _, err := extract.LoadRules(path); err == nil {
		t.Fatalf("expected an error for unknown kind")
	}
}

func TestFromFormFields(t *testing.T) {
	rs := extract.DefaultRuleSet()
	fields := []extract.FormField{
		{Name: "Total THC:", Value: "24.1 %"},
		{Name: "CBD", Value: "0.08%"},
		{Name: "Pesticide Screen", Value: "PASS"},
		{Name: "Heavy Metals", Value: "Not Detected"},
		{Name: "Microbials", Value: "FAIL"},
		{Name: "Lot Number", Value: "BD-2024-0117"},
		{Name: "Lab Director", Value: "J. Alvarez"},
	}

	got := extract.FromFormFields(rs, fields)
	want := map[string]string{
		"thc_percent":  "24.1",
		"cbd_percent":  "0.08",
		"pesticides":   "pass",
		"heavy_metals": "pass",
		"microbials":   "fail",
		"batch_number": "BD-2024-0117",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d fields, got %d: %v", len(want), len(got), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("field %q: expected %q, got %q", k, v, got[k])
		}
	}
}

func TestFromFormFields_SkipsUnusableValues(t *testing.T) {
	rs := extract.DefaultRuleSet()
	fields := []extract.FormField{
		{Name: "Total THC", Value: "see attached"},
		{Name: "THC", Value: "24.1%"},
	}
	got := extract.FromFormFields(rs, fields)
	if got["thc_percent"] != "24.1" {
		t.Fatalf("expected the first usable value, got %q", got["thc_percent"])
	}
}

func TestFromText(t *testing.T) {
	rs := extract.DefaultRuleSet()
	text := "Certificate of Analysis\n" +
		"Total THC: 22.7%\n" +
		"Total CBD  0.05%\n" +
		"Pesticides: PASS\n" +
		"Moisture 11.2%\n" +
		"Some unrelated footer line\n"

	got := extract.FromText(rs, text)
	want := map[string]string{
		"thc_percent":      "22.7",
		"cbd_percent":      "0.05",
		"pesticides":       "pass",
		"moisture_percent": "11.2",
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("field %q: expected %q, got %q (all: %v)", k, v, got[k], got)
		}
	}
}
