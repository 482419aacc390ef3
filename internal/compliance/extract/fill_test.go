package extract_test

import (
	"testing"

	"github.com/verdantry/canopy-backend/internal/compliance/extract"
	"github.com/verdantry/canopy-backend/internal/domain"
)

func comparisonByLabel(t *testing.T, res extract.FillResult, label string) domain.FieldComparison {
	t.Helper()
	for _, c := range res.Comparisons {
		if c.Label == label {
			return c
		}
	}
	t.Fatalf("no comparison for label %q", label)
	return domain.FieldComparison{}
}

func TestFill_NonDestructive(t *testing.T) {
	rs := extract.DefaultRuleSet()

	existing := map[string]string{
		"thc_percent": "",       // empty, should fill
		"cbd_percent": "0.08",   // equal, should match
		"pesticides":  "fail",   // differs, should conflict and keep
		"microbials":  "",       // COA has nothing, should skip
		"heavy_metals": "",
	}
	coa := map[string]string{
		"thc_percent":  "24.1",
		"cbd_percent":  "0.08",
		"pesticides":   "pass",
		"heavy_metals": "pass",
	}

	res := extract.Fill(rs, existing, coa)

	if got := comparisonByLabel(t, res, "THC %"); got.Status != domain.FieldStatusFilled {
		t.Fatalf("thc: expected filled, got %s", got.Status)
	}
	if res.Updates["thc_percent"] != "24.1" {
		t.Fatalf("expected thc update, got %v", res.Updates)
	}
	if got := comparisonByLabel(t, res, "CBD %"); got.Status != domain.FieldStatusMatched {
		t.Fatalf("cbd: expected matched, got %s", got.Status)
	}
	if got := comparisonByLabel(t, res, "Pesticides"); got.Status != domain.FieldStatusConflict {
		t.Fatalf("pesticides: expected conflict, got %s", got.Status)
	}
	if _, overwrote := res.Updates["pesticides"]; overwrote {
		t.Fatalf("conflicting product value must never be overwritten")
	}
	if got := comparisonByLabel(t, res, "Microbials"); got.Status != domain.FieldStatusSkipped {
		t.Fatalf("microbials: expected skipped, got %s", got.Status)
	}
	if got := comparisonByLabel(t, res, "Heavy Metals"); got.Status != domain.FieldStatusFilled {
		t.Fatalf("heavy metals: expected filled, got %s", got.Status)
	}

	want := map[string]bool{"thc_percent": true, "heavy_metals": true}
	if len(res.FieldsUpdated) != len(want) {
		t.Fatalf("expected %d fields updated, got %v", len(want), res.FieldsUpdated)
	}
	for _, k := range res.FieldsUpdated {
		if !want[k] {
			t.Fatalf("unexpected updated field %q", k)
		}
	}
}

func TestFill_MatchIsCaseAndSpaceInsensitive(t *testing.T) {
	rs := extract.DefaultRuleSet()
	res := extract.Fill(rs,
		map[string]string{"pesticides": " PASS "},
		map[string]string{"pesticides": "pass"},
	)
	if got := comparisonByLabel(t, res, "Pesticides"); got.Status != domain.FieldStatusMatched {
		t.Fatalf("expected matched, got %s", got.Status)
	}
	if len(res.FieldsUpdated) != 0 {
		t.Fatalf("expected no updates, got %v", res.FieldsUpdated)
	}
}

func TestFill_EmptyCOA(t *testing.T) {
	rs := extract.DefaultRuleSet()
	res := extract.Fill(rs, map[string]string{}, map[string]string{})
	if len(res.FieldsUpdated) != 0 || len(res.Updates) != 0 {
		t.Fatalf("expected nothing filled from an empty COA")
	}
	for _, c := range res.Comparisons {
		if c.Status != domain.FieldStatusSkipped {
			t.Fatalf("expected all comparisons skipped, got %s for %s", c.Status, c.Label)
		}
	}
}
