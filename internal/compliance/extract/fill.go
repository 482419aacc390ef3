package extract

import (
	"strings"

	"github.com/verdantry/canopy-backend/internal/domain"
)

// FillResult reports what a non-destructive fill changed.
type FillResult struct {
	// Updates holds only the fields that were newly filled.
	Updates       map[string]string
	FieldsUpdated []string
	Comparisons   []domain.FieldComparison
}

// Fill compares extracted COA values against the product's existing
// custom fields, rule by rule. Empty product fields receive the COA
// value; existing values are never overwritten, even on conflict.
func Fill(rs RuleSet, existing map[string]string, coa map[string]string) FillResult {
	result := FillResult{Updates: make(map[string]string)}
	for _, rule := range rs.Rules {
		coaValue := coa[rule.Key]
		productValue := existing[rule.Key]

		cmp := domain.FieldComparison{
			Label:        rule.Label,
			COAValue:     coaValue,
			ProductValue: productValue,
		}
		switch {
		case coaValue == "":
			cmp.Status = domain.FieldStatusSkipped
		case productValue == "":
			result.Updates[rule.Key] = coaValue
			result.FieldsUpdated = append(result.FieldsUpdated, rule.Key)
			cmp.Status = domain.FieldStatusFilled
		case strings.EqualFold(strings.TrimSpace(productValue), strings.TrimSpace(coaValue)):
			cmp.Status = domain.FieldStatusMatched
		default:
			cmp.Status = domain.FieldStatusConflict
		}
		result.Comparisons = append(result.Comparisons, cmp)
	}
	return result
}
