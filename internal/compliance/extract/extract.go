package extract

import (
	"regexp"
	"strings"
)

// FormField is one labeled value as reported by the document backend.
type FormField struct {
	Name  string
	Value string
}

var (
	percentRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%?`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, ":.-")
	return spaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

func (r Rule) matchesLabel(label string) bool {
	label = normalizeLabel(label)
	if label == "" {
		return false
	}
	for _, alias := range r.Aliases {
		if label == normalizeLabel(alias) {
			return true
		}
	}
	return false
}

// cleanValue reduces a raw document value to the canonical form stored
// on the product, or "" when the value is unusable for the rule's kind.
func (r Rule) cleanValue(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	switch r.Kind {
	case KindPercent:
		m := percentRe.FindStringSubmatch(raw)
		if m == nil {
			return ""
		}
		return m[1]
	case KindPassFail:
		lower := strings.ToLower(raw)
		switch {
		case strings.Contains(lower, "fail"):
			return "fail"
		case strings.Contains(lower, "pass"), strings.Contains(lower, "compliant"),
			strings.Contains(lower, "not detected"), lower == "nd", lower == "n/d":
			return "pass"
		}
		return ""
	default:
		return spaceRe.ReplaceAllString(raw, " ")
	}
}

// FromFormFields maps the backend's labeled key/value pairs onto
// canonical field keys. The first usable value wins per key.
func FromFormFields(rs RuleSet, fields []FormField) map[string]string {
	out := make(map[string]string)
	for _, rule := range rs.Rules {
		for _, field := range fields {
			if !rule.matchesLabel(field.Name) {
				continue
			}
			if v := rule.cleanValue(field.Value); v != "" {
				out[rule.Key] = v
				break
			}
		}
	}
	return out
}

// FromText recovers fields from plain OCR text, used when the backend
// returns no structured form fields (image certificates, poor scans).
// Each line is treated as "label separator value".
func FromText(rs RuleSet, text string) map[string]string {
	out := make(map[string]string)
	lines := strings.Split(text, "\n")
	for _, rule := range rs.Rules {
		for _, line := range lines {
			label, value, ok := splitLine(line)
			if !ok || !rule.matchesLabel(label) {
				continue
			}
			if v := rule.cleanValue(value); v != "" {
				out[rule.Key] = v
				break
			}
		}
	}
	return out
}

func splitLine(line string) (label, value string, ok bool) {
	for _, sep := range []string{":", "\t", "  "} {
		if i := strings.Index(line, sep); i > 0 {
			return line[:i], line[i+len(sep):], true
		}
	}
	// Last resort: split before the trailing numeric token so lines
	// like "Total THC 24.1%" still yield a label and a value.
	if m := percentRe.FindStringIndex(line); m != nil && m[0] > 0 {
		return line[:m[0]], line[m[0]:], true
	}
	return "", "", false
}
