// Package extract turns raw certificate-of-analysis output from the
// document backends into canonical product fields. Field names on lab
// documents vary wildly, so extraction is driven by an alias rule set
// that can be overridden per deployment with a YAML file.
package extract

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule kinds control how a raw value is cleaned before it is compared
// against or written into a product field.
const (
	KindPercent  = "percent"
	KindPassFail = "passfail"
	KindText     = "text"
)

// Rule maps the many names labs use for one measurement onto a single
// canonical product field key.
type Rule struct {
	Key     string   `yaml:"key"`
	Label   string   `yaml:"label"`
	Kind    string   `yaml:"kind"`
	Aliases []string `yaml:"aliases"`
}

type RuleSet struct {
	Rules []Rule `yaml:"rules"`
}

const defaultRulesYAML = `
rules:
  - key: thc_percent
    label: THC %
    kind: percent
    aliases: [thc, total thc, thc total, delta-9 thc, d9-thc]
  - key: cbd_percent
    label: CBD %
    kind: percent
    aliases: [cbd, total cbd, cbd total]
  - key: total_cannabinoids_percent
    label: Total Cannabinoids %
    kind: percent
    aliases: [total cannabinoids, cannabinoids total]
  - key: pesticides
    label: Pesticides
    kind: passfail
    aliases: [pesticides, pesticide screen, pesticide analysis]
  - key: heavy_metals
    label: Heavy Metals
    kind: passfail
    aliases: [heavy metals, metals, heavy metal screen]
  - key: microbials
    label: Microbials
    kind: passfail
    aliases: [microbials, microbial screen, microbiological, yeast and mold]
  - key: residual_solvents
    label: Residual Solvents
    kind: passfail
    aliases: [residual solvents, solvents, solvent screen]
  - key: mycotoxins
    label: Mycotoxins
    kind: passfail
    aliases: [mycotoxins, mycotoxin screen]
  - key: moisture_percent
    label: Moisture %
    kind: percent
    aliases: [moisture, moisture content, water activity]
  - key: batch_number
    label: Batch Number
    kind: text
    aliases: [batch, batch number, batch id, lot, lot number]
`

// DefaultRuleSet returns the built-in alias rules. The embedded YAML is
// validated by tests, so a parse failure here is a programming error.
func DefaultRuleSet() RuleSet {
	rs, err := parseRules([]byte(defaultRulesYAML))
	if err != nil {
		panic(fmt.Sprintf("built-in extraction rules are invalid: %v", err))
	}
	return rs
}

// LoadRules reads an override rule set from a YAML file. An empty path
// returns the defaults.
func LoadRules(path string) (RuleSet, error) {
	if path == "" {
		return DefaultRuleSet(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("failed to read extraction rules %q: %w", path, err)
	}
	rs, err := parseRules(raw)
	if err != nil {
		return RuleSet{}, fmt.Errorf("failed to parse extraction rules %q: %w", path, err)
	}
	return rs, nil
}

func parseRules(raw []byte) (RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(raw, &rs); err != nil {
		return RuleSet{}, err
	}
	if len(rs.Rules) == 0 {
		return RuleSet{}, fmt.Errorf("rule set contains no rules")
	}
	seen := make(map[string]struct{}, len(rs.Rules))
	for i, rule := range rs.Rules {
		if rule.Key == "" {
			return RuleSet{}, fmt.Errorf("rule %d has no key", i)
		}
		if _, dup := seen[rule.Key]; dup {
			return RuleSet{}, fmt.Errorf("duplicate rule key %q", rule.Key)
		}
		seen[rule.Key] = struct{}{}
		switch rule.Kind {
		case KindPercent, KindPassFail, KindText:
		default:
			return RuleSet{}, fmt.Errorf("rule %q has unknown kind %q", rule.Key, rule.Kind)
		}
	}
	return rs, nil
}

// LabelFor returns the display label for a canonical key, falling back
// to the key itself.
func (rs RuleSet) LabelFor(key string) string {
	for _, rule := range rs.Rules {
		if rule.Key == key {
			return rule.Label
		}
	}
	return key
}
