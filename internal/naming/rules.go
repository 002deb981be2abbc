// Package naming checks asset filenames against prefix and version rules.
//
// A rule table maps a lowercase extension (".mat", or a compound one like
// ".mat.meta") to the prefix every such file must start with. Files must
// also end, before the extension, with a version marker such as _v01.
package naming

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/p4gate/internal/fsops"
)

// Rule is one extension to prefix mapping.
type Rule struct {
	Ext    string `json:"ext" yaml:"ext"`
	Prefix string `json:"prefix" yaml:"prefix"`
}

// Rules is an ordered rule table; longer extensions are tried first so a
// compound extension wins over its tail.
type Rules struct {
	rules []Rule
}

// NewRules builds a rule table from an extension to prefix map.
func NewRules(table map[string]string) *Rules {
	rules := make([]Rule, 0, len(table))
	for ext, prefix := range table {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		rules = append(rules, Rule{Ext: ext, Prefix: prefix})
	}
	sort.Slice(rules, func(i, j int) bool {
		if len(rules[i].Ext) != len(rules[j].Ext) {
			return len(rules[i].Ext) > len(rules[j].Ext)
		}
		return rules[i].Ext < rules[j].Ext
	})
	return &Rules{rules: rules}
}

// LoadRules reads a rule table. Files ending in .yaml or .yml are parsed as
// YAML, anything else as JSON.
func LoadRules(fs fsops.FS, path string) (*Rules, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	table := make(map[string]string)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &table)
	default:
		err = json.Unmarshal(data, &table)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	return NewRules(table), nil
}

// Len returns the number of rules.
func (r *Rules) Len() int {
	return len(r.rules)
}

// All returns the rules in match order.
func (r *Rules) All() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Match returns the rule whose extension ends name, compared without case.
func (r *Rules) Match(name string) (Rule, bool) {
	for _, rule := range r.rules {
		if hasSuffixFold(name, rule.Ext) {
			return rule, true
		}
	}
	return Rule{}, false
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}
