package naming

import (
	"path"
	"regexp"
	"strings"

	"github.com/danieljhkim/p4gate/internal/p4"
)

// Kind classifies a naming violation.
type Kind string

const (
	KindPrefix Kind = "prefix"
	KindSuffix Kind = "suffix"
	KindBoth   Kind = "both"
)

// Markers that exempt externally imported assets. Case-sensitive.
const (
	ExemptPrefixMarker = "EXTN_"
	ExemptSuffixMarker = "_EXTN"
)

const metaExt = ".meta"

// _v followed by two digits; one digit is still accepted for older assets
var versionSuffix = regexp.MustCompile(`_v\d{1,2}$`)

// Violation is a file that breaks its rule.
type Violation struct {
	DepotPath string `json:"depotPath"`
	FileName  string `json:"fileName"`
	Ext       string `json:"ext"`
	Prefix    string `json:"prefix"`
	Kind      Kind   `json:"kind"`
	Suggested string `json:"suggested"`
}

// Checker applies a rule table to changelist entries.
type Checker struct {
	rules *Rules
}

// NewChecker creates a Checker.
func NewChecker(rules *Rules) *Checker {
	return &Checker{rules: rules}
}

// Check returns the violations among entries, in entry order.
func (c *Checker) Check(entries []p4.PendingEntry) []Violation {
	var violations []Violation
	for _, e := range entries {
		if v, bad := c.CheckFile(e.DepotPath, e.Action); bad {
			violations = append(violations, v)
		}
	}
	return violations
}

// Exempt reports whether a file is skipped regardless of rules.
func Exempt(depotPath string, action p4.FileAction) bool {
	if action.IsRemoval() {
		return true
	}
	return strings.Contains(depotPath, ExemptPrefixMarker) || strings.Contains(depotPath, ExemptSuffixMarker)
}

// CheckFile checks a single depot path.
func (c *Checker) CheckFile(depotPath string, action p4.FileAction) (Violation, bool) {
	if Exempt(depotPath, action) {
		return Violation{}, false
	}

	full := path.Base(depotPath)
	name := full
	rule, ok := c.rules.Match(name)
	if !ok && hasSuffixFold(full, metaExt) {
		// companion metadata files follow the rule of the asset they describe
		name = full[:len(full)-len(metaExt)]
		rule, ok = c.rules.Match(name)
	}
	if !ok {
		return Violation{}, false
	}

	stem := name[:len(name)-len(rule.Ext)]
	goodPrefix := strings.HasPrefix(name, rule.Prefix)
	goodSuffix := versionSuffix.MatchString(stem)
	if goodPrefix && goodSuffix {
		return Violation{}, false
	}

	// everything after the stem: the rule extension plus any .meta
	tail := full[len(stem):]
	v := Violation{DepotPath: depotPath, FileName: full, Ext: rule.Ext, Prefix: rule.Prefix}
	switch {
	case !goodPrefix && !goodSuffix:
		v.Kind = KindBoth
		v.Suggested = rule.Prefix + stem + "_v01" + tail
	case !goodPrefix:
		v.Kind = KindPrefix
		v.Suggested = rule.Prefix + full
	default:
		v.Kind = KindSuffix
		v.Suggested = stem + "_v01" + tail
	}
	return v, true
}
