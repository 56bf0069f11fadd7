// Package match evaluates resource tags against include/exclude rule sets.
//
// Include rules are conjunctive: every rule must pass for a resource to be
// included. Exclude rules are disjunctive: any single rule firing excludes
// the resource. All key and value comparisons are case-insensitive.
package match

import (
	"strings"

	"github.com/lzops/lzops/types"
)

// MatchType selects how rule values are compared against a tag value.
type MatchType string

const (
	// MatchUnset falls back to the category default: exact for include
	// rules, contains for exclude rules.
	MatchUnset    MatchType = ""
	MatchExact    MatchType = "exact"
	MatchContains MatchType = "contains"
)

// Rule is a single filter condition. A nil Values list means the rule only
// requires the key to be present. Unknown MatchType strings behave like
// MatchUnset rather than failing; a bad rule table entry should surface in
// tests, not crash a scan.
type Rule struct {
	Key       string    `yaml:"key"`
	Values    []string  `yaml:"values,omitempty"`
	MatchType MatchType `yaml:"match_type,omitempty"`
}

// KeyPresent builds a bare key-presence rule.
func KeyPresent(key string) Rule {
	return Rule{Key: key}
}

// Exact builds a rule requiring the tag value to equal one of values.
func Exact(key string, values ...string) Rule {
	return Rule{Key: key, Values: values, MatchType: MatchExact}
}

// Contains builds a rule requiring the tag value to contain one of values
// as a substring.
func Contains(key string, values ...string) Rule {
	return Rule{Key: key, Values: values, MatchType: MatchContains}
}

// RuleSet pairs the include and exclude rules for one service.
type RuleSet struct {
	Include []Rule `yaml:"include,omitempty"`
	Exclude []Rule `yaml:"exclude,omitempty"`
}

// Matcher evaluates tag lists against a RuleSet. It is stateless apart
// from the rules it was built with and is safe for concurrent use.
type Matcher struct {
	rules RuleSet
}

// NewMatcher builds a Matcher for the given rule set.
func NewMatcher(rules RuleSet) *Matcher {
	return &Matcher{rules: rules}
}

// Matches reports whether the tags satisfy the include rules and trigger
// none of the exclude rules.
func (m *Matcher) Matches(tags []types.Tag) bool {
	return MatchesIncludes(tags, m.rules.Include) && !MatchesExcludes(tags, m.rules.Exclude)
}

// lookupMap lowercases keys and values; last write wins on duplicates.
func lookupMap(tags []types.Tag) map[string]string {
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		m[strings.ToLower(t.Key)] = strings.ToLower(t.Value)
	}
	return m
}

// MatchesIncludes reports whether the tags satisfy every include rule.
// An empty rule list is vacuously true: no include filter means everything
// passes the include stage.
func MatchesIncludes(tags []types.Tag, rules []Rule) bool {
	if len(rules) == 0 {
		return true
	}

	tagMap := lookupMap(tags)

	for _, rule := range rules {
		key := strings.ToLower(rule.Key)
		if len(rule.Values) == 0 {
			if _, ok := tagMap[key]; !ok {
				return false
			}
			continue
		}

		value := tagMap[key]
		if rule.MatchType == MatchContains {
			if !containsAny(value, rule.Values) {
				return false
			}
		} else {
			// Include rules default to exact matching.
			if !equalsAny(value, rule.Values) {
				return false
			}
		}
	}
	return true
}

// MatchesExcludes reports whether any exclude rule fires for the tags.
// A rule can only fire when the resource carries the key with a non-empty
// value; absent keys never trigger exclusion.
func MatchesExcludes(tags []types.Tag, rules []Rule) bool {
	tagMap := lookupMap(tags)

	for _, rule := range rules {
		value, ok := tagMap[strings.ToLower(rule.Key)]
		if !ok || value == "" {
			continue
		}
		if len(rule.Values) == 0 {
			return true
		}
		if rule.MatchType == MatchExact {
			if equalsAny(value, rule.Values) {
				return true
			}
		} else {
			// Exclude rules default to substring matching.
			if containsAny(value, rule.Values) {
				return true
			}
		}
	}
	return false
}

func equalsAny(value string, candidates []string) bool {
	for _, c := range candidates {
		if value == strings.ToLower(c) {
			return true
		}
	}
	return false
}

func containsAny(value string, candidates []string) bool {
	for _, c := range candidates {
		if strings.Contains(value, strings.ToLower(c)) {
			return true
		}
	}
	return false
}
