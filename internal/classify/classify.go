// Package classify loads a JSON-described list of {type, regex} rules and
// matches names against them in order, returning the first matching type or
// "Unknown". devicedb uses it for tile-type family classification.
package classify

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
)

type Rule struct {
	Type  string `json:"type"`
	Regex string `json:"regex"`
	regex *regexp.Regexp
}

type Rules []*Rule

// Load decodes a JSON array of {type, regex} rules from r and compiles each
// regex, returning an error if any regex does not compile. Rules are tried
// in the order given; the first match wins.
func Load(r io.Reader) (Rules, error) {
	var rules Rules
	if err := json.NewDecoder(r).Decode(&rules); err != nil {
		return nil, fmt.Errorf("classify: decode rules: %w", err)
	}
	for _, rule := range rules {
		re, err := regexp.Compile(rule.Regex)
		if err != nil {
			return nil, fmt.Errorf("classify: rule %q: %w", rule.Type, err)
		}
		rule.regex = re
	}
	return rules, nil
}

// Match returns the Type of the first rule whose regex matches name, or
// "Unknown" if none match.
func (rules Rules) Match(name string) string {
	for _, rule := range rules {
		if rule.regex.MatchString(name) {
			return rule.Type
		}
	}
	return "Unknown"
}
