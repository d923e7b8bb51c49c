// Package redact scrubs secrets and network addresses from workspace content
// before it leaves the process.
package redact

import (
	"fmt"
	"regexp"
)

// Marker replaces every redacted match.
const Marker = "[REDACTED]"

// Rule is one pattern -> replacement step.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// Apply runs the rule over s.
func (r Rule) Apply(s string) string {
	return r.Pattern.ReplaceAllString(s, r.Replacement)
}

// DefaultRules returns the built-in rules in the order they are applied.
func DefaultRules() []Rule {
	return []Rule{
		{
			// KEY: value / KEY=value assignments with a long value.
			Name:        "credential-assignment",
			Pattern:     regexp.MustCompile(`(?i)\b(?:[a-z0-9]+[_-])*(?:api[\s_-]?key|token|secret|password|credential)s?["']?\s*[:=]\s*["']?[\w\-./+=]{16,}["']?`),
			Replacement: Marker,
		},
		{
			Name:        "vendor-token",
			Pattern:     regexp.MustCompile(`\b(?:sk-proj-[A-Za-z0-9_-]{8,}|sk-[A-Za-z0-9_-]{20,}|ghp_[A-Za-z0-9]{20,}|BSA[A-Za-z0-9_-]{20,})`),
			Replacement: Marker,
		},
		{
			Name:        "jwt",
			Pattern:     regexp.MustCompile(`\beyJ[A-Za-z0-9_-]{5,}\.[A-Za-z0-9_-]{5,}(?:\.[A-Za-z0-9_-]*)?`),
			Replacement: Marker,
		},
		{
			Name:        "ipv4",
			Pattern:     regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
			Replacement: Marker,
		},
	}
}

// Redactor applies an ordered rule list.
type Redactor struct {
	rules []Rule
}

// New creates a redactor with the default rules.
func New() *Redactor {
	return &Redactor{rules: DefaultRules()}
}

// AddPattern appends a custom rule that replaces matches with Marker.
func (r *Redactor) AddPattern(name, pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("redact: compile %s: %w", name, err)
	}
	r.rules = append(r.rules, Rule{Name: name, Pattern: re, Replacement: Marker})
	return nil
}

// Rules returns a copy of the active rules.
func (r *Redactor) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Redact applies every rule in order.
func (r *Redactor) Redact(s string) string {
	for _, rule := range r.rules {
		s = rule.Apply(s)
	}
	return s
}
