package normalize

import (
	"strings"

	"go.uber.org/zap"
)

// Normalizer maps free-text class names to canonical categories using an
// ordered rule table. A name matching no rule falls through to
// CategoryUncategorized; unmatched names are never an error.
type Normalizer struct {
	rules  []Rule
	logger *zap.Logger
}

// New creates a normalizer with the default rule table.
func New(logger *zap.Logger) *Normalizer {
	return NewWithRules(DefaultRules(), logger)
}

// NewWithRules creates a normalizer with a caller-supplied rule table.
// Rule order is preserved and significant.
func NewWithRules(rules []Rule, logger *zap.Logger) *Normalizer {
	n := &Normalizer{
		rules:  rules,
		logger: logger,
	}

	logger.Info("Class name normalizer initialized",
		zap.Int("total_rules", len(rules)))

	return n
}

// Normalize returns the canonical category for a raw class name.
// Matching is case-insensitive and first-match-wins.
func (n *Normalizer) Normalize(rawName string) string {
	name := strings.ToLower(rawName)

	for _, rule := range n.rules {
		if rule.matches(name) {
			return rule.Category
		}
	}

	n.logger.Debug("Class name did not match any rule",
		zap.String("class_name", rawName))

	return CategoryUncategorized
}

// Rules returns the normalizer's rule table, for auditing.
func (n *Normalizer) Rules() []Rule {
	return n.rules
}

// matches reports whether the lower-cased name satisfies the rule.
func (r *Rule) matches(name string) bool {
	for _, term := range r.All {
		if !strings.Contains(name, term) {
			return false
		}
	}

	for _, term := range r.None {
		if strings.Contains(name, term) {
			return false
		}
	}

	if len(r.Any) > 0 {
		matched := false
		for _, term := range r.Any {
			if strings.Contains(name, term) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return len(r.All) > 0 || len(r.Any) > 0
}
