package normalize

import (
	"testing"

	"go.uber.org/zap"
)

// TestNormalize tests class name cleaning against the default rule table
func TestNormalize(t *testing.T) {
	n := New(zap.NewNop())

	t.Run("ExpressBeforeBase", func(t *testing.T) {
		// "back" alone is Back Body Blaze; with "express" the express
		// variant must win even though both rules match on "back".
		if got := n.Normalize("Express Back Body Blaze"); got != "Studio Back Body Blaze Express" {
			t.Errorf("Express Back Body Blaze normalized to %q", got)
		}
		if got := n.Normalize("Back Body Blaze"); got != "Studio Back Body Blaze" {
			t.Errorf("Back Body Blaze normalized to %q", got)
		}
	})

	t.Run("CaseInsensitive", func(t *testing.T) {
		variants := []string{"AMPED up", "Amped Up!", "amped"}
		for _, v := range variants {
			if got := n.Normalize(v); got != "Studio Amped Up!" {
				t.Errorf("Normalize(%q) = %q, want Studio Amped Up!", v, got)
			}
		}
	})

	t.Run("NotApplicable", func(t *testing.T) {
		if got := n.Normalize("N/A"); got != CategoryInvalid {
			t.Errorf("N/A normalized to %q, want %q", got, CategoryInvalid)
		}
	})

	t.Run("HostedMarkers", func(t *testing.T) {
		for _, name := range []string{
			"Hosted by Acme Corp",
			"Bridal Shower Class!",
			"Sign up link in bio",
		} {
			if got := n.Normalize(name); got != CategoryHosted {
				t.Errorf("Normalize(%q) = %q, want %q", name, got, CategoryHosted)
			}
		}
	})

	t.Run("Unrecognized", func(t *testing.T) {
		if got := n.Normalize("Underwater Yoga Retreat"); got != CategoryUncategorized {
			t.Errorf("unknown name normalized to %q, want %q", got, CategoryUncategorized)
		}
	})

	t.Run("EmptyName", func(t *testing.T) {
		if got := n.Normalize(""); got != CategoryUncategorized {
			t.Errorf("empty name normalized to %q, want %q", got, CategoryUncategorized)
		}
	})

	t.Run("PowercycleVariants", func(t *testing.T) {
		if got := n.Normalize("powerCycle Express 45"); got != "Studio powerCycle Express" {
			t.Errorf("powerCycle Express normalized to %q", got)
		}
		if got := n.Normalize("powerCycle 45"); got != "Studio powerCycle" {
			t.Errorf("powerCycle normalized to %q", got)
		}
	})

	t.Run("OpenBarreFallback", func(t *testing.T) {
		// The complimentary variant and the plain name collapse to the
		// same category through two distinct rules.
		if got := n.Normalize("Open Barre Complimentary Class"); got != "OPEN BARRE CLASS" {
			t.Errorf("complimentary open barre normalized to %q", got)
		}
		if got := n.Normalize("Open Barre Class"); got != "OPEN BARRE CLASS" {
			t.Errorf("open barre normalized to %q", got)
		}
	})

	t.Run("PackageNames", func(t *testing.T) {
		cases := map[string]string{
			"Studio 8 Class Package":  "Studio 8 Class Package",
			"Studio 12 Class Package": "Studio 12 Class Package",
			"Flex 30 Single Class":    "Flex 30 Single Class",
			"Sunrise Class":           "SUNRISE CLASS",
		}
		for name, want := range cases {
			if got := n.Normalize(name); got != want {
				t.Errorf("Normalize(%q) = %q, want %q", name, got, want)
			}
		}
	})
}

// TestRuleOrder tests that rule evaluation order determines the outcome
func TestRuleOrder(t *testing.T) {
	rules := []Rule{
		{Name: "first", All: []string{"barre"}, Category: "First"},
		{Name: "second", All: []string{"barre"}, Category: "Second"},
	}
	n := NewWithRules(rules, zap.NewNop())

	if got := n.Normalize("Open Barre"); got != "First" {
		t.Errorf("first matching rule should win, got %q", got)
	}
}

// TestRuleMatches tests the rule predicate semantics
func TestRuleMatches(t *testing.T) {
	t.Run("AllAndNone", func(t *testing.T) {
		r := Rule{All: []string{"back"}, None: []string{"express"}}
		if !r.matches("back body blaze") {
			t.Error("rule should match when all terms present and none excluded")
		}
		if r.matches("express back body blaze") {
			t.Error("rule should not match when an excluded term is present")
		}
	})

	t.Run("AnyRequiresOne", func(t *testing.T) {
		r := Rule{Any: []string{"hosted", "birthday"}}
		if !r.matches("birthday bash") {
			t.Error("rule should match on any single term")
		}
		if r.matches("regular class") {
			t.Error("rule should not match when no any-term is present")
		}
	})

	t.Run("EmptyRuleNeverMatches", func(t *testing.T) {
		r := Rule{None: []string{"x"}}
		if r.matches("anything") {
			t.Error("rule with no positive terms must never match")
		}
	})
}
