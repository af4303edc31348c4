// Package rules classifies newly managed windows against the configured
// rule list.
//
// Each outcome field is decided independently: it takes its value from the
// first rule that both matches the window and has an opinion on that field.
// A rule without an opinion on a field (nil pointer, zero tag mask) lets a
// later matching rule decide it.
package rules

import "strings"

// Identity carries the strings a window is matched on.
type Identity struct {
	Class    string
	Instance string
	Title    string
}

// Rule is one declarative matcher. Empty predicates match anything; non-empty
// ones match by substring.
type Rule struct {
	Class    string
	Instance string
	Title    string

	// Tags is the target tag mask; 0 means no opinion.
	Tags      uint32
	Floating  *bool
	Terminal  *bool
	NoSwallow *bool
	// Monitor is the preferred monitor index; nil means no opinion.
	Monitor *int
}

// Matches reports whether every non-empty predicate of r matches id.
func (r Rule) Matches(id Identity) bool {
	if r.Class != "" && !strings.Contains(id.Class, r.Class) {
		return false
	}
	if r.Instance != "" && !strings.Contains(id.Instance, r.Instance) {
		return false
	}
	if r.Title != "" && !strings.Contains(id.Title, r.Title) {
		return false
	}
	return true
}

// Outcome is the classification result. Monitor is -1 when the window should
// stay on the monitor it was created on; Tags is 0 when it should take the
// monitor's current tags.
type Outcome struct {
	Tags      uint32
	Floating  bool
	Terminal  bool
	NoSwallow bool
	Monitor   int

	// Matched lists the indices of rules that matched, in order.
	Matched []int
}

// DefaultOutcome is the result when no rule matches.
func DefaultOutcome() Outcome {
	return Outcome{Monitor: -1}
}

// Matcher holds an immutable copy of the rule list.
type Matcher struct {
	rules []Rule
}

// NewMatcher copies rules so later changes by the caller have no effect.
func NewMatcher(rules []Rule) *Matcher {
	cp := make([]Rule, len(rules))
	for i, r := range rules {
		cp[i] = r
		cp[i].Floating = cloneBool(r.Floating)
		cp[i].Terminal = cloneBool(r.Terminal)
		cp[i].NoSwallow = cloneBool(r.NoSwallow)
		if r.Monitor != nil {
			m := *r.Monitor
			cp[i].Monitor = &m
		}
	}
	return &Matcher{rules: cp}
}

// Len returns the number of rules.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}

// Classify evaluates the rules in declaration order.
func (m *Matcher) Classify(id Identity) Outcome {
	out := DefaultOutcome()
	if m == nil {
		return out
	}

	var haveTags, haveFloating, haveTerminal, haveNoSwallow, haveMonitor bool
	for i, r := range m.rules {
		if !r.Matches(id) {
			continue
		}
		out.Matched = append(out.Matched, i)

		if !haveTags && r.Tags != 0 {
			out.Tags, haveTags = r.Tags, true
		}
		if !haveFloating && r.Floating != nil {
			out.Floating, haveFloating = *r.Floating, true
		}
		if !haveTerminal && r.Terminal != nil {
			out.Terminal, haveTerminal = *r.Terminal, true
		}
		if !haveNoSwallow && r.NoSwallow != nil {
			out.NoSwallow, haveNoSwallow = *r.NoSwallow, true
		}
		if !haveMonitor && r.Monitor != nil {
			out.Monitor, haveMonitor = *r.Monitor, true
		}
	}
	return out
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
