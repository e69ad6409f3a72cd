// Package ability answers "may this caller do action X on subject Y" from a
// role's allow-list of rules. There are no deny rules: anything not matched
// by at least one rule is refused.
package ability

// Ability is the read-only rule set built for one request.
type Ability struct {
	rules []Rule
}

// Build never fails. An empty or nil rule list yields an ability that denies
// every query.
func Build(rules []Rule) *Ability {
	a := &Ability{rules: make([]Rule, len(rules))}
	copy(a.rules, rules)
	return a
}

// Can reports whether any rule matches the pair. "manage" matches every
// action and "all" matches every subject.
func (a *Ability) Can(action Action, subject Subject) bool {
	if a == nil {
		return false
	}
	for _, r := range a.rules {
		if r.matches(action, subject) {
			return true
		}
	}
	return false
}

// CanField is Can scoped to a single field. A matching rule without a field
// list covers every field.
//
// An empty field is treated as "field list not resolved" and allowed whenever
// the action and subject match. This permissive default is kept on purpose
// and is pending product review; do not tighten it silently.
func (a *Ability) CanField(action Action, subject Subject, field string) bool {
	if a == nil {
		return false
	}
	for _, r := range a.rules {
		if !r.matches(action, subject) {
			continue
		}
		if field == "" || r.allowsField(field) {
			return true
		}
	}
	return false
}

// Rules returns a copy of the rule list, for clients that gate visibility.
func (a *Ability) Rules() []Rule {
	if a == nil {
		return []Rule{}
	}
	out := make([]Rule, len(a.rules))
	copy(out, a.rules)
	return out
}
