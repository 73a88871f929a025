// Package sdkconfig expands declared build configuration overrides
// into the final deduplicated sequence appended to the live sdkconfig.
package sdkconfig

import "strings"

// Key returns the configuration key of a raw KEY=value entry (the text
// before the first '='; the whole entry when there is none).
func Key(entry string) string {
	key, _, _ := strings.Cut(entry, "=")
	return key
}

// enabled reports whether a raw entry value is boolean-true. Values
// are interpreted case-insensitively; anything starting with 'y'
// counts as enabled.
func enabled(value string) bool {
	return strings.HasPrefix(strings.ToLower(value), "y")
}

// Expand produces the final override sequence from the seeded entry
// list and the rule table.
//
// The input order is preserved with first-wins key deduplication:
// a later entry for an already recorded key is dropped, not merged.
// Then each rule is checked against the original input (not the
// deduplicated result): the first boolean-true occurrence of its
// trigger key appends the rule's required entries, themselves deduped
// against everything already recorded. Expanding the output again
// yields the same sequence.
func Expand(entries []string, rules []Rule) []string {
	items := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))

	appendMissing := func(entry string) {
		key := Key(entry)
		if _, ok := seen[key]; ok {
			return
		}
		items = append(items, entry)
		seen[key] = struct{}{}
	}

	for _, entry := range entries {
		appendMissing(entry)
	}

	for _, rule := range rules {
		for _, entry := range entries {
			key, value, _ := strings.Cut(entry, "=")
			if key != rule.Trigger || !enabled(value) {
				continue
			}
			for _, dep := range rule.Requires {
				appendMissing(dep)
			}
			break
		}
	}

	return items
}
