package reconcile

import "strings"

// Matcher derives the join key used to pair roster names with call-log names.
type Matcher interface {
	Key(name string) string
}

// ExactMatcher joins on the untouched name: case and whitespace matter.
type ExactMatcher struct{}

func (ExactMatcher) Key(name string) string { return name }

// FoldedMatcher joins case-insensitively after collapsing whitespace. It is
// not the default; the roster and vendor names are expected to agree exactly.
type FoldedMatcher struct{}

func (FoldedMatcher) Key(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
