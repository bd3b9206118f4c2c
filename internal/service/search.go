package service

import (
	"strings"

	"golang.org/x/text/cases"
)

// NameMatcher reports whether product names contain a query, comparing both
// under Unicode full case folding (so "STRASSE" matches "straße").
type NameMatcher struct {
	caser  cases.Caser
	folded string
}

// NewNameMatcher prepares a matcher for query. The empty query matches every name.
func NewNameMatcher(query string) *NameMatcher {
	caser := cases.Fold()
	return &NameMatcher{
		caser:  caser,
		folded: caser.String(query),
	}
}

// Match reports whether name contains the query.
func (m *NameMatcher) Match(name string) bool {
	if m.folded == "" {
		return true
	}
	return strings.Contains(m.caser.String(name), m.folded)
}
