// Package filter provides composable comment content filters, used to
// drop comments from a source before they reach the layout engine.
package filter

import (
	"regexp"
	"strings"
)

// Filter decides whether a comment's content should be dropped.
type Filter interface {
	IsFiltered(content string) bool
}

// Simple filters out any comment whose content contains a fixed
// substring.
type Simple struct {
	Substring string
}

// NewSimple builds a Simple filter for the given substring.
func NewSimple(substring string) Simple {
	return Simple{Substring: substring}
}

// IsFiltered reports whether content contains the filter's substring.
func (f Simple) IsFiltered(content string) bool {
	return strings.Contains(content, f.Substring)
}

// Regex filters out any comment whose content matches a compiled
// regular expression.
type Regex struct {
	re *regexp.Regexp
}

// NewRegex compiles pattern into a Regex filter.
func NewRegex(pattern string) (*Regex, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Regex{re: re}, nil
}

// IsFiltered reports whether content matches the compiled pattern.
func (f *Regex) IsFiltered(content string) bool {
	return f.re.MatchString(content)
}

// Merge ORs a list of filters together: a comment is filtered if any
// one of them filters it. Filters are checked in order and the first
// match short-circuits the rest.
type Merge struct {
	Filters []Filter
}

// NewMerge builds a Merge filter from an ordered list of filters.
func NewMerge(filters ...Filter) Merge {
	return Merge{Filters: filters}
}

// IsFiltered reports whether any wrapped filter matches content.
func (f Merge) IsFiltered(content string) bool {
	for _, sub := range f.Filters {
		if sub.IsFiltered(content) {
			return true
		}
	}
	return false
}
