// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package gensearch

import (
	"fmt"
	"regexp"
)

// RegexpSearcher implements regular expression matching
type RegexpSearcher struct {
	field         string
	searchTerm    string
	regex         *regexp.Regexp
	caseSensitive bool
}

// MakeRegexpSearcher creates a new regexp searcher
func MakeRegexpSearcher(field string, searchTerm string, caseSensitive bool) (Searcher, error) {
	pattern := searchTerm
	if !caseSensitive {
		pattern = "(?i)" + searchTerm
	}
	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression %q: %w", searchTerm, err)
	}
	return &RegexpSearcher{
		field:         field,
		searchTerm:    searchTerm,
		regex:         regex,
		caseSensitive: caseSensitive,
	}, nil
}

// Match checks if the field matches the regular expression
func (s *RegexpSearcher) Match(sctx *SearchContext, obj SearchObject) bool {
	return s.regex.MatchString(obj.GetField(s.field, 0))
}

// GetType returns the search type identifier
func (s *RegexpSearcher) GetType() string {
	if s.caseSensitive {
		return SearchTypeRegexpCase
	}
	return SearchTypeRegexp
}
