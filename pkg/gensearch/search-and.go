// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package gensearch

// AndSearcher implements a searcher that requires all contained searchers to match
type AndSearcher struct {
	searchers []Searcher
}

// MakeAndSearcher creates a new AND searcher from a slice of searchers
func MakeAndSearcher(searchers []Searcher) Searcher {
	return &AndSearcher{
		searchers: searchers,
	}
}

// Match checks if the search object matches all contained searchers
func (s *AndSearcher) Match(sctx *SearchContext, obj SearchObject) bool {
	// an empty conjunction selects nothing
	if len(s.searchers) == 0 {
		return false
	}
	for _, searcher := range s.searchers {
		if !searcher.Match(sctx, obj) {
			return false
		}
	}
	return true
}

// GetType returns the search type identifier
func (s *AndSearcher) GetType() string {
	return SearchTypeAnd
}
