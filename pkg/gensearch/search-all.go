// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package gensearch

// NoneSearcher matches nothing, used for blank queries and parse errors
type NoneSearcher struct {
	errorMessage string
}

// MakeNoneSearcher creates a searcher that never matches
func MakeNoneSearcher() Searcher {
	return &NoneSearcher{}
}

func makeErrorSearcher(msg string) Searcher {
	return &NoneSearcher{errorMessage: msg}
}

// Match always returns false
func (s *NoneSearcher) Match(sctx *SearchContext, obj SearchObject) bool {
	return false
}

// GetType returns the search type identifier
func (s *NoneSearcher) GetType() string {
	return SearchTypeNone
}
