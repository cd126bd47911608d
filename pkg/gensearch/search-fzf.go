// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package gensearch

import (
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// FzfSearcher implements fuzzy matching using the fzf algorithm
type FzfSearcher struct {
	field         string
	searchTerm    string
	pattern       []rune
	caseSensitive bool
}

// MakeFzfSearcher creates a new fzf searcher
func MakeFzfSearcher(field string, searchTerm string, caseSensitive bool) Searcher {
	if !caseSensitive {
		searchTerm = strings.ToLower(searchTerm)
	}
	return &FzfSearcher{
		field:         field,
		searchTerm:    searchTerm,
		pattern:       []rune(searchTerm),
		caseSensitive: caseSensitive,
	}
}

// Match checks if the field matches the fuzzy pattern
func (s *FzfSearcher) Match(sctx *SearchContext, obj SearchObject) bool {
	if len(s.pattern) == 0 {
		return false
	}
	fieldMods := 0
	if !s.caseSensitive {
		fieldMods = FieldMod_ToLower
	}
	chars := util.ToChars([]byte(obj.GetField(s.field, fieldMods)))
	var slab *util.Slab
	if sctx != nil {
		slab = sctx.Slab
	}
	result, _ := algo.FuzzyMatchV2(s.caseSensitive, true, true, &chars, s.pattern, false, slab)
	return result.Score > 0
}

// GetType returns the search type identifier
func (s *FzfSearcher) GetType() string {
	if s.caseSensitive {
		return SearchTypeFzfCase
	}
	return SearchTypeFzf
}
