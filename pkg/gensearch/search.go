// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package gensearch

import (
	"fmt"
	"strings"

	"github.com/junegunn/fzf/src/util"
	"github.com/outrigdev/iniedit/pkg/searchparser"
)

const (
	SearchTypeExact      = "exact"
	SearchTypeExactCase  = "exactcase"
	SearchTypeRegexp     = "regexp"
	SearchTypeRegexpCase = "regexpcase"
	SearchTypeFzf        = "fzf"
	SearchTypeFzfCase    = "fzfcase"
	SearchTypeAnd        = "and"
	SearchTypeOr         = "or"
	SearchTypeNone       = "none"
	SearchTypeNot        = "not"
)

const (
	FieldMod_ToLower = 1
)

// Syntax selects how a query string is turned into a Searcher
type Syntax string

const (
	// SyntaxPlain treats the whole query as one case-insensitive substring
	SyntaxPlain Syntax = "plain"
	// SyntaxQuery parses the query with searchparser
	SyntaxQuery Syntax = "query"
)

// ParseSyntax maps a user supplied name to a Syntax, "" means SyntaxPlain
func ParseSyntax(name string) (Syntax, error) {
	switch Syntax(strings.ToLower(strings.TrimSpace(name))) {
	case "", SyntaxPlain:
		return SyntaxPlain, nil
	case SyntaxQuery:
		return SyntaxQuery, nil
	default:
		return "", fmt.Errorf("unknown query syntax %q (want %q or %q)", name, SyntaxPlain, SyntaxQuery)
	}
}

// SearchContext holds per-goroutine scratch state for a run of Match calls.
// A SearchContext must not be shared between goroutines.
type SearchContext struct {
	Slab *util.Slab
}

// MakeSearchContext allocates a context with its own fzf slab
func MakeSearchContext() *SearchContext {
	return &SearchContext{
		Slab: util.MakeSlab(64, 4096),
	}
}

// SearchObject is anything a Searcher can test. The empty field name is the
// object's default text. Unknown fields return "".
type SearchObject interface {
	GetField(fieldName string, fieldMods int) string
}

// Searcher defines the interface for different search strategies
type Searcher interface {
	// Match checks if a search object matches the search criteria
	Match(sctx *SearchContext, obj SearchObject) bool

	// GetType returns the search type identifier
	GetType() string
}

// GetSearcher compiles query using the given syntax. An empty query never
// matches. Only invalid regular expressions produce an error.
func GetSearcher(query string, syntax Syntax) (Searcher, error) {
	if syntax != SyntaxQuery {
		if query == "" {
			return MakeNoneSearcher(), nil
		}
		return MakeExactSearcher("", query, false), nil
	}
	node := searchparser.Parse(query)
	return MakeSearcherFromNode(node)
}

// Matches reports whether needle occurs in haystack ignoring case.
// An empty needle never matches.
func Matches(haystack string, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
