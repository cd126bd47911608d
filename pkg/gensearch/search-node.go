// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package gensearch

import (
	"fmt"

	"github.com/outrigdev/iniedit/pkg/searchparser"
)

// createSearcherFromSearchNode creates a searcher from a search node without considering IsNot
func createSearcherFromSearchNode(node *searchparser.Node) (Searcher, error) {
	switch node.SearchType {
	case searchparser.SearchTypeExact:
		return MakeExactSearcher(node.Field, node.SearchTerm, false), nil
	case searchparser.SearchTypeExactCase:
		return MakeExactSearcher(node.Field, node.SearchTerm, true), nil
	case searchparser.SearchTypeRegexp:
		return MakeRegexpSearcher(node.Field, node.SearchTerm, false)
	case searchparser.SearchTypeRegexpCase:
		return MakeRegexpSearcher(node.Field, node.SearchTerm, true)
	case searchparser.SearchTypeFzf:
		return MakeFzfSearcher(node.Field, node.SearchTerm, false), nil
	case searchparser.SearchTypeFzfCase:
		return MakeFzfSearcher(node.Field, node.SearchTerm, true), nil
	default:
		return MakeExactSearcher(node.Field, node.SearchTerm, false), nil
	}
}

func makeSearchersFromNodes(nodes []*searchparser.Node) ([]Searcher, error) {
	searchers := make([]Searcher, 0, len(nodes))
	for _, child := range nodes {
		searcher, err := MakeSearcherFromNode(child)
		if err != nil {
			return nil, err
		}
		searchers = append(searchers, searcher)
	}
	return searchers, nil
}

// MakeSearcherFromNode creates a searcher from a parsed AST. A nil node
// (blank query) matches nothing, as do error nodes.
func MakeSearcherFromNode(node *searchparser.Node) (Searcher, error) {
	if node == nil {
		return MakeNoneSearcher(), nil
	}
	switch node.Type {
	case searchparser.NodeTypeSearch:
		searcher, err := createSearcherFromSearchNode(node)
		if err != nil {
			return nil, err
		}
		if node.IsNot {
			return MakeNotSearcher(searcher), nil
		}
		return searcher, nil

	case searchparser.NodeTypeAnd:
		searchers, err := makeSearchersFromNodes(node.Children)
		if err != nil {
			return nil, err
		}
		return MakeAndSearcher(searchers), nil

	case searchparser.NodeTypeOr:
		searchers, err := makeSearchersFromNodes(node.Children)
		if err != nil {
			return nil, err
		}
		return MakeOrSearcher(searchers), nil

	case searchparser.NodeTypeError:
		return makeErrorSearcher(node.ErrorMessage), nil

	default:
		return nil, fmt.Errorf("unknown node type: %s", node.Type)
	}
}
