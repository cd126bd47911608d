// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package gensearch

import (
	"fmt"
	"strings"
)

func sensitivityStr(caseSensitive bool) string {
	if caseSensitive {
		return "case-sensitive"
	}
	return "case-insensitive"
}

// PrettyPrint returns a human-readable string representation of a searcher
func PrettyPrint(s Searcher) string {
	if s == nil {
		return "<nil>"
	}

	switch searcher := s.(type) {
	case *ExactSearcher:
		return fmt.Sprintf("ExactSearcher{field: %q, term: %q, %s}",
			searcher.field, searcher.searchTerm, sensitivityStr(searcher.caseSensitive))

	case *RegexpSearcher:
		return fmt.Sprintf("RegexpSearcher{field: %q, pattern: %q, %s}",
			searcher.field, searcher.searchTerm, sensitivityStr(searcher.caseSensitive))

	case *FzfSearcher:
		return fmt.Sprintf("FzfSearcher{field: %q, term: %q, %s}",
			searcher.field, searcher.searchTerm, sensitivityStr(searcher.caseSensitive))

	case *AndSearcher:
		children := make([]string, 0, len(searcher.searchers))
		for _, child := range searcher.searchers {
			children = append(children, PrettyPrint(child))
		}
		return fmt.Sprintf("AndSearcher{%s}", strings.Join(children, " AND "))

	case *OrSearcher:
		children := make([]string, 0, len(searcher.searchers))
		for _, child := range searcher.searchers {
			children = append(children, PrettyPrint(child))
		}
		return fmt.Sprintf("OrSearcher{%s}", strings.Join(children, " OR "))

	case *NotSearcher:
		return fmt.Sprintf("NotSearcher{%s}", PrettyPrint(searcher.searcher))

	case *NoneSearcher:
		if searcher.errorMessage != "" {
			return fmt.Sprintf("NoneSearcher{error: %q}", searcher.errorMessage)
		}
		return "NoneSearcher{}"

	default:
		return fmt.Sprintf("UnknownSearcher{type: %s}", s.GetType())
	}
}

// PrettyPrintMultiline returns a human-readable multi-line string representation of a searcher
func PrettyPrintMultiline(s Searcher) string {
	return prettyPrintWithIndent(s, 0)
}

func prettyPrintChildren(name string, children []Searcher, indent int) string {
	indentStr := strings.Repeat("  ", indent)
	if len(children) == 0 {
		return indentStr + name + "{}"
	}
	var sb strings.Builder
	sb.WriteString(indentStr + name + "{\n")
	for i, child := range children {
		sb.WriteString(prettyPrintWithIndent(child, indent+1))
		if i < len(children)-1 {
			sb.WriteString(",\n")
		} else {
			sb.WriteString("\n")
		}
	}
	sb.WriteString(indentStr + "}")
	return sb.String()
}

func prettyPrintWithIndent(s Searcher, indent int) string {
	if s == nil {
		return "<nil>"
	}
	indentStr := strings.Repeat("  ", indent)

	switch searcher := s.(type) {
	case *AndSearcher:
		return prettyPrintChildren("AndSearcher", searcher.searchers, indent)

	case *OrSearcher:
		return prettyPrintChildren("OrSearcher", searcher.searchers, indent)

	case *NotSearcher:
		var sb strings.Builder
		sb.WriteString(indentStr + "NotSearcher{\n")
		sb.WriteString(prettyPrintWithIndent(searcher.searcher, indent+1))
		sb.WriteString("\n" + indentStr + "}")
		return sb.String()

	default:
		return indentStr + PrettyPrint(s)
	}
}
