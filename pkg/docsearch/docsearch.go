// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package docsearch evaluates a query against the displayed elements of a
// document and reports which of them match.
package docsearch

import (
	"strings"

	"github.com/outrigdev/iniedit/pkg/gensearch"
	"github.com/outrigdev/iniedit/pkg/linemodel"
	"github.com/outrigdev/iniedit/pkg/logutil"
)

var log = logutil.Component("docsearch")

// SectionMarker is the substring that turns a comment into a section header
const SectionMarker = "###"

type ElementKind string

// ElementKind values double as the field names accepted by $field: queries
const (
	KindKeyLabel ElementKind = "key"
	KindValue    ElementKind = "value"
	KindComment  ElementKind = "comment"
	KindSection  ElementKind = "section"
)

// Element is one searchable piece of a rendered document
type Element struct {
	LineNum int         `json:"linenum"` // zero-based index into Document.Lines
	Kind    ElementKind `json:"kind"`
	Key     string      `json:"key,omitempty"`
	Text    string      `json:"text"`
	Matched bool        `json:"matched"`
}

// GetField implements gensearch.SearchObject. A field name selects elements
// of that kind.
func (e Element) GetField(fieldName string, fieldMods int) string {
	if fieldName != "" && ElementKind(fieldName) != e.Kind {
		return ""
	}
	if fieldMods&gensearch.FieldMod_ToLower != 0 {
		return strings.ToLower(e.Text)
	}
	return e.Text
}

// MatchSet is the result of highlighting a document
type MatchSet struct {
	Query           string    `json:"query"`
	Elements        []Element `json:"elements"`
	FirstMatchIndex int       `json:"firstmatchindex"` // -1 when nothing matched
}

// FirstMatch returns the first matched element in document order
func (m MatchSet) FirstMatch() (Element, bool) {
	if m.FirstMatchIndex < 0 || m.FirstMatchIndex >= len(m.Elements) {
		return Element{}, false
	}
	return m.Elements[m.FirstMatchIndex], true
}

// Matched returns only the matched elements
func (m MatchSet) Matched() []Element {
	var rtn []Element
	for _, elem := range m.Elements {
		if elem.Matched {
			rtn = append(rtn, elem)
		}
	}
	return rtn
}

// SectionText returns the de-hashed header text and true if raw is a section marker
func SectionText(raw string) (string, bool) {
	if !strings.Contains(raw, SectionMarker) {
		return "", false
	}
	return strings.TrimSpace(strings.ReplaceAll(strings.TrimSpace(raw), "#", "")), true
}

// Elements returns the searchable elements of doc in document order, all unmatched.
// Key-value lines give a key label and a value (the current value), comment
// lines give a comment or a section marker. Other lines give nothing.
func Elements(doc *linemodel.Document) []Element {
	var elems []Element
	for _, line := range doc.Lines() {
		switch line.Kind() {
		case linemodel.KindKeyValue:
			elems = append(elems,
				Element{LineNum: line.LineNum(), Kind: KindKeyLabel, Key: line.Key(), Text: line.Key()},
				Element{LineNum: line.LineNum(), Kind: KindValue, Key: line.Key(), Text: line.Value()},
			)
		case linemodel.KindComment:
			if text, ok := SectionText(line.Raw()); ok {
				elems = append(elems, Element{LineNum: line.LineNum(), Kind: KindSection, Text: text})
				continue
			}
			elems = append(elems, Element{LineNum: line.LineNum(), Kind: KindComment, Text: line.CommentText()})
		}
	}
	return elems
}

// HighlightDocument marks every element whose text contains query, ignoring case
func HighlightDocument(doc *linemodel.Document, query string) MatchSet {
	return HighlightWithSyntax(doc, query, gensearch.SyntaxPlain)
}

// HighlightWithSyntax is HighlightDocument with a selectable query syntax.
// It never fails: a query that does not compile is logged and matches nothing.
func HighlightWithSyntax(doc *linemodel.Document, query string, syntax gensearch.Syntax) MatchSet {
	ms := MatchSet{
		Query:           query,
		Elements:        Elements(doc),
		FirstMatchIndex: -1,
	}
	searcher, err := gensearch.GetSearcher(query, syntax)
	if err != nil {
		logutil.LogfOnce(log, "docsearch:"+query, "cannot compile query %q: %v", query, err)
		return ms
	}
	log.WithField("searcher", gensearch.PrettyPrint(searcher)).Debug("highlighting document")
	sctx := gensearch.MakeSearchContext()
	for i := range ms.Elements {
		if !searcher.Match(sctx, ms.Elements[i]) {
			continue
		}
		ms.Elements[i].Matched = true
		if ms.FirstMatchIndex < 0 {
			ms.FirstMatchIndex = i
		}
	}
	return ms
}
