// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/outrigdev/iniedit/pkg/docsearch"
	"github.com/outrigdev/iniedit/pkg/linemodel"
)

type styleFn func(string) string

func plainStyle(s string) string {
	return s
}

type palette struct {
	section styleFn
	key     styleFn
	comment styleFn
	match   styleFn
	dim     styleFn
}

// makePalette styles output for w, with plain passthrough styles when color
// is off.
func makePalette(w io.Writer, color bool) palette {
	if !color {
		return palette{plainStyle, plainStyle, plainStyle, plainStyle, plainStyle}
	}
	r := lipgloss.NewRenderer(w)
	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	return palette{
		section: styleRender(base.Bold(true).Foreground(lipgloss.Color("39"))),
		key:     styleRender(base.Foreground(lipgloss.Color("214"))),
		comment: styleRender(base.Italic(true).Foreground(lipgloss.Color("245"))),
		match:   styleRender(base.Bold(true).Reverse(true)),
		dim:     styleRender(base.Foreground(lipgloss.Color("242"))),
	}
}

func styleRender(st lipgloss.Style) styleFn {
	return func(s string) string {
		return st.Render(s)
	}
}

// renderDocument prints doc the way the editor lays it out: section headers,
// comments, key = value rows and a spacer for blank lines. Matched elements
// of ms are highlighted.
func renderDocument(w io.Writer, doc *linemodel.Document, ms docsearch.MatchSet, pal palette) {
	byLine := make(map[int][]docsearch.Element)
	for _, elem := range ms.Elements {
		byLine[elem.LineNum] = append(byLine[elem.LineNum], elem)
	}
	style := func(elem docsearch.Element, fn styleFn) string {
		if elem.Matched {
			return pal.match(elem.Text)
		}
		return fn(elem.Text)
	}
	for _, line := range doc.Lines() {
		if line.Kind() == linemodel.KindBlank {
			fmt.Fprintln(w)
			continue
		}
		elems := byLine[line.LineNum()]
		if len(elems) == 0 {
			continue
		}
		switch elems[0].Kind {
		case docsearch.KindSection:
			fmt.Fprintln(w, style(elems[0], pal.section))
		case docsearch.KindComment:
			fmt.Fprintln(w, "  "+style(elems[0], pal.comment))
		case docsearch.KindKeyLabel:
			if len(elems) < 2 {
				continue
			}
			fmt.Fprintf(w, "  %s = %s\n", style(elems[0], pal.key), style(elems[1], plainStyle))
		}
	}
}

// renderMatches prints one line per matched element plus the first match
func renderMatches(w io.Writer, ms docsearch.MatchSet, pal palette) {
	matched := ms.Matched()
	for _, elem := range matched {
		label := string(elem.Kind)
		if elem.Key != "" && elem.Kind == docsearch.KindValue {
			label += "[" + elem.Key + "]"
		}
		fmt.Fprintf(w, "%s %-16s %s\n", pal.dim(fmt.Sprintf("%4d", elem.LineNum+1)), label, pal.match(elem.Text))
	}
	if first, ok := ms.FirstMatch(); ok {
		fmt.Fprintf(w, "%s line %d (%s)\n", pal.dim(fmt.Sprintf("%d match(es), first at", len(matched))), first.LineNum+1, first.Kind)
		return
	}
	fmt.Fprintln(w, pal.dim(fmt.Sprintf("no matches for %q", ms.Query)))
}
