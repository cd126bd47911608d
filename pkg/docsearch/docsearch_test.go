// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package docsearch

import (
	"reflect"
	"testing"

	"github.com/outrigdev/iniedit/pkg/gensearch"
	"github.com/outrigdev/iniedit/pkg/linemodel"
)

const playerIni = "### PLAYER ###\n" +
	"# starting stats\n" +
	"Health = 100\n" +
	"Mana=50\n" +
	"\n" +
	"UnknownLine\n"

func TestElements(t *testing.T) {
	doc := linemodel.Parse("player.ini", []byte(playerIni))
	got := Elements(doc)
	want := []Element{
		{LineNum: 0, Kind: KindSection, Text: "PLAYER"},
		{LineNum: 1, Kind: KindComment, Text: "# starting stats"},
		{LineNum: 2, Kind: KindKeyLabel, Key: "Health", Text: "Health"},
		{LineNum: 2, Kind: KindValue, Key: "Health", Text: "100"},
		{LineNum: 3, Kind: KindKeyLabel, Key: "Mana", Text: "Mana"},
		{LineNum: 3, Kind: KindValue, Key: "Mana", Text: "50"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Elements()\n got: %+v\nwant: %+v", got, want)
	}
}

func TestSectionText(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOk bool
	}{
		{"### PLAYER ###\n", "PLAYER", true},
		{"  ###   Inventory\n", "Inventory", true},
		{"# a#b ### c\n", "ab  c", true},
		{"## two hashes\n", "", false},
		{"# plain\n", "", false},
	}
	for _, tt := range tests {
		got, ok := SectionText(tt.raw)
		if got != tt.want || ok != tt.wantOk {
			t.Errorf("SectionText(%q) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.wantOk)
		}
	}
}

func TestHighlightFirstMatch(t *testing.T) {
	doc := linemodel.Parse("player.ini", []byte(playerIni))
	ms := HighlightDocument(doc, "100")
	first, ok := ms.FirstMatch()
	if !ok {
		t.Fatalf("expected a match")
	}
	if first.Kind != KindValue || first.Key != "Health" || first.Text != "100" {
		t.Errorf("FirstMatch() = %+v, want Health value", first)
	}
	if n := len(ms.Matched()); n != 1 {
		t.Errorf("matched %d elements, want 1", n)
	}
}

func TestHighlightCaseInsensitive(t *testing.T) {
	doc := linemodel.Parse("player.ini", []byte(playerIni))
	ms := HighlightDocument(doc, "player")
	first, ok := ms.FirstMatch()
	if !ok || first.Kind != KindSection || ms.FirstMatchIndex != 0 {
		t.Errorf("FirstMatch() = %+v, %v; want section at index 0", first, ok)
	}

	ms = HighlightDocument(doc, "MANA")
	var kinds []ElementKind
	for _, elem := range ms.Matched() {
		kinds = append(kinds, elem.Kind)
	}
	if !reflect.DeepEqual(kinds, []ElementKind{KindKeyLabel}) {
		t.Errorf("matched kinds = %v, want [key]", kinds)
	}
}

func TestHighlightUsesCurrentValue(t *testing.T) {
	doc := linemodel.Parse("player.ini", []byte(playerIni))
	doc.UpdateValue("Mana", "777")
	if _, ok := HighlightDocument(doc, "50").FirstMatch(); ok {
		t.Errorf("old value should no longer match")
	}
	first, ok := HighlightDocument(doc, "777").FirstMatch()
	if !ok || first.Key != "Mana" || first.Kind != KindValue {
		t.Errorf("FirstMatch() = %+v, %v; want Mana value", first, ok)
	}
}

func TestHighlightNoMatch(t *testing.T) {
	doc := linemodel.Parse("player.ini", []byte(playerIni))
	for _, query := range []string{"", "zzz", "UnknownLine"} {
		ms := HighlightDocument(doc, query)
		if _, ok := ms.FirstMatch(); ok || ms.FirstMatchIndex != -1 {
			t.Errorf("query %q: expected no match, got index %d", query, ms.FirstMatchIndex)
		}
		if len(ms.Elements) != 6 {
			t.Errorf("query %q: got %d elements, want 6", query, len(ms.Elements))
		}
	}
}

func TestHighlightQuerySyntax(t *testing.T) {
	doc := linemodel.Parse("player.ini", []byte(playerIni))
	tests := []struct {
		query string
		want  []ElementKind
	}{
		{"$key:a", []ElementKind{KindKeyLabel, KindKeyLabel}},
		{"$value:/^\\d+$/", []ElementKind{KindValue, KindValue}},
		{"$section:player", []ElementKind{KindSection}},
		{"$comment:stats | 50", []ElementKind{KindComment, KindValue}},
		{"/(/", nil},
	}
	for _, tt := range tests {
		ms := HighlightWithSyntax(doc, tt.query, gensearch.SyntaxQuery)
		var kinds []ElementKind
		for _, elem := range ms.Matched() {
			kinds = append(kinds, elem.Kind)
		}
		if !reflect.DeepEqual(kinds, tt.want) {
			t.Errorf("query %q matched %v, want %v", tt.query, kinds, tt.want)
		}
	}
}
