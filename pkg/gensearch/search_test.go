// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package gensearch

import (
	"strings"
	"testing"
)

type testObject map[string]string

func (o testObject) GetField(fieldName string, fieldMods int) string {
	val := o[fieldName]
	if fieldMods&FieldMod_ToLower != 0 {
		return strings.ToLower(val)
	}
	return val
}

func TestMatches(t *testing.T) {
	tests := []struct {
		haystack string
		needle   string
		want     bool
	}{
		{"Health = 100", "health", true},
		{"Health = 100", "HEALTH", true},
		{"Health = 100", "100", true},
		{"Health = 100", "mana", false},
		{"Health = 100", "", false},
		{"", "", false},
		{"", "a", false},
	}
	for _, tt := range tests {
		if got := Matches(tt.haystack, tt.needle); got != tt.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", tt.haystack, tt.needle, got, tt.want)
		}
	}
}

func TestPlainSyntax(t *testing.T) {
	obj := testObject{"": "Player Name = Hero (x|y)"}
	tests := []struct {
		query string
		want  bool
	}{
		{"hero", true},
		{"name = hero", true},
		{"(x|y)", true},
		{"-hero", false},
		{"", false},
	}
	for _, tt := range tests {
		s, err := GetSearcher(tt.query, SyntaxPlain)
		if err != nil {
			t.Fatalf("GetSearcher(%q) error: %v", tt.query, err)
		}
		if got := s.Match(MakeSearchContext(), obj); got != tt.want {
			t.Errorf("plain %q matched = %v, want %v (%s)", tt.query, got, tt.want, PrettyPrint(s))
		}
	}
}

func TestQuerySyntax(t *testing.T) {
	obj := testObject{
		"":      "Health 100",
		"key":   "Health",
		"value": "100",
	}
	tests := []struct {
		query string
		want  bool
	}{
		{"health", true},
		{"health 100", true},
		{"health 200", false},
		{"mana | 100", true},
		{"-mana", true},
		{"-health", false},
		{"'Health'", true},
		{"'health'", false},
		{"/^heal/", true},
		{"c/^heal/", false},
		{"~hlth", true},
		{"~zzz", false},
		{"~'Hlth'", true},
		{"~'hlth'", false},
		{"$key:health", true},
		{"$value:health", false},
		{"$value:/^1\\d+$/", true},
		{"$bogus:health", false},
		{"(mana | health) 100", true},
		{"", false},
		{"   ", false},
		{"~", false},
		{"health ~", false},
	}
	sctx := MakeSearchContext()
	for _, tt := range tests {
		s, err := GetSearcher(tt.query, SyntaxQuery)
		if err != nil {
			t.Fatalf("GetSearcher(%q) error: %v", tt.query, err)
		}
		if got := s.Match(sctx, obj); got != tt.want {
			t.Errorf("query %q matched = %v, want %v (%s)", tt.query, got, tt.want, PrettyPrint(s))
		}
	}
}

func TestInvalidRegexp(t *testing.T) {
	if _, err := GetSearcher("/(/", SyntaxQuery); err == nil {
		t.Errorf("expected error for invalid regexp")
	}
	if _, err := GetSearcher("/(/", SyntaxPlain); err != nil {
		t.Errorf("plain syntax should not compile regexps: %v", err)
	}
}

func TestFzfNilContext(t *testing.T) {
	s := MakeFzfSearcher("", "hlth", false)
	if !s.Match(nil, testObject{"": "health"}) {
		t.Errorf("expected fuzzy match without a search context")
	}
}

func TestParseSyntax(t *testing.T) {
	tests := []struct {
		name    string
		want    Syntax
		wantErr bool
	}{
		{"", SyntaxPlain, false},
		{"plain", SyntaxPlain, false},
		{"Query", SyntaxQuery, false},
		{"regex", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSyntax(tt.name)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseSyntax(%q) = %q, %v", tt.name, got, err)
		}
	}
}

func TestPrettyPrint(t *testing.T) {
	s, err := GetSearcher("a -'B' | ~c", SyntaxQuery)
	if err != nil {
		t.Fatal(err)
	}
	want := `OrSearcher{AndSearcher{ExactSearcher{field: "", term: "a", case-insensitive} AND NotSearcher{ExactSearcher{field: "", term: "B", case-sensitive}}} OR FzfSearcher{field: "", term: "c", case-insensitive}}`
	if got := PrettyPrint(s); got != want {
		t.Errorf("PrettyPrint()\n got: %s\nwant: %s", got, want)
	}
	multi := PrettyPrintMultiline(s)
	if !strings.HasPrefix(multi, "OrSearcher{\n  AndSearcher{\n") {
		t.Errorf("unexpected multiline output:\n%s", multi)
	}
}
