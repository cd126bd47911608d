// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package searchparser

import (
	"reflect"
	"testing"
)

func TestTokenizer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "empty string",
			input: "",
			expected: []Token{
				{Type: TokenEOF, Value: "", Position: Position{Start: 0, End: 0}},
			},
		},
		{
			name:  "single word",
			input: "hello",
			expected: []Token{
				{Type: TokenWord, Value: "hello", Position: Position{Start: 0, End: 5}},
				{Type: TokenEOF, Value: "", Position: Position{Start: 5, End: 5}},
			},
		},
		{
			name:  "two words with whitespace",
			input: "hello world",
			expected: []Token{
				{Type: TokenWord, Value: "hello", Position: Position{Start: 0, End: 5}},
				{Type: TokenWhitespace, Value: " ", Position: Position{Start: 5, End: 6}},
				{Type: TokenWord, Value: "world", Position: Position{Start: 6, End: 11}},
				{Type: TokenEOF, Value: "", Position: Position{Start: 11, End: 11}},
			},
		},
		{
			name:  "special characters",
			input: "( ) | - ~",
			expected: []Token{
				{Type: TokenLParen, Value: "(", Position: Position{Start: 0, End: 1}},
				{Type: TokenWhitespace, Value: " ", Position: Position{Start: 1, End: 2}},
				{Type: TokenRParen, Value: ")", Position: Position{Start: 2, End: 3}},
				{Type: TokenWhitespace, Value: " ", Position: Position{Start: 3, End: 4}},
				{Type: TokenPipe, Value: "|", Position: Position{Start: 4, End: 5}},
				{Type: TokenWhitespace, Value: " ", Position: Position{Start: 5, End: 6}},
				{Type: TokenMinus, Value: "-", Position: Position{Start: 6, End: 7}},
				{Type: TokenWhitespace, Value: " ", Position: Position{Start: 7, End: 8}},
				{Type: TokenTilde, Value: "~", Position: Position{Start: 8, End: 9}},
				{Type: TokenEOF, Value: "", Position: Position{Start: 9, End: 9}},
			},
		},
		{
			name:  "ini punctuation stays in words",
			input: "max-hp #3 a:b",
			expected: []Token{
				{Type: TokenWord, Value: "max-hp", Position: Position{Start: 0, End: 6}},
				{Type: TokenWhitespace, Value: " ", Position: Position{Start: 6, End: 7}},
				{Type: TokenWord, Value: "#3", Position: Position{Start: 7, End: 9}},
				{Type: TokenWhitespace, Value: " ", Position: Position{Start: 9, End: 10}},
				{Type: TokenWord, Value: "a:b", Position: Position{Start: 10, End: 13}},
				{Type: TokenEOF, Value: "", Position: Position{Start: 13, End: 13}},
			},
		},
		{
			name:  "double quoted string",
			input: `"hello world"`,
			expected: []Token{
				{Type: TokenDoubleQuoted, Value: "hello world", Position: Position{Start: 0, End: 13}},
				{Type: TokenEOF, Value: "", Position: Position{Start: 13, End: 13}},
			},
		},
		{
			name:  "single quoted string",
			input: `'hello world'`,
			expected: []Token{
				{Type: TokenSingleQuoted, Value: "hello world", Position: Position{Start: 0, End: 13}},
				{Type: TokenEOF, Value: "", Position: Position{Start: 13, End: 13}},
			},
		},
		{
			name:  "unterminated quote",
			input: `"abc`,
			expected: []Token{
				{Type: TokenDoubleQuoted, Value: "abc", Position: Position{Start: 0, End: 4}, Incomplete: true},
				{Type: TokenEOF, Value: "", Position: Position{Start: 4, End: 4}},
			},
		},
		{
			name:  "regular expression",
			input: `/a\/b/`,
			expected: []Token{
				{Type: TokenRegexp, Value: `a\/b`, Position: Position{Start: 0, End: 6}},
				{Type: TokenEOF, Value: "", Position: Position{Start: 6, End: 6}},
			},
		},
		{
			name:  "case sensitive regexp",
			input: "c/Hp/",
			expected: []Token{
				{Type: TokenCaseRegexp, Value: "Hp", Position: Position{Start: 0, End: 5}},
				{Type: TokenEOF, Value: "", Position: Position{Start: 5, End: 5}},
			},
		},
		{
			name:  "field prefix",
			input: "$key:health",
			expected: []Token{
				{Type: TokenField, Value: "key", Position: Position{Start: 0, End: 5}},
				{Type: TokenWord, Value: "health", Position: Position{Start: 5, End: 11}},
				{Type: TokenEOF, Value: "", Position: Position{Start: 11, End: 11}},
			},
		},
		{
			name:  "dollar without field shape is a word",
			input: "$5",
			expected: []Token{
				{Type: TokenWord, Value: "$5", Position: Position{Start: 0, End: 2}},
				{Type: TokenEOF, Value: "", Position: Position{Start: 2, End: 2}},
			},
		},
		{
			name:  "multibyte runes",
			input: "café x",
			expected: []Token{
				{Type: TokenWord, Value: "café", Position: Position{Start: 0, End: 5}},
				{Type: TokenWhitespace, Value: " ", Position: Position{Start: 5, End: 7}},
				{Type: TokenWord, Value: "x", Position: Position{Start: 7, End: 8}},
				{Type: TokenEOF, Value: "", Position: Position{Start: 8, End: 8}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewTokenizer(tt.input).GetAllTokens()
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("GetAllTokens(%q)\n got: %+v\nwant: %+v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTokensToString(t *testing.T) {
	input := "hello  world | -x"
	got := TokensToString(NewTokenizer(input).GetAllTokens())
	if got != input {
		t.Errorf("TokensToString() = %q, want %q", got, input)
	}
}
