// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package searchparser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType represents the type of token
type TokenType string

const (
	TokenWord         TokenType = "WORD"         // Plain word token
	TokenDoubleQuoted TokenType = "DOUBLEQUOTED" // Double quoted string
	TokenSingleQuoted TokenType = "SINGLEQUOTED" // Single quoted string
	TokenRegexp       TokenType = "REGEXP"       // Regular expression
	TokenCaseRegexp   TokenType = "CASEREGEXP"   // Case-sensitive regexp
	TokenField        TokenType = "FIELD"        // $name: field prefix, Value is the name
	TokenWhitespace   TokenType = "WHITESPACE"   // Whitespace
	TokenEOF          TokenType = "EOF"          // End of input

	TokenLParen TokenType = "("
	TokenRParen TokenType = ")"
	TokenPipe   TokenType = "|"
	TokenMinus  TokenType = "-"
	TokenTilde  TokenType = "~"
)

// Token represents a token in the search expression
type Token struct {
	Type       TokenType
	Value      string
	Position   Position
	Incomplete bool // unterminated quote or regexp
}

// Tokenizer is a lexer for search expressions. Positions are byte offsets.
type Tokenizer struct {
	input        string
	position     int  // start of the current char
	readPosition int  // start of the next char
	ch           rune // current char, 0 at EOF
}

// NewTokenizer creates a new tokenizer for the given input
func NewTokenizer(input string) *Tokenizer {
	t := &Tokenizer{input: input}
	t.readChar()
	return t
}

func (t *Tokenizer) readChar() {
	t.position = t.readPosition
	if t.readPosition >= len(t.input) {
		t.ch = 0
		return
	}
	r, width := utf8.DecodeRuneInString(t.input[t.readPosition:])
	t.ch = r
	t.readPosition += width
}

func (t *Tokenizer) peek() rune {
	if t.readPosition >= len(t.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(t.input[t.readPosition:])
	return r
}

func (t *Tokenizer) readWhitespace() string {
	startPos := t.position
	for t.ch != 0 && unicode.IsSpace(t.ch) {
		t.readChar()
	}
	return t.input[startPos:t.position]
}

func (t *Tokenizer) singleCharToken(tokenType TokenType) Token {
	tok := Token{Type: tokenType, Value: string(t.ch), Position: Position{Start: t.position, End: t.readPosition}}
	t.readChar()
	return tok
}

// NextToken returns the next token from the input
func (t *Tokenizer) NextToken() Token {
	startPos := t.position

	switch {
	case t.ch == 0:
		return Token{Type: TokenEOF, Position: Position{Start: startPos, End: startPos}}
	case unicode.IsSpace(t.ch):
		value := t.readWhitespace()
		return Token{Type: TokenWhitespace, Value: value, Position: Position{Start: startPos, End: t.position}}
	case t.ch == '(':
		return t.singleCharToken(TokenLParen)
	case t.ch == ')':
		return t.singleCharToken(TokenRParen)
	case t.ch == '|':
		return t.singleCharToken(TokenPipe)
	case t.ch == '-':
		return t.singleCharToken(TokenMinus)
	case t.ch == '~':
		return t.singleCharToken(TokenTilde)
	case t.ch == '$':
		if tok, ok := t.readField(); ok {
			return tok
		}
		value := t.readWord()
		return Token{Type: TokenWord, Value: value, Position: Position{Start: startPos, End: t.position}}
	case t.ch == '"':
		value, incomplete := t.readQuoted('"')
		return Token{Type: TokenDoubleQuoted, Value: value, Position: Position{Start: startPos, End: t.position}, Incomplete: incomplete}
	case t.ch == '\'':
		value, incomplete := t.readQuoted('\'')
		return Token{Type: TokenSingleQuoted, Value: value, Position: Position{Start: startPos, End: t.position}, Incomplete: incomplete}
	case t.ch == '/':
		value, incomplete := t.readRegexpString()
		return Token{Type: TokenRegexp, Value: value, Position: Position{Start: startPos, End: t.position}, Incomplete: incomplete}
	case t.ch == 'c' && t.peek() == '/':
		t.readChar() // skip 'c'
		value, incomplete := t.readRegexpString()
		return Token{Type: TokenCaseRegexp, Value: value, Position: Position{Start: startPos, End: t.position}, Incomplete: incomplete}
	default:
		value := t.readWord()
		return Token{Type: TokenWord, Value: value, Position: Position{Start: startPos, End: t.position}}
	}
}

// readField reads "$name:". When the input does not have that shape nothing
// is consumed and ok is false.
func (t *Tokenizer) readField() (Token, bool) {
	startPos := t.position
	rest := t.input[t.readPosition:]
	end := strings.IndexFunc(rest, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
	if end <= 0 || rest[end] != ':' {
		return Token{}, false
	}
	name := rest[:end]
	for t.ch != ':' {
		t.readChar()
	}
	t.readChar() // skip ':'
	return Token{Type: TokenField, Value: name, Position: Position{Start: startPos, End: t.position}}, true
}

// readQuoted reads a string enclosed in quote. The bool is true when the
// input ends before the closing quote.
func (t *Tokenizer) readQuoted(quote rune) (string, bool) {
	t.readChar() // skip opening quote
	startPos := t.position
	for t.ch != quote && t.ch != 0 {
		t.readChar()
	}
	value := t.input[startPos:t.position]
	incomplete := t.ch == 0
	if t.ch == quote {
		t.readChar()
	}
	return value, incomplete
}

// readRegexpString reads a regexp enclosed in slashes, "\/" does not end it
func (t *Tokenizer) readRegexpString() (string, bool) {
	t.readChar() // skip opening slash
	startPos := t.position
	escaped := false
	for t.ch != 0 {
		if escaped {
			escaped = false
		} else if t.ch == '\\' {
			escaped = true
		} else if t.ch == '/' {
			break
		}
		t.readChar()
	}
	value := t.input[startPos:t.position]
	incomplete := t.ch == 0
	if t.ch == '/' {
		t.readChar()
	}
	return value, incomplete
}

// readWord reads until whitespace or a delimiter. "-", "~", "/" and "$" are
// only special at the start of a token, so "max-hp" and "a/b" are one word.
func (t *Tokenizer) readWord() string {
	startPos := t.position
	for t.ch != 0 && !isWordBreak(t.ch) {
		t.readChar()
	}
	return t.input[startPos:t.position]
}

func isWordBreak(ch rune) bool {
	return unicode.IsSpace(ch) ||
		ch == '(' || ch == ')' || ch == '|' ||
		ch == '"' || ch == '\''
}

// GetAllTokens tokenizes the entire input, the last token is always EOF
func (t *Tokenizer) GetAllTokens() []Token {
	var tokens []Token
	for {
		tok := t.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			break
		}
	}
	return tokens
}

// TokensToString converts a slice of tokens back to source text
func TokensToString(tokens []Token) string {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.Value)
	}
	return sb.String()
}
