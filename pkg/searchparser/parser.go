// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Search Parser Grammar (EBNF):

// search           = WS? or_expr WS? EOF ;
// or_expr          = and_expr { WS? "|" WS? and_expr } ;
// and_expr         = token { WS token } ;
// token            = group | not_token | field_token ;
// group            = "(" WS? or_expr WS? ")" ;
// not_token        = "-" field_token ;
// field_token      = [ FIELD ] unmodified_token ;
// unmodified_token = fuzzy_token | regexp_token | simple_token ;
// fuzzy_token      = "~" simple_token ;
// regexp_token     = REGEXP | CREGEXP ;
// simple_token     = DQUOTE | SQUOTE | WORD ;
//
// Notes:
// - FIELD is "$name:" (e.g. $key:health), unknown field names never match
// - Empty control tokens ("~", "$name:") followed by a delimiter are errors
// - A lone "-" is a literal search for "-"
// - Single quoted tokens are case-sensitive (exactcase), ~'...' is fzfcase
// - Empty quotes and empty regexps are dropped

package searchparser

import (
	"fmt"
)

const (
	NodeTypeSearch = "search"
	NodeTypeAnd    = "and"
	NodeTypeOr     = "or"
	NodeTypeError  = "error"
)

const (
	SearchTypeExact      = "exact"
	SearchTypeExactCase  = "exactcase"
	SearchTypeRegexp     = "regexp"
	SearchTypeRegexpCase = "regexpcase"
	SearchTypeFzf        = "fzf"
	SearchTypeFzfCase    = "fzfcase"
)

type Position struct {
	Start int // Start position in the input string
	End   int // End position in the input string
}

type Node struct {
	Type         string   // NodeTypeAnd, NodeTypeOr, NodeTypeSearch, NodeTypeError
	Position     Position // Position in the source text
	Children     []*Node  // For composite nodes (AND/OR)
	SearchType   string   // only for search nodes
	SearchTerm   string   // only for search nodes
	Field        string   // optional field specifier (only for search nodes)
	IsNot        bool     // preceded by '-'
	ErrorMessage string   // for error nodes
}

// Errors returns every error node in the tree, in source order
func (n *Node) Errors() []*Node {
	if n == nil {
		return nil
	}
	if n.Type == NodeTypeError {
		return []*Node{n}
	}
	var rtn []*Node
	for _, child := range n.Children {
		rtn = append(rtn, child.Errors()...)
	}
	return rtn
}

type Parser struct {
	tokens   []Token
	position int
	input    string
}

// NewParser creates a parser and tokenizes the input.
func NewParser(input string) *Parser {
	return &Parser{
		tokens: NewTokenizer(input).GetAllTokens(),
		input:  input,
	}
}

// Parse parses input in one call. A blank query returns nil.
func Parse(input string) *Node {
	return NewParser(input).Parse()
}

func (p *Parser) current() Token {
	if p.position < len(p.tokens) {
		return p.tokens[p.position]
	}
	return Token{Type: TokenEOF, Position: Position{Start: len(p.input), End: len(p.input)}}
}

func (p *Parser) atEOF() bool {
	return p.current().Type == TokenEOF
}

func (p *Parser) advance() {
	if !p.atEOF() {
		p.position++
	}
}

func (p *Parser) isCurrentADelimiter() bool {
	switch p.current().Type {
	case TokenWhitespace, TokenPipe, TokenLParen, TokenRParen, TokenEOF:
		return true
	default:
		return false
	}
}

func (p *Parser) skipOptionalWhitespace() {
	for p.current().Type == TokenWhitespace {
		p.advance()
	}
}

func (p *Parser) consumeToken(tokenType TokenType) (Token, bool) {
	cur := p.current()
	if cur.Type != tokenType || cur.Type == TokenEOF {
		return cur, false
	}
	p.advance()
	return cur, true
}

func makeErrorNode(pos Position, msg string) *Node {
	return &Node{
		Type:         NodeTypeError,
		Position:     pos,
		ErrorMessage: msg,
	}
}

// errorToDelimiter swallows the rest of the current token into an error node
func (p *Parser) errorToDelimiter(msg string, pos Position) *Node {
	errNode := makeErrorNode(pos, msg)
	for !p.isCurrentADelimiter() {
		errNode.Position.End = p.current().Position.End
		p.advance()
	}
	return errNode
}

func removeNilNodes(nodes []*Node) []*Node {
	var result []*Node
	for _, node := range nodes {
		if node != nil {
			result = append(result, node)
		}
	}
	return result
}

func makeCompositeNode(nodeType string, children []*Node) *Node {
	children = removeNilNodes(children)
	if len(children) == 0 {
		return nil
	}
	if len(children) == 1 {
		return children[0]
	}
	return &Node{
		Type:     nodeType,
		Children: children,
		Position: Position{Start: children[0].Position.Start, End: children[len(children)-1].Position.End},
	}
}

// Parse builds the AST for the entire search expression.
func (p *Parser) Parse() *Node {
	p.skipOptionalWhitespace()
	node := p.parseOrExpr(false)
	p.skipOptionalWhitespace()
	if !p.atEOF() {
		cur := p.current()
		errNode := makeErrorNode(cur.Position, "unparsed input remaining")
		for !p.atEOF() {
			errNode.Position.End = p.current().Position.End
			p.advance()
		}
		return makeCompositeNode(NodeTypeAnd, []*Node{node, errNode})
	}
	return node
}

// or_expr = and_expr { WS? "|" WS? and_expr } ;
func (p *Parser) parseOrExpr(inGroup bool) *Node {
	var nodes []*Node
	for {
		p.skipOptionalWhitespace()
		if p.atEOF() || (inGroup && p.current().Type == TokenRParen) {
			break
		}
		if _, ok := p.consumeToken(TokenPipe); ok {
			// empty alternative, e.g. "a || b" or a leading "|"
			continue
		}
		nodes = append(nodes, p.parseAndExpr(inGroup))
		p.skipOptionalWhitespace()
		if _, ok := p.consumeToken(TokenPipe); !ok {
			break
		}
	}
	return makeCompositeNode(NodeTypeOr, nodes)
}

// and_expr = token { WS token } ;
func (p *Parser) parseAndExpr(inGroup bool) *Node {
	var nodes []*Node
	for {
		p.skipOptionalWhitespace()
		cur := p.current()
		if cur.Type == TokenEOF || cur.Type == TokenPipe {
			break
		}
		if cur.Type == TokenRParen {
			if inGroup {
				break
			}
			p.advance()
			nodes = append(nodes, makeErrorNode(cur.Position, "unmatched ')'"))
			continue
		}
		nodes = append(nodes, p.parseToken(inGroup))
	}
	return makeCompositeNode(NodeTypeAnd, nodes)
}

// token = group | not_token | field_token ;
func (p *Parser) parseToken(inGroup bool) *Node {
	cur := p.current()
	switch cur.Type {
	case TokenLParen:
		return p.parseGroup()
	case TokenMinus:
		p.advance()
		if p.isCurrentADelimiter() {
			return &Node{Type: NodeTypeSearch, Position: cur.Position, SearchType: SearchTypeExact, SearchTerm: "-"}
		}
		node := p.parseFieldToken()
		if node != nil && node.Type == NodeTypeSearch {
			node.IsNot = true
			node.Position.Start = cur.Position.Start
		}
		return node
	default:
		return p.parseFieldToken()
	}
}

// group = "(" WS? or_expr WS? ")" ;
func (p *Parser) parseGroup() *Node {
	open := p.current()
	p.advance()
	node := p.parseOrExpr(true)
	if _, ok := p.consumeToken(TokenRParen); !ok {
		errNode := makeErrorNode(open.Position, "unclosed '('")
		return makeCompositeNode(NodeTypeAnd, []*Node{node, errNode})
	}
	return node
}

// field_token = [ FIELD ] unmodified_token ;
func (p *Parser) parseFieldToken() *Node {
	cur := p.current()
	if cur.Type != TokenField {
		return p.parseUnmodifiedToken()
	}
	p.advance()
	if p.isCurrentADelimiter() {
		return makeErrorNode(cur.Position, fmt.Sprintf("missing search term after $%s:", cur.Value))
	}
	node := p.parseUnmodifiedToken()
	if node != nil && node.Type == NodeTypeSearch {
		node.Field = cur.Value
		node.Position.Start = cur.Position.Start
	}
	return node
}

// unmodified_token = fuzzy_token | regexp_token | simple_token ;
func (p *Parser) parseUnmodifiedToken() *Node {
	cur := p.current()
	switch cur.Type {
	case TokenTilde:
		p.advance()
		if p.isCurrentADelimiter() {
			return makeErrorNode(cur.Position, "missing search term after '~'")
		}
		node := p.parseSimpleToken()
		if node == nil || node.Type != NodeTypeSearch {
			return node
		}
		node.Position.Start = cur.Position.Start
		if node.SearchType == SearchTypeExactCase {
			node.SearchType = SearchTypeFzfCase
		} else {
			node.SearchType = SearchTypeFzf
		}
		return node
	case TokenRegexp, TokenCaseRegexp:
		p.advance()
		if cur.Value == "" {
			return nil
		}
		searchType := SearchTypeRegexp
		if cur.Type == TokenCaseRegexp {
			searchType = SearchTypeRegexpCase
		}
		return &Node{Type: NodeTypeSearch, Position: cur.Position, SearchType: searchType, SearchTerm: cur.Value}
	default:
		return p.parseSimpleToken()
	}
}

// simple_token = DQUOTE | SQUOTE | WORD ;
func (p *Parser) parseSimpleToken() *Node {
	cur := p.current()
	var searchType string
	switch cur.Type {
	case TokenWord, TokenDoubleQuoted:
		searchType = SearchTypeExact
	case TokenSingleQuoted:
		searchType = SearchTypeExactCase
	default:
		return p.errorToDelimiter(fmt.Sprintf("unexpected token %s", cur.Type), cur.Position)
	}
	p.advance()
	if cur.Value == "" {
		return nil
	}
	return &Node{
		Type:       NodeTypeSearch,
		Position:   cur.Position,
		SearchType: searchType,
		SearchTerm: cur.Value,
	}
}
