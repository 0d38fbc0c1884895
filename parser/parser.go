/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package parser implements the recursive-descent DSL parser: root/type
// selector/predicate/pipeline, producing an *ast.Query. It carries the
// cur/peek two-token lookahead shape of the teacher's rsql parser, but
// emits the discriminated-union ast package instead of a generic Call AST.
package parser

import (
	"github.com/heapql/heapql/ast"
	"github.com/heapql/heapql/errors"
	"github.com/heapql/heapql/lexer"
)

// parser holds the two-token lookahead state used throughout. Exported
// entry point is the package-level Parse function.
type parser struct {
	toks []lexer.Token
	pos  int // index of curToken within toks
}

func newParser(src string) *parser {
	toks := lexer.Tokenize(src)
	return &parser{toks: toks}
}

func (p *parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.toks[p.pos]
}

func (p *parser) peek() lexer.Token {
	if p.pos+1 >= len(p.toks) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.toks[p.pos+1]
}

func (p *parser) next() {
	if p.pos < len(p.toks) {
		p.pos++
	}
}

// expect advances past the current token if it has type t, else returns a
// ParseError at the current offset.
func (p *parser) expect(t lexer.Type) (lexer.Token, error) {
	tok := p.cur()
	if tok.Type != t {
		return tok, errors.ParseErrorf(tok.Start, "expected %s, got %s %q", t, tok.Type, tok.Literal)
	}
	p.next()
	return tok, nil
}

// Parse parses a complete query string into an *ast.Query.
func Parse(src string) (*ast.Query, error) {
	p := newParser(src)

	// A leading checkLeaks(...) with no explicit root expands to
	// "objects | checkLeaks(...)" per spec §4.D.
	if p.cur().Type == lexer.IDENT && p.cur().Literal == "checkLeaks" {
		q := &ast.Query{Root: ast.Objects}
		op, err := p.parsePipelineOp()
		if err != nil {
			return nil, err
		}
		q.Pipeline = append(q.Pipeline, op)
		if err := p.parseRemainingPipeline(q); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.EOF); err != nil {
			return nil, err
		}
		return q, nil
	}

	q := &ast.Query{}

	rootTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	root, ok := ast.ParseRoot(rootTok.Literal)
	if !ok {
		return nil, errors.ParseErrorf(rootTok.Start, "unknown root %q", rootTok.Literal)
	}
	q.Root = root

	if p.cur().Type == lexer.SLASH {
		p.next()
		sel, err := p.parseTypeSelector()
		if err != nil {
			return nil, err
		}
		q.TypeSelector = sel
	}

	if p.cur().Type == lexer.LBRACKET {
		p.next()
		pred, err := p.parseBoolExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBRACKET); err != nil {
			return nil, err
		}
		q.Predicate = pred
	}

	if err := p.parseRemainingPipeline(q); err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.EOF); err != nil {
		return nil, err
	}
	return q, nil
}

func (p *parser) parseRemainingPipeline(q *ast.Query) error {
	for p.cur().Type == lexer.PIPE {
		p.next()
		op, err := p.parsePipelineOp()
		if err != nil {
			return err
		}
		q.Pipeline = append(q.Pipeline, op)
	}
	return nil
}

// parseTypeSelector parses the ('instanceof')? (name | '(' name ('|' name)* ')')
// production. Patterns are normalized (array-suffix/descriptor form) by
// normalizeTypePattern.
func (p *parser) parseTypeSelector() (ast.TypeSelector, error) {
	var sel ast.TypeSelector
	if p.cur().Type == lexer.IDENT && p.cur().Literal == "instanceof" {
		sel.Subtypes = true
		p.next()
	}
	if p.cur().Type == lexer.LPAREN {
		p.next()
		for {
			name, err := p.parseTypePatternToken()
			if err != nil {
				return sel, err
			}
			sel.Patterns = append(sel.Patterns, name)
			if p.cur().Type == lexer.PIPE {
				p.next()
				continue
			}
			break
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return sel, err
		}
		return sel, nil
	}
	name, err := p.parseTypePatternToken()
	if err != nil {
		return sel, err
	}
	sel.Patterns = []string{name}
	return sel, nil
}

// parseTypePatternToken reads one type pattern by gluing together IDENT
// pieces (dotted names), '*' (lexed as STAR) and '?' (lexed as ILLEGAL),
// plus any number of "[]" array suffixes, which normalizeTypePattern turns
// into descriptor form. A '[' not immediately followed by ']' ends the
// pattern, or is an error when nothing precedes it, so a JVM descriptor
// spelling such as "[I" is not accepted as input.
func (p *parser) parseTypePatternToken() (string, error) {
	var out string
	for {
		switch p.cur().Type {
		case lexer.IDENT:
			out += p.cur().Literal
			p.next()
		case lexer.STAR:
			out += "*"
			p.next()
		case lexer.NOT:
			// '!' never appears in a type pattern; bail so the caller sees
			// a clear error instead of silently looping.
			if out == "" {
				return "", errors.ParseErrorf(p.cur().Start, "expected type pattern")
			}
			return normalizeTypePattern(out), nil
		case lexer.LBRACKET:
			// Java array suffix ("int[]", "int[][]") only when the '['
			// is immediately followed by ']' — a predicate's opening
			// bracket (e.g. "...String[shallow > 100]") is not consumed
			// here.
			if p.peek().Type != lexer.RBRACKET {
				if out == "" {
					return "", errors.ParseErrorf(p.cur().Start, "expected type pattern")
				}
				return normalizeTypePattern(out), nil
			}
			p.next()
			p.next()
			out += "[]"
		default:
			if out == "" {
				return "", errors.ParseErrorf(p.cur().Start, "expected type pattern, got %s", p.cur().Type)
			}
			return normalizeTypePattern(out), nil
		}
		// A glob pattern may have interior '?' lexed as ILLEGAL since '?' is
		// not assigned a token of its own; accept it verbatim here.
		if p.cur().Type == lexer.ILLEGAL && p.cur().Literal == "?" {
			out += "?"
			p.next()
		}
	}
}
