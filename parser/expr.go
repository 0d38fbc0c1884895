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

package parser

import (
	"strings"

	"github.com/heapql/heapql/ast"
	"github.com/heapql/heapql/errors"
	"github.com/heapql/heapql/lexer"
)

// parseBoolExpr implements boolExpr := andExpr (or andExpr)*. '||' and the
// bare keyword "or" are both accepted.
func (p *parser) parseBoolExpr() (ast.BoolExpr, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == lexer.OR || (p.cur().Type == lexer.IDENT && p.cur().Literal == "or") {
		p.next()
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.Or{Left: left, Right: right}
	}
	return left, nil
}

// parseAndExpr implements andExpr := notExpr (and notExpr)*. '&&' and the
// bare keyword "and" are both accepted.
func (p *parser) parseAndExpr() (ast.BoolExpr, error) {
	left, err := p.parseNotExpr()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == lexer.AND || (p.cur().Type == lexer.IDENT && p.cur().Literal == "and") {
		p.next()
		right, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		left = &ast.And{Left: left, Right: right}
	}
	return left, nil
}

// parseNotExpr implements notExpr := 'not' notExpr | primaryBool. '!' and
// the bare keyword "not" are both accepted as the negation spelling.
func (p *parser) parseNotExpr() (ast.BoolExpr, error) {
	if p.cur().Type == lexer.NOT || (p.cur().Type == lexer.IDENT && p.cur().Literal == "not") {
		p.next()
		inner, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Not{Expr: inner}, nil
	}
	return p.parsePrimaryBool()
}

var quantifierKeywords = map[string]ast.Quantifier{
	"any":    ast.QuantAny,
	"exists": ast.QuantAny,
	"all":    ast.QuantAll,
	"forall": ast.QuantAll,
	"none":   ast.QuantNone,
}

// parsePrimaryBool implements:
//
//	primaryBool := '(' boolExpr ')' | quantifier '(' fieldPath op literal ')' | fieldPath op literal
//
// The quantifier alternative is this module's concrete syntax for the
// list-quantified predicates spec §4.E describes only as a mode selected
// "at query construction" without pinning down DSL surface syntax.
func (p *parser) parsePrimaryBool() (ast.BoolExpr, error) {
	if p.cur().Type == lexer.LPAREN {
		p.next()
		inner, err := p.parseBoolExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil
	}

	if p.cur().Type == lexer.IDENT && p.peek().Type == lexer.LPAREN {
		if quant, ok := quantifierKeywords[p.cur().Literal]; ok {
			p.next() // keyword
			p.next() // (
			cmp, err := p.parseComparison()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RPAREN); err != nil {
				return nil, err
			}
			cmp.Quant = quant
			return cmp, nil
		}
	}

	cmp, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	return cmp, nil
}

// parseComparison implements fieldPath op valueExpr.
func (p *parser) parseComparison() (*ast.Comparison, error) {
	path, err := p.parseFieldPath()
	if err != nil {
		return nil, err
	}
	op, ok := compareOpOf(p.cur().Type)
	if !ok {
		return nil, errors.ParseErrorf(p.cur().Start, "expected comparison operator, got %s %q", p.cur().Type, p.cur().Literal)
	}
	p.next()
	val, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return &ast.Comparison{Path: path, Op: op, Value: val}, nil
}

func compareOpOf(t lexer.Type) (ast.CompareOp, bool) {
	switch t {
	case lexer.ASSIGN, lexer.EQ:
		return ast.OpEq, true
	case lexer.NEQ:
		return ast.OpNeq, true
	case lexer.GT:
		return ast.OpGt, true
	case lexer.GTE:
		return ast.OpGte, true
	case lexer.LT:
		return ast.OpLt, true
	case lexer.LTE:
		return ast.OpLte, true
	case lexer.TILDE, lexer.REGEX_ASSIGN:
		return ast.OpRegex, true
	default:
		return 0, false
	}
}

// parseFieldPath implements fieldPath := ident ('.' ident | '/' ident)*.
// The lexer already folds plain dotted names into one IDENT, so only the
// '/'-joined continuation needs explicit handling here.
func (p *parser) parseFieldPath() ([]string, error) {
	tok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	path := splitDotted(tok.Literal)
	for p.cur().Type == lexer.SLASH && p.peek().Type == lexer.IDENT {
		p.next()
		seg, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		path = append(path, splitDotted(seg.Literal)...)
	}
	return path, nil
}

func splitDotted(s string) []string {
	return strings.Split(s, ".")
}

// parseAdditive implements the additive precedence level: '+'/'-'.
func (p *parser) parseAdditive() (ast.ValueExpr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == lexer.PLUS || p.cur().Type == lexer.MINUS {
		op := ast.OpAdd
		if p.cur().Type == lexer.MINUS {
			op = ast.OpSub
		}
		p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseMultiplicative implements the multiplicative precedence level:
// '*'/'/'. Division shares the SLASH token with the root/type-selector and
// field-path separators; within a value expression (always parsed inside a
// pipeline operator's parens) that separator use never arises, so the
// token is unambiguous in context.
func (p *parser) parseMultiplicative() (ast.ValueExpr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == lexer.STAR || p.cur().Type == lexer.SLASH {
		op := ast.OpMul
		if p.cur().Type == lexer.SLASH {
			op = ast.OpDiv
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseUnary folds a leading MINUS immediately preceding a primary into a
// negated literal (constant-folding NUMBER literals) or a Binary(0 - x) for
// non-literal operands, keeping the lexer itself free of sign lookbehind.
func (p *parser) parseUnary() (ast.ValueExpr, error) {
	if p.cur().Type == lexer.MINUS {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if lit, ok := inner.(*ast.Literal); ok {
			if i, ok := lit.Value.Int(); ok {
				return &ast.Literal{Value: negInt(i)}, nil
			}
			if f, ok := lit.Value.Float(); ok {
				return &ast.Literal{Value: negFloat(f)}, nil
			}
		}
		return &ast.Binary{Op: ast.OpSub, Left: &ast.Literal{Value: zeroValue()}, Right: inner}, nil
	}
	return p.parsePrimary()
}

// parsePrimary implements primary := literal | fieldRef | functionCall |
// stringTemplate | '(' additive ')'.
func (p *parser) parsePrimary() (ast.ValueExpr, error) {
	tok := p.cur()
	switch tok.Type {
	case lexer.LPAREN:
		p.next()
		inner, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil
	case lexer.NUMBER:
		p.next()
		return p.literalFromNumber(tok)
	case lexer.STRING:
		p.next()
		s, err := lexer.Unquote(tok.Literal)
		if err != nil {
			return nil, errors.ParseErrorf(tok.Start, "%s", err)
		}
		return &ast.Literal{Value: stringValue(s)}, nil
	case lexer.TEMPLATE:
		p.next()
		return p.parseStringTemplate(tok)
	case lexer.IDENT:
		switch tok.Literal {
		case "true":
			p.next()
			return &ast.Literal{Value: boolValue(true)}, nil
		case "false":
			p.next()
			return &ast.Literal{Value: boolValue(false)}, nil
		case "null":
			p.next()
			return &ast.Literal{Value: nullValue()}, nil
		}
		if p.peek().Type == lexer.LPAREN {
			return p.parseFunctionCall()
		}
		p.next()
		return &ast.FieldRef{Path: splitDotted(tok.Literal)}, nil
	default:
		return nil, errors.ParseErrorf(tok.Start, "expected value expression, got %s %q", tok.Type, tok.Literal)
	}
}

func (p *parser) parseFunctionCall() (ast.ValueExpr, error) {
	name := p.cur().Literal
	p.next() // ident
	p.next() // (
	var args []ast.ValueExpr
	if p.cur().Type != lexer.RPAREN {
		for {
			arg, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur().Type != lexer.COMMA {
				break
			}
			p.next()
		}
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return &ast.FunctionCall{Name: name, Args: args}, nil
}

// parseStringTemplate splits a backtick TEMPLATE token's body into literal
// and ${expr} parts, recursively parsing each embedded expression with a
// fresh parser positioned over just that substring.
func (p *parser) parseStringTemplate(tok lexer.Token) (ast.ValueExpr, error) {
	body := tok.Literal[1 : len(tok.Literal)-1]
	tmpl := &ast.StringTemplate{}
	i := 0
	for i < len(body) {
		j := strings.Index(body[i:], "${")
		if j < 0 {
			tmpl.Parts = append(tmpl.Parts, ast.TemplatePart{Literal: body[i:]})
			break
		}
		j += i
		if j > i {
			tmpl.Parts = append(tmpl.Parts, ast.TemplatePart{Literal: body[i:j]})
		}
		depth := 1
		k := j + 2
		for k < len(body) && depth > 0 {
			switch body[k] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth > 0 {
				k++
			}
		}
		if depth != 0 {
			return nil, errors.ParseErrorf(tok.Start+j, "unterminated ${...} in string template")
		}
		exprSrc := body[j+2 : k]
		sub := newParser(exprSrc)
		expr, err := sub.parseAdditive()
		if err != nil {
			return nil, errors.ParseErrorf(tok.Start+j+2, "invalid expression in string template: %s", err)
		}
		tmpl.Parts = append(tmpl.Parts, ast.TemplatePart{Expr: expr})
		i = k + 1
	}
	return tmpl, nil
}
