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
	"github.com/heapql/heapql/ast"
	"github.com/heapql/heapql/errors"
	"github.com/heapql/heapql/lexer"
)

// parsePipelineOp implements pipeOp := ident ('(' args ')')? and dispatches
// to the operator-specific parser named by the identifier.
func (p *parser) parsePipelineOp() (ast.PipelineOp, error) {
	tok, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	pos := ast.Position(tok.Start)

	if kind, ok := ast.ParseTransformKind(tok.Literal); ok {
		return p.parseTransformOp(pos, kind)
	}

	switch tok.Literal {
	case "select":
		return p.parseSelectOp(pos)
	case "filter", "where":
		return p.parseFilterOp(pos, tok.Literal)
	case "top":
		return p.parseTopOp(pos)
	case "head":
		return p.parseHeadOp(pos)
	case "tail":
		return p.parseTailOp(pos)
	case "sortBy":
		return p.parseSortByOp(pos)
	case "distinct":
		return p.parseDistinctOp(pos)
	case "count":
		return p.parseCountOp(pos)
	case "sum":
		return p.parseSumOp(pos)
	case "stats":
		return p.parseStatsOp(pos)
	case "groupBy":
		return p.parseGroupByOp(pos)
	case "pathToRoot":
		return p.parsePathToRootOp(pos)
	case "retentionPaths":
		return p.parseRetentionPathsOp(pos)
	case "retainedBreakdown":
		return p.parseRetainedBreakdownOp(pos)
	case "dominators":
		return p.parseDominatorsOp(pos)
	case "checkLeaks":
		return p.parseCheckLeaksOp(pos)
	default:
		return nil, errors.UnknownOperatorf(tok.Start, "unknown pipeline operator %q", tok.Literal)
	}
}

// openArgs consumes '(' if present and reports whether an arg list follows;
// operators that take no arguments tolerate a bare "name" with no parens at
// all (e.g. "count").
func (p *parser) openArgs() (bool, error) {
	if p.cur().Type != lexer.LPAREN {
		return false, nil
	}
	p.next()
	return true, nil
}

func (p *parser) closeArgs() error {
	_, err := p.expect(lexer.RPAREN)
	return err
}

func (p *parser) parseSelectOp(pos ast.Position) (ast.PipelineOp, error) {
	op := &ast.SelectOp{Position: pos}
	has, err := p.openArgs()
	if err != nil {
		return nil, err
	}
	if has && p.cur().Type != lexer.RPAREN {
		for {
			expr, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			field := ast.SelectField{Expr: expr}
			if ref, ok := expr.(*ast.FieldRef); ok {
				field.Path = ref.Path
			}
			if p.cur().Type == lexer.IDENT && p.cur().Literal == "as" {
				p.next()
				aliasTok, err := p.expect(lexer.IDENT)
				if err != nil {
					return nil, err
				}
				field.Alias = aliasTok.Literal
			}
			op.Fields = append(op.Fields, field)
			if p.cur().Type != lexer.COMMA {
				break
			}
			p.next()
		}
	}
	if has {
		if err := p.closeArgs(); err != nil {
			return nil, err
		}
	}
	return op, nil
}

func (p *parser) parseFilterOp(pos ast.Position, keyword string) (ast.PipelineOp, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	expr, err := p.parseBoolExpr()
	if err != nil {
		return nil, err
	}
	if err := p.closeArgs(); err != nil {
		return nil, err
	}
	return &ast.FilterOp{Position: pos, Keyword: keyword, Expr: expr}, nil
}

func (p *parser) parseIntLiteral() (int, error) {
	tok := p.cur()
	if tok.Type != lexer.NUMBER {
		return 0, errors.ParseErrorf(tok.Start, "expected integer, got %s %q", tok.Type, tok.Literal)
	}
	lit, err := p.literalFromNumber(tok)
	if err != nil {
		return 0, err
	}
	p.next()
	n, ok := lit.Value.Int()
	if !ok {
		return 0, errors.ArgumentErrorf(tok.Start, "expected integer, got %q", tok.Literal)
	}
	return int(n), nil
}

func (p *parser) parseTopOp(pos ast.Position) (ast.PipelineOp, error) {
	op := &ast.TopOp{Position: pos, Desc: true}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	n, err := p.parseIntLiteral()
	if err != nil {
		return nil, err
	}
	op.N = n
	if p.cur().Type == lexer.COMMA {
		p.next()
		path, err := p.parseFieldPath()
		if err != nil {
			return nil, err
		}
		op.OrderBy = path
		op.HasOrderBy = true
		if p.cur().Type == lexer.COMMA {
			p.next()
			dirTok, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			switch dirTok.Literal {
			case "asc":
				op.Desc = false
			case "desc":
				op.Desc = true
			default:
				return nil, errors.ArgumentErrorf(dirTok.Start, "expected asc or desc, got %q", dirTok.Literal)
			}
		}
	}
	if err := p.closeArgs(); err != nil {
		return nil, err
	}
	return op, nil
}

func (p *parser) parseHeadOp(pos ast.Position) (ast.PipelineOp, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	n, err := p.parseIntLiteral()
	if err != nil {
		return nil, err
	}
	if err := p.closeArgs(); err != nil {
		return nil, err
	}
	return &ast.HeadOp{Position: pos, N: n}, nil
}

func (p *parser) parseTailOp(pos ast.Position) (ast.PipelineOp, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	n, err := p.parseIntLiteral()
	if err != nil {
		return nil, err
	}
	if err := p.closeArgs(); err != nil {
		return nil, err
	}
	return &ast.TailOp{Position: pos, N: n}, nil
}

func (p *parser) parseSortByOp(pos ast.Position) (ast.PipelineOp, error) {
	op := &ast.SortByOp{Position: pos}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	for {
		path, err := p.parseFieldPath()
		if err != nil {
			return nil, err
		}
		key := ast.SortKey{Path: path}
		if p.cur().Type == lexer.IDENT && (p.cur().Literal == "asc" || p.cur().Literal == "desc") {
			key.Desc = p.cur().Literal == "desc"
			p.next()
		}
		op.Keys = append(op.Keys, key)
		if p.cur().Type != lexer.COMMA {
			break
		}
		p.next()
	}
	if err := p.closeArgs(); err != nil {
		return nil, err
	}
	return op, nil
}

func (p *parser) parseDistinctOp(pos ast.Position) (ast.PipelineOp, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	path, err := p.parseFieldPath()
	if err != nil {
		return nil, err
	}
	if err := p.closeArgs(); err != nil {
		return nil, err
	}
	return &ast.DistinctOp{Position: pos, Field: path}, nil
}

func (p *parser) parseCountOp(pos ast.Position) (ast.PipelineOp, error) {
	has, err := p.openArgs()
	if err != nil {
		return nil, err
	}
	if has {
		if err := p.closeArgs(); err != nil {
			return nil, err
		}
	}
	return &ast.CountOp{Position: pos}, nil
}

func (p *parser) parseSumOp(pos ast.Position) (ast.PipelineOp, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	path, err := p.parseFieldPath()
	if err != nil {
		return nil, err
	}
	if err := p.closeArgs(); err != nil {
		return nil, err
	}
	return &ast.SumOp{Position: pos, Field: path}, nil
}

func (p *parser) parseStatsOp(pos ast.Position) (ast.PipelineOp, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	path, err := p.parseFieldPath()
	if err != nil {
		return nil, err
	}
	if err := p.closeArgs(); err != nil {
		return nil, err
	}
	return &ast.StatsOp{Position: pos, Field: path}, nil
}

// parseTransformOp implements the element-wise string/number transforms:
// kind(field, [extra args...]).
func (p *parser) parseTransformOp(pos ast.Position, kind ast.TransformKind) (ast.PipelineOp, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	path, err := p.parseFieldPath()
	if err != nil {
		return nil, err
	}
	op := &ast.TransformOp{Position: pos, Kind: kind, Field: path}
	for p.cur().Type == lexer.COMMA {
		p.next()
		arg, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		op.Args = append(op.Args, arg)
	}
	if err := p.closeArgs(); err != nil {
		return nil, err
	}
	return op, nil
}

// isGroupByKeyword identifies the recognized keyword-argument names so the
// positional field-list loop knows where to stop.
func isGroupByKeyword(lit string) bool {
	switch lit {
	case "agg", "value", "sortBy", "asc":
		return true
	default:
		return false
	}
}

func (p *parser) parseGroupByOp(pos ast.Position) (ast.PipelineOp, error) {
	op := &ast.GroupByOp{Position: pos}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}

	// Positional field-path arguments come first.
	for p.cur().Type == lexer.IDENT && !(isGroupByKeyword(p.cur().Literal) && p.peek().Type == lexer.ASSIGN) {
		path, err := p.parseFieldPath()
		if err != nil {
			return nil, err
		}
		op.Fields = append(op.Fields, path)
		if p.cur().Type != lexer.COMMA {
			break
		}
		p.next()
	}

	seen := map[string]bool{}
	for p.cur().Type == lexer.COMMA || (p.cur().Type == lexer.IDENT && p.peek().Type == lexer.ASSIGN) {
		if p.cur().Type == lexer.COMMA {
			p.next()
		}
		keyTok, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		if seen[keyTok.Literal] {
			return nil, errors.ArgumentErrorf(keyTok.Start, "duplicate keyword argument %q", keyTok.Literal)
		}
		seen[keyTok.Literal] = true
		if _, err := p.expect(lexer.ASSIGN); err != nil {
			return nil, err
		}
		switch keyTok.Literal {
		case "agg":
			valTok, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			agg, ok := ast.ParseAggFunc(valTok.Literal)
			if !ok {
				return nil, errors.ArgumentErrorf(valTok.Start, "unknown agg %q", valTok.Literal)
			}
			op.Agg = agg
			op.HasAgg = true
		case "value":
			val, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			op.Value = val
		case "sortBy":
			valTok, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			if valTok.Literal != "key" && valTok.Literal != "value" {
				return nil, errors.ArgumentErrorf(valTok.Start, "sortBy must be key or value, got %q", valTok.Literal)
			}
			op.SortBy = valTok.Literal
		case "asc":
			valTok, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			op.Asc = valTok.Literal == "true"
			op.HasAsc = true
		default:
			return nil, errors.ArgumentErrorf(keyTok.Start, "unknown keyword argument %q", keyTok.Literal)
		}
	}

	if err := p.closeArgs(); err != nil {
		return nil, err
	}
	return op, nil
}

func (p *parser) parsePathToRootOp(pos ast.Position) (ast.PipelineOp, error) {
	has, err := p.openArgs()
	if err != nil {
		return nil, err
	}
	if has {
		if err := p.closeArgs(); err != nil {
			return nil, err
		}
	}
	return &ast.PathToRootOp{Position: pos}, nil
}

func (p *parser) parseRetentionPathsOp(pos ast.Position) (ast.PipelineOp, error) {
	has, err := p.openArgs()
	if err != nil {
		return nil, err
	}
	if has {
		if err := p.closeArgs(); err != nil {
			return nil, err
		}
	}
	return &ast.RetentionPathsOp{Position: pos}, nil
}

func (p *parser) parseRetainedBreakdownOp(pos ast.Position) (ast.PipelineOp, error) {
	op := &ast.RetainedBreakdownOp{Position: pos}
	has, err := p.openArgs()
	if err != nil {
		return nil, err
	}
	if has && p.cur().Type != lexer.RPAREN {
		keyTok, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		if keyTok.Literal != "maxDepth" {
			return nil, errors.ArgumentErrorf(keyTok.Start, "unknown keyword argument %q", keyTok.Literal)
		}
		if _, err := p.expect(lexer.ASSIGN); err != nil {
			return nil, err
		}
		n, err := p.parseIntLiteral()
		if err != nil {
			return nil, err
		}
		op.MaxDepth = n
		op.HasMaxDepth = true
	}
	if has {
		if err := p.closeArgs(); err != nil {
			return nil, err
		}
	}
	return op, nil
}

func (p *parser) parseDominatorsOp(pos ast.Position) (ast.PipelineOp, error) {
	op := &ast.DominatorsOp{Position: pos}
	has, err := p.openArgs()
	if err != nil {
		return nil, err
	}
	if has && p.cur().Type != lexer.RPAREN {
		if p.cur().Type == lexer.IDENT && p.peek().Type == lexer.ASSIGN {
			keyTok, _ := p.expect(lexer.IDENT)
			if keyTok.Literal != "mode" {
				return nil, errors.ArgumentErrorf(keyTok.Start, "unknown keyword argument %q", keyTok.Literal)
			}
			p.next() // =
			valTok, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			op.Mode = valTok.Literal
		} else {
			valTok, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			op.Mode = valTok.Literal
		}
	}
	if has {
		if err := p.closeArgs(); err != nil {
			return nil, err
		}
	}
	return op, nil
}

// parseCheckLeaksOp enforces the spec §3 invariant that exactly one of
// detector= or filter= is present.
func (p *parser) parseCheckLeaksOp(pos ast.Position) (ast.PipelineOp, error) {
	op := &ast.CheckLeaksOp{Position: pos}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	hasDetector := false
	for {
		keyTok, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.ASSIGN); err != nil {
			return nil, err
		}
		switch keyTok.Literal {
		case "detector":
			valTok, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			op.Detector = valTok.Literal
			hasDetector = true
		case "filter":
			expr, err := p.parseBoolExpr()
			if err != nil {
				return nil, err
			}
			op.Filter = expr
			op.HasFilter = true
		default:
			return nil, errors.ArgumentErrorf(keyTok.Start, "unknown keyword argument %q", keyTok.Literal)
		}
		if p.cur().Type != lexer.COMMA {
			break
		}
		p.next()
	}
	if err := p.closeArgs(); err != nil {
		return nil, err
	}
	if hasDetector == op.HasFilter {
		return nil, errors.ArgumentErrorf(int(pos), "checkLeaks requires exactly one of detector= or filter=")
	}
	return op, nil
}
