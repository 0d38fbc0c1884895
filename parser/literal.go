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
	"math"
	"strconv"
	"strings"

	"github.com/heapql/heapql/ast"
	"github.com/heapql/heapql/errors"
	"github.com/heapql/heapql/lexer"
	"github.com/heapql/heapql/value"
)

func stringValue(s string) value.Value { return value.String(s) }
func boolValue(b bool) value.Value     { return value.Bool(b) }
func nullValue() value.Value           { return value.Null }
func negInt(i int64) value.Value       { return value.Int(-i) }
func negFloat(f float64) value.Value   { return value.Float(-f) }
func zeroValue() value.Value           { return value.Int(0) }

// literalFromNumber parses a NUMBER token's literal, applying the binary
// size suffix (K/KB, M/MB, G/GB, case-insensitive, per spec invariant 4)
// and rejecting overflow.
func (p *parser) literalFromNumber(tok lexer.Token) (*ast.Literal, error) {
	lit := tok.Literal
	mult := int64(1)
	base := lit
	upper := strings.ToUpper(lit)
	switch {
	case strings.HasSuffix(upper, "KB"):
		mult = 1024
		base = lit[:len(lit)-2]
	case strings.HasSuffix(upper, "MB"):
		mult = 1024 * 1024
		base = lit[:len(lit)-2]
	case strings.HasSuffix(upper, "GB"):
		mult = 1024 * 1024 * 1024
		base = lit[:len(lit)-2]
	case strings.HasSuffix(upper, "K"):
		mult = 1024
		base = lit[:len(lit)-1]
	case strings.HasSuffix(upper, "M"):
		mult = 1024 * 1024
		base = lit[:len(lit)-1]
	case strings.HasSuffix(upper, "G"):
		mult = 1024 * 1024 * 1024
		base = lit[:len(lit)-1]
	}

	isFloat := strings.ContainsAny(base, ".eE")
	if !isFloat {
		n, err := strconv.ParseInt(base, 10, 64)
		if err != nil {
			return nil, errors.ParseErrorf(tok.Start, "invalid integer literal %q", lit)
		}
		if mult != 1 {
			result := n * mult
			if n != 0 && result/mult != n {
				return nil, errors.ParseErrorf(tok.Start, "integer literal %q overflows", lit)
			}
			n = result
		}
		return &ast.Literal{Value: value.Int(n)}, nil
	}

	f, err := strconv.ParseFloat(base, 64)
	if err != nil {
		return nil, errors.ParseErrorf(tok.Start, "invalid numeric literal %q", lit)
	}
	f *= float64(mult)
	if math.IsInf(f, 0) {
		return nil, errors.ParseErrorf(tok.Start, "numeric literal %q overflows", lit)
	}
	return &ast.Literal{Value: value.Float(f)}, nil
}
