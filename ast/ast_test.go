package ast

import (
	"bytes"
	"testing"

	"github.com/heapql/heapql/value"
	"github.com/stretchr/testify/assert"
)

func TestQueryFormatRoundTripShape(t *testing.T) {
	q := &Query{
		Root:         Objects,
		TypeSelector: TypeSelector{Patterns: []string{"java.lang.String"}},
		Predicate: &Comparison{
			Path:  []string{"shallow"},
			Op:    OpGt,
			Value: &Literal{Value: value.Int(100)},
		},
		Pipeline: []PipelineOp{
			&TopOp{N: 10, OrderBy: []string{"shallow"}, HasOrderBy: true, Desc: true},
		},
	}

	assert.Equal(t, `objects/java.lang.String[shallow > 100] | top(10, shallow)`, q.String())
}

func TestBoolExprFormat(t *testing.T) {
	expr := &And{
		Left: &Comparison{Path: []string{"a"}, Op: OpEq, Value: &Literal{Value: value.String("x")}},
		Right: &Not{Expr: &Comparison{
			Path: []string{"b"}, Op: OpNeq, Value: &Literal{Value: value.Int(1)},
		}},
	}
	var buf bytes.Buffer
	expr.Format(&buf)
	assert.Equal(t, `a = "x" and not b != 1`, buf.String())
}
