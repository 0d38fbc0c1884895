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
	"testing"

	"github.com/heapql/heapql/ast"
	"github.com/heapql/heapql/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenarioC(t *testing.T) {
	q, err := Parse(`objects/java.lang.String[shallow > 100] | top(10, shallow)`)
	require.NoError(t, err)
	assert.Equal(t, ast.Objects, q.Root)
	assert.Equal(t, []string{"java.lang.String"}, q.TypeSelector.Patterns)
	cmp, ok := q.Predicate.(*ast.Comparison)
	require.True(t, ok)
	assert.Equal(t, []string{"shallow"}, cmp.Path)
	assert.Equal(t, ast.OpGt, cmp.Op)
	lit, ok := cmp.Value.(*ast.Literal)
	require.True(t, ok)
	n, _ := lit.Value.Int()
	assert.EqualValues(t, 100, n)
	require.Len(t, q.Pipeline, 1)
	top, ok := q.Pipeline[0].(*ast.TopOp)
	require.True(t, ok)
	assert.Equal(t, 10, top.N)
	assert.Equal(t, []string{"shallow"}, top.OrderBy)
	assert.True(t, top.Desc)
}

func TestParsePrintParseRoundTrip(t *testing.T) {
	queries := []string{
		`objects/java.lang.String[shallow > 100] | top(10, shallow)`,
		`objects[retained >= 1024] | sortBy(retained desc) | head(5)`,
		`objects | groupBy(class, agg=sum, value=shallow) | sortBy(shallow desc)`,
		`classes[instanceCount > 1000] | top(2, instanceCount)`,
		`objects/*String* | count()`,
		`objects | filter(any(tags.value == "x")) | distinct(class)`,
	}
	for _, src := range queries {
		q1, err := Parse(src)
		require.NoError(t, err, src)
		printed := q1.String()
		q2, err := Parse(printed)
		require.NoError(t, err, printed)
		assert.Equal(t, q1.String(), q2.String(), src)
	}
}

func TestParseCheckLeaksExpandsDefaultRoot(t *testing.T) {
	q, err := Parse(`checkLeaks(detector=growingCollections)`)
	require.NoError(t, err)
	assert.Equal(t, ast.Objects, q.Root)
	require.Len(t, q.Pipeline, 1)
	cl, ok := q.Pipeline[0].(*ast.CheckLeaksOp)
	require.True(t, ok)
	assert.Equal(t, "growingCollections", cl.Detector)
	assert.False(t, cl.HasFilter)
}

func TestParseCheckLeaksRejectsBothDetectorAndFilter(t *testing.T) {
	_, err := Parse(`checkLeaks(detector=growingCollections, filter=shallow > 0)`)
	require.Error(t, err)
	kind, ok := errors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, errors.KindArgumentError, kind)
}

func TestParseCheckLeaksRejectsNeitherDetectorNorFilter(t *testing.T) {
	_, err := Parse(`checkLeaks()`)
	require.Error(t, err)
}

func TestParseSelectWithBinaryConcatenation(t *testing.T) {
	q, err := Parse("objects | select(path + \" (\" + bytes + \" bytes)\" as description)")
	require.NoError(t, err)
	sel, ok := q.Pipeline[0].(*ast.SelectOp)
	require.True(t, ok)
	require.Len(t, sel.Fields, 1)
	assert.Equal(t, "description", sel.Fields[0].Alias)
	_, ok = sel.Fields[0].Expr.(*ast.Binary)
	assert.True(t, ok)
}

func TestParseStringTemplate(t *testing.T) {
	q, err := Parse("objects | select(`${path} (${bytes} bytes)` as description)")
	require.NoError(t, err)
	sel := q.Pipeline[0].(*ast.SelectOp)
	tmpl, ok := sel.Fields[0].Expr.(*ast.StringTemplate)
	require.True(t, ok)
	require.Len(t, tmpl.Parts, 4)
	assert.Equal(t, " (", tmpl.Parts[1].Literal)
}

func TestParseQuantifiedPredicate(t *testing.T) {
	q, err := Parse(`objects[any(refs.size > 100)]`)
	require.NoError(t, err)
	cmp, ok := q.Predicate.(*ast.Comparison)
	require.True(t, ok)
	assert.Equal(t, ast.QuantAny, cmp.Quant)
	assert.Equal(t, []string{"refs", "size"}, cmp.Path)
}

func TestParseByteSuffixLiterals(t *testing.T) {
	cases := map[string]int64{
		"1K":  1024,
		"1MB": 1048576,
		"1G":  1073741824,
	}
	for lit, want := range cases {
		q, err := Parse(`objects[shallow > ` + lit + `]`)
		require.NoError(t, err, lit)
		cmp := q.Predicate.(*ast.Comparison)
		n, _ := cmp.Value.(*ast.Literal).Value.Int()
		assert.Equal(t, want, n, lit)
	}
}

func TestParseNegativeNumberFolds(t *testing.T) {
	q, err := Parse(`objects[shallow > -5]`)
	require.NoError(t, err)
	cmp := q.Predicate.(*ast.Comparison)
	lit := cmp.Value.(*ast.Literal)
	n, _ := lit.Value.Int()
	assert.EqualValues(t, -5, n)
}

func TestParseUnknownOperator(t *testing.T) {
	_, err := Parse(`objects | bogus(1)`)
	require.Error(t, err)
	kind, ok := errors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, errors.KindUnknownOperator, kind)
}

func TestParseMalformedQueryReturnsParseError(t *testing.T) {
	_, err := Parse(`objects[shallow >]`)
	require.Error(t, err)
	kind, ok := errors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, errors.KindParseError, kind)
}

func TestParseArraySuffixNormalizesToDescriptor(t *testing.T) {
	q, err := Parse(`objects/int[]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"[I"}, q.TypeSelector.Patterns)

	q2, err := Parse(`objects/java.lang.Object[][]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"[[Ljava.lang.Object;"}, q2.TypeSelector.Patterns)
}
