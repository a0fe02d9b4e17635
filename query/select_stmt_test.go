/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func compPred(left *ValueExpr, op string, right *ValueExpr) *BoolFactor {
	return NewBoolFactor(&CompPredicate{Left: left, Op: op, Right: right})
}

func whereOf(terms ...BoolTerm) BoolTerm {
	return &OrTerm{Terms: []BoolTerm{&AndTerm{Terms: terms}}}
}

func mockStatement() *SelectStatement {
	stmt := NewSelectStatement()
	stmt.SelectList = []*ValueExpr{NewFactorExpr(&Star{})}
	stmt.FromList = []*TableRef{{Db: "LSST", Table: ChunkTableName("Object", false), Alias: "LSST.Object"}}
	stmt.Where = whereOf(compPred(NewColumnRefExpr("", "LSST.Object", "someField"), ">", NewConstExpr("5.0")))
	return stmt
}

func TestSelectStatementRender(t *testing.T) {
	stmt := mockStatement()
	assert.Equal(t, "SELECT * FROM LSST.Object_%CC% AS `LSST.Object` WHERE `LSST.Object`.someField > 5.0", stmt.String())
	assert.Equal(t, "SELECT * FROM LSST.Object_100 AS `LSST.Object` WHERE `LSST.Object`.someField > 5.0", stmt.Template().Generate(100))
}

func TestSelectStatementRenderClauses(t *testing.T) {
	stmt := NewSelectStatement()
	stmt.Distinct = true
	stmt.SelectList = []*ValueExpr{
		NewColumnRefExpr("", "o", "objectId"),
		{Alias: "n", Factors: []FactorOp{{Factor: &AggFunc{Name: "COUNT", Params: []*ValueExpr{NewFactorExpr(&Star{})}}}}},
		{Factors: []FactorOp{{Factor: &ColumnRef{Column: "flux_g"}, Op: "+"}, {Factor: &Const{Val: "1"}}}},
	}
	stmt.FromList = []*TableRef{{
		Db:    "LSST",
		Table: "Object",
		Alias: "o",
		Joins: []*JoinRef{{
			Type:  JoinInner,
			Right: &TableRef{Db: "LSST", Table: "Source", Alias: "s"},
			Spec:  &JoinSpec{On: compPred(NewColumnRefExpr("", "o", "objectId"), "=", NewColumnRefExpr("", "s", "objectId"))},
		}},
	}}
	stmt.Where = whereOf(
		compPred(NewColumnRefExpr("", "o", "flux_r"), ">", NewConstExpr("1")),
		&OrTerm{Terms: []BoolTerm{
			compPred(NewColumnRefExpr("", "s", "filterId"), "=", NewConstExpr("1")),
			compPred(NewColumnRefExpr("", "s", "filterId"), "=", NewConstExpr("2")),
		}},
		NewBoolFactor(&LikePredicate{Value: NewColumnRefExpr("", "o", "name"), Pattern: NewConstExpr("'%CC%'")}),
	)
	stmt.GroupBy = []*ValueExpr{NewColumnRefExpr("", "o", "objectId")}
	stmt.Having = whereOf(compPred(NewFactorExpr(&AggFunc{Name: "COUNT", Params: []*ValueExpr{NewFactorExpr(&Star{})}}), ">", NewConstExpr("2")))
	stmt.OrderBy = []*OrderByTerm{{Expr: NewColumnRefExpr("", "o", "objectId"), Desc: true}}
	stmt.Limit = 10

	want := "SELECT DISTINCT o.objectId, COUNT(*) AS `n`, flux_g + 1 FROM LSST.Object AS `o` INNER JOIN LSST.Source AS `s` ON o.objectId = s.objectId" +
		" WHERE o.flux_r > 1 AND (s.filterId = 1 OR s.filterId = 2) AND o.name LIKE '%CC%'" +
		" GROUP BY o.objectId HAVING COUNT(*) > 2 ORDER BY o.objectId DESC LIMIT 10"
	assert.Equal(t, want, stmt.String())
	// Only table names are substituted.
	assert.Equal(t, want, stmt.Template().Generate(7))
	assert.Equal(t, 2, len(stmt.Tables()))
	assert.Equal(t, 1, len(stmt.JoinConditions()))
}

func TestSelectStatementRenderPredicates(t *testing.T) {
	col := NewColumnRefExpr("", "o", "x")
	tests := []struct {
		term BoolFactorTerm
		want string
	}{
		{&BetweenPredicate{Value: col, Min: NewConstExpr("1"), Max: NewConstExpr("2")}, "o.x BETWEEN 1 AND 2"},
		{&BetweenPredicate{Value: col, Not: true, Min: NewConstExpr("1"), Max: NewConstExpr("2")}, "o.x NOT BETWEEN 1 AND 2"},
		{&InPredicate{Value: col, Cands: []*ValueExpr{NewConstExpr("1"), NewConstExpr("2")}}, "o.x IN (1, 2)"},
		{&InPredicate{Value: col, Not: true, Cands: []*ValueExpr{NewConstExpr("1")}}, "o.x NOT IN (1)"},
		{&NullPredicate{Value: col}, "o.x IS NULL"},
		{&NullPredicate{Value: col, Not: true}, "o.x IS NOT NULL"},
		{&LikePredicate{Value: col, Not: true, Pattern: NewConstExpr("'a%'")}, "o.x NOT LIKE 'a%'"},
		{&PassTerm{Text: "TRUE"}, "TRUE"},
		{&PassListTerm{Terms: []string{"1", "2"}}, "(1, 2)"},
		{&ValueExprTerm{Expr: NewFactorExpr(&FuncExpr{Name: "f", Params: []*ValueExpr{col}})}, "f(o.x)"},
		{&BoolTermFactor{Term: &OrTerm{Terms: []BoolTerm{compPred(col, "<", NewConstExpr("1")), compPred(col, ">", NewConstExpr("2"))}}}, "(o.x < 1 OR o.x > 2)"},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, NewBoolFactor(test.term).String())
	}
	not := &BoolFactor{HasNot: true, Terms: []BoolFactorTerm{&BoolTermFactor{Term: compPred(col, "=", NewConstExpr("1"))}}}
	assert.Equal(t, "NOT (o.x = 1)", not.String())
}

func TestSelectStatementClone(t *testing.T) {
	stmt := mockStatement()
	stmt.OrderBy = []*OrderByTerm{{Expr: NewColumnRefExpr("", "LSST.Object", "someField")}}
	stmt.GroupBy = []*ValueExpr{NewColumnRefExpr("", "LSST.Object", "someField")}
	stmt.Having = whereOf(compPred(NewColumnRefExpr("", "", "x"), "=", NewConstExpr("1")))
	stmt.FromList[0].Joins = []*JoinRef{{
		Type:  JoinDefault,
		Right: &TableRef{Db: "LSST", Table: "Source", Alias: "s"},
		Spec:  &JoinSpec{Using: []string{"objectId"}},
	}}

	clone := stmt.Clone()
	assert.Equal(t, "", cmp.Diff(stmt, clone))
	assert.Equal(t, stmt.String(), clone.String())

	// Mutating the clone leaves the original alone.
	clone.SelectList[0] = NewColumnRefExpr("", "LSST.Object", "objectId")
	RootAndTerm(clone.Where).Terms = nil
	clone.FromList[0].Joins[0].Right.Table = "Filter"
	clone.FromList[0].Joins[0].Spec.Using[0] = "x"
	clone.OrderBy[0].Desc = true
	clone.GroupBy[0].ColumnRef().Column = "y"
	assert.Equal(t, "SELECT * FROM LSST.Object_%CC% AS `LSST.Object` JOIN LSST.Source AS `s` USING (objectId)"+
		" WHERE `LSST.Object`.someField > 5.0 GROUP BY `LSST.Object`.someField HAVING x = 1 ORDER BY `LSST.Object`.someField ASC",
		stmt.String())
}

func TestBoolTermReduce(t *testing.T) {
	a := compPred(NewColumnRefExpr("", "", "a"), "=", NewConstExpr("1"))
	b := compPred(NewColumnRefExpr("", "", "b"), "=", NewConstExpr("2"))

	// Single-child OR/AND collapse.
	{
		term := &OrTerm{Terms: []BoolTerm{&AndTerm{Terms: []BoolTerm{a}}}}
		r := term.Reduce()
		assert.Equal(t, a, r)
		assert.Nil(t, r.Reduce())
	}

	// A parenthesized disjunction unwraps.
	{
		or := &OrTerm{Terms: []BoolTerm{a, b}}
		term := NewBoolFactor(&BoolTermFactor{Term: or})
		r := term.Reduce()
		assert.Equal(t, "a = 1 OR b = 2", r.String())
		assert.Nil(t, r.Reduce())
	}

	// Negation is kept, the inside is reduced.
	{
		inner := &AndTerm{Terms: []BoolTerm{a}}
		term := &BoolFactor{HasNot: true, Terms: []BoolFactorTerm{&BoolTermFactor{Term: inner}}}
		r := term.Reduce()
		assert.Equal(t, "NOT (a = 1)", r.String())
		assert.Nil(t, r.Reduce())
	}

	// Already reduced.
	assert.Nil(t, a.Reduce())
	assert.Nil(t, (&AndTerm{Terms: []BoolTerm{a, b}}).Reduce())
}

func TestBoolTermHelpers(t *testing.T) {
	a := compPred(NewColumnRefExpr("", "t", "a"), "=", NewConstExpr("1"))
	b := compPred(NewColumnRefExpr("", "t", "b"), "=", NewConstExpr("2"))

	assert.Nil(t, NormalizeWhere(nil))
	w := NormalizeWhere(a)
	assert.NotNil(t, RootAndTerm(w))
	assert.Equal(t, "t.a = 1", w.String())

	w = AddAndTerm(w, b)
	assert.Equal(t, "t.a = 1 AND t.b = 2", w.String())
	assert.Equal(t, 2, len(RootAndTerm(w).Terms))

	w = AddAndTerm(nil, b)
	assert.Equal(t, "t.b = 2", w.String())

	// A bare disjunction is wrapped, not merged.
	or := &OrTerm{Terms: []BoolTerm{a, b}}
	w = AddAndTerm(or, a)
	assert.Equal(t, "(t.a = 1 OR t.b = 2) AND t.a = 1", w.String())

	var cols []string
	VisitColumnRefs(w, func(c *ColumnRef) { cols = append(cols, c.Column) })
	assert.Equal(t, []string{"a", "b", "a"}, cols)
}

func TestValueExpr(t *testing.T) {
	a := NewColumnRefExpr("", "", "a")
	ta := NewColumnRefExpr("", "t", "a")
	dta := NewColumnRefExpr("db", "t", "a")
	assert.True(t, a.IsSubsetOf(ta))
	assert.True(t, a.IsSubsetOf(dta))
	assert.True(t, ta.IsSubsetOf(dta))
	assert.False(t, dta.IsSubsetOf(ta))
	assert.False(t, ta.IsSubsetOf(NewColumnRefExpr("", "u", "a")))
	assert.False(t, a.Equal(ta))

	agg := NewAggExpr("sum", NewColumnRefExpr("", "", "pm_declErr"))
	assert.True(t, agg.Equal(NewAggExpr("SUM", NewColumnRefExpr("", "", "pm_declErr"))))
	assert.True(t, agg.HasAggregate())
	assert.NotNil(t, agg.AggFunc())
	assert.Equal(t, "sum(pm_declErr)", agg.String())

	nested := NewFactorExpr(&FuncExpr{Name: "ABS", Params: []*ValueExpr{agg}})
	assert.True(t, nested.HasAggregate())
	assert.False(t, a.HasAggregate())

	c := NewConstExpr("5")
	v, ok := c.Const()
	assert.True(t, ok)
	assert.Equal(t, "5", v)
	assert.True(t, NewFactorExpr(&Star{Table: "o"}).IsStar())
	assert.Equal(t, "o.*", NewFactorExpr(&Star{Table: "o"}).String())

	expr := &ValueExpr{Factors: []FactorOp{
		{Factor: &ExprFactor{Expr: &ValueExpr{Factors: []FactorOp{{Factor: &ColumnRef{Column: "a"}, Op: "-"}, {Factor: &ColumnRef{Column: "b"}}}}}, Op: "*"},
		{Factor: &Const{Val: "2"}},
	}}
	assert.Equal(t, "(a - b) * 2", expr.String())
	assert.Equal(t, 2, len(expr.ColumnRefs()))
	assert.Equal(t, "", cmp.Diff(expr, expr.Clone()))
	assert.Equal(t, "`a b`.c", NewColumnRefExpr("", "a b", "c").String())
}

func TestTemplateQuoting(t *testing.T) {
	assert.Equal(t, "Object_%CC%", QuoteIdent("Object_%CC%"))
	assert.Equal(t, "`LSST.Object`", QuoteIdent("LSST.Object"))
	assert.Equal(t, "``", QuoteIdent(""))
	assert.Equal(t, "`a``b`", BackQuote("a`b"))
	assert.Equal(t, "SELECT * FROM Object_12_3", SubstituteSubChunk("SELECT * FROM Object_12_%SS%", 3))
}
