/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package query

import (
	"strconv"
	"strings"
)

// NoLimit marks a statement without LIMIT.
const NoLimit = -1

// JoinType tuple.
type JoinType string

const (
	// JoinDefault is a plain JOIN.
	JoinDefault JoinType = "JOIN"
	// JoinInner is INNER JOIN.
	JoinInner JoinType = "INNER JOIN"
	// JoinCross is CROSS JOIN.
	JoinCross JoinType = "CROSS JOIN"
	// JoinStraight is STRAIGHT_JOIN.
	JoinStraight JoinType = "STRAIGHT_JOIN"
	// JoinLeft is LEFT JOIN.
	JoinLeft JoinType = "LEFT JOIN"
	// JoinRight is RIGHT JOIN.
	JoinRight JoinType = "RIGHT JOIN"
	// JoinNatural is NATURAL JOIN.
	JoinNatural JoinType = "NATURAL JOIN"
	// JoinNaturalLeft is NATURAL LEFT JOIN.
	JoinNaturalLeft JoinType = "NATURAL LEFT JOIN"
	// JoinNaturalRight is NATURAL RIGHT JOIN.
	JoinNaturalRight JoinType = "NATURAL RIGHT JOIN"
)

// IsOuter reports whether the join may produce NULL-extended rows.
func (j JoinType) IsOuter() bool {
	switch j {
	case JoinLeft, JoinRight, JoinNaturalLeft, JoinNaturalRight:
		return true
	}
	return false
}

// JoinSpec is the ON condition or the USING column list of a join.
type JoinSpec struct {
	On    BoolTerm
	Using []string
}

// JoinRef is one join step hanging off a TableRef.
type JoinRef struct {
	Type  JoinType
	Right *TableRef
	Spec  *JoinSpec
}

// TableRef is a FROM-list entry.
type TableRef struct {
	Db    string
	Table string
	Alias string
	Joins []*JoinRef
}

// OrderByTerm is one ORDER BY item.
type OrderByTerm struct {
	Expr *ValueExpr
	Desc bool
}

// SelectStatement is the root of the AST.
type SelectStatement struct {
	Distinct   bool
	SelectList []*ValueExpr
	FromList   []*TableRef
	Where      BoolTerm
	GroupBy    []*ValueExpr
	Having     BoolTerm
	OrderBy    []*OrderByTerm
	Limit      int
}

// NewSelectStatement returns an empty statement without LIMIT.
func NewSelectStatement() *SelectStatement {
	return &SelectStatement{Limit: NoLimit}
}

// HasLimit reports whether a LIMIT is present.
func (s *SelectStatement) HasLimit() bool {
	return s.Limit >= 0
}

// Clone returns a deep copy.
func (s *SelectStatement) Clone() *SelectStatement {
	out := &SelectStatement{
		Distinct:   s.Distinct,
		SelectList: cloneParams(s.SelectList),
		FromList:   cloneTableRefs(s.FromList),
		GroupBy:    cloneParams(s.GroupBy),
		OrderBy:    CloneOrderBy(s.OrderBy),
		Limit:      s.Limit,
	}
	if s.Where != nil {
		out.Where = s.Where.Clone()
	}
	if s.Having != nil {
		out.Having = s.Having.Clone()
	}
	return out
}

// CloneOrderBy deep copies an ORDER BY list.
func CloneOrderBy(terms []*OrderByTerm) []*OrderByTerm {
	if terms == nil {
		return nil
	}
	out := make([]*OrderByTerm, len(terms))
	for i, o := range terms {
		out[i] = &OrderByTerm{Expr: o.Expr.Clone(), Desc: o.Desc}
	}
	return out
}

func cloneTableRefs(refs []*TableRef) []*TableRef {
	if refs == nil {
		return nil
	}
	out := make([]*TableRef, len(refs))
	for i, r := range refs {
		out[i] = r.Clone()
	}
	return out
}

// Clone returns a deep copy of the table and its joins.
func (r *TableRef) Clone() *TableRef {
	out := &TableRef{Db: r.Db, Table: r.Table, Alias: r.Alias}
	for _, j := range r.Joins {
		jc := &JoinRef{Type: j.Type, Right: j.Right.Clone()}
		if j.Spec != nil {
			jc.Spec = &JoinSpec{Using: append([]string(nil), j.Spec.Using...)}
			if j.Spec.On != nil {
				jc.Spec.On = j.Spec.On.Clone()
			}
		}
		out.Joins = append(out.Joins, jc)
	}
	return out
}

// Visit calls fn for r and every table joined to it, left to right.
func (r *TableRef) Visit(fn func(*TableRef)) {
	fn(r)
	for _, j := range r.Joins {
		j.Right.Visit(fn)
	}
}

func (r *TableRef) renderTo(t *QueryTemplate) {
	name := QuoteIdent(r.Table)
	if r.Db != "" {
		name = QuoteIdent(r.Db) + "." + name
	}
	t.appendTable(name)
	if r.Alias != "" {
		t.append(" AS ")
		t.append(BackQuote(r.Alias))
	}
	for _, j := range r.Joins {
		t.append(" ")
		t.append(string(j.Type))
		t.append(" ")
		j.Right.renderTo(t)
		if j.Spec == nil {
			continue
		}
		if j.Spec.On != nil {
			t.append(" ON ")
			j.Spec.On.renderTo(t)
		} else if len(j.Spec.Using) > 0 {
			cols := make([]string, len(j.Spec.Using))
			for i, c := range j.Spec.Using {
				cols[i] = QuoteIdent(c)
			}
			t.append(" USING (")
			t.append(strings.Join(cols, ", "))
			t.append(")")
		}
	}
}

// String renders the table reference with its joins.
func (r *TableRef) String() string {
	t := &QueryTemplate{}
	r.renderTo(t)
	return t.String()
}

// Tables returns every TableRef reachable from the FROM list, in order.
func (s *SelectStatement) Tables() []*TableRef {
	var out []*TableRef
	for _, r := range s.FromList {
		r.Visit(func(t *TableRef) { out = append(out, t) })
	}
	return out
}

// JoinConditions returns the ON conditions of every join.
func (s *SelectStatement) JoinConditions() []*JoinRef {
	var out []*JoinRef
	for _, r := range s.FromList {
		r.Visit(func(t *TableRef) {
			for _, j := range t.Joins {
				out = append(out, j)
			}
		})
	}
	return out
}

// RenderSelectItem renders a select-list item with its alias.
func RenderSelectItem(v *ValueExpr) string {
	t := &QueryTemplate{}
	renderSelectItem(t, v)
	return t.String()
}

func renderSelectItem(t *QueryTemplate, v *ValueExpr) {
	v.renderTo(t)
	if v.Alias != "" {
		t.append(" AS ")
		t.append(BackQuote(v.Alias))
	}
}

// RenderOrderBy renders ORDER BY items without the keyword.
func RenderOrderBy(terms []*OrderByTerm) string {
	t := &QueryTemplate{}
	renderOrderBy(t, terms)
	return t.String()
}

func renderOrderBy(t *QueryTemplate, terms []*OrderByTerm) {
	for i, o := range terms {
		if i > 0 {
			t.append(", ")
		}
		o.Expr.renderTo(t)
		if o.Desc {
			t.append(" DESC")
		} else {
			t.append(" ASC")
		}
	}
}

// Template renders the statement into a QueryTemplate.
func (s *SelectStatement) Template() *QueryTemplate {
	t := &QueryTemplate{}
	t.append("SELECT ")
	if s.Distinct {
		t.append("DISTINCT ")
	}
	for i, v := range s.SelectList {
		if i > 0 {
			t.append(", ")
		}
		renderSelectItem(t, v)
	}
	if len(s.FromList) > 0 {
		t.append(" FROM ")
		for i, r := range s.FromList {
			if i > 0 {
				t.append(", ")
			}
			r.renderTo(t)
		}
	}
	if s.Where != nil {
		t.append(" WHERE ")
		s.Where.renderTo(t)
	}
	if len(s.GroupBy) > 0 {
		t.append(" GROUP BY ")
		renderParams(t, s.GroupBy)
	}
	if s.Having != nil {
		t.append(" HAVING ")
		s.Having.renderTo(t)
	}
	if len(s.OrderBy) > 0 {
		t.append(" ORDER BY ")
		renderOrderBy(t, s.OrderBy)
	}
	if s.HasLimit() {
		t.append(" LIMIT ")
		t.append(strconv.Itoa(s.Limit))
	}
	return t
}

// String renders the statement as SQL.
func (s *SelectStatement) String() string {
	return s.Template().String()
}

// VisitValueExprs calls fn for every top-level value expression outside the
// FROM list except join conditions: select list, WHERE, GROUP BY, HAVING
// and ORDER BY.
func (s *SelectStatement) VisitValueExprs(fn func(*ValueExpr)) {
	for _, v := range s.SelectList {
		fn(v)
	}
	VisitValueExprs(s.Where, fn)
	for _, v := range s.GroupBy {
		fn(v)
	}
	VisitValueExprs(s.Having, fn)
	for _, o := range s.OrderBy {
		fn(o.Expr)
	}
}

// VisitColumnRefs calls fn for every column reference in the statement,
// join conditions included.
func (s *SelectStatement) VisitColumnRefs(fn func(*ColumnRef)) {
	s.VisitValueExprs(func(v *ValueExpr) { v.VisitColumnRefs(fn) })
	for _, j := range s.JoinConditions() {
		if j.Spec != nil {
			VisitColumnRefs(j.Spec.On, fn)
		}
	}
}
