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

// ValueFactor is one operand of a ValueExpr. The set of variants is closed:
// ColumnRef, Const, FuncExpr, AggFunc, Star and ExprFactor.
type ValueFactor interface {
	renderTo(t *QueryTemplate)
	cloneFactor() ValueFactor
	visitColumnRefs(fn func(*ColumnRef))
}

// ColumnRef references db.table.column, any prefix may be empty.
type ColumnRef struct {
	Db     string
	Table  string
	Column string
}

// Const is a literal kept in its SQL text form.
type Const struct {
	Val string
}

// FuncExpr is a scalar function call.
type FuncExpr struct {
	Name   string
	Params []*ValueExpr
}

// AggFunc is an aggregate function call.
type AggFunc struct {
	Name     string
	Distinct bool
	Params   []*ValueExpr
}

// Star is `*` or `table.*`.
type Star struct {
	Table string
}

// ExprFactor is a parenthesized value expression.
type ExprFactor struct {
	Expr *ValueExpr
}

// FactorOp is a factor followed by the operator joining it to the next one.
type FactorOp struct {
	Factor ValueFactor
	Op     string
}

// ValueExpr is an ordered list of factors combined by arithmetic operators.
type ValueExpr struct {
	Alias   string
	Factors []FactorOp
}

var (
	_ ValueFactor = &ColumnRef{}
	_ ValueFactor = &Const{}
	_ ValueFactor = &FuncExpr{}
	_ ValueFactor = &AggFunc{}
	_ ValueFactor = &Star{}
	_ ValueFactor = &ExprFactor{}
)

// NewColumnRefExpr builds a single-factor column expression.
func NewColumnRefExpr(db, table, column string) *ValueExpr {
	return NewFactorExpr(&ColumnRef{Db: db, Table: table, Column: column})
}

// NewConstExpr builds a single-factor constant expression.
func NewConstExpr(val string) *ValueExpr {
	return NewFactorExpr(&Const{Val: val})
}

// NewFactorExpr wraps one factor.
func NewFactorExpr(f ValueFactor) *ValueExpr {
	return &ValueExpr{Factors: []FactorOp{{Factor: f}}}
}

// NewAggExpr builds name(param) as an aggregate expression.
func NewAggExpr(name string, param *ValueExpr) *ValueExpr {
	return NewFactorExpr(&AggFunc{Name: name, Params: []*ValueExpr{param}})
}

func (c *ColumnRef) renderTo(t *QueryTemplate) {
	if c.Db != "" {
		t.append(QuoteIdent(c.Db))
		t.append(".")
	}
	if c.Table != "" {
		t.append(QuoteIdent(c.Table))
		t.append(".")
	}
	t.append(QuoteIdent(c.Column))
}

func (c *ColumnRef) cloneFactor() ValueFactor {
	cp := *c
	return &cp
}

func (c *ColumnRef) visitColumnRefs(fn func(*ColumnRef)) {
	fn(c)
}

// String renders the column reference.
func (c *ColumnRef) String() string {
	t := &QueryTemplate{}
	c.renderTo(t)
	return t.String()
}

// Equal compares all three parts.
func (c *ColumnRef) Equal(o *ColumnRef) bool {
	return c.Db == o.Db && c.Table == o.Table && c.Column == o.Column
}

// IsSubsetOf reports whether every part specified in c matches o, going
// from the column outwards: `col` is a subset of `t.col` and `db.t.col`.
func (c *ColumnRef) IsSubsetOf(o *ColumnRef) bool {
	if !strings.EqualFold(c.Column, o.Column) {
		return false
	}
	if c.Table == "" {
		return c.Db == ""
	}
	if c.Table != o.Table {
		return false
	}
	return c.Db == "" || c.Db == o.Db
}

func (c *Const) renderTo(t *QueryTemplate) {
	t.append(c.Val)
}

func (c *Const) cloneFactor() ValueFactor {
	cp := *c
	return &cp
}

func (c *Const) visitColumnRefs(fn func(*ColumnRef)) {}

func renderParams(t *QueryTemplate, params []*ValueExpr) {
	for i, p := range params {
		if i > 0 {
			t.append(", ")
		}
		p.renderTo(t)
	}
}

func cloneParams(params []*ValueExpr) []*ValueExpr {
	if params == nil {
		return nil
	}
	out := make([]*ValueExpr, len(params))
	for i, p := range params {
		out[i] = p.Clone()
	}
	return out
}

func (f *FuncExpr) renderTo(t *QueryTemplate) {
	t.append(f.Name)
	t.append("(")
	renderParams(t, f.Params)
	t.append(")")
}

func (f *FuncExpr) cloneFactor() ValueFactor {
	return &FuncExpr{Name: f.Name, Params: cloneParams(f.Params)}
}

func (f *FuncExpr) visitColumnRefs(fn func(*ColumnRef)) {
	for _, p := range f.Params {
		p.VisitColumnRefs(fn)
	}
}

func (a *AggFunc) renderTo(t *QueryTemplate) {
	t.append(a.Name)
	t.append("(")
	if a.Distinct {
		t.append("DISTINCT ")
	}
	renderParams(t, a.Params)
	t.append(")")
}

func (a *AggFunc) cloneFactor() ValueFactor {
	return &AggFunc{Name: a.Name, Distinct: a.Distinct, Params: cloneParams(a.Params)}
}

func (a *AggFunc) visitColumnRefs(fn func(*ColumnRef)) {
	for _, p := range a.Params {
		p.VisitColumnRefs(fn)
	}
}

func (s *Star) renderTo(t *QueryTemplate) {
	if s.Table != "" {
		t.append(QuoteIdent(s.Table))
		t.append(".")
	}
	t.append("*")
}

func (s *Star) cloneFactor() ValueFactor {
	cp := *s
	return &cp
}

func (s *Star) visitColumnRefs(fn func(*ColumnRef)) {}

func (e *ExprFactor) renderTo(t *QueryTemplate) {
	t.append("(")
	e.Expr.renderTo(t)
	t.append(")")
}

func (e *ExprFactor) cloneFactor() ValueFactor {
	return &ExprFactor{Expr: e.Expr.Clone()}
}

func (e *ExprFactor) visitColumnRefs(fn func(*ColumnRef)) {
	e.Expr.VisitColumnRefs(fn)
}

func (v *ValueExpr) renderTo(t *QueryTemplate) {
	for i, fo := range v.Factors {
		fo.Factor.renderTo(t)
		if fo.Op != "" && i < len(v.Factors)-1 {
			t.append(" ")
			t.append(fo.Op)
			t.append(" ")
		}
	}
}

// String renders the expression without its alias.
func (v *ValueExpr) String() string {
	t := &QueryTemplate{}
	v.renderTo(t)
	return t.String()
}

// Clone returns a deep copy.
func (v *ValueExpr) Clone() *ValueExpr {
	if v == nil {
		return nil
	}
	out := &ValueExpr{Alias: v.Alias, Factors: make([]FactorOp, len(v.Factors))}
	for i, fo := range v.Factors {
		out.Factors[i] = FactorOp{Factor: fo.Factor.cloneFactor(), Op: fo.Op}
	}
	return out
}

// VisitColumnRefs calls fn for every column reference, nested ones included.
func (v *ValueExpr) VisitColumnRefs(fn func(*ColumnRef)) {
	for _, fo := range v.Factors {
		fo.Factor.visitColumnRefs(fn)
	}
}

// ColumnRefs returns the column references in v, in order.
func (v *ValueExpr) ColumnRefs() []*ColumnRef {
	var refs []*ColumnRef
	v.VisitColumnRefs(func(c *ColumnRef) { refs = append(refs, c) })
	return refs
}

func (v *ValueExpr) single() ValueFactor {
	if len(v.Factors) != 1 {
		return nil
	}
	return v.Factors[0].Factor
}

// ColumnRef returns the column when v is exactly one column reference.
func (v *ValueExpr) ColumnRef() *ColumnRef {
	c, _ := v.single().(*ColumnRef)
	return c
}

// Const returns the literal text when v is exactly one constant.
func (v *ValueExpr) Const() (string, bool) {
	c, ok := v.single().(*Const)
	if !ok {
		return "", false
	}
	return c.Val, true
}

// FuncExpr returns the call when v is exactly one scalar function call.
func (v *ValueExpr) FuncExpr() *FuncExpr {
	f, _ := v.single().(*FuncExpr)
	return f
}

// AggFunc returns the call when v is exactly one aggregate call.
func (v *ValueExpr) AggFunc() *AggFunc {
	a, _ := v.single().(*AggFunc)
	return a
}

// IsStar reports whether v is `*` or `t.*`.
func (v *ValueExpr) IsStar() bool {
	_, ok := v.single().(*Star)
	return ok
}

// HasAggregate reports whether an aggregate appears anywhere in v.
func (v *ValueExpr) HasAggregate() bool {
	for _, fo := range v.Factors {
		switch f := fo.Factor.(type) {
		case *AggFunc:
			return true
		case *FuncExpr:
			for _, p := range f.Params {
				if p.HasAggregate() {
					return true
				}
			}
		case *ExprFactor:
			if f.Expr.HasAggregate() {
				return true
			}
		}
	}
	return false
}

// Equal is a structural comparison, the alias is ignored.
func (v *ValueExpr) Equal(o *ValueExpr) bool {
	if v == nil || o == nil {
		return v == o
	}
	if len(v.Factors) != len(o.Factors) {
		return false
	}
	for i := range v.Factors {
		if v.Factors[i].Op != o.Factors[i].Op {
			return false
		}
		if !factorEqual(v.Factors[i].Factor, o.Factors[i].Factor) {
			return false
		}
	}
	return true
}

// IsSubsetOf matches a lone column by IsSubsetOf and anything else by Equal.
func (v *ValueExpr) IsSubsetOf(o *ValueExpr) bool {
	a, b := v.ColumnRef(), o.ColumnRef()
	if a != nil && b != nil {
		return a.IsSubsetOf(b)
	}
	return v.Equal(o)
}

func paramsEqual(a, b []*ValueExpr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func factorEqual(a, b ValueFactor) bool {
	switch x := a.(type) {
	case *ColumnRef:
		y, ok := b.(*ColumnRef)
		return ok && x.Equal(y)
	case *Const:
		y, ok := b.(*Const)
		return ok && x.Val == y.Val
	case *FuncExpr:
		y, ok := b.(*FuncExpr)
		return ok && strings.EqualFold(x.Name, y.Name) && paramsEqual(x.Params, y.Params)
	case *AggFunc:
		y, ok := b.(*AggFunc)
		return ok && strings.EqualFold(x.Name, y.Name) && x.Distinct == y.Distinct && paramsEqual(x.Params, y.Params)
	case *Star:
		y, ok := b.(*Star)
		return ok && x.Table == y.Table
	case *ExprFactor:
		y, ok := b.(*ExprFactor)
		return ok && x.Expr.Equal(y.Expr)
	}
	return false
}

func itoa32(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}
