/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package parser

import (
	"strconv"
	"strings"

	"github.com/radondb/qplan/query"

	"github.com/pkg/errors"
	"github.com/xelabs/go-mysqlstack/sqlparser"
)

// Parse parses one SELECT statement into the planner AST.
func Parse(sql string) (*query.SelectStatement, error) {
	node, err := sqlparser.Parse(sql)
	if err != nil {
		return nil, errors.WithStack(&query.ParseError{Err: err})
	}
	sel, ok := node.(*sqlparser.Select)
	if !ok {
		return nil, query.NewAnalysisError("Only SELECT statements are supported")
	}
	return Build(sel)
}

// Build converts a parsed sqlparser SELECT into the planner AST.
func Build(sel *sqlparser.Select) (*query.SelectStatement, error) {
	var err error
	stmt := query.NewSelectStatement()
	stmt.Distinct = sel.Distinct != ""

	if stmt.SelectList, err = buildSelectList(sel.SelectExprs); err != nil {
		return nil, err
	}
	if stmt.FromList, err = buildFromList(sel.From); err != nil {
		return nil, err
	}
	if sel.Where != nil && sel.Where.Expr != nil {
		w, err := buildBoolTerm(sel.Where.Expr)
		if err != nil {
			return nil, err
		}
		stmt.Where = query.NormalizeWhere(w)
	}
	for _, g := range sel.GroupBy {
		v, err := buildValueExpr(g)
		if err != nil {
			return nil, err
		}
		stmt.GroupBy = append(stmt.GroupBy, v)
	}
	if sel.Having != nil && sel.Having.Expr != nil {
		h, err := buildBoolTerm(sel.Having.Expr)
		if err != nil {
			return nil, err
		}
		stmt.Having = query.NormalizeWhere(h)
	}
	for _, o := range sel.OrderBy {
		v, err := buildValueExpr(o.Expr)
		if err != nil {
			return nil, err
		}
		stmt.OrderBy = append(stmt.OrderBy, &query.OrderByTerm{Expr: v, Desc: o.Direction == sqlparser.DescScr})
	}
	if stmt.Limit, err = buildLimit(sel.Limit); err != nil {
		return nil, err
	}
	return stmt, nil
}

func buildLimit(limit *sqlparser.Limit) (int, error) {
	if limit == nil {
		return query.NoLimit, nil
	}
	if limit.Offset != nil {
		return 0, query.NewAnalysisError("LIMIT with OFFSET is not supported")
	}
	val, ok := limit.Rowcount.(*sqlparser.SQLVal)
	if !ok || val.Type != sqlparser.IntVal {
		return 0, query.NewAnalysisError("LIMIT requires an integer literal, got '%s'", sqlparser.String(limit.Rowcount))
	}
	n, err := strconv.Atoi(string(val.Val))
	if err != nil || n < 0 {
		return 0, query.NewAnalysisError("invalid LIMIT '%s'", string(val.Val))
	}
	return n, nil
}

func buildSelectList(exprs sqlparser.SelectExprs) ([]*query.ValueExpr, error) {
	out := make([]*query.ValueExpr, 0, len(exprs))
	for _, e := range exprs {
		switch e := e.(type) {
		case *sqlparser.StarExpr:
			out = append(out, query.NewFactorExpr(&query.Star{Table: e.TableName.Name.String()}))
		case *sqlparser.AliasedExpr:
			v, err := buildValueExpr(e.Expr)
			if err != nil {
				return nil, err
			}
			v.Alias = e.As.String()
			out = append(out, v)
		default:
			return nil, query.NewAnalysisError("unsupported select expression '%s'", sqlparser.String(e))
		}
	}
	return out, nil
}

func buildFromList(exprs sqlparser.TableExprs) ([]*query.TableRef, error) {
	var out []*query.TableRef
	for _, e := range exprs {
		ref, err := buildTableExpr(e)
		if err != nil {
			return nil, err
		}
		// SELECT without FROM reads from dual.
		if ref.Db == "" && strings.EqualFold(ref.Table, "dual") && len(ref.Joins) == 0 {
			continue
		}
		out = append(out, ref)
	}
	return out, nil
}

func joinType(join string) query.JoinType {
	switch strings.ToLower(join) {
	case sqlparser.StraightJoinStr:
		return query.JoinStraight
	case sqlparser.LeftJoinStr:
		return query.JoinLeft
	case sqlparser.RightJoinStr:
		return query.JoinRight
	case sqlparser.NaturalJoinStr:
		return query.JoinNatural
	case sqlparser.NaturalLeftJoinStr:
		return query.JoinNaturalLeft
	case sqlparser.NaturalRightJoinStr:
		return query.JoinNaturalRight
	case "inner join":
		return query.JoinInner
	case "cross join":
		return query.JoinCross
	}
	return query.JoinDefault
}

func buildTableExpr(expr sqlparser.TableExpr) (*query.TableRef, error) {
	switch e := expr.(type) {
	case *sqlparser.AliasedTableExpr:
		tn, ok := e.Expr.(sqlparser.TableName)
		if !ok {
			return nil, query.NewAnalysisError("subqueries are not supported: '%s'", sqlparser.String(e.Expr))
		}
		return &query.TableRef{
			Db:    tn.Qualifier.String(),
			Table: tn.Name.String(),
			Alias: e.As.String(),
		}, nil
	case *sqlparser.ParenTableExpr:
		if len(e.Exprs) != 1 {
			return nil, query.NewAnalysisError("unsupported table expression '%s'", sqlparser.String(e))
		}
		return buildTableExpr(e.Exprs[0])
	case *sqlparser.JoinTableExpr:
		left, err := buildTableExpr(e.LeftExpr)
		if err != nil {
			return nil, err
		}
		right, err := buildTableExpr(e.RightExpr)
		if err != nil {
			return nil, err
		}
		if len(right.Joins) > 0 {
			return nil, query.NewAnalysisError("unsupported nested join '%s'", sqlparser.String(e.RightExpr))
		}
		join := &query.JoinRef{Type: joinType(e.Join), Right: right}
		if e.On != nil {
			on, err := buildBoolTerm(e.On)
			if err != nil {
				return nil, err
			}
			join.Spec = &query.JoinSpec{On: on}
		}
		left.Joins = append(left.Joins, join)
		return left, nil
	}
	return nil, query.NewAnalysisError("unsupported table expression '%s'", sqlparser.String(expr))
}

// flattenAnd collects the operands of nested AND nodes, left to right.
func flattenAnd(expr sqlparser.Expr, out []sqlparser.Expr) []sqlparser.Expr {
	if and, ok := expr.(*sqlparser.AndExpr); ok {
		out = flattenAnd(and.Left, out)
		return flattenAnd(and.Right, out)
	}
	return append(out, expr)
}

func flattenOr(expr sqlparser.Expr, out []sqlparser.Expr) []sqlparser.Expr {
	if or, ok := expr.(*sqlparser.OrExpr); ok {
		out = flattenOr(or.Left, out)
		return flattenOr(or.Right, out)
	}
	return append(out, expr)
}

func buildBoolTerms(exprs []sqlparser.Expr) ([]query.BoolTerm, error) {
	out := make([]query.BoolTerm, 0, len(exprs))
	for _, e := range exprs {
		t, err := buildBoolTerm(e)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func buildBoolTerm(expr sqlparser.Expr) (query.BoolTerm, error) {
	switch e := expr.(type) {
	case *sqlparser.AndExpr:
		terms, err := buildBoolTerms(flattenAnd(e, nil))
		if err != nil {
			return nil, err
		}
		return &query.AndTerm{Terms: terms}, nil
	case *sqlparser.OrExpr:
		terms, err := buildBoolTerms(flattenOr(e, nil))
		if err != nil {
			return nil, err
		}
		return &query.OrTerm{Terms: terms}, nil
	case *sqlparser.ParenExpr:
		inner, err := buildBoolTerm(e.Expr)
		if err != nil {
			return nil, err
		}
		return query.NewBoolFactor(&query.BoolTermFactor{Term: inner}), nil
	case *sqlparser.NotExpr:
		inner, err := buildBoolTerm(e.Expr)
		if err != nil {
			return nil, err
		}
		if bf, ok := inner.(*query.BoolFactor); ok && !bf.HasNot {
			bf.HasNot = true
			return bf, nil
		}
		return &query.BoolFactor{HasNot: true, Terms: []query.BoolFactorTerm{&query.BoolTermFactor{Term: inner}}}, nil
	}
	term, err := buildFactorTerm(expr)
	if err != nil {
		return nil, err
	}
	return query.NewBoolFactor(term), nil
}

func buildFactorTerm(expr sqlparser.Expr) (query.BoolFactorTerm, error) {
	switch e := expr.(type) {
	case *sqlparser.ComparisonExpr:
		return buildComparison(e)
	case *sqlparser.RangeCond:
		value, err := buildValueExpr(e.Left)
		if err != nil {
			return nil, err
		}
		min, err := buildValueExpr(e.From)
		if err != nil {
			return nil, err
		}
		max, err := buildValueExpr(e.To)
		if err != nil {
			return nil, err
		}
		return &query.BetweenPredicate{Value: value, Not: e.Operator == sqlparser.NotBetweenStr, Min: min, Max: max}, nil
	case *sqlparser.IsExpr:
		value, err := buildValueExpr(e.Expr)
		if err != nil {
			return nil, err
		}
		switch e.Operator {
		case sqlparser.IsNullStr:
			return &query.NullPredicate{Value: value}, nil
		case sqlparser.IsNotNullStr:
			return &query.NullPredicate{Value: value, Not: true}, nil
		}
		return nil, query.NewAnalysisError("unsupported predicate '%s'", sqlparser.String(e))
	case *sqlparser.Subquery, *sqlparser.ExistsExpr:
		return nil, query.NewAnalysisError("subqueries are not supported: '%s'", sqlparser.String(expr))
	}
	v, err := buildValueExpr(expr)
	if err != nil {
		return nil, err
	}
	return &query.ValueExprTerm{Expr: v}, nil
}

func buildComparison(e *sqlparser.ComparisonExpr) (query.BoolFactorTerm, error) {
	left, err := buildValueExpr(e.Left)
	if err != nil {
		return nil, err
	}
	switch e.Operator {
	case sqlparser.InStr, sqlparser.NotInStr:
		tuple, ok := e.Right.(sqlparser.ValTuple)
		if !ok {
			return nil, query.NewAnalysisError("subqueries are not supported: '%s'", sqlparser.String(e.Right))
		}
		cands := make([]*query.ValueExpr, 0, len(tuple))
		for _, c := range tuple {
			v, err := buildValueExpr(c)
			if err != nil {
				return nil, err
			}
			cands = append(cands, v)
		}
		return &query.InPredicate{Value: left, Not: e.Operator == sqlparser.NotInStr, Cands: cands}, nil
	}
	right, err := buildValueExpr(e.Right)
	if err != nil {
		return nil, err
	}
	switch e.Operator {
	case sqlparser.LikeStr, sqlparser.NotLikeStr:
		return &query.LikePredicate{Value: left, Not: e.Operator == sqlparser.NotLikeStr, Pattern: right}, nil
	}
	return &query.CompPredicate{Left: left, Op: strings.ToUpper(e.Operator), Right: right}, nil
}

// buildValueExpr flattens arithmetic into a factor list. The parser keeps
// explicit parentheses, so operator precedence survives the flattening.
func buildValueExpr(expr sqlparser.Expr) (*query.ValueExpr, error) {
	v := &query.ValueExpr{}
	if err := appendFactors(v, expr); err != nil {
		return nil, err
	}
	return v, nil
}

func appendFactors(v *query.ValueExpr, expr sqlparser.Expr) error {
	if bin, ok := expr.(*sqlparser.BinaryExpr); ok {
		if err := appendFactors(v, bin.Left); err != nil {
			return err
		}
		v.Factors[len(v.Factors)-1].Op = bin.Operator
		return appendFactors(v, bin.Right)
	}
	f, err := buildFactor(expr)
	if err != nil {
		return err
	}
	v.Factors = append(v.Factors, query.FactorOp{Factor: f})
	return nil
}

func buildFactor(expr sqlparser.Expr) (query.ValueFactor, error) {
	switch e := expr.(type) {
	case *sqlparser.ColName:
		return &query.ColumnRef{
			Db:     e.Qualifier.Qualifier.String(),
			Table:  e.Qualifier.Name.String(),
			Column: e.Name.String(),
		}, nil
	case *sqlparser.SQLVal:
		if e.Type == sqlparser.ValArg {
			return nil, query.NewAnalysisError("bind variables are not supported: '%s'", string(e.Val))
		}
		return &query.Const{Val: sqlparser.String(e)}, nil
	case *sqlparser.NullVal:
		return &query.Const{Val: "NULL"}, nil
	case sqlparser.BoolVal:
		return &query.Const{Val: sqlparser.String(e)}, nil
	case *sqlparser.FuncExpr:
		return buildFunc(e)
	case *sqlparser.ParenExpr:
		inner, err := buildValueExpr(e.Expr)
		if err != nil {
			return nil, err
		}
		return &query.ExprFactor{Expr: inner}, nil
	case *sqlparser.UnaryExpr:
		// Signed numeric literals fold into one constant.
		if val, ok := e.Expr.(*sqlparser.SQLVal); ok && (val.Type == sqlparser.IntVal || val.Type == sqlparser.FloatVal) {
			switch e.Operator {
			case "-":
				return &query.Const{Val: "-" + string(val.Val)}, nil
			case "+":
				return &query.Const{Val: string(val.Val)}, nil
			}
		}
		return nil, query.NewAnalysisError("unsupported unary expression '%s'", sqlparser.String(e))
	case *sqlparser.Subquery:
		return nil, query.NewAnalysisError("subqueries are not supported: '%s'", sqlparser.String(e))
	}
	return nil, query.NewAnalysisError("unsupported expression '%s'", sqlparser.String(expr))
}

func buildFunc(e *sqlparser.FuncExpr) (query.ValueFactor, error) {
	name := e.Name.String()
	if !e.Qualifier.IsEmpty() {
		name = e.Qualifier.String() + "." + name
	}
	params := make([]*query.ValueExpr, 0, len(e.Exprs))
	for _, p := range e.Exprs {
		switch p := p.(type) {
		case *sqlparser.StarExpr:
			params = append(params, query.NewFactorExpr(&query.Star{Table: p.TableName.Name.String()}))
		case *sqlparser.AliasedExpr:
			v, err := buildValueExpr(p.Expr)
			if err != nil {
				return nil, err
			}
			params = append(params, v)
		default:
			return nil, query.NewAnalysisError("unsupported argument '%s' of %s", sqlparser.String(p), name)
		}
	}
	if e.IsAggregate() {
		return &query.AggFunc{Name: strings.ToUpper(name), Distinct: e.Distinct, Params: params}, nil
	}
	return &query.FuncExpr{Name: name, Params: params}, nil
}
