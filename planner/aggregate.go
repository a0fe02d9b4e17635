/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package planner

import (
	"fmt"
	"strings"

	"github.com/radondb/qplan/query"

	"github.com/xelabs/go-mysqlstack/xlog"
)

var (
	_ Plugin = &AggregatePlugin{}
)

// AggrType type.
type AggrType string

const (
	// AggrTypeCount enum.
	AggrTypeCount AggrType = "COUNT"

	// AggrTypeSum enum.
	AggrTypeSum AggrType = "SUM"

	// AggrTypeMin enum.
	AggrTypeMin AggrType = "MIN"

	// AggrTypeMax enum.
	AggrTypeMax AggrType = "MAX"

	// AggrTypeAvg enum.
	AggrTypeAvg AggrType = "AVG"

	// AggrTypePass is a plain column carried through to the merge.
	AggrTypePass AggrType = "PASS"
)

// AggregatePlugin splits every aggregate into a per-chunk partial and the
// merge-side expression combining the partials:
// COUNT(x) -> COUNT(x) AS QS1_COUNT / SUM(QS1_COUNT)
// AVG(x)   -> COUNT(x) AS QS1_COUNT, SUM(x) AS QS2_SUM / (SUM(QS2_SUM) / SUM(QS1_COUNT))
type AggregatePlugin struct {
	nopPlugin
	log *xlog.Log
}

// NewAggregatePlugin creates the plugin.
func NewAggregatePlugin(log *xlog.Log) *AggregatePlugin {
	return &AggregatePlugin{log: log}
}

// Type implements Plugin.
func (p *AggregatePlugin) Type() PluginType {
	return PluginTypeAggregate
}

func checkAggFunc(a *query.AggFunc) error {
	switch AggrType(strings.ToUpper(a.Name)) {
	case AggrTypeMin, AggrTypeMax:
		return nil
	case AggrTypeCount, AggrTypeSum, AggrTypeAvg:
		if a.Distinct {
			return query.NewAnalysisError("Unsupported aggregate: %s(DISTINCT ...) cannot be merged across chunks", a.Name)
		}
		return nil
	}
	return query.NewAnalysisError("Unsupported aggregate function %s", a.Name)
}

func visitAggFuncs(v *query.ValueExpr, fn func(*query.AggFunc) error) error {
	for _, fo := range v.Factors {
		switch f := fo.Factor.(type) {
		case *query.AggFunc:
			if err := fn(f); err != nil {
				return err
			}
		case *query.FuncExpr:
			for _, param := range f.Params {
				if err := visitAggFuncs(param, fn); err != nil {
					return err
				}
			}
		case *query.ExprFactor:
			if err := visitAggFuncs(f.Expr, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// ApplyLogical implements Plugin.
func (p *AggregatePlugin) ApplyLogical(stmt *query.SelectStatement, ctx *query.QueryContext) error {
	hasAgg := len(stmt.GroupBy) > 0 || stmt.Having != nil
	for _, v := range stmt.SelectList {
		if !v.HasAggregate() {
			continue
		}
		hasAgg = true
		if err := visitAggFuncs(v, checkAggFunc); err != nil {
			return err
		}
	}
	if hasAgg {
		ctx.HasAggregate = true
		ctx.NeedsMerge = true
	}
	return nil
}

// aggRewriter accumulates the parallel select list while producing the
// merge expressions.
type aggRewriter struct {
	n        int
	parallel []*query.ValueExpr
}

func (r *aggRewriter) addParallel(kind AggrType, v *query.ValueExpr) *query.ColumnRef {
	r.n++
	v.Alias = fmt.Sprintf("QS%d_%s", r.n, kind)
	r.parallel = append(r.parallel, v)
	return &query.ColumnRef{Column: v.Alias}
}

func aggOf(name string, distinct bool, params []*query.ValueExpr) *query.ValueExpr {
	agg := &query.AggFunc{Name: name, Distinct: distinct, Params: make([]*query.ValueExpr, len(params))}
	for i, p := range params {
		agg.Params[i] = p.Clone()
	}
	return query.NewFactorExpr(agg)
}

func (r *aggRewriter) rewriteFactor(f query.ValueFactor) (query.ValueFactor, error) {
	switch f := f.(type) {
	case *query.AggFunc:
		name := AggrType(strings.ToUpper(f.Name))
		switch name {
		case AggrTypeCount:
			col := r.addParallel(AggrTypeCount, aggOf(string(AggrTypeCount), false, f.Params))
			return &query.AggFunc{Name: string(AggrTypeSum), Params: []*query.ValueExpr{query.NewFactorExpr(col)}}, nil
		case AggrTypeSum, AggrTypeMin, AggrTypeMax:
			col := r.addParallel(name, aggOf(string(name), f.Distinct, f.Params))
			return &query.AggFunc{Name: string(name), Params: []*query.ValueExpr{query.NewFactorExpr(col)}}, nil
		case AggrTypeAvg:
			cnt := r.addParallel(AggrTypeCount, aggOf(string(AggrTypeCount), false, f.Params))
			sum := r.addParallel(AggrTypeSum, aggOf(string(AggrTypeSum), false, f.Params))
			return &query.ExprFactor{Expr: &query.ValueExpr{Factors: []query.FactorOp{
				{Factor: &query.AggFunc{Name: string(AggrTypeSum), Params: []*query.ValueExpr{query.NewFactorExpr(sum)}}, Op: "/"},
				{Factor: &query.AggFunc{Name: string(AggrTypeSum), Params: []*query.ValueExpr{query.NewFactorExpr(cnt)}}},
			}}}, nil
		}
		return nil, query.NewAnalysisError("Unsupported aggregate function %s", f.Name)
	case *query.FuncExpr:
		out := &query.FuncExpr{Name: f.Name}
		for _, param := range f.Params {
			m, err := r.rewriteExpr(param)
			if err != nil {
				return nil, err
			}
			out.Params = append(out.Params, m)
		}
		return out, nil
	case *query.ExprFactor:
		m, err := r.rewriteExpr(f.Expr)
		if err != nil {
			return nil, err
		}
		return &query.ExprFactor{Expr: m}, nil
	case *query.ColumnRef:
		// A bare column next to aggregates travels as its own result column.
		return r.addParallel(AggrTypePass, query.NewFactorExpr(&query.ColumnRef{Db: f.Db, Table: f.Table, Column: f.Column})), nil
	}
	return query.NewFactorExpr(f).Clone().Factors[0].Factor, nil
}

func (r *aggRewriter) rewriteExpr(v *query.ValueExpr) (*query.ValueExpr, error) {
	out := &query.ValueExpr{}
	for _, fo := range v.Factors {
		f, err := r.rewriteFactor(fo.Factor)
		if err != nil {
			return nil, err
		}
		out.Factors = append(out.Factors, query.FactorOp{Factor: f, Op: fo.Op})
	}
	return out, nil
}

// mergeRef finds the merge-side replacement of v among the select list.
func mergeRef(v *query.ValueExpr, selects, merges []*query.ValueExpr) *query.ValueExpr {
	if c := v.ColumnRef(); c != nil && c.Db == "" && c.Table == "" {
		for _, s := range selects {
			if strings.EqualFold(s.Alias, c.Column) {
				return query.NewColumnRefExpr("", "", s.Alias)
			}
		}
	}
	for i, s := range selects {
		if s.Equal(v) {
			if merges[i].ColumnRef() != nil || !v.HasAggregate() {
				return query.NewColumnRefExpr("", "", s.Alias)
			}
			m := merges[i].Clone()
			m.Alias = ""
			return m
		}
	}
	return nil
}

func (p *AggregatePlugin) rewriteHaving(v *query.ValueExpr, selects, merges []*query.ValueExpr) (*query.ValueExpr, error) {
	if m := mergeRef(v, selects, merges); m != nil {
		return m, nil
	}
	out := &query.ValueExpr{Alias: v.Alias}
	for _, fo := range v.Factors {
		var f query.ValueFactor
		switch x := fo.Factor.(type) {
		case *query.Const:
			f = &query.Const{Val: x.Val}
		case *query.FuncExpr:
			fn := &query.FuncExpr{Name: x.Name}
			for _, param := range x.Params {
				m, err := p.rewriteHaving(param, selects, merges)
				if err != nil {
					return nil, err
				}
				fn.Params = append(fn.Params, m)
			}
			f = fn
		case *query.ExprFactor:
			m, err := p.rewriteHaving(x.Expr, selects, merges)
			if err != nil {
				return nil, err
			}
			f = &query.ExprFactor{Expr: m}
		default:
			m := mergeRef(query.NewFactorExpr(x), selects, merges)
			if m == nil {
				return nil, query.NewAnalysisError("HAVING expression '%s' must appear in the select list", query.NewFactorExpr(x).String())
			}
			if len(m.Factors) == 1 {
				f = m.Factors[0].Factor
			} else {
				f = &query.ExprFactor{Expr: m}
			}
		}
		out.Factors = append(out.Factors, query.FactorOp{Factor: f, Op: fo.Op})
	}
	return out, nil
}

// ApplyPhysical implements Plugin.
func (p *AggregatePlugin) ApplyPhysical(plan *Plan, ctx *query.QueryContext) error {
	if !ctx.HasAggregate {
		return nil
	}
	selects := plan.Original.SelectList
	r := &aggRewriter{}
	merges := make([]*query.ValueExpr, len(selects))
	for i, v := range selects {
		switch {
		case v.IsStar():
			r.parallel = append(r.parallel, v.Clone())
			merges[i] = v.Clone()
		case !v.HasAggregate():
			r.parallel = append(r.parallel, v.Clone())
			merges[i] = query.NewColumnRefExpr("", "", v.Alias)
			merges[i].Alias = v.Alias
		default:
			m, err := r.rewriteExpr(v)
			if err != nil {
				return err
			}
			m.Alias = v.Alias
			merges[i] = m
		}
	}

	for _, par := range plan.Parallel {
		par.SelectList = make([]*query.ValueExpr, len(r.parallel))
		for i, v := range r.parallel {
			par.SelectList[i] = v.Clone()
		}
		// DISTINCT over partial aggregates would drop partials.
		par.Distinct = false
	}

	merge := plan.Merge
	merge.SelectList = merges
	merge.GroupBy = nil
	for _, g := range plan.Original.GroupBy {
		m := mergeRef(g, selects, merges)
		if m == nil || m.HasAggregate() {
			return query.NewAnalysisError("GROUP BY expression '%s' must appear in the select list", g.String())
		}
		merge.GroupBy = append(merge.GroupBy, m)
	}
	if plan.Original.Having != nil {
		having := plan.Original.Having.Clone()
		var err error
		query.VisitValueExprs(having, func(v *query.ValueExpr) {
			if err != nil {
				return
			}
			var m *query.ValueExpr
			if m, err = p.rewriteHaving(v, selects, merges); err == nil {
				*v = *m
			}
		})
		if err != nil {
			return err
		}
		merge.Having = having
	}
	p.log.Debug("planner.aggregate.parallel[%d].merge[%s]", len(r.parallel), merge.String())
	return nil
}
