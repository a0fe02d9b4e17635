/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package planner

import (
	"strings"

	"github.com/radondb/qplan/query"

	"github.com/xelabs/go-mysqlstack/xlog"
)

var (
	_ Plugin = &RestrictorPlugin{}
)

// RestrictorPlugin extracts the spatial and secondary index restrictors
// that narrow the chunks a query must visit.
type RestrictorPlugin struct {
	nopPlugin
	log *xlog.Log
}

// NewRestrictorPlugin creates the plugin.
func NewRestrictorPlugin(log *xlog.Log) *RestrictorPlugin {
	return &RestrictorPlugin{log: log}
}

// Type implements Plugin.
func (p *RestrictorPlugin) Type() PluginType {
	return PluginTypeRestrictor
}

// constParams returns the literal text of every param, false if one is not
// a literal.
func constParams(params []*query.ValueExpr) ([]string, bool) {
	out := make([]string, len(params))
	for i, v := range params {
		c, ok := v.Const()
		if !ok {
			return nil, false
		}
		out[i] = c
	}
	return out, true
}

// areaSpec returns the qserv_areaspec_* call of a conjunct.
func areaSpec(term query.BoolTerm) *query.FuncExpr {
	f, ok := term.(*query.BoolFactor)
	if !ok {
		return nil
	}
	v, ok := f.Single().(*query.ValueExprTerm)
	if !ok {
		return nil
	}
	fn := v.Expr.FuncExpr()
	if fn == nil || !query.IsAreaSpecFunc(fn.Name) {
		return nil
	}
	return fn
}

func hasAreaSpec(v *query.ValueExpr) bool {
	for _, fo := range v.Factors {
		switch f := fo.Factor.(type) {
		case *query.FuncExpr:
			if query.IsAreaSpecFunc(f.Name) {
				return true
			}
			for _, param := range f.Params {
				if hasAreaSpec(param) {
					return true
				}
			}
		case *query.ExprFactor:
			if hasAreaSpec(f.Expr) {
				return true
			}
		}
	}
	return false
}

// extractAreaSpecs removes the top-level qserv_areaspec_* conjuncts.
func (p *RestrictorPlugin) extractAreaSpecs(stmt *query.SelectStatement) ([]query.AreaRestrictor, error) {
	var areas []query.AreaRestrictor
	if and := query.RootAndTerm(stmt.Where); and != nil {
		kept := and.Terms[:0]
		for _, term := range and.Terms {
			fn := areaSpec(term)
			if fn == nil {
				kept = append(kept, term)
				continue
			}
			params, ok := constParams(fn.Params)
			if !ok {
				return nil, query.NewAnalysisError("%s accepts constant parameters only", fn.Name)
			}
			r, err := query.NewAreaRestrictor(fn.Name, params)
			if err != nil {
				return nil, err
			}
			areas = append(areas, r)
		}
		and.Terms = kept
		if len(and.Terms) == 0 {
			stmt.Where = nil
		}
	}

	var misplaced bool
	stmt.VisitValueExprs(func(v *query.ValueExpr) {
		misplaced = misplaced || hasAreaSpec(v)
	})
	if misplaced {
		return nil, query.NewAnalysisError("qserv_areaspec functions must be top-level AND terms of the WHERE clause")
	}
	return areas, nil
}

// sciSQLArea returns the single scisql_s2PtIn*(lon, lat, ...) = 1 conjunct
// of the WHERE clause whose columns are the partitioning columns of a
// chunked table. Several of them are ambiguous and none is used.
func (p *RestrictorPlugin) sciSQLArea(stmt *query.SelectStatement, ctx *query.QueryContext) (query.AreaRestrictor, error) {
	var found []*query.FuncExpr
	for _, term := range conjuncts(stmt.Where) {
		comp := comparison(term)
		if comp == nil || comp.Op != "=" {
			continue
		}
		fn := comp.Left.FuncExpr()
		if fn == nil || !query.IsSciSQLAreaFunc(fn.Name) || len(fn.Params) < 2 {
			continue
		}
		if one, ok := comp.Right.Const(); !ok || one != "1" {
			continue
		}
		ok, err := partitionCols(fn, ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			found = append(found, fn)
		}
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
	default:
		p.log.Warning("planner.restrictor.scisql.area.ambiguous[%d]", len(found))
		return nil, nil
	}

	fn := found[0]
	params, ok := constParams(fn.Params[2:])
	if !ok {
		return nil, nil
	}
	return query.NewAreaRestrictor(fn.Name, params)
}

// partitionCols reports whether the first two arguments of fn are the
// (lon, lat) partitioning columns of one chunked table.
func partitionCols(fn *query.FuncExpr, ctx *query.QueryContext) (bool, error) {
	lon, lat := fn.Params[0].ColumnRef(), fn.Params[1].ColumnRef()
	if lon == nil || lat == nil || lon.Table != lat.Table {
		return false, nil
	}
	e := ctx.TableByAlias(lon.Table)
	if e == nil || !e.IsChunked() || !e.Params.HasPartitionCols() {
		return false, query.NewAnalysisError("Spatial restrictor %s requires a partitioned table, %s is not", fn.Name, lon.Table)
	}
	return strings.EqualFold(lon.Column, e.Params.LonColName) && strings.EqualFold(lat.Column, e.Params.LatColName), nil
}

// injectAreas adds the spatial test of every area restrictor, OR-ed, for
// each chunked table with partitioning columns.
func (p *RestrictorPlugin) injectAreas(stmt *query.SelectStatement, ctx *query.QueryContext, areas []query.AreaRestrictor) error {
	var tables []*query.TableEntry
	for _, e := range ctx.ChunkedTables() {
		if e.Params.HasPartitionCols() {
			tables = append(tables, e)
		}
	}
	if len(tables) == 0 {
		return query.NewAnalysisError("Spatial restrictor %s requires a partitioned table in the FROM list", areas[0].String())
	}
	for _, e := range tables {
		var term query.BoolTerm
		if len(areas) == 1 {
			term = areas[0].Predicate(e.Alias, e.Params.LonColName, e.Params.LatColName)
		} else {
			or := &query.OrTerm{}
			for _, r := range areas {
				or.Terms = append(or.Terms, r.Predicate(e.Alias, e.Params.LonColName, e.Params.LatColName))
			}
			term = query.NewBoolFactor(&query.BoolTermFactor{Term: or})
		}
		stmt.Where = query.AddAndTerm(stmt.Where, term)
	}
	return nil
}

// secIdxColumn maps a column to the director key it holds.
func (p *RestrictorPlugin) secIdxColumn(c *query.ColumnRef, ctx *query.QueryContext) (query.SecIdxColumn, bool, error) {
	if c == nil {
		return query.SecIdxColumn{}, false, nil
	}
	e := ctx.TableByAlias(c.Table)
	if e == nil {
		return query.SecIdxColumn{}, false, nil
	}
	dir, ok := dirKey(e, c.Column)
	if !ok {
		return query.SecIdxColumn{}, false, nil
	}
	dp, err := ctx.Css.GetPartTableParams(dir.Db, dir.Table)
	if err != nil {
		return query.SecIdxColumn{}, false, err
	}
	return query.SecIdxColumn{Db: dir.Db, Table: dir.Table, Column: dp.DirColName}, true, nil
}

func (p *RestrictorPlugin) secIdxRestrictor(term query.BoolTerm, ctx *query.QueryContext) (query.SecIdxRestrictor, error) {
	f, ok := term.(*query.BoolFactor)
	if !ok {
		return nil, nil
	}
	switch t := f.Single().(type) {
	case *query.CompPredicate:
		if t.Op != "=" {
			return nil, nil
		}
		ref, val := t.Left.ColumnRef(), t.Right
		if ref == nil {
			ref, val = t.Right.ColumnRef(), t.Left
		}
		lit, ok := val.Const()
		if !ok {
			return nil, nil
		}
		col, ok, err := p.secIdxColumn(ref, ctx)
		if !ok || err != nil {
			return nil, err
		}
		return &query.SecIdxCompRestrictor{Col: col, Op: "=", Value: lit}, nil
	case *query.InPredicate:
		if t.Not {
			return nil, nil
		}
		values, ok := constParams(t.Cands)
		if !ok {
			return nil, nil
		}
		col, ok, err := p.secIdxColumn(t.Value.ColumnRef(), ctx)
		if !ok || err != nil {
			return nil, err
		}
		return &query.SecIdxInRestrictor{Col: col, Values: values}, nil
	case *query.BetweenPredicate:
		if t.Not {
			return nil, nil
		}
		bounds, ok := constParams([]*query.ValueExpr{t.Min, t.Max})
		if !ok {
			return nil, nil
		}
		col, ok, err := p.secIdxColumn(t.Value.ColumnRef(), ctx)
		if !ok || err != nil {
			return nil, err
		}
		return &query.SecIdxBetweenRestrictor{Col: col, Min: bounds[0], Max: bounds[1]}, nil
	}
	return nil, nil
}

// ApplyLogical implements Plugin.
func (p *RestrictorPlugin) ApplyLogical(stmt *query.SelectStatement, ctx *query.QueryContext) error {
	areas, err := p.extractAreaSpecs(stmt)
	if err != nil {
		return err
	}
	if len(areas) > 0 {
		if err := p.injectAreas(stmt, ctx, areas); err != nil {
			return err
		}
	} else {
		r, err := p.sciSQLArea(stmt, ctx)
		if err != nil {
			return err
		}
		if r != nil {
			areas = append(areas, r)
		}
	}
	for _, r := range areas {
		ctx.AddAreaRestrictor(r)
		p.log.Debug("planner.restrictor.area[%s]", r.String())
	}

	if and := query.RootAndTerm(stmt.Where); and != nil {
		for _, term := range and.Terms {
			r, err := p.secIdxRestrictor(term, ctx)
			if err != nil {
				return err
			}
			if r != nil {
				ctx.AddSecIdxRestrictor(r)
				p.log.Debug("planner.restrictor.secidx[%s]", r.String())
			}
		}
	}
	return nil
}
