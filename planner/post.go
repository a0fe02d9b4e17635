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
	_ Plugin = &PostPlugin{}
)

// PostPlugin shapes LIMIT, ORDER BY and DISTINCT across the parallel and
// merge statements.
type PostPlugin struct {
	nopPlugin
	log     *xlog.Log
	limit   int
	orderBy []*query.OrderByTerm
}

// NewPostPlugin creates the plugin.
func NewPostPlugin(log *xlog.Log) *PostPlugin {
	return &PostPlugin{log: log, limit: query.NoLimit}
}

// Type implements Plugin.
func (p *PostPlugin) Type() PluginType {
	return PluginTypePost
}

// Prepare implements Plugin.
func (p *PostPlugin) Prepare() {
	p.limit = query.NoLimit
	p.orderBy = nil
}

// resultOrderBy expresses an ORDER BY on the result column names.
func resultOrderBy(stmt *query.SelectStatement) ([]*query.OrderByTerm, error) {
	hasStar := false
	for _, v := range stmt.SelectList {
		hasStar = hasStar || v.IsStar()
	}

	var out []*query.OrderByTerm
	for _, o := range stmt.OrderBy {
		name := ""
		if c := o.Expr.ColumnRef(); c != nil && c.Db == "" && c.Table == "" {
			for _, v := range stmt.SelectList {
				if strings.EqualFold(v.Alias, c.Column) {
					name = v.Alias
					break
				}
			}
		}
		if name == "" {
			for _, v := range stmt.SelectList {
				if !v.IsStar() && v.Equal(o.Expr) {
					name = v.Alias
					break
				}
			}
		}
		if name == "" && hasStar {
			if c := o.Expr.ColumnRef(); c != nil {
				name = c.Column
			}
		}
		if name == "" {
			return nil, query.NewAnalysisError("ORDER BY expression '%s' must appear in the select list", o.Expr.String())
		}
		out = append(out, &query.OrderByTerm{Expr: query.NewColumnRefExpr("", "", name), Desc: o.Desc})
	}
	return out, nil
}

// ApplyLogical implements Plugin.
func (p *PostPlugin) ApplyLogical(stmt *query.SelectStatement, ctx *query.QueryContext) error {
	p.limit = stmt.Limit
	p.orderBy = query.CloneOrderBy(stmt.OrderBy)
	orderBy, err := resultOrderBy(stmt)
	if err != nil {
		return err
	}
	ctx.ResultOrderBy = orderBy
	return nil
}

// ApplyPhysical implements Plugin.
func (p *PostPlugin) ApplyPhysical(plan *Plan, ctx *query.QueryContext) error {
	chunked := ctx.HasChunks()
	hasLimit := p.limit != query.NoLimit
	if hasLimit && chunked {
		ctx.NeedsMerge = true
	}
	if plan.Original.Distinct && chunked {
		ctx.NeedsMerge = true
	}

	for _, par := range plan.Parallel {
		switch {
		case ctx.HasAggregate:
			// Partial aggregates are only meaningful before ordering and limiting.
			par.OrderBy = nil
			par.Limit = query.NoLimit
		case !hasLimit:
			par.OrderBy = nil
		}
	}

	merge := plan.Merge
	plan.HasMerge = ctx.NeedsMerge
	if !plan.HasMerge {
		merge.OrderBy = nil
		return nil
	}
	if !ctx.HasAggregate {
		// The result table already holds the select list, named by alias.
		merge.SelectList = nil
	}
	if len(merge.SelectList) == 0 {
		merge.SelectList = []*query.ValueExpr{query.NewFactorExpr(&query.Star{})}
	}
	merge.Limit = p.limit
	merge.OrderBy = nil
	if hasLimit && len(p.orderBy) > 0 {
		merge.OrderBy = query.CloneOrderBy(ctx.ResultOrderBy)
	}
	p.log.Debug("planner.post.merge[%s]", merge.String())
	return nil
}
