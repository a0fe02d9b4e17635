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
	_ Plugin = &TablePlugin{}
)

// TablePlugin resolves the FROM list against the catalog and aliases it.
// After the logical phase every column reference names a FROM-list alias
// and the literal table names only appear in the FROM list, so the
// physical phase can substitute chunk tables there alone.
type TablePlugin struct {
	nopPlugin
	log *xlog.Log
}

// NewTablePlugin creates the plugin.
func NewTablePlugin(log *xlog.Log) *TablePlugin {
	return &TablePlugin{log: log}
}

// Type implements Plugin.
func (p *TablePlugin) Type() PluginType {
	return PluginTypeTable
}

func (p *TablePlugin) addTables(stmt *query.SelectStatement, ctx *query.QueryContext) error {
	ctx.ResetTables()
	for _, t := range stmt.Tables() {
		db := t.Db
		if db == "" {
			db = ctx.DefaultDb
		}
		if err := ctx.Css.CheckDatabase(db); err != nil {
			return err
		}
		params, err := ctx.Css.GetPartTableParams(db, t.Table)
		if err != nil {
			return err
		}
		cols, err := ctx.Css.GetTableColumns(db, t.Table)
		if err != nil {
			return err
		}
		if len(cols) == 0 {
			cols = nil
		}
		entry := &query.TableEntry{
			Db:        db,
			Table:     t.Table,
			Alias:     t.Alias,
			UserAlias: t.Alias != "",
			Params:    params,
			Columns:   cols,
		}
		if entry.Alias == "" {
			entry.Alias = db + "." + t.Table
		}
		if err := ctx.AddTable(entry); err != nil {
			return err
		}
		t.Db = db
		t.Alias = entry.Alias
	}

	ctx.DominantDb = ctx.DefaultDb
	if tables := ctx.Tables(); len(tables) > 0 {
		ctx.DominantDb = tables[0].Db
	}
	return nil
}

// ApplyLogical implements Plugin.
func (p *TablePlugin) ApplyLogical(stmt *query.SelectStatement, ctx *query.QueryContext) error {
	if err := p.addTables(stmt, ctx); err != nil {
		return err
	}

	// Unaliased select items are named by their text as written.
	aliases := make(map[string]bool)
	for _, v := range stmt.SelectList {
		if v.IsStar() {
			continue
		}
		if v.Alias == "" {
			v.Alias = v.String()
		}
		aliases[strings.ToLower(v.Alias)] = true
	}

	var err error
	resolve := func(c *query.ColumnRef) {
		if err != nil {
			return
		}
		var e *query.TableEntry
		if e, err = ctx.ResolveColumn(c); err == nil {
			c.Db = ""
			c.Table = e.Alias
		}
	}
	// GROUP BY, HAVING and ORDER BY may name a select alias instead.
	resolveOrAlias := func(c *query.ColumnRef) {
		if c.Db == "" && c.Table == "" && aliases[strings.ToLower(c.Column)] {
			return
		}
		resolve(c)
	}

	for _, v := range stmt.SelectList {
		v.VisitColumnRefs(resolve)
		if err == nil && v.IsStar() {
			err = p.resolveStar(v.Factors[0].Factor.(*query.Star), ctx)
		}
	}
	query.VisitColumnRefs(stmt.Where, resolve)
	for _, j := range stmt.JoinConditions() {
		if j.Spec != nil {
			query.VisitColumnRefs(j.Spec.On, resolve)
		}
	}
	for _, g := range stmt.GroupBy {
		g.VisitColumnRefs(resolveOrAlias)
	}
	query.VisitColumnRefs(stmt.Having, resolveOrAlias)
	for _, o := range stmt.OrderBy {
		o.Expr.VisitColumnRefs(resolveOrAlias)
	}
	if err != nil {
		return err
	}
	p.log.Debug("planner.table.aliased[%s].dominant.db[%s]", stmt.String(), ctx.DominantDb)
	return nil
}

// resolveStar points `t.*` at the alias of t.
func (p *TablePlugin) resolveStar(s *query.Star, ctx *query.QueryContext) error {
	if s.Table == "" {
		return nil
	}
	if e := ctx.TableByAlias(s.Table); e != nil {
		return nil
	}
	var found *query.TableEntry
	for _, e := range ctx.Tables() {
		if !e.UserAlias && e.Table == s.Table {
			if found != nil {
				return query.NewLogicError("Table '%s' is ambiguous", s.Table)
			}
			found = e
		}
	}
	if found == nil {
		return query.NewLogicError("Unknown table '%s'", s.Table)
	}
	s.Table = found.Alias
	return nil
}

// ApplyPhysical implements Plugin.
func (p *TablePlugin) ApplyPhysical(plan *Plan, ctx *query.QueryContext) error {
	var parallel []*query.SelectStatement
	for _, stmt := range plan.Parallel {
		g, err := NewRelationGraph(p.log, ctx, stmt)
		if err != nil {
			return err
		}
		mapping := query.NewQueryMapping()
		parallel = append(parallel, g.Rewrite(mapping)...)
		ctx.Mapping.Update(mapping)
	}
	plan.Parallel = parallel
	return nil
}
