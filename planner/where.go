/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package planner

import (
	"github.com/radondb/qplan/query"

	"github.com/xelabs/go-mysqlstack/xlog"
)

var (
	_ Plugin = &WherePlugin{}
)

// WherePlugin replaces each conjunct of the root AND term by its reduced
// form. It never changes what the predicate means.
type WherePlugin struct {
	nopPlugin
	log *xlog.Log
}

// NewWherePlugin creates the plugin.
func NewWherePlugin(log *xlog.Log) *WherePlugin {
	return &WherePlugin{log: log}
}

// Type implements Plugin.
func (p *WherePlugin) Type() PluginType {
	return PluginTypeWhere
}

// ReduceWhere reduces the children of the root AND term in place and
// reports whether anything changed.
func ReduceWhere(w query.BoolTerm) bool {
	and := query.RootAndTerm(w)
	if and == nil {
		return false
	}
	changed := false
	for i, term := range and.Terms {
		if r := term.Reduce(); r != nil {
			and.Terms[i] = r
			changed = true
		}
	}
	return changed
}

// ApplyLogical implements Plugin.
func (p *WherePlugin) ApplyLogical(stmt *query.SelectStatement, ctx *query.QueryContext) error {
	if stmt.Where == nil {
		return nil
	}
	if ReduceWhere(stmt.Where) {
		p.log.Debug("planner.where.reduced[%s]", stmt.Where.String())
	}
	return nil
}
