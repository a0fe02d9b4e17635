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
	_ Plugin = &MatchTablePlugin{}
)

const (
	// matchFlagOverlap marks the copy of a match pair stored in the chunk
	// of the second director only.
	matchFlagOverlap = "2"
)

// MatchTablePlugin keeps each match pair once. A pair whose directors sit
// in different chunks is stored twice; when the match table is not joined
// to its first director the duplicate is filtered on the flag column.
type MatchTablePlugin struct {
	nopPlugin
	log *xlog.Log
}

// NewMatchTablePlugin creates the plugin.
func NewMatchTablePlugin(log *xlog.Log) *MatchTablePlugin {
	return &MatchTablePlugin{log: log}
}

// Type implements Plugin.
func (p *MatchTablePlugin) Type() PluginType {
	return PluginTypeMatchTable
}

func joinedToFirstDirector(m *query.TableEntry, joins [][2]*query.ColumnRef, ctx *query.QueryContext) bool {
	for _, pair := range joins {
		for i := 0; i < 2; i++ {
			mc, dc := pair[i], pair[1-i]
			if mc.Table != m.Alias || dc.Table == m.Alias {
				continue
			}
			d := ctx.TableByAlias(dc.Table)
			if d == nil {
				continue
			}
			if k, ok := matchKey(m, mc.Column, d, dc.Column); ok && k == edgeLocal {
				return true
			}
		}
	}
	return false
}

// ApplyLogical implements Plugin.
func (p *MatchTablePlugin) ApplyLogical(stmt *query.SelectStatement, ctx *query.QueryContext) error {
	var joins [][2]*query.ColumnRef
	for _, m := range ctx.Tables() {
		if m.Params == nil || !m.Params.IsMatch() || m.Params.Match == nil {
			continue
		}
		flag := m.Params.Match.FlagColName
		if flag == "" {
			continue
		}
		if joins == nil {
			joins = equiJoins(stmt)
		}
		if joinedToFirstDirector(m, joins, ctx) {
			continue
		}
		pred := query.NewBoolFactor(&query.CompPredicate{
			Left:  query.NewColumnRefExpr("", m.Alias, flag),
			Op:    "<>",
			Right: query.NewConstExpr(matchFlagOverlap),
		})
		stmt.Where = query.AddAndTerm(stmt.Where, pred)
		p.log.Debug("planner.match.table[%s].add.filter[%s]", m.Alias, pred.String())
	}
	return nil
}
