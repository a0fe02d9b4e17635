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
	"sort"
	"strings"

	"github.com/radondb/qplan/query"

	"github.com/xelabs/go-mysqlstack/xlog"
)

var (
	_ Plugin = &DuplSelectExprPlugin{}
)

// Duplicate is a select-list name used more than once, positions are
// 1-based and ascending.
type Duplicate struct {
	Name      string
	Positions []int
}

// DuplSelectExprPlugin rejects select lists whose output names collide.
type DuplSelectExprPlugin struct {
	nopPlugin
	log *xlog.Log
}

// NewDuplSelectExprPlugin creates the plugin.
func NewDuplSelectExprPlugin(log *xlog.Log) *DuplSelectExprPlugin {
	return &DuplSelectExprPlugin{log: log}
}

// Type implements Plugin.
func (p *DuplSelectExprPlugin) Type() PluginType {
	return PluginTypeDuplSelectExpr
}

// displayName is the lower-cased name a select item shows in the result.
func displayName(v *query.ValueExpr) string {
	if v.Alias != "" {
		return strings.ToLower(v.Alias)
	}
	if c := v.ColumnRef(); c != nil {
		return strings.ToLower(c.Column)
	}
	return strings.ToLower(v.String())
}

// FindDuplicates returns the duplicated names of a select list, ordered by
// first occurrence. Stars are not named.
func FindDuplicates(list []*query.ValueExpr) []Duplicate {
	positions := make(map[string][]int)
	var names []string
	for i, v := range list {
		if v.IsStar() {
			continue
		}
		name := displayName(v)
		if _, ok := positions[name]; !ok {
			names = append(names, name)
		}
		positions[name] = append(positions[name], i+1)
	}
	var dups []Duplicate
	for _, name := range names {
		pos := positions[name]
		if len(pos) > 1 {
			sort.Ints(pos)
			dups = append(dups, Duplicate{Name: name, Positions: pos})
		}
	}
	return dups
}

// ApplyLogical implements Plugin.
func (p *DuplSelectExprPlugin) ApplyLogical(stmt *query.SelectStatement, ctx *query.QueryContext) error {
	dups := FindDuplicates(stmt.SelectList)
	if len(dups) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("Duplicate names detected in select expression, rewrite SQL query using alias:")
	for _, d := range dups {
		pos := make([]string, len(d.Positions))
		for i, n := range d.Positions {
			pos[i] = fmt.Sprintf("%d", n)
		}
		fmt.Fprintf(&b, " - %s at positions: %s", d.Name, strings.Join(pos, " "))
	}
	p.log.Warning("planner.dupl.select.expr[%+v]", dups)
	return query.NewAnalysisError("%s", b.String())
}
