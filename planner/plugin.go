/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package planner

import (
	"encoding/json"

	"github.com/radondb/qplan/config"
	"github.com/radondb/qplan/query"

	"github.com/xelabs/go-mysqlstack/xlog"
)

// PluginType type.
type PluginType string

const (
	// PluginTypeDuplSelectExpr enum.
	PluginTypeDuplSelectExpr PluginType = "DuplSelectExprPlugin"

	// PluginTypeWhere enum.
	PluginTypeWhere PluginType = "WherePlugin"

	// PluginTypeAggregate enum.
	PluginTypeAggregate PluginType = "AggregatePlugin"

	// PluginTypeTable enum.
	PluginTypeTable PluginType = "TablePlugin"

	// PluginTypeMatchTable enum.
	PluginTypeMatchTable PluginType = "MatchTablePlugin"

	// PluginTypeRestrictor enum.
	PluginTypeRestrictor PluginType = "QservRestrictorPlugin"

	// PluginTypePost enum.
	PluginTypePost PluginType = "PostPlugin"

	// PluginTypeScanTable enum.
	PluginTypeScanTable PluginType = "ScanTablePlugin"
)

// Plan is the statement set the physical phase rewrites.
type Plan struct {
	// Original is the statement after the logical phase.
	Original *query.SelectStatement
	// Parallel holds the per-chunk templates.
	Parallel []*query.SelectStatement
	// Merge combines the per-chunk results.
	Merge    *query.SelectStatement
	HasMerge bool
}

// NewPlan builds the concrete statements of a logically planned statement.
// The parallel template drops HAVING, it only holds on merged rows. The
// merge template keeps the select list and the post-processing clauses.
func NewPlan(stmt *query.SelectStatement) *Plan {
	par := stmt.Clone()
	par.Having = nil
	merge := query.NewSelectStatement()
	merge.Distinct = stmt.Distinct
	for _, v := range stmt.SelectList {
		merge.SelectList = append(merge.SelectList, v.Clone())
	}
	for _, g := range stmt.GroupBy {
		merge.GroupBy = append(merge.GroupBy, g.Clone())
	}
	if stmt.Having != nil {
		merge.Having = stmt.Having.Clone()
	}
	merge.OrderBy = query.CloneOrderBy(stmt.OrderBy)
	merge.Limit = stmt.Limit
	return &Plan{
		Original: stmt,
		Parallel: []*query.SelectStatement{par},
		Merge:    merge,
	}
}

// JSON returns the rendered plan.
func (p *Plan) JSON() string {
	type explain struct {
		Parallel []string `json:"parallel"`
		Merge    string   `json:"merge,omitempty"`
	}
	exp := &explain{}
	for _, s := range p.Parallel {
		exp.Parallel = append(exp.Parallel, s.String())
	}
	if p.HasMerge && p.Merge != nil {
		exp.Merge = p.Merge.String()
	}
	bout, err := json.MarshalIndent(exp, "", "\t")
	if err != nil {
		return err.Error()
	}
	return string(bout)
}

// Plugin is one rewrite pass. Every phase may be a no-op.
type Plugin interface {
	Type() PluginType
	// Prepare resets per-query state.
	Prepare()
	ApplyLogical(stmt *query.SelectStatement, ctx *query.QueryContext) error
	ApplyPhysical(plan *Plan, ctx *query.QueryContext) error
	ApplyFinal(ctx *query.QueryContext) error
}

type nopPlugin struct{}

func (nopPlugin) Prepare() {}

func (nopPlugin) ApplyLogical(stmt *query.SelectStatement, ctx *query.QueryContext) error {
	return nil
}

func (nopPlugin) ApplyPhysical(plan *Plan, ctx *query.QueryContext) error {
	return nil
}

func (nopPlugin) ApplyFinal(ctx *query.QueryContext) error {
	return nil
}

// NewPlugins returns the plugins in the order they must run. Table
// aliasing runs before restrictor extraction and scan classification,
// both read the aliases it assigns.
func NewPlugins(log *xlog.Log, conf *config.PlannerConfig) []Plugin {
	return []Plugin{
		NewDuplSelectExprPlugin(log),
		NewWherePlugin(log),
		NewAggregatePlugin(log),
		NewTablePlugin(log),
		NewMatchTablePlugin(log),
		NewRestrictorPlugin(log),
		NewPostPlugin(log),
		NewScanTablePlugin(log, conf.ScanRatingLimit),
	}
}
