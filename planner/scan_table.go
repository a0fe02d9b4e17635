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
	"github.com/radondb/qplan/xcontext"

	"github.com/xelabs/go-mysqlstack/xlog"
)

var (
	_ Plugin = &ScanTablePlugin{}
)

const (
	// ScanChunkThreshold is the chunk count below which a query never
	// joins a shared scan.
	ScanChunkThreshold = 2
)

// ScanTablePlugin classifies the chunked tables a query scans.
type ScanTablePlugin struct {
	nopPlugin
	log         *xlog.Log
	ratingLimit int
	needsRows   bool
	tables      []query.DbTable
}

// NewScanTablePlugin creates the plugin, ratingLimit caps the scan rating.
func NewScanTablePlugin(log *xlog.Log, ratingLimit int) *ScanTablePlugin {
	return &ScanTablePlugin{log: log, ratingLimit: ratingLimit}
}

// Type implements Plugin.
func (p *ScanTablePlugin) Type() PluginType {
	return PluginTypeScanTable
}

// Prepare implements Plugin.
func (p *ScanTablePlugin) Prepare() {
	p.needsRows = false
	p.tables = nil
}

// needsRowData reports whether the query reads column values: a column in
// the select list, or any column in WHERE.
func needsRowData(stmt *query.SelectStatement) bool {
	found := false
	for _, v := range stmt.SelectList {
		if !v.IsStar() && len(v.ColumnRefs()) > 0 {
			found = true
		}
	}
	query.VisitColumnRefs(stmt.Where, func(*query.ColumnRef) { found = true })
	return found
}

// ApplyLogical implements Plugin.
func (p *ScanTablePlugin) ApplyLogical(stmt *query.SelectStatement, ctx *query.QueryContext) error {
	p.needsRows = needsRowData(stmt)
	p.tables = nil
	for _, e := range ctx.ChunkedTables() {
		p.tables = append(p.tables, e.DbTable())
	}
	return nil
}

// ApplyFinal implements Plugin.
func (p *ScanTablePlugin) ApplyFinal(ctx *query.QueryContext) error {
	info := ctx.ScanInfo
	info.Clear()
	if ctx.ChunkCount < ScanChunkThreshold {
		p.log.Debug("planner.scan.table.squashed.chunks[%d]", ctx.ChunkCount)
		return nil
	}
	wide := !ctx.HasRestrictors() || ctx.ChunkCount > ScanChunkThreshold
	if !wide || !p.needsRows {
		return nil
	}
	for _, t := range p.tables {
		params, err := ctx.Css.GetScanTableParams(t.Db, t.Table)
		if err != nil {
			return err
		}
		info.Add(xcontext.ScanTableInfo{
			Db:           t.Db,
			Table:        t.Table,
			LockInMemory: params.LockInMem,
			ScanRating:   params.ScanRating,
		})
		if params.ScanRating > info.ScanRating {
			info.ScanRating = params.ScanRating
		}
	}
	if p.ratingLimit > 0 && info.ScanRating > p.ratingLimit {
		info.ScanRating = p.ratingLimit
	}
	p.log.Debug("planner.scan.table.tables[%d].rating[%d]", len(info.Tables), info.ScanRating)
	return nil
}
