/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package planner

import (
	"testing"

	"github.com/radondb/qplan/parser"
	"github.com/radondb/qplan/query"
	"github.com/radondb/qplan/xcontext"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelabs/go-mysqlstack/xlog"
)

func scanQuery(t *testing.T, sql string, chunks int, ratingLimit int) *query.QueryContext {
	plan, ctx, err := planQuery(t, sql)
	require.Nil(t, err, sql)
	require.NotNil(t, plan)

	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	p := NewScanTablePlugin(log, ratingLimit)
	p.Prepare()
	require.Nil(t, p.ApplyLogical(plan.Original, ctx))
	ctx.AddChunkCount(chunks)
	require.Nil(t, p.ApplyFinal(ctx))
	return ctx
}

func TestScanTableSquash(t *testing.T) {
	querys := []string{
		"select * from Object where someField > 1",
		"select objectId from Object",
		"select * from Object o, Source s where o.objectId = s.objectId and s.flux > 1",
	}
	for _, q := range querys {
		ctx := scanQuery(t, q, 1, 3)
		assert.Equal(t, 0, len(ctx.ScanInfo.Tables), q)
		assert.Equal(t, 0, ctx.ScanInfo.ScanRating, q)
		assert.Equal(t, xcontext.ReqInteractive, ctx.ScanInfo.Mode(), q)
	}
}

func TestScanTableTables(t *testing.T) {
	ctx := scanQuery(t, "select * from Object where someField > 1", 100, 3)
	assert.Equal(t, xcontext.ScanTableInfos{{Db: "LSST", Table: "Object", LockInMemory: true, ScanRating: 1}}, ctx.ScanInfo.Tables)
	assert.Equal(t, 1, ctx.ScanInfo.ScanRating)
	assert.Equal(t, xcontext.ReqScan, ctx.ScanInfo.Mode())

	ctx = scanQuery(t, "select * from Object o, Source s where o.objectId = s.objectId and s.flux > 1", 100, 3)
	assert.Equal(t, 2, len(ctx.ScanInfo.Tables))
	assert.Equal(t, 2, ctx.ScanInfo.ScanRating)

	// Capped.
	ctx = scanQuery(t, "select * from Object o, Source s where o.objectId = s.objectId and s.flux > 1", 100, 1)
	assert.Equal(t, 1, ctx.ScanInfo.ScanRating)
}

func TestScanTableNoScan(t *testing.T) {
	// Star only and no WHERE reads no column.
	ctx := scanQuery(t, "select * from Object", 100, 3)
	assert.Equal(t, 0, len(ctx.ScanInfo.Tables))

	// A restrictor covering few chunks.
	ctx = scanQuery(t, "select objectId from Object where qserv_areaspec_box(0, 0, 1, 1)", 2, 3)
	assert.Equal(t, 0, len(ctx.ScanInfo.Tables))

	// A restrictor covering many chunks still scans.
	ctx = scanQuery(t, "select objectId from Object where qserv_areaspec_box(0, 0, 90, 45)", 40, 3)
	assert.Equal(t, 1, len(ctx.ScanInfo.Tables))

	// Unchunked tables are never scanned.
	ctx = scanQuery(t, "select filterName from Filter", 100, 3)
	assert.Equal(t, 0, len(ctx.ScanInfo.Tables))
}

func TestNeedsRowData(t *testing.T) {
	querys := []string{
		"select * from Object",
		"select count(*) from Object",
		"select objectId from Object",
		"select * from Object where someField > 1",
	}
	results := []bool{false, false, true, true}
	for i, q := range querys {
		stmt, err := parser.Parse(q)
		require.Nil(t, err)
		assert.Equal(t, results[i], needsRowData(stmt), q)
	}
}
