/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package query

import (
	"testing"

	"github.com/radondb/qplan/css"

	"github.com/stretchr/testify/assert"
	"github.com/xelabs/go-mysqlstack/xlog"
)

func mockContext(t *testing.T, tables ...*TableEntry) *QueryContext {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	facade := css.MockCatalog(log)
	ctx := NewQueryContext(log, "LSST", facade)
	ctx.DominantDb = "LSST"
	for _, e := range tables {
		params, err := facade.GetPartTableParams(e.Db, e.Table)
		assert.Nil(t, err)
		cols, err := facade.GetTableColumns(e.Db, e.Table)
		assert.Nil(t, err)
		e.Params = params
		e.Columns = cols
		assert.Nil(t, ctx.AddTable(e))
	}
	return ctx
}

func TestQueryContextResolveColumn(t *testing.T) {
	ctx := mockContext(t,
		&TableEntry{Db: "LSST", Table: "Object", Alias: "LSST.Object"},
		&TableEntry{Db: "LSST", Table: "Source", Alias: "s", UserAlias: true},
	)

	tests := []struct {
		ref   *ColumnRef
		alias string
	}{
		{&ColumnRef{Column: "someField"}, "LSST.Object"},
		{&ColumnRef{Column: "sourceId"}, "s"},
		{&ColumnRef{Table: "s", Column: "flux"}, "s"},
		{&ColumnRef{Table: "Object", Column: "ra_PS"}, "LSST.Object"},
		{&ColumnRef{Db: "LSST", Table: "Object", Column: "ra_PS"}, "LSST.Object"},
		{&ColumnRef{Table: "LSST.Object", Column: "ra_PS"}, "LSST.Object"},
	}
	for _, test := range tests {
		e, err := ctx.ResolveColumn(test.ref)
		assert.Nil(t, err, test.ref.String())
		assert.Equal(t, test.alias, e.Alias)
	}

	errs := []*ColumnRef{
		// In both tables.
		{Column: "objectId"},
		// In neither.
		{Column: "nope"},
		// Aliased by the user, the table name is hidden.
		{Table: "Source", Column: "flux"},
		{Db: "LSST", Table: "Source", Column: "flux"},
	}
	for _, ref := range errs {
		_, err := ctx.ResolveColumn(ref)
		assert.NotNil(t, err, ref.String())
		assert.Equal(t, ErrKindLogic, KindOf(err))
	}
}

func TestQueryContextTables(t *testing.T) {
	ctx := mockContext(t,
		&TableEntry{Db: "LSST", Table: "Object", Alias: "o", UserAlias: true},
		&TableEntry{Db: "LSST", Table: "Filter", Alias: "f", UserAlias: true},
	)
	assert.Equal(t, 2, len(ctx.Tables()))
	assert.Equal(t, 1, len(ctx.ChunkedTables()))
	assert.True(t, ctx.HasChunks())
	assert.Equal(t, "Filter", ctx.TableByAlias("f").Table)
	assert.Nil(t, ctx.TableByAlias("x"))
	assert.Equal(t, DbTable{Db: "LSST", Table: "Object"}, ctx.TableByAlias("o").DbTable())

	// Alias collision.
	err := ctx.AddTable(&TableEntry{Db: "LSST", Table: "Source", Alias: "O"})
	assert.Equal(t, ErrKindLogic, KindOf(err))

	// Unknown column resolves to the only table.
	ctx.ResetTables()
	assert.Nil(t, ctx.AddTable(&TableEntry{Db: "LSST", Table: "Filter", Alias: "LSST.Filter", Columns: []string{"filterId"}}))
	e, err := ctx.ResolveColumn(&ColumnRef{Column: "whatever"})
	assert.Nil(t, err)
	assert.Equal(t, "LSST.Filter", e.Alias)

	assert.False(t, ctx.HasRestrictors())
	ctx.AddSecIdxRestrictor(&SecIdxInRestrictor{})
	assert.True(t, ctx.HasRestrictors())

	striping, err := ctx.Striping()
	assert.Nil(t, err)
	assert.Equal(t, int32(18), striping.Stripes)
}

func TestQueryContextDuplicateAlias(t *testing.T) {
	ctx := mockContext(t, &TableEntry{Db: "LSST", Table: "Object", Alias: "o", UserAlias: true})

	err := ctx.AddTable(&TableEntry{Db: "LSST", Table: "Source", Alias: "O", UserAlias: true})
	assert.NotNil(t, err)
	assert.Equal(t, ErrKindLogic, KindOf(err))
	assert.Equal(t, 1, len(ctx.Tables()))
}
