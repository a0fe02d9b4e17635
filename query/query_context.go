/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package query

import (
	"strings"

	"github.com/radondb/qplan/css"
	"github.com/radondb/qplan/xcontext"

	"github.com/xelabs/go-mysqlstack/xlog"
)

// TableEntry is a resolved FROM-list table.
type TableEntry struct {
	Db    string
	Table string
	Alias string
	// UserAlias is false when the planner assigned the alias.
	UserAlias bool
	Params    *css.PartTableParams
	// Columns is nil when the catalog has no column list for the table.
	Columns []string
}

// DbTable returns the (db, table) pair.
func (e *TableEntry) DbTable() DbTable {
	return DbTable{Db: e.Db, Table: e.Table}
}

// IsChunked returns true if the table is chunked.
func (e *TableEntry) IsChunked() bool {
	return e.Params != nil && e.Params.IsChunked()
}

// HasColumn reports whether the table may hold col; a table without a
// column list may hold anything.
func (e *TableEntry) HasColumn(col string) bool {
	if e.Columns == nil {
		return true
	}
	for _, c := range e.Columns {
		if strings.EqualFold(c, col) {
			return true
		}
	}
	return false
}

// QueryContext accumulates per-query state while the plugins run.
// It is owned by one QuerySession and never shared.
type QueryContext struct {
	log        *xlog.Log
	DefaultDb  string
	DominantDb string
	Css        css.Facade

	AreaRestrictors   []AreaRestrictor
	SecIdxRestrictors []SecIdxRestrictor

	ScanInfo   *xcontext.ScanInfo
	Mapping    *QueryMapping
	ChunkCount int
	NeedsMerge bool
	// HasAggregate is set when the select list aggregates or GROUP BY is
	// present, partial results are then combined by the merge statement.
	HasAggregate bool
	// ResultOrderBy is the ORDER BY the client applies to the result
	// table, expressed on result column names.
	ResultOrderBy []*OrderByTerm

	tables []*TableEntry
}

// NewQueryContext creates the context for one query.
func NewQueryContext(log *xlog.Log, defaultDb string, facade css.Facade) *QueryContext {
	return &QueryContext{
		log:       log,
		DefaultDb: defaultDb,
		Css:       facade,
		ScanInfo:  xcontext.NewScanInfo(),
		Mapping:   NewQueryMapping(),
	}
}

// AddTable registers a FROM-list table under its alias.
func (c *QueryContext) AddTable(e *TableEntry) error {
	for _, t := range c.tables {
		if strings.EqualFold(t.Alias, e.Alias) {
			c.log.Error("query.context.duplicate.alias[%s].tables[%s.%s, %s.%s]", e.Alias, t.Db, t.Table, e.Db, e.Table)
			return NewLogicError("Duplicate table alias '%s'", e.Alias)
		}
	}
	c.tables = append(c.tables, e)
	return nil
}

// ResetTables forgets every registered table.
func (c *QueryContext) ResetTables() {
	c.tables = nil
}

// Tables returns the registered tables in FROM-list order.
func (c *QueryContext) Tables() []*TableEntry {
	return c.tables
}

// TableByAlias returns the table registered under alias, or nil.
func (c *QueryContext) TableByAlias(alias string) *TableEntry {
	for _, t := range c.tables {
		if t.Alias == alias {
			return t
		}
	}
	return nil
}

// ChunkedTables returns the registered chunked tables.
func (c *QueryContext) ChunkedTables() []*TableEntry {
	var out []*TableEntry
	for _, t := range c.tables {
		if t.IsChunked() {
			out = append(out, t)
		}
	}
	return out
}

// HasChunks reports whether any FROM-list table is chunked.
func (c *QueryContext) HasChunks() bool {
	return len(c.ChunkedTables()) > 0
}

// ResolveColumn finds the one registered table a column reference names.
func (c *QueryContext) ResolveColumn(ref *ColumnRef) (*TableEntry, error) {
	var found []*TableEntry
	switch {
	case ref.Table == "":
		for _, t := range c.tables {
			if t.HasColumn(ref.Column) {
				found = append(found, t)
			}
		}
		if len(found) == 0 && len(c.tables) == 1 {
			found = c.tables
		}
	case ref.Db == "":
		if t := c.TableByAlias(ref.Table); t != nil {
			return t, nil
		}
		for _, t := range c.tables {
			if !t.UserAlias && t.Table == ref.Table {
				found = append(found, t)
			}
		}
	default:
		for _, t := range c.tables {
			if !t.UserAlias && t.Db == ref.Db && t.Table == ref.Table {
				found = append(found, t)
			}
		}
	}
	switch len(found) {
	case 0:
		return nil, NewLogicError("Unknown column '%s'", ref.String())
	case 1:
		return found[0], nil
	}
	return nil, NewLogicError("Column '%s' is ambiguous", ref.String())
}

// AddChunkCount adds resolved chunks to the running count.
func (c *QueryContext) AddChunkCount(n int) {
	c.ChunkCount += n
}

// AddAreaRestrictor records an area restrictor.
func (c *QueryContext) AddAreaRestrictor(r AreaRestrictor) {
	c.AreaRestrictors = append(c.AreaRestrictors, r)
}

// AddSecIdxRestrictor records a secondary index restrictor.
func (c *QueryContext) AddSecIdxRestrictor(r SecIdxRestrictor) {
	c.SecIdxRestrictors = append(c.SecIdxRestrictors, r)
}

// HasRestrictors reports whether any spatial or index restrictor exists.
func (c *QueryContext) HasRestrictors() bool {
	return len(c.AreaRestrictors) > 0 || len(c.SecIdxRestrictors) > 0
}

// Striping returns the striping of the dominant database.
func (c *QueryContext) Striping() (*css.StripingParams, error) {
	return c.Css.GetDbStriping(c.DominantDb)
}
