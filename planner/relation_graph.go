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

	"github.com/radondb/qplan/css"
	"github.com/radondb/qplan/query"

	"github.com/xelabs/go-mysqlstack/xlog"
)

const (
	angSepFunc = "scisql_angSep"
)

type edgeKind int

const (
	// edgeLocal joins rows that always live in the same chunk.
	edgeLocal edgeKind = iota
	// edgeOverlap joins rows that may sit across a chunk boundary, within
	// the overlap distance.
	edgeOverlap
)

type relEdge struct {
	a, b     string
	kind     edgeKind
	subChunk bool
}

// RelationGraph decides whether the joins of a statement can run on one
// chunk at a time, and which chunk tables each FROM-list entry reads.
//
// Tables joined on their director key are merged into one component and
// always read the same partition. A component reached through an overlap
// edge reads either the chunk core or the chunk overlap; the statement is
// emitted once per combination, all-core first.
type RelationGraph struct {
	log     *xlog.Log
	stmt    *query.SelectStatement
	entries []*query.TableEntry
	byAlias map[string]*query.TableEntry
	parent  map[string]string
	edges   []relEdge
	// bits maps an overlap-reached component to its variant bit.
	bits      map[string]uint
	order     []string
	subChunks bool
	striping  map[string]*css.StripingParams
}

// NewRelationGraph builds the graph for one aliased statement.
func NewRelationGraph(log *xlog.Log, ctx *query.QueryContext, stmt *query.SelectStatement) (*RelationGraph, error) {
	g := &RelationGraph{
		log:      log,
		stmt:     stmt,
		byAlias:  make(map[string]*query.TableEntry),
		parent:   make(map[string]string),
		bits:     make(map[string]uint),
		striping: make(map[string]*css.StripingParams),
	}
	for _, t := range stmt.Tables() {
		e := ctx.TableByAlias(t.Alias)
		if e == nil {
			return nil, query.NewLogicError("Table '%s.%s' has no alias", t.Db, t.Table)
		}
		g.entries = append(g.entries, e)
		g.byAlias[e.Alias] = e
		g.parent[e.Alias] = e.Alias
	}
	if err := g.checkPartitioning(ctx); err != nil {
		return nil, err
	}
	for _, term := range conjuncts(stmt.Where) {
		g.addEdge(term)
	}
	for _, j := range stmt.JoinConditions() {
		if j.Spec == nil {
			continue
		}
		for _, term := range conjuncts(j.Spec.On) {
			g.addEdge(term)
		}
	}
	if err := g.resolve(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *RelationGraph) checkPartitioning(ctx *query.QueryContext) error {
	var first *query.TableEntry
	for _, e := range g.entries {
		if !e.IsChunked() {
			continue
		}
		if _, ok := g.striping[e.Db]; !ok {
			s, err := ctx.Css.GetDbStriping(e.Db)
			if err != nil {
				return err
			}
			g.striping[e.Db] = s
		}
		if first == nil {
			first = e
			continue
		}
		if g.striping[e.Db].PartitioningID != g.striping[first.Db].PartitioningID {
			return query.NewAnalysisError("Tables %s and %s are not partitioned the same way, Qserv cannot join them", first.Alias, e.Alias)
		}
	}
	return nil
}

// conjuncts flattens the AND terms under b.
func conjuncts(b query.BoolTerm) []query.BoolTerm {
	switch t := b.(type) {
	case nil:
		return nil
	case *query.OrTerm:
		if len(t.Terms) == 1 {
			return conjuncts(t.Terms[0])
		}
	case *query.AndTerm:
		var out []query.BoolTerm
		for _, c := range t.Terms {
			out = append(out, conjuncts(c)...)
		}
		return out
	case *query.BoolFactor:
		if bt, ok := t.Single().(*query.BoolTermFactor); ok {
			return conjuncts(bt.Term)
		}
	}
	return []query.BoolTerm{b}
}

// comparison returns the predicate of a plain, non-negated comparison term.
func comparison(term query.BoolTerm) *query.CompPredicate {
	f, ok := term.(*query.BoolFactor)
	if !ok {
		return nil
	}
	comp, _ := f.Single().(*query.CompPredicate)
	return comp
}

// equiJoins returns the column pairs of every `a.x = b.y` conjunct in WHERE
// and in the ON clauses.
func equiJoins(stmt *query.SelectStatement) [][2]*query.ColumnRef {
	terms := conjuncts(stmt.Where)
	for _, j := range stmt.JoinConditions() {
		if j.Spec != nil {
			terms = append(terms, conjuncts(j.Spec.On)...)
		}
	}
	var out [][2]*query.ColumnRef
	for _, term := range terms {
		comp := comparison(term)
		if comp == nil || comp.Op != "=" {
			continue
		}
		l, r := comp.Left.ColumnRef(), comp.Right.ColumnRef()
		if l != nil && r != nil {
			out = append(out, [2]*query.ColumnRef{l, r})
		}
	}
	return out
}

// dirKey returns the director a column is the key of: the director's own
// key column, or a child's foreign key.
func dirKey(e *query.TableEntry, col string) (query.DbTable, bool) {
	p := e.Params
	if p == nil || p.DirColName == "" || !strings.EqualFold(p.DirColName, col) {
		return query.DbTable{}, false
	}
	if p.IsDirector() || p.IsChild() {
		return query.DbTable{Db: p.DirDb, Table: p.DirTable}, true
	}
	return query.DbTable{}, false
}

// matchKey classifies `m.mcol = d.dcol` for a match table m.
func matchKey(m *query.TableEntry, mcol string, d *query.TableEntry, dcol string) (edgeKind, bool) {
	if m.Params == nil || !m.Params.IsMatch() || m.Params.Match == nil {
		return 0, false
	}
	dir, ok := dirKey(d, dcol)
	if !ok {
		return 0, false
	}
	mp := m.Params.Match
	switch {
	case strings.EqualFold(mcol, mp.DirColName1) && dir == (query.DbTable{Db: m.Db, Table: mp.DirTable1}):
		return edgeLocal, true
	case strings.EqualFold(mcol, mp.DirColName2) && dir == (query.DbTable{Db: m.Db, Table: mp.DirTable2}):
		return edgeOverlap, true
	}
	return 0, false
}

func (g *RelationGraph) chunked(c *query.ColumnRef) *query.TableEntry {
	if c == nil || c.Db != "" {
		return nil
	}
	e := g.byAlias[c.Table]
	if e == nil || !e.IsChunked() {
		return nil
	}
	return e
}

func (g *RelationGraph) addEdge(term query.BoolTerm) {
	comp := comparison(term)
	if comp == nil {
		return
	}
	if comp.Op == "=" {
		l, r := comp.Left.ColumnRef(), comp.Right.ColumnRef()
		el, er := g.chunked(l), g.chunked(r)
		if el == nil || er == nil || el == er {
			return
		}
		if dl, ok := dirKey(el, l.Column); ok {
			if dr, ok := dirKey(er, r.Column); ok && dl == dr {
				g.edges = append(g.edges, relEdge{a: el.Alias, b: er.Alias, kind: edgeLocal})
				return
			}
		}
		if k, ok := matchKey(el, l.Column, er, r.Column); ok {
			g.edges = append(g.edges, relEdge{a: el.Alias, b: er.Alias, kind: k})
			return
		}
		if k, ok := matchKey(er, r.Column, el, l.Column); ok {
			g.edges = append(g.edges, relEdge{a: el.Alias, b: er.Alias, kind: k})
		}
		return
	}
	g.addNearNeighborEdge(comp)
}

var flippedOps = map[string]string{
	">":  "<",
	">=": "<=",
	"<":  ">",
	"<=": ">=",
}

// addNearNeighborEdge recognizes scisql_angSep(a.lon, a.lat, b.lon, b.lat) < d.
func (g *RelationGraph) addNearNeighborEdge(comp *query.CompPredicate) {
	fn, dist, op := comp.Left.FuncExpr(), comp.Right, comp.Op
	if fn == nil {
		fn, dist, op = comp.Right.FuncExpr(), comp.Left, flippedOps[comp.Op]
	}
	if fn == nil || !strings.EqualFold(fn.Name, angSepFunc) || len(fn.Params) != 4 {
		return
	}
	if op != "<" && op != "<=" {
		return
	}
	lit, ok := dist.Const()
	if !ok {
		return
	}
	d, err := query.ParseNumber(lit)
	if err != nil {
		return
	}
	a := g.partitionEntry(fn.Params[0], fn.Params[1])
	b := g.partitionEntry(fn.Params[2], fn.Params[3])
	if a == nil || b == nil || a == b {
		return
	}
	if overlap := g.striping[a.Db].Overlap; d > overlap {
		g.log.Warning("planner.relation.graph.angsep[%v].exceeds.overlap[%v]", d, overlap)
		return
	}
	g.edges = append(g.edges, relEdge{
		a:        a.Alias,
		b:        b.Alias,
		kind:     edgeOverlap,
		subChunk: a.Params.IsSubChunked() && b.Params.IsSubChunked(),
	})
}

// partitionEntry returns the chunked table whose partitioning columns are
// exactly (lon, lat).
func (g *RelationGraph) partitionEntry(lon, lat *query.ValueExpr) *query.TableEntry {
	lc, rc := lon.ColumnRef(), lat.ColumnRef()
	e := g.chunked(lc)
	if e == nil || rc == nil || rc.Table != lc.Table || !e.Params.HasPartitionCols() {
		return nil
	}
	if !strings.EqualFold(lc.Column, e.Params.LonColName) || !strings.EqualFold(rc.Column, e.Params.LatColName) {
		return nil
	}
	return e
}

func (g *RelationGraph) find(alias string) string {
	for g.parent[alias] != alias {
		g.parent[alias] = g.parent[g.parent[alias]]
		alias = g.parent[alias]
	}
	return alias
}

func (g *RelationGraph) union(a, b string) {
	ra, rb := g.find(a), g.find(b)
	if ra != rb {
		g.parent[rb] = ra
	}
}

func (g *RelationGraph) resolve() error {
	for _, e := range g.edges {
		if e.kind == edgeLocal {
			g.union(e.a, e.b)
		}
	}
	var chunked []*query.TableEntry
	for _, e := range g.entries {
		if e.IsChunked() {
			chunked = append(chunked, e)
		}
	}
	if len(chunked) == 0 {
		return nil
	}

	root := g.find(chunked[0].Alias)
	visited := map[string]bool{root: true}
	queue := []string{root}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, e := range g.edges {
			if e.kind != edgeOverlap {
				continue
			}
			ca, cb := g.find(e.a), g.find(e.b)
			var next string
			switch c {
			case ca:
				next = cb
			case cb:
				next = ca
			default:
				continue
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			g.bits[next] = uint(len(g.order))
			g.order = append(g.order, next)
			queue = append(queue, next)
		}
	}
	for _, e := range chunked {
		if !visited[g.find(e.Alias)] {
			return query.NewAnalysisError("Query involves partitioned table joins that Qserv cannot evaluate locally: %s is not joined to %s on the director key or by a near-neighbor predicate within the overlap distance", e.Alias, chunked[0].Alias)
		}
	}
	for _, e := range g.edges {
		if e.kind == edgeOverlap && e.subChunk {
			g.subChunks = true
		}
	}
	return nil
}

// Variants returns how many statements Rewrite produces.
func (g *RelationGraph) Variants() int {
	return 1 << uint(len(g.order))
}

// Rewrite returns the statement variants with chunk table patterns in the
// FROM list, recording each substituted table in mapping.
func (g *RelationGraph) Rewrite(mapping *query.QueryMapping) []*query.SelectStatement {
	n := g.Variants()
	out := make([]*query.SelectStatement, 0, n)
	for i := 0; i < n; i++ {
		stmt := g.stmt.Clone()
		for _, t := range stmt.Tables() {
			e := g.byAlias[t.Alias]
			if e == nil || !e.IsChunked() {
				continue
			}
			overlap := false
			if bit, ok := g.bits[g.find(e.Alias)]; ok {
				overlap = i&(1<<bit) != 0
			}
			if g.subChunks && e.Params.IsSubChunked() {
				t.Db = query.SubChunkDb(e.Db)
				t.Table = query.SubChunkTableName(e.Table, overlap)
				mapping.InsertSubChunkTable(e.Db, e.Table)
			} else {
				t.Db = e.Db
				t.Table = query.ChunkTableName(e.Table, overlap)
				mapping.InsertChunkTable(e.Db, e.Table)
			}
		}
		out = append(out, stmt)
	}
	g.log.Debug("planner.relation.graph.variants[%d].subchunks[%v]", n, g.subChunks)
	return out
}
