/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package qproc

import (
	"context"

	"github.com/radondb/qplan/chunk"
	"github.com/radondb/qplan/config"
	"github.com/radondb/qplan/css"
	"github.com/radondb/qplan/monitor"
	"github.com/radondb/qplan/parser"
	"github.com/radondb/qplan/planner"
	"github.com/radondb/qplan/query"
	"github.com/radondb/qplan/secidx"
	"github.com/radondb/qplan/sphgeom"
	"github.com/radondb/qplan/xbase"
	"github.com/radondb/qplan/xcontext"

	"github.com/pkg/errors"
	"github.com/xelabs/go-mysqlstack/xlog"
)

// State type.
type State int

const (
	// StateCreated enum.
	StateCreated State = iota

	// StateParsed enum.
	StateParsed

	// StateLogicalPluginsApplied enum.
	StateLogicalPluginsApplied

	// StateConcreteGenerated enum.
	StateConcreteGenerated

	// StatePhysicalPluginsApplied enum.
	StatePhysicalPluginsApplied

	// StateFinalized enum.
	StateFinalized

	// StateFailed enum.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateParsed:
		return "parsed"
	case StateLogicalPluginsApplied:
		return "logical.plugins.applied"
	case StateConcreteGenerated:
		return "concrete.generated"
	case StatePhysicalPluginsApplied:
		return "physical.plugins.applied"
	case StateFinalized:
		return "finalized"
	}
	return "failed"
}

// QuerySession plans one query. It is not safe for concurrent use,
// independent sessions share nothing but the catalog and the index.
type QuerySession struct {
	log   *xlog.Log
	conf  *config.PlannerConfig
	css   css.Facade
	index secidx.Index

	state     State
	err       error
	sql       string
	stmt      *query.SelectStatement
	ctx       *query.QueryContext
	plugins   []planner.Plugin
	plan      *planner.Plan
	templates []*query.QueryTemplate
	chunks    chunk.Specs
}

// NewQuerySession creates the session. index may be nil.
func NewQuerySession(log *xlog.Log, conf *config.PlannerConfig, facade css.Facade, index secidx.Index) *QuerySession {
	return &QuerySession{
		log:   log,
		conf:  conf,
		css:   facade,
		index: index,
		state: StateCreated,
	}
}

// step runs fn and moves to next, or to StateFailed on error.
func (s *QuerySession) step(next State, fn func() error) bool {
	if s.state == StateFailed {
		return false
	}
	if err := fn(); err != nil {
		s.err = err
		s.state = StateFailed
		s.log.Error("qsession.query[%s].%s.error:%v", xbase.TruncateQuery(s.sql, s.conf.MaxLogQueryLength), next, err)
		return false
	}
	s.state = next
	return true
}

// Analyze plans sql through every state up to StateFinalized. The first
// error stops planning and is kept by the session.
func (s *QuerySession) Analyze(ctx context.Context, sql string) error {
	if s.state != StateCreated {
		return errors.Errorf("qsession.analyze.state[%s].not.created", s.state)
	}
	s.sql = sql
	s.plugins = planner.NewPlugins(s.log, s.conf)

	steps := []struct {
		next State
		fn   func() error
	}{
		{StateParsed, s.parse},
		{StateLogicalPluginsApplied, s.applyLogical},
		{StateConcreteGenerated, s.generateConcrete},
		{StatePhysicalPluginsApplied, s.applyPhysical},
		{StateFinalized, func() error { return s.finalize(ctx) }},
	}
	for _, st := range steps {
		if !s.step(st.next, st.fn) {
			break
		}
	}

	if s.err != nil {
		monitor.QueryTotalCounterInc(query.KindOf(s.err).String())
		return s.err
	}
	monitor.QueryTotalCounterInc("ok")
	monitor.ChunksPerQueryObserve(len(s.chunks))
	return nil
}

func (s *QuerySession) parse() error {
	stmt, err := parser.Parse(s.sql)
	if err != nil {
		return err
	}
	s.stmt = stmt
	s.ctx = query.NewQueryContext(s.log, s.conf.DefaultDatabase, s.css)
	return nil
}

func (s *QuerySession) applyLogical() error {
	for _, p := range s.plugins {
		p.Prepare()
		if err := p.ApplyLogical(s.stmt, s.ctx); err != nil {
			monitor.PluginErrorInc(string(p.Type()))
			return err
		}
	}
	return nil
}

func (s *QuerySession) generateConcrete() error {
	s.plan = planner.NewPlan(s.stmt)
	return nil
}

func (s *QuerySession) applyPhysical() error {
	for _, p := range s.plugins {
		if err := p.ApplyPhysical(s.plan, s.ctx); err != nil {
			monitor.PluginErrorInc(string(p.Type()))
			return err
		}
	}
	if len(s.plan.Parallel) == 0 {
		return query.NewLogicError("No parallel statement was generated")
	}
	s.templates = s.templates[:0]
	for _, par := range s.plan.Parallel {
		s.templates = append(s.templates, par.Template())
	}
	return nil
}

// resolveChunks runs the index map over the striping of the first chunked
// table, all chunked tables are partitioned the same way.
func (s *QuerySession) resolveChunks(ctx context.Context) (chunk.Specs, error) {
	tables := s.ctx.ChunkedTables()
	if len(tables) == 0 {
		return nil, nil
	}
	db := tables[0].Db
	striping, err := s.css.GetDbStriping(db)
	if err != nil {
		return nil, err
	}
	chunker, err := sphgeom.NewChunker(striping.Stripes, striping.SubStripes)
	if err != nil {
		return nil, err
	}
	empty, err := s.css.GetEmptyChunks(db)
	if err != nil {
		return nil, err
	}
	m := NewIndexMap(s.log, chunker, s.index, empty)
	return m.GetChunks(ctx, s.ctx.AreaRestrictors, s.ctx.SecIdxRestrictors)
}

func (s *QuerySession) finalize(ctx context.Context) error {
	specs, err := s.resolveChunks(ctx)
	if err != nil {
		return err
	}
	for _, spec := range specs {
		s.AddChunk(spec)
	}
	for _, p := range s.plugins {
		if err := p.ApplyFinal(s.ctx); err != nil {
			monitor.PluginErrorInc(string(p.Type()))
			return err
		}
	}
	if s.ctx.ChunkCount == 0 {
		s.AddChunk(chunk.NewDummySpec())
	}
	s.log.Debug("qsession.finalize.chunks[%d].merge[%v]", len(s.chunks), s.plan.HasMerge)
	return nil
}

// AddChunk adds a chunk the query must visit.
func (s *QuerySession) AddChunk(spec chunk.Spec) {
	s.ctx.AddChunkCount(1)
	s.chunks = append(s.chunks, spec)
}

// State returns the current state.
func (s *QuerySession) State() State {
	return s.state
}

// Err returns the first planning error.
func (s *QuerySession) Err() error {
	return s.err
}

// Error returns the first planning error message, empty on success.
func (s *QuerySession) Error() string {
	if s.err == nil {
		return ""
	}
	return s.err.Error()
}

// ErrorKind classifies the first planning error.
func (s *QuerySession) ErrorKind() query.ErrorKind {
	return query.KindOf(s.err)
}

// Statement returns the statement after the logical phase.
func (s *QuerySession) Statement() *query.SelectStatement {
	return s.stmt
}

// NeedsMerge reports whether the per-chunk results need a merge statement.
func (s *QuerySession) NeedsMerge() bool {
	return s.plan != nil && s.plan.HasMerge
}

// MergeStatement returns the merge statement, nil when none is needed.
func (s *QuerySession) MergeStatement() *query.SelectStatement {
	if !s.NeedsMerge() {
		return nil
	}
	return s.plan.Merge
}

// ResultOrderBy returns the ORDER BY the client applies to the result
// table, on result column names, without the keyword.
func (s *QuerySession) ResultOrderBy() string {
	if s.ctx == nil {
		return ""
	}
	return query.RenderOrderBy(s.ctx.ResultOrderBy)
}

// DominantDb returns the database of the first FROM-list table.
func (s *QuerySession) DominantDb() string {
	if s.ctx == nil {
		return ""
	}
	return s.ctx.DominantDb
}

// ScanInfo returns the scan classification.
func (s *QuerySession) ScanInfo() *xcontext.ScanInfo {
	if s.ctx == nil {
		return xcontext.NewScanInfo()
	}
	return s.ctx.ScanInfo
}

// Plan returns the parallel and merge statements.
func (s *QuerySession) Plan() *planner.Plan {
	return s.plan
}

// ParallelQueries returns the chunk query templates.
func (s *QuerySession) ParallelQueries() []string {
	out := make([]string, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, t.String())
	}
	return out
}

// Chunks returns the chunks the query visits.
func (s *QuerySession) Chunks() chunk.Specs {
	return s.chunks
}

func (s *QuerySession) newChunkQuerySpec(piece chunk.Spec, subChunked bool) *ChunkQuerySpec {
	info := s.ctx.ScanInfo.Clone()
	cs := &ChunkQuerySpec{
		Db:              s.ctx.DominantDb,
		ChunkID:         piece.ChunkID,
		ScanInfo:        info,
		ScanInteractive: info.Mode() == xcontext.ReqInteractive,
	}
	if subChunked {
		cs.SubChunkIDs = piece.SubChunks
		cs.SubChunkTables = s.ctx.Mapping.SubChunkTables()
	}
	for _, t := range s.templates {
		cs.Queries = append(cs.Queries, t.Generate(piece.ChunkID))
	}
	return cs
}

// BuildChunkQuerySpec materializes the queries of one chunk. Subchunk ids
// are split into fragments of at most SubChunksPerMessage ids.
func (s *QuerySession) BuildChunkQuerySpec(spec chunk.Spec) *ChunkQuerySpec {
	if !s.ctx.Mapping.HasSubChunks() {
		return s.newChunkQuerySpec(spec, false)
	}
	var head, tail *ChunkQuerySpec
	for _, piece := range chunk.Fragment(spec, s.conf.SubChunksPerMessage) {
		cs := s.newChunkQuerySpec(piece, true)
		if head == nil {
			head = cs
		} else {
			tail.NextFragment = cs
		}
		tail = cs
	}
	return head
}

// ChunkQuerySpecs materializes every chunk, nil unless finalized.
func (s *QuerySession) ChunkQuerySpecs() []*ChunkQuerySpec {
	if s.state != StateFinalized {
		return nil
	}
	out := make([]*ChunkQuerySpec, 0, len(s.chunks))
	for _, spec := range s.chunks {
		out = append(out, s.BuildChunkQuerySpec(spec))
	}
	return out
}
