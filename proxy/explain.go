/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package proxy

import (
	"context"
	"runtime"
	"time"

	"github.com/radondb/qplan/audit"
	"github.com/radondb/qplan/proto"
	"github.com/radondb/qplan/xbase"
	"github.com/radondb/qplan/xcontext"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ExplainResult is the plan of one query.
type ExplainResult struct {
	Query      string             `json:"query"`
	Error      string             `json:"error,omitempty"`
	ErrorKind  string             `json:"error-kind,omitempty"`
	DominantDb string             `json:"dominant-db,omitempty"`
	Parallel   []string           `json:"parallel,omitempty"`
	Merge      string             `json:"merge,omitempty"`
	OrderBy    string             `json:"order-by,omitempty"`
	ScanInfo   *xcontext.ScanInfo `json:"scan-info,omitempty"`
	Chunks     int                `json:"chunks"`
	// Sample is the worker message of the first chunk.
	Sample *proto.TaskMsg `json:"sample,omitempty"`
}

// Explain plans sql. Planning errors are reported in the result.
func (p *Proxy) Explain(ctx context.Context, sql string) *ExplainResult {
	res := &ExplainResult{Query: sql}
	queryID := p.NextQueryID()
	defer p.auditExplain(queryID, res, time.Now())

	s := p.NewSession()
	if err := s.Analyze(ctx, sql); err != nil {
		p.log.Warning("proxy.explain[%s].error:%v", xbase.TruncateQuery(sql, p.plannerConfig().MaxLogQueryLength), err)
		res.Error = s.Error()
		res.ErrorKind = s.ErrorKind().String()
		return res
	}

	res.DominantDb = s.DominantDb()
	res.Parallel = s.ParallelQueries()
	if merge := s.MergeStatement(); merge != nil {
		res.Merge = merge.String()
	}
	res.OrderBy = s.ResultOrderBy()
	res.ScanInfo = s.ScanInfo()
	res.Chunks = len(s.Chunks())
	if res.Chunks > 0 {
		spec := s.BuildChunkQuerySpec(s.Chunks()[0])
		res.Sample = p.factory.MakeMsg(spec, queryID, 0, 0)
	}
	return res
}

func (p *Proxy) auditExplain(queryID uint64, res *ExplainResult, start time.Time) {
	p.audit.LogEvent(&audit.Event{
		Start:      start,
		QueryID:    queryID,
		Query:      xbase.TruncateQuery(res.Query, p.plannerConfig().MaxLogQueryLength),
		DominantDb: res.DominantDb,
		Chunks:     res.Chunks,
		ErrorKind:  res.ErrorKind,
		Error:      res.Error,
	})
}

// ExplainBatch plans every query concurrently, one session each. Results
// keep the order of sqls.
func (p *Proxy) ExplainBatch(ctx context.Context, sqls []string) ([]*ExplainResult, error) {
	results := make([]*ExplainResult, len(sqls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, sql := range sqls {
		i, sql := i, sql
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return errors.WithStack(err)
			}
			results[i] = p.Explain(gctx, sql)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
