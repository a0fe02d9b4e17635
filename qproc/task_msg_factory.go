/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package qproc

import (
	"fmt"

	"github.com/radondb/qplan/proto"

	"github.com/xelabs/go-mysqlstack/xlog"
)

// ResultTableName names the table a worker writes a chunk's results to.
func ResultTableName(queryID uint64, chunkID int32) string {
	return fmt.Sprintf("r_%d_%d", queryID, chunkID)
}

// TaskMsgFactory assembles worker messages for one czar session.
type TaskMsgFactory struct {
	log     *xlog.Log
	session uint64
}

// NewTaskMsgFactory creates the factory.
func NewTaskMsgFactory(log *xlog.Log, session uint64) *TaskMsgFactory {
	return &TaskMsgFactory{log: log, session: session}
}

// MakeMsg builds the message of a chunk, one fragment per element of the
// spec's fragment chain.
func (f *TaskMsgFactory) MakeMsg(spec *ChunkQuerySpec, queryID uint64, jobID int, attemptCount int) *proto.TaskMsg {
	msg := &proto.TaskMsg{
		Session:         f.session,
		QueryID:         queryID,
		JobID:           jobID,
		AttemptCount:    attemptCount,
		Db:              spec.Db,
		ChunkID:         spec.ChunkID,
		ScanPriority:    spec.ScanInfo.ScanRating,
		ScanInteractive: spec.ScanInteractive,
	}
	for _, t := range spec.ScanInfo.Tables {
		msg.ScanTables = append(msg.ScanTables, proto.ScanTable{
			Db:           t.Db,
			Table:        t.Table,
			LockInMemory: t.LockInMemory,
			ScanRating:   t.ScanRating,
		})
	}

	result := ResultTableName(queryID, spec.ChunkID)
	for _, frag := range spec.Fragments() {
		pf := proto.Fragment{
			ResultTable: result,
			Queries:     append([]string(nil), frag.Queries...),
		}
		if len(frag.SubChunkIDs) > 0 {
			sc := &proto.SubChunks{IDs: append([]int32(nil), frag.SubChunkIDs...)}
			for _, t := range frag.SubChunkTables {
				sc.DbTables = append(sc.DbTables, proto.DbTable{Db: t.Db, Table: t.Table})
			}
			pf.SubChunks = sc
		}
		msg.Fragments = append(msg.Fragments, pf)
	}
	f.log.Debug("qproc.taskmsg.query[%d].job[%d].chunk[%d].fragments[%d]", queryID, jobID, spec.ChunkID, len(msg.Fragments))
	return msg
}

// Serialize builds and encodes the message of a chunk.
func (f *TaskMsgFactory) Serialize(spec *ChunkQuerySpec, queryID uint64, jobID int, attemptCount int) ([]byte, error) {
	return proto.Encode(f.MakeMsg(spec, queryID, jobID, attemptCount))
}
