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
	"strings"

	"github.com/radondb/qplan/query"
	"github.com/radondb/qplan/xcontext"
)

// ChunkQuerySpec is the work of one chunk. When the subchunk ids exceed the
// per-message limit the chunk is split into a chain linked by NextFragment.
type ChunkQuerySpec struct {
	Db              string
	ChunkID         int32
	ScanInfo        *xcontext.ScanInfo
	ScanInteractive bool
	Queries         []string
	SubChunkIDs     []int32
	SubChunkTables  []query.DbTable
	NextFragment    *ChunkQuerySpec
}

// Fragments returns the spec and every fragment chained after it.
func (c *ChunkQuerySpec) Fragments() []*ChunkQuerySpec {
	var out []*ChunkQuerySpec
	for f := c; f != nil; f = f.NextFragment {
		out = append(out, f)
	}
	return out
}

// AllSubChunkIDs concatenates the subchunk ids of the whole chain.
func (c *ChunkQuerySpec) AllSubChunkIDs() []int32 {
	var ids []int32
	for _, f := range c.Fragments() {
		ids = append(ids, f.SubChunkIDs...)
	}
	return ids
}

// String renders the chain, one line per query.
func (c *ChunkQuerySpec) String() string {
	var b strings.Builder
	for i, f := range c.Fragments() {
		fmt.Fprintf(&b, "chunk %d fragment %d db %s subchunks %v\n", f.ChunkID, i, f.Db, f.SubChunkIDs)
		for _, q := range f.Queries {
			fmt.Fprintf(&b, "  %s\n", q)
		}
	}
	return b.String()
}
