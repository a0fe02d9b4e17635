/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package secidx

import (
	"context"

	"github.com/radondb/qplan/chunk"
	"github.com/radondb/qplan/query"
)

const (
	// ChunkColumn is the chunk id column of an index table.
	ChunkColumn = "chunkId"
	// SubChunkColumn is the subchunk id column of an index table.
	SubChunkColumn = "subChunkId"
)

// Index maps director key values to the chunks and subchunks holding them.
type Index interface {
	// Lookup returns the union of the chunks matching each restrictor,
	// normalized.
	Lookup(ctx context.Context, restrictors []query.SecIdxRestrictor) ([]chunk.Spec, error)
	Close() error
}

// addSpec appends one (chunk, subchunk) hit.
func addSpec(specs []chunk.Spec, chunkID, subChunkID int32) []chunk.Spec {
	return append(specs, chunk.Spec{ChunkID: chunkID, SubChunks: []int32{subChunkID}})
}
