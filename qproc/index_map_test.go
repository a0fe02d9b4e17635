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
	"testing"

	"github.com/radondb/qplan/chunk"
	"github.com/radondb/qplan/query"
	"github.com/radondb/qplan/secidx"
	"github.com/radondb/qplan/sphgeom"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelabs/go-mysqlstack/xlog"
)

var objectIDCol = query.SecIdxColumn{Db: "LSST", Table: "Object", Column: "objectId"}

func newTestIndexMap(t *testing.T, index secidx.Index, empty []int32) (*IndexMap, *sphgeom.Chunker) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	chunker, err := sphgeom.NewChunker(18, 6)
	require.Nil(t, err)
	return NewIndexMap(log, chunker, index, empty), chunker
}

func boxRestrictor(t *testing.T, params ...string) query.AreaRestrictor {
	r, err := query.NewAreaRestrictor("qserv_areaspec_box", params)
	require.Nil(t, err)
	return r
}

func TestIndexMapAllChunks(t *testing.T) {
	m, chunker := newTestIndexMap(t, nil, []int32{0, 36})
	specs, err := m.GetChunks(context.Background(), nil, nil)
	assert.Nil(t, err)

	all := chunker.AllChunks()
	assert.Equal(t, len(all)-2, len(specs))
	for _, s := range specs {
		assert.NotEqual(t, int32(0), s.ChunkID)
		assert.NotEqual(t, int32(36), s.ChunkID)
		assert.Equal(t, chunker.AllSubChunks(s.ChunkID), s.SubChunks)
	}
}

func TestIndexMapArea(t *testing.T) {
	m, chunker := newTestIndexMap(t, nil, nil)
	r := boxRestrictor(t, "10.0", "20.0", "10.2", "20.2")
	specs, err := m.GetChunks(context.Background(), []query.AreaRestrictor{r}, nil)
	assert.Nil(t, err)

	region, err := r.Region()
	require.Nil(t, err)
	var want []chunk.Spec
	for _, sc := range chunker.SubChunksIntersecting(region) {
		want = append(want, chunk.Spec{ChunkID: sc.ChunkID, SubChunks: sc.SubChunkIDs})
	}
	assert.Equal(t, chunk.Normalize(want), specs)

	id, sub := chunker.Locate(10.1, 20.1)
	assert.Contains(t, specs.ChunkIDs(), id)
	for _, s := range specs {
		if s.ChunkID == id {
			assert.Contains(t, s.SubChunks, sub)
		}
	}
}

func TestIndexMapAreaUnion(t *testing.T) {
	m, chunker := newTestIndexMap(t, nil, nil)
	areas := []query.AreaRestrictor{
		boxRestrictor(t, "10.0", "20.0", "10.2", "20.2"),
		boxRestrictor(t, "200.0", "-40.0", "200.2", "-39.8"),
	}
	specs, err := m.GetChunks(context.Background(), areas, nil)
	assert.Nil(t, err)

	c1, _ := chunker.Locate(10.1, 20.1)
	c2, _ := chunker.Locate(200.1, -39.9)
	assert.Contains(t, specs.ChunkIDs(), c1)
	assert.Contains(t, specs.ChunkIDs(), c2)
	for i := 1; i < len(specs); i++ {
		assert.True(t, specs[i-1].ChunkID < specs[i].ChunkID)
	}
}

func TestIndexMapSecondaryIndex(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	index := secidx.NewMemoryIndex(log)
	index.Add(
		secidx.Entry{Db: "LSST", Table: "Object", Key: "42", ChunkID: 100, SubChunkID: 7},
		secidx.Entry{Db: "LSST", Table: "Object", Key: "43", ChunkID: 100, SubChunkID: 3},
		secidx.Entry{Db: "LSST", Table: "Object", Key: "44", ChunkID: 50, SubChunkID: 1},
	)
	m, _ := newTestIndexMap(t, index, []int32{50})

	restrictors := []query.SecIdxRestrictor{
		&query.SecIdxInRestrictor{Col: objectIDCol, Values: []string{"42", "43", "44"}},
	}
	specs, err := m.GetChunks(context.Background(), nil, restrictors)
	assert.Nil(t, err)
	assert.Equal(t, chunk.Specs{{ChunkID: 100, SubChunks: []int32{3, 7}}}, specs)
}

func TestIndexMapIntersect(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	m, chunker := newTestIndexMap(t, nil, nil)
	near, nearSub := chunker.Locate(10.1, 20.1)
	far, farSub := chunker.Locate(200.1, -39.9)

	index := secidx.NewMemoryIndex(log)
	index.Add(
		secidx.Entry{Db: "LSST", Table: "Object", Key: "1", ChunkID: near, SubChunkID: nearSub},
		secidx.Entry{Db: "LSST", Table: "Object", Key: "2", ChunkID: far, SubChunkID: farSub},
	)
	m.index = index

	restrictors := []query.SecIdxRestrictor{
		&query.SecIdxBetweenRestrictor{Col: objectIDCol, Min: "1", Max: "2"},
	}
	areas := []query.AreaRestrictor{boxRestrictor(t, "10.0", "20.0", "10.2", "20.2")}
	specs, err := m.GetChunks(context.Background(), areas, restrictors)
	assert.Nil(t, err)
	assert.Equal(t, chunk.Specs{{ChunkID: near, SubChunks: []int32{nearSub}}}, specs)

	// No region leaves the index candidates untouched.
	specs, err = m.GetChunks(context.Background(), nil, restrictors)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(specs))
}

func TestIndexMapNoIndex(t *testing.T) {
	m, chunker := newTestIndexMap(t, nil, nil)
	restrictors := []query.SecIdxRestrictor{
		&query.SecIdxCompRestrictor{Col: objectIDCol, Op: "=", Value: "42"},
	}
	specs, err := m.GetChunks(context.Background(), nil, restrictors)
	assert.Nil(t, err)
	assert.Equal(t, len(chunker.AllChunks()), len(specs))
}
