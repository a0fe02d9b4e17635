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
	"os"
	"path/filepath"
	"testing"

	"github.com/radondb/qplan/chunk"
	"github.com/radondb/qplan/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelabs/go-mysqlstack/xlog"
)

var objectID = query.SecIdxColumn{Db: "LSST", Table: "Object", Column: "objectId"}

func mockEntries() []Entry {
	return []Entry{
		{Db: "LSST", Table: "Object", Key: "1", ChunkID: 100, SubChunkID: 3},
		{Db: "LSST", Table: "Object", Key: "2", ChunkID: 100, SubChunkID: 1},
		{Db: "LSST", Table: "Object", Key: "3", ChunkID: 200, SubChunkID: 7},
		{Db: "LSST", Table: "Object", Key: "10", ChunkID: 300, SubChunkID: 0},
		{Db: "LSST", Table: "SimRefObject", Key: "1", ChunkID: 999, SubChunkID: 9},
	}
}

func mockRestrictors() ([][]query.SecIdxRestrictor, [][]chunk.Spec) {
	restrictors := [][]query.SecIdxRestrictor{
		{&query.SecIdxCompRestrictor{Col: objectID, Op: "=", Value: "1"}},
		{&query.SecIdxInRestrictor{Col: objectID, Values: []string{"1", "2", "3"}}},
		{&query.SecIdxBetweenRestrictor{Col: objectID, Min: "2", Max: "10"}},
		{
			&query.SecIdxCompRestrictor{Col: objectID, Op: "=", Value: "1"},
			&query.SecIdxCompRestrictor{Col: objectID, Op: ">", Value: "3"},
		},
		{&query.SecIdxCompRestrictor{Col: objectID, Op: "=", Value: "42"}},
	}
	specs := [][]chunk.Spec{
		{{ChunkID: 100, SubChunks: []int32{3}}},
		{{ChunkID: 100, SubChunks: []int32{1, 3}}, {ChunkID: 200, SubChunks: []int32{7}}},
		{{ChunkID: 100, SubChunks: []int32{1}}, {ChunkID: 200, SubChunks: []int32{7}}, {ChunkID: 300, SubChunks: []int32{0}}},
		{{ChunkID: 100, SubChunks: []int32{3}}, {ChunkID: 300, SubChunks: []int32{0}}},
		{},
	}
	return restrictors, specs
}

func TestMemoryIndexLookup(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	idx := NewMemoryIndex(log)
	defer idx.Close()
	idx.Add(mockEntries()...)

	restrictors, want := mockRestrictors()
	for i, rs := range restrictors {
		got, err := idx.Lookup(context.Background(), rs)
		assert.Nil(t, err)
		assert.Equal(t, len(want[i]), len(got), "%d", i)
		for j := range want[i] {
			assert.Equal(t, want[i][j], got[j])
		}
	}
}

func TestMemoryIndexLoadFile(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	dir := t.TempDir()

	yamlFile := filepath.Join(dir, "index.yaml")
	err := os.WriteFile(yamlFile, []byte("- {db: LSST, table: Object, key: '7', chunk: 5, subchunk: 2}\n"), 0644)
	require.Nil(t, err)
	jsonFile := filepath.Join(dir, "index.json")
	err = os.WriteFile(jsonFile, []byte(`[{"db": "LSST", "table": "Object", "key": "8", "chunk": 6, "subchunk": 4}]`), 0644)
	require.Nil(t, err)

	idx := NewMemoryIndex(log)
	assert.Nil(t, idx.LoadFile(yamlFile))
	assert.Nil(t, idx.LoadFile(jsonFile))
	assert.NotNil(t, idx.LoadFile(filepath.Join(dir, "none.json")))

	got, err := idx.Lookup(context.Background(), []query.SecIdxRestrictor{
		&query.SecIdxInRestrictor{Col: objectID, Values: []string{"7", "8"}},
	})
	assert.Nil(t, err)
	assert.Equal(t, []chunk.Spec{{ChunkID: 5, SubChunks: []int32{2}}, {ChunkID: 6, SubChunks: []int32{4}}}, []chunk.Spec(got))
}

func mockSQLIndex(t *testing.T) *SQLIndex {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	idx, err := NewSQLIndex(log, "sqlite3", filepath.Join(t.TempDir(), "index.db"), "main")
	if err != nil {
		t.Skipf("sqlite3 unavailable: %v", err)
	}
	_, err = idx.db.Exec("CREATE TABLE LSST__Object (objectId INTEGER, chunkId INTEGER, subChunkId INTEGER)")
	require.Nil(t, err)
	for _, e := range mockEntries() {
		if e.Table != "Object" {
			continue
		}
		_, err = idx.db.Exec("INSERT INTO LSST__Object VALUES (?, ?, ?)", e.Key, e.ChunkID, e.SubChunkID)
		require.Nil(t, err)
	}
	return idx
}

func TestSQLIndexLookup(t *testing.T) {
	idx := mockSQLIndex(t)
	defer idx.Close()
	assert.Nil(t, idx.Ping(context.Background()))

	restrictors, want := mockRestrictors()
	for i, rs := range restrictors {
		got, err := idx.Lookup(context.Background(), rs)
		assert.Nil(t, err)
		assert.Equal(t, len(want[i]), len(got), "%d", i)
		for j := range want[i] {
			assert.Equal(t, want[i][j], got[j])
		}
	}

	got, err := idx.Lookup(context.Background(), nil)
	assert.Nil(t, err)
	assert.Nil(t, got)
}

func TestSQLIndexLookupQuery(t *testing.T) {
	idx := mockSQLIndex(t)
	defer idx.Close()

	q := idx.LookupQuery([]query.SecIdxRestrictor{
		&query.SecIdxCompRestrictor{Col: objectID, Op: "=", Value: "1"},
		&query.SecIdxBetweenRestrictor{Col: objectID, Min: "2", Max: "10"},
	})
	want := "SELECT `chunkId`, `subChunkId` FROM `main`.`LSST__Object` WHERE `objectId` = 1" +
		" UNION SELECT `chunkId`, `subChunkId` FROM `main`.`LSST__Object` WHERE `objectId` BETWEEN 2 AND 10"
	assert.Equal(t, want, q)

	// Unknown index table.
	_, err := idx.Lookup(context.Background(), []query.SecIdxRestrictor{
		&query.SecIdxCompRestrictor{Col: query.SecIdxColumn{Db: "LSST", Table: "Source", Column: "sourceId"}, Op: "=", Value: "1"},
	})
	assert.NotNil(t, err)
}

func TestSQLIndexOpenError(t *testing.T) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	_, err := NewSQLIndex(log, "nodriver", "x", "qservMeta")
	assert.NotNil(t, err)
	_, err = NewSQLIndex(log, "mysql", "root@tcp(127.0.0.1:1)/qservMeta?timeout=1s", "qservMeta")
	assert.NotNil(t, err)
}
