/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package query

import (
	"sort"
)

// DbTable is a (database, table) pair.
type DbTable struct {
	Db    string `json:"db"`
	Table string `json:"table"`
}

// String returns db.table.
func (d DbTable) String() string {
	return d.Db + "." + d.Table
}

// QueryMapping records which tables of a parallel template are substituted
// per chunk and which also need per-subchunk substitution.
type QueryMapping struct {
	chunkTables    map[DbTable]bool
	subChunkTables map[DbTable]bool
}

// NewQueryMapping creates an empty mapping.
func NewQueryMapping() *QueryMapping {
	return &QueryMapping{
		chunkTables:    make(map[DbTable]bool),
		subChunkTables: make(map[DbTable]bool),
	}
}

// InsertChunkTable records a table substituted at chunk level.
func (m *QueryMapping) InsertChunkTable(db, table string) {
	m.chunkTables[DbTable{Db: db, Table: table}] = true
}

// InsertSubChunkTable records a table substituted at subchunk level.
func (m *QueryMapping) InsertSubChunkTable(db, table string) {
	k := DbTable{Db: db, Table: table}
	m.chunkTables[k] = true
	m.subChunkTables[k] = true
}

// Update merges other into m.
func (m *QueryMapping) Update(other *QueryMapping) {
	for k := range other.chunkTables {
		m.chunkTables[k] = true
	}
	for k := range other.subChunkTables {
		m.subChunkTables[k] = true
	}
}

// HasChunks reports whether any table is chunked.
func (m *QueryMapping) HasChunks() bool {
	return len(m.chunkTables) > 0
}

// HasSubChunks reports whether any table is subchunked.
func (m *QueryMapping) HasSubChunks() bool {
	return len(m.subChunkTables) > 0
}

func sortedTables(set map[DbTable]bool) []DbTable {
	out := make([]DbTable, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Db != out[j].Db {
			return out[i].Db < out[j].Db
		}
		return out[i].Table < out[j].Table
	})
	return out
}

// ChunkTables returns the chunked tables, sorted.
func (m *QueryMapping) ChunkTables() []DbTable {
	return sortedTables(m.chunkTables)
}

// SubChunkTables returns the subchunked tables, sorted.
func (m *QueryMapping) SubChunkTables() []DbTable {
	return sortedTables(m.subChunkTables)
}

// ChunkTableName is the chunk-level table name pattern.
func ChunkTableName(table string, overlap bool) string {
	if overlap {
		return table + "FullOverlap_" + ChunkTag
	}
	return table + "_" + ChunkTag
}

// SubChunkDb is the database holding a chunk's subchunk tables.
func SubChunkDb(db string) string {
	return "Subchunks_" + db + "_" + ChunkTag
}

// SubChunkTableName is the subchunk-level table name pattern.
func SubChunkTableName(table string, overlap bool) string {
	if overlap {
		return table + "FullOverlap_" + ChunkTag + "_" + SubChunkTag
	}
	return table + "_" + ChunkTag + "_" + SubChunkTag
}
