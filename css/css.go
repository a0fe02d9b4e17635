/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package css

import (
	"github.com/radondb/qplan/config"
)

const (
	// ChunkLevelNone is an unpartitioned table.
	ChunkLevelNone = 0
	// ChunkLevelChunk is a chunked table.
	ChunkLevelChunk = 1
	// ChunkLevelSubChunk is a chunked table that also has subchunks.
	ChunkLevelSubChunk = 2
)

// MatchParams tuple.
type MatchParams struct {
	DirTable1   string `json:",omitempty"`
	DirColName1 string `json:",omitempty"`
	DirTable2   string `json:",omitempty"`
	DirColName2 string `json:",omitempty"`
	FlagColName string `json:",omitempty"`
}

// PartTableParams tuple.
type PartTableParams struct {
	Db         string `json:",omitempty"`
	Table      string `json:",omitempty"`
	Kind       string `json:",omitempty"`
	ChunkLevel int
	// Director of the table. A director is its own director.
	DirDb      string       `json:",omitempty"`
	DirTable   string       `json:",omitempty"`
	DirColName string       `json:",omitempty"`
	LonColName string       `json:",omitempty"`
	LatColName string       `json:",omitempty"`
	Match      *MatchParams `json:",omitempty"`
}

// IsChunked returns true if the table is partitioned into chunks.
func (p *PartTableParams) IsChunked() bool {
	return p.ChunkLevel > ChunkLevelNone
}

// IsSubChunked returns true if the table also has subchunks.
func (p *PartTableParams) IsSubChunked() bool {
	return p.ChunkLevel == ChunkLevelSubChunk
}

// IsDirector returns true for a director table.
func (p *PartTableParams) IsDirector() bool {
	return p.Kind == config.PartitionDirector
}

// IsChild returns true for a child table.
func (p *PartTableParams) IsChild() bool {
	return p.Kind == config.PartitionChild
}

// IsMatch returns true for a match table.
func (p *PartTableParams) IsMatch() bool {
	return p.Kind == config.PartitionMatch
}

// HasPartitionCols returns true if both lon and lat columns are known.
func (p *PartTableParams) HasPartitionCols() bool {
	return p.LonColName != "" && p.LatColName != ""
}

// ScanTableParams tuple.
type ScanTableParams struct {
	LockInMem  bool
	ScanRating int
}

// StripingParams tuple.
type StripingParams struct {
	Stripes        int32
	SubStripes     int32
	PartitioningID int
	// Overlap radius in degrees.
	Overlap float64
}

// Facade is the read-only catalog view used while planning.
// Implementations must tolerate concurrent readers.
type Facade interface {
	ContainsDb(db string) bool
	ContainsTable(db, table string) bool
	CheckDatabase(db string) error
	GetPartTableParams(db, table string) (*PartTableParams, error)
	GetScanTableParams(db, table string) (*ScanTableParams, error)
	GetDbStriping(db string) (*StripingParams, error)
	GetEmptyChunks(db string) ([]int32, error)
	GetTableColumns(db, table string) ([]string, error)
}
