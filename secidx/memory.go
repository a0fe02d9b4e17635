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
	"sync"

	"github.com/radondb/qplan/chunk"
	"github.com/radondb/qplan/query"
	"github.com/radondb/qplan/xbase"

	"github.com/xelabs/go-mysqlstack/xlog"
)

var _ Index = &MemoryIndex{}

// Entry is one row of a director's index table.
type Entry struct {
	Db         string `json:"db" yaml:"db"`
	Table      string `json:"table" yaml:"table"`
	Key        string `json:"key" yaml:"key"`
	ChunkID    int32  `json:"chunk" yaml:"chunk"`
	SubChunkID int32  `json:"subchunk" yaml:"subchunk"`
}

// MemoryIndex keeps the index rows in memory, keyed by index table.
type MemoryIndex struct {
	log     *xlog.Log
	mu      sync.RWMutex
	entries map[string][]Entry
}

// NewMemoryIndex creates an empty index.
func NewMemoryIndex(log *xlog.Log) *MemoryIndex {
	return &MemoryIndex{
		log:     log,
		entries: make(map[string][]Entry),
	}
}

// LoadFile adds the entries of a json or yaml fixture file.
func (m *MemoryIndex) LoadFile(file string) error {
	var entries []Entry
	if err := xbase.DecodeFile(file, &entries); err != nil {
		m.log.Error("secidx.memory.load[%s].error:%+v", file, err)
		return err
	}
	m.Add(entries...)
	m.log.Info("secidx.memory.load[%s].entries[%d]", file, len(entries))
	return nil
}

// Add inserts entries.
func (m *MemoryIndex) Add(entries ...Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		name := query.SecIdxColumn{Db: e.Db, Table: e.Table}.IndexTable()
		m.entries[name] = append(m.entries[name], e)
	}
}

// Lookup implements Index.
func (m *MemoryIndex) Lookup(ctx context.Context, restrictors []query.SecIdxRestrictor) ([]chunk.Spec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var specs []chunk.Spec
	for _, r := range restrictors {
		name := r.Target().IndexTable()
		for _, e := range m.entries[name] {
			if r.Matches(e.Key) {
				specs = addSpec(specs, e.ChunkID, e.SubChunkID)
			}
		}
		m.log.Debug("secidx.memory.lookup[%s].hits[%d]", r.String(), len(specs))
	}
	return chunk.Normalize(specs), nil
}

// Close implements Index.
func (m *MemoryIndex) Close() error {
	return nil
}
