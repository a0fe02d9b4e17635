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
	"github.com/radondb/qplan/query"
	"github.com/radondb/qplan/secidx"
	"github.com/radondb/qplan/sphgeom"

	"github.com/xelabs/go-mysqlstack/xlog"
)

// IndexMap resolves the chunks and subchunks a query must visit from its
// area and secondary index restrictors.
type IndexMap struct {
	log         *xlog.Log
	chunker     *sphgeom.Chunker
	index       secidx.Index
	emptyChunks []int32
}

// NewIndexMap creates the index map. index may be nil, secondary index
// restrictors are then ignored.
func NewIndexMap(log *xlog.Log, chunker *sphgeom.Chunker, index secidx.Index, emptyChunks []int32) *IndexMap {
	return &IndexMap{
		log:         log,
		chunker:     chunker,
		index:       index,
		emptyChunks: emptyChunks,
	}
}

// areaChunks unions the chunks intersecting every restrictor region.
// ok is false when there is no region at all.
func (m *IndexMap) areaChunks(areas []query.AreaRestrictor) (chunk.Specs, bool, error) {
	if len(areas) == 0 {
		return nil, false, nil
	}
	var specs []chunk.Spec
	for _, r := range areas {
		region, err := r.Region()
		if err != nil {
			return nil, false, err
		}
		for _, sc := range m.chunker.SubChunksIntersecting(region) {
			specs = append(specs, chunk.Spec{ChunkID: sc.ChunkID, SubChunks: sc.SubChunkIDs})
		}
	}
	return chunk.Normalize(specs), true, nil
}

// indexChunks looks the restrictors up in the secondary index.
func (m *IndexMap) indexChunks(ctx context.Context, restrictors []query.SecIdxRestrictor) (chunk.Specs, bool, error) {
	if len(restrictors) == 0 {
		return nil, false, nil
	}
	if m.index == nil {
		m.log.Warning("qproc.index.map.no.secondary.index.restrictors[%d].ignored", len(restrictors))
		return nil, false, nil
	}
	specs, err := m.index.Lookup(ctx, restrictors)
	if err != nil {
		return nil, false, err
	}
	return chunk.Normalize(specs), true, nil
}

// allChunks returns every chunk with all of its subchunks.
func (m *IndexMap) allChunks() chunk.Specs {
	ids := m.chunker.AllChunks()
	specs := make(chunk.Specs, 0, len(ids))
	for _, id := range ids {
		specs = append(specs, chunk.Spec{ChunkID: id, SubChunks: m.chunker.AllSubChunks(id)})
	}
	return specs
}

// GetChunks returns the chunks to visit, sorted by chunk id, empty chunks
// excluded. Area and index candidates are intersected when both exist.
func (m *IndexMap) GetChunks(ctx context.Context, areas []query.AreaRestrictor, restrictors []query.SecIdxRestrictor) (chunk.Specs, error) {
	areaSpecs, hasArea, err := m.areaChunks(areas)
	if err != nil {
		return nil, err
	}
	indexSpecs, hasIndex, err := m.indexChunks(ctx, restrictors)
	if err != nil {
		return nil, err
	}

	var specs chunk.Specs
	switch {
	case hasArea && hasIndex:
		specs = chunk.Intersect(indexSpecs, areaSpecs)
	case hasArea:
		specs = areaSpecs
	case hasIndex:
		specs = indexSpecs
	default:
		specs = m.allChunks()
	}
	specs = chunk.Exclude(specs, m.emptyChunks)
	m.log.Debug("qproc.index.map.areas[%d].restrictors[%d].chunks[%d]", len(areas), len(restrictors), len(specs))
	return specs, nil
}
