/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkNormalize(t *testing.T) {
	got := Normalize([]Spec{
		{ChunkID: 7, SubChunks: []int32{3, 1}},
		{ChunkID: 2},
		{ChunkID: 7, SubChunks: []int32{1, 2, 2}},
	})
	want := Specs{
		{ChunkID: 2},
		{ChunkID: 7, SubChunks: []int32{1, 2, 3}},
	}
	assert.Equal(t, want, got)
	assert.Equal(t, []int32{2, 7}, got.ChunkIDs())
	assert.Equal(t, "7[1,2,3]", got[1].String())
	assert.Equal(t, Specs{}, Normalize(nil))
}

func TestChunkIntersect(t *testing.T) {
	// Overlapping and disjoint ranges.
	a := []Spec{
		{ChunkID: 1, SubChunks: []int32{1, 2, 3}},
		{ChunkID: 3, SubChunks: []int32{5, 6}},
		{ChunkID: 5, SubChunks: []int32{1}},
		{ChunkID: 9, SubChunks: []int32{4}},
	}
	b := []Spec{
		{ChunkID: 9},
		{ChunkID: 5, SubChunks: []int32{2}},
		{ChunkID: 1, SubChunks: []int32{2, 3, 4}},
		{ChunkID: 2, SubChunks: []int32{1}},
	}
	want := Specs{
		{ChunkID: 1, SubChunks: []int32{2, 3}},
		{ChunkID: 9, SubChunks: []int32{4}},
	}
	assert.Equal(t, want, Intersect(a, b))
	assert.Equal(t, want, Intersect(b, a))

	// Every result chunk is in both inputs.
	inA := map[int32]bool{1: true, 3: true, 5: true, 9: true}
	inB := map[int32]bool{9: true, 5: true, 1: true, 2: true}
	for _, s := range Intersect(a, b) {
		assert.True(t, inA[s.ChunkID] && inB[s.ChunkID])
	}

	assert.Equal(t, 0, len(Intersect(a, nil)))
	assert.Equal(t, 0, len(Intersect([]Spec{{ChunkID: 1}}, []Spec{{ChunkID: 2}})))
}

func TestChunkMergeExclude(t *testing.T) {
	got := Merge(
		[]Spec{{ChunkID: 4, SubChunks: []int32{1}}, {ChunkID: 1}},
		[]Spec{{ChunkID: 4, SubChunks: []int32{0, 1}}},
	)
	assert.Equal(t, Specs{{ChunkID: 1}, {ChunkID: 4, SubChunks: []int32{0, 1}}}, got)
	assert.Equal(t, Specs{{ChunkID: 1}}, Exclude(got, []int32{4, 8}))
}

func TestChunkDummy(t *testing.T) {
	d := NewDummySpec()
	assert.True(t, d.IsDummy())
	assert.Equal(t, int32(1234567890), d.ChunkID)
	assert.False(t, Spec{ChunkID: 1}.IsDummy())
}

func TestChunkFragment(t *testing.T) {
	spec := Spec{ChunkID: 100, SubChunks: []int32{0, 1, 2, 3, 4, 5, 6}}
	pieces := Fragment(spec, 3)
	assert.Equal(t, []Spec{
		{ChunkID: 100, SubChunks: []int32{0, 1, 2}},
		{ChunkID: 100, SubChunks: []int32{3, 4, 5}},
		{ChunkID: 100, SubChunks: []int32{6}},
	}, pieces)

	// Round trip.
	var ids []int32
	for _, p := range pieces {
		ids = append(ids, p.SubChunks...)
	}
	assert.Equal(t, spec.SubChunks, ids)

	assert.Equal(t, []Spec{spec}, Fragment(spec, 0))
	assert.Equal(t, []Spec{{ChunkID: 5}}, Fragment(Spec{ChunkID: 5}, 3))

	f := NewFragmenter(spec, 7)
	assert.False(t, f.IsDone())
	assert.Equal(t, spec, f.Next())
	assert.True(t, f.IsDone())

	// Pieces do not alias the input.
	pieces[0].SubChunks[0] = 99
	assert.Equal(t, int32(0), spec.SubChunks[0])
}
