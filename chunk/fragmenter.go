/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package chunk

// Fragmenter splits a spec into pieces of at most limit subchunks.
type Fragmenter struct {
	spec  Spec
	limit int
	pos   int
}

// NewFragmenter creates a fragmenter; limit < 1 means one piece.
func NewFragmenter(spec Spec, limit int) *Fragmenter {
	if limit < 1 {
		limit = len(spec.SubChunks)
	}
	return &Fragmenter{spec: spec, limit: limit}
}

// IsDone reports whether every subchunk has been handed out.
func (f *Fragmenter) IsDone() bool {
	return f.pos >= len(f.spec.SubChunks)
}

// Next returns the next piece.
func (f *Fragmenter) Next() Spec {
	end := f.pos + f.limit
	if end > len(f.spec.SubChunks) {
		end = len(f.spec.SubChunks)
	}
	piece := Spec{ChunkID: f.spec.ChunkID, SubChunks: append([]int32(nil), f.spec.SubChunks[f.pos:end]...)}
	f.pos = end
	return piece
}

// Fragment returns every piece of spec in order, at least one.
func Fragment(spec Spec, limit int) []Spec {
	f := NewFragmenter(spec, limit)
	if f.IsDone() {
		return []Spec{spec.Clone()}
	}
	var out []Spec
	for !f.IsDone() {
		out = append(out, f.Next())
	}
	return out
}
