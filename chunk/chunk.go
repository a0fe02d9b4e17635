/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package chunk

import (
	"fmt"
	"sort"
	"strings"
)

// DummyChunk is the chunk id used when a query touches no chunked table.
const DummyChunk int32 = 1234567890

// Spec is a chunk id with an ordered set of subchunk ids.
type Spec struct {
	ChunkID   int32   `json:"chunk-id"`
	SubChunks []int32 `json:"subchunks,omitempty"`
}

// Specs represents the chunk spec slice.
type Specs []Spec

// Len impl.
func (s Specs) Len() int { return len(s) }

// Swap impl.
func (s Specs) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

// Less impl.
func (s Specs) Less(i, j int) bool { return s[i].ChunkID < s[j].ChunkID }

// NewDummySpec returns the spec of the dummy chunk.
func NewDummySpec() Spec {
	return Spec{ChunkID: DummyChunk}
}

// IsDummy reports whether s is the dummy chunk.
func (s Spec) IsDummy() bool {
	return s.ChunkID == DummyChunk
}

// String returns the spec as chunk[sub1, sub2...].
func (s Spec) String() string {
	ids := make([]string, len(s.SubChunks))
	for i, id := range s.SubChunks {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("%d[%s]", s.ChunkID, strings.Join(ids, ","))
}

// Clone returns a deep copy.
func (s Spec) Clone() Spec {
	out := Spec{ChunkID: s.ChunkID}
	if s.SubChunks != nil {
		out.SubChunks = append([]int32(nil), s.SubChunks...)
	}
	return out
}

func normalizeIDs(ids []int32) []int32 {
	if len(ids) == 0 {
		return nil
	}
	out := append([]int32(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}

func unionIDs(a, b []int32) []int32 {
	return normalizeIDs(append(append([]int32(nil), a...), b...))
}

// intersectIDs expects sorted, deduplicated input.
func intersectIDs(a, b []int32) []int32 {
	var out []int32
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// Normalize sorts by chunk id, merges specs of the same chunk and sorts
// and deduplicates subchunk ids.
func Normalize(specs []Spec) Specs {
	byChunk := make(map[int32]Spec)
	for _, s := range specs {
		if prev, ok := byChunk[s.ChunkID]; ok {
			prev.SubChunks = unionIDs(prev.SubChunks, s.SubChunks)
			byChunk[s.ChunkID] = prev
			continue
		}
		byChunk[s.ChunkID] = Spec{ChunkID: s.ChunkID, SubChunks: normalizeIDs(s.SubChunks)}
	}
	out := make(Specs, 0, len(byChunk))
	for _, s := range byChunk {
		out = append(out, s)
	}
	sort.Sort(out)
	return out
}

// Merge is the union of two spec lists.
func Merge(a, b []Spec) Specs {
	all := make([]Spec, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	return Normalize(all)
}

// Intersect keeps the chunks present in both lists. The subchunk sets of a
// common chunk are intersected, except that a side without subchunks
// constrains nothing at subchunk level. A chunk whose subchunk sets are
// disjoint is dropped.
func Intersect(a, b []Spec) Specs {
	na, nb := Normalize(a), Normalize(b)
	var out Specs
	i, j := 0, 0
	for i < len(na) && j < len(nb) {
		switch {
		case na[i].ChunkID < nb[j].ChunkID:
			i++
		case na[i].ChunkID > nb[j].ChunkID:
			j++
		default:
			sa, sb := na[i].SubChunks, nb[j].SubChunks
			s := Spec{ChunkID: na[i].ChunkID}
			switch {
			case len(sa) == 0:
				s.SubChunks = sb
			case len(sb) == 0:
				s.SubChunks = sa
			default:
				s.SubChunks = intersectIDs(sa, sb)
				if len(s.SubChunks) == 0 {
					i++
					j++
					continue
				}
			}
			out = append(out, s)
			i++
			j++
		}
	}
	return out
}

// Exclude drops the given chunk ids.
func Exclude(specs []Spec, chunks []int32) Specs {
	skip := make(map[int32]bool, len(chunks))
	for _, c := range chunks {
		skip[c] = true
	}
	out := make(Specs, 0, len(specs))
	for _, s := range specs {
		if !skip[s.ChunkID] {
			out = append(out, s)
		}
	}
	return out
}

// ChunkIDs returns the chunk ids in order.
func (s Specs) ChunkIDs() []int32 {
	ids := make([]int32, len(s))
	for i, spec := range s {
		ids[i] = spec.ChunkID
	}
	return ids
}
