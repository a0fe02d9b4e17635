/*
 * Radon
 *
 * Copyright 2018 The Radon Authors.
 * Code is licensed under the GPLv3.
 *
 */

package sphgeom

import (
	"math"

	"github.com/golang/geo/s2"
	"github.com/pkg/errors"
)

// SubChunks is a chunk id with the ids of some of its subchunks.
type SubChunks struct {
	ChunkID     int32
	SubChunkIDs []int32
}

type stripe struct {
	chunkWidth           float64
	numChunksPerStripe   int32
	numSubChunksPerChunk int32
}

type subStripe struct {
	subChunkWidth        float64
	numSubChunksPerChunk int32
}

// Chunker partitions the sphere into latitude stripes of equal height, each
// split into chunks of roughly equal width. Stripes are further divided into
// substripes and chunks into subchunks the same way.
type Chunker struct {
	numStripes                    int32
	numSubStripesPerStripe        int32
	numSubStripes                 int32
	stripeHeight                  float64
	subStripeHeight               float64
	maxSubChunksPerSubStripeChunk int32
	stripes                       []stripe
	subStripes                    []subStripe
}

// segments returns the number of equal-width longitude segments a latitude
// band [latMin, latMax] can be cut into, such that points in non-adjacent
// segments are at least width degrees apart.
func segments(latMin, latMax, width float64) int32 {
	lat := math.Max(math.Abs(latMin), math.Abs(latMax))
	if lat > 90.0-1.0/3600.0 {
		return 1
	}
	if width >= 180.0 {
		return 1
	} else if width < 1.0/3600.0 {
		width = 1.0 / 3600.0
	}
	cw := math.Cos(degToRad(width))
	sl := math.Sin(degToRad(lat))
	cl := math.Cos(degToRad(lat))
	x := cw - sl*sl
	u := cl * cl
	y := math.Sqrt(math.Abs(u*u - x*x))
	return int32(math.Floor(360.0 / math.Abs(math.Atan2(y, x)*180.0/math.Pi)))
}

// NewChunker creates a chunker with numStripes stripes, each split into
// numSubStripesPerStripe substripes.
func NewChunker(numStripes, numSubStripesPerStripe int32) (*Chunker, error) {
	if numStripes < 1 || numSubStripesPerStripe < 1 {
		return nil, errors.Errorf("sphgeom.chunker.invalid.stripes[%d].substripes[%d]", numStripes, numSubStripesPerStripe)
	}
	c := &Chunker{
		numStripes:             numStripes,
		numSubStripesPerStripe: numSubStripesPerStripe,
		numSubStripes:          numStripes * numSubStripesPerStripe,
		stripeHeight:           180.0 / float64(numStripes),
	}
	c.subStripeHeight = 180.0 / float64(c.numSubStripes)
	c.stripes = make([]stripe, numStripes)
	c.subStripes = make([]subStripe, c.numSubStripes)
	for i := int32(0); i < numStripes; i++ {
		nc := segments(float64(i)*c.stripeHeight-90.0, float64(i+1)*c.stripeHeight-90.0, c.stripeHeight)
		c.stripes[i].chunkWidth = 360.0 / float64(nc)
		c.stripes[i].numChunksPerStripe = nc
		for j := int32(0); j < numSubStripesPerStripe; j++ {
			ss := i*numSubStripesPerStripe + j
			latMin := float64(ss)*c.subStripeHeight - 90.0
			latMax := float64(ss+1)*c.subStripeHeight - 90.0
			nsc := segments(latMin, latMax, c.subStripeHeight) / nc
			if nsc < 1 {
				nsc = 1
			}
			c.stripes[i].numSubChunksPerChunk += nsc
			c.subStripes[ss].numSubChunksPerChunk = nsc
			c.subStripes[ss].subChunkWidth = 360.0 / float64(nsc*nc)
			if nsc > c.maxSubChunksPerSubStripeChunk {
				c.maxSubChunksPerSubStripeChunk = nsc
			}
		}
	}
	return c, nil
}

// NumStripes returns the stripe count.
func (c *Chunker) NumStripes() int32 {
	return c.numStripes
}

// NumSubStripesPerStripe returns the substripe count of each stripe.
func (c *Chunker) NumSubStripesPerStripe() int32 {
	return c.numSubStripesPerStripe
}

func (c *Chunker) chunkID(stripe, chunk int32) int32 {
	return stripe*2*c.numStripes + chunk
}

func (c *Chunker) subChunkID(stripe, subStripe, subChunk int32) int32 {
	return (subStripe-stripe*c.numSubStripesPerStripe)*c.maxSubChunksPerSubStripeChunk + subChunk
}

func (c *Chunker) stripeOf(chunkID int32) int32 {
	return chunkID / (2 * c.numStripes)
}

// IsValidChunk reports whether chunkID names a chunk of this chunker.
func (c *Chunker) IsValidChunk(chunkID int32) bool {
	if chunkID < 0 {
		return false
	}
	s := c.stripeOf(chunkID)
	if s >= c.numStripes {
		return false
	}
	return chunkID-s*2*c.numStripes < c.stripes[s].numChunksPerStripe
}

func (c *Chunker) chunkRect(stripe, chunk int32) s2.Rect {
	w := c.stripes[stripe].chunkWidth
	latMin := float64(stripe)*c.stripeHeight - 90.0
	latMax := float64(stripe+1)*c.stripeHeight - 90.0
	if stripe == c.numStripes-1 {
		latMax = 90.0
	}
	return RectFromDegrees(float64(chunk)*w, latMin, float64(chunk+1)*w, latMax)
}

func (c *Chunker) subChunkRect(stripe, chunk, subStripe, subChunk int32) s2.Rect {
	ss := c.subStripes[subStripe]
	lonMin := float64(chunk)*c.stripes[stripe].chunkWidth + float64(subChunk)*ss.subChunkWidth
	latMin := float64(subStripe)*c.subStripeHeight - 90.0
	latMax := float64(subStripe+1)*c.subStripeHeight - 90.0
	if subStripe == c.numSubStripes-1 {
		latMax = 90.0
	}
	return RectFromDegrees(lonMin, latMin, lonMin+ss.subChunkWidth, latMax)
}

// ChunkRect returns the bounding box of a chunk.
func (c *Chunker) ChunkRect(chunkID int32) (s2.Rect, error) {
	if !c.IsValidChunk(chunkID) {
		return s2.EmptyRect(), errors.Errorf("sphgeom.chunker.invalid.chunk[%d]", chunkID)
	}
	s := c.stripeOf(chunkID)
	return c.chunkRect(s, chunkID-s*2*c.numStripes), nil
}

// AllChunks returns every chunk id, ascending.
func (c *Chunker) AllChunks() []int32 {
	var ids []int32
	for s := int32(0); s < c.numStripes; s++ {
		for ch := int32(0); ch < c.stripes[s].numChunksPerStripe; ch++ {
			ids = append(ids, c.chunkID(s, ch))
		}
	}
	return ids
}

// AllSubChunks returns every subchunk id of a chunk, ascending.
func (c *Chunker) AllSubChunks(chunkID int32) []int32 {
	if !c.IsValidChunk(chunkID) {
		return nil
	}
	s := c.stripeOf(chunkID)
	var ids []int32
	for ss := s * c.numSubStripesPerStripe; ss < (s+1)*c.numSubStripesPerStripe; ss++ {
		for sc := int32(0); sc < c.subStripes[ss].numSubChunksPerChunk; sc++ {
			ids = append(ids, c.subChunkID(s, ss, sc))
		}
	}
	return ids
}

// ChunksIntersecting returns the ids of chunks that may intersect r.
func (c *Chunker) ChunksIntersecting(r Region) []int32 {
	var ids []int32
	for s := int32(0); s < c.numStripes; s++ {
		for ch := int32(0); ch < c.stripes[s].numChunksPerStripe; ch++ {
			if r.IntersectsRect(c.chunkRect(s, ch)) {
				ids = append(ids, c.chunkID(s, ch))
			}
		}
	}
	return ids
}

// SubChunksIntersecting returns, per intersecting chunk, the subchunks
// that may intersect r. Chunks are ascending, so are subchunks.
func (c *Chunker) SubChunksIntersecting(r Region) []SubChunks {
	var out []SubChunks
	for s := int32(0); s < c.numStripes; s++ {
		for ch := int32(0); ch < c.stripes[s].numChunksPerStripe; ch++ {
			if !r.IntersectsRect(c.chunkRect(s, ch)) {
				continue
			}
			sc := SubChunks{ChunkID: c.chunkID(s, ch)}
			for ss := s * c.numSubStripesPerStripe; ss < (s+1)*c.numSubStripesPerStripe; ss++ {
				for k := int32(0); k < c.subStripes[ss].numSubChunksPerChunk; k++ {
					if r.IntersectsRect(c.subChunkRect(s, ch, ss, k)) {
						sc.SubChunkIDs = append(sc.SubChunkIDs, c.subChunkID(s, ss, k))
					}
				}
			}
			if len(sc.SubChunkIDs) > 0 {
				out = append(out, sc)
			}
		}
	}
	return out
}

func clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Locate returns the chunk and subchunk containing the point (lon, lat).
func (c *Chunker) Locate(lon, lat float64) (int32, int32) {
	lon = math.Mod(lon, 360.0)
	if lon < 0 {
		lon += 360.0
	}
	s := clamp(int32(math.Floor((lat+90.0)/c.stripeHeight)), 0, c.numStripes-1)
	ss := clamp(int32(math.Floor((lat+90.0)/c.subStripeHeight)), s*c.numSubStripesPerStripe, (s+1)*c.numSubStripesPerStripe-1)
	st := c.stripes[s]
	ch := clamp(int32(math.Floor(lon/st.chunkWidth)), 0, st.numChunksPerStripe-1)
	nsc := c.subStripes[ss].numSubChunksPerChunk
	k := clamp(int32(math.Floor(lon/c.subStripes[ss].subChunkWidth))-ch*nsc, 0, nsc-1)
	return c.chunkID(s, ch), c.subChunkID(s, ss, k)
}
