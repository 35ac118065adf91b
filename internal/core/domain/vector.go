package domain

import (
	"math"
	"math/bits"
)

// MaxEntryTextBytes bounds the text stored with an IndexEntry.
const MaxEntryTextBytes = 65535

// Embedding is a dense, unit-normalised vector of fixed dimension.
type Embedding []float32

// BinaryVector is a sign-quantised Embedding packed into bytes,
// most significant bit first.
type BinaryVector []byte

// Normalize scales v in place to unit L2 length. Zero vectors are left unchanged.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}

// PackBits sets bit i when v[i] > 0 and packs the bits MSB first.
// The final byte is zero padded when len(v) is not a multiple of 8.
// Indexed vectors and query vectors must both go through this routine.
func PackBits(v Embedding) BinaryVector {
	out := make(BinaryVector, (len(v)+7)/8)
	for i, x := range v {
		if x > 0 {
			out[i/8] |= 0x80 >> uint(i%8)
		}
	}
	return out
}

// HammingDistance counts differing bits between two vectors of equal length.
// Returns -1 if the lengths differ.
func HammingDistance(a, b BinaryVector) int {
	if len(a) != len(b) {
		return -1
	}
	d := 0
	for i := range a {
		d += bits.OnesCount8(a[i] ^ b[i])
	}
	return d
}

// IndexEntry is a single committed row of the vector store.
type IndexEntry struct {
	// ID is assigned by the store in insertion order.
	ID int64

	// TextHash is the advisory content hash of Text.
	TextHash string

	// Text is the chunk text.
	Text string

	// Vector is the packed binary embedding of Text.
	Vector BinaryVector
}

// SearchHit is a ranked vector store match.
type SearchHit struct {
	// ID is the matched entry id.
	ID int64

	// Text is the matched entry text.
	Text string

	// Distance is the Hamming distance to the query.
	Distance int

	// Score is 1/(1+Distance), decreasing in distance.
	Score float64
}

// ScoreFromDistance converts a Hamming distance into a similarity score.
func ScoreFromDistance(d int) float64 {
	return 1.0 / (1.0 + float64(d))
}
