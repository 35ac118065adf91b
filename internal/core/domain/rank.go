package domain

import (
	"container/heap"
	"sort"
)

// HitCollector keeps the k nearest entries offered to it.
// Entries are ordered by ascending distance, then ascending id.
type HitCollector struct {
	k    int
	hits hitHeap
}

// NewHitCollector creates a collector for the k best hits.
func NewHitCollector(k int) *HitCollector {
	if k < 0 {
		k = 0
	}
	return &HitCollector{k: k, hits: make(hitHeap, 0, k)}
}

// Offer considers one entry.
func (c *HitCollector) Offer(id int64, text string, distance int) {
	if c.k == 0 {
		return
	}
	h := SearchHit{ID: id, Text: text, Distance: distance}
	if len(c.hits) < c.k {
		heap.Push(&c.hits, h)
		return
	}
	if rankedBefore(h, c.hits[0]) {
		c.hits[0] = h
		heap.Fix(&c.hits, 0)
	}
}

// Hits returns the collected hits, best first, with scores filled in.
func (c *HitCollector) Hits() []SearchHit {
	out := make([]SearchHit, len(c.hits))
	copy(out, c.hits)
	sort.Slice(out, func(i, j int) bool { return rankedBefore(out[i], out[j]) })
	for i := range out {
		out[i].Score = ScoreFromDistance(out[i].Distance)
	}
	return out
}

func rankedBefore(a, b SearchHit) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.ID < b.ID
}

// hitHeap is a max-heap: the worst kept hit sits at the root.
type hitHeap []SearchHit

func (h hitHeap) Len() int           { return len(h) }
func (h hitHeap) Less(i, j int) bool { return rankedBefore(h[j], h[i]) }
func (h hitHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *hitHeap) Push(x any) { *h = append(*h, x.(SearchHit)) }

func (h *hitHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
