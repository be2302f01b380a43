// Package order provides partial selection (top-k / bottom-k) over indexed values.
package order

import "container/heap"

// Largest returns the indexes of the k largest values among [0, n), ordered
// from largest to smallest. Equal values keep ascending index order, so the
// result matches a stable descending sort truncated to k.
func Largest(n, k int, key func(i int) float64) []int {
	return selectK(n, k, func(a, b int) bool {
		ka, kb := key(a), key(b)
		if ka != kb {
			return ka > kb
		}
		return a < b
	})
}

// Smallest returns the indexes of the k smallest values among [0, n), ordered
// from smallest to largest, with equal values in ascending index order.
func Smallest(n, k int, key func(i int) float64) []int {
	return selectK(n, k, func(a, b int) bool {
		ka, kb := key(a), key(b)
		if ka != kb {
			return ka < kb
		}
		return a < b
	})
}

// selectK keeps the k best indexes in a bounded heap whose root is the worst
// kept index, giving O(n log k) selection.
func selectK(n, k int, better func(a, b int) bool) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}

	h := &boundedHeap{better: better, idx: make([]int, 0, k)}
	for i := 0; i < n; i++ {
		if h.Len() < k {
			heap.Push(h, i)
			continue
		}
		if better(i, h.idx[0]) {
			h.idx[0] = i
			heap.Fix(h, 0)
		}
	}

	out := make([]int, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(int)
	}
	return out
}

type boundedHeap struct {
	idx    []int
	better func(a, b int) bool
}

func (h *boundedHeap) Len() int { return len(h.idx) }

// Less puts the worst kept index at the root.
func (h *boundedHeap) Less(i, j int) bool { return h.better(h.idx[j], h.idx[i]) }

func (h *boundedHeap) Swap(i, j int) { h.idx[i], h.idx[j] = h.idx[j], h.idx[i] }

func (h *boundedHeap) Push(x any) { h.idx = append(h.idx, x.(int)) }

func (h *boundedHeap) Pop() any {
	old := h.idx
	n := len(old)
	x := old[n-1]
	h.idx = old[:n-1]
	return x
}
