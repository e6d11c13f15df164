// Package queue provides a generic priority queue implementation based on the internal heap
package queue

// Priority queue based on
// https://golang.org/pkg/container/heap/#example__priorityQueue

import (
	"container/heap"
)

// innerPriorityQueue implements heap.Interface
type innerPriorityQueue[E any] struct {
	items   []E
	cmpFunc func(E, E) int
}

// PriorityQueue is a min-heap ordered by the comparison function it was created with
type PriorityQueue[E any] struct {
	ipq innerPriorityQueue[E]
}

// NewPriorityQueue creates a new heap based PriorityQueue using cmpFunc as the comparison function.
// cmpFunc follows the cmp.Compare convention, the smallest item is at the front of the queue.
func NewPriorityQueue[E any](cmpFunc func(E, E) int) *PriorityQueue[E] {
	return NewPriorityQueueSize(0, cmpFunc)
}

// NewPriorityQueueSize is NewPriorityQueue with room for n items preallocated
func NewPriorityQueueSize[E any](n int, cmpFunc func(E, E) int) *PriorityQueue[E] {
	var pq PriorityQueue[E]
	pq.ipq.items = make([]E, 0, n)
	pq.ipq.cmpFunc = cmpFunc
	return &pq
}

// Len returns the number of items in the queue
func (pq *PriorityQueue[E]) Len() int {
	return pq.ipq.Len()
}

// Push adds x to the queue
func (pq *PriorityQueue[E]) Push(x E) {
	heap.Push(&pq.ipq, x)
}

// Pop removes and returns the smallest item in the queue
func (pq *PriorityQueue[E]) Pop() E {
	return heap.Pop(&pq.ipq).(E)
}

// Peek returns the smallest item in the queue without removing it
func (pq *PriorityQueue[E]) Peek() E {
	return pq.ipq.items[0]
}

// PeekUpdate restores the heap order after the item returned by Peek has changed.
// Together with Peek it replaces a Pop followed by a Push of the same item.
func (pq *PriorityQueue[E]) PeekUpdate() {
	heap.Fix(&pq.ipq, 0)
}

func (pq *innerPriorityQueue[E]) Len() int {
	return len(pq.items)
}

func (pq *innerPriorityQueue[E]) Less(i, j int) bool {
	return pq.cmpFunc(pq.items[i], pq.items[j]) < 0
}

func (pq *innerPriorityQueue[E]) Swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
}

func (pq *innerPriorityQueue[E]) Push(x any) {
	pq.items = append(pq.items, x.(E))
}

func (pq *innerPriorityQueue[E]) Pop() any {
	old := pq.items
	n := len(old)
	item := old[n-1]
	var zero E
	old[n-1] = zero // drop the reference
	pq.items = old[0 : n-1]
	return item
}
