package workerpool

import "go.trai.ch/noderun/internal/core/ports"

type item struct {
	task ports.Task
	prio int
	seq  uint64
}

// before orders by descending priority, then by insertion.
func (i *item) before(o *item) bool {
	if i.prio != o.prio {
		return i.prio > o.prio
	}
	return i.seq < o.seq
}

// taskHeap implements heap.Interface.
type taskHeap []*item

func (h taskHeap) Len() int           { return len(h) }
func (h taskHeap) Less(i, j int) bool { return h[i].before(h[j]) }
func (h taskHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) {
	it, _ := x.(*item)
	*h = append(*h, it)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}
