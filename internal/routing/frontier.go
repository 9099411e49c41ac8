package routing

import (
	"container/heap"
	"disposal-route-service/internal/domain"
)

type frontierItem struct {
	route domain.Route
	seq   uint64
	index int
}

// routeHeap orders routes by distance, then by insertion sequence so equal
// distances pop first-in first-out.
type routeHeap []*frontierItem

func (h routeHeap) Len() int { return len(h) }
func (h routeHeap) Less(i, j int) bool {
	if h[i].route.Distance != h[j].route.Distance {
		return h[i].route.Distance < h[j].route.Distance
	}
	return h[i].seq < h[j].seq
}
func (h routeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *routeHeap) Push(x any) {
	item := x.(*frontierItem)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *routeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

// frontier holds the candidate routes of one search. It keeps at most one
// route per frontier location: the shortest seen so far.
type frontier struct {
	heap   routeHeap
	byNode map[domain.LocationID]*frontierItem
	seq    uint64
}

func newFrontier() *frontier {
	return &frontier{byNode: make(map[domain.LocationID]*frontierItem)}
}

func (f *frontier) Len() int { return f.heap.Len() }

// merge offers a candidate route. A route already queued for the same
// location wins ties. Returns true when the candidate was kept.
func (f *frontier) merge(r domain.Route) bool {
	f.seq++
	if existing, ok := f.byNode[r.Frontier]; ok {
		if existing.route.Distance <= r.Distance {
			return false
		}
		existing.route = r
		existing.seq = f.seq
		heap.Fix(&f.heap, existing.index)
		return true
	}

	item := &frontierItem{route: r, seq: f.seq}
	heap.Push(&f.heap, item)
	f.byNode[r.Frontier] = item
	return true
}

func (f *frontier) mergeAll(routes []domain.Route) {
	for _, r := range routes {
		f.merge(r)
	}
}

// pop removes and returns the shortest route.
func (f *frontier) pop() domain.Route {
	item := heap.Pop(&f.heap).(*frontierItem)
	delete(f.byNode, item.route.Frontier)
	return item.route
}
