package routing

import (
	"container/heap"
	"disposal-route-service/internal/domain"
	"maps"
	"slices"
)

// ProjectWaypoints returns a copy of net in which every storage and company
// location has a direct road to each storage it can reach through plain
// waypoints, weighted with the shortest such distance. A storage ends a
// projected leg. Roads out of plain locations are kept as they are.
func ProjectWaypoints(net *domain.Network) *domain.Network {
	out := net.Clone()

	for _, loc := range net.Locations() {
		_, isStorage := net.StorageAt(loc.ID)
		_, isCompany := net.CompanyAt(loc.ID)
		if !isStorage && !isCompany {
			continue
		}

		legs := waypointLegs(net, loc.ID)
		roads := make([]domain.Road, 0, len(legs))
		for _, to := range slices.Sorted(maps.Keys(legs)) {
			roads = append(roads, domain.Road{From: loc.ID, To: to, Distance: legs[to]})
		}
		out.ReplaceRoadsFrom(loc.ID, roads)
	}
	return out
}

// waypointLegs runs Dijkstra from origin, expanding only non-storage
// locations, and returns the distance to each storage reached.
func waypointLegs(net *domain.Network, origin domain.LocationID) map[domain.LocationID]int {
	dist := map[domain.LocationID]int{origin: 0}
	done := make(map[domain.LocationID]struct{})
	legs := make(map[domain.LocationID]int)

	pq := &legQueue{{node: origin}}
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(legItem)
		if _, ok := done[cur.node]; ok {
			continue
		}
		done[cur.node] = struct{}{}

		if cur.node != origin {
			if _, ok := net.StorageAt(cur.node); ok {
				legs[cur.node] = cur.dist
				continue
			}
		}

		for _, road := range net.RoadsFrom(cur.node) {
			if road.To == origin {
				continue
			}
			d := cur.dist + road.Distance
			if old, ok := dist[road.To]; ok && old <= d {
				continue
			}
			dist[road.To] = d
			heap.Push(pq, legItem{node: road.To, dist: d})
		}
	}
	return legs
}

type legItem struct {
	node domain.LocationID
	dist int
}

type legQueue []legItem

func (q legQueue) Len() int           { return len(q) }
func (q legQueue) Less(i, j int) bool { return q[i].dist < q[j].dist }
func (q legQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *legQueue) Push(x any)        { *q = append(*q, x.(legItem)) }
func (q *legQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
