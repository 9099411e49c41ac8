package routing

import "disposal-route-service/internal/domain"

// ConnectedStorages lists every storage reachable from origin, in the order
// a breadth-first walk discovers them. Distances play no part. Storages and
// plain locations are both walked through; only storages are reported.
func ConnectedStorages(g Graph, origin domain.LocationID) []*domain.Storage {
	visited := map[domain.LocationID]struct{}{origin: {}}
	queue := []domain.LocationID{origin}
	var found []*domain.Storage

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, road := range g.RoadsFrom(current) {
			next := road.To
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}

			if s, ok := g.StorageAt(next); ok {
				found = append(found, s)
			}
			queue = append(queue, next)
		}
	}
	return found
}
