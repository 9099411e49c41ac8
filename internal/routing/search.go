// Package routing implements the disposal route engine: a best-first search
// over storage-hosting locations, a reachability scan, and the ledger
// arithmetic of unloading along a chosen route.
//
// Everything here is a pure computation over a snapshot supplied by the
// caller. Nothing is cached between calls and no I/O is performed.
package routing

import "disposal-route-service/internal/domain"

// Graph is the read view the engine needs from the network snapshot.
type Graph interface {
	RoadsFrom(id domain.LocationID) []domain.Road
	StorageAt(id domain.LocationID) (*domain.Storage, bool)
}

// Mode selects the termination rule of a search.
type Mode int

const (
	// ToDestination stops when the target location is reached.
	ToDestination Mode = iota
	// ToCapacity stops when the collected free space covers every demand.
	ToCapacity
)

func (m Mode) String() string {
	if m == ToCapacity {
		return "capacity"
	}
	return "destination"
}

type Query struct {
	Mode Mode

	// Target is used by ToDestination.
	Target domain.LocationID

	// Demands and Accumulation are used by ToCapacity.
	Demands      []domain.Demand
	Accumulation domain.Accumulation
}

// Result of a search. Found is false when no route satisfies the query;
// that is an ordinary outcome, not an error.
type Result struct {
	Route    domain.Route
	Found    bool
	Expanded int
}

// Search finds the shortest route from origin that satisfies q, moving only
// through locations that host a storage. The origin itself is never a stop.
func Search(g Graph, origin domain.LocationID, q Query) Result {
	var demands []domain.Demand
	if q.Mode == ToCapacity {
		demands = q.Demands
	}

	visited := map[domain.LocationID]struct{}{origin: {}}
	f := newFrontier()
	f.mergeAll(expand(g, domain.NewRoute(origin, demands), visited, q.Accumulation))
	if f.Len() == 0 {
		return Result{}
	}

	expanded := 0
	for f.Len() > 0 {
		route := f.pop()
		if done(route, q) {
			return Result{Route: route, Found: true, Expanded: expanded}
		}

		visited[route.Frontier] = struct{}{}
		expanded++
		f.mergeAll(expand(g, route, visited, q.Accumulation))
	}

	return Result{Expanded: expanded}
}

// ShortestTo finds the shortest storage-only route from origin to target.
func ShortestTo(g Graph, origin, target domain.LocationID) Result {
	return Search(g, origin, Query{Mode: ToDestination, Target: target})
}

// FirstWithCapacity finds the shortest route whose collected free space
// covers every demand.
func FirstWithCapacity(g Graph, origin domain.LocationID, demands []domain.Demand, acc domain.Accumulation) Result {
	return Search(g, origin, Query{Mode: ToCapacity, Demands: demands, Accumulation: acc})
}

func done(r domain.Route, q Query) bool {
	if q.Mode == ToDestination {
		return r.Frontier == q.Target
	}
	return r.Satisfies(q.Demands)
}

// expand returns one candidate per road from the route's frontier to an
// unvisited storage.
func expand(g Graph, r domain.Route, visited map[domain.LocationID]struct{}, acc domain.Accumulation) []domain.Route {
	roads := g.RoadsFrom(r.Frontier)
	out := make([]domain.Route, 0, len(roads))
	for _, road := range roads {
		if _, seen := visited[road.To]; seen {
			continue
		}
		s, ok := g.StorageAt(road.To)
		if !ok {
			continue
		}
		out = append(out, r.Extend(road, s, acc))
	}
	return out
}
