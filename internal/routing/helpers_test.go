package routing

import (
	"disposal-route-service/internal/domain"
	"testing"
)

const bio domain.MaterialID = 1

// buildNetwork creates every location mentioned by roads or storages and
// places a storage with a single Bio record on each key of free.
func buildNetwork(t *testing.T, roads []domain.Road, free map[domain.LocationID]int) *domain.Network {
	t.Helper()

	net := domain.NewNetwork()
	ensure := func(id domain.LocationID) {
		if _, ok := net.Location(id); ok {
			return
		}
		if err := net.AddLocation(domain.Location{ID: id}); err != nil {
			t.Fatalf("add location: %v", err)
		}
	}
	for _, r := range roads {
		ensure(r.From)
		ensure(r.To)
		if err := net.AddRoad(r); err != nil {
			t.Fatalf("add road: %v", err)
		}
	}
	for loc, available := range free {
		ensure(loc)
		s := &domain.Storage{
			ID:         domain.StorageID(loc),
			LocationID: loc,
			Materials:  map[domain.MaterialID]domain.Capacity{bio: {Used: 0, Max: available}},
		}
		if err := net.AttachStorage(s); err != nil {
			t.Fatalf("attach storage: %v", err)
		}
	}
	return net
}

func stopIDs(r domain.Route) []domain.StorageID { return r.StorageIDs() }

func equalIDs(a, b []domain.StorageID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// peek returns the queued route for a location, if any.
func (f *frontier) peek(id domain.LocationID) (domain.Route, bool) {
	item, ok := f.byNode[id]
	if !ok {
		return domain.Route{}, false
	}
	return item.route, true
}
