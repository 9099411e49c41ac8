package routing

import (
	"disposal-route-service/internal/domain"
	"testing"
)

func TestSearchCapacityChain(t *testing.T) {
	// A -> B (10) -> C (10); B holds 5, C holds 50; 20 units to dispose.
	net := buildNetwork(t, []domain.Road{
		{From: 1, To: 2, Distance: 10},
		{From: 2, To: 3, Distance: 10},
	}, map[domain.LocationID]int{2: 5, 3: 50})
	demands := []domain.Demand{{Material: bio, Amount: 20}}

	single := FirstWithCapacity(net, 1, demands, domain.SingleStop)
	if !single.Found {
		t.Fatalf("single-stop search found nothing")
	}
	if single.Route.Frontier != 3 || single.Route.Distance != 20 {
		t.Fatalf("single-stop route = node %d dist %d, want node 3 dist 20", single.Route.Frontier, single.Route.Distance)
	}
	if got, _ := single.Route.Counter(bio); got != 50 {
		t.Errorf("single-stop counter = %d, want 50", got)
	}

	partial := FirstWithCapacity(net, 1, demands, domain.Partial)
	if !partial.Found || partial.Route.Frontier != 3 || partial.Route.Distance != 20 {
		t.Fatalf("partial route = %+v, want node 3 dist 20", partial)
	}
	if got, _ := partial.Route.Counter(bio); got != 55 {
		t.Errorf("partial counter = %d, want 55", got)
	}
	if !equalIDs(stopIDs(partial.Route), []domain.StorageID{2, 3}) {
		t.Errorf("partial stops = %v, want [2 3]", stopIDs(partial.Route))
	}
}

func TestSearchPrefersShorterSatisfyingStorage(t *testing.T) {
	net := buildNetwork(t, []domain.Road{
		{From: 1, To: 4, Distance: 5},
		{From: 1, To: 5, Distance: 3},
	}, map[domain.LocationID]int{4: 100, 5: 100})

	res := FirstWithCapacity(net, 1, []domain.Demand{{Material: bio, Amount: 50}}, domain.SingleStop)
	if !res.Found || res.Route.Frontier != 5 || res.Route.Distance != 3 {
		t.Fatalf("route = %+v, want storage at 5 with distance 3", res.Route)
	}
}

func TestSearchNoReachableStorage(t *testing.T) {
	// Origin only reaches a plain location.
	net := buildNetwork(t, []domain.Road{
		{From: 1, To: 2, Distance: 5},
		{From: 2, To: 3, Distance: 5},
	}, map[domain.LocationID]int{3: 100})

	if res := FirstWithCapacity(net, 1, []domain.Demand{{Material: bio, Amount: 1}}, domain.Partial); res.Found {
		t.Fatalf("expected NotFound, got %+v", res.Route)
	}
	if res := ShortestTo(net, 1, 3); res.Found {
		t.Fatalf("expected NotFound, got %+v", res.Route)
	}
}

func TestSearchInsufficientCapacity(t *testing.T) {
	net := buildNetwork(t, []domain.Road{
		{From: 1, To: 2, Distance: 1},
		{From: 2, To: 3, Distance: 1},
		{From: 3, To: 2, Distance: 1},
	}, map[domain.LocationID]int{2: 4, 3: 4})

	res := FirstWithCapacity(net, 1, []domain.Demand{{Material: bio, Amount: 9}}, domain.Partial)
	if res.Found {
		t.Fatalf("expected NotFound, got %+v", res.Route)
	}
	if res.Expanded != 2 {
		t.Errorf("expanded = %d, want 2", res.Expanded)
	}
}

func TestSearchDestinationTakesShortestDetour(t *testing.T) {
	// Direct hop to 4 costs 100; going through storages 2 and 3 costs 30.
	net := buildNetwork(t, []domain.Road{
		{From: 1, To: 4, Distance: 100},
		{From: 1, To: 2, Distance: 10},
		{From: 2, To: 3, Distance: 10},
		{From: 3, To: 4, Distance: 10},
		{From: 3, To: 1, Distance: 1},
	}, map[domain.LocationID]int{2: 0, 3: 0, 4: 0})

	res := ShortestTo(net, 1, 4)
	if !res.Found || res.Route.Distance != 30 {
		t.Fatalf("route = %+v, want distance 30", res.Route)
	}
	if !equalIDs(stopIDs(res.Route), []domain.StorageID{2, 3, 4}) {
		t.Errorf("stops = %v, want [2 3 4]", stopIDs(res.Route))
	}
	if res.Route.Counters != nil {
		t.Errorf("destination route should carry no counters")
	}
}

func TestSearchNeverStopsAtOrigin(t *testing.T) {
	// The origin hosts a storage and is reachable again through a cycle.
	net := buildNetwork(t, []domain.Road{
		{From: 1, To: 2, Distance: 1},
		{From: 2, To: 1, Distance: 1},
	}, map[domain.LocationID]int{1: 100, 2: 0})

	if res := ShortestTo(net, 1, 1); res.Found {
		t.Fatalf("origin must not be a stop, got %+v", res.Route)
	}
	if res := FirstWithCapacity(net, 1, []domain.Demand{{Material: bio, Amount: 1}}, domain.Partial); res.Found {
		t.Fatalf("origin capacity must not count, got %+v", res.Route)
	}
}

func TestSearchNoDemandsReturnsNearestStorage(t *testing.T) {
	net := buildNetwork(t, []domain.Road{
		{From: 1, To: 2, Distance: 8},
		{From: 1, To: 3, Distance: 2},
	}, map[domain.LocationID]int{2: 1, 3: 0})

	res := FirstWithCapacity(net, 1, nil, domain.SingleStop)
	if !res.Found || res.Route.Frontier != 3 {
		t.Fatalf("route = %+v, want nearest storage at 3", res.Route)
	}
}
