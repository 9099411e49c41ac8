package domain

// Accumulation decides how free space adds up along a route.
type Accumulation int

const (
	// SingleStop keeps only the free space of the most recent stop: one
	// storage must take everything.
	SingleStop Accumulation = iota
	// Partial sums free space across stops, allowing a multi-drop unload.
	Partial
)

func (a Accumulation) String() string {
	if a == Partial {
		return "partial"
	}
	return "single_stop"
}

// Demand is one material a capacity search must find room for.
type Demand struct {
	Material MaterialID
	Amount   int
}

// SpaceCounter tracks the free space collected for one material along a route.
type SpaceCounter struct {
	Material  MaterialID
	Available int
}

// Represents a partial path produced by the route search.
// A Route is a value: Extend returns a new Route and never touches the
// receiver's slices. Routes order by Distance only; two routes with the same
// Frontier compete for the same slot in the search frontier.
type Route struct {
	Frontier LocationID
	Stops    []*Storage
	Distance int
	Counters []SpaceCounter
}

// NewRoute returns a zero-distance route standing at origin, with one empty
// counter per demand. Pass no demands for destination searches.
func NewRoute(origin LocationID, demands []Demand) Route {
	r := Route{Frontier: origin}
	if len(demands) > 0 {
		r.Counters = make([]SpaceCounter, len(demands))
		for i, d := range demands {
			r.Counters[i] = SpaceCounter{Material: d.Material}
		}
	}
	return r
}

// Extend returns the route continued along road to the storage at its end.
func (r Route) Extend(road Road, s *Storage, acc Accumulation) Route {
	next := Route{
		Frontier: road.To,
		Distance: r.Distance + road.Distance,
		Stops:    make([]*Storage, len(r.Stops), len(r.Stops)+1),
	}
	copy(next.Stops, r.Stops)
	next.Stops = append(next.Stops, s)

	if r.Counters != nil {
		next.Counters = make([]SpaceCounter, len(r.Counters))
		for i, c := range r.Counters {
			free := s.Available(c.Material)
			if acc == Partial {
				free += c.Available
			}
			next.Counters[i] = SpaceCounter{Material: c.Material, Available: free}
		}
	}
	return next
}

// Counter returns the collected free space for a material.
func (r Route) Counter(m MaterialID) (int, bool) {
	for _, c := range r.Counters {
		if c.Material == m {
			return c.Available, true
		}
	}
	return 0, false
}

// Satisfies reports whether every demand has a counter at least as large as
// its amount. A demand without a counter is unsatisfied.
func (r Route) Satisfies(demands []Demand) bool {
	for _, d := range demands {
		got, ok := r.Counter(d.Material)
		if !ok || got < d.Amount {
			return false
		}
	}
	return true
}

// LastStop returns the terminal storage of the route.
func (r Route) LastStop() (*Storage, bool) {
	if len(r.Stops) == 0 {
		return nil, false
	}
	return r.Stops[len(r.Stops)-1], true
}

func (r Route) StorageIDs() []StorageID {
	ids := make([]StorageID, len(r.Stops))
	for i, s := range r.Stops {
		ids[i] = s.ID
	}
	return ids
}
