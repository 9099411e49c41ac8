package domain

import (
	"cmp"
	"encoding/binary"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/cespare/xxhash/v2"
)

var (
	ErrUnknownLocation = errors.New("unknown location")
	ErrDuplicateEntity = errors.New("duplicate entity")
	ErrLocationTaken   = errors.New("location already hosts a facility of this kind")
)

// Network is an in-memory snapshot of the road graph together with the
// storages and companies placed on it. It is read by the routing engine and
// is not safe for concurrent mutation.
type Network struct {
	locations map[LocationID]Location
	roadsFrom map[LocationID][]Road
	materials map[MaterialID]Material

	storages  map[StorageID]*Storage
	storageAt map[LocationID]*Storage
	companies map[CompanyID]*Company
	companyAt map[LocationID]*Company
}

func NewNetwork() *Network {
	return &Network{
		locations: make(map[LocationID]Location),
		roadsFrom: make(map[LocationID][]Road),
		materials: make(map[MaterialID]Material),
		storages:  make(map[StorageID]*Storage),
		storageAt: make(map[LocationID]*Storage),
		companies: make(map[CompanyID]*Company),
		companyAt: make(map[LocationID]*Company),
	}
}

func (n *Network) AddLocation(l Location) error {
	if _, ok := n.locations[l.ID]; ok {
		return fmt.Errorf("add location %d: %w", l.ID, ErrDuplicateEntity)
	}
	n.locations[l.ID] = l
	return nil
}

// AddRoad adds a directed road. Both endpoints must already exist.
func (n *Network) AddRoad(r Road) error {
	if _, ok := n.locations[r.From]; !ok {
		return fmt.Errorf("add road %d->%d: from: %w", r.From, r.To, ErrUnknownLocation)
	}
	if _, ok := n.locations[r.To]; !ok {
		return fmt.Errorf("add road %d->%d: to: %w", r.From, r.To, ErrUnknownLocation)
	}
	if r.Distance < 0 {
		return fmt.Errorf("add road %d->%d: negative distance %d", r.From, r.To, r.Distance)
	}
	n.roadsFrom[r.From] = append(n.roadsFrom[r.From], r)
	return nil
}

func (n *Network) AddMaterial(m Material) error {
	if _, ok := n.materials[m.ID]; ok {
		return fmt.Errorf("add material %d: %w", m.ID, ErrDuplicateEntity)
	}
	n.materials[m.ID] = m
	return nil
}

// AttachStorage places a storage on its location.
func (n *Network) AttachStorage(s *Storage) error {
	if _, ok := n.storages[s.ID]; ok {
		return fmt.Errorf("attach storage %d: %w", s.ID, ErrDuplicateEntity)
	}
	if _, ok := n.locations[s.LocationID]; !ok {
		return fmt.Errorf("attach storage %d: location %d: %w", s.ID, s.LocationID, ErrUnknownLocation)
	}
	if _, ok := n.storageAt[s.LocationID]; ok {
		return fmt.Errorf("attach storage %d: location %d: %w", s.ID, s.LocationID, ErrLocationTaken)
	}
	if s.Materials == nil {
		s.Materials = make(map[MaterialID]Capacity)
	}
	n.storages[s.ID] = s
	n.storageAt[s.LocationID] = s
	return nil
}

// AttachCompany places a company on its location.
func (n *Network) AttachCompany(c *Company) error {
	if _, ok := n.companies[c.ID]; ok {
		return fmt.Errorf("attach company %d: %w", c.ID, ErrDuplicateEntity)
	}
	if _, ok := n.locations[c.LocationID]; !ok {
		return fmt.Errorf("attach company %d: location %d: %w", c.ID, c.LocationID, ErrUnknownLocation)
	}
	if _, ok := n.companyAt[c.LocationID]; ok {
		return fmt.Errorf("attach company %d: location %d: %w", c.ID, c.LocationID, ErrLocationTaken)
	}
	if c.Materials == nil {
		c.Materials = make(map[MaterialID]int)
	}
	n.companies[c.ID] = c
	n.companyAt[c.LocationID] = c
	return nil
}

func (n *Network) Location(id LocationID) (Location, bool) {
	l, ok := n.locations[id]
	return l, ok
}

// Locations returns every location ordered by id.
func (n *Network) Locations() []Location {
	out := make([]Location, 0, len(n.locations))
	for _, id := range slices.Sorted(maps.Keys(n.locations)) {
		out = append(out, n.locations[id])
	}
	return out
}

// RoadsFrom returns the outgoing roads of a location in insertion order.
func (n *Network) RoadsFrom(id LocationID) []Road { return n.roadsFrom[id] }

// Roads returns every road ordered by origin, then insertion order.
func (n *Network) Roads() []Road {
	var out []Road
	for _, id := range slices.Sorted(maps.Keys(n.roadsFrom)) {
		out = append(out, n.roadsFrom[id]...)
	}
	return out
}

// ReplaceRoadsFrom swaps the outgoing roads of a location. Endpoints are not
// re-validated.
func (n *Network) ReplaceRoadsFrom(id LocationID, roads []Road) {
	if len(roads) == 0 {
		delete(n.roadsFrom, id)
		return
	}
	n.roadsFrom[id] = roads
}

func (n *Network) StorageAt(id LocationID) (*Storage, bool) {
	s, ok := n.storageAt[id]
	return s, ok
}

func (n *Network) CompanyAt(id LocationID) (*Company, bool) {
	c, ok := n.companyAt[id]
	return c, ok
}

func (n *Network) Storage(id StorageID) (*Storage, bool) {
	s, ok := n.storages[id]
	return s, ok
}

func (n *Network) Company(id CompanyID) (*Company, bool) {
	c, ok := n.companies[id]
	return c, ok
}

func (n *Network) Material(id MaterialID) (Material, bool) {
	m, ok := n.materials[id]
	return m, ok
}

// Storages returns every placed storage ordered by id.
func (n *Network) Storages() []*Storage {
	out := make([]*Storage, 0, len(n.storages))
	for _, id := range slices.Sorted(maps.Keys(n.storages)) {
		out = append(out, n.storages[id])
	}
	return out
}

// Companies returns every placed company ordered by id.
func (n *Network) Companies() []*Company {
	out := make([]*Company, 0, len(n.companies))
	for _, id := range slices.Sorted(maps.Keys(n.companies)) {
		out = append(out, n.companies[id])
	}
	return out
}

// Clone returns a deep copy. Routes computed on the copy reference the
// copy's storages.
func (n *Network) Clone() *Network {
	out := NewNetwork()
	maps.Copy(out.locations, n.locations)
	maps.Copy(out.materials, n.materials)
	for id, roads := range n.roadsFrom {
		out.roadsFrom[id] = slices.Clone(roads)
	}
	for id, s := range n.storages {
		c := s.clone()
		out.storages[id] = c
		out.storageAt[c.LocationID] = c
	}
	for id, co := range n.companies {
		c := co.clone()
		out.companies[id] = c
		out.companyAt[c.LocationID] = c
	}
	return out
}

// Fingerprint hashes the parts of the network that decide reachability:
// roads and storage placement. Capacities and amounts are not included.
func (n *Network) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [8]byte
	write := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	}

	for _, from := range slices.Sorted(maps.Keys(n.roadsFrom)) {
		roads := slices.Clone(n.roadsFrom[from])
		slices.SortFunc(roads, func(a, b Road) int {
			if c := cmp.Compare(a.To, b.To); c != 0 {
				return c
			}
			return cmp.Compare(a.Distance, b.Distance)
		})
		for _, r := range roads {
			write(int64(r.From))
			write(int64(r.To))
			write(int64(r.Distance))
		}
	}
	_, _ = h.Write([]byte{0xff})
	for _, s := range n.Storages() {
		write(int64(s.ID))
		write(int64(s.LocationID))
	}
	return h.Sum64()
}

func sortedMaterials[V any](m map[MaterialID]V) []MaterialID {
	return slices.Sorted(maps.Keys(m))
}
