package domain

// Capacity is the ledger record of one material at one storage.
type Capacity struct {
	Used int
	Max  int
}

// Available returns the remaining space. used <= max is not enforced here.
func (c Capacity) Available() int { return c.Max - c.Used }

// Represents a disposal facility attached to a location.
type Storage struct {
	ID         StorageID
	Name       string
	LocationID LocationID
	Materials  map[MaterialID]Capacity
}

// Available returns the free space for a material, or 0 when the storage
// keeps no record for it.
func (s *Storage) Available(m MaterialID) int {
	c, ok := s.Materials[m]
	if !ok {
		return 0
	}
	return c.Available()
}

func (s *Storage) clone() *Storage {
	out := *s
	out.Materials = make(map[MaterialID]Capacity, len(s.Materials))
	for m, c := range s.Materials {
		out.Materials[m] = c
	}
	return &out
}

// Represents a waste-origin facility attached to a location.
// Materials maps each material to its outstanding amount.
type Company struct {
	ID         CompanyID
	Name       string
	LocationID LocationID
	Materials  map[MaterialID]int
}

// Demands returns one Demand per material with a positive outstanding amount,
// ordered by material id.
func (c *Company) Demands() []Demand {
	out := make([]Demand, 0, len(c.Materials))
	for _, m := range sortedMaterials(c.Materials) {
		if amount := c.Materials[m]; amount > 0 {
			out = append(out, Demand{Material: m, Amount: amount})
		}
	}
	return out
}

func (c *Company) clone() *Company {
	out := *c
	out.Materials = make(map[MaterialID]int, len(c.Materials))
	for m, a := range c.Materials {
		out.Materials[m] = a
	}
	return &out
}
