package repositories

import (
	"disposal-route-service/internal/domain"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type MaterialSeed struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

type LocationSeed struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

// RoadSeed references locations by name. TwoWay adds the reverse road too.
type RoadSeed struct {
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Distance int    `yaml:"distance"`
	TwoWay   bool   `yaml:"two_way"`
}

type CapacitySeed struct {
	Material int64 `yaml:"material"`
	Used     int   `yaml:"used"`
	Max      int   `yaml:"max"`
}

type StorageSeed struct {
	ID        int64          `yaml:"id"`
	Name      string         `yaml:"name"`
	Location  string         `yaml:"location"`
	Materials []CapacitySeed `yaml:"materials"`
}

type AmountSeed struct {
	Material int64 `yaml:"material"`
	Amount   int   `yaml:"amount"`
}

type CompanySeed struct {
	ID        int64        `yaml:"id"`
	Name      string       `yaml:"name"`
	Location  string       `yaml:"location"`
	Materials []AmountSeed `yaml:"materials"`
}

// NetworkSeed is the on-disk description of a road network with its
// storages and companies.
type NetworkSeed struct {
	Materials []MaterialSeed `yaml:"materials"`
	Locations []LocationSeed `yaml:"locations"`
	Roads     []RoadSeed     `yaml:"roads"`
	Storages  []StorageSeed  `yaml:"storages"`
	Companies []CompanySeed  `yaml:"companies"`
}

// Read a network seed from a YAML file.
func ReadNetworkSeed(path string) (*NetworkSeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read network seed: open %q: %w", path, err)
	}
	defer f.Close()

	seed, err := DecodeNetworkSeed(f)
	if err != nil {
		return nil, fmt.Errorf("read network seed %q: %w", path, err)
	}
	return seed, nil
}

func DecodeNetworkSeed(r io.Reader) (*NetworkSeed, error) {
	var seed NetworkSeed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("decode network seed: %w", err)
	}

	// Locations without an explicit id are numbered by position.
	for i := range seed.Locations {
		if seed.Locations[i].ID == 0 {
			seed.Locations[i].ID = int64(i + 1)
		}
	}
	return &seed, nil
}

// Network validates the seed and builds the in-memory network it describes.
func (s *NetworkSeed) Network() (*domain.Network, error) {
	net := domain.NewNetwork()

	for i, m := range s.Materials {
		if m.ID <= 0 || strings.TrimSpace(m.Name) == "" {
			return nil, fmt.Errorf("build network: material at index %d: id and name are required", i)
		}
		if err := net.AddMaterial(domain.Material{ID: domain.MaterialID(m.ID), Name: m.Name}); err != nil {
			return nil, fmt.Errorf("build network: %w", err)
		}
	}

	byName := make(map[string]domain.LocationID, len(s.Locations))
	for i, l := range s.Locations {
		name := strings.TrimSpace(l.Name)
		if name == "" {
			return nil, fmt.Errorf("build network: location at index %d: name cannot be empty", i)
		}
		if _, dup := byName[name]; dup {
			return nil, fmt.Errorf("build network: location name %q is not unique", name)
		}
		id := domain.LocationID(l.ID)
		if err := net.AddLocation(domain.Location{ID: id, Name: name}); err != nil {
			return nil, fmt.Errorf("build network: %w", err)
		}
		byName[name] = id
	}

	resolve := func(kind, name string) (domain.LocationID, error) {
		id, ok := byName[strings.TrimSpace(name)]
		if !ok {
			return 0, fmt.Errorf("build network: %s references unknown location %q", kind, name)
		}
		return id, nil
	}

	for i, r := range s.Roads {
		from, err := resolve("road", r.From)
		if err != nil {
			return nil, err
		}
		to, err := resolve("road", r.To)
		if err != nil {
			return nil, err
		}
		if err := net.AddRoad(domain.Road{From: from, To: to, Distance: r.Distance}); err != nil {
			return nil, fmt.Errorf("build network: road at index %d: %w", i, err)
		}
		if r.TwoWay {
			if err := net.AddRoad(domain.Road{From: to, To: from, Distance: r.Distance}); err != nil {
				return nil, fmt.Errorf("build network: road at index %d: %w", i, err)
			}
		}
	}

	for _, st := range s.Storages {
		loc, err := resolve("storage "+st.Name, st.Location)
		if err != nil {
			return nil, err
		}
		if st.ID <= 0 {
			return nil, fmt.Errorf("build network: storage %q: id must be positive, got %d", st.Name, st.ID)
		}
		storage := &domain.Storage{
			ID:         domain.StorageID(st.ID),
			Name:       st.Name,
			LocationID: loc,
			Materials:  make(map[domain.MaterialID]domain.Capacity, len(st.Materials)),
		}
		for _, c := range st.Materials {
			m, err := knownMaterial(net, storage.Materials, "storage", st.ID, c.Material)
			if err != nil {
				return nil, err
			}
			if c.Used < 0 || c.Max < 0 {
				return nil, fmt.Errorf("build network: storage %d material %d: used and max cannot be negative", st.ID, c.Material)
			}
			storage.Materials[m] = domain.Capacity{Used: c.Used, Max: c.Max}
		}
		if err := net.AttachStorage(storage); err != nil {
			return nil, fmt.Errorf("build network: %w", err)
		}
	}

	for _, co := range s.Companies {
		loc, err := resolve("company "+co.Name, co.Location)
		if err != nil {
			return nil, err
		}
		if co.ID <= 0 {
			return nil, fmt.Errorf("build network: company %q: id must be positive, got %d", co.Name, co.ID)
		}
		company := &domain.Company{
			ID:         domain.CompanyID(co.ID),
			Name:       co.Name,
			LocationID: loc,
			Materials:  make(map[domain.MaterialID]int, len(co.Materials)),
		}
		for _, a := range co.Materials {
			m, err := knownMaterial(net, company.Materials, "company", co.ID, a.Material)
			if err != nil {
				return nil, err
			}
			if a.Amount < 0 {
				return nil, fmt.Errorf("build network: company %d material %d: amount cannot be negative", co.ID, a.Material)
			}
			company.Materials[m] = a.Amount
		}
		if err := net.AttachCompany(company); err != nil {
			return nil, fmt.Errorf("build network: %w", err)
		}
	}

	return net, nil
}

// knownMaterial checks that a facility's material row names a declared
// material and is not listed twice for the same facility.
func knownMaterial[V any](net *domain.Network, seen map[domain.MaterialID]V, kind string, owner, material int64) (domain.MaterialID, error) {
	id := domain.MaterialID(material)
	if _, ok := net.Material(id); !ok {
		return 0, fmt.Errorf("build network: %s %d references unknown material %d", kind, owner, material)
	}
	if _, dup := seen[id]; dup {
		return 0, fmt.Errorf("build network: %s %d lists material %d twice", kind, owner, material)
	}
	return id, nil
}
