package repositories

import (
	"disposal-route-service/internal/domain"
	"errors"
	"strings"
	"testing"
)

const smallSeed = `
materials:
  - {id: 1, name: Bio}
locations:
  - {name: Yard}
  - {name: Depot}
  - {id: 10, name: Dump}
roads:
  - {from: Yard, to: Depot, distance: 5, two_way: true}
  - {from: Depot, to: Dump, distance: 7}
storages:
  - id: 1
    name: North
    location: Depot
    materials:
      - {material: 1, used: 2, max: 10}
companies:
  - id: 1
    name: Acme
    location: Yard
    materials:
      - {material: 1, amount: 4}
`

func TestDecodeNetworkSeed(t *testing.T) {
	seed, err := DecodeNetworkSeed(strings.NewReader(smallSeed))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := seed.Locations[1].ID; got != 2 {
		t.Fatalf("implicit location id = %d, want 2", got)
	}
	if got := seed.Locations[2].ID; got != 10 {
		t.Fatalf("explicit location id = %d, want 10", got)
	}

	net, err := seed.Network()
	if err != nil {
		t.Fatalf("network: %v", err)
	}
	if got := len(net.RoadsFrom(2)); got != 2 {
		t.Fatalf("roads from Depot = %d, want 2 (two-way back road plus Dump)", got)
	}
	s, ok := net.StorageAt(2)
	if !ok || s.Available(1) != 8 {
		t.Fatalf("storage at Depot = %+v, ok=%v", s, ok)
	}
	c, ok := net.Company(1)
	if !ok || c.Materials[1] != 4 || c.LocationID != 1 {
		t.Fatalf("company = %+v, ok=%v", c, ok)
	}
}

func TestDecodeNetworkSeedRejectsUnknownFields(t *testing.T) {
	_, err := DecodeNetworkSeed(strings.NewReader("locations:\n  - {name: A, colour: red}\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestSeedNetworkValidation(t *testing.T) {
	const withBio = "materials: [{id: 1, name: Bio}]\nlocations: [{name: A}]\n"
	cases := map[string]string{
		"unknown road endpoint":      "locations: [{name: A}]\nroads: [{from: A, to: B, distance: 1}]\n",
		"duplicate location":         "locations: [{name: A}, {name: A}]\n",
		"negative distance":          "locations: [{name: A}, {name: B}]\nroads: [{from: A, to: B, distance: -1}]\n",
		"storage off the map":        "locations: [{name: A}]\nstorages: [{id: 1, name: S, location: Z}]\n",
		"material without name":      "materials: [{id: 1}]\n",
		"storage id not positive":    withBio + "storages: [{id: 0, name: S, location: A}]\n",
		"company id not positive":    withBio + "companies: [{id: -3, name: C, location: A}]\n",
		"storage unknown material":   withBio + "storages: [{id: 1, name: S, location: A, materials: [{material: 9, max: 5}]}]\n",
		"company unknown material":   withBio + "companies: [{id: 1, name: C, location: A, materials: [{material: 7, amount: 2}]}]\n",
		"negative used":              withBio + "storages: [{id: 1, name: S, location: A, materials: [{material: 1, used: -5, max: 5}]}]\n",
		"negative max":               withBio + "storages: [{id: 1, name: S, location: A, materials: [{material: 1, max: -1}]}]\n",
		"negative amount":            withBio + "companies: [{id: 1, name: C, location: A, materials: [{material: 1, amount: -2}]}]\n",
		"duplicate storage material": withBio + "storages: [{id: 1, name: S, location: A, materials: [{material: 1, max: 5}, {material: 1, max: 9}]}]\n",
		"duplicate company material": withBio + "companies: [{id: 1, name: C, location: A, materials: [{material: 1, amount: 1}, {material: 1, amount: 2}]}]\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			seed, err := DecodeNetworkSeed(strings.NewReader(doc))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if _, err := seed.Network(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestSeedNetworkRejectsSharedLocation(t *testing.T) {
	doc := "locations: [{name: A}]\nstorages: [{id: 1, name: S1, location: A}, {id: 2, name: S2, location: A}]\n"
	seed, err := DecodeNetworkSeed(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := seed.Network(); !errors.Is(err, domain.ErrLocationTaken) {
		t.Fatalf("err = %v, want ErrLocationTaken", err)
	}
}
