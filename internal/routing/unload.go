package routing

import (
	"disposal-route-service/internal/domain"
	"errors"
	"fmt"
	"maps"
	"slices"
)

var ErrEmptyRoute = errors.New("route has no stops")

// FullUnload moves the company's outstanding amount of each material into the
// terminal stop of the route. A nil materials list means every material the
// company holds. Materials the terminal storage keeps no record for are left
// untouched.
func FullUnload(r domain.Route, c *domain.Company, materials []domain.MaterialID) (domain.LedgerDelta, error) {
	last, ok := r.LastStop()
	if !ok {
		return domain.LedgerDelta{}, fmt.Errorf("full unload: company %d: %w", c.ID, ErrEmptyRoute)
	}
	if materials == nil {
		materials = sortedKeys(c.Materials)
	}

	var delta domain.LedgerDelta
	for _, m := range materials {
		amount, held := c.Materials[m]
		if !held {
			continue
		}
		capacity, ok := last.Materials[m]
		if !ok {
			continue
		}

		delta.Storages = append(delta.Storages, domain.StorageUpdate{
			StorageID: last.ID,
			Material:  m,
			Used:      capacity.Used + amount,
		})
		delta.Companies = append(delta.Companies, domain.CompanyUpdate{
			CompanyID: c.ID,
			Material:  m,
			Amount:    0,
		})
	}
	return delta, nil
}

// PartialUnload spreads one material over the stops of the route in order.
// Each stop takes what fits, up to what is left. The amount left is reduced
// by each stop's nominal free space rather than by what was deposited, and
// the company's amount is zeroed regardless; Remainder reports the nominal
// amount left after the last stop.
func PartialUnload(r domain.Route, c *domain.Company, m domain.MaterialID) (domain.LedgerDelta, error) {
	if len(r.Stops) == 0 {
		return domain.LedgerDelta{}, fmt.Errorf("partial unload: company %d: %w", c.ID, ErrEmptyRoute)
	}

	remaining := c.Materials[m]
	var delta domain.LedgerDelta
	for _, s := range r.Stops {
		capacity, ok := s.Materials[m]
		if !ok {
			continue
		}
		available := capacity.Available()

		if deposit := min(available, remaining); deposit > 0 {
			delta.Storages = append(delta.Storages, domain.StorageUpdate{
				StorageID: s.ID,
				Material:  m,
				Used:      min(capacity.Used+deposit, capacity.Max),
			})
		}
		remaining -= available
	}

	delta.Companies = append(delta.Companies, domain.CompanyUpdate{
		CompanyID: c.ID,
		Material:  m,
		Amount:    0,
	})
	delta.Remainder = remaining
	return delta, nil
}

func sortedKeys[V any](m map[domain.MaterialID]V) []domain.MaterialID {
	return slices.Sorted(maps.Keys(m))
}
