package domain

import (
	"errors"
	"fmt"
)

var ErrUnknownLedgerRecord = errors.New("unknown ledger record")

// StorageUpdate sets the new used amount of one material at one storage.
type StorageUpdate struct {
	StorageID StorageID
	Material  MaterialID
	Used      int
}

// CompanyUpdate sets the new outstanding amount of one material at one company.
type CompanyUpdate struct {
	CompanyID CompanyID
	Material  MaterialID
	Amount    int
}

// LedgerDelta is the set of capacity writes produced by one unload. The
// writes carry absolute values and must be committed as a unit.
//
// Remainder is the amount left over after a partial unload, computed from
// the nominal free space of each stop. It may be negative.
type LedgerDelta struct {
	Storages  []StorageUpdate
	Companies []CompanyUpdate
	Remainder int
}

func (d LedgerDelta) Empty() bool {
	return len(d.Storages) == 0 && len(d.Companies) == 0
}

// Apply writes the delta into the network. Every referenced record must exist;
// on error the network is left unchanged.
func (n *Network) Apply(d LedgerDelta) error {
	for _, u := range d.Storages {
		s, ok := n.storages[u.StorageID]
		if !ok {
			return fmt.Errorf("apply delta: storage %d: %w", u.StorageID, ErrUnknownLedgerRecord)
		}
		if _, ok := s.Materials[u.Material]; !ok {
			return fmt.Errorf("apply delta: storage %d material %d: %w", u.StorageID, u.Material, ErrUnknownLedgerRecord)
		}
	}
	for _, u := range d.Companies {
		c, ok := n.companies[u.CompanyID]
		if !ok {
			return fmt.Errorf("apply delta: company %d: %w", u.CompanyID, ErrUnknownLedgerRecord)
		}
		if _, ok := c.Materials[u.Material]; !ok {
			return fmt.Errorf("apply delta: company %d material %d: %w", u.CompanyID, u.Material, ErrUnknownLedgerRecord)
		}
	}

	for _, u := range d.Storages {
		s := n.storages[u.StorageID]
		c := s.Materials[u.Material]
		c.Used = u.Used
		s.Materials[u.Material] = c
	}
	for _, u := range d.Companies {
		n.companies[u.CompanyID].Materials[u.Material] = u.Amount
	}
	return nil
}
