package domain

import "fmt"

const BasisPointsDenominator = 10000

// RoyaltyShare grants one payee a fixed proportional cut of every sale.
type RoyaltyShare struct {
	Payee       Address `json:"payee"`
	BasisPoints uint16  `json:"basis_points"`
}

// RoyaltyTable is ordered; the last entry absorbs rounding remainders.
// It is validated once at registration and never mutated afterwards.
type RoyaltyTable []RoyaltyShare

func (t RoyaltyTable) Validate() error {
	total := 0
	for i, share := range t {
		if share.Payee.IsZero() {
			return fmt.Errorf("%w: zero payee at index %d", ErrInvalidTable, i)
		}
		total += int(share.BasisPoints)
	}
	if total > BasisPointsDenominator {
		return fmt.Errorf("%w: basis points sum %d exceeds %d", ErrInvalidTable, total, BasisPointsDenominator)
	}
	return nil
}
