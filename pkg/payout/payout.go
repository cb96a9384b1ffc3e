package payout

import (
	"github.com/holiman/uint256"

	"github.com/Axel-C19/OpenMarket/pkg/domain"
)

// Split divides saleAmount across the royalty table. Each payee gets
// floor(amount * basis_points / 10000); whatever the floors leave
// over — truncation dust and any unallocated share — lands on the
// last payee in table order, so the legs always sum to saleAmount and
// the rounding is reproducible. An empty table pays everything to
// beneficiary (the transferring owner).
func Split(saleAmount *uint256.Int, table domain.RoyaltyTable, beneficiary domain.Address) ([]domain.PayoutLeg, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if saleAmount == nil {
		return nil, nil
	}
	if len(table) == 0 {
		return []domain.PayoutLeg{{Payee: beneficiary, Amount: saleAmount.Clone()}}, nil
	}

	denominator := uint256.NewInt(domain.BasisPointsDenominator)
	legs := make([]domain.PayoutLeg, 0, len(table))
	allocated := uint256.NewInt(0)
	for _, share := range table {
		cut := new(uint256.Int).Mul(saleAmount, uint256.NewInt(uint64(share.BasisPoints)))
		cut.Div(cut, denominator)
		allocated.Add(allocated, cut)
		legs = append(legs, domain.PayoutLeg{Payee: share.Payee, Amount: cut})
	}

	remainder := new(uint256.Int).Sub(saleAmount, allocated)
	last := legs[len(legs)-1]
	last.Amount = new(uint256.Int).Add(last.Amount, remainder)
	legs[len(legs)-1] = last
	return legs, nil
}
