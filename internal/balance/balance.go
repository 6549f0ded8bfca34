// Package balance derives account balances from the deltas that reference
// the account. Balances are never stored; they are recomputed from the
// ledger on every read.
package balance

import (
	"math/big"
	"sort"

	"github.com/rongwang/stonks/internal/models"
	"github.com/shopspring/decimal"
)

// Contribution is one delta as seen by the aggregation: an unsigned
// magnitude and the multiplier of its delta type. DecimalPlaces is nil when
// the referenced asset row is missing.
type Contribution struct {
	AssetID       models.ID
	Amount        uint64
	Multiplier    int8
	DecimalPlaces *int
}

// Signed returns Amount * Multiplier.
func (c Contribution) Signed() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(c.Amount), 0).Mul(decimal.NewFromInt(int64(c.Multiplier)))
}

// Aggregate sums contributions per asset. The result is ordered by asset id.
// Assets whose deltas cancel out are still reported, with a zero amount.
func Aggregate(contributions []Contribution) []models.AssetBalance {
	sums := make(map[models.ID]decimal.Decimal)
	places := make(map[models.ID]int)
	for _, c := range contributions {
		sums[c.AssetID] = sums[c.AssetID].Add(c.Signed())
		if c.DecimalPlaces != nil {
			places[c.AssetID] = *c.DecimalPlaces
		}
	}

	balances := make([]models.AssetBalance, 0, len(sums))
	for assetID, amount := range sums {
		b := models.AssetBalance{AssetID: assetID, Amount: amount}
		if dp, ok := places[assetID]; ok {
			display := Scale(amount, dp)
			b.Display = &display
		}
		balances = append(balances, b)
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].AssetID < balances[j].AssetID
	})
	return balances
}

// Scale converts a base-unit amount into asset units.
func Scale(amount decimal.Decimal, decimalPlaces int) decimal.Decimal {
	return amount.Shift(-int32(decimalPlaces))
}

// Of returns the balance of one asset, zero if the asset has no deltas.
func Of(balances []models.AssetBalance, assetID models.ID) decimal.Decimal {
	for _, b := range balances {
		if b.AssetID == assetID {
			return b.Amount
		}
	}
	return decimal.Zero
}
