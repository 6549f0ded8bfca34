package balance

import (
	"math"
	"testing"

	"github.com/rongwang/stonks/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func places(n int) *int { return &n }

func TestAggregate(t *testing.T) {
	balances := Aggregate([]Contribution{
		{AssetID: 9, Amount: 100, Multiplier: 1, DecimalPlaces: places(2)},
		{AssetID: 9, Amount: 50, Multiplier: -1, DecimalPlaces: places(2)},
		{AssetID: 3, Amount: 70, Multiplier: 0},
	})
	require.Len(t, balances, 2)

	assert.Equal(t, models.ID(3), balances[0].AssetID)
	assert.True(t, balances[0].Amount.IsZero())
	assert.Nil(t, balances[0].Display)

	assert.Equal(t, models.ID(9), balances[1].AssetID)
	assert.True(t, balances[1].Amount.Equal(decimal.NewFromInt(50)))
	require.NotNil(t, balances[1].Display)
	assert.Equal(t, "0.5", balances[1].Display.String())
}

func TestAggregateDoesNotOverflow(t *testing.T) {
	big := uint64(math.MaxInt64)
	balances := Aggregate([]Contribution{
		{AssetID: 1, Amount: big, Multiplier: 1},
		{AssetID: 1, Amount: big, Multiplier: 1},
	})
	require.Len(t, balances, 1)
	assert.Equal(t, "18446744073709551614", balances[0].Amount.String())
}

func TestOf(t *testing.T) {
	balances := Aggregate([]Contribution{{AssetID: 1, Amount: 5, Multiplier: -1}})
	assert.Equal(t, "-5", Of(balances, 1).String())
	assert.True(t, Of(balances, 2).IsZero())
	assert.Empty(t, Aggregate(nil))
}
