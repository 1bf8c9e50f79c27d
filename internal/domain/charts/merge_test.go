package charts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeTopMerchants(t *testing.T) {
	rows := []MerchantAmount{
		{Merchant: "ZOMATO", Amount: 10000},
		{Merchant: "Zomato Ltd", Amount: 5000},
		{Merchant: "SWIGGY", Amount: 20000},
		{Merchant: "SWIGY", Amount: 1000}, // typo within edit distance
		{Merchant: "Uber", Amount: 3000},
		{Merchant: "", Amount: 999}, // blank rows are dropped
	}

	merged := MergeTopMerchants(rows)
	require.Len(t, merged, 3)

	// Sorted by amount descending
	assert.Equal(t, "SWIGGY", merged[0].Merchant)
	assert.EqualValues(t, 21000, merged[0].Amount)

	assert.Equal(t, "ZOMATO", merged[1].Merchant, "shorter variant wins")
	assert.EqualValues(t, 15000, merged[1].Amount)

	assert.Equal(t, "Uber", merged[2].Merchant)
}

func TestSameMerchant(t *testing.T) {
	assert.True(t, sameMerchant("zomato", "ZOMATO"))
	assert.True(t, sameMerchant("ZOMATO 001", "ZOMATO"))
	assert.True(t, sameMerchant("SWIGGY", "SWIGY"))
	assert.False(t, sameMerchant("Uber", "Ola"), "short names never fuzzy-match")
	assert.False(t, sameMerchant("BigBasket", "Blinkit"))
}
