package analysis

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/paisalens/paisalens/internal/domain/charts"
)

func breakdownFixture() *charts.Payload {
	return &charts.Payload{
		CategorySpending: []charts.CategoryAmount{
			{Category: "Food", Amount: 450050},
			{Category: "Transport", Amount: 120000},
		},
		TopMerchants: []charts.MerchantAmount{
			{Merchant: "Swiggy", Amount: 300000},
			{Merchant: "Swiggy Instamart", Amount: 150050},
		},
		MonthlySpending: []charts.MonthAmount{
			{Month: "2025-03", Amount: 570050},
		},
	}
}

func TestWriteCategoryCSV(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, WriteCategoryCSV(&buf, breakdownFixture()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "category,amount_inr", lines[0])
	assert.Equal(t, "Food,4500.5", lines[1])
	assert.Equal(t, "Transport,1200", lines[2])
}

func TestWriteBreakdownXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBreakdownXLSX(&buf, breakdownFixture()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Categories", "Merchants", "Monthly"}, f.GetSheetList())

	category, err := f.GetCellValue("Categories", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Food", category)

	amount, err := f.GetCellValue("Categories", "B2")
	require.NoError(t, err)
	assert.Equal(t, "4500.5", amount)

	// The two Swiggy variants are merged before export.
	merchant, err := f.GetCellValue("Merchants", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Swiggy", merchant)

	next, err := f.GetCellValue("Merchants", "A3")
	require.NoError(t, err)
	assert.Empty(t, next)
}
