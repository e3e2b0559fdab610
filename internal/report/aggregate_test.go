package report

import (
	"testing"
	"time"

	"bedding-ledger-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func fixture() []models.Purchase {
	return []models.Purchase{
		{
			ID: 1, Date: d(2026, 1, 5), ItemName: "Queen Set",
			UnitPrice: dec("100.00"), Quantity: 1, RemainingQuantity: 1,
		},
		{
			ID: 2, Date: d(2026, 1, 20), ItemName: "Twin Set",
			UnitPrice: dec("50.00"), Quantity: 1, RemainingQuantity: 0,
			Returns: []models.Return{
				// returned in February against the January sale
				{ID: 1, PurchaseID: 2, Date: d(2026, 2, 2), Quantity: 1, RefundAmount: dec("30.00")},
			},
		},
	}
}

// January: gross 150, no refunds. February: no sales, refund 30, net -30.
func TestComputeStatsMonthlyBucketAttribution(t *testing.T) {
	stats := ComputeStats(fixture(), BucketMonth, nil, nil)

	require.Len(t, stats, 2)

	jan := stats["2026-01"]
	assert.True(t, jan.Gross.Equal(dec("150.00")))
	assert.True(t, jan.Refunds.IsZero())
	assert.True(t, jan.Net.Equal(dec("150.00")))
	assert.Equal(t, 2, jan.PurchaseCount)
	assert.Equal(t, 2, jan.UnitsSold)
	assert.Equal(t, 0, jan.UnitsReturned)

	feb := stats["2026-02"]
	assert.True(t, feb.Gross.IsZero())
	assert.True(t, feb.Refunds.Equal(dec("30.00")))
	assert.True(t, feb.Net.Equal(dec("-30.00")))
	assert.Equal(t, 0, feb.PurchaseCount)
	assert.Equal(t, 1, feb.UnitsReturned)
}

func TestComputeStatsIsPureAndBalanced(t *testing.T) {
	purchases := fixture()

	a := ComputeStats(purchases, BucketDay, nil, nil)
	b := ComputeStats(purchases, BucketDay, nil, nil)
	assert.Equal(t, a, b, "same input, same output")

	// sum of per-bucket net equals total gross minus total refunds
	totalNet := decimal.Zero
	for _, agg := range a {
		totalNet = totalNet.Add(agg.Net)
	}
	assert.True(t, totalNet.Equal(dec("120.00")))
}

func TestComputeStatsRange(t *testing.T) {
	from := d(2026, 2, 1)
	to := d(2026, 2, 28)
	stats := ComputeStats(fixture(), BucketMonth, &from, &to)

	require.Len(t, stats, 1, "january sale is out of range, february return stays")
	assert.True(t, stats["2026-02"].Refunds.Equal(dec("30.00")))
}

func TestComputeStatsYearBucket(t *testing.T) {
	stats := ComputeStats(fixture(), BucketYear, nil, nil)
	require.Len(t, stats, 1)
	assert.True(t, stats["2026"].Net.Equal(dec("120.00")))
}

func TestDenseKeys(t *testing.T) {
	keys := DenseKeys(BucketMonth, d(2025, 11, 1), d(2026, 2, 1))
	assert.Equal(t, []string{"2025-11", "2025-12", "2026-01", "2026-02"}, keys)

	days := DenseKeys(BucketDay, d(2026, 1, 30), d(2026, 2, 1))
	assert.Equal(t, []string{"2026-01-30", "2026-01-31", "2026-02-01"}, days)
}

func TestBuildTree(t *testing.T) {
	purchases := fixture()
	// out-of-order input: tree sorts by date then id
	purchases[0], purchases[1] = purchases[1], purchases[0]

	tree := BuildTree(purchases)
	require.Len(t, tree, 2)

	assert.Equal(t, "Queen Set", tree[0].ItemName)
	assert.Equal(t, "2026-01-05", tree[0].Date)
	assert.Empty(t, tree[0].Returns)
	assert.True(t, tree[0].RemainingAmount.Equal(dec("100.00")))

	twin := tree[1]
	assert.Equal(t, 1, twin.ReturnedQuantity)
	assert.True(t, twin.ReturnedAmount.Equal(dec("30.00")))
	require.Len(t, twin.Returns, 1)
	assert.Equal(t, "2026-02-02", twin.Returns[0].Date)
}

func TestParseBucket(t *testing.T) {
	_, err := ParseBucket("week")
	assert.Error(t, err)
	b, err := ParseBucket("day")
	require.NoError(t, err)
	assert.Equal(t, BucketDay, b)
}
