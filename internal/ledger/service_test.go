package ledger

import (
	"testing"
	"time"

	"bedding-ledger-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Purchase{}, &models.Return{}))
	return New(db)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAddPurchaseValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.AddPurchase(PurchaseInput{Date: date(2026, 1, 10), ItemName: "Queen Set", UnitPrice: price("199.00"), Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.AddPurchase(PurchaseInput{Date: date(2026, 1, 10), ItemName: "Queen Set", UnitPrice: price("-1"), Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	p, err := svc.AddPurchase(PurchaseInput{Date: date(2026, 1, 10), ItemName: "Queen Set", UnitPrice: price("199.00"), Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, p.RemainingQuantity)
	assert.True(t, p.GrossAmount().Equal(price("597.00")))
}

// Scenario from the ledger contract: 3 sold, return 1, return 2, a third
// return must fail and leave the purchase untouched.
func TestReturnLifecycle(t *testing.T) {
	svc := newTestService(t)
	p, err := svc.AddPurchase(PurchaseInput{Date: date(2026, 1, 10), ItemName: "Queen Set", UnitPrice: price("199.00"), Quantity: 3})
	require.NoError(t, err)

	r1, err := svc.ApplyReturn(p.ID, 1, date(2026, 1, 12), "")
	require.NoError(t, err)
	assert.True(t, r1.RefundAmount.Equal(price("199.00")))

	got, err := svc.GetPurchase(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.RemainingQuantity)
	assert.True(t, got.RemainingAmount().Equal(price("398.00")))

	_, err = svc.ApplyReturn(p.ID, 2, date(2026, 1, 15), "damaged")
	require.NoError(t, err)

	got, err = svc.GetPurchase(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.RemainingQuantity)

	_, err = svc.ApplyReturn(p.ID, 1, date(2026, 1, 16), "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	// failed return changed nothing
	got, err = svc.GetPurchase(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.RemainingQuantity)
	assert.Len(t, got.Returns, 2)
}

func TestReturnInvariant(t *testing.T) {
	svc := newTestService(t)
	p, err := svc.AddPurchase(PurchaseInput{Date: date(2026, 2, 1), ItemName: "King Set", UnitPrice: price("259.50"), Quantity: 5})
	require.NoError(t, err)

	_, err = svc.ApplyReturn(p.ID, 2, date(2026, 2, 3), "")
	require.NoError(t, err)
	r, err := svc.ApplyReturn(p.ID, 1, date(2026, 2, 4), "")
	require.NoError(t, err)

	got, err := svc.GetPurchase(p.ID)
	require.NoError(t, err)
	sum := 0
	for _, ret := range got.Returns {
		sum += ret.Quantity
	}
	assert.Equal(t, got.Quantity-sum, got.RemainingQuantity)

	// deleting a return gives its quantity back
	require.NoError(t, svc.DeleteReturn(r.ID))
	got, err = svc.GetPurchase(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.RemainingQuantity)
	assert.Len(t, got.Returns, 1)

	assert.ErrorIs(t, svc.DeleteReturn(r.ID), ErrNotFound)
}

func TestReturnDateCannotPrecedeSale(t *testing.T) {
	svc := newTestService(t)
	p, err := svc.AddPurchase(PurchaseInput{Date: date(2026, 3, 10), ItemName: "Twin Set", UnitPrice: price("89.00"), Quantity: 1})
	require.NoError(t, err)

	_, err = svc.ApplyReturn(p.ID, 1, date(2026, 3, 9), "")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = svc.ApplyReturn(p.ID, 1, date(2026, 3, 10), "")
	assert.NoError(t, err)
}

func TestApplyReturnUnknownPurchase(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.ApplyReturn(42, 1, date(2026, 1, 1), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEditPurchase(t *testing.T) {
	svc := newTestService(t)
	p, err := svc.AddPurchase(PurchaseInput{Date: date(2026, 1, 5), ItemName: "Queen Set", UnitPrice: price("199.00"), Quantity: 3})
	require.NoError(t, err)

	// quantity edit allowed while no returns exist, remaining resets
	newQty := 5
	edited, err := svc.EditPurchase(p.ID, PurchaseEdit{Quantity: &newQty})
	require.NoError(t, err)
	assert.Equal(t, 5, edited.Quantity)
	assert.Equal(t, 5, edited.RemainingQuantity)

	ret, err := svc.ApplyReturn(p.ID, 1, date(2026, 1, 6), "")
	require.NoError(t, err)

	// quantity now locked
	newQty = 7
	_, err = svc.EditPurchase(p.ID, PurchaseEdit{Quantity: &newQty})
	assert.ErrorIs(t, err, ErrInvalidEdit)

	// price edits stay allowed and never rewrite past refunds
	newPrice := price("249.00")
	name := "Queen Set Deluxe"
	edited, err = svc.EditPurchase(p.ID, PurchaseEdit{UnitPrice: &newPrice, ItemName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Queen Set Deluxe", edited.ItemName)

	got, err := svc.GetPurchase(p.ID)
	require.NoError(t, err)
	require.Len(t, got.Returns, 1)
	assert.True(t, got.Returns[0].RefundAmount.Equal(price("199.00")), "refund frozen at apply-time price")
	_ = ret

	_, err = svc.EditPurchase(999, PurchaseEdit{ItemName: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePurchaseCascades(t *testing.T) {
	svc := newTestService(t)
	p, err := svc.AddPurchase(PurchaseInput{Date: date(2026, 1, 5), ItemName: "Queen Set", UnitPrice: price("199.00"), Quantity: 3})
	require.NoError(t, err)
	_, err = svc.ApplyReturn(p.ID, 1, date(2026, 1, 6), "")
	require.NoError(t, err)
	_, err = svc.ApplyReturn(p.ID, 1, date(2026, 1, 7), "")
	require.NoError(t, err)

	require.NoError(t, svc.DeletePurchase(p.ID))

	var returnCount int64
	require.NoError(t, svc.DB().Model(&models.Return{}).Count(&returnCount).Error)
	assert.Zero(t, returnCount, "no orphan returns after cascade")

	assert.ErrorIs(t, svc.DeletePurchase(p.ID), ErrNotFound)
}

func TestListPurchasesFilter(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.AddPurchase(PurchaseInput{Date: date(2026, 1, 5), ItemName: "Queen Set", UnitPrice: price("199.00"), Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddPurchase(PurchaseInput{Date: date(2026, 2, 5), ItemName: "King Set", UnitPrice: price("259.00"), Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddPurchase(PurchaseInput{Date: date(2026, 3, 5), ItemName: "Queen Set Deluxe", UnitPrice: price("299.00"), Quantity: 1})
	require.NoError(t, err)

	all, err := svc.ListPurchases(ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].ID < all[1].ID && all[1].ID < all[2].ID, "insertion order")

	from := date(2026, 2, 1)
	to := date(2026, 2, 28)
	feb, err := svc.ListPurchases(ListFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, feb, 1)
	assert.Equal(t, "King Set", feb[0].ItemName)

	queens, err := svc.ListPurchases(ListFilter{ItemContains: "Queen"})
	require.NoError(t, err)
	assert.Len(t, queens, 2)
}
