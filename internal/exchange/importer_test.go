package exchange

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"bedding-ledger-backend/internal/ledger"
	"bedding-ledger-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *ledger.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Purchase{}, &models.Return{}))
	return ledger.New(db)
}

func seed(t *testing.T, svc *ledger.Service) {
	t.Helper()
	p, err := svc.AddPurchase(ledger.PurchaseInput{
		Date:      time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		ItemName:  "Queen Set",
		UnitPrice: decimal.RequireFromString("199.00"),
		Quantity:  3,
		Note:      "walk-in",
	})
	require.NoError(t, err)
	_, err = svc.ApplyReturn(p.ID, 1, time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), "color mismatch")
	require.NoError(t, err)
	_, err = svc.AddPurchase(ledger.PurchaseInput{
		Date:      time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		ItemName:  "King Set",
		UnitPrice: decimal.RequireFromString("259.50"),
		Quantity:  2,
	})
	require.NoError(t, err)
}

// Export then import into an empty store must reproduce an equivalent record
// set, ids aside.
func TestCSVRoundTrip(t *testing.T) {
	src := newTestService(t)
	seed(t, src)

	purchases, err := src.ListPurchases(ledger.ListFilter{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ExportRows(purchases)))

	rows, err := ReadCSV(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	dst := newTestService(t)
	result := ImportRows(dst, rows)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 2, result.PurchasesCreated)
	assert.Equal(t, 1, result.ReturnsCreated)
	assert.Zero(t, result.Skipped)
	assert.NotEmpty(t, result.BatchID)

	imported, err := dst.ListPurchases(ledger.ListFilter{})
	require.NoError(t, err)
	require.Len(t, imported, 2)

	queen := imported[0]
	assert.Equal(t, "Queen Set", queen.ItemName)
	assert.Equal(t, 3, queen.Quantity)
	assert.Equal(t, 2, queen.RemainingQuantity)
	assert.Equal(t, "walk-in", queen.Note)
	assert.True(t, queen.UnitPrice.Equal(decimal.RequireFromString("199.00")))
	require.Len(t, queen.Returns, 1)
	assert.True(t, queen.Returns[0].RefundAmount.Equal(decimal.RequireFromString("199.00")))
	assert.Equal(t, "color mismatch", queen.Returns[0].Note)

	assert.Equal(t, "King Set", imported[1].ItemName)
	assert.Empty(t, imported[1].Returns)
}

func TestExcelRoundTrip(t *testing.T) {
	src := newTestService(t)
	seed(t, src)

	purchases, err := src.ListPurchases(ledger.ListFilter{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, ExportRows(purchases)))

	rows, err := ReadExcel(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	dst := newTestService(t)
	result := ImportRows(dst, rows)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 2, result.PurchasesCreated)
	assert.Equal(t, 1, result.ReturnsCreated)
}

// One malformed row (negative price) among valid ones: three purchases land,
// the bad row is reported with its sheet row number, nothing else breaks.
func TestImportCollectsRowErrors(t *testing.T) {
	csvFile := strings.Join([]string{
		"date,item,unit_price,quantity,note",
		"2026-01-05,Queen Set,199.00,2,",
		"2026-01-06,King Set,-10.00,1,bad price",
		"2026-01-07,Twin Set,89.00,1,",
		"2026-01-08,Queen Set,199.00,3,",
	}, "\n")

	rows, err := ReadCSV(strings.NewReader(csvFile))
	require.NoError(t, err)

	svc := newTestService(t)
	result := ImportRows(svc, rows)

	assert.Equal(t, 3, result.PurchasesCreated)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Reason, "negative")

	imported, err := svc.ListPurchases(ledger.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, imported, 3)
}

// Return rows are re-validated through the return engine; an over-return in
// the file is skipped, not applied.
func TestImportRevalidatesReturns(t *testing.T) {
	csvFile := strings.Join([]string{
		"type,id,date,item,unit_price,quantity,ref,note",
		"purchase,10,2026-01-05,Queen Set,199.00,2,,",
		"return,11,2026-01-06,,,5,10,over-return",
		"return,12,2026-01-04,,,1,10,predates sale",
		"return,13,2026-01-07,,,1,10,fine",
		"return,14,2026-01-07,,,1,99,dangling ref",
	}, "\n")

	rows, err := ReadCSV(strings.NewReader(csvFile))
	require.NoError(t, err)

	svc := newTestService(t)
	result := ImportRows(svc, rows)

	assert.Equal(t, 1, result.PurchasesCreated)
	assert.Equal(t, 1, result.ReturnsCreated)
	assert.Equal(t, 3, result.Skipped)
	require.Len(t, result.Errors, 3)

	imported, err := svc.ListPurchases(ledger.ListFilter{})
	require.NoError(t, err)
	require.Len(t, imported, 1)
	assert.Equal(t, 1, imported[0].RemainingQuantity)
}

// "purchase_id" is an advertised alias for the ref column; it must not be
// captured by the id column just because it contains "id". Purchase rows in
// such sheets carry their own id in that column.
func TestImportRefColumnNamedPurchaseID(t *testing.T) {
	csvFile := strings.Join([]string{
		"type,date,item,unit_price,quantity,purchase_id,note",
		"purchase,2026-01-05,Queen Set,199.00,2,10,",
		"return,2026-01-12,,,1,10,defect",
	}, "\n")

	rows, err := ReadCSV(strings.NewReader(csvFile))
	require.NoError(t, err)

	cols, hasHeader := detectColumns(rows[0])
	require.True(t, hasHeader)
	assert.Equal(t, 5, cols.ref)
	assert.Equal(t, -1, cols.id)

	svc := newTestService(t)
	result := ImportRows(svc, rows)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.PurchasesCreated)
	assert.Equal(t, 1, result.ReturnsCreated)
	assert.Zero(t, result.Skipped)

	imported, err := svc.ListPurchases(ledger.ListFilter{})
	require.NoError(t, err)
	require.Len(t, imported, 1)
	assert.Equal(t, 1, imported[0].RemainingQuantity)
	require.Len(t, imported[0].Returns, 1)
	assert.Equal(t, "defect", imported[0].Returns[0].Note)
}

// A headerless sheet in the legacy desktop order (date, item, price, qty,
// note) imports as plain sales.
func TestImportLegacyLayout(t *testing.T) {
	csvFile := strings.Join([]string{
		"2026/01/05,Queen Set,¥199.00,3,cash",
		"2026-01-06,King Set,\"1,299.00\",1,",
	}, "\n")

	rows, err := ReadCSV(strings.NewReader(csvFile))
	require.NoError(t, err)

	svc := newTestService(t)
	result := ImportRows(svc, rows)
	require.Empty(t, result.Errors)
	assert.Equal(t, 2, result.PurchasesCreated)

	imported, err := svc.ListPurchases(ledger.ListFilter{})
	require.NoError(t, err)
	assert.True(t, imported[1].UnitPrice.Equal(decimal.RequireFromString("1299.00")))
}

func TestParseDate(t *testing.T) {
	for _, raw := range []string{"2026-01-05", "2026/01/05", "05.01.2026"} {
		d, err := ParseDate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, 2026, d.Year())
	}

	// Excel serial for 2021-10-31
	d, err := ParseDate("44500")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 10, 31, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("not a date")
	assert.Error(t, err)
}

func TestReadCSVSniffsDelimiter(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("date\titem\tunit_price\tquantity\n2026-01-05\tQueen\t199\t1\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], 4)
}
