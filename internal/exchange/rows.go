package exchange

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"bedding-ledger-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Tabular layout shared by CSV and Excel. Purchase and return rows live in
// one table, told apart by the type column; return rows point at their
// parent through ref. Every ledger field is representable, so an export can
// be re-imported losslessly up to id remapping.
var Header = []string{
	"type", "id", "date", "item", "unit_price", "quantity",
	"remaining", "returned_quantity", "returned_amount",
	"refund_amount", "ref", "note",
}

const (
	rowTypePurchase = "purchase"
	rowTypeReturn   = "return"
)

// ExportRows flattens the record set: each purchase row followed by its
// return rows, header first.
func ExportRows(purchases []models.Purchase) [][]string {
	rows := [][]string{Header}
	for i := range purchases {
		p := &purchases[i]

		returnedQty := 0
		returnedAmount := decimal.Zero
		for _, r := range p.Returns {
			returnedQty += r.Quantity
			returnedAmount = returnedAmount.Add(r.RefundAmount)
		}

		rows = append(rows, []string{
			rowTypePurchase,
			strconv.FormatUint(uint64(p.ID), 10),
			p.Date.Format("2006-01-02"),
			p.ItemName,
			p.UnitPrice.String(),
			strconv.Itoa(p.Quantity),
			strconv.Itoa(p.RemainingQuantity),
			strconv.Itoa(returnedQty),
			returnedAmount.String(),
			"", // refund_amount
			"", // ref
			p.Note,
		})

		for _, r := range p.Returns {
			rows = append(rows, []string{
				rowTypeReturn,
				strconv.FormatUint(uint64(r.ID), 10),
				r.Date.Format("2006-01-02"),
				"", // item
				"", // unit_price
				strconv.Itoa(r.Quantity),
				"", // remaining
				"", // returned_quantity
				"", // returned_amount
				r.RefundAmount.String(),
				strconv.FormatUint(uint64(r.PurchaseID), 10),
				r.Note,
			})
		}
	}
	return rows
}

// ---- tolerant cell parsing, carried over from the desktop importer ----

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02-01-2006",
	"01/02/2006",
	"2006.01.02",
	"02.01.2006",
	"2006年01月02日",
}

// ParseDate accepts the common spreadsheet date spellings plus Excel serial
// numbers (days since 1899-12-30).
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		days := int(serial)
		if days >= 1 && days <= 100000 {
			return time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

var numberCleaner = strings.NewReplacer("¥", "", "元", "", "$", "", ",", "", " ", "")

// ParseAmount strips currency decoration before parsing.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(numberCleaner.Replace(raw))
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("unrecognized amount %q", raw)
	}
	return d, nil
}

func ParseQuantity(raw string) (int, error) {
	s := strings.TrimSpace(numberCleaner.Replace(raw))
	if s == "" {
		return 0, fmt.Errorf("empty quantity")
	}
	// some sheets store quantities as "3.0"
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("unrecognized quantity %q", raw)
	}
	return int(f), nil
}
