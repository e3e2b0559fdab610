package exchange

import (
	"fmt"
	"strings"

	"bedding-ledger-backend/internal/ledger"

	"github.com/google/uuid"
)

type RowError struct {
	Row    int    `json:"row"` // 1-based, as the user sees it in the sheet
	Reason string `json:"reason"`
}

type ImportResult struct {
	BatchID          string     `json:"batch_id"`
	PurchasesCreated int        `json:"purchases_created"`
	ReturnsCreated   int        `json:"returns_created"`
	Skipped          int        `json:"skipped"`
	Errors           []RowError `json:"errors"`
}

// column mapping resolved from a header row; -1 means absent.
type columns struct {
	typ, id, date, item, price, qty, refund, ref, note int
}

var headerAliases = map[string][]string{
	"type":   {"type", "kind", "类型"},
	"id":     {"id", "编号"},
	"date":   {"date", "日期", "时间"},
	"item":   {"item", "item_name", "product", "name", "品名", "商品"},
	"price":  {"unit_price", "price", "单价", "价格"},
	"qty":    {"quantity", "qty", "数量", "套数", "件数"},
	"refund": {"refund_amount", "refund", "退款"},
	"ref":    {"ref", "purchase_id", "parent", "原单号"},
	"note":   {"note", "notes", "remark", "备注", "说明", "客户"},
}

func matchHeader(cell string, key string) bool {
	c := strings.ToLower(strings.TrimSpace(cell))
	for _, alias := range headerAliases[key] {
		if c == alias || strings.Contains(c, alias) {
			return true
		}
	}
	return false
}

// detectColumns inspects the first row. When it looks like a header the
// named mapping wins; otherwise the legacy sheet order from the desktop tool
// applies: date, item, unit price, quantity, note — all sale rows.
func detectColumns(first []string) (columns, bool) {
	cols := columns{typ: -1, id: -1, date: -1, item: -1, price: -1, qty: -1, refund: -1, ref: -1, note: -1}

	headerish := false
	for i, cell := range first {
		// refund and ref must match before id: "refund_amount" contains
		// "ref" and "purchase_id" contains "id"
		switch {
		case cols.typ == -1 && matchHeader(cell, "type"):
			cols.typ = i
		case cols.refund == -1 && matchHeader(cell, "refund"):
			cols.refund = i
		case cols.ref == -1 && matchHeader(cell, "ref"):
			cols.ref = i
		case cols.id == -1 && matchHeader(cell, "id"):
			cols.id = i
		case cols.date == -1 && matchHeader(cell, "date"):
			cols.date = i
		case cols.item == -1 && matchHeader(cell, "item"):
			cols.item = i
		case cols.price == -1 && matchHeader(cell, "price"):
			cols.price = i
		case cols.qty == -1 && matchHeader(cell, "qty"):
			cols.qty = i
		case cols.note == -1 && matchHeader(cell, "note"):
			cols.note = i
		default:
			continue
		}
		headerish = true
	}

	if !headerish || cols.date == -1 {
		return columns{typ: -1, id: -1, date: 0, item: 1, price: 2, qty: 3, refund: -1, ref: -1, note: 4}, false
	}
	return cols, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ImportRows reconciles tabular rows back into purchases and returns.
// Two passes: purchases first so that return rows in the same file can
// reference them, then returns applied through the ledger service so every
// invariant is re-validated rather than bypassed. Bad rows are collected and
// skipped; they never abort the batch or touch existing data.
func ImportRows(svc *ledger.Service, rows [][]string) ImportResult {
	result := ImportResult{BatchID: uuid.NewString()}
	if len(rows) == 0 {
		return result
	}

	cols, hasHeader := detectColumns(rows[0])
	start := 0
	if hasHeader {
		start = 1
	}

	fail := func(rowIdx int, reason string) {
		result.Skipped++
		result.Errors = append(result.Errors, RowError{Row: rowIdx + 1, Reason: reason})
	}

	isReturnRow := func(row []string) bool {
		if t := cell(row, cols.typ); t != "" {
			return strings.EqualFold(t, rowTypeReturn)
		}
		return cell(row, cols.ref) != ""
	}

	// pass 1: purchases; remember source id -> freshly assigned id
	idMap := make(map[string]uint)
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) || isReturnRow(row) {
			continue
		}

		date, err := ParseDate(cell(row, cols.date))
		if err != nil {
			fail(i, err.Error())
			continue
		}
		price, err := ParseAmount(cell(row, cols.price))
		if err != nil {
			fail(i, "unit price: "+err.Error())
			continue
		}
		if price.IsNegative() {
			fail(i, fmt.Sprintf("unit price %s is negative", price))
			continue
		}
		qty, err := ParseQuantity(cell(row, cols.qty))
		if err != nil {
			fail(i, "quantity: "+err.Error())
			continue
		}

		item := cell(row, cols.item)
		if item == "" {
			item = "four-piece set"
		}

		p, err := svc.AddPurchase(ledger.PurchaseInput{
			Date:      date,
			ItemName:  item,
			UnitPrice: price,
			Quantity:  qty,
			Note:      cell(row, cols.note),
		})
		if err != nil {
			fail(i, err.Error())
			continue
		}
		result.PurchasesCreated++
		// sheets without a dedicated id column carry the purchase's own id
		// in the ref column instead
		src := cell(row, cols.id)
		if src == "" {
			src = cell(row, cols.ref)
		}
		if src != "" {
			idMap[src] = p.ID
		}
	}

	// pass 2: returns, resolved against the purchases this batch created
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) || !isReturnRow(row) {
			continue
		}

		ref := cell(row, cols.ref)
		if ref == "" {
			fail(i, "return row without a ref to its purchase")
			continue
		}
		purchaseID, ok := idMap[ref]
		if !ok {
			fail(i, fmt.Sprintf("ref %q does not match any purchase row in this file", ref))
			continue
		}

		date, err := ParseDate(cell(row, cols.date))
		if err != nil {
			fail(i, err.Error())
			continue
		}
		qty, err := ParseQuantity(cell(row, cols.qty))
		if err != nil {
			fail(i, "quantity: "+err.Error())
			continue
		}

		if _, err := svc.ApplyReturn(purchaseID, qty, date, cell(row, cols.note)); err != nil {
			fail(i, err.Error())
			continue
		}
		result.ReturnsCreated++
	}

	return result
}
