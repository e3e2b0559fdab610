package snapshot

import (
	"fmt"
	"time"

	"bedding-ledger-backend/internal/ledger"
	"bedding-ledger-backend/internal/models"

	"github.com/shopspring/decimal"
)

// Document is the canonical on-disk form of the whole ledger: every field of
// every purchase and return, nested the way the desktop tool stored its
// records file. Ids are carried for reference but reassigned on restore.
type Document struct {
	Version    int             `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Purchases  []PurchaseState `json:"purchases"`
}

const DocumentVersion = 1

type PurchaseState struct {
	ID                uint            `json:"id"`
	Date              string          `json:"date"`
	ItemName          string          `json:"item_name"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Quantity          int             `json:"quantity"`
	RemainingQuantity int             `json:"remaining_quantity"`
	Note              string          `json:"note"`
	Returns           []ReturnState   `json:"returns"`
}

type ReturnState struct {
	ID           uint            `json:"id"`
	Date         string          `json:"date"`
	Quantity     int             `json:"quantity"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	Note         string          `json:"note"`
}

// Capture snapshots the record store into a document.
func Capture(svc *ledger.Service) (*Document, error) {
	purchases, err := svc.ListPurchases(ledger.ListFilter{})
	if err != nil {
		return nil, err
	}

	// empty slice, not nil: an empty store must serialize as [] so the
	// document round-trips
	doc := &Document{
		Version:    DocumentVersion,
		ExportedAt: time.Now(),
		Purchases:  make([]PurchaseState, 0, len(purchases)),
	}
	for i := range purchases {
		p := &purchases[i]
		state := PurchaseState{
			ID:                p.ID,
			Date:              p.Date.Format("2006-01-02"),
			ItemName:          p.ItemName,
			UnitPrice:         p.UnitPrice,
			Quantity:          p.Quantity,
			RemainingQuantity: p.RemainingQuantity,
			Note:              p.Note,
		}
		for _, r := range p.Returns {
			state.Returns = append(state.Returns, ReturnState{
				ID:           r.ID,
				Date:         r.Date.Format("2006-01-02"),
				Quantity:     r.Quantity,
				RefundAmount: r.RefundAmount,
				Note:         r.Note,
			})
		}
		doc.Purchases = append(doc.Purchases, state)
	}
	return doc, nil
}

// Restore validates a document and replaces the record store with it.
// Refund amounts are restored verbatim (they were frozen when the returns
// were applied, possibly at prices that have since changed), so the document
// must be internally consistent; a broken one is rejected before anything is
// written.
func Restore(svc *ledger.Service, doc *Document) error {
	if doc.Version != DocumentVersion {
		return fmt.Errorf("unsupported snapshot version %d", doc.Version)
	}

	purchases := make([]models.Purchase, 0, len(doc.Purchases))
	for i, state := range doc.Purchases {
		p, err := validatePurchase(state)
		if err != nil {
			return fmt.Errorf("purchase %d (id %d): %w", i+1, state.ID, err)
		}
		purchases = append(purchases, *p)
	}

	return svc.ReplaceAll(purchases)
}

func validatePurchase(state PurchaseState) (*models.Purchase, error) {
	date, err := time.Parse("2006-01-02", state.Date)
	if err != nil {
		return nil, fmt.Errorf("bad date %q", state.Date)
	}
	if state.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity %d", ledger.ErrInvalidQuantity, state.Quantity)
	}
	if state.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit price %s", ledger.ErrInvalidAmount, state.UnitPrice)
	}

	p := models.Purchase{
		Date:              date,
		ItemName:          state.ItemName,
		UnitPrice:         state.UnitPrice,
		Quantity:          state.Quantity,
		RemainingQuantity: state.RemainingQuantity,
		Note:              state.Note,
	}

	returnedQty := 0
	for _, rs := range state.Returns {
		rDate, err := time.Parse("2006-01-02", rs.Date)
		if err != nil {
			return nil, fmt.Errorf("return: bad date %q", rs.Date)
		}
		if rDate.Before(date) {
			return nil, fmt.Errorf("%w: return date %s precedes sale date %s", ledger.ErrInvalidDate, rs.Date, state.Date)
		}
		if rs.Quantity < 1 {
			return nil, fmt.Errorf("%w: return quantity %d", ledger.ErrInvalidQuantity, rs.Quantity)
		}
		returnedQty += rs.Quantity
		p.Returns = append(p.Returns, models.Return{
			Date:         rDate,
			Quantity:     rs.Quantity,
			RefundAmount: rs.RefundAmount,
			Note:         rs.Note,
		})
	}

	if want := state.Quantity - returnedQty; want != state.RemainingQuantity || want < 0 {
		return nil, fmt.Errorf("%w: remaining %d does not match quantity %d minus returned %d",
			ledger.ErrInvalidQuantity, state.RemainingQuantity, state.Quantity, returnedQty)
	}
	return &p, nil
}
