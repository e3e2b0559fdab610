package report

import (
	"sort"

	"bedding-ledger-backend/internal/models"

	"github.com/shopspring/decimal"
)

// ReturnNode is one child row under a purchase in the display tree.
type ReturnNode struct {
	ID           uint            `json:"id"`
	Date         string          `json:"date"`
	Quantity     int             `json:"quantity"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	Note         string          `json:"note"`
}

// TreeNode is one purchase with its returns nested beneath it, carrying the
// display-ready figures so clients render without recomputing.
type TreeNode struct {
	ID                uint            `json:"id"`
	Date              string          `json:"date"`
	ItemName          string          `json:"item_name"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Quantity          int             `json:"quantity"`
	RemainingQuantity int             `json:"remaining_quantity"`
	Amount            decimal.Decimal `json:"amount"`
	RemainingAmount   decimal.Decimal `json:"remaining_amount"`
	ReturnedQuantity  int             `json:"returned_quantity"`
	ReturnedAmount    decimal.Decimal `json:"returned_amount"`
	Note              string          `json:"note"`
	Returns           []ReturnNode    `json:"returns"`
}

// BuildTree shapes the record set for display: one node per purchase ordered
// by date then insertion, children ordered the same way. Pure function, no
// mutation of the inputs.
func BuildTree(purchases []models.Purchase) []TreeNode {
	nodes := make([]TreeNode, 0, len(purchases))
	for i := range purchases {
		p := &purchases[i]

		returnedQty := 0
		returnedAmount := decimal.Zero
		children := make([]ReturnNode, 0, len(p.Returns))
		for _, r := range p.Returns {
			returnedQty += r.Quantity
			returnedAmount = returnedAmount.Add(r.RefundAmount)
			children = append(children, ReturnNode{
				ID:           r.ID,
				Date:         r.Date.Format("2006-01-02"),
				Quantity:     r.Quantity,
				RefundAmount: r.RefundAmount,
				Note:         r.Note,
			})
		}
		sort.SliceStable(children, func(a, b int) bool {
			if children[a].Date != children[b].Date {
				return children[a].Date < children[b].Date
			}
			return children[a].ID < children[b].ID
		})

		nodes = append(nodes, TreeNode{
			ID:                p.ID,
			Date:              p.Date.Format("2006-01-02"),
			ItemName:          p.ItemName,
			UnitPrice:         p.UnitPrice,
			Quantity:          p.Quantity,
			RemainingQuantity: p.RemainingQuantity,
			Amount:            p.GrossAmount(),
			RemainingAmount:   p.RemainingAmount(),
			ReturnedQuantity:  returnedQty,
			ReturnedAmount:    returnedAmount,
			Note:              p.Note,
			Returns:           children,
		})
	}

	sort.SliceStable(nodes, func(a, b int) bool {
		if nodes[a].Date != nodes[b].Date {
			return nodes[a].Date < nodes[b].Date
		}
		return nodes[a].ID < nodes[b].ID
	})
	return nodes
}
