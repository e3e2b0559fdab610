package sales

import (
	"time"

	"bedding-ledger-backend/internal/ledger"
	"bedding-ledger-backend/internal/models"
	"bedding-ledger-backend/internal/report"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreatePurchaseRequest struct {
	Date      *string `json:"date"` // "2026-01-05", empty means today
	ItemName  string  `json:"item_name"`
	UnitPrice string  `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Note      string  `json:"note"`
}

type UpdatePurchaseRequest struct {
	Date      *string `json:"date"`
	ItemName  *string `json:"item_name"`
	UnitPrice *string `json:"unit_price"`
	Quantity  *int    `json:"quantity"`
	Note      *string `json:"note"`
}

func purchaseResponse(p *models.Purchase) report.TreeNode {
	return report.BuildTree([]models.Purchase{*p})[0]
}

func parseDateField(raw *string) (time.Time, error) {
	if raw == nil || *raw == "" {
		// explicit dates parse as UTC midnight; the default must live in
		// the same location or stored dates end up with mixed offsets
		return time.Now().UTC(), nil
	}
	d, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	return d, nil
}

func parsePriceField(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fiber.NewError(fiber.StatusBadRequest, "unit_price is not a valid number")
	}
	return price, nil
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id < 1 {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" must be a positive integer")
	}
	return uint(id), nil
}

// -------------------------------------------------
// POST /api/purchases
// -------------------------------------------------
func CreatePurchaseHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePurchaseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		date, err := parseDateField(body.Date)
		if err != nil {
			return err
		}
		price, err := parsePriceField(body.UnitPrice)
		if err != nil {
			return err
		}

		p, err := svc.AddPurchase(ledger.PurchaseInput{
			Date:      date,
			ItemName:  body.ItemName,
			UnitPrice: price,
			Quantity:  body.Quantity,
			Note:      body.Note,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(purchaseResponse(p))
	}
}

// -------------------------------------------------
// GET /api/purchases
// ?from=2026-01-01&to=2026-01-31&item=Queen
// -------------------------------------------------
func ListPurchasesHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var filter ledger.ListFilter
		if raw := c.Query("from"); raw != "" {
			d, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from must be YYYY-MM-DD")
			}
			filter.From = &d
		}
		if raw := c.Query("to"); raw != "" {
			d, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to must be YYYY-MM-DD")
			}
			filter.To = &d
		}
		filter.ItemContains = c.Query("item")

		purchases, err := svc.ListPurchases(filter)
		if err != nil {
			return err
		}
		return c.JSON(report.BuildTree(purchases))
	}
}

// -------------------------------------------------
// GET /api/purchases/:id
// -------------------------------------------------
func GetPurchaseHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return err
		}
		p, err := svc.GetPurchase(id)
		if err != nil {
			return err
		}
		return c.JSON(purchaseResponse(p))
	}
}

// -------------------------------------------------
// PUT /api/purchases/:id
// -------------------------------------------------
func UpdatePurchaseHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return err
		}
		var body UpdatePurchaseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		var edit ledger.PurchaseEdit
		if body.Date != nil {
			d, err := time.Parse("2006-01-02", *body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
			}
			edit.Date = &d
		}
		if body.UnitPrice != nil {
			price, err := parsePriceField(*body.UnitPrice)
			if err != nil {
				return err
			}
			edit.UnitPrice = &price
		}
		edit.ItemName = body.ItemName
		edit.Quantity = body.Quantity
		edit.Note = body.Note

		p, err := svc.EditPurchase(id, edit)
		if err != nil {
			return err
		}
		return c.JSON(purchaseResponse(p))
	}
}

// -------------------------------------------------
// DELETE /api/purchases/:id
// -------------------------------------------------
func DeletePurchaseHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c, "id")
		if err != nil {
			return err
		}
		if err := svc.DeletePurchase(id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
